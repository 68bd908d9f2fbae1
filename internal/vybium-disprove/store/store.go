// Package store persists compiled leaf batches in SQLite.
package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/chunker"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/utils"
)

var (
	ErrBatchNotFound  = errors.New("batch not found")
	ErrCorruptWitness = errors.New("corrupt witness encoding")
)

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	batch_id      TEXT PRIMARY KEY,
	label         TEXT NOT NULL,
	config_json   TEXT NOT NULL,
	leaf_count    INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS leaves (
	batch_id      TEXT NOT NULL,
	leaf_index    INTEGER NOT NULL,
	name          TEXT NOT NULL,
	script        BLOB NOT NULL,
	witness       BLOB NOT NULL,
	terminal      INTEGER NOT NULL,
	fingerprint   INTEGER NOT NULL,
	outcome       TEXT,
	PRIMARY KEY (batch_id, leaf_index),
	FOREIGN KEY (batch_id) REFERENCES batches(batch_id)
);
`

// BatchRecord describes a stored batch
type BatchRecord struct {
	BatchID   string
	Label     string
	Config    *utils.Config
	LeafCount int
	CreatedAt time.Time
}

// Store manages leaf batches in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBatch stores the leaves of one compilation under a new batch id.
func (s *Store) SaveBatch(label string, cfg *utils.Config, leaves []chunker.Leaf) (BatchRecord, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return BatchRecord{}, fmt.Errorf("marshal config: %w", err)
	}

	rec := BatchRecord{
		BatchID:   uuid.New().String(),
		Label:     label,
		Config:    cfg.Clone(),
		LeafCount: len(leaves),
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return BatchRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO batches (batch_id, label, config_json, leaf_count, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.BatchID, label, string(cfgJSON), len(leaves), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return BatchRecord{}, fmt.Errorf("insert batch: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO leaves (batch_id, leaf_index, name, script, witness, terminal, fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return BatchRecord{}, fmt.Errorf("prepare leaf insert: %w", err)
	}
	defer stmt.Close()

	for _, leaf := range leaves {
		_, err := stmt.Exec(rec.BatchID, leaf.Index, leaf.Name, leaf.Script,
			encodeWitness(leaf.Witness), leaf.Terminal, int64(leaf.Fingerprint))
		if err != nil {
			return BatchRecord{}, fmt.Errorf("insert leaf %d: %w", leaf.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return BatchRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// SaveReports records the execution outcome of leaves in a batch.
func (s *Store) SaveReports(batchID string, reports []chunker.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, r := range reports {
		res, err := tx.Exec(
			`UPDATE leaves SET outcome = ? WHERE batch_id = ? AND leaf_index = ?`,
			r.Outcome.String(), batchID, r.Index,
		)
		if err != nil {
			return fmt.Errorf("update leaf %d: %w", r.Index, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s has no leaf %d", ErrBatchNotFound, batchID, r.Index)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetBatch returns the record of a batch.
func (s *Store) GetBatch(batchID string) (BatchRecord, error) {
	row := s.db.QueryRow(
		`SELECT batch_id, label, config_json, leaf_count, created_at FROM batches WHERE batch_id = ?`,
		batchID,
	)
	rec, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BatchRecord{}, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	return rec, err
}

// ListBatches returns all batches, newest first.
func (s *Store) ListBatches() ([]BatchRecord, error) {
	rows, err := s.db.Query(
		`SELECT batch_id, label, config_json, leaf_count, created_at FROM batches ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []BatchRecord
	for rows.Next() {
		rec, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LoadLeaves returns the leaves of a batch in index order.
func (s *Store) LoadLeaves(batchID string) ([]chunker.Leaf, error) {
	if _, err := s.GetBatch(batchID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT leaf_index, name, script, witness, terminal, fingerprint
		 FROM leaves WHERE batch_id = ? ORDER BY leaf_index`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaves: %w", err)
	}
	defer rows.Close()

	var out []chunker.Leaf
	for rows.Next() {
		var (
			leaf        chunker.Leaf
			witness     []byte
			fingerprint int64
		)
		if err := rows.Scan(&leaf.Index, &leaf.Name, &leaf.Script, &witness, &leaf.Terminal, &fingerprint); err != nil {
			return nil, fmt.Errorf("scan leaf: %w", err)
		}
		if leaf.Witness, err = decodeWitness(witness); err != nil {
			return nil, fmt.Errorf("leaf %d: %w", leaf.Index, err)
		}
		leaf.Fingerprint = uint64(fingerprint)
		out = append(out, leaf)
	}
	return out, rows.Err()
}

// Outcomes returns the recorded outcome of every checked leaf, keyed by index.
func (s *Store) Outcomes(batchID string) (map[int]string, error) {
	rows, err := s.db.Query(
		`SELECT leaf_index, outcome FROM leaves WHERE batch_id = ? AND outcome IS NOT NULL`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	out := make(map[int]string)
	for rows.Next() {
		var (
			idx     int
			outcome string
		)
		if err := rows.Scan(&idx, &outcome); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out[idx] = outcome
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (BatchRecord, error) {
	var (
		rec       BatchRecord
		cfgJSON   string
		createdAt string
	)
	if err := row.Scan(&rec.BatchID, &rec.Label, &cfgJSON, &rec.LeafCount, &createdAt); err != nil {
		return BatchRecord{}, err
	}

	rec.Config = &utils.Config{}
	if err := json.Unmarshal([]byte(cfgJSON), rec.Config); err != nil {
		return BatchRecord{}, fmt.Errorf("unmarshal config: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return BatchRecord{}, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = t
	return rec, nil
}

// encodeWitness writes the item count followed by length-prefixed items
func encodeWitness(items [][]byte) []byte {
	buf := binary.AppendUvarint(nil, uint64(len(items)))
	for _, item := range items {
		buf = binary.AppendUvarint(buf, uint64(len(item)))
		buf = append(buf, item...)
	}
	return buf
}

func decodeWitness(b []byte) ([][]byte, error) {
	count, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad item count", ErrCorruptWitness)
	}
	b = b[n:]

	// Every item takes at least one length byte.
	if count > uint64(len(b)) {
		return nil, fmt.Errorf("%w: %d items in %d bytes", ErrCorruptWitness, count, len(b))
	}

	items := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		size, n := binary.Uvarint(b)
		if n <= 0 || size > uint64(len(b)-n) {
			return nil, fmt.Errorf("%w: item %d", ErrCorruptWitness, i)
		}
		b = b[n:]
		items = append(items, append([]byte{}, b[:size]...))
		b = b[size:]
	}
	if len(b) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptWitness, len(b))
	}
	return items, nil
}
