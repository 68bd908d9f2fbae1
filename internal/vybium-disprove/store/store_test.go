package store

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/chunker"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/utils"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "leaves.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleLeaves() []chunker.Leaf {
	return []chunker.Leaf{
		{Index: 0, Name: "first", Script: []byte{0x51, 0x87}, Witness: [][]byte{{1, 2, 3, 4}, {}, {0xff}}, Fingerprint: 1 << 63},
		{Index: 1, Name: "final", Script: []byte{0x00}, Witness: nil, Terminal: true, Fingerprint: 42},
	}
}

func TestSaveAndLoadBatch(t *testing.T) {
	s := tempDB(t)
	cfg := utils.DefaultConfig().WithTerminalGadget(true)

	rec, err := s.SaveBatch("groth16", cfg, sampleLeaves())
	if err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
	if rec.BatchID == "" || rec.LeafCount != 2 {
		t.Fatalf("unexpected record %+v", rec)
	}

	got, err := s.GetBatch(rec.BatchID)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if got.Label != "groth16" || !got.Config.TerminalGadget || got.Config.MaxStackSize != cfg.MaxStackSize {
		t.Errorf("GetBatch returned %+v", got)
	}

	leaves, err := s.LoadLeaves(rec.BatchID)
	if err != nil {
		t.Fatalf("LoadLeaves: %v", err)
	}
	want := sampleLeaves()
	if len(leaves) != len(want) {
		t.Fatalf("got %d leaves, want %d", len(leaves), len(want))
	}
	for i := range want {
		if leaves[i].Name != want[i].Name || leaves[i].Terminal != want[i].Terminal ||
			leaves[i].Fingerprint != want[i].Fingerprint || !bytes.Equal(leaves[i].Script, want[i].Script) {
			t.Errorf("leaf %d = %+v, want %+v", i, leaves[i], want[i])
		}
		if len(leaves[i].Witness) != len(want[i].Witness) {
			t.Fatalf("leaf %d witness has %d items, want %d", i, len(leaves[i].Witness), len(want[i].Witness))
		}
		for j := range want[i].Witness {
			if !bytes.Equal(leaves[i].Witness[j], want[i].Witness[j]) {
				t.Errorf("leaf %d witness item %d differs", i, j)
			}
		}
	}
}

func TestReports(t *testing.T) {
	s := tempDB(t)
	rec, err := s.SaveBatch("b", utils.DefaultConfig(), sampleLeaves())
	if err != nil {
		t.Fatal(err)
	}

	err = s.SaveReports(rec.BatchID, []chunker.Report{
		{Index: 0, Outcome: chunker.OutcomeFault},
	})
	if err != nil {
		t.Fatalf("SaveReports: %v", err)
	}

	outcomes, err := s.Outcomes(rec.BatchID)
	if err != nil {
		t.Fatalf("Outcomes: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0] != "fault" {
		t.Errorf("Outcomes = %v", outcomes)
	}

	err = s.SaveReports(rec.BatchID, []chunker.Report{{Index: 7}})
	if !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("SaveReports for a missing leaf: %v", err)
	}
}

func TestListBatches(t *testing.T) {
	s := tempDB(t)
	for _, label := range []string{"one", "two"} {
		if _, err := s.SaveBatch(label, utils.DefaultConfig(), sampleLeaves()); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListBatches()
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d batches, want 2", len(list))
	}
	if list[0].BatchID == list[1].BatchID {
		t.Error("batch ids are not unique")
	}
}

func TestNewStoreFailure(t *testing.T) {
	// A directory cannot be opened as a database file.
	s, err := NewStore(t.TempDir())
	if err == nil {
		s.Close()
		t.Fatal("NewStore on a directory succeeded")
	}
	if s != nil {
		t.Error("NewStore returned a store alongside an error")
	}
}

func TestMissingBatch(t *testing.T) {
	s := tempDB(t)
	if _, err := s.GetBatch("nope"); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("GetBatch: %v", err)
	}
	if _, err := s.LoadLeaves("nope"); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("LoadLeaves: %v", err)
	}
}

func TestWitnessEncoding(t *testing.T) {
	items := [][]byte{{}, {0}, bytes.Repeat([]byte{7}, 300)}
	got, err := decodeWitness(encodeWitness(items))
	if err != nil {
		t.Fatalf("decodeWitness: %v", err)
	}
	if len(got) != len(items) || !bytes.Equal(got[2], items[2]) {
		t.Errorf("decoded %d items", len(got))
	}

	bad := [][]byte{
		nil,
		{0x05, 0x01},
		{0x01, 0x09, 0xaa},
		append(encodeWitness(items), 0x00),
	}
	for i, b := range bad {
		if _, err := decodeWitness(b); !errors.Is(err, ErrCorruptWitness) {
			t.Errorf("case %d: got %v, want ErrCorruptWitness", i, err)
		}
	}
}
