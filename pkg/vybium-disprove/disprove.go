package vybiumdisprove

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/assigner"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/chunker"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/store"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/vm"
)

// Disprover compiles and checks the leaves of one protocol instance
type Disprover struct {
	chunker  *chunker.Chunker
	assigner Assigner
}

// Option configures a Disprover
type Option func(*options)

type options struct {
	log      zerolog.Logger
	assigner func(RevealSet) Assigner
}

// WithLogger sets the logger used for batch compilation
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithPinnedCommitments binds every committed name inside its locking fragment
func WithPinnedCommitments() Option {
	return func(o *options) {
		o.assigner = func(r RevealSet) Assigner { return assigner.NewPinnedAssigner(r) }
	}
}

// WithAssigner supplies an external commitment capability. The caller is
// responsible for building it with the same reveal set as the config.
func WithAssigner(a Assigner) Option {
	return func(o *options) {
		o.assigner = func(RevealSet) Assigner { return a }
	}
}

// NewDisprover creates a Disprover with the given configuration
func NewDisprover(config *Config, opts ...Option) (*Disprover, error) {
	o := options{
		log:      zerolog.Nop(),
		assigner: func(r RevealSet) Assigner { return assigner.NewDummyAssigner(r) },
	}
	for _, opt := range opts {
		opt(&o)
	}

	c, err := chunker.New(config, chunker.WithLogger(o.log))
	if err != nil {
		return nil, &Error{
			Code:    ErrInvalidConfig,
			Message: "invalid configuration",
			Cause:   err,
		}
	}

	return &Disprover{
		chunker:  c,
		assigner: o.assigner(c.Compiler().RevealSet()),
	}, nil
}

// Assigner returns the commitment capability in use
func (d *Disprover) Assigner() Assigner {
	return d.assigner
}

// Config returns a copy of the configuration
func (d *Disprover) Config() *Config {
	return d.chunker.Config()
}

// Script compiles the leaf script of a single segment
func (d *Disprover) Script(seg *Segment) (*Script, error) {
	s, err := d.chunker.Compiler().Script(seg, d.assigner)
	if err != nil {
		return nil, wrap("script compilation failed", err)
	}
	return s, nil
}

// Witness builds the witness of a single segment
func (d *Disprover) Witness(seg *Segment) ([][]byte, error) {
	w, err := d.chunker.Compiler().Witness(seg, d.assigner)
	if err != nil {
		return nil, wrap("witness construction failed", err)
	}
	return w, nil
}

// Compile verifies the chain and compiles every segment into a leaf
func (d *Disprover) Compile(ctx context.Context, segs []*Segment) ([]Leaf, error) {
	leaves, err := d.chunker.CompileAll(ctx, segs, d.assigner)
	if err != nil {
		return nil, wrap("batch compilation failed", err)
	}
	return leaves, nil
}

// Check executes a leaf and classifies the outcome
func (d *Disprover) Check(leaf Leaf) Report {
	return d.chunker.Check(leaf)
}

// CheckAll executes every leaf
func (d *Disprover) CheckAll(ctx context.Context, leaves []Leaf) ([]Report, error) {
	reports, err := d.chunker.CheckAll(ctx, leaves)
	if err != nil {
		return nil, wrap("leaf checks failed", err)
	}
	return reports, nil
}

// Execute runs a script on a witness with the configured limits
func (d *Disprover) Execute(s *Script, witness [][]byte) (*ExecutionResult, error) {
	res := vm.ExecuteWithLimits(s, witness, d.chunker.Config().VMLimits())
	if !res.Success {
		return res, wrap("execution failed", res.Err)
	}
	return res, nil
}

// Store persists leaf batches
type Store = store.Store

// BatchRecord describes a stored batch
type BatchRecord = store.BatchRecord

// OpenStore opens (and migrates) a SQLite leaf store
func OpenStore(path string) (*Store, error) {
	s, err := store.NewStore(path)
	if err != nil {
		return nil, &Error{
			Code:    ErrStorage,
			Message: "failed to open leaf store",
			Cause:   err,
		}
	}
	return s, nil
}
