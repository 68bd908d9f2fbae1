// Package chunker compiles a chunked verifier, an ordered list of segments
// chained by value names, into disprove leaves and classifies their execution.
package chunker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/assigner"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/core"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/elements"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/segment"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/utils"
)

var (
	ErrChainConflict = errors.New("name used with inconsistent values")
	ErrLeafTooLarge  = errors.New("leaf witness exceeds the stack limit")
)

// Leaf is one compiled branch of the disprove tree
type Leaf struct {
	Index       int
	Name        string
	Script      []byte
	Witness     [][]byte
	Terminal    bool
	Fingerprint uint64 // Poseidon digest of script and witness
}

// Chunker compiles segments for one protocol instance
type Chunker struct {
	cfg      *utils.Config
	compiler *segment.Compiler
	log      zerolog.Logger
}

// Option configures a Chunker
type Option func(*Chunker)

// WithLogger sets the logger; the default discards everything
func WithLogger(l zerolog.Logger) Option {
	return func(c *Chunker) {
		c.log = l
	}
}

// New creates a chunker from a validated copy of cfg
func New(cfg *utils.Config, opts ...Option) (*Chunker, error) {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg = cfg.Clone()
	c := &Chunker{
		cfg:      cfg,
		compiler: segment.NewCompiler(cfg),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns a copy of the configuration
func (c *Chunker) Config() *utils.Config {
	return c.cfg.Clone()
}

// Compiler returns the segment compiler
func (c *Chunker) Compiler() *segment.Compiler {
	return c.compiler
}

// NewAssigner returns a dummy assigner sharing the chunker's reveal set
func (c *Chunker) NewAssigner() *assigner.DummyAssigner {
	return assigner.NewDummyAssigner(c.compiler.RevealSet())
}

// Compile produces the leaf of a single segment
func (c *Chunker) Compile(index int, seg *segment.Segment, a assigner.Assigner) (Leaf, error) {
	s, err := c.compiler.Script(seg, a)
	if err != nil {
		return Leaf{}, err
	}
	w, err := c.compiler.Witness(seg, a)
	if err != nil {
		return Leaf{}, err
	}
	if len(w) > c.cfg.MaxStackSize {
		return Leaf{}, fmt.Errorf("%w: segment %q needs %d items (max %d)",
			ErrLeafTooLarge, seg.Name(), len(w), c.cfg.MaxStackSize)
	}

	code := s.Bytes()
	leaf := Leaf{
		Index:       index,
		Name:        seg.Name(),
		Script:      code,
		Witness:     w,
		Terminal:    seg.IsTerminal(),
		Fingerprint: core.FingerprintItems(append([][]byte{code}, w...)),
	}

	c.log.Debug().
		Int("index", index).
		Str("segment", seg.Name()).
		Int("scriptBytes", len(code)).
		Int("witnessItems", len(w)).
		Msg("leaf compiled")
	return leaf, nil
}

// CompileAll compiles every segment concurrently. Leaves keep the order of segs.
// The chain is checked first; a conflicting name aborts the batch.
func (c *Chunker) CompileAll(ctx context.Context, segs []*segment.Segment, a assigner.Assigner) ([]Leaf, error) {
	if err := VerifyChain(segs); err != nil {
		return nil, err
	}

	log := c.log.With().Int("segments", len(segs)).Int("workers", c.cfg.Workers).Logger()
	start := time.Now()

	leaves := make([]Leaf, len(segs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	for i, seg := range segs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			leaf, err := c.Compile(i, seg, a)
			if err != nil {
				return fmt.Errorf("leaf %d: %w", i, err)
			}
			leaves[i] = leaf
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("batch compilation failed")
		return nil, err
	}

	log.Info().Dur("took", time.Since(start)).Msg("batch compiled")
	return leaves, nil
}

// VerifyChain checks that every name denotes one kind and one value across
// all segments, whether it appears as a parameter or as a result.
func VerifyChain(segs []*segment.Segment) error {
	type use struct {
		elem elements.Element
		seg  string
	}
	seen := make(map[string]use)

	check := func(seg *segment.Segment, list []elements.Element) error {
		for _, e := range list {
			prev, ok := seen[e.ID()]
			if !ok {
				seen[e.ID()] = use{elem: e, seg: seg.Name()}
				continue
			}
			if !elements.SameValue(prev.elem, e) {
				return fmt.Errorf("%w: %q in segment %q differs from segment %q",
					ErrChainConflict, e.ID(), seg.Name(), prev.seg)
			}
		}
		return nil
	}

	for _, seg := range segs {
		if err := check(seg, seg.Parameters()); err != nil {
			return err
		}
		if err := check(seg, seg.Results()); err != nil {
			return err
		}
	}
	return nil
}
