package segment

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/assigner"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/core"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/elements"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/hints"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/utils"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/vm"
)

var (
	// ErrUnpopulated is returned when a parameter has no value to place in the witness
	ErrUnpopulated = errors.New("parameter value is not populated")

	// ErrRevealResult is returned when a result name is in the direct-reveal set
	ErrRevealResult = errors.New("result is in the direct-reveal set")
)

// Compiler turns segments into leaf scripts and witnesses for one protocol instance
type Compiler struct {
	reveal         elements.RevealSet
	terminalGadget bool
	limits         vm.Limits
}

// NewCompiler creates a compiler from the configuration
func NewCompiler(cfg *utils.Config) *Compiler {
	return &Compiler{
		reveal:         cfg.RevealSet(),
		terminalGadget: cfg.TerminalGadget,
		limits:         cfg.VMLimits(),
	}
}

// RevealSet returns the direct-reveal set the compiler was built with
func (c *Compiler) RevealSet() elements.RevealSet {
	return c.reveal
}

// Script compiles the leaf script of seg.
//
// The matching witness (see Witness) is laid out as
//
//	[hints.., p0.., p1.., open(p1).., open(p0).., open(r0).., open(r1)..]
//
// with the last item on top of the stack.
func (c *Compiler) Script(seg *Segment, a assigner.Assigner) (*script.Script, error) {
	const h = core.HashLimbs
	if err := c.checkResults(seg); err != nil {
		return nil, err
	}
	s := script.New()

	// Unlock the result commitments; their digests wait on the alt stack.
	for i := len(seg.results) - 1; i >= 0; i-- {
		r := seg.results[i]
		lock, err := a.LockingScript(r)
		if err != nil {
			return nil, fmt.Errorf("segment %q: result %q: %w", seg.name, r.ID(), err)
		}
		s.Append(lock).AddOps(script.OP_TOALTSTACK, h)
	}

	// Unlock the parameter commitments. Revealed parameters keep the full value.
	for _, p := range seg.parameters {
		lock, err := a.LockingScript(p)
		if err != nil {
			return nil, fmt.Errorf("segment %q: parameter %q: %w", seg.name, p.ID(), err)
		}
		s.Append(lock)
		if c.reveal.Contains(p.ID()) {
			s.AddOps(script.OP_TOALTSTACK, p.WitnessSize())
		} else {
			s.AddOps(script.OP_TOALTSTACK, h)
		}
	}

	// Check every raw parameter against its opening, last parameter first.
	base := 0
	for i := len(seg.parameters) - 1; i >= 0; i-- {
		p := seg.parameters[i]
		size := p.WitnessSize()

		for j := 0; j < size; j++ {
			s.AddInt(int64(base + size - 1)).AddOp(script.OP_PICK)
		}
		if c.reveal.Contains(p.ID()) {
			s.AddOps(script.OP_FROMALTSTACK, size).Append(EqualVerify(size))
		} else {
			s.Append(HashVar(size)).
				AddOps(script.OP_FROMALTSTACK, h).
				Append(EqualVerify(h))
		}
		base += size
	}

	// Recompute, then bring fresh and committed result digests side by side.
	s.Append(seg.program)
	for i := len(seg.results) - 1; i >= 0; i-- {
		s.Append(HashVar(seg.results[i].WitnessSize())).AddOps(script.OP_TOALTSTACK, h)
	}
	s.AddOps(script.OP_FROMALTSTACK, 2*h*len(seg.results))

	if !seg.terminal || c.terminalGadget {
		s.Append(NotEqual(h * len(seg.results)))
	}
	return s, nil
}

// Witness builds the witness that accompanies Script(seg, a)
func (c *Compiler) Witness(seg *Segment, a assigner.Assigner) ([][]byte, error) {
	if err := c.checkResults(seg); err != nil {
		return nil, err
	}

	witness, err := hints.Evaluate(seg.hints, c.limits)
	if err != nil {
		return nil, fmt.Errorf("segment %q: %w", seg.name, err)
	}

	for _, p := range seg.parameters {
		w, ok := p.ToWitness()
		if !ok {
			return nil, fmt.Errorf("%w: %s %q in segment %q", ErrUnpopulated, p.Kind(), p.ID(), seg.name)
		}
		witness = append(witness, w...)
	}

	for i := len(seg.parameters) - 1; i >= 0; i-- {
		p := seg.parameters[i]
		w, err := a.Witness(p)
		if err != nil {
			return nil, fmt.Errorf("segment %q: parameter %q: %w", seg.name, p.ID(), err)
		}
		witness = append(witness, w...)
	}

	for _, r := range seg.results {
		w, err := a.Witness(r)
		if err != nil {
			return nil, fmt.Errorf("segment %q: result %q: %w", seg.name, r.ID(), err)
		}
		witness = append(witness, w...)
	}

	return witness, nil
}

func (c *Compiler) checkResults(seg *Segment) error {
	for _, r := range seg.results {
		if c.reveal.Contains(r.ID()) {
			return fmt.Errorf("%w: %q in segment %q", ErrRevealResult, r.ID(), seg.name)
		}
	}
	return nil
}
