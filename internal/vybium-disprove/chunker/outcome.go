package chunker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/vm"
)

// Outcome classifies the execution of a leaf
type Outcome int

const (
	// OutcomeNoFault: the commitments match the recomputation
	OutcomeNoFault Outcome = iota
	// OutcomeFault: a committed result differs, the leaf can be published to slash
	OutcomeFault
	// OutcomeAborted: an opening was rejected or the machine failed
	OutcomeAborted
	// OutcomeNoVerdict: a terminal leaf compiled without the fault gadget ran to completion
	OutcomeNoVerdict
	// OutcomeMalformed: the bytecode does not parse or the final stack has no single marker
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoFault:
		return "no-fault"
	case OutcomeFault:
		return "fault"
	case OutcomeAborted:
		return "aborted"
	case OutcomeNoVerdict:
		return "no-verdict"
	case OutcomeMalformed:
		return "malformed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Report is the result of executing one leaf
type Report struct {
	Index      int
	Name       string
	Outcome    Outcome
	Cycles     uint64
	StackDepth int
	Err        error
}

func (r Report) String() string {
	if r.Err != nil {
		return fmt.Sprintf("leaf %d (%s): %s: %v", r.Index, r.Name, r.Outcome, r.Err)
	}
	return fmt.Sprintf("leaf %d (%s): %s after %d cycles", r.Index, r.Name, r.Outcome, r.Cycles)
}

// Check executes a leaf with the configured limits and classifies the result
func (c *Chunker) Check(leaf Leaf) Report {
	rep := Report{Index: leaf.Index, Name: leaf.Name}

	s, err := script.Parse(leaf.Script)
	if err != nil {
		rep.Outcome = OutcomeMalformed
		rep.Err = err
		return rep
	}

	res := vm.ExecuteWithLimits(s, leaf.Witness, c.cfg.VMLimits())
	rep.Cycles = res.CycleCount
	rep.StackDepth = len(res.FinalStack)
	rep.Outcome = classify(leaf, res)
	rep.Err = res.Err

	c.log.Debug().
		Int("index", leaf.Index).
		Str("segment", leaf.Name).
		Stringer("outcome", rep.Outcome).
		Uint64("cycles", rep.Cycles).
		Msg("leaf checked")
	return rep
}

func classify(leaf Leaf, res *vm.ExecutionResult) Outcome {
	if !res.Success {
		return OutcomeAborted
	}
	if len(res.FinalStack) != 1 {
		if leaf.Terminal {
			return OutcomeNoVerdict
		}
		return OutcomeMalformed
	}
	if script.AsBool(res.FinalStack[0]) {
		return OutcomeFault
	}
	return OutcomeNoFault
}

// CheckAll executes every leaf concurrently; reports keep the order of leaves
func (c *Chunker) CheckAll(ctx context.Context, leaves []Leaf) ([]Report, error) {
	reports := make([]Report, len(leaves))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	for i, leaf := range leaves {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = c.Check(leaf)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Faults returns the reports whose leaf can be published
func Faults(reports []Report) []Report {
	var out []Report
	for _, r := range reports {
		if r.Outcome == OutcomeFault {
			out = append(out, r)
		}
	}
	return out
}
