// Package segment compiles one fragment of a chunked verifier into a
// challengeable leaf: the bytecode that checks every commitment, recomputes
// the fragment and compares the results, and the witness that satisfies it.
//
// After the leaf script runs on its witness, an honest segment leaves the
// no-fault marker (false) on the stack. If the committed results differ from
// the recomputed ones the fault marker (true) is left instead, which lets any
// watcher claim the slash.
package segment

import (
	"fmt"
	"slices"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/elements"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/hints"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
)

// Segment is an immutable compilation unit
type Segment struct {
	name       string
	program    *script.Script
	parameters []elements.Element
	results    []elements.Element
	hints      []hints.Hint
	terminal   bool
}

// Name returns the diagnostic name
func (s *Segment) Name() string {
	return s.name
}

// Program returns a copy of the inner program
func (s *Segment) Program() *script.Script {
	return s.program.Clone()
}

// Parameters returns the parameters in insertion order
func (s *Segment) Parameters() []elements.Element {
	return slices.Clone(s.parameters)
}

// Results returns the results in insertion order
func (s *Segment) Results() []elements.Element {
	return slices.Clone(s.results)
}

// Hints returns the hint list
func (s *Segment) Hints() []hints.Hint {
	return slices.Clone(s.hints)
}

// IsTerminal reports whether the segment is the final assertion branch
func (s *Segment) IsTerminal() bool {
	return s.terminal
}

func (s *Segment) String() string {
	name := s.name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("segment %s (%d params, %d results, %d hints, %d ops)",
		name, len(s.parameters), len(s.results), len(s.hints), s.program.Len())
}

// Builder assembles a Segment. Every method returns a new Builder and
// leaves the receiver untouched, so builders may be forked freely.
type Builder struct {
	seg Segment
}

// New starts an anonymous segment around program
func New(program *script.Script) Builder {
	return NewWithName("", program)
}

// NewWithName starts a named segment around program
func NewWithName(name string, program *script.Script) Builder {
	if program == nil {
		program = script.New()
	}
	return Builder{seg: Segment{name: name, program: program.Clone()}}
}

// AddParameter appends a snapshot of e to the parameters
func (b Builder) AddParameter(e elements.Element) Builder {
	b.seg.parameters = append(slices.Clip(b.seg.parameters), e.Clone())
	return b
}

// AddResult appends a snapshot of e to the results
func (b Builder) AddResult(e elements.Element) Builder {
	b.seg.results = append(slices.Clip(b.seg.results), e.Clone())
	return b
}

// AddHints replaces the hint list
func (b Builder) AddHints(list []hints.Hint) Builder {
	b.seg.hints = slices.Clone(list)
	return b
}

// MarkTerminal marks the segment as the final assertion branch
func (b Builder) MarkTerminal() Builder {
	b.seg.terminal = true
	return b
}

// Build returns the finished segment
func (b Builder) Build() *Segment {
	return &Segment{
		name:       b.seg.name,
		program:    b.seg.program.Clone(),
		parameters: slices.Clone(b.seg.parameters),
		results:    slices.Clone(b.seg.results),
		hints:      slices.Clone(b.seg.hints),
		terminal:   b.seg.terminal,
	}
}
