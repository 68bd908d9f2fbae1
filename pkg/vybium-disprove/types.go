package vybiumdisprove

import (
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/assigner"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/chunker"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/elements"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/hints"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/segment"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/utils"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/vm"
)

// Config represents the configuration of one protocol instance
type Config = utils.Config

// Script is a composable stack-machine program
type Script = script.Script

// Opcode is a single machine instruction byte
type Opcode = script.Opcode

// Element is a named value with a fixed-size stack serialization
type Element = elements.Element

// Concrete BN254 value kinds
type (
	Fr      = elements.Fr
	Fq      = elements.Fq
	Fq2     = elements.Fq2
	Fq6     = elements.Fq6
	Fq12    = elements.Fq12
	G1Point = elements.G1Point
	G2Point = elements.G2Point
)

// RevealSet is the set of names compared by raw value instead of by digest
type RevealSet = elements.RevealSet

// Names of the proof components in the default reveal set
const (
	ProofA  = elements.ProofA
	ProofB  = elements.ProofB
	ProofC  = elements.ProofC
	Scalar1 = elements.Scalar1
	Scalar2 = elements.Scalar2
	Scalar3 = elements.Scalar3
	Scalar4 = elements.Scalar4
)

// Assigner is the commitment capability segments compile against
type Assigner = assigner.Assigner

// Commitment capabilities shipped with the compiler
type (
	DummyAssigner  = assigner.DummyAssigner
	PinnedAssigner = assigner.PinnedAssigner
)

// Hint produces auxiliary witness items through push instructions
type Hint = hints.Hint

// Segment is one compiled fragment of the chunked verifier
type Segment = segment.Segment

// Builder assembles a Segment
type Builder = segment.Builder

// Leaf is a compiled (script, witness) pair
type Leaf = chunker.Leaf

// Report is the classified execution of a Leaf
type Report = chunker.Report

// Outcome classifies the execution of a Leaf
type Outcome = chunker.Outcome

const (
	OutcomeNoFault   = chunker.OutcomeNoFault
	OutcomeFault     = chunker.OutcomeFault
	OutcomeAborted   = chunker.OutcomeAborted
	OutcomeNoVerdict = chunker.OutcomeNoVerdict
	OutcomeMalformed = chunker.OutcomeMalformed
)

// ExecutionResult is the observable outcome of running a script
type ExecutionResult = vm.ExecutionResult

// DefaultConfig returns the default protocol configuration
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// NewScript creates an empty script
func NewScript() *Script {
	return script.New()
}

// NewRevealSet builds a reveal set from names
func NewRevealSet(names ...string) RevealSet {
	return elements.NewRevealSet(names...)
}

// Value constructors; every element starts unfilled.

func NewFr(id string) *Fr { return elements.NewFr(id) }
func NewFq(id string) *Fq { return elements.NewFq(id) }
func NewFq2(id string) *Fq2 { return elements.NewFq2(id) }
func NewFq6(id string) *Fq6 { return elements.NewFq6(id) }
func NewFq12(id string) *Fq12 { return elements.NewFq12(id) }
func NewG1Point(id string) *G1Point { return elements.NewG1Point(id) }
func NewG2Point(id string) *G2Point { return elements.NewG2Point(id) }

// NewSegment starts a named segment around program
func NewSegment(name string, program *Script) Builder {
	return segment.NewWithName(name, program)
}

// NewDummyAssigner returns an assigner with empty locking fragments
func NewDummyAssigner(reveal RevealSet) *DummyAssigner {
	return assigner.NewDummyAssigner(reveal)
}

// NewPinnedAssigner returns an assigner whose fragments bind each name to its opening
func NewPinnedAssigner(reveal RevealSet) *PinnedAssigner {
	return assigner.NewPinnedAssigner(reveal)
}
