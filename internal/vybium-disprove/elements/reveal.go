package elements

import "sort"

// Names of the proof components that are revealed in full rather than committed by digest
const (
	ProofA  = "proof_a"
	ProofB  = "proof_b"
	ProofC  = "proof_c"
	Scalar1 = "scalar_1"
	Scalar2 = "scalar_2"
	Scalar3 = "scalar_3"
	Scalar4 = "scalar_4"
)

// ProofNames lists the default reveal set
var ProofNames = []string{ProofA, ProofB, ProofC, Scalar1, Scalar2, Scalar3, Scalar4}

// RevealSet is the set of element names whose values appear in witnesses verbatim.
// The zero value is an empty set.
type RevealSet struct {
	names map[string]struct{}
}

// NewRevealSet builds a set from the given names
func NewRevealSet(names ...string) RevealSet {
	set := RevealSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		set.names[n] = struct{}{}
	}
	return set
}

// DefaultRevealSet returns the set built from ProofNames
func DefaultRevealSet() RevealSet {
	return NewRevealSet(ProofNames...)
}

// Contains reports whether name is revealed
func (r RevealSet) Contains(name string) bool {
	_, ok := r.names[name]
	return ok
}

// Len returns the number of names in the set
func (r RevealSet) Len() int {
	return len(r.names)
}

// Names returns the names in sorted order
func (r RevealSet) Names() []string {
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
