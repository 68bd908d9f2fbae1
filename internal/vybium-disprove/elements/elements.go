// Package elements provides the typed, named values that segments consume and produce.
//
// Every value serializes to a fixed number of 4-byte stack items. A value is
// identified by its name: the same name in two segments denotes the same
// committed quantity.
package elements

import (
	"fmt"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/core"
)

// Kind identifies the concrete value type of an element
type Kind int

const (
	KindFr Kind = iota
	KindFq
	KindFq2
	KindFq6
	KindFq12
	KindG1Point
	KindG2Point
)

// fieldLimbs is the number of items one serialized base field element occupies
const fieldLimbs = 32 / core.LimbSize

// kindInfo describes the layout of each kind
var kindInfo = map[Kind]struct {
	name   string
	fields int // base field elements
}{
	KindFr:      {"fr", 1},
	KindFq:      {"fq", 1},
	KindFq2:     {"fq2", 2},
	KindFq6:     {"fq6", 6},
	KindFq12:    {"fq12", 12},
	KindG1Point: {"g1", 2},
	KindG2Point: {"g2", 4},
}

// String returns the name of the kind
func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// WitnessSize returns the number of stack items a value of this kind occupies
func (k Kind) WitnessSize() int {
	return kindInfo[k].fields * fieldLimbs
}

// Element is a named value with a fixed-size stack serialization
type Element interface {
	// ID returns the name that identifies the value across segments
	ID() string

	// Kind returns the concrete value type
	Kind() Kind

	// WitnessSize returns the number of stack items of the serialized value
	WitnessSize() int

	// ToWitness returns the serialized value, or false if it was never filled
	ToWitness() ([][]byte, bool)

	// ToHashWitness returns the hash-primitive digest of the serialized value
	ToHashWitness() ([][]byte, bool)

	// Clone returns an independent snapshot of the element
	Clone() Element
}

// element is the shared state behind every kind
type element struct {
	id   string
	kind Kind
	data [][]byte // nil until filled
}

func (e *element) ID() string {
	return e.id
}

func (e *element) Kind() Kind {
	return e.kind
}

func (e *element) WitnessSize() int {
	return e.kind.WitnessSize()
}

func (e *element) ToWitness() ([][]byte, bool) {
	if e.data == nil {
		return nil, false
	}
	return core.CloneItems(e.data), true
}

func (e *element) ToHashWitness() ([][]byte, bool) {
	if e.data == nil {
		return nil, false
	}
	return core.HashItems(e.data), true
}

// String describes the element for logs
func (e *element) String() string {
	state := "empty"
	if e.data != nil {
		state = fmt.Sprintf("%d items", len(e.data))
	}
	return fmt.Sprintf("%s:%s(%s)", e.kind, e.id, state)
}

func (e *element) snapshot() element {
	return element{id: e.id, kind: e.kind, data: core.CloneItems(e.data)}
}

// setItems fills the element from raw items after checking the layout
func (e *element) setItems(items [][]byte) error {
	if len(items) != e.WitnessSize() {
		return fmt.Errorf("%s %q: got %d items, want %d", e.kind, e.id, len(items), e.WitnessSize())
	}
	for i, item := range items {
		if len(item) != core.LimbSize {
			return fmt.Errorf("%s %q: item %d has %d bytes, want %d", e.kind, e.id, i, len(item), core.LimbSize)
		}
	}
	e.data = core.CloneItems(items)
	return nil
}

// SameValue reports whether two elements carry the same kind and serialized value.
// Unfilled elements only match other unfilled elements of the same kind.
func SameValue(a, b Element) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	wa, okA := a.ToWitness()
	wb, okB := b.ToWitness()
	if okA != okB {
		return false
	}
	for i := range wa {
		if string(wa[i]) != string(wb[i]) {
			return false
		}
	}
	return true
}
