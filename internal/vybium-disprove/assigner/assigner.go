// Package assigner provides the commitment capabilities a segment compiles against.
//
// An Assigner issues, per element name, a locking fragment that verifies an
// opening on the stack, and the opening witness that satisfies it. Output is
// keyed by name and fixed the first time a name is seen, so the same name in
// two segments always refers to the same committed quantity.
package assigner

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/core"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/elements"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
)

var (
	ErrNotFilled = errors.New("element has no value to commit to")
	ErrConflict  = errors.New("name already committed with a different layout")
)

// Assigner is the commitment capability consumed by the segment compiler
type Assigner interface {
	// LockingScript returns the fragment that verifies the opening of e.
	// The fragment leaves the opening items on the main stack.
	LockingScript(e elements.Element) (*script.Script, error)

	// Witness returns the opening items for e
	Witness(e elements.Element) ([][]byte, error)
}

// Commitment is the ledger entry for one name
type Commitment struct {
	Name    string
	Kind    elements.Kind
	Reveal  bool     // opening is the raw value rather than its digest
	Opening [][]byte // items the locking fragment accepts
}

// OpeningSize returns the number of opening items
func (c *Commitment) OpeningSize() int {
	return len(c.Opening)
}

// ledger is the name-keyed cache shared by the assigner implementations
type ledger struct {
	mu      sync.RWMutex
	reveal  elements.RevealSet
	entries map[string]*Commitment
	order   []string
}

func newLedger(reveal elements.RevealSet) *ledger {
	return &ledger{
		reveal:  reveal,
		entries: make(map[string]*Commitment),
	}
}

// commit returns the entry for e's name, creating it from e's current value
// on first sight. Later calls ignore the value and only check the kind.
func (l *ledger) commit(e elements.Element) (*Commitment, error) {
	l.mu.RLock()
	c, ok := l.entries[e.ID()]
	l.mu.RUnlock()
	if ok {
		return c, l.check(c, e)
	}

	reveal := l.reveal.Contains(e.ID())
	var (
		opening [][]byte
		filled  bool
	)
	if reveal {
		opening, filled = e.ToWitness()
	} else {
		opening, filled = e.ToHashWitness()
	}
	if !filled {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFilled, e.Kind(), e.ID())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Another caller may have committed the name in the meantime.
	if c, ok := l.entries[e.ID()]; ok {
		return c, l.check(c, e)
	}

	c = &Commitment{
		Name:    e.ID(),
		Kind:    e.Kind(),
		Reveal:  reveal,
		Opening: opening,
	}
	l.entries[c.Name] = c
	l.order = append(l.order, c.Name)
	return c, nil
}

func (l *ledger) check(c *Commitment, e elements.Element) error {
	if c.Kind != e.Kind() {
		return fmt.Errorf("%w: %q committed as %s, used as %s", ErrConflict, c.Name, c.Kind, e.Kind())
	}
	return nil
}

// lookup returns a copy of the entry for name
func (l *ledger) lookup(name string) (Commitment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.entries[name]
	if !ok {
		return Commitment{}, false
	}
	cp := *c
	cp.Opening = core.CloneItems(c.Opening)
	return cp, true
}

// names returns the committed names in issuance order
func (l *ledger) names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.order...)
}

func (l *ledger) witness(e elements.Element) ([][]byte, error) {
	c, err := l.commit(e)
	if err != nil {
		return nil, err
	}
	return core.CloneItems(c.Opening), nil
}
