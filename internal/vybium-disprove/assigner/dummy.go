package assigner

import (
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/elements"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
)

// DummyAssigner commits to nothing: its locking fragment is empty and the
// opening is the value digest (or the raw value for revealed names). It is
// what the segment compiler is developed and tested against.
type DummyAssigner struct {
	l *ledger
}

// NewDummyAssigner creates an assigner for the given reveal set
func NewDummyAssigner(reveal elements.RevealSet) *DummyAssigner {
	return &DummyAssigner{l: newLedger(reveal)}
}

// LockingScript records the name and returns an empty fragment
func (a *DummyAssigner) LockingScript(e elements.Element) (*script.Script, error) {
	if _, err := a.l.commit(e); err != nil {
		return nil, err
	}
	return script.New(), nil
}

// Witness returns the opening fixed at the first sight of the name
func (a *DummyAssigner) Witness(e elements.Element) ([][]byte, error) {
	return a.l.witness(e)
}

// Names returns every committed name in issuance order
func (a *DummyAssigner) Names() []string {
	return a.l.names()
}

// Lookup returns the commitment recorded for name
func (a *DummyAssigner) Lookup(name string) (Commitment, bool) {
	return a.l.lookup(name)
}
