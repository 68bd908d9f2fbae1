package assigner

import (
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/elements"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
)

// PinnedAssigner binds every name to its opening: the locking fragment
// embeds the committed items and aborts unless the stack carries exactly
// those items. An opening supplied for another name is rejected.
type PinnedAssigner struct {
	l *ledger
}

// NewPinnedAssigner creates an assigner for the given reveal set
func NewPinnedAssigner(reveal elements.RevealSet) *PinnedAssigner {
	return &PinnedAssigner{l: newLedger(reveal)}
}

// LockingScript returns, for an opening m_0..m_{c-1} with m_{c-1} on top,
//
//	for i = c-1 .. 0: OP_DUP <m_i> OP_EQUALVERIFY OP_TOALTSTACK
//	c × OP_FROMALTSTACK
//
// which leaves the opening in place.
func (a *PinnedAssigner) LockingScript(e elements.Element) (*script.Script, error) {
	c, err := a.l.commit(e)
	if err != nil {
		return nil, err
	}

	s := script.New()
	for i := len(c.Opening) - 1; i >= 0; i-- {
		s.AddOp(script.OP_DUP).
			AddData(c.Opening[i]).
			AddOp(script.OP_EQUALVERIFY).
			AddOp(script.OP_TOALTSTACK)
	}
	return s.AddOps(script.OP_FROMALTSTACK, len(c.Opening)), nil
}

// Witness returns the opening fixed at the first sight of the name
func (a *PinnedAssigner) Witness(e elements.Element) ([][]byte, error) {
	return a.l.witness(e)
}

// Names returns every committed name in issuance order
func (a *PinnedAssigner) Names() []string {
	return a.l.names()
}

// Lookup returns the commitment recorded for name
func (a *PinnedAssigner) Lookup(name string) (Commitment, bool) {
	return a.l.lookup(name)
}
