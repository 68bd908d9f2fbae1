// Package hints provides auxiliary witness values and their evaluation.
//
// A hint is a push-only snippet. The witness builder runs every hint of a
// segment through the reference interpreter and places the final stack, bottom
// first, at the start of the witness. The inner program then consumes those
// items instead of recomputing them.
package hints

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/core"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/vm"
)

var ErrNotPush = errors.New("hint contains a non-push instruction")

// Hint produces stack items through push instructions only
type Hint interface {
	// Script returns the push snippet
	Script() *script.Script
}

// pushLimbs emits one push per limb
func pushLimbs(items [][]byte) *script.Script {
	s := script.New()
	for _, item := range items {
		s.AddData(item)
	}
	return s
}

// FqHint pushes a base field element as limbs
type FqHint struct {
	Value fp.Element
}

func (h FqHint) Script() *script.Script {
	b := h.Value.Bytes()
	return pushLimbs(core.SplitLimbs(b[:]))
}

// FrHint pushes a scalar as limbs
type FrHint struct {
	Value fr.Element
}

func (h FrHint) Script() *script.Script {
	b := h.Value.Bytes()
	return pushLimbs(core.SplitLimbs(b[:]))
}

// U256Hint pushes a 256-bit integer as big-endian limbs
type U256Hint struct {
	Value *uint256.Int
}

func (h U256Hint) Script() *script.Script {
	var v uint256.Int
	if h.Value != nil {
		v.Set(h.Value)
	}
	b := v.Bytes32()
	return pushLimbs(core.SplitLimbs(b[:]))
}

// NumberHint pushes a script number
type NumberHint int64

func (h NumberHint) Script() *script.Script {
	return script.New().AddInt(int64(h))
}

// BytesHint pushes a single raw item
type BytesHint []byte

func (h BytesHint) Script() *script.Script {
	return script.New().AddData(h)
}

// Concat joins the snippets of hints in order
func Concat(list []Hint) *script.Script {
	s := script.New()
	for _, h := range list {
		s.Append(h.Script())
	}
	return s
}

// Evaluate runs the hints and returns the final stack, bottom first
func Evaluate(list []Hint, limits vm.Limits) ([][]byte, error) {
	s := Concat(list)
	for i, ins := range s.Instructions() {
		if !ins.Opcode.IsPush() {
			return nil, fmt.Errorf("%w: %s at %d", ErrNotPush, ins.Opcode, i)
		}
	}

	res := vm.ExecuteWithLimits(s, nil, limits)
	if !res.Success {
		return nil, fmt.Errorf("hint evaluation failed: %w", res.Err)
	}
	return res.FinalStack, nil
}

// Size returns the number of items the hints produce
func Size(list []Hint) int {
	n := 0
	for _, h := range list {
		n += h.Script().Len()
	}
	return n
}
