// Package vm provides instruction execution handlers for the disprove machine
package vm

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/core"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
)

// ============================================================================
// Control Flow Instructions
// ============================================================================

// execIf opens a branch; the condition is only consumed inside a live branch
func (vm *VMState) execIf(negate bool) error {
	cond := false
	if vm.executing() {
		v, err := vm.popBool()
		if err != nil {
			return err
		}
		cond = v != negate
	}
	vm.condStack = append(vm.condStack, cond)
	return nil
}

func (vm *VMState) execElse() error {
	if len(vm.condStack) == 0 {
		return fmt.Errorf("%w: OP_ELSE without OP_IF", ErrUnbalancedConditional)
	}
	vm.condStack[len(vm.condStack)-1] = !vm.condStack[len(vm.condStack)-1]
	return nil
}

func (vm *VMState) execEndIf() error {
	if len(vm.condStack) == 0 {
		return fmt.Errorf("%w: OP_ENDIF without OP_IF", ErrUnbalancedConditional)
	}
	vm.condStack = vm.condStack[:len(vm.condStack)-1]
	return nil
}

func (vm *VMState) execVerify() error {
	ok, err := vm.popBool()
	if err != nil {
		return err
	}
	if !ok {
		return ErrVerify
	}
	return nil
}

// ============================================================================
// Stack Manipulation Instructions
// ============================================================================

func (vm *VMState) execToAltStack() error {
	item, err := vm.StackPop()
	if err != nil {
		return err
	}
	vm.AltStack = append(vm.AltStack, item)
	return nil
}

func (vm *VMState) execFromAltStack() error {
	if len(vm.AltStack) == 0 {
		return fmt.Errorf("%w: alt stack is empty", ErrStackUnderflow)
	}
	item := vm.AltStack[len(vm.AltStack)-1]
	vm.AltStack = vm.AltStack[:len(vm.AltStack)-1]
	vm.Stack = append(vm.Stack, item)
	return nil
}

// execDropN removes the top n items
func (vm *VMState) execDropN(n int) error {
	if len(vm.Stack) < n {
		return fmt.Errorf("%w: need %d items, have %d", ErrStackUnderflow, n, len(vm.Stack))
	}
	vm.Stack = vm.Stack[:len(vm.Stack)-n]
	return nil
}

// execDupN duplicates the top n items, keeping their order
func (vm *VMState) execDupN(n int) error {
	if len(vm.Stack) < n {
		return fmt.Errorf("%w: need %d items, have %d", ErrStackUnderflow, n, len(vm.Stack))
	}
	for i := 0; i < n; i++ {
		item, _ := vm.StackPeek(n - 1)
		if err := vm.StackPush(item); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VMState) execIfDup() error {
	item, err := vm.StackPeek(0)
	if err != nil {
		return err
	}
	if script.AsBool(item) {
		return vm.StackPush(item)
	}
	return nil
}

func (vm *VMState) execNip() error {
	_, err := vm.stackRemove(1)
	return err
}

// execPickAt copies the item at depth to the top
func (vm *VMState) execPickAt(depth int) error {
	item, err := vm.StackPeek(depth)
	if err != nil {
		return err
	}
	return vm.StackPush(item)
}

// execRollAt moves the item at depth to the top
func (vm *VMState) execRollAt(depth int) error {
	item, err := vm.stackRemove(depth)
	if err != nil {
		return err
	}
	vm.Stack = append(vm.Stack, item)
	return nil
}

// execPick copies stack[n] to top, n taken from the stack
func (vm *VMState) execPick() error {
	n, err := vm.popNum()
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: pick index %d", ErrInvalidIndex, n)
	}
	return vm.execPickAt(int(n))
}

// execRoll moves stack[n] to top, n taken from the stack
func (vm *VMState) execRoll() error {
	n, err := vm.popNum()
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: roll index %d", ErrInvalidIndex, n)
	}
	return vm.execRollAt(int(n))
}

func (vm *VMState) execTuck() error {
	if len(vm.Stack) < 2 {
		return fmt.Errorf("%w: need 2 items, have %d", ErrStackUnderflow, len(vm.Stack))
	}
	if err := vm.StackPush(nil); err != nil {
		return err
	}
	n := len(vm.Stack)
	top := vm.Stack[n-2]
	vm.Stack[n-1] = top
	vm.Stack[n-2] = vm.Stack[n-3]
	vm.Stack[n-3] = top
	return nil
}

// ============================================================================
// Splice Instructions
// ============================================================================

func (vm *VMState) execCat() error {
	b, err := vm.StackPop()
	if err != nil {
		return err
	}
	a, err := vm.StackPop()
	if err != nil {
		return err
	}
	if len(a)+len(b) > script.MaxPushSize {
		return fmt.Errorf("%w: concatenation of %d bytes", ErrPushSize, len(a)+len(b))
	}
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return vm.StackPush(append(out, b...))
}

func (vm *VMState) execSize() error {
	item, err := vm.StackPeek(0)
	if err != nil {
		return err
	}
	return vm.pushNum(int64(len(item)))
}

// ============================================================================
// Bitwise Logic Instructions
// ============================================================================

func (vm *VMState) execEqual(verify bool) error {
	b, err := vm.StackPop()
	if err != nil {
		return err
	}
	a, err := vm.StackPop()
	if err != nil {
		return err
	}
	eq := bytes.Equal(a, b)
	if verify {
		if !eq {
			return fmt.Errorf("%w: %x != %x", ErrEqualVerify, a, b)
		}
		return nil
	}
	return vm.pushBool(eq)
}

// ============================================================================
// Arithmetic Instructions
// ============================================================================

func (vm *VMState) execUnaryNum(op script.Opcode) error {
	a, err := vm.popNum()
	if err != nil {
		return err
	}

	switch op {
	case script.OP_1ADD:
		return vm.pushNum(a + 1)
	case script.OP_1SUB:
		return vm.pushNum(a - 1)
	case script.OP_NEGATE:
		return vm.pushNum(-a)
	case script.OP_ABS:
		if a < 0 {
			a = -a
		}
		return vm.pushNum(a)
	case script.OP_NOT:
		return vm.pushBool(a == 0)
	case script.OP_0NOTEQUAL:
		return vm.pushBool(a != 0)
	}
	return fmt.Errorf("%w: %s is not unary", ErrUnknownOpcode, op)
}

// execBinaryNum pops b (top) then a and pushes op(a, b)
func (vm *VMState) execBinaryNum(op script.Opcode) error {
	b, err := vm.popNum()
	if err != nil {
		return err
	}
	a, err := vm.popNum()
	if err != nil {
		return err
	}

	switch op {
	case script.OP_ADD:
		return vm.pushNum(a + b)
	case script.OP_SUB:
		return vm.pushNum(a - b)
	case script.OP_BOOLAND:
		return vm.pushBool(a != 0 && b != 0)
	case script.OP_BOOLOR:
		return vm.pushBool(a != 0 || b != 0)
	case script.OP_NUMEQUAL:
		return vm.pushBool(a == b)
	case script.OP_NUMEQUALVERIFY:
		if a != b {
			return fmt.Errorf("%w: %d != %d", ErrNumEqualVerify, a, b)
		}
		return nil
	case script.OP_NUMNOTEQUAL:
		return vm.pushBool(a != b)
	case script.OP_LESSTHAN:
		return vm.pushBool(a < b)
	case script.OP_GREATERTHAN:
		return vm.pushBool(a > b)
	case script.OP_LESSTHANOREQUAL:
		return vm.pushBool(a <= b)
	case script.OP_GREATERTHANOREQUAL:
		return vm.pushBool(a >= b)
	case script.OP_MIN:
		return vm.pushNum(min(a, b))
	case script.OP_MAX:
		return vm.pushNum(max(a, b))
	}
	return fmt.Errorf("%w: %s is not binary", ErrUnknownOpcode, op)
}

// execWithin pushes min <= x < max
func (vm *VMState) execWithin() error {
	hi, err := vm.popNum()
	if err != nil {
		return err
	}
	lo, err := vm.popNum()
	if err != nil {
		return err
	}
	x, err := vm.popNum()
	if err != nil {
		return err
	}
	return vm.pushBool(lo <= x && x < hi)
}

// ============================================================================
// Crypto Instructions
// ============================================================================

func (vm *VMState) execSha256() error {
	item, err := vm.StackPop()
	if err != nil {
		return err
	}
	sum := sha256.Sum256(item)
	return vm.StackPush(sum[:])
}

// execHashN pops n and replaces the top n items with the digest limbs.
// The hashed items are taken bottom first, matching core.HashItems.
func (vm *VMState) execHashN() error {
	n, err := vm.popNum()
	if err != nil {
		return err
	}
	if n < 1 || n > core.MaxHashInputs {
		return fmt.Errorf("%w: hash input count %d (must be 1-%d)", ErrInvalidIndex, n, core.MaxHashInputs)
	}
	if int(n) > len(vm.Stack) {
		return fmt.Errorf("%w: hash needs %d items, have %d", ErrStackUnderflow, n, len(vm.Stack))
	}

	start := len(vm.Stack) - int(n)
	digest := core.HashItems(vm.Stack[start:])
	vm.Stack = vm.Stack[:start]

	for _, limb := range digest {
		if err := vm.StackPush(limb); err != nil {
			return err
		}
	}
	return nil
}
