// Package vm provides the reference interpreter for disprove bytecode
package vm

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
)

var (
	ErrStackUnderflow        = errors.New("stack underflow")
	ErrStackOverflow         = errors.New("stack size limit exceeded")
	ErrVerify                = errors.New("verify failed")
	ErrEqualVerify           = fmt.Errorf("equal%w", ErrVerify)
	ErrNumEqualVerify        = fmt.Errorf("numequal%w", ErrVerify)
	ErrEarlyReturn           = errors.New("script returned early")
	ErrUnbalancedConditional = errors.New("unbalanced conditional")
	ErrInvalidIndex          = errors.New("invalid stack index")
	ErrUnknownOpcode         = errors.New("unknown opcode")
	ErrPushSize              = errors.New("push exceeds maximum item size")
	ErrStepLimit             = errors.New("execution exceeded maximum steps")
)

// Limits bounds a single execution
type Limits struct {
	MaxStackSize int    // Combined main and alt stack items
	MaxSteps     uint64 // Executed instructions
}

// DefaultLimits returns the limits of the target machine
func DefaultLimits() Limits {
	return Limits{
		MaxStackSize: 1000,
		MaxSteps:     10_000_000,
	}
}

// VMState represents the complete state of the disprove machine
type VMState struct {
	// Program (read-only)
	Script *script.Script

	// Main stack, index len-1 is the top
	Stack [][]byte

	// Auxiliary stack, index len-1 is the top
	AltStack [][]byte

	// Execution state
	InstructionPointer int
	CycleCount         uint64

	// Branch state, one entry per open OP_IF/OP_NOTIF
	condStack []bool

	limits Limits
}

// NewVMState creates a machine with the witness items as the initial main stack.
// Witness items are pushed in order, so the last item ends up on top.
func NewVMState(s *script.Script, witness [][]byte, limits Limits) *VMState {
	stack := make([][]byte, 0, len(witness))
	for _, item := range witness {
		stack = append(stack, append([]byte{}, item...))
	}

	return &VMState{
		Script:   s,
		Stack:    stack,
		AltStack: make([][]byte, 0),
		limits:   limits,
	}
}

// Halted reports whether every instruction has been consumed
func (vm *VMState) Halted() bool {
	return vm.InstructionPointer >= vm.Script.Len()
}

// Run executes the script until it ends or fails
func (vm *VMState) Run() error {
	if len(vm.Stack) > vm.limits.MaxStackSize {
		return fmt.Errorf("%w: witness has %d items", ErrStackOverflow, len(vm.Stack))
	}

	for !vm.Halted() {
		if err := vm.Step(); err != nil {
			return fmt.Errorf("execution failed at cycle %d, IP %d: %w",
				vm.CycleCount, vm.InstructionPointer, err)
		}

		if vm.CycleCount > vm.limits.MaxSteps {
			return fmt.Errorf("%w (%d)", ErrStepLimit, vm.limits.MaxSteps)
		}
	}

	if len(vm.condStack) != 0 {
		return fmt.Errorf("%w: %d open branches at end of script", ErrUnbalancedConditional, len(vm.condStack))
	}
	return nil
}

// Step executes one instruction
func (vm *VMState) Step() error {
	if vm.Halted() {
		return fmt.Errorf("machine already halted")
	}

	ins := vm.Script.At(vm.InstructionPointer)

	if vm.executing() || ins.Opcode.IsConditional() {
		if err := vm.ExecuteInstruction(ins); err != nil {
			return fmt.Errorf("failed to execute %s: %w", ins.Opcode.String(), err)
		}
	}

	vm.InstructionPointer++
	vm.CycleCount++
	return nil
}

// executing reports whether the current branch is live
func (vm *VMState) executing() bool {
	for _, c := range vm.condStack {
		if !c {
			return false
		}
	}
	return true
}

// ExecuteInstruction dispatches to the appropriate instruction handler
func (vm *VMState) ExecuteInstruction(ins script.Instruction) error {
	if item, ok := ins.Pushed(); ok {
		if len(item) > script.MaxPushSize {
			return fmt.Errorf("%w: %d bytes", ErrPushSize, len(item))
		}
		return vm.StackPush(item)
	}

	switch ins.Opcode {
	// Control Flow
	case script.OP_NOP:
		return nil
	case script.OP_IF:
		return vm.execIf(false)
	case script.OP_NOTIF:
		return vm.execIf(true)
	case script.OP_ELSE:
		return vm.execElse()
	case script.OP_ENDIF:
		return vm.execEndIf()
	case script.OP_VERIFY:
		return vm.execVerify()
	case script.OP_RETURN:
		return ErrEarlyReturn

	// Stack Manipulation
	case script.OP_TOALTSTACK:
		return vm.execToAltStack()
	case script.OP_FROMALTSTACK:
		return vm.execFromAltStack()
	case script.OP_2DROP:
		return vm.execDropN(2)
	case script.OP_2DUP:
		return vm.execDupN(2)
	case script.OP_3DUP:
		return vm.execDupN(3)
	case script.OP_IFDUP:
		return vm.execIfDup()
	case script.OP_DEPTH:
		return vm.pushNum(int64(len(vm.Stack)))
	case script.OP_DROP:
		return vm.execDropN(1)
	case script.OP_DUP:
		return vm.execDupN(1)
	case script.OP_NIP:
		return vm.execNip()
	case script.OP_OVER:
		return vm.execPickAt(1)
	case script.OP_PICK:
		return vm.execPick()
	case script.OP_ROLL:
		return vm.execRoll()
	case script.OP_ROT:
		return vm.execRollAt(2)
	case script.OP_SWAP:
		return vm.execRollAt(1)
	case script.OP_TUCK:
		return vm.execTuck()

	// Splice
	case script.OP_CAT:
		return vm.execCat()
	case script.OP_SIZE:
		return vm.execSize()

	// Bitwise Logic
	case script.OP_EQUAL:
		return vm.execEqual(false)
	case script.OP_EQUALVERIFY:
		return vm.execEqual(true)

	// Arithmetic
	case script.OP_1ADD, script.OP_1SUB, script.OP_NEGATE, script.OP_ABS,
		script.OP_NOT, script.OP_0NOTEQUAL:
		return vm.execUnaryNum(ins.Opcode)
	case script.OP_ADD, script.OP_SUB, script.OP_BOOLAND, script.OP_BOOLOR,
		script.OP_NUMEQUAL, script.OP_NUMEQUALVERIFY, script.OP_NUMNOTEQUAL,
		script.OP_LESSTHAN, script.OP_GREATERTHAN, script.OP_LESSTHANOREQUAL,
		script.OP_GREATERTHANOREQUAL, script.OP_MIN, script.OP_MAX:
		return vm.execBinaryNum(ins.Opcode)
	case script.OP_WITHIN:
		return vm.execWithin()

	// Crypto
	case script.OP_SHA256:
		return vm.execSha256()
	case script.OP_HASHN:
		return vm.execHashN()

	default:
		return fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, byte(ins.Opcode))
	}
}

// Stack access helpers

// StackPush pushes an item onto the main stack
func (vm *VMState) StackPush(item []byte) error {
	if len(vm.Stack)+len(vm.AltStack)+1 > vm.limits.MaxStackSize {
		return fmt.Errorf("%w (%d)", ErrStackOverflow, vm.limits.MaxStackSize)
	}
	vm.Stack = append(vm.Stack, item)
	return nil
}

// StackPop removes the top item of the main stack
func (vm *VMState) StackPop() ([]byte, error) {
	if len(vm.Stack) == 0 {
		return nil, ErrStackUnderflow
	}
	item := vm.Stack[len(vm.Stack)-1]
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	return item, nil
}

// StackPeek returns the item at depth (0 = top)
func (vm *VMState) StackPeek(depth int) ([]byte, error) {
	if depth < 0 || depth >= len(vm.Stack) {
		return nil, fmt.Errorf("%w: depth %d, size %d", ErrInvalidIndex, depth, len(vm.Stack))
	}
	return vm.Stack[len(vm.Stack)-1-depth], nil
}

// stackRemove deletes and returns the item at depth (0 = top)
func (vm *VMState) stackRemove(depth int) ([]byte, error) {
	if depth < 0 || depth >= len(vm.Stack) {
		return nil, fmt.Errorf("%w: depth %d, size %d", ErrInvalidIndex, depth, len(vm.Stack))
	}
	idx := len(vm.Stack) - 1 - depth
	item := vm.Stack[idx]
	vm.Stack = append(vm.Stack[:idx], vm.Stack[idx+1:]...)
	return item, nil
}

func (vm *VMState) popNum() (int64, error) {
	item, err := vm.StackPop()
	if err != nil {
		return 0, err
	}
	return script.DecodeNum(item, script.MaxNumSize)
}

func (vm *VMState) pushNum(n int64) error {
	return vm.StackPush(script.EncodeNum(n))
}

func (vm *VMState) popBool() (bool, error) {
	item, err := vm.StackPop()
	if err != nil {
		return false, err
	}
	return script.AsBool(item), nil
}

func (vm *VMState) pushBool(v bool) error {
	return vm.StackPush(script.FromBool(v))
}

// ExecutionResult is the observable outcome of running a script with a witness
type ExecutionResult struct {
	Success         bool
	FinalStack      [][]byte // bottom first
	AltStack        [][]byte
	CycleCount      uint64
	RemainingScript int // instructions not executed
	Err             error
}

// Execute runs a script against a witness with the default limits
func Execute(s *script.Script, witness [][]byte) *ExecutionResult {
	return ExecuteWithLimits(s, witness, DefaultLimits())
}

// ExecuteWithLimits runs a script against a witness
func ExecuteWithLimits(s *script.Script, witness [][]byte, limits Limits) *ExecutionResult {
	vm := NewVMState(s, witness, limits)
	err := vm.Run()

	remaining := s.Len() - vm.InstructionPointer
	if remaining < 0 {
		remaining = 0
	}

	return &ExecutionResult{
		Success:         err == nil,
		FinalStack:      vm.Stack,
		AltStack:        vm.AltStack,
		CycleCount:      vm.CycleCount,
		RemainingScript: remaining,
		Err:             err,
	}
}

// String summarizes the result for logs and test failures
func (r *ExecutionResult) String() string {
	if r.Success {
		return fmt.Sprintf("success: %d items, %d cycles", len(r.FinalStack), r.CycleCount)
	}
	return fmt.Sprintf("failed after %d cycles (%d remaining): %v", r.CycleCount, r.RemainingScript, r.Err)
}
