package vm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/core"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
)

func run(t *testing.T, s *script.Script, witness [][]byte) *ExecutionResult {
	t.Helper()
	return Execute(s, witness)
}

func top(t *testing.T, r *ExecutionResult) []byte {
	t.Helper()
	if len(r.FinalStack) == 0 {
		t.Fatal("final stack is empty")
	}
	return r.FinalStack[len(r.FinalStack)-1]
}

// TestStackManipulationInstructions tests all stack operations
func TestStackManipulationInstructions(t *testing.T) {
	t.Run("WitnessOrder", func(t *testing.T) {
		r := run(t, script.New(), [][]byte{{1}, {2}, {3}})
		if !r.Success {
			t.Fatalf("Run failed: %v", r.Err)
		}
		if !bytes.Equal(top(t, r), []byte{3}) {
			t.Errorf("top = %x, want 03", top(t, r))
		}
	})

	t.Run("Pick", func(t *testing.T) {
		s := script.New().AddInt(2).AddOp(script.OP_PICK)
		r := run(t, s, [][]byte{{0xa}, {0xb}, {0xc}})
		if !r.Success {
			t.Fatalf("Run failed: %v", r.Err)
		}
		if len(r.FinalStack) != 4 || !bytes.Equal(top(t, r), []byte{0xa}) {
			t.Errorf("Pick did not copy stack[2]: %x", r.FinalStack)
		}
	})

	t.Run("Roll", func(t *testing.T) {
		s := script.New().AddInt(2).AddOp(script.OP_ROLL)
		r := run(t, s, [][]byte{{0xa}, {0xb}, {0xc}})
		if !r.Success {
			t.Fatalf("Run failed: %v", r.Err)
		}
		want := [][]byte{{0xb}, {0xc}, {0xa}}
		for i := range want {
			if !bytes.Equal(r.FinalStack[i], want[i]) {
				t.Errorf("stack[%d] = %x, want %x", i, r.FinalStack[i], want[i])
			}
		}
	})

	t.Run("PickOutOfRange", func(t *testing.T) {
		s := script.New().AddInt(5).AddOp(script.OP_PICK)
		r := run(t, s, [][]byte{{1}})
		if r.Success || !errors.Is(r.Err, ErrInvalidIndex) {
			t.Errorf("expected ErrInvalidIndex, got %v", r.Err)
		}
	})

	t.Run("AltStack", func(t *testing.T) {
		s := script.New().
			AddOps(script.OP_TOALTSTACK, 3).
			AddOps(script.OP_FROMALTSTACK, 3)
		r := run(t, s, [][]byte{{1}, {2}, {3}})
		if !r.Success {
			t.Fatalf("Run failed: %v", r.Err)
		}
		for i, want := range [][]byte{{1}, {2}, {3}} {
			if !bytes.Equal(r.FinalStack[i], want) {
				t.Errorf("stack[%d] = %x, want %x", i, r.FinalStack[i], want)
			}
		}
		if len(r.AltStack) != 0 {
			t.Errorf("alt stack has %d items", len(r.AltStack))
		}
	})

	t.Run("FromEmptyAltStack", func(t *testing.T) {
		r := run(t, script.New().AddOp(script.OP_FROMALTSTACK), nil)
		if !errors.Is(r.Err, ErrStackUnderflow) {
			t.Errorf("expected ErrStackUnderflow, got %v", r.Err)
		}
	})

	t.Run("SwapRotTuck", func(t *testing.T) {
		s := script.New().AddOp(script.OP_SWAP).AddOp(script.OP_ROT).AddOp(script.OP_TUCK)
		// [1 2 3] swap -> [1 3 2] rot -> [3 2 1] tuck -> [3 1 2 1]
		r := run(t, s, [][]byte{{1}, {2}, {3}})
		if !r.Success {
			t.Fatalf("Run failed: %v", r.Err)
		}
		want := [][]byte{{3}, {1}, {2}, {1}}
		if len(r.FinalStack) != len(want) {
			t.Fatalf("stack size = %d, want %d", len(r.FinalStack), len(want))
		}
		for i := range want {
			if !bytes.Equal(r.FinalStack[i], want[i]) {
				t.Errorf("stack[%d] = %x, want %x", i, r.FinalStack[i], want[i])
			}
		}
	})

	t.Run("DupDrop", func(t *testing.T) {
		s := script.New().AddOp(script.OP_2DUP).AddOp(script.OP_3DUP).AddOp(script.OP_2DROP).AddOp(script.OP_DEPTH)
		r := run(t, s, [][]byte{{1}, {2}})
		if !r.Success {
			t.Fatalf("Run failed: %v", r.Err)
		}
		if n, _ := script.DecodeNum(top(t, r), 4); n != 5 {
			t.Errorf("depth = %d, want 5", n)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		s := script.New().AddOps(script.OP_DUP, 10)
		r := ExecuteWithLimits(s, [][]byte{{1}}, Limits{MaxStackSize: 5, MaxSteps: 100})
		if !errors.Is(r.Err, ErrStackOverflow) {
			t.Errorf("expected ErrStackOverflow, got %v", r.Err)
		}
	})
}

// TestControlFlowInstructions tests conditionals and verification
func TestControlFlowInstructions(t *testing.T) {
	t.Run("IfElse", func(t *testing.T) {
		s := script.New().
			AddOp(script.OP_IF).AddInt(7).
			AddOp(script.OP_ELSE).AddInt(9).
			AddOp(script.OP_ENDIF)

		r := run(t, s, [][]byte{{1}})
		if n, _ := script.DecodeNum(top(t, r), 4); n != 7 {
			t.Errorf("true branch pushed %d, want 7", n)
		}

		r = run(t, s, [][]byte{{}})
		if n, _ := script.DecodeNum(top(t, r), 4); n != 9 {
			t.Errorf("false branch pushed %d, want 9", n)
		}
	})

	t.Run("NestedDeadBranch", func(t *testing.T) {
		s := script.New().
			AddOp(script.OP_0).
			AddOp(script.OP_IF).
			AddOp(script.OP_IF).AddOp(script.OP_RETURN).AddOp(script.OP_ELSE).AddOp(script.OP_RETURN).AddOp(script.OP_ENDIF).
			AddOp(script.OP_ENDIF).
			AddOp(script.OP_1)
		r := run(t, s, nil)
		if !r.Success {
			t.Fatalf("dead branch executed: %v", r.Err)
		}
	})

	t.Run("Unbalanced", func(t *testing.T) {
		r := run(t, script.New().AddOp(script.OP_1).AddOp(script.OP_IF), nil)
		if !errors.Is(r.Err, ErrUnbalancedConditional) {
			t.Errorf("expected ErrUnbalancedConditional, got %v", r.Err)
		}
		r = run(t, script.New().AddOp(script.OP_ENDIF), nil)
		if !errors.Is(r.Err, ErrUnbalancedConditional) {
			t.Errorf("expected ErrUnbalancedConditional, got %v", r.Err)
		}
	})

	t.Run("Verify", func(t *testing.T) {
		r := run(t, script.New().AddOp(script.OP_VERIFY), [][]byte{{}})
		if !errors.Is(r.Err, ErrVerify) {
			t.Errorf("expected ErrVerify, got %v", r.Err)
		}
		if r.RemainingScript != 1 {
			t.Errorf("RemainingScript = %d, want 1", r.RemainingScript)
		}
	})

	t.Run("Return", func(t *testing.T) {
		r := run(t, script.New().AddOp(script.OP_RETURN), nil)
		if !errors.Is(r.Err, ErrEarlyReturn) {
			t.Errorf("expected ErrEarlyReturn, got %v", r.Err)
		}
	})
}

// TestComparisonInstructions tests equality and arithmetic
func TestComparisonInstructions(t *testing.T) {
	t.Run("Equal", func(t *testing.T) {
		r := run(t, script.New().AddOp(script.OP_EQUAL), [][]byte{{1, 2}, {1, 2}})
		if !script.AsBool(top(t, r)) {
			t.Error("equal items must compare true")
		}
		r = run(t, script.New().AddOp(script.OP_EQUAL), [][]byte{{1, 2}, {1, 3}})
		if len(top(t, r)) != 0 {
			t.Error("false must be the empty item")
		}
	})

	t.Run("EqualVerify", func(t *testing.T) {
		r := run(t, script.New().AddOp(script.OP_EQUALVERIFY), [][]byte{{1}, {2}})
		if !errors.Is(r.Err, ErrEqualVerify) || !errors.Is(r.Err, ErrVerify) {
			t.Errorf("expected ErrEqualVerify, got %v", r.Err)
		}
	})

	t.Run("Arithmetic", func(t *testing.T) {
		tests := []struct {
			name string
			op   script.Opcode
			a, b int64
			want int64
		}{
			{"Add", script.OP_ADD, 20, 22, 42},
			{"Sub", script.OP_SUB, 20, 22, -2},
			{"Min", script.OP_MIN, 3, -4, -4},
			{"Max", script.OP_MAX, 3, -4, 3},
			{"BoolAnd", script.OP_BOOLAND, 1, 0, 0},
			{"BoolOr", script.OP_BOOLOR, 1, 0, 1},
			{"LessThan", script.OP_LESSTHAN, 1, 2, 1},
			{"NumNotEqual", script.OP_NUMNOTEQUAL, 5, 5, 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := script.New().AddInt(tt.a).AddInt(tt.b).AddOp(tt.op)
				r := run(t, s, nil)
				if !r.Success {
					t.Fatalf("Run failed: %v", r.Err)
				}
				got, err := script.DecodeNum(top(t, r), 4)
				if err != nil {
					t.Fatalf("DecodeNum failed: %v", err)
				}
				if got != tt.want {
					t.Errorf("%s(%d, %d) = %d, want %d", tt.name, tt.a, tt.b, got, tt.want)
				}
			})
		}
	})

	t.Run("NotAndWithin", func(t *testing.T) {
		s := script.New().AddOp(script.OP_NOT).AddInt(0).AddInt(2).AddOp(script.OP_WITHIN)
		r := run(t, s, [][]byte{{}})
		if !script.AsBool(top(t, r)) {
			t.Error("NOT(0) = 1 should be within [0, 2)")
		}
	})

	t.Run("NonMinimalOperand", func(t *testing.T) {
		r := run(t, script.New().AddOp(script.OP_1ADD), [][]byte{{0x01, 0x00}})
		if !errors.Is(r.Err, script.ErrNumNotMinimal) {
			t.Errorf("expected ErrNumNotMinimal, got %v", r.Err)
		}
	})
}

// TestCryptoInstructions tests the hash opcodes
func TestCryptoInstructions(t *testing.T) {
	t.Run("HashNMatchesCore", func(t *testing.T) {
		items := [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}}
		witness := append([][]byte{{0xff}}, items...)

		r := run(t, script.New().AddInt(3).AddOp(script.OP_HASHN), witness)
		if !r.Success {
			t.Fatalf("Run failed: %v", r.Err)
		}

		want := core.HashItems(items)
		if len(r.FinalStack) != 1+core.HashLimbs {
			t.Fatalf("stack size = %d, want %d", len(r.FinalStack), 1+core.HashLimbs)
		}
		for i, limb := range want {
			if !bytes.Equal(r.FinalStack[1+i], limb) {
				t.Errorf("limb %d = %x, want %x", i, r.FinalStack[1+i], limb)
			}
		}
	})

	t.Run("HashNUnderflow", func(t *testing.T) {
		r := run(t, script.New().AddInt(4).AddOp(script.OP_HASHN), [][]byte{{1}})
		if !errors.Is(r.Err, ErrStackUnderflow) {
			t.Errorf("expected ErrStackUnderflow, got %v", r.Err)
		}
	})

	t.Run("Sha256AndCat", func(t *testing.T) {
		s := script.New().AddOp(script.OP_CAT).AddOp(script.OP_SIZE)
		r := run(t, s, [][]byte{{1, 2}, {3}})
		if n, _ := script.DecodeNum(top(t, r), 4); n != 3 {
			t.Errorf("size = %d, want 3", n)
		}

		r = run(t, script.New().AddOp(script.OP_SHA256), [][]byte{{}})
		if len(top(t, r)) != 32 {
			t.Errorf("sha256 item has %d bytes", len(top(t, r)))
		}
	})

	t.Run("UnknownOpcode", func(t *testing.T) {
		r := run(t, script.New().AddOp(script.Opcode(0xfe)), nil)
		if !errors.Is(r.Err, ErrUnknownOpcode) {
			t.Errorf("expected ErrUnknownOpcode, got %v", r.Err)
		}
	})
}
