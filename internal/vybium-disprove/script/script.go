package script

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// MaxPushSize is the largest item a single push may carry
const MaxPushSize = 520

// ErrMalformedScript is returned when serialized bytecode cannot be decoded
var ErrMalformedScript = errors.New("malformed script")

// Instruction is one decoded opcode together with its push payload
type Instruction struct {
	Opcode Opcode
	Data   []byte // payload for push opcodes, nil otherwise
}

// Pushed returns the item the instruction pushes, if it is a push
func (ins Instruction) Pushed() ([]byte, bool) {
	switch {
	case ins.Opcode == OP_0:
		return []byte{}, true
	case ins.Opcode == OP_1NEGATE:
		return EncodeNum(-1), true
	case ins.Opcode.IsSmallInt():
		return EncodeNum(int64(ins.Opcode-OP_1) + 1), true
	case ins.Opcode.IsPush():
		return ins.Data, true
	}
	return nil, false
}

// String returns the disassembly of the instruction
func (ins Instruction) String() string {
	if ins.Opcode.IsDirectPush() || ins.Opcode.IsPushData() {
		return "<" + hex.EncodeToString(ins.Data) + ">"
	}
	return ins.Opcode.String()
}

// Script is an ordered, composable sequence of instructions.
// Builder methods append in place and return the receiver for chaining.
type Script struct {
	instructions []Instruction
}

// New creates an empty script
func New() *Script {
	return &Script{instructions: make([]Instruction, 0)}
}

// AddOp appends a single opcode
func (s *Script) AddOp(op Opcode) *Script {
	s.instructions = append(s.instructions, Instruction{Opcode: op})
	return s
}

// AddOps appends the same opcode n times
func (s *Script) AddOps(op Opcode, n int) *Script {
	for i := 0; i < n; i++ {
		s.AddOp(op)
	}
	return s
}

// AddInt appends the shortest push of the integer n
func (s *Script) AddInt(n int64) *Script {
	switch {
	case n == 0:
		return s.AddOp(OP_0)
	case n == -1:
		return s.AddOp(OP_1NEGATE)
	case n >= 1 && n <= 16:
		return s.AddOp(OP_1 + Opcode(n-1))
	}
	return s.AddData(EncodeNum(n))
}

// AddData appends the minimal push of b. The executed item is byte-identical to b.
func (s *Script) AddData(b []byte) *Script {
	switch {
	case len(b) == 0:
		return s.AddOp(OP_0)
	case len(b) == 1 && b[0] >= 1 && b[0] <= 16:
		return s.AddOp(OP_1 + Opcode(b[0]-1))
	case len(b) == 1 && b[0] == 0x81:
		return s.AddOp(OP_1NEGATE)
	}

	data := make([]byte, len(b))
	copy(data, b)

	var op Opcode
	switch {
	case len(b) <= int(OP_DATA_75):
		op = Opcode(len(b))
	case len(b) <= 0xff:
		op = OP_PUSHDATA1
	case len(b) <= 0xffff:
		op = OP_PUSHDATA2
	default:
		op = OP_PUSHDATA4
	}
	s.instructions = append(s.instructions, Instruction{Opcode: op, Data: data})
	return s
}

// Append embeds another script verbatim
func (s *Script) Append(other *Script) *Script {
	if other == nil {
		return s
	}
	s.instructions = append(s.instructions, other.instructions...)
	return s
}

// Len returns the number of instructions
func (s *Script) Len() int {
	return len(s.instructions)
}

// Instructions returns a copy of the instruction list
func (s *Script) Instructions() []Instruction {
	out := make([]Instruction, len(s.instructions))
	copy(out, s.instructions)
	return out
}

// At returns the instruction at index i
func (s *Script) At(i int) Instruction {
	return s.instructions[i]
}

// Clone returns an independent copy of the script
func (s *Script) Clone() *Script {
	return &Script{instructions: s.Instructions()}
}

// Count returns how many times op occurs in the script
func (s *Script) Count(op Opcode) int {
	n := 0
	for _, ins := range s.instructions {
		if ins.Opcode == op {
			n++
		}
	}
	return n
}

// Bytes serializes the script to bytecode
func (s *Script) Bytes() []byte {
	out := make([]byte, 0, len(s.instructions))
	for _, ins := range s.instructions {
		out = append(out, byte(ins.Opcode))
		switch {
		case ins.Opcode.IsDirectPush():
			out = append(out, ins.Data...)
		case ins.Opcode == OP_PUSHDATA1:
			out = append(out, byte(len(ins.Data)))
			out = append(out, ins.Data...)
		case ins.Opcode == OP_PUSHDATA2:
			out = binary.LittleEndian.AppendUint16(out, uint16(len(ins.Data)))
			out = append(out, ins.Data...)
		case ins.Opcode == OP_PUSHDATA4:
			out = binary.LittleEndian.AppendUint32(out, uint32(len(ins.Data)))
			out = append(out, ins.Data...)
		}
	}
	return out
}

// Parse decodes serialized bytecode
func Parse(b []byte) (*Script, error) {
	s := New()
	for i := 0; i < len(b); {
		op := Opcode(b[i])
		i++

		var n int
		switch {
		case op.IsDirectPush():
			n = int(op)
		case op == OP_PUSHDATA1:
			if i+1 > len(b) {
				return nil, fmt.Errorf("%w: truncated OP_PUSHDATA1 length at %d", ErrMalformedScript, i)
			}
			n = int(b[i])
			i++
		case op == OP_PUSHDATA2:
			if i+2 > len(b) {
				return nil, fmt.Errorf("%w: truncated OP_PUSHDATA2 length at %d", ErrMalformedScript, i)
			}
			n = int(binary.LittleEndian.Uint16(b[i:]))
			i += 2
		case op == OP_PUSHDATA4:
			if i+4 > len(b) {
				return nil, fmt.Errorf("%w: truncated OP_PUSHDATA4 length at %d", ErrMalformedScript, i)
			}
			size := binary.LittleEndian.Uint32(b[i:])
			i += 4
			if uint64(size) > uint64(len(b)-i) {
				return nil, fmt.Errorf("%w: push of %d bytes exceeds script at %d", ErrMalformedScript, size, i)
			}
			n = int(size)
		default:
			s.instructions = append(s.instructions, Instruction{Opcode: op})
			continue
		}

		if i+n > len(b) {
			return nil, fmt.Errorf("%w: push of %d bytes exceeds script at %d", ErrMalformedScript, n, i)
		}
		data := make([]byte, n)
		copy(data, b[i:i+n])
		s.instructions = append(s.instructions, Instruction{Opcode: op, Data: data})
		i += n
	}
	return s, nil
}

// String returns a space separated disassembly
func (s *Script) String() string {
	parts := make([]string, len(s.instructions))
	for i, ins := range s.instructions {
		parts[i] = ins.String()
	}
	return strings.Join(parts, " ")
}
