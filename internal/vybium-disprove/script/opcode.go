// Package script provides the bytecode representation executed by the disprove machine
package script

import "fmt"

// Opcode is a single byte of the disprove machine instruction set.
// Numbering follows Bitcoin script so that compiled leaves can be read with
// familiar tooling; OP_CAT is enabled and OP_HASHN is the variable-length hash primitive.
type Opcode byte

// Instruction Set Architecture
const (
	// ========== Constants ==========

	// OP_0 pushes an empty item (false)
	OP_0     Opcode = 0x00
	OP_FALSE Opcode = OP_0

	// OP_DATA_1 .. OP_DATA_75 push the next n bytes
	OP_DATA_1  Opcode = 0x01
	OP_DATA_75 Opcode = 0x4b

	// OP_PUSHDATA1 pushes data with a 1-byte length prefix
	OP_PUSHDATA1 Opcode = 0x4c

	// OP_PUSHDATA2 pushes data with a 2-byte little-endian length prefix
	OP_PUSHDATA2 Opcode = 0x4d

	// OP_PUSHDATA4 pushes data with a 4-byte little-endian length prefix
	OP_PUSHDATA4 Opcode = 0x4e

	// OP_1NEGATE pushes -1
	OP_1NEGATE Opcode = 0x4f

	// OP_1 .. OP_16 push the small integers 1..16
	OP_1    Opcode = 0x51
	OP_TRUE Opcode = OP_1
	OP_2    Opcode = 0x52
	OP_16   Opcode = 0x60

	// ========== Control Flow ==========

	OP_NOP    Opcode = 0x61
	OP_IF     Opcode = 0x63
	OP_NOTIF  Opcode = 0x64
	OP_ELSE   Opcode = 0x67
	OP_ENDIF  Opcode = 0x68
	OP_VERIFY Opcode = 0x69
	OP_RETURN Opcode = 0x6a

	// ========== Stack Manipulation ==========

	OP_TOALTSTACK   Opcode = 0x6b
	OP_FROMALTSTACK Opcode = 0x6c
	OP_2DROP        Opcode = 0x6d
	OP_2DUP         Opcode = 0x6e
	OP_3DUP         Opcode = 0x6f
	OP_IFDUP        Opcode = 0x73
	OP_DEPTH        Opcode = 0x74
	OP_DROP         Opcode = 0x75
	OP_DUP          Opcode = 0x76
	OP_NIP          Opcode = 0x77
	OP_OVER         Opcode = 0x78
	OP_PICK         Opcode = 0x79
	OP_ROLL         Opcode = 0x7a
	OP_ROT          Opcode = 0x7b
	OP_SWAP         Opcode = 0x7c
	OP_TUCK         Opcode = 0x7d

	// ========== Splice ==========

	OP_CAT  Opcode = 0x7e
	OP_SIZE Opcode = 0x82

	// ========== Bitwise Logic ==========

	OP_EQUAL       Opcode = 0x87
	OP_EQUALVERIFY Opcode = 0x88

	// ========== Arithmetic ==========

	OP_1ADD               Opcode = 0x8b
	OP_1SUB               Opcode = 0x8c
	OP_NEGATE             Opcode = 0x8f
	OP_ABS                Opcode = 0x90
	OP_NOT                Opcode = 0x91
	OP_0NOTEQUAL          Opcode = 0x92
	OP_ADD                Opcode = 0x93
	OP_SUB                Opcode = 0x94
	OP_BOOLAND            Opcode = 0x9a
	OP_BOOLOR             Opcode = 0x9b
	OP_NUMEQUAL           Opcode = 0x9c
	OP_NUMEQUALVERIFY     Opcode = 0x9d
	OP_NUMNOTEQUAL        Opcode = 0x9e
	OP_LESSTHAN           Opcode = 0x9f
	OP_GREATERTHAN        Opcode = 0xa0
	OP_LESSTHANOREQUAL    Opcode = 0xa1
	OP_GREATERTHANOREQUAL Opcode = 0xa2
	OP_MIN                Opcode = 0xa3
	OP_MAX                Opcode = 0xa4
	OP_WITHIN             Opcode = 0xa5

	// ========== Crypto ==========

	// OP_SHA256 replaces the top item with its SHA-256 digest
	OP_SHA256 Opcode = 0xa8

	// OP_HASHN pops n, hashes the top n items and pushes the digest limbs
	OP_HASHN Opcode = 0xbb
)

// OpcodeInfo provides metadata about an opcode
type OpcodeInfo struct {
	Opcode      Opcode
	Name        string
	Description string
	Inputs      int // Items consumed (excluding variable operands)
	Outputs     int // Items produced
}

// AllOpcodes returns information about every non-push opcode
var AllOpcodes = map[Opcode]OpcodeInfo{
	OP_0:          {OP_0, "OP_0", "Push empty item", 0, 1},
	OP_PUSHDATA1:  {OP_PUSHDATA1, "OP_PUSHDATA1", "Push data (1-byte length)", 0, 1},
	OP_PUSHDATA2:  {OP_PUSHDATA2, "OP_PUSHDATA2", "Push data (2-byte length)", 0, 1},
	OP_PUSHDATA4:  {OP_PUSHDATA4, "OP_PUSHDATA4", "Push data (4-byte length)", 0, 1},
	OP_1NEGATE:    {OP_1NEGATE, "OP_1NEGATE", "Push -1", 0, 1},
	OP_NOP:        {OP_NOP, "OP_NOP", "No operation", 0, 0},
	OP_IF:         {OP_IF, "OP_IF", "Execute branch if top is true", 1, 0},
	OP_NOTIF:      {OP_NOTIF, "OP_NOTIF", "Execute branch if top is false", 1, 0},
	OP_ELSE:       {OP_ELSE, "OP_ELSE", "Toggle current branch", 0, 0},
	OP_ENDIF:      {OP_ENDIF, "OP_ENDIF", "End conditional", 0, 0},
	OP_VERIFY:     {OP_VERIFY, "OP_VERIFY", "Abort unless top is true", 1, 0},
	OP_RETURN:     {OP_RETURN, "OP_RETURN", "Abort", 0, 0},
	OP_TOALTSTACK: {OP_TOALTSTACK, "OP_TOALTSTACK", "Move top to alt stack", 1, 0},
	OP_FROMALTSTACK: {OP_FROMALTSTACK, "OP_FROMALTSTACK", "Move alt top to main stack", 0, 1},
	OP_2DROP:      {OP_2DROP, "OP_2DROP", "Remove top two items", 2, 0},
	OP_2DUP:       {OP_2DUP, "OP_2DUP", "Duplicate top two items", 2, 4},
	OP_3DUP:       {OP_3DUP, "OP_3DUP", "Duplicate top three items", 3, 6},
	OP_IFDUP:      {OP_IFDUP, "OP_IFDUP", "Duplicate top if true", 1, 1},
	OP_DEPTH:      {OP_DEPTH, "OP_DEPTH", "Push stack depth", 0, 1},
	OP_DROP:       {OP_DROP, "OP_DROP", "Remove top item", 1, 0},
	OP_DUP:        {OP_DUP, "OP_DUP", "Duplicate top item", 1, 2},
	OP_NIP:        {OP_NIP, "OP_NIP", "Remove second item", 2, 1},
	OP_OVER:       {OP_OVER, "OP_OVER", "Copy second item to top", 2, 3},
	OP_PICK:       {OP_PICK, "OP_PICK", "Copy item n to top", 1, 1},
	OP_ROLL:       {OP_ROLL, "OP_ROLL", "Move item n to top", 1, 1},
	OP_ROT:        {OP_ROT, "OP_ROT", "Rotate top three items", 3, 3},
	OP_SWAP:       {OP_SWAP, "OP_SWAP", "Swap top two items", 2, 2},
	OP_TUCK:       {OP_TUCK, "OP_TUCK", "Copy top below second", 2, 3},
	OP_CAT:        {OP_CAT, "OP_CAT", "Concatenate top two items", 2, 1},
	OP_SIZE:       {OP_SIZE, "OP_SIZE", "Push byte length of top", 1, 2},
	OP_EQUAL:      {OP_EQUAL, "OP_EQUAL", "Byte equality", 2, 1},
	OP_EQUALVERIFY: {OP_EQUALVERIFY, "OP_EQUALVERIFY", "Byte equality or abort", 2, 0},
	OP_1ADD:       {OP_1ADD, "OP_1ADD", "Add one", 1, 1},
	OP_1SUB:       {OP_1SUB, "OP_1SUB", "Subtract one", 1, 1},
	OP_NEGATE:     {OP_NEGATE, "OP_NEGATE", "Negate", 1, 1},
	OP_ABS:        {OP_ABS, "OP_ABS", "Absolute value", 1, 1},
	OP_NOT:        {OP_NOT, "OP_NOT", "1 if zero, else 0", 1, 1},
	OP_0NOTEQUAL:  {OP_0NOTEQUAL, "OP_0NOTEQUAL", "0 if zero, else 1", 1, 1},
	OP_ADD:        {OP_ADD, "OP_ADD", "Add", 2, 1},
	OP_SUB:        {OP_SUB, "OP_SUB", "Subtract", 2, 1},
	OP_BOOLAND:    {OP_BOOLAND, "OP_BOOLAND", "Logical and", 2, 1},
	OP_BOOLOR:     {OP_BOOLOR, "OP_BOOLOR", "Logical or", 2, 1},
	OP_NUMEQUAL:   {OP_NUMEQUAL, "OP_NUMEQUAL", "Numeric equality", 2, 1},
	OP_NUMEQUALVERIFY: {OP_NUMEQUALVERIFY, "OP_NUMEQUALVERIFY", "Numeric equality or abort", 2, 0},
	OP_NUMNOTEQUAL: {OP_NUMNOTEQUAL, "OP_NUMNOTEQUAL", "Numeric inequality", 2, 1},
	OP_LESSTHAN:   {OP_LESSTHAN, "OP_LESSTHAN", "a < b", 2, 1},
	OP_GREATERTHAN: {OP_GREATERTHAN, "OP_GREATERTHAN", "a > b", 2, 1},
	OP_LESSTHANOREQUAL: {OP_LESSTHANOREQUAL, "OP_LESSTHANOREQUAL", "a <= b", 2, 1},
	OP_GREATERTHANOREQUAL: {OP_GREATERTHANOREQUAL, "OP_GREATERTHANOREQUAL", "a >= b", 2, 1},
	OP_MIN:        {OP_MIN, "OP_MIN", "Minimum", 2, 1},
	OP_MAX:        {OP_MAX, "OP_MAX", "Maximum", 2, 1},
	OP_WITHIN:     {OP_WITHIN, "OP_WITHIN", "min <= x < max", 3, 1},
	OP_SHA256:     {OP_SHA256, "OP_SHA256", "SHA-256 of top", 1, 1},
	OP_HASHN:      {OP_HASHN, "OP_HASHN", "Variable-length hash of top n items", 1, 0},
}

// String returns the name of the opcode
func (op Opcode) String() string {
	if op.IsDirectPush() {
		return fmt.Sprintf("OP_DATA_%d", int(op))
	}
	if op.IsSmallInt() {
		return fmt.Sprintf("OP_%d", int(op-OP_1)+1)
	}
	if info, ok := AllOpcodes[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("OP_UNKNOWN%d", op)
}

// Info returns metadata about the opcode
func (op Opcode) Info() (OpcodeInfo, error) {
	info, ok := AllOpcodes[op]
	if !ok {
		return OpcodeInfo{}, fmt.Errorf("unknown opcode: 0x%02x", byte(op))
	}
	return info, nil
}

// IsDirectPush reports whether the opcode itself encodes a data length
func (op Opcode) IsDirectPush() bool {
	return op >= OP_DATA_1 && op <= OP_DATA_75
}

// IsPushData reports whether the opcode is followed by an explicit length prefix
func (op Opcode) IsPushData() bool {
	return op == OP_PUSHDATA1 || op == OP_PUSHDATA2 || op == OP_PUSHDATA4
}

// IsSmallInt reports whether the opcode pushes one of 1..16
func (op Opcode) IsSmallInt() bool {
	return op >= OP_1 && op <= OP_16
}

// IsPush reports whether the opcode only pushes data
func (op Opcode) IsPush() bool {
	switch {
	case op == OP_0, op == OP_1NEGATE:
		return true
	case op.IsDirectPush(), op.IsPushData(), op.IsSmallInt():
		return true
	}
	return false
}

// IsConditional reports whether the opcode changes the branch state.
// Conditionals are evaluated even inside a non-executing branch.
func (op Opcode) IsConditional() bool {
	return op == OP_IF || op == OP_NOTIF || op == OP_ELSE || op == OP_ENDIF
}

// IsKnown reports whether the machine defines the opcode
func (op Opcode) IsKnown() bool {
	if op.IsPush() {
		return true
	}
	_, ok := AllOpcodes[op]
	return ok
}
