package script

import (
	"bytes"
	"errors"
	"testing"
)

// TestAddIntEncoding tests the shortest-push rules for integers
func TestAddIntEncoding(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want []byte
	}{
		{"zero", 0, []byte{byte(OP_0)}},
		{"minus one", -1, []byte{byte(OP_1NEGATE)}},
		{"one", 1, []byte{byte(OP_1)}},
		{"sixteen", 16, []byte{byte(OP_16)}},
		{"seventeen", 17, []byte{0x01, 0x11}},
		{"sign byte", 128, []byte{0x02, 0x80, 0x00}},
		{"negative", -300, []byte{0x02, 0x2c, 0x81}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New().AddInt(tt.n).Bytes()
			if !bytes.Equal(got, tt.want) {
				t.Errorf("AddInt(%d) = %x, want %x", tt.n, got, tt.want)
			}
		})
	}
}

// TestNumCodec tests script number decoding rules
func TestNumCodec(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		for _, n := range []int64{0, 1, -1, 127, 128, -128, 255, 256, 32767, -32768, 1 << 30} {
			got, err := DecodeNum(EncodeNum(n), 8)
			if err != nil {
				t.Fatalf("DecodeNum(%d) failed: %v", n, err)
			}
			if got != n {
				t.Errorf("DecodeNum(EncodeNum(%d)) = %d", n, got)
			}
		}
	})

	t.Run("NotMinimal", func(t *testing.T) {
		if _, err := DecodeNum([]byte{0x05, 0x00}, MaxNumSize); !errors.Is(err, ErrNumNotMinimal) {
			t.Errorf("expected ErrNumNotMinimal, got %v", err)
		}
	})

	t.Run("TooLong", func(t *testing.T) {
		if _, err := DecodeNum([]byte{1, 2, 3, 4, 5}, MaxNumSize); !errors.Is(err, ErrNumTooLong) {
			t.Errorf("expected ErrNumTooLong, got %v", err)
		}
	})

	t.Run("Bool", func(t *testing.T) {
		if AsBool(nil) || AsBool([]byte{0, 0}) || AsBool([]byte{0, 0x80}) {
			t.Error("zero encodings must be false")
		}
		if !AsBool([]byte{0, 1}) || !AsBool(FromBool(true)) {
			t.Error("non-zero encodings must be true")
		}
	})
}

// TestAddDataPreservesItem tests that every push yields the exact bytes
func TestAddDataPreservesItem(t *testing.T) {
	items := [][]byte{
		{},
		{0x00},
		{0x05},
		{0x81},
		{0x11, 0x22, 0x33, 0x44},
		bytes.Repeat([]byte{0xab}, 80),
		bytes.Repeat([]byte{0xcd}, 300),
	}

	s := New()
	for _, item := range items {
		s.AddData(item)
	}

	if s.Len() != len(items) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(items))
	}
	for i, item := range items {
		got, ok := s.At(i).Pushed()
		if !ok {
			t.Fatalf("instruction %d is not a push", i)
		}
		if !bytes.Equal(got, item) {
			t.Errorf("item %d = %x, want %x", i, got, item)
		}
	}
}

// TestParse tests decoding of serialized bytecode
func TestParse(t *testing.T) {
	t.Run("Mixed", func(t *testing.T) {
		s := New().
			AddData([]byte{0xde, 0xad, 0xbe, 0xef}).
			AddInt(300).
			AddOp(OP_PICK).
			AddData(bytes.Repeat([]byte{0x01}, 200)).
			AddOps(OP_TOALTSTACK, 3).
			AddOp(OP_HASHN)

		parsed, err := Parse(s.Bytes())
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if !bytes.Equal(parsed.Bytes(), s.Bytes()) {
			t.Error("reserialized bytecode differs")
		}
		if parsed.String() != s.String() {
			t.Errorf("disassembly differs: %q vs %q", parsed.String(), s.String())
		}
	})

	t.Run("LargePushes", func(t *testing.T) {
		for _, tc := range []struct {
			size int
			op   Opcode
		}{
			{0xff, OP_PUSHDATA1},
			{0xffff, OP_PUSHDATA2},
			{0x10000, OP_PUSHDATA4},
		} {
			data := bytes.Repeat([]byte{0x42}, tc.size)
			s := New().AddData(data).AddOp(OP_DROP)
			if got := s.At(0).Opcode; got != tc.op {
				t.Errorf("size %d: opcode %s, want %s", tc.size, got, tc.op)
			}

			parsed, err := Parse(s.Bytes())
			if err != nil {
				t.Fatalf("size %d: Parse failed: %v", tc.size, err)
			}
			if parsed.Len() != 2 {
				t.Fatalf("size %d: parsed %d instructions, want 2", tc.size, parsed.Len())
			}
			if !bytes.Equal(parsed.At(0).Data, data) {
				t.Errorf("size %d: payload does not round-trip", tc.size)
			}
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		if _, err := Parse([]byte{0x04, 0x01, 0x02}); !errors.Is(err, ErrMalformedScript) {
			t.Errorf("expected ErrMalformedScript, got %v", err)
		}
		if _, err := Parse([]byte{byte(OP_PUSHDATA2), 0x01}); !errors.Is(err, ErrMalformedScript) {
			t.Errorf("expected ErrMalformedScript, got %v", err)
		}
		if _, err := Parse([]byte{byte(OP_PUSHDATA4), 0xff, 0xff, 0xff, 0xff, 0x01}); !errors.Is(err, ErrMalformedScript) {
			t.Errorf("expected ErrMalformedScript, got %v", err)
		}
	})
}

// TestAppendAndClone tests composition of sub-programs
func TestAppendAndClone(t *testing.T) {
	inner := New().AddOp(OP_DUP).AddOp(OP_DROP)
	outer := New().AddOp(OP_1).Append(inner).AddOp(OP_VERIFY)

	if outer.String() != "OP_1 OP_DUP OP_DROP OP_VERIFY" {
		t.Errorf("unexpected disassembly: %s", outer.String())
	}

	clone := outer.Clone()
	clone.AddOp(OP_NOP)
	if outer.Len() != 4 || clone.Len() != 5 {
		t.Errorf("clone is not independent: %d, %d", outer.Len(), clone.Len())
	}
	if outer.Count(OP_DUP) != 1 {
		t.Errorf("Count(OP_DUP) = %d, want 1", outer.Count(OP_DUP))
	}
	if New().Append(nil).Len() != 0 {
		t.Error("appending nil should be a no-op")
	}
}

// TestOpcodeInfo tests opcode metadata
func TestOpcodeInfo(t *testing.T) {
	if OP_HASHN.String() != "OP_HASHN" {
		t.Errorf("OP_HASHN.String() = %s", OP_HASHN.String())
	}
	if Opcode(0x53).String() != "OP_3" {
		t.Errorf("0x53 = %s, want OP_3", Opcode(0x53).String())
	}
	if !Opcode(0x20).IsPush() || OP_DUP.IsPush() {
		t.Error("IsPush classification wrong")
	}
	if _, err := Opcode(0xff).Info(); err == nil {
		t.Error("expected error for unknown opcode")
	}
	if Opcode(0xff).IsKnown() {
		t.Error("0xff must be unknown")
	}
}
