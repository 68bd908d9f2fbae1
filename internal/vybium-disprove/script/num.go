package script

import (
	"errors"
	"fmt"
)

// MaxNumSize is the largest byte length accepted for a numeric operand
const MaxNumSize = 4

var (
	// ErrNumTooLong is returned when a numeric operand exceeds MaxNumSize
	ErrNumTooLong = errors.New("numeric operand too long")

	// ErrNumNotMinimal is returned for non-minimally encoded numbers
	ErrNumNotMinimal = errors.New("numeric operand not minimally encoded")
)

// EncodeNum returns the minimal little-endian sign-magnitude encoding of n.
// Zero encodes as the empty item.
func EncodeNum(n int64) []byte {
	if n == 0 {
		return nil
	}

	negative := n < 0
	abs := uint64(n)
	if negative {
		abs = uint64(-n)
	}

	out := make([]byte, 0, 9)
	for abs > 0 {
		out = append(out, byte(abs&0xff))
		abs >>= 8
	}

	// The most significant byte carries the sign bit; add a byte when it is taken.
	if out[len(out)-1]&0x80 != 0 {
		if negative {
			out = append(out, 0x80)
		} else {
			out = append(out, 0x00)
		}
	} else if negative {
		out[len(out)-1] |= 0x80
	}

	return out
}

// DecodeNum parses a numeric operand of at most maxSize bytes
func DecodeNum(b []byte, maxSize int) (int64, error) {
	if len(b) > maxSize {
		return 0, fmt.Errorf("%w: %d bytes (max %d)", ErrNumTooLong, len(b), maxSize)
	}
	if len(b) == 0 {
		return 0, nil
	}

	last := b[len(b)-1]
	if last&0x7f == 0 {
		if len(b) == 1 || b[len(b)-2]&0x80 == 0 {
			return 0, fmt.Errorf("%w: %x", ErrNumNotMinimal, b)
		}
	}

	var v int64
	for i, c := range b {
		v |= int64(c) << uint(8*i)
	}

	if last&0x80 != 0 {
		v &= ^(int64(0x80) << uint(8*(len(b)-1)))
		return -v, nil
	}
	return v, nil
}

// AsBool interprets an item as a boolean. Any non-zero byte is true,
// except a trailing 0x80 (negative zero).
func AsBool(b []byte) bool {
	for i, c := range b {
		if c != 0 {
			if i == len(b)-1 && c == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// FromBool encodes a boolean the way comparison opcodes push it
func FromBool(v bool) []byte {
	if v {
		return []byte{0x01}
	}
	return nil
}
