package core

import "fmt"

// SplitLimbs cuts b into LimbSize items. The length of b must be a multiple of LimbSize.
func SplitLimbs(b []byte) [][]byte {
	if len(b)%LimbSize != 0 {
		panic(fmt.Sprintf("core: %d bytes is not a multiple of the limb size", len(b)))
	}

	out := make([][]byte, 0, len(b)/LimbSize)
	for i := 0; i < len(b); i += LimbSize {
		limb := make([]byte, LimbSize)
		copy(limb, b[i:i+LimbSize])
		out = append(out, limb)
	}
	return out
}

// JoinLimbs concatenates limbs back into a byte string
func JoinLimbs(limbs [][]byte) ([]byte, error) {
	out := make([]byte, 0, len(limbs)*LimbSize)
	for i, limb := range limbs {
		if len(limb) != LimbSize {
			return nil, fmt.Errorf("limb %d has %d bytes, want %d", i, len(limb), LimbSize)
		}
		out = append(out, limb...)
	}
	return out, nil
}

// CloneItems deep-copies a list of stack items
func CloneItems(items [][]byte) [][]byte {
	if items == nil {
		return nil
	}
	out := make([][]byte, len(items))
	for i, item := range items {
		out[i] = append([]byte{}, item...)
	}
	return out
}
