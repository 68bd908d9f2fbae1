package core

import (
	"encoding/binary"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
)

// Fingerprint computes a Poseidon digest of bytecode or witness bytes.
// The input is packed into 32-bit words (zero padded) followed by its length,
// so inputs that differ only in trailing zeros do not collide.
// Leaves carry it as a compact identity for deduplication and logging.
func Fingerprint(b []byte) uint64 {
	words := make([]field.Element, 0, len(b)/4+2)
	for i := 0; i < len(b); i += 4 {
		var chunk [4]byte
		copy(chunk[:], b[i:])
		words = append(words, field.New(uint64(binary.BigEndian.Uint32(chunk[:]))))
	}
	words = append(words, field.New(uint64(len(b))))

	return hash.PoseidonHash(words).Value()
}

// FingerprintItems fingerprints an ordered list of stack items
func FingerprintItems(items [][]byte) uint64 {
	msg := make([]byte, 0)
	for _, item := range items {
		msg = binary.AppendUvarint(msg, uint64(len(item)))
		msg = append(msg, item...)
	}
	return Fingerprint(msg)
}
