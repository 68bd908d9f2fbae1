// Package core provides the hash primitive and limb layout shared by the
// interpreter, the value kinds and the commitment capabilities.
package core

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2s"
)

const (
	// LimbSize is the byte width of one stack item of a serialized value
	LimbSize = 4

	// DigestSize is the byte length of a truncated hash digest
	DigestSize = 20

	// HashLimbs is the number of stack items a digest occupies
	HashLimbs = DigestSize / LimbSize

	// MaxHashInputs bounds the number of items a single OP_HASHN may consume
	MaxHashInputs = 1000
)

// HashItems hashes an ordered list of stack items (bottom first) and returns
// the digest as HashLimbs items. Every item is length-prefixed so that item
// boundaries are part of the hashed message.
func HashItems(items [][]byte) [][]byte {
	size := 0
	for _, item := range items {
		size += binary.MaxVarintLen64 + len(item)
	}

	msg := make([]byte, 0, size)
	for _, item := range items {
		msg = binary.AppendUvarint(msg, uint64(len(item)))
		msg = append(msg, item...)
	}

	digest := blake2s.Sum256(msg)
	return SplitLimbs(digest[:DigestSize])
}
