package bmt

import (
	"golang.org/x/crypto/sha3"
)

// HasherFn hashes the concatenation of its arguments to a HashSize digest.
// It is the pluggable hash primitive for chunk and proof computations, see
// WithHasher.
type HasherFn func(data ...[]byte) []byte

// Keccak256 is the default HasherFn. It is the legacy (pre NIST padding)
// Keccak-256 used by Swarm and Ethereum, not standard SHA3-256.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
