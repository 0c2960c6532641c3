package compute

import (
	"fmt"

	"github.com/twmb/murmur3"
)

// hashSeed seeds the 128-bit content hash. The value is the FNV-1 32-bit
// offset basis, kept stable so dumped shader filenames survive upgrades.
const hashSeed = 0x811c9dc5

// Hash128 is a 128-bit content hash of generated shader source. Programs
// whose final text hashes identically are assumed semantically identical
// and share one compiled instance; there is no separate semantic check.
type Hash128 struct {
	Hi, Lo uint64
}

// HashSource computes the seeded 128-bit MurmurHash3 of shader text.
func HashSource(text string) Hash128 {
	hi, lo := murmur3.SeedStringSum128(hashSeed, hashSeed, text)
	return Hash128{Hi: hi, Lo: lo}
}

// String renders the hash as 32 hex digits.
func (h Hash128) String() string {
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}
