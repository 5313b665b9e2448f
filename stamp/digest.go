package stamp

import (
	"crypto/sha1" //nolint:gosec
	"fmt"
	"hash"
	"math/bits"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Algorithm names the digest a stamp is checked against
type Algorithm string

const (
	// SHA3_256 is the default digest
	SHA3_256 Algorithm = "sha3-256"
	// SHA1 is the digest of classic hashcash stamps
	SHA1 Algorithm = "sha1"
)

// ParseAlgorithm resolves an algorithm name, case insensitive
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case SHA3_256, "sha3", "":
		return SHA3_256, nil
	case SHA1, "sha-1":
		return SHA1, nil
	}
	return "", fmt.Errorf("%w: unknown digest algorithm %q", ErrInvalidInput, name)
}

// New returns a fresh hash for the algorithm
func (a Algorithm) New() hash.Hash {
	if a == SHA1 {
		return sha1.New() //nolint:gosec
	}
	return sha3.New256()
}

// Size is the digest length in bits, which bounds the countable difficulty
func (a Algorithm) Size() uint {
	if a == SHA1 {
		return sha1.Size * 8
	}
	return 256
}

// Sum digests the exact wire string
func (a Algorithm) Sum(wire string) []byte {
	h := a.New()
	h.Write([]byte(wire))
	return h.Sum(nil)
}

// LeadingZeroBits counts zero bits from the most significant bit of the
// first byte, stopping at the first set bit.
func LeadingZeroBits(digest []byte) uint {
	var n uint
	for _, b := range digest {
		if b != 0 {
			return n + uint(bits.LeadingZeros8(b))
		}
		n += 8
	}
	return n
}
