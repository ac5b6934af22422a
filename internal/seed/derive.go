package seed

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"primeforge/internal/util/memzero"
)

// ErrDerivation indicates a sub-seed derivation was asked to do something
// it cannot honour, such as expand a zero seed or fill a zero-length key.
var ErrDerivation = errors.New("seed derivation failed")

// maxTagBytes caps the domain tag material absorbed per block. Longer
// tags are truncated, so distinct tags must differ in their first 32
// bytes.
const maxTagBytes = 32

// Derive expands the seed into outLen bytes of keyed material bound to a
// domain tag. The stream is a chained one-way construction: block zero is
// SHA-256(tag || seed) and each later block re-hashes its predecessor, so
// material never reveals the seed and shorter outputs are prefixes of
// longer ones for the same (seed, tag) pair.
func Derive(s Seed, tag string, outLen int) ([]byte, error) {
	if outLen <= 0 {
		return nil, fmt.Errorf("%w: output length %d", ErrDerivation, outLen)
	}
	if s.IsZero() {
		return nil, fmt.Errorf("%w: zero seed", ErrDerivation)
	}
	tagBytes := []byte(tag)
	if len(tagBytes) > maxTagBytes {
		tagBytes = tagBytes[:maxTagBytes]
	}

	out := make([]byte, 0, outLen)
	h := sha256.New()
	h.Write(tagBytes)
	h.Write(s[:])
	block := h.Sum(nil)
	for {
		need := outLen - len(out)
		if need <= 0 {
			break
		}
		if need > len(block) {
			need = len(block)
		}
		out = append(out, block[:need]...)
		next := sha256.Sum256(block)
		memzero.Zero(block)
		block = next[:]
	}
	memzero.Zero(block)
	h.Reset()
	return out, nil
}
