package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"os"
	"time"

	"primeforge/internal/entropy"
	"primeforge/internal/util/memzero"
)

var processStart = time.Now()

// New draws a fresh seed from the operating system CSPRNG and folds in a
// hash of ambient process context. The mix only ever augments the OS
// entropy: if the context were fully predictable the seed is exactly as
// strong as the raw draw.
func New() (Seed, error) {
	var s Seed
	raw, err := entropy.Bytes(Size)
	if err != nil {
		return s, err
	}
	defer memzero.Zero(raw)
	copy(s[:], raw)
	mixContext(&s)
	return s, nil
}

func mixContext(s *Seed) {
	var ctx [24]byte
	binary.BigEndian.PutUint64(ctx[0:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint64(ctx[8:16], uint64(os.Getpid()))
	binary.BigEndian.PutUint64(ctx[16:24], uint64(time.Since(processStart)))
	sum := mixDigest(*s, ctx[:])
	for i := range s {
		s[i] ^= sum[i]
	}
	memzero.Zero(sum[:])
	memzero.Zero(ctx[:])
}

// mixDigest binds the context to the seed it will be folded into: the
// digest covers the seed first, then the context, so the mixed-in value
// is a function of both.
func mixDigest(s Seed, ctx []byte) [sha256.Size]byte {
	h := sha256.New()
	h.Write(s[:])
	h.Write(ctx)
	var sum [sha256.Size]byte
	h.Sum(sum[:0])
	return sum
}
