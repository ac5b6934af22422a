package seed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tyler-smith/go-bip39"

	"primeforge/internal/util/memzero"
)

// Size is the seed length in bytes (256 bits).
const Size = 32

// Seed is the single high-entropy secret every derivation in the pipeline
// hangs off. Treat values as sensitive: call Wipe after last use.
type Seed [Size]byte

// Hex returns the seed as 64 lowercase hex characters.
func (s Seed) Hex() string { return hex.EncodeToString(s[:]) }

// FromHex parses a 64-character hex string into a Seed.
func FromHex(h string) (Seed, error) {
	var s Seed
	raw, err := hex.DecodeString(h)
	if err != nil {
		return s, fmt.Errorf("decode seed hex: %w", err)
	}
	defer memzero.Zero(raw)
	if len(raw) != Size {
		return s, fmt.Errorf("seed must be %d bytes, got %d", Size, len(raw))
	}
	copy(s[:], raw)
	return s, nil
}

// Mnemonic encodes the seed as a 24-word BIP-39 phrase for offline backup.
func (s Seed) Mnemonic() (string, error) {
	return bip39.NewMnemonic(s[:])
}

// FromMnemonic recovers a Seed from a 24-word BIP-39 phrase.
func FromMnemonic(words string) (Seed, error) {
	var s Seed
	ent, err := bip39.EntropyFromMnemonic(words)
	if err != nil {
		return s, fmt.Errorf("decode seed mnemonic: %w", err)
	}
	defer memzero.Zero(ent)
	if len(ent) != Size {
		return s, fmt.Errorf("mnemonic encodes %d bytes, want %d", len(ent), Size)
	}
	copy(s[:], ent)
	return s, nil
}

// Tag returns the first four bytes of SHA-256(seed) as eight hex
// characters. Output files are named by tag so runs can be told apart
// without disclosing the seed itself.
func (s Seed) Tag() string {
	sum := sha256.Sum256(s[:])
	tag := hex.EncodeToString(sum[:4])
	memzero.Zero(sum[:])
	return tag
}

// IsZero reports whether the seed is still the all-zero value, which is
// never a legitimately generated seed.
func (s Seed) IsZero() bool {
	var acc byte
	for _, b := range s {
		acc |= b
	}
	return acc == 0
}

// Wipe clears the seed in place.
func (s *Seed) Wipe() { memzero.Zero(s[:]) }
