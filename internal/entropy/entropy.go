package entropy

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"primeforge/internal/util/memzero"
)

var (
	// ErrUnavailable is returned when the OS randomness source cannot be
	// read at all.
	ErrUnavailable = errors.New("entropy source unavailable")

	// ErrShortRead is returned when the OS randomness source yields fewer
	// bytes than requested.
	ErrShortRead = errors.New("entropy read truncated")
)

// reader is the randomness source. Production code always reads the OS
// CSPRNG; tests may swap it via SetReaderForTesting.
var reader io.Reader = rand.Reader

// Bytes returns n bytes from the OS cryptographic randomness source.
// It fails closed: on any error the partial buffer is wiped and no weaker
// generator is substituted, so callers must propagate the failure.
func Bytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: requested %d bytes", ErrUnavailable, n)
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(reader, buf)
	if err != nil {
		memzero.Zero(buf)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, read, n)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return buf, nil
}
