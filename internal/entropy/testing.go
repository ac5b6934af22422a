package entropy

import "io"

// SetReaderForTesting replaces the randomness source and returns a restore
// function. Only tests should call this; it exists so failure paths and
// deterministic draws can be exercised without touching the OS source.
func SetReaderForTesting(r io.Reader) func() {
	prev := reader
	reader = r
	return func() { reader = prev }
}
