package memzero

import (
	"crypto/subtle"
	"math/big"
)

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}

// Words overwrites the backing storage of x with zeros and resets the
// value to 0. Best-effort: big.Int may have left earlier copies behind
// during arithmetic, but the final limbs are scrubbed.
func Words(x *big.Int) {
	if x == nil {
		return
	}
	w := x.Bits()
	for i := range w {
		w[i] = 0
	}
	x.SetInt64(0)
}
