package primality

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"primeforge/internal/seed"
	"primeforge/internal/util/memzero"
)

// derivedWitnesses is the number of seed-derived bases tried before the
// fixed ones.
const derivedWitnesses = 6

// standardBases are the classical small-prime bases run after the derived
// batch. Fourteen rounds total bound the per-candidate error at 4^-14.
var standardBases = [8]uint64{2, 3, 5, 7, 11, 13, 17, 19}

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// Tester runs the hybrid Miller-Rabin check: six witnesses derived from
// the generation seed, the candidate and a search hint, then the eight
// standard bases. Testing mutates nothing, so a Tester is safe for
// concurrent use; Wipe is the one mutating call.
type Tester struct {
	seed seed.Seed
}

// NewTester returns a Tester keyed to the given derivation seed.
func NewTester(s seed.Seed) *Tester { return &Tester{seed: s} }

// Wipe clears the tester's copy of the derivation seed. Not safe to
// call while candidates are still being tested.
func (t *Tester) Wipe() { t.seed.Wipe() }

// witnessContext caches the per-candidate decomposition n-1 = d*2^r plus
// the bounds used to map witnesses into [2, n-2]. Never reused across
// candidates.
type witnessContext struct {
	n       *big.Int
	nMinus1 *big.Int
	nMinus3 *big.Int
	d       *big.Int
	r       uint
}

// newWitnessContext expects n odd and greater than 2.
func newWitnessContext(n *big.Int) *witnessContext {
	ctx := &witnessContext{
		n:       n,
		nMinus1: new(big.Int).Sub(n, one),
		nMinus3: new(big.Int),
	}
	if n.Cmp(three) > 0 {
		ctx.nMinus3.Sub(n, three)
	}
	ctx.d = new(big.Int).Set(ctx.nMinus1)
	for ctx.d.Bit(0) == 0 {
		ctx.d.Rsh(ctx.d, 1)
		ctx.r++
	}
	return ctx
}

// mapIntoRange folds an arbitrary witness value into [2, n-2] in place.
func (ctx *witnessContext) mapIntoRange(w *big.Int) {
	if w.Cmp(two) < 0 {
		w.Set(two)
		return
	}
	if w.Cmp(ctx.nMinus1) >= 0 {
		if ctx.nMinus3.Cmp(one) <= 0 {
			w.Set(two)
			return
		}
		w.Mod(w, ctx.nMinus3)
		w.Add(w, two)
	}
}

// round runs one strong-probable-prime round. True means the witness did
// not expose n as composite.
func (ctx *witnessContext) round(w *big.Int) bool {
	x := new(big.Int).Exp(w, ctx.d, ctx.n)
	if x.Cmp(one) == 0 || x.Cmp(ctx.nMinus1) == 0 {
		return true
	}
	for i := uint(1); i < ctx.r; i++ {
		x.Mul(x, x)
		x.Mod(x, ctx.n)
		if x.Cmp(ctx.nMinus1) == 0 {
			return true
		}
	}
	return false
}

// derivedWitness builds witness i as SHA-256(candidate bytes || seed ||
// hint || i), interpreted big-endian and mapped into range. The hint ties
// the witness schedule to the search position so retesting the same
// candidate at a different position draws fresh bases.
func (t *Tester) derivedWitness(ctx *witnessContext, candBytes []byte, hint uint64, index int) *big.Int {
	var tail [16]byte
	binary.BigEndian.PutUint64(tail[:8], hint)
	binary.BigEndian.PutUint64(tail[8:], uint64(index))

	h := sha256.New()
	h.Write(candBytes)
	h.Write(t.seed[:])
	h.Write(tail[:])
	digest := h.Sum(nil)

	w := new(big.Int).SetBytes(digest)
	memzero.Zero(digest)
	ctx.mapIntoRange(w)
	return w
}

// IsProbablePrime reports whether n is probably prime. Both witness
// batches must pass; the first failed round exits early.
func (t *Tester) IsProbablePrime(n *big.Int, hint uint64) bool {
	if n == nil || n.Cmp(two) < 0 {
		return false
	}
	if n.Cmp(two) == 0 {
		return true
	}
	if n.Bit(0) == 0 {
		return false
	}

	ctx := newWitnessContext(n)
	candBytes := n.Bytes()
	defer memzero.Zero(candBytes)

	for i := 0; i < derivedWitnesses; i++ {
		if !ctx.round(t.derivedWitness(ctx, candBytes, hint, i)) {
			return false
		}
	}
	for _, base := range standardBases {
		w := new(big.Int).SetUint64(base)
		ctx.mapIntoRange(w)
		if !ctx.round(w) {
			return false
		}
	}
	return true
}
