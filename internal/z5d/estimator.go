package z5d

import (
	"math/big"

	"github.com/ALTree/bigfloat"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("z5d")

// minMantissa floors the working precision. Inputs reach 2048-bit
// magnitudes, so precision tracks operand size rather than using
// fixed-width floats.
const minMantissa = 256

const (
	countMargin = 64
	nthMargin   = 128
)

var (
	two = big.NewInt(2)
	ten = big.NewInt(10)
)

// Estimator locates primes without sieving: PrimeCount maps a magnitude
// to an index, NthPrime maps an index back to a predicted magnitude.
// Both are heuristics; callers must verify any candidate they produce.
type Estimator struct {
	params Params
}

// New returns an Estimator using the given calibration.
func New(p Params) *Estimator { return &Estimator{params: p} }

func precFor(bits int, margin uint) uint {
	p := uint(bits) + margin
	if p < minMantissa {
		p = minMantissa
	}
	return p
}

func newFloat(prec uint, v float64) *big.Float {
	return new(big.Float).SetPrec(prec).SetFloat64(v)
}

// roundNearest rounds a positive value to the nearest integer.
func roundNearest(f *big.Float) *big.Int {
	r := new(big.Float).SetPrec(f.Prec()).Add(f, newFloat(f.Prec(), 0.5))
	z, _ := r.Int(nil)
	return z
}

// PrimeCount estimates how many primes lie at or below x as
// (x / ln x) * (1 + KappaStar*ln x + C). Returns 0 for x < 2.
func (e *Estimator) PrimeCount(x *big.Int) *big.Int {
	if x == nil || x.Cmp(two) < 0 {
		return new(big.Int)
	}
	prec := precFor(x.BitLen(), countMargin)
	xf := new(big.Float).SetPrec(prec).SetInt(x)
	lnX := bigfloat.Log(xf)

	adj := newFloat(prec, e.params.KappaStar)
	adj.Mul(adj, lnX)
	adj.Add(adj, newFloat(prec, 1))
	adj.Add(adj, newFloat(prec, e.params.C))

	count := new(big.Float).SetPrec(prec).Quo(xf, lnX)
	count.Mul(count, adj)
	return roundNearest(count)
}

// NthPrime estimates the location of the k-th prime. The base term is the
// Cipolla expansion pnt = k*(ln k + ln ln k - 1 + (ln ln k - 2)/ln k); the
// calibrated correction scales it by (1 + C*d + KappaStar*eps) with
// d = (ln pnt / e^4)^2 and eps = pnt^(-1/3). Inputs below the documented
// minimum k = 2 return 2; a correction that undershoots falls back to pnt,
// and an estimate below k falls back to 10k. Never errors, accuracy
// degrades instead.
func (e *Estimator) NthPrime(k *big.Int) *big.Int {
	if k == nil || k.Cmp(two) < 0 {
		return big.NewInt(2)
	}
	prec := precFor(k.BitLen(), nthMargin)
	kf := new(big.Float).SetPrec(prec).SetInt(k)
	lnK := bigfloat.Log(kf)
	lnLnK := bigfloat.Log(lnK)

	tail := new(big.Float).SetPrec(prec).Sub(lnLnK, newFloat(prec, 2))
	tail.Quo(tail, lnK)
	inner := new(big.Float).SetPrec(prec).Add(lnK, lnLnK)
	inner.Sub(inner, newFloat(prec, 1))
	inner.Add(inner, tail)
	pnt := new(big.Float).SetPrec(prec).Mul(kf, inner)

	est := pnt
	if pnt.Sign() > 0 {
		lnPnt := bigfloat.Log(pnt)

		d := new(big.Float).SetPrec(prec).Quo(lnPnt, newFloat(prec, eFourth))
		d.Mul(d, d)

		expArg := new(big.Float).SetPrec(prec).Quo(lnPnt, newFloat(prec, 3))
		expArg.Neg(expArg)
		eps := bigfloat.Exp(expArg)

		corr := newFloat(prec, e.params.C)
		corr.Mul(corr, d)
		kTerm := newFloat(prec, e.params.KappaStar)
		kTerm.Mul(kTerm, eps)
		corr.Add(corr, kTerm)
		corr.Add(corr, newFloat(prec, 1))

		adjusted := new(big.Float).SetPrec(prec).Mul(pnt, corr)
		if adjusted.Sign() > 0 {
			est = adjusted
		}
	}

	var out *big.Int
	if est.Cmp(kf) < 0 {
		out = new(big.Int).Mul(k, ten)
	} else {
		out = roundNearest(est)
	}
	log.Debugf("nth-prime estimate: k %d bits -> value %d bits", k.BitLen(), out.BitLen())
	return out
}
