package keypair

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	backoff "github.com/cenkalti/backoff/v4"
	logging "github.com/ipfs/go-log/v2"

	"primeforge/internal/primality"
	"primeforge/internal/search"
	"primeforge/internal/seed"
	"primeforge/internal/util/memzero"
	"primeforge/internal/z5d"
)

var log = logging.Logger("keygen")

// Defaults for the generation pipeline.
const (
	DefaultBits             = 4096
	DefaultPublicExponent   = 65537
	DefaultBumpP            = 0
	DefaultBumpQ            = 1
	DefaultGuidedAttempts   = 5000
	DefaultFallbackAttempts = 10000
	DefaultValidityDays     = 30
)

// duplicateRetries bounds the q re-derivations after the two searches
// collide on the same prime.
const duplicateRetries = 10

var lowWordMask = new(big.Int).SetUint64(math.MaxUint64)

// Params configures a Generator. The bumps offset each prime index so
// the p and q walks start from decorrelated estimates.
type Params struct {
	Bits             int
	E                uint64
	BumpP            int
	BumpQ            int
	GuidedAttempts   uint64
	FallbackAttempts uint64
	ProximityBits    uint
	Workers          int
}

// DefaultParams returns the standard pipeline configuration.
func DefaultParams() Params {
	return Params{
		Bits:             DefaultBits,
		E:                DefaultPublicExponent,
		BumpP:            DefaultBumpP,
		BumpQ:            DefaultBumpQ,
		GuidedAttempts:   DefaultGuidedAttempts,
		FallbackAttempts: DefaultFallbackAttempts,
		ProximityBits:    search.DefaultProximityBits,
		Workers:          0,
	}
}

// Generator drives the full pipeline: domain-tagged seed derivation,
// prime-location estimation, guided search with uniform fallback, and
// assembly.
type Generator struct {
	seed   seed.Seed
	params Params
	est    *z5d.Estimator
	tester *primality.Tester
	engine *search.Engine
}

// NewGenerator wires a Generator from a master seed, pipeline params and
// a calibrated estimator.
func NewGenerator(s seed.Seed, params Params, est *z5d.Estimator) *Generator {
	tester := primality.NewTester(s)
	return &Generator{
		seed:   s,
		params: params,
		est:    est,
		tester: tester,
		engine: search.NewEngine(tester, params.Workers, params.ProximityBits),
	}
}

// Wipe clears the master-seed copies held by the generator and its
// tester. Generate fails with a derivation error afterwards.
func (g *Generator) Wipe() {
	g.seed.Wipe()
	g.tester.Wipe()
}

// Generate runs the pipeline and returns verified key material. For a
// fixed seed and Workers = 1 the output is fully deterministic. Working
// primes and derived buffers are wiped on every path; the returned
// Material holds independent copies.
func (g *Generator) Generate() (*Material, error) {
	halfBits := uint(g.params.Bits / 2)

	p, err := g.searchPrime("p", g.params.BumpP, nil)
	if err != nil {
		return nil, fmt.Errorf("prime p: %w", err)
	}
	defer memzero.Words(p)

	q, err := g.searchPrime("q", g.params.BumpQ, p)
	if err != nil {
		return nil, fmt.Errorf("prime q: %w", err)
	}
	defer func() { memzero.Words(q) }()

	distinct := func() bool {
		return p.Cmp(q) != 0 && !search.TooClose(p, q, halfBits, g.params.ProximityBits)
	}

	retry := 0
	separate := func() error {
		if distinct() {
			return nil
		}
		bump := g.params.BumpQ + retry + 2
		retry++
		log.Debugf("q collides with p, re-deriving with bump %d (retry %d/%d)", bump, retry, duplicateRetries)
		memzero.Words(q)
		next, err := g.searchPrime("q", bump, p)
		if err != nil {
			return backoff.Permanent(err)
		}
		q = next
		if !distinct() {
			return fmt.Errorf("%w: q still collides at bump %d", ErrDuplicatePrime, bump)
		}
		return nil
	}
	if err := backoff.Retry(separate, backoff.WithMaxRetries(&backoff.ZeroBackOff{}, duplicateRetries-1)); err != nil {
		return nil, err
	}

	m, err := Assemble(p, q, new(big.Int).SetUint64(g.params.E))
	if err != nil {
		return nil, err
	}
	log.Debugf("assembled %d-bit modulus", m.N.BitLen())
	return m, nil
}

// searchPrime locates one prime for a derivation domain ("p" or "q").
// The domain sub-seed expands to a half-width value x; the prime index
// k = PrimeCount(x) + bump feeds NthPrime, and the guided walk starts
// from that estimate with the low word of k as witness hint. If the
// guided walk exhausts, a uniform scan runs from an independently
// derived start. avoid carries the already-found prime during the q
// search.
func (g *Generator) searchPrime(domain string, bump int, avoid *big.Int) (*big.Int, error) {
	halfBits := uint(g.params.Bits / 2)
	byteLen := int(halfBits / 8)

	sub, err := seed.Derive(g.seed, domain, seed.Size)
	if err != nil {
		return nil, err
	}
	var subSeed seed.Seed
	copy(subSeed[:], sub)
	memzero.Zero(sub)
	defer subSeed.Wipe()

	expanded, err := seed.Derive(subSeed, fmt.Sprintf("%dbit", halfBits), byteLen)
	if err != nil {
		return nil, err
	}
	x := new(big.Int).SetBytes(expanded)
	memzero.Zero(expanded)
	x.SetBit(x, int(halfBits-1), 1)
	x.SetBit(x, 0, 1)
	defer memzero.Words(x)

	k := g.est.PrimeCount(x)
	k.Add(k, big.NewInt(int64(bump)))
	defer memzero.Words(k)

	estimate := g.est.NthPrime(k)
	defer memzero.Words(estimate)
	hint := new(big.Int).And(k, lowWordMask).Uint64()

	res, err := g.engine.Guided(estimate, halfBits, g.params.GuidedAttempts, hint, avoid)
	if err == nil {
		log.Debugf("%s: guided walk hit attempt %d (parallel=%v)", domain, res.Attempts, res.Parallel)
		return res.Prime, nil
	}
	if !errors.Is(err, search.ErrExhausted) {
		return nil, err
	}
	log.Debugf("%s: guided walk exhausted, switching to uniform scan", domain)

	bumpP, bumpQ := g.params.BumpP, g.params.BumpQ
	if domain == "p" {
		bumpP = bump
	} else {
		bumpQ = bump
	}
	fallback, err := seed.Derive(g.seed, fmt.Sprintf("prime_p%d_q%d", bumpP, bumpQ), byteLen)
	if err != nil {
		return nil, err
	}
	start := new(big.Int).SetBytes(fallback)
	memzero.Zero(fallback)
	defer memzero.Words(start)

	res, err = g.engine.Uniform(start, halfBits, g.params.FallbackAttempts, avoid)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s: uniform scan hit attempt %d (parallel=%v)", domain, res.Attempts, res.Parallel)
	return res.Prime, nil
}
