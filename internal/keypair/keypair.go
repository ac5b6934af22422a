package keypair

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"math"
	"math/big"

	"primeforge/internal/util/memzero"
)

var (
	// ErrDuplicatePrime means the two searches converged on the same
	// prime and the bounded retries could not separate them.
	ErrDuplicatePrime = errors.New("duplicate prime")

	// ErrNoModularInverse means the public exponent is not invertible
	// modulo lambda(n). With prime p and q this indicates an anomaly,
	// not a routine retry case.
	ErrNoModularInverse = errors.New("no modular inverse")
)

var one = big.NewInt(1)

// Material is a complete RSA private key: modulus, exponents, factors
// and CRT parameters. Instances come out of Assemble fully verified or
// not at all.
type Material struct {
	N    *big.Int
	E    *big.Int
	D    *big.Int
	P    *big.Int
	Q    *big.Int
	DP   *big.Int
	DQ   *big.Int
	QInv *big.Int
}

// Assemble combines two distinct primes and a public exponent into key
// material. d is computed against the Carmichael totient
// lambda = (p-1)(q-1)/gcd(p-1, q-1); both postconditions (n = p*q and
// e*d = 1 mod lambda) are re-verified before the material is returned.
func Assemble(p, q, e *big.Int) (*Material, error) {
	if p.Cmp(q) == 0 {
		return nil, fmt.Errorf("%w: p equals q", ErrDuplicatePrime)
	}

	pMinus1 := new(big.Int).Sub(p, one)
	qMinus1 := new(big.Int).Sub(q, one)
	defer memzero.Words(pMinus1)
	defer memzero.Words(qMinus1)

	gcd := new(big.Int).GCD(nil, nil, pMinus1, qMinus1)
	lambda := new(big.Int).Mul(pMinus1, qMinus1)
	lambda.Div(lambda, gcd)
	defer memzero.Words(gcd)
	defer memzero.Words(lambda)

	d := new(big.Int).ModInverse(e, lambda)
	if d == nil {
		return nil, fmt.Errorf("%w: e=%s not invertible mod lambda", ErrNoModularInverse, e)
	}
	qInv := new(big.Int).ModInverse(q, p)
	if qInv == nil {
		return nil, fmt.Errorf("%w: q not invertible mod p", ErrNoModularInverse)
	}

	m := &Material{
		N:    new(big.Int).Mul(p, q),
		E:    new(big.Int).Set(e),
		D:    d,
		P:    new(big.Int).Set(p),
		Q:    new(big.Int).Set(q),
		DP:   new(big.Int).Mod(d, pMinus1),
		DQ:   new(big.Int).Mod(d, qMinus1),
		QInv: qInv,
	}

	check := new(big.Int).Mul(m.P, m.Q)
	if check.Cmp(m.N) != 0 {
		return nil, errors.New("keypair postcondition n = p*q failed")
	}
	check.Mul(m.E, m.D)
	check.Mod(check, lambda)
	if check.Cmp(one) != 0 {
		return nil, errors.New("keypair postcondition e*d = 1 mod lambda failed")
	}
	memzero.Words(check)
	return m, nil
}

// ToCryptoKey copies the material into a stdlib RSA key, precomputed
// for CRT, for use with crypto/x509 and PEM encoding. crypto/rsa caps
// the public exponent at 2^31-1, so larger exponents are refused here
// rather than silently truncated.
func (m *Material) ToCryptoKey() (*rsa.PrivateKey, error) {
	if !m.E.IsInt64() || m.E.Int64() > math.MaxInt32 {
		return nil, fmt.Errorf("public exponent %s too large for crypto/rsa", m.E)
	}
	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{
			N: new(big.Int).Set(m.N),
			E: int(m.E.Int64()),
		},
		D:      new(big.Int).Set(m.D),
		Primes: []*big.Int{new(big.Int).Set(m.P), new(big.Int).Set(m.Q)},
	}
	key.Precompute()
	return key, nil
}

// Wipe zeroes every component in place. The material is unusable after.
func (m *Material) Wipe() {
	for _, x := range []*big.Int{m.N, m.E, m.D, m.P, m.Q, m.DP, m.DQ, m.QInv} {
		memzero.Words(x)
	}
}
