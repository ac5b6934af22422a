package keypair_test

import (
	"crypto/x509"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"primeforge/internal/keypair"
	"primeforge/internal/search"
	"primeforge/internal/seed"
	"primeforge/internal/z5d"
)

func fixedSeed(t *testing.T, fill string) seed.Seed {
	t.Helper()
	s, err := seed.FromHex(strings.Repeat(fill, seed.Size))
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	return s
}

func testParams(bits int) keypair.Params {
	p := keypair.DefaultParams()
	p.Bits = bits
	p.Workers = 1
	return p
}

func generate(t *testing.T, s seed.Seed, params keypair.Params) *keypair.Material {
	t.Helper()
	gen := keypair.NewGenerator(s, params, z5d.New(z5d.DefaultParams()))
	m, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return m
}

var (
	fixtureOnce sync.Once
	fixture     *keypair.Material
	fixtureErr  error
)

// material1024 generates one RSA-1024 fixture per test binary. Shared
// read-only; tests must not wipe it.
func material1024(t *testing.T) *keypair.Material {
	t.Helper()
	fixtureOnce.Do(func() {
		s, err := seed.FromHex(strings.Repeat("4e", seed.Size))
		if err != nil {
			fixtureErr = err
			return
		}
		gen := keypair.NewGenerator(s, testParams(1024), z5d.New(z5d.DefaultParams()))
		fixture, fixtureErr = gen.Generate()
	})
	if fixtureErr != nil {
		t.Fatalf("generate shared fixture: %v", fixtureErr)
	}
	return fixture
}

func TestGenerateAlgebra(t *testing.T) {
	m := generate(t, fixedSeed(t, "7b"), testParams(64))

	if !m.P.ProbablyPrime(20) || !m.Q.ProbablyPrime(20) {
		t.Fatal("generated factors are not prime")
	}
	if m.P.Cmp(m.Q) == 0 {
		t.Fatal("p equals q")
	}
	n := new(big.Int).Mul(m.P, m.Q)
	if n.Cmp(m.N) != 0 {
		t.Fatal("n != p*q")
	}
	if got := m.N.BitLen(); got != 64 && got != 63 {
		t.Fatalf("modulus has %d bits, want 64 give or take the top product bit", got)
	}

	pm1 := new(big.Int).Sub(m.P, big.NewInt(1))
	qm1 := new(big.Int).Sub(m.Q, big.NewInt(1))
	gcd := new(big.Int).GCD(nil, nil, pm1, qm1)
	lambda := new(big.Int).Mul(pm1, qm1)
	lambda.Div(lambda, gcd)
	ed := new(big.Int).Mul(m.E, m.D)
	ed.Mod(ed, lambda)
	if ed.Cmp(big.NewInt(1)) != 0 {
		t.Fatal("e*d != 1 mod lambda")
	}

	dp := new(big.Int).Mod(m.D, pm1)
	dq := new(big.Int).Mod(m.D, qm1)
	if dp.Cmp(m.DP) != 0 || dq.Cmp(m.DQ) != 0 {
		t.Fatal("CRT exponents inconsistent with d")
	}
	qinv := new(big.Int).Mul(m.QInv, m.Q)
	qinv.Mod(qinv, m.P)
	if qinv.Cmp(big.NewInt(1)) != 0 {
		t.Fatal("qInv * q != 1 mod p")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := generate(t, fixedSeed(t, "7b"), testParams(64))
	b := generate(t, fixedSeed(t, "7b"), testParams(64))

	if a.N.Cmp(b.N) != 0 || a.D.Cmp(b.D) != 0 || a.P.Cmp(b.P) != 0 || a.Q.Cmp(b.Q) != 0 {
		t.Fatal("same seed produced different keys")
	}
}

func TestGenerateSeedSensitivity(t *testing.T) {
	a := generate(t, fixedSeed(t, "7b"), testParams(64))
	b := generate(t, fixedSeed(t, "7c"), testParams(64))

	if a.N.Cmp(b.N) == 0 {
		t.Fatal("different seeds produced the same modulus")
	}
}

func TestGeneratePrimesNotTooClose(t *testing.T) {
	params := testParams(128)
	m := generate(t, fixedSeed(t, "2d"), params)
	if search.TooClose(m.P, m.Q, 64, params.ProximityBits) {
		t.Fatal("factors share their top window")
	}
}

func TestGenerateExhaustion(t *testing.T) {
	// A one-bit proximity window rejects every q candidate against the
	// found p, so both search stages for q must starve.
	params := testParams(64)
	params.ProximityBits = 1
	params.GuidedAttempts = 50
	params.FallbackAttempts = 50

	gen := keypair.NewGenerator(fixedSeed(t, "7b"), params, z5d.New(z5d.DefaultParams()))
	_, err := gen.Generate()
	if !errors.Is(err, search.ErrExhausted) {
		t.Fatalf("got %v, want ErrExhausted", err)
	}
}

func TestWipeDisablesGenerator(t *testing.T) {
	gen := keypair.NewGenerator(fixedSeed(t, "7b"), testParams(64), z5d.New(z5d.DefaultParams()))
	gen.Wipe()

	_, err := gen.Generate()
	if !errors.Is(err, seed.ErrDerivation) {
		t.Fatalf("got %v, want ErrDerivation from a wiped generator", err)
	}
}

func TestCertificate(t *testing.T) {
	m := material1024(t)

	der, err := keypair.Certificate(m, keypair.DefaultCertParams())
	if err != nil {
		t.Fatalf("Certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}

	if err := cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature); err != nil {
		t.Fatalf("self-signature: %v", err)
	}
	if cert.IsCA {
		t.Error("certificate claims CA")
	}
	if cert.KeyUsage != x509.KeyUsageDigitalSignature|x509.KeyUsageKeyEncipherment {
		t.Errorf("key usage = %v", cert.KeyUsage)
	}
	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "secure.primeforge.local" {
		t.Errorf("DNS names = %v", cert.DNSNames)
	}
	if cert.Subject.CommonName != "PRIMEFORGE_RSA_KEY_GEN" {
		t.Errorf("common name = %q", cert.Subject.CommonName)
	}
	wantValidity := time.Duration(keypair.DefaultValidityDays) * 24 * time.Hour
	if got := cert.NotAfter.Sub(cert.NotBefore); got != wantValidity {
		t.Errorf("validity = %v, want %v", got, wantValidity)
	}
	if cert.SerialNumber.Sign() <= 0 {
		t.Error("serial number is not positive")
	}
}

func TestCertificateSerialsDiffer(t *testing.T) {
	m := material1024(t)

	a, err := keypair.Certificate(m, keypair.DefaultCertParams())
	if err != nil {
		t.Fatalf("first certificate: %v", err)
	}
	b, err := keypair.Certificate(m, keypair.DefaultCertParams())
	if err != nil {
		t.Fatalf("second certificate: %v", err)
	}
	ca, err := x509.ParseCertificate(a)
	if err != nil {
		t.Fatalf("parse first: %v", err)
	}
	cb, err := x509.ParseCertificate(b)
	if err != nil {
		t.Fatalf("parse second: %v", err)
	}
	if ca.SerialNumber.Cmp(cb.SerialNumber) == 0 {
		t.Fatal("two certificates share a serial")
	}
}
