package primality_test

import (
	"math/big"
	"strings"
	"sync"
	"testing"

	"primeforge/internal/primality"
	"primeforge/internal/seed"
)

func testSeed(t *testing.T) seed.Seed {
	t.Helper()
	s, err := seed.FromHex(strings.Repeat("a5", seed.Size))
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	return s
}

func TestEdgeCases(t *testing.T) {
	tester := primality.NewTester(testSeed(t))
	cases := []struct {
		n    int64
		want bool
	}{
		{-7, false},
		{0, false},
		{1, false},
		{2, true},
		{3, true},
		{4, false},
		{5, true},
		{9, false},
	}
	for _, tc := range cases {
		if got := tester.IsProbablePrime(big.NewInt(tc.n), 0); got != tc.want {
			t.Errorf("IsProbablePrime(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
}

func TestAgreesWithSieve(t *testing.T) {
	limit := 1_000_000
	if testing.Short() {
		limit = 50_000
	}
	composite := make([]bool, limit)
	for i := 2; i*i < limit; i++ {
		if composite[i] {
			continue
		}
		for j := i * i; j < limit; j += i {
			composite[j] = true
		}
	}

	tester := primality.NewTester(testSeed(t))
	n := new(big.Int)
	for v := 0; v < limit; v++ {
		want := v >= 2 && !composite[v]
		if got := tester.IsProbablePrime(n.SetInt64(int64(v)), 0); got != want {
			t.Fatalf("IsProbablePrime(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestKnownPseudoprimes(t *testing.T) {
	tester := primality.NewTester(testSeed(t))
	// Carmichael number and the smallest strong pseudoprime to base 2.
	for _, n := range []int64{561, 2047, 1105, 1729} {
		if tester.IsProbablePrime(big.NewInt(n), 0) {
			t.Errorf("IsProbablePrime(%d) accepted a composite", n)
		}
	}
}

func TestLargePrimeAndComposite(t *testing.T) {
	tester := primality.NewTester(testSeed(t))

	// Mersenne primes 2^89-1 and 2^127-1.
	m89 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 89), big.NewInt(1))
	m127 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	if !tester.IsProbablePrime(m89, 42) {
		t.Error("rejected 2^89-1")
	}
	if !tester.IsProbablePrime(m127, 42) {
		t.Error("rejected 2^127-1")
	}

	square := new(big.Int).Mul(m89, m89)
	if tester.IsProbablePrime(square, 42) {
		t.Error("accepted (2^89-1)^2")
	}
}

func TestHintDoesNotChangeVerdict(t *testing.T) {
	tester := primality.NewTester(testSeed(t))
	values := []int64{104729, 104730, 999983, 999999}
	for _, v := range values {
		n := big.NewInt(v)
		base := tester.IsProbablePrime(n, 0)
		for _, hint := range []uint64{1, 7, 1 << 40, ^uint64(0)} {
			if got := tester.IsProbablePrime(n, hint); got != base {
				t.Errorf("verdict for %d flipped under hint %d", v, hint)
			}
		}
	}
}

func TestDifferentSeedsAgree(t *testing.T) {
	a := primality.NewTester(testSeed(t))
	b, err := seed.FromHex(strings.Repeat("3c", seed.Size))
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	other := primality.NewTester(b)
	for _, v := range []int64{2, 97, 561, 7919, 999983} {
		n := big.NewInt(v)
		if a.IsProbablePrime(n, 5) != other.IsProbablePrime(n, 5) {
			t.Errorf("seed changed the verdict for %d", v)
		}
	}
}

func TestConcurrentUse(t *testing.T) {
	tester := primality.NewTester(testSeed(t))
	prime := big.NewInt(999983)
	composite := big.NewInt(999981)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if !tester.IsProbablePrime(prime, uint64(g*1000+i)) {
					errs <- "rejected prime under concurrency"
					return
				}
				if tester.IsProbablePrime(composite, uint64(g*1000+i)) {
					errs <- "accepted composite under concurrency"
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}
