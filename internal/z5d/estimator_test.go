package z5d_test

import (
	"math/big"
	"testing"

	"primeforge/internal/z5d"
)

func TestNthPrimeSmallInputs(t *testing.T) {
	est := z5d.New(z5d.DefaultParams())
	cases := []struct {
		k    int64
		want int64
	}{
		{0, 2},
		{1, 2},
		{2, 20},
		{3, 30},
		{4, 40},
		{5, 50},
	}
	for _, tc := range cases {
		got := est.NthPrime(big.NewInt(tc.k))
		if got.Int64() != tc.want {
			t.Errorf("NthPrime(%d) = %s, want %d", tc.k, got, tc.want)
		}
	}
}

func TestNthPrimeNeverBelowK(t *testing.T) {
	est := z5d.New(z5d.DefaultParams())
	for _, k := range []int64{2, 10, 100, 1000, 100000, 1 << 40} {
		kk := big.NewInt(k)
		got := est.NthPrime(kk)
		if got.Cmp(kk) < 0 {
			t.Errorf("NthPrime(%d) = %s, below k", k, got)
		}
	}
}

func TestNthPrimeMillionthAccuracy(t *testing.T) {
	est := z5d.New(z5d.DefaultParams())
	got := est.NthPrime(big.NewInt(1_000_000))

	// The millionth prime is 15485863; the estimate must land within 0.1%.
	const truth = 15_485_863
	diff := new(big.Int).Sub(got, big.NewInt(truth))
	diff.Abs(diff)
	if diff.Mul(diff, big.NewInt(1000)).Cmp(big.NewInt(truth)) > 0 {
		t.Fatalf("NthPrime(1e6) = %s, outside 0.1%% of %d", got, int64(truth))
	}
}

func TestNthPrimeDeterministic(t *testing.T) {
	est := z5d.New(z5d.DefaultParams())
	k := new(big.Int).Lsh(big.NewInt(1), 2000)
	a := est.NthPrime(k)
	b := est.NthPrime(k)
	if a.Cmp(b) != 0 {
		t.Fatal("same k produced different estimates")
	}
	if a.Sign() <= 0 {
		t.Fatal("estimate for a 2001-bit k is not positive")
	}
}

func TestPrimeCountSmallInputs(t *testing.T) {
	est := z5d.New(z5d.DefaultParams())
	for _, x := range []int64{-5, 0, 1} {
		if got := est.PrimeCount(big.NewInt(x)); got.Sign() != 0 {
			t.Errorf("PrimeCount(%d) = %s, want 0", x, got)
		}
	}
}

func TestPrimeCountMonotonicAndBounded(t *testing.T) {
	est := z5d.New(z5d.DefaultParams())
	prev := new(big.Int)
	x := big.NewInt(100)
	for i := 0; i < 9; i++ {
		got := est.PrimeCount(x)
		if got.Cmp(prev) <= 0 {
			t.Fatalf("PrimeCount(%s) = %s, not above PrimeCount of the previous decade %s", x, got, prev)
		}
		if got.Cmp(x) >= 0 {
			t.Fatalf("PrimeCount(%s) = %s, not below x", x, got)
		}
		prev = got
		x = new(big.Int).Mul(x, big.NewInt(10))
	}
}

func TestPrimeCountHugeInput(t *testing.T) {
	est := z5d.New(z5d.DefaultParams())
	x := new(big.Int).Lsh(big.NewInt(1), 2047)
	got := est.PrimeCount(x)
	if got.Sign() <= 0 {
		t.Fatal("count for 2^2047 is not positive")
	}
	if got.Cmp(x) >= 0 {
		t.Fatal("count for 2^2047 is not below x")
	}
	// Density near 2^2047 keeps the count within a few bits of x.
	if got.BitLen() < x.BitLen()-16 {
		t.Fatalf("count bit length %d implausibly far below %d", got.BitLen(), x.BitLen())
	}
}

func TestParamsForScaleBands(t *testing.T) {
	if got := z5d.ParamsForScale(1e6); got != z5d.DefaultParams() {
		t.Errorf("scale 1e6: got %+v, want base band", got)
	}
	if got := z5d.ParamsForScale(1e9); got.KappaStar != -0.11446 {
		t.Errorf("scale 1e9: KappaStar = %v", got.KappaStar)
	}
	if got := z5d.ParamsForScale(1e11); got.C != -0.0001 {
		t.Errorf("scale 1e11: C = %v", got.C)
	}
	if got := z5d.ParamsForScale(1e15); got.KappaStar != -0.10 {
		t.Errorf("scale 1e15: KappaStar = %v", got.KappaStar)
	}
	for _, s := range []float64{1e9, 1e11, 1e15} {
		if got := z5d.ParamsForScale(s); got.KappaGeo >= z5d.DefaultKappaGeo {
			t.Errorf("scale %g: KappaGeo %v not reduced", s, got.KappaGeo)
		}
	}
}
