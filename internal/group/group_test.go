package group

import (
	"math/big"
	"testing"
)

// testParams returns group parameters over the small safe prime p=1019
// used throughout the test vectors in this package: q=509 is prime and
// p=2*509+1=1019 is prime.
func testParams(t *testing.T) *Params {
	t.Helper()
	params, err := NewParams(big.NewInt(1019))
	if err != nil {
		t.Fatalf("NewParams(1019): %v", err)
	}
	return params
}

func TestNewParamsRejectsNonSafePrime(t *testing.T) {
	// 1021 is prime but (1021-1)/2 = 510 is not prime.
	if _, err := NewParams(big.NewInt(1021)); err != ErrNotSafePrime {
		t.Fatalf("got %v, want ErrNotSafePrime", err)
	}
	// 8 is not even prime.
	if _, err := NewParams(big.NewInt(8)); err != ErrNotSafePrime {
		t.Fatalf("got %v, want ErrNotSafePrime", err)
	}
}

func TestNewParamsDerivesGeneratorOfOrderQ(t *testing.T) {
	params := testParams(t)

	if params.Q.Cmp(big.NewInt(509)) != 0 {
		t.Fatalf("Q = %v, want 509", params.Q)
	}

	// g must have order exactly q: g^q == 1 and g != 1.
	gq := ModExp(params.G, params.Q, params.P)
	if gq.Cmp(one) != 0 {
		t.Fatalf("g^q mod p = %v, want 1", gq)
	}
	if params.G.Cmp(one) == 0 {
		t.Fatal("g must not be 1")
	}
}

func TestModHandlesNegativeDividends(t *testing.T) {
	m := big.NewInt(509)
	got := Mod(big.NewInt(-7), m)
	want := big.NewInt(502) // 509 - 7
	if got.Cmp(want) != 0 {
		t.Errorf("Mod(-7, 509) = %v, want %v", got, want)
	}

	// mod(-x, q) = q - (x mod q) for x > 0, per the design notes.
	x := big.NewInt(1200) // > q
	negX := new(big.Int).Neg(x)
	lhs := Mod(negX, m)
	rhs := new(big.Int).Sub(m, Mod(x, m))
	if lhs.Cmp(rhs) != 0 {
		t.Errorf("Mod(-x, q) = %v, want q - (x mod q) = %v", lhs, rhs)
	}
}

func TestModInverseRoundTrip(t *testing.T) {
	m := big.NewInt(509)
	a := big.NewInt(123)
	inv, err := ModInverse(a, m)
	if err != nil {
		t.Fatalf("ModInverse: %v", err)
	}
	prod := new(big.Int).Mul(a, inv)
	prod.Mod(prod, m)
	if prod.Cmp(one) != 0 {
		t.Errorf("a * a^-1 mod m = %v, want 1", prod)
	}
}

func TestModInverseRejectsNonCoprime(t *testing.T) {
	// gcd(6, 9) = 3 != 1.
	if _, err := ModInverse(big.NewInt(6), big.NewInt(9)); err != ErrNotCoprime {
		t.Fatalf("got %v, want ErrNotCoprime", err)
	}
}

func TestHashToScalarIsDeterministicAndOrderSensitive(t *testing.T) {
	params := testParams(t)

	a := big.NewInt(7)
	b := big.NewInt(42)
	c := big.NewInt(99)

	h1 := params.HashToScalar(a, b, c)
	h2 := params.HashToScalar(a, b, c)
	if h1.Cmp(h2) != 0 {
		t.Fatal("HashToScalar is not deterministic for identical transcripts")
	}

	h3 := params.HashToScalar(b, a, c)
	if h1.Cmp(h3) == 0 {
		t.Fatal("HashToScalar should be sensitive to transcript element order")
	}

	if h1.Sign() < 0 || h1.Cmp(params.Q) >= 0 {
		t.Fatalf("HashToScalar result %v out of range [0, q)", h1)
	}
}

func TestRandomScalarInRange(t *testing.T) {
	params := testParams(t)
	for i := 0; i < 50; i++ {
		r, err := RandomScalar(params.Q)
		if err != nil {
			t.Fatalf("RandomScalar: %v", err)
		}
		if r.Sign() <= 0 || r.Cmp(params.Q) > 0 {
			t.Fatalf("RandomScalar() = %v, want in {1,...,q}", r)
		}
	}
}
