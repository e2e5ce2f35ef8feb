// Package group implements the modular-arithmetic and hashing kernel the
// rest of the beacon stack builds on: exponentiation and inversion in a
// safe-prime group, the signed-mod reduction the Lagrange step depends on,
// generator discovery, and the Fiat-Shamir hash-to-scalar used by the NIZK
// kernel. Every other package in this module (vss, nizk, beacon) treats
// *Params as its sole source of modular truth.
package group

import (
	"crypto/rand"
	"errors"
	"math/big"

	"golang.org/x/crypto/sha3"
)

var (
	// ErrNotCoprime is returned by ModInverse when gcd(a, m) != 1.
	ErrNotCoprime = errors.New("group: a has no inverse mod m, gcd(a,m) != 1")
	// ErrNotSafePrime is returned by NewParams when p is not a safe prime.
	ErrNotSafePrime = errors.New("group: p is not a safe prime")
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Params holds the group parameters shared by every node: a safe prime p,
// the order-q subgroup it contains, and a generator g of that subgroup.
// Once constructed, Params is immutable and safe for concurrent use by
// many goroutines.
type Params struct {
	P *big.Int // safe prime
	Q *big.Int // (p-1)/2, prime order of the working subgroup
	G *big.Int // generator of the order-q subgroup of Z_p*
}

// NewParams derives Q = (P-1)/2 and a generator G from the safe prime P,
// validating that P really is a safe prime (both P and Q must be prime).
// Primality is checked probabilistically via big.Int.ProbablyPrime, which
// is the conventional choice for this class of check; finding genuinely
// large safe primes is out of scope: the caller supplies P.
func NewParams(p *big.Int) (*Params, error) {
	if p == nil || p.Sign() <= 0 {
		return nil, ErrNotSafePrime
	}
	q := new(big.Int).Sub(p, one)
	q.Div(q, two)

	if !p.ProbablyPrime(32) || !q.ProbablyPrime(32) {
		return nil, ErrNotSafePrime
	}

	g := FindGenerator(p, q)
	return &Params{P: p, Q: q, G: g}, nil
}

// MustNewParams is like NewParams but panics on error. Intended for tests
// and fixed demo configurations where p is known good at compile time.
func MustNewParams(p *big.Int) *Params {
	params, err := NewParams(p)
	if err != nil {
		panic(err)
	}
	return params
}

// ModExp computes b^e mod m. e must be non-negative.
func ModExp(b, e, m *big.Int) *big.Int {
	return new(big.Int).Exp(b, e, m)
}

// ModInverse returns the multiplicative inverse of a modulo the prime m.
// It fails if gcd(a, m) != 1, which for prime m only happens when a is a
// multiple of m.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return nil, ErrNotCoprime
	}
	return inv, nil
}

// Mod returns the Euclidean remainder of x modulo m, i.e. a value in
// [0, m) for any integer x, including negative x. Go's big.Int.Mod already
// implements Euclidean division (unlike the '%' operator, whose sign
// follows the dividend), so this is a thin, explicitly-named wrapper --
// call sites that feed a result straight into ModInverse must route
// through here first, since ModInverse assumes a positive residue.
func Mod(x, m *big.Int) *big.Int {
	return new(big.Int).Mod(x, m)
}

// FindGenerator searches x = 2, 3, ... until x^2 != 1 (mod p) and
// x^q != 1 (mod p), then returns x^2 mod p. Termination is guaranteed for
// safe primes p = 2q+1: the order-q subgroup of Z_p* (the quadratic
// residues) has (p-1)/2 elements, so a suitable x is found quickly.
func FindGenerator(p, q *big.Int) *big.Int {
	x := big.NewInt(2)
	for {
		xSq := new(big.Int).Exp(x, two, p)
		if xSq.Cmp(one) != 0 {
			xq := new(big.Int).Exp(x, q, p)
			if xq.Cmp(one) != 0 {
				return xSq
			}
		}
		x.Add(x, one)
	}
}

// RandomScalar returns a uniformly random integer in {1, ..., n} inclusive,
// using a cryptographically secure source. This is the sampling range the
// protocol uses for polynomial coefficients, encryption randomness, and
// Fiat-Shamir witnesses.
func RandomScalar(n *big.Int) (*big.Int, error) {
	// rand.Int returns a value in [0, n), so sample from [0, n) and add 1
	// to land in {1, ..., n}.
	r, err := rand.Int(rand.Reader, n)
	if err != nil {
		return nil, err
	}
	return r.Add(r, one), nil
}

// HashToScalar applies a fixed 224-bit cryptographic hash (SHA3-224) to the
// decimal-string concatenation of the transcript elements, interprets the
// digest as a big-endian unsigned integer, and reduces it modulo q. The
// serialization is normative: every element is rendered as its base-10
// integer representation and concatenated in the given order, with no
// separators. All nodes must agree bit-for-bit, so this function must
// never be reimplemented differently across the codebase.
func (p *Params) HashToScalar(transcript ...*big.Int) *big.Int {
	h := sha3.New224()
	for _, e := range transcript {
		h.Write([]byte(e.String()))
	}
	digest := h.Sum(nil)
	c := new(big.Int).SetBytes(digest)
	return c.Mod(c, p.Q)
}
