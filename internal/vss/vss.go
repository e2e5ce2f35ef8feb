// Package vss implements the Pedersen/Feldman-style verifiable secret
// sharing kernel used by the one-shot distributed key generation: random
// polynomial generation, the commitment vector, Horner evaluation at a
// participant's index, and subshare verification against commitments.
//
// The polynomial degree is t-1, so a commitment vector always carries t
// group elements and the secret is the constant term a_0.
package vss

import (
	"math/big"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/group"
)

// Polynomial is a degree-(t-1) polynomial over Z_q, stored as coefficients
// a_0, ..., a_{t-1}. a_0 is the secret contribution of whoever generated it.
type Polynomial struct {
	Coeffs []*big.Int
}

// Random samples a new degree-(t-1) polynomial with coefficients drawn
// uniformly from {1, ..., q}.
func Random(t int, params *group.Params) (*Polynomial, error) {
	coeffs := make([]*big.Int, t)
	for i := 0; i < t; i++ {
		c, err := group.RandomScalar(params.Q)
		if err != nil {
			return nil, err
		}
		coeffs[i] = c
	}
	return &Polynomial{Coeffs: coeffs}, nil
}

// Secret returns the polynomial's constant term, a_0.
func (f *Polynomial) Secret() *big.Int {
	return f.Coeffs[0]
}

// Commit computes the Feldman commitment vector (g^{a_0}, ..., g^{a_{t-1}})
// mod p. The first entry doubles as the committer's individual public-key
// share -- there is no separate broadcast of public-key shares.
func (f *Polynomial) Commit(params *group.Params) []*big.Int {
	commitments := make([]*big.Int, len(f.Coeffs))
	for i, a := range f.Coeffs {
		commitments[i] = group.ModExp(params.G, a, params.P)
	}
	return commitments
}

// Eval evaluates f(i) mod q via Horner's method, where i is the receiving
// participant's 1-based index.
func Eval(f *Polynomial, i int64, q *big.Int) *big.Int {
	result := new(big.Int)
	x := big.NewInt(i)
	for k := len(f.Coeffs) - 1; k >= 0; k-- {
		result.Mul(result, x)
		result.Add(result, f.Coeffs[k])
		result.Mod(result, q)
	}
	return result
}

// VerifySubshare checks that a received subshare s is consistent with the
// committer's commitment vector C, for the receiver at index i:
//
//	g^s == product( C_l ^ (i^l) ) mod p,  l = 0 .. len(C)-1
//
// Powers of i are reduced mod q, matching the exponent ring the
// commitments live in.
func VerifySubshare(s *big.Int, commitments []*big.Int, params *group.Params, i int64) bool {
	if len(commitments) == 0 || s == nil {
		return false
	}

	lhs := group.ModExp(params.G, s, params.P)

	rhs := big.NewInt(1)
	x := big.NewInt(i)
	xPow := big.NewInt(1) // i^l mod q

	for _, cl := range commitments {
		term := group.ModExp(cl, xPow, params.P)
		rhs.Mul(rhs, term)
		rhs.Mod(rhs, params.P)

		xPow = new(big.Int).Mul(xPow, x)
		xPow.Mod(xPow, params.Q)
	}

	return lhs.Cmp(rhs) == 0
}
