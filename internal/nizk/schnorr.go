// Package nizk implements the two non-interactive zero-knowledge proofs the
// beacon round relies on: a Schnorr proof of knowledge of discrete log
// (encryption randomness) and a Chaum-Pedersen discrete-log-equality proof
// (partial decryption correctness). Both are Fiat-Shamir transformed using
// group.Params.HashToScalar over a normative transcript ordering.
package nizk

import (
	"math/big"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/group"
)

// SchnorrProof is a non-interactive proof of knowledge of r such that
// Y = g^r mod p.
type SchnorrProof struct {
	U *big.Int // g^w mod p
	C *big.Int // Fiat-Shamir challenge
	Z *big.Int // w + c*r mod q
}

// ProveSchnorr proves knowledge of r for the statement Y = g^r mod p.
// The transcript hashed for the challenge is, in order, [g, Y, u].
func ProveSchnorr(params *group.Params, r, y *big.Int) (*SchnorrProof, error) {
	w, err := group.RandomScalar(params.Q)
	if err != nil {
		return nil, err
	}
	u := group.ModExp(params.G, w, params.P)
	c := params.HashToScalar(params.G, y, u)

	z := new(big.Int).Mul(c, r)
	z.Add(z, w)
	z.Mod(z, params.Q)

	return &SchnorrProof{U: u, C: c, Z: z}, nil
}

// VerifySchnorr recomputes the challenge from the transcript [g, Y, u] and
// accepts iff c == c' and g^z == u * Y^c (mod p).
func VerifySchnorr(params *group.Params, proof *SchnorrProof, y *big.Int) bool {
	if proof == nil || proof.U == nil || proof.C == nil || proof.Z == nil {
		return false
	}

	cPrime := params.HashToScalar(params.G, y, proof.U)
	if proof.C.Cmp(cPrime) != 0 {
		return false
	}

	lhs := group.ModExp(params.G, proof.Z, params.P)

	yc := group.ModExp(y, proof.C, params.P)
	rhs := new(big.Int).Mul(proof.U, yc)
	rhs.Mod(rhs, params.P)

	return lhs.Cmp(rhs) == 0
}
