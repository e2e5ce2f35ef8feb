// Package wire defines the protocol messages exchanged between beacon
// nodes, the replier's reply to the client, and their on-the-wire encoding. Every payload is a plain
// struct of big.Int-valued fields, RLP-encoded the way this codebase's
// sibling p2p layer encodes its own protocol messages.
package wire

import (
	"math/big"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/nizk"
)

// Message codes, one per inbound event kind from section 6 of the design,
// plus ClientOutputCode for the replier's outbound reply to the client.
const (
	StartCode        uint64 = 0x00
	SubshareCode     uint64 = 0x01
	EncShareCode     uint64 = 0x02
	DecShareCode     uint64 = 0x03
	ClientOutputCode uint64 = 0x04
)

// MessageName returns a human-readable name for a message code, used in
// logging.
func MessageName(code uint64) string {
	switch code {
	case StartCode:
		return "Start"
	case SubshareCode:
		return "Subshare"
	case EncShareCode:
		return "EncShare"
	case DecShareCode:
		return "DecShare"
	case ClientOutputCode:
		return "ClientOutput"
	default:
		return "Unknown"
	}
}

// Start carries no payload; it is the client's signal to begin DKG.
type Start struct{}

// Subshare is a DKG-phase message: committer j's evaluation of its
// polynomial at the receiver's index, plus the committer's Feldman
// commitment vector for verification.
type Subshare struct {
	Value      *big.Int   // subshare = f_j(i) mod q
	Commitment []*big.Int // (C_0, ..., C_{t-1}) mod p
}

// EncShare is a beacon-round message: one node's ElGamal encryption share
// for round Round, accompanied by a Schnorr proof of knowledge of the
// encryption randomness behind A.
type EncShare struct {
	A     *big.Int // g^r mod p
	B     *big.Int // m * h^r mod p
	Proof *nizk.SchnorrProof
	Round uint64
}

// DecShare is a beacon-round message: one node's partial decryption for
// round Round, accompanied by a Chaum-Pedersen DLEQ proof that the
// partial was computed with the same exponent as the node's public-key
// share Y, against the sender-supplied aggregate ciphertext A.
type DecShare struct {
	D     *big.Int // A^share mod p
	Proof *nizk.DLEQProof
	Y     *big.Int // g^share mod p
	A     *big.Int // sender's view of the round's aggregate a_k
	Round uint64
}

// ClientOutput is sent by the replier node back to the client once a round
// finalizes.
type ClientOutput struct {
	Round  uint64
	Output *big.Int
}
