package wire

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// MaxEnvelopeSize bounds a single encoded envelope. The protocol's payloads
// are tiny (a handful of big.Ints), so this is generous headroom rather
// than a tight limit.
const MaxEnvelopeSize = 1 << 20

var (
	// ErrEnvelopeTooLarge is returned when an encoded payload exceeds
	// MaxEnvelopeSize.
	ErrEnvelopeTooLarge = errors.New("wire: envelope too large")
	// ErrDecode wraps RLP decode failures with the offending message code.
	ErrDecode = errors.New("wire: decode error")
)

// Envelope is the unit of delivery between two nodes: a message code plus
// its RLP-encoded payload, tagged with the sender's identity by the
// transport layer that carries it (see internal/transport).
type Envelope struct {
	From    string
	Code    uint64
	Payload []byte
}

// Encode RLP-encodes val and wraps it in an Envelope tagged with from/code.
func Encode(from string, code uint64, val interface{}) (Envelope, error) {
	payload, err := rlp.EncodeToBytes(val)
	if err != nil {
		return Envelope{}, fmt.Errorf("wire: encode message %s: %w", MessageName(code), err)
	}
	if len(payload) > MaxEnvelopeSize {
		return Envelope{}, ErrEnvelopeTooLarge
	}
	return Envelope{From: from, Code: code, Payload: payload}, nil
}

// Decode RLP-decodes an Envelope's payload into val, which must be a
// pointer to the expected message type.
func Decode(env Envelope, val interface{}) error {
	if err := rlp.DecodeBytes(env.Payload, val); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, MessageName(env.Code), err)
	}
	return nil
}
