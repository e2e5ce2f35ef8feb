package beacon

import "errors"

var (
	// ErrUnknownIdentity is returned by NewNode when identity is not a
	// member of the configured view.
	ErrUnknownIdentity = errors.New("beacon: identity not present in view")
)

// VerificationFailure is the fatal error raised when a DKG-phase subshare
// fails verification. Under the QUAL assumption (all n nodes are honest
// and eventually respond during DKG) this should never happen in
// practice; if it does, it indicates either a misconfigured group or a
// bug, and the node panics with this error rather than attempting to
// continue in a state it cannot trust.
type VerificationFailure struct {
	From string
}

func (e *VerificationFailure) Error() string {
	return "beacon: fatal -- subshare from " + e.From + " failed VSS verification"
}
