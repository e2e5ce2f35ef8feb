// Package beacon implements the protocol state machine: the one-shot DKG
// sub-machine and the per-round encryption/decryption sub-machine that
// together produce the distributed randomness beacon. Each Node is a
// single-threaded cooperative actor driven entirely by its mailbox.
package beacon

import (
	"errors"
	"math/big"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/group"
)

var (
	// ErrInvalidThreshold is returned when t is out of [1, n].
	ErrInvalidThreshold = errors.New("beacon: threshold t must satisfy 1 <= t <= n")
	// ErrEmptyView is returned when the participant view is empty.
	ErrEmptyView = errors.New("beacon: view must not be empty")
	// ErrViewSizeMismatch is returned when len(view) != n.
	ErrViewSizeMismatch = errors.New("beacon: len(view) must equal n")
	// ErrDuplicateIdentity is returned when the view contains a repeated identity.
	ErrDuplicateIdentity = errors.New("beacon: view contains a duplicate identity")
	// ErrUnknownReplier is returned when ReplierID is set but not in the view.
	ErrUnknownReplier = errors.New("beacon: replier identity not present in view")
)

// Config is the process-wide, immutable-after-construction configuration
// every node in a run shares: the threshold, the participant view, and the
// round/reply policy. The group parameters are not part of Config: NewConfig
// returns them alongside it as a *group.Params, where P is validated as a
// safe prime and G is derived from it (see group.NewParams).
type Config struct {
	T, N     int
	View     []string // ordered participant identities; index+1 is the evaluation point
	RoundMax uint64   // 0 means DKG only
	ReplierID string  // identity that replies to the client; "" disables replies
	ClientID  string  // identity the replier sends (round, output) pairs to
}

// NewConfig validates t, n, and the view, then derives group parameters
// from the safe prime p.
func NewConfig(t, n int, p *big.Int, view []string, roundMax uint64, replierID, clientID string) (*Config, *group.Params, error) {
	if t < 1 || t > n {
		return nil, nil, ErrInvalidThreshold
	}
	if len(view) == 0 {
		return nil, nil, ErrEmptyView
	}
	if len(view) != n {
		return nil, nil, ErrViewSizeMismatch
	}
	seen := make(map[string]bool, len(view))
	for _, id := range view {
		if seen[id] {
			return nil, nil, ErrDuplicateIdentity
		}
		seen[id] = true
	}
	if replierID != "" && !seen[replierID] {
		return nil, nil, ErrUnknownReplier
	}

	params, err := group.NewParams(p)
	if err != nil {
		return nil, nil, err
	}

	cfg := &Config{
		T:         t,
		N:         n,
		View:      append([]string(nil), view...),
		RoundMax:  roundMax,
		ReplierID: replierID,
		ClientID:  clientID,
	}
	return cfg, params, nil
}

// IndexOf returns the 1-based evaluation-point index of identity in the
// view, or 0, false if it is not a participant.
func (c *Config) IndexOf(identity string) (int64, bool) {
	for i, id := range c.View {
		if id == identity {
			return int64(i + 1), true
		}
	}
	return 0, false
}

// Peers returns every view identity other than self.
func (c *Config) Peers(self string) []string {
	peers := make([]string, 0, len(c.View)-1)
	for _, id := range c.View {
		if id != self {
			peers = append(peers, id)
		}
	}
	return peers
}
