package beacon

import (
	"math/big"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/group"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/vss"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/wire"
)

// handleStart picks this node's polynomial, commits to it, sends every
// peer its subshare and the commitment vector, records the self-subshare,
// and checks for immediate completion -- the Start event and an inbound
// Subshare can arrive in either order, so both handlers run the identical
// completion check.
func (n *Node) handleStart() {
	n.dkg.mu.Lock()
	if n.dkg.self != nil || n.dkg.ready {
		// Start is idempotent: a duplicate or late Start after this node
		// already began DKG is a no-op.
		n.dkg.mu.Unlock()
		return
	}

	poly, err := vss.Random(n.cfg.T, n.params)
	if err != nil {
		n.dkg.mu.Unlock()
		n.log.Error("failed to sample DKG polynomial", "err", err)
		return
	}
	commit := poly.Commit(n.params)
	n.dkg.self = poly
	n.dkg.selfCommit = commit

	selfShare := vss.Eval(poly, n.Index, n.params.Q)
	n.dkg.received[n.Identity] = subshareEntry{subshare: selfShare, c0: commit[0]}
	n.dkg.mu.Unlock()

	n.log.Info("DKG started", "t", n.cfg.T, "n", n.cfg.N)

	for _, peer := range n.cfg.Peers(n.Identity) {
		peerIdx, _ := n.cfg.IndexOf(peer)
		share := vss.Eval(poly, peerIdx, n.params.Q)
		n.send(peer, wire.SubshareCode, wire.Subshare{
			Value:      share,
			Commitment: commit,
		})
	}

	n.checkDKGComplete()
}

// handleSubshare verifies an inbound subshare against the committer's
// commitment vector. An invalid subshare violates the QUAL assumption and
// is fatal; a valid one is recorded and the completion check runs again.
func (n *Node) handleSubshare(from string, msg wire.Subshare) {
	if !vss.VerifySubshare(msg.Value, msg.Commitment, n.params, n.Index) {
		n.log.Error("fatal: invalid DKG subshare", "from", from)
		panic(&VerificationFailure{From: from})
	}

	n.dkg.mu.Lock()
	if _, exists := n.dkg.received[from]; exists {
		n.dkg.mu.Unlock()
		return
	}
	n.dkg.received[from] = subshareEntry{subshare: msg.Value, c0: msg.Commitment[0]}
	n.dkg.mu.Unlock()

	n.checkDKGComplete()
}

// checkDKGComplete transitions Idle/AwaitingSubshares -> Ready as soon as
// n subshares (including this node's own) have been recorded, computing
// the frozen share and group key, then immediately entering round 1.
func (n *Node) checkDKGComplete() {
	n.dkg.mu.Lock()
	if n.dkg.ready || len(n.dkg.received) != n.cfg.N {
		n.dkg.mu.Unlock()
		return
	}

	share := new(big.Int)
	h := big.NewInt(1)
	for _, entry := range n.dkg.received {
		share.Add(share, entry.subshare)
		share.Mod(share, n.params.Q)
		h.Mul(h, entry.c0)
		h.Mod(h, n.params.P)
	}
	n.dkg.share = share
	n.dkg.h = h
	n.dkg.ready = true
	// The per-node polynomial is no longer needed once the share is fixed.
	n.dkg.self = nil
	n.dkg.selfCommit = nil
	n.dkg.mu.Unlock()

	n.log.Info("DKG complete", "h", h.String())

	if n.cfg.RoundMax == 0 {
		n.roundMu.Lock()
		n.done = true
		n.roundMu.Unlock()
		n.log.Info("no beacon rounds configured, node terminal")
		return
	}

	n.enterRound(1)
}

// publicKeyShare returns g^share mod p, this node's individual public-key
// share Y_i used as the DLEQ statement's left-hand base during decryption.
func (n *Node) publicKeyShare(share *big.Int) *big.Int {
	return group.ModExp(n.params.G, share, n.params.P)
}
