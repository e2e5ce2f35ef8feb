package beacon

import (
	"crypto/sha256"
	"math/big"
	"sort"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/group"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/nizk"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/wire"
)

// getOrCreateRound returns (creating if necessary) the roundState for k.
// Caller must hold roundMu.
func (n *Node) getOrCreateRound(k uint64) *roundState {
	rs, ok := n.rounds[k]
	if !ok {
		rs = newRoundState()
		n.rounds[k] = rs
	}
	return rs
}

// enterRound advances round_current to k and broadcasts this node's
// encryption share: a fresh ElGamal ciphertext over a random plaintext,
// with a Schnorr proof of knowledge of the encryption randomness.
func (n *Node) enterRound(k uint64) {
	rlog := n.log.Round(k)

	r, err := group.RandomScalar(n.params.Q)
	if err != nil {
		rlog.Error("failed to sample encryption randomness", "err", err)
		return
	}
	m, err := group.RandomScalar(new(big.Int).Sub(n.params.P, big.NewInt(1)))
	if err != nil {
		rlog.Error("failed to sample round plaintext", "err", err)
		return
	}

	a := group.ModExp(n.params.G, r, n.params.P)
	h := n.GroupKey()
	hr := group.ModExp(h, r, n.params.P)
	b := new(big.Int).Mul(m, hr)
	b.Mod(b, n.params.P)

	proof, err := nizk.ProveSchnorr(n.params, r, a)
	if err != nil {
		rlog.Error("failed to prove encryption randomness", "err", err)
		return
	}

	n.roundMu.Lock()
	n.roundCurrent = k
	rs := n.getOrCreateRound(k)
	rs.ciphertexts[n.Identity] = ciphertextEntry{a: a, b: b}
	n.roundMu.Unlock()

	rlog.Info("entering round")

	n.broadcast(wire.EncShareCode, wire.EncShare{A: a, B: b, Proof: proof, Round: k})

	n.roundMu.Lock()
	n.checkCiphertextsComplete(k)
	n.roundMu.Unlock()
}

// handleEncShare routes an inbound encryption share by its carried round:
// past-round messages are discarded, future-round messages are buffered
// without advancing state, and current-round messages are verified,
// stored, and may trigger the move to broadcasting a decryption share.
func (n *Node) handleEncShare(from string, msg wire.EncShare) {
	n.roundMu.Lock()
	defer n.roundMu.Unlock()

	if msg.Round < n.roundCurrent {
		n.log.Round(msg.Round).Debug("discarding past-round enc share", "from", from, "current", n.roundCurrent)
		return
	}

	if !nizk.VerifySchnorr(n.params, msg.Proof, msg.A) {
		n.log.Round(msg.Round).Warn("invalid Schnorr proof, discarding enc share", "from", from)
		return
	}

	rs := n.getOrCreateRound(msg.Round)
	if _, exists := rs.ciphertexts[from]; exists {
		// view_subciphertext entries are never overwritten once set.
		return
	}
	rs.ciphertexts[from] = ciphertextEntry{a: msg.A, b: msg.B}

	if msg.Round == n.roundCurrent {
		n.checkCiphertextsComplete(msg.Round)
	}
}

// checkCiphertextsComplete broadcasts this node's decryption share once
// all n ciphertexts for round k have arrived. Caller must hold roundMu.
func (n *Node) checkCiphertextsComplete(k uint64) {
	rs := n.rounds[k]
	if rs.decBroadcast || len(rs.ciphertexts) != n.cfg.N {
		return
	}
	n.broadcastDecShare(k, rs)
}

// broadcastDecShare computes this node's partial decryption D_i = A_k^share
// and a DLEQ proof that log_g(Y_i) == log_{A_k}(D_i), then broadcasts it.
// Caller must hold roundMu.
func (n *Node) broadcastDecShare(k uint64, rs *roundState) {
	aggA := big.NewInt(1)
	for _, ct := range rs.ciphertexts {
		aggA.Mul(aggA, ct.a)
		aggA.Mod(aggA, n.params.P)
	}
	rs.aggregateA = aggA

	share := n.Share()
	d := group.ModExp(aggA, share, n.params.P)
	y := n.publicKeyShare(share)

	proof, err := nizk.ProveDLEQ(n.params, share, n.params.G, y, aggA, d)
	if err != nil {
		n.log.Round(k).Error("failed to prove DLEQ", "err", err)
		return
	}

	rs.decryptions[n.Identity] = decryptionEntry{d: d, y: y, a: aggA}
	rs.decBroadcast = true

	n.log.Round(k).Info("broadcasting decryption share")

	n.broadcast(wire.DecShareCode, wire.DecShare{D: d, Proof: proof, Y: y, A: aggA, Round: k})

	n.checkFinalize(k, rs)
}

// handleDecShare routes an inbound decryption share using the same
// round-routing policy as handleEncShare.
func (n *Node) handleDecShare(from string, msg wire.DecShare) {
	n.roundMu.Lock()
	defer n.roundMu.Unlock()

	if msg.Round < n.roundCurrent {
		n.log.Round(msg.Round).Debug("discarding past-round dec share", "from", from, "current", n.roundCurrent)
		return
	}

	if !nizk.VerifyDLEQ(n.params, msg.Proof, n.params.G, msg.Y, msg.A, msg.D) {
		n.log.Round(msg.Round).Warn("invalid DLEQ proof, discarding dec share", "from", from)
		return
	}

	rs := n.getOrCreateRound(msg.Round)

	// Hardening beyond the minimum: once this node has computed its own
	// A_k for the round, reject any partial computed against a different
	// aggregate rather than accepting it on the sender's word alone.
	if rs.aggregateA != nil && rs.aggregateA.Cmp(msg.A) != 0 {
		n.log.Round(msg.Round).Warn("dec share A disagrees with local aggregate, discarding", "from", from)
		return
	}

	if _, exists := rs.decryptions[from]; exists {
		return
	}
	rs.decryptions[from] = decryptionEntry{d: msg.D, y: msg.Y, a: msg.A}

	if msg.Round == n.roundCurrent {
		n.checkFinalize(msg.Round, rs)
	}
}

// checkFinalize finalizes round k once at least t valid partials and all n
// ciphertexts are present. Caller must hold roundMu.
func (n *Node) checkFinalize(k uint64, rs *roundState) {
	if rs.finalized {
		return
	}
	if len(rs.decryptions) < n.cfg.T || len(rs.ciphertexts) != n.cfg.N {
		return
	}
	n.finalizeRound(k, rs)
}

// finalizeRound performs the Lagrange-interpolation-in-the-exponent
// reconstruction of the round's group decryption, derives the beacon
// output, optionally replies to the client, and advances to the next
// round. Caller must hold roundMu.
func (n *Node) finalizeRound(k uint64, rs *roundState) {
	rs.finalized = true

	participants := n.selectSubset(rs.decryptions)

	mK := big.NewInt(1)
	for _, i := range participants {
		entry := rs.decryptions[i.identity]
		lambda := lagrangeCoefficient(i.index, participants, n.params.Q)
		term := group.ModExp(entry.d, lambda, n.params.P)
		mK.Mul(mK, term)
		mK.Mod(mK, n.params.P)
	}

	bK := big.NewInt(1)
	for _, ct := range rs.ciphertexts {
		bK.Mul(bK, ct.b)
		bK.Mod(bK, n.params.P)
	}

	rlog := n.log.Round(k)

	mKInv, err := group.ModInverse(mK, n.params.P)
	if err != nil {
		rlog.Error("fatal: Lagrange reconstruction produced a non-invertible M_k", "err", err)
		panic(err)
	}
	raw := new(big.Int).Mul(bK, mKInv)
	raw.Mod(raw, n.params.P)

	digest := sha256.Sum256([]byte(raw.String()))
	output := new(big.Int).SetBytes(digest[:])
	output.Mod(output, n.params.P)

	n.outputs[k] = output
	rlog.Info("round finalized", "output", output.String())

	if n.cfg.ReplierID == n.Identity && n.cfg.ClientID != "" {
		n.send(n.cfg.ClientID, wire.ClientOutputCode, wire.ClientOutput{Round: k, Output: output})
	}

	if k >= n.cfg.RoundMax {
		n.done = true
		rlog.Info("beacon complete", "round_max", n.cfg.RoundMax)
		return
	}

	// enterRound re-acquires roundMu itself, so release before recursing
	// into the next round's broadcast, then reclaim it for our own
	// caller's deferred unlock.
	n.roundMu.Unlock()
	n.enterRound(k + 1)
	n.roundMu.Lock()
}

type subsetEntry struct {
	identity string
	index    int64
}

// selectSubset deterministically picks t of the recorded decryption
// entries, ordered by ascending participant index. Determinism keeps
// tests reproducible; any t-subset of valid partials is cryptographically
// equivalent per the design.
func (n *Node) selectSubset(decryptions map[string]decryptionEntry) []subsetEntry {
	all := make([]subsetEntry, 0, len(decryptions))
	for id := range decryptions {
		idx, ok := n.cfg.IndexOf(id)
		if !ok {
			continue
		}
		all = append(all, subsetEntry{identity: id, index: idx})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].index < all[j].index })
	if len(all) > n.cfg.T {
		all = all[:n.cfg.T]
	}
	return all
}

// lagrangeCoefficient computes lambda_i = product_{j in S, j != i} j * (j-i)^-1 mod q,
// using the signed-mod reduction before inverting since j-i can be negative.
func lagrangeCoefficient(i int64, participants []subsetEntry, q *big.Int) *big.Int {
	lambda := big.NewInt(1)
	for _, p := range participants {
		j := p.index
		if j == i {
			continue
		}
		jBig := big.NewInt(j)
		diff := group.Mod(big.NewInt(j-i), q)
		diffInv, err := group.ModInverse(diff, q)
		if err != nil {
			// j == i was already excluded, and q is prime, so diff is
			// always invertible for distinct indices; this would only
			// fire on an implementation bug.
			panic(err)
		}
		term := new(big.Int).Mul(jBig, diffInv)
		term.Mod(term, q)
		lambda.Mul(lambda, term)
		lambda.Mod(lambda, q)
	}
	return lambda
}
