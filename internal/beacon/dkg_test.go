package beacon

import (
	"math/big"
	"testing"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/vss"
)

// TestDKGCompletesOnLastSubshareRegardlessOfOrder exercises the "Start may
// arrive before, among, or after inbound subshares" requirement: here it
// arrives last, after two peer subshares, and completion must still fire.
func TestDKGCompletesOnLastSubshareRegardlessOfOrder(t *testing.T) {
	view := []string{"a", "b", "c"}
	n := testNode(t, view, "a", 0, "")

	polyB, err := vss.Random(n.cfg.T, n.params)
	if err != nil {
		t.Fatalf("vss.Random: %v", err)
	}
	commitB := polyB.Commit(n.params)
	idxA, _ := n.cfg.IndexOf("a")
	n.handleSubshare("b", wireSubshare(polyB, commitB, idxA, n.params.Q))

	polyC, err := vss.Random(n.cfg.T, n.params)
	if err != nil {
		t.Fatalf("vss.Random: %v", err)
	}
	commitC := polyC.Commit(n.params)
	n.handleSubshare("c", wireSubshare(polyC, commitC, idxA, n.params.Q))

	if n.IsReady() {
		t.Fatal("DKG reported ready after only 2 of 3 subshares")
	}

	n.handleStart()

	if !n.IsReady() {
		t.Fatal("DKG did not complete once the self Start arrived last")
	}
	if !n.Done() {
		t.Error("round_max=0 node did not reach the terminal state on DKG completion")
	}
	if n.RoundCurrent() != 0 {
		t.Errorf("round_current = %d, want 0 (round_max=0 never enters a round)", n.RoundCurrent())
	}
}

// TestHandleSubshareRejectsInvalidShare panics, per the design's "DKG
// verification failure: fatal" error-handling rule.
func TestHandleSubshareRejectsInvalidShare(t *testing.T) {
	view := []string{"a", "b", "c"}
	n := testNode(t, view, "a", 0, "")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("handleSubshare on a tampered share did not panic")
		}
		if _, ok := r.(*VerificationFailure); !ok {
			t.Errorf("panic value = %T, want *VerificationFailure", r)
		}
	}()

	poly, err := vss.Random(n.cfg.T, n.params)
	if err != nil {
		t.Fatalf("vss.Random: %v", err)
	}
	commit := poly.Commit(n.params)
	idxA, _ := n.cfg.IndexOf("a")
	msg := wireSubshare(poly, commit, idxA, n.params.Q)
	msg.Value = new(big.Int).Add(msg.Value, big.NewInt(1)) // tamper

	n.handleSubshare("b", msg)
}

func TestHandleStartIsIdempotent(t *testing.T) {
	view := []string{"a", "b", "c"}
	n := testNode(t, view, "a", 0, "")

	n.handleStart()
	n.dkg.mu.Lock()
	firstCommit := n.dkg.selfCommit
	n.dkg.mu.Unlock()

	n.handleStart() // should be a no-op, not resample the polynomial

	n.dkg.mu.Lock()
	secondCommit := n.dkg.selfCommit
	n.dkg.mu.Unlock()

	if len(firstCommit) != len(secondCommit) {
		t.Fatal("second handleStart changed the commitment vector length")
	}
	for i := range firstCommit {
		if firstCommit[i].Cmp(secondCommit[i]) != 0 {
			t.Error("second handleStart resampled the polynomial, want idempotent no-op")
		}
	}
}
