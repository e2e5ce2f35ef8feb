package beacon

import (
	"math/big"
	"testing"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/log"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/transport"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/vss"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/wire"
)

// testNode builds a Node over the safe prime 23 (q=11) with threshold 2,
// wired to a real transport.Network so broadcasts have somewhere to go.
func testNode(t *testing.T, view []string, identity string, roundMax uint64, replierID string) *Node {
	t.Helper()
	cfg, params, err := NewConfig(2, len(view), big.NewInt(23), view, roundMax, replierID, "client")
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	net := transport.NewNetwork(append(append([]string(nil), view...), "client"), nil)
	t.Cleanup(net.Close)
	n, err := NewNode(cfg, params, identity, net, log.Default())
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	return n
}

// freezeDKG directly installs a share and group key, bypassing the DKG
// sub-machine, for tests that only exercise the round sub-machine.
func freezeDKG(n *Node, share, h *big.Int) {
	n.dkg.mu.Lock()
	n.dkg.share = share
	n.dkg.h = h
	n.dkg.ready = true
	n.dkg.mu.Unlock()
}

// wireSubshare evaluates poly at idx and packages it with commit the way a
// committer's outbound Subshare message would be built.
func wireSubshare(poly *vss.Polynomial, commit []*big.Int, idx int64, q *big.Int) wire.Subshare {
	return wire.Subshare{Value: vss.Eval(poly, idx, q), Commitment: commit}
}
