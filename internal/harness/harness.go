// Package harness orchestrates a run of the beacon protocol: it wires up a
// transport.Network, constructs one beacon.Node per participant plus a
// client pseudo-identity, pumps network mailboxes into each node's event
// loop, and drives the client's Start and ClientOutput collection. It plays
// the role the design's section 1 calls out as an external collaborator
// ("the test harness that orchestrates the n node processes and a client
// process"), not part of the protocol core itself.
package harness

import (
	"errors"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/beacon"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/group"
	beaconlog "github.com/kc2853/homomorphic-encryption-random-beacon/internal/log"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/transport"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/wire"
)

// ErrTimeout is returned by AwaitReplies when the requested number of
// client outputs did not arrive before the deadline.
var ErrTimeout = errors.New("harness: timed out waiting for client replies")

// ClientIdentity is the reserved participant name the replier node sends
// ClientOutput messages to. It is never a member of cfg.View.
const ClientIdentity = "client"

// Params bundles the inputs needed to stand up a run.
type Params struct {
	T, N      int
	P         *big.Int
	RoundMax  uint64
	ReplierID string // "" disables client replies
	Delay     transport.DelayFunc
	LogLevel  string // debug, info, warn, error; see log.ParseLevel
}

// Run is one live instance of the protocol: its network, its nodes, and
// the plumbing that pumps messages between them.
type Run struct {
	Config *beacon.Config
	Params *group.Params
	Nodes  map[string]*beacon.Node
	net    *transport.Network
	logger *beaconlog.Logger

	stop chan struct{}
	wg   sync.WaitGroup

	clientMbox *transport.Mailbox
}

// NewRun constructs a Run with n nodes named "node-1".."node-n" plus a
// client identity. It does not start anything; call Start.
func NewRun(p Params) (*Run, error) {
	view := make([]string, p.N)
	for i := 0; i < p.N; i++ {
		view[i] = nodeName(i + 1)
	}

	cfg, groupParams, err := beacon.NewConfig(p.T, p.N, p.P, view, p.RoundMax, p.ReplierID, ClientIdentity)
	if err != nil {
		return nil, err
	}

	identities := append(append([]string(nil), view...), ClientIdentity)
	net := transport.NewNetwork(identities, p.Delay)
	logger := beaconlog.New(beaconlog.ParseLevel(p.LogLevel))

	nodes := make(map[string]*beacon.Node, p.N)
	for _, id := range view {
		node, err := beacon.NewNode(cfg, groupParams, id, net, logger)
		if err != nil {
			return nil, err
		}
		nodes[id] = node
	}

	return &Run{
		Config:     cfg,
		Params:     groupParams,
		Nodes:      nodes,
		net:        net,
		logger:     logger,
		stop:       make(chan struct{}),
		clientMbox: net.Mailbox(ClientIdentity),
	}, nil
}

// Start launches each node's event loop and the mailbox-pump goroutines
// that feed network envelopes into them.
func (r *Run) Start() {
	for id, node := range r.Nodes {
		r.wg.Add(2)
		go func(node *beacon.Node) {
			defer r.wg.Done()
			node.Run(r.stop)
		}(node)
		go r.pump(id, node)
	}
}

// pump copies envelopes from a node's transport mailbox into its event
// channel until stop is closed.
func (r *Run) pump(id string, node *beacon.Node) {
	defer r.wg.Done()
	mbox := r.net.Mailbox(id)
	for {
		select {
		case <-r.stop:
			return
		case env := <-mbox.C:
			node.Deliver(env)
		}
	}
}

// Begin injects a Start event into every node, beginning DKG.
func (r *Run) Begin() {
	for _, node := range r.Nodes {
		node.InjectStart()
	}
}

// AwaitReplies blocks, collecting ClientOutput messages off the client
// mailbox, until count have arrived or timeout elapses. It returns
// whatever it collected, in arrival order (which equals round order, since
// rounds finalize strictly in sequence).
func (r *Run) AwaitReplies(count int, timeout time.Duration) ([]wire.ClientOutput, error) {
	outputs := make([]wire.ClientOutput, 0, count)
	deadline := time.After(timeout)
	for len(outputs) < count {
		select {
		case env := <-r.clientMbox.C:
			var out wire.ClientOutput
			if err := wire.Decode(env, &out); err != nil {
				return outputs, err
			}
			outputs = append(outputs, out)
		case <-deadline:
			return outputs, ErrTimeout
		}
	}
	return outputs, nil
}

// AwaitDKG blocks until every node reports IsReady(), or timeout elapses.
func (r *Run) AwaitDKG(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		ready := true
		for _, node := range r.Nodes {
			if !node.IsReady() {
				ready = false
				break
			}
		}
		if ready {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

// AwaitDone blocks until every node reports Done(), or timeout elapses.
func (r *Run) AwaitDone(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		done := true
		for _, node := range r.Nodes {
			if !node.Done() {
				done = false
				break
			}
		}
		if done {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

// Stop halts every node's event loop and the network, releasing all
// goroutines this Run started.
func (r *Run) Stop() {
	close(r.stop)
	r.wg.Wait()
	r.net.Close()
}

func nodeName(i int) string {
	return "node-" + strconv.Itoa(i)
}
