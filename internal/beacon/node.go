package beacon

import (
	"math/big"
	"sync"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/group"
	beaconlog "github.com/kc2853/homomorphic-encryption-random-beacon/internal/log"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/transport"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/vss"
	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/wire"
)

// dkgState tracks the node's view of distributed key generation up to and
// including the point where share and h are frozen.
type dkgState struct {
	mu sync.Mutex

	self       *vss.Polynomial    // this node's own polynomial, held only until DKG completes
	selfCommit []*big.Int         // this node's own commitment vector
	received   map[string]subshareEntry
	ready      bool
	share      *big.Int // frozen private share, sum of subshares mod q
	h          *big.Int // frozen group public key, product of C_0's mod p
}

type subshareEntry struct {
	subshare *big.Int
	c0       *big.Int // committer's constant-term commitment, doubling as its PK share
}

// roundState tracks one round's in-flight ciphertext and partial-decryption
// exchange.
type roundState struct {
	ciphertexts  map[string]ciphertextEntry
	decryptions  map[string]decryptionEntry
	decBroadcast bool
	finalized    bool
	aggregateA   *big.Int // A_k, product of all a_{k,i}; nil until this node broadcasts its own dec share, then used to reject disagreeing inbound A
}

type ciphertextEntry struct {
	a, b *big.Int
}

type decryptionEntry struct {
	d, y, a *big.Int
}

func newRoundState() *roundState {
	return &roundState{
		ciphertexts: make(map[string]ciphertextEntry),
		decryptions: make(map[string]decryptionEntry),
	}
}

// Event is a single inbound occurrence a Node reacts to: a Start command,
// or an Envelope received over the network.
type Event struct {
	Start bool
	Env   wire.Envelope
}

// Node is one participant's protocol state machine: a single-threaded
// cooperative actor whose entire state is mutated only from within Run's
// event loop.
type Node struct {
	Identity string
	Index    int64

	cfg    *Config
	params *group.Params
	net    *transport.Network
	log    *beaconlog.Logger

	dkg *dkgState

	roundMu      sync.Mutex
	rounds       map[uint64]*roundState
	roundCurrent uint64
	done         bool // true once round round_max is finalized (or DKG completes when round_max = 0); round_current stays at round_max

	// events lets tests and the harness inject a Start without going
	// through the network layer (the client's Start is not itself an
	// Envelope in the wire sense -- section 6 lists it with no payload).
	events chan Event

	// outputs records every beacon output this node itself derived, keyed
	// by round. Read through the Output accessor, which is safe to call
	// from outside the event loop (e.g. a test harness polling for
	// agreement) because it takes roundMu.
	outputs map[uint64]*big.Int
}

// NewNode constructs a Node for the given identity. identity must be
// present in cfg.View.
func NewNode(cfg *Config, params *group.Params, identity string, net *transport.Network, logger *beaconlog.Logger) (*Node, error) {
	idx, ok := cfg.IndexOf(identity)
	if !ok {
		return nil, ErrUnknownIdentity
	}
	return &Node{
		Identity: identity,
		Index:    idx,
		cfg:      cfg,
		params:   params,
		net:      net,
		log:      logger.Module("beacon").With("identity", identity),
		dkg: &dkgState{
			received: make(map[string]subshareEntry),
		},
		rounds:  make(map[uint64]*roundState),
		events:  make(chan Event, 4*cfg.N+16),
		outputs: make(map[uint64]*big.Int),
	}, nil
}

// Mailbox returns the channel the network should deliver this node's
// inbound Envelopes to.
func (n *Node) Mailbox() chan<- Event {
	return n.events
}

// InjectStart delivers a Start event directly, bypassing the network --
// this is how the client's command reaches the node (Start has no wire
// payload to route through an Envelope).
func (n *Node) InjectStart() {
	n.events <- Event{Start: true}
}

// Deliver delivers a network Envelope to this node's mailbox. Called by
// whatever pumps a transport.Mailbox into the node (see the pump goroutine
// in internal/harness).
func (n *Node) Deliver(env wire.Envelope) {
	n.events <- Event{Env: env}
}

// Run is the node's event loop. It processes events until stop is closed,
// dispatching each to the relevant handler. All state mutation happens
// here, sequentially, so no locking is required within a single handler
// beyond what's needed for fields read concurrently by tests (Output,
// dkgState.share/h via Share/GroupKey accessors).
func (n *Node) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case ev := <-n.events:
			n.handleEvent(ev)
		}
	}
}

func (n *Node) handleEvent(ev Event) {
	if ev.Start {
		n.handleStart()
		return
	}
	switch ev.Env.Code {
	case wire.SubshareCode:
		var msg wire.Subshare
		if err := wire.Decode(ev.Env, &msg); err != nil {
			n.log.Error("failed to decode subshare", "from", ev.Env.From, "err", err)
			return
		}
		n.handleSubshare(ev.Env.From, msg)
	case wire.EncShareCode:
		var msg wire.EncShare
		if err := wire.Decode(ev.Env, &msg); err != nil {
			n.log.Error("failed to decode enc share", "from", ev.Env.From, "err", err)
			return
		}
		n.handleEncShare(ev.Env.From, msg)
	case wire.DecShareCode:
		var msg wire.DecShare
		if err := wire.Decode(ev.Env, &msg); err != nil {
			n.log.Error("failed to decode dec share", "from", ev.Env.From, "err", err)
			return
		}
		n.handleDecShare(ev.Env.From, msg)
	default:
		n.log.Warn("unknown message code", "code", ev.Env.Code, "from", ev.Env.From)
	}
}

// Share returns this node's frozen private share. Only meaningful after
// DKG has completed (IsReady() == true).
func (n *Node) Share() *big.Int {
	n.dkg.mu.Lock()
	defer n.dkg.mu.Unlock()
	return n.dkg.share
}

// GroupKey returns the frozen group public key h. Only meaningful after
// DKG has completed.
func (n *Node) GroupKey() *big.Int {
	n.dkg.mu.Lock()
	defer n.dkg.mu.Unlock()
	return n.dkg.h
}

// IsReady reports whether DKG has completed for this node.
func (n *Node) IsReady() bool {
	n.dkg.mu.Lock()
	defer n.dkg.mu.Unlock()
	return n.dkg.ready
}

// RoundCurrent returns the highest round this node has entered.
func (n *Node) RoundCurrent() uint64 {
	n.roundMu.Lock()
	defer n.roundMu.Unlock()
	return n.roundCurrent
}

// Done reports whether the node has reached its terminal state: round
// round_max finalized, or DKG complete when round_max is 0.
func (n *Node) Done() bool {
	n.roundMu.Lock()
	defer n.roundMu.Unlock()
	return n.done
}

// Output returns the beacon output this node itself derived for round k,
// if it has finalized that round yet.
func (n *Node) Output(k uint64) (*big.Int, bool) {
	n.roundMu.Lock()
	defer n.roundMu.Unlock()
	out, ok := n.outputs[k]
	return out, ok
}

func (n *Node) send(to string, code uint64, val interface{}) {
	env, err := wire.Encode(n.Identity, code, val)
	if err != nil {
		n.log.Error("failed to encode outbound message", "code", code, "to", to, "err", err)
		return
	}
	if err := n.net.Send(n.Identity, to, env); err != nil {
		n.log.Error("failed to send", "code", code, "to", to, "err", err)
	}
}

func (n *Node) broadcast(code uint64, val interface{}) {
	for _, peer := range n.cfg.Peers(n.Identity) {
		n.send(peer, code, val)
	}
}
