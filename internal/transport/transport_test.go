package transport

import (
	"testing"
	"time"

	"github.com/kc2853/homomorphic-encryption-random-beacon/internal/wire"
)

func TestSendDeliversToRecipientMailbox(t *testing.T) {
	net := NewNetwork([]string{"a", "b"}, nil)
	defer net.Close()

	env := wire.Envelope{From: "a", Code: wire.StartCode, Payload: nil}
	if err := net.Send("a", "b", env); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-net.Mailbox("b").C:
		if got.From != "a" {
			t.Errorf("From = %q, want %q", got.From, "a")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestSendToUnknownRecipientFails(t *testing.T) {
	net := NewNetwork([]string{"a"}, nil)
	defer net.Close()

	err := net.Send("a", "ghost", wire.Envelope{})
	if err != ErrUnknownRecipient {
		t.Errorf("Send to unknown recipient: got %v, want ErrUnknownRecipient", err)
	}
}

func TestFIFOPreservedPerOrderedPair(t *testing.T) {
	net := NewNetwork([]string{"a", "b"}, UniformDelay(3*time.Millisecond))
	defer net.Close()

	const count = 20
	for i := 0; i < count; i++ {
		env := wire.Envelope{From: "a", Code: wire.StartCode, Payload: []byte{byte(i)}}
		if err := net.Send("a", "b", env); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}

	for i := 0; i < count; i++ {
		select {
		case got := <-net.Mailbox("b").C:
			if len(got.Payload) != 1 || got.Payload[0] != byte(i) {
				t.Fatalf("message %d out of order: payload %v", i, got.Payload)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestUniformDelayZeroIsImmediate(t *testing.T) {
	f := UniformDelay(0)
	if d := f(); d != 0 {
		t.Errorf("UniformDelay(0)() = %v, want 0", d)
	}
}

func TestCloseDrainsQueuedMessages(t *testing.T) {
	net := NewNetwork([]string{"a", "b"}, nil)

	env := wire.Envelope{From: "a", Code: wire.StartCode}
	if err := net.Send("a", "b", env); err != nil {
		t.Fatalf("Send: %v", err)
	}
	net.Close()

	select {
	case <-net.Mailbox("b").C:
	default:
		t.Fatal("expected queued message to have drained before Close returned")
	}
}
