package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(id string) *Client {
	return &Client{ID: id, Send: make(chan []byte, 4)}
}

func TestHubNotifyUsers(t *testing.T) {
	hub := NewHub()

	alice := newTestClient("alice")
	bob := newTestClient("bob")
	hub.registerClient(alice)
	hub.registerClient(bob)

	event := WSMessage{
		Type: EventCallStarted,
		Payload: CallPayload{
			ConversationID: "c1",
			RoomID:         "r1",
			CreatedBy:      "alice",
		},
		Timestamp: time.Now(),
	}

	hub.NotifyUsers([]string{"bob", "nobody"}, event)

	select {
	case data := <-bob.Send:
		var got WSMessage
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("bad event payload: %v", err)
		}
		if got.Type != EventCallStarted {
			t.Fatalf("expected %s, got %s", EventCallStarted, got.Type)
		}
	default:
		t.Fatalf("bob did not receive the event")
	}

	select {
	case <-alice.Send:
		t.Fatalf("alice received an event not addressed to her")
	default:
	}
}

func TestHubReplacesExistingConnection(t *testing.T) {
	hub := NewHub()

	old := newTestClient("alice")
	hub.registerClient(old)

	replacement := newTestClient("alice")
	hub.registerClient(replacement)

	// Old connection's channel is closed so its write pump shuts down
	select {
	case _, ok := <-old.Send:
		if ok {
			t.Fatalf("expected closed channel, got a message")
		}
	default:
		t.Fatalf("old client's channel was not closed")
	}

	hub.NotifyUsers([]string{"alice"}, WSMessage{Type: EventMemberLeft, Timestamp: time.Now()})
	select {
	case <-replacement.Send:
	default:
		t.Fatalf("replacement connection did not receive the event")
	}
}

func TestHubUnregisterKeepsReplacement(t *testing.T) {
	hub := NewHub()

	old := newTestClient("alice")
	hub.registerClient(old)
	replacement := newTestClient("alice")
	hub.registerClient(replacement)

	// The old client's pump exits and unregisters after being replaced;
	// the replacement must survive that
	hub.unregisterClient(old)

	if !hub.IsConnected("alice") {
		t.Fatalf("replacement connection was dropped by stale unregister")
	}

	hub.unregisterClient(replacement)
	if hub.IsConnected("alice") {
		t.Fatalf("client still connected after unregister")
	}
	if hub.ConnectedCount() != 0 {
		t.Fatalf("expected 0 connected clients, got %d", hub.ConnectedCount())
	}
}

func TestHubSlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub()

	slow := &Client{ID: "slow", Send: make(chan []byte)} // no buffer, nobody reading
	hub.registerClient(slow)

	done := make(chan struct{})
	go func() {
		hub.NotifyUsers([]string{"slow"}, WSMessage{Type: EventMessageSent, Timestamp: time.Now()})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("NotifyUsers blocked on a slow client")
	}
}
