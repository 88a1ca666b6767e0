package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishQueuesEvent(t *testing.T) {
	h := NewHub(zerolog.Nop())

	h.Publish("transaction", map[string]string{"kind": "buy"})

	select {
	case msg := <-h.broadcast:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, "transaction", ev.Type)
		assert.NotZero(t, ev.Ts)
	default:
		t.Fatal("expected a queued event")
	}
}

// The hub must deliver to a registered client using only the captured remote
// address; Client.Conn belongs to the handler goroutines and is not valid
// from the hub's loop.
func TestHubDeliversToClientWithoutConn(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()

	client := &Client{Remote: "203.0.113.7:51442", Send: make(chan []byte, 1)}
	h.Register <- client

	h.Publish("transaction", map[string]string{"kind": "sell"})

	select {
	case msg := <-client.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, "transaction", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("expected the hub to deliver the event")
	}

	h.Unregister <- client
	select {
	case _, open := <-client.Send:
		assert.False(t, open, "send channel should be closed after unregister")
	case <-time.After(time.Second):
		t.Fatal("expected the send channel to close")
	}
}

func TestHubDropsStalledClient(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()

	// Unbuffered and never read: the first broadcast cannot be delivered.
	client := &Client{Remote: "203.0.113.8:51443", Send: make(chan []byte)}
	h.Register <- client

	h.Publish("balances", 1)

	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		_, ok := h.clients[client]
		return !ok
	}, time.Second, 10*time.Millisecond, "expected the hub to drop the stalled client")
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	h := NewHub(zerolog.Nop())

	// Fill the buffer; the extra publish must return instead of blocking.
	for i := 0; i < cap(h.broadcast); i++ {
		h.Publish("balances", i)
	}
	h.Publish("balances", "overflow")

	assert.Equal(t, cap(h.broadcast), len(h.broadcast))
}
