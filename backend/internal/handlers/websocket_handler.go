package handlers

import (
	"github.com/gofiber/contrib/websocket"

	"github.com/Jamshid777/exwebfullstack/backend/internal/events"
)

// FeedEndpoint serves the WebSocket dashboard feed: committed ledger
// operations plus periodic balance snapshots. It must not return until the
// client disconnects: the contrib wrapper recycles the connection as soon as
// the handler exits, so the read loop runs inline and only the write pump is
// a goroutine.
func (h *Handler) FeedEndpoint(c *websocket.Conn) {
	client := &events.Client{
		Conn:   c,
		Remote: c.RemoteAddr().String(),
		Send:   make(chan []byte, 256), // Buffered channel for outgoing messages to this client
	}

	events.GlobalHub.Register <- client
	h.Log.Debug().Str("remote", client.Remote).Msg("Feed connection established")

	go h.feedWritePump(client)
	h.feedReadPump(client)
}

// feedWritePump pumps messages from the hub to the websocket connection. The
// loop ends when the hub closes the Send channel or a write fails.
func (h *Handler) feedWritePump(client *events.Client) {
	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			events.GlobalHub.Unregister <- client
			return
		}
	}
}

// feedReadPump blocks draining the connection until the client disconnects.
// The feed is one-way; inbound messages are ignored.
func (h *Handler) feedReadPump(client *events.Client) {
	defer func() {
		events.GlobalHub.Unregister <- client
		client.Conn.Close()
	}()

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Debug().Err(err).Str("remote", client.Remote).Msg("Feed client disconnected unexpectedly")
			}
			return
		}
	}
}
