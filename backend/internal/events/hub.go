package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"
)

// Event is one message on the dashboard feed: a committed ledger operation or
// a periodic balance snapshot.
type Event struct {
	Type    string      `json:"type"` // transaction, expense, shift, balances
	Payload interface{} `json:"payload"`
	Ts      int64       `json:"ts"` // Unix timestamp milliseconds
}

// Client represents a single WebSocket client connection. Remote is captured
// at creation; the hub never touches Conn, which is only valid while the
// handler that created the client is still running.
type Client struct {
	Conn   *websocket.Conn
	Remote string
	Send   chan []byte // Buffered channel for outbound messages
}

// Hub manages WebSocket clients and broadcasts ledger events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
	log        zerolog.Logger
}

var GlobalHub *Hub

// NewHub creates and initializes a new Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		log:        log,
	}
}

// Publish broadcasts an event to every connected client. Non-blocking: if the
// hub's buffer is full the event is dropped, the ledger never waits on the feed.
func (h *Hub) Publish(eventType string, payload interface{}) {
	msg, err := json.Marshal(Event{
		Type:    eventType,
		Payload: payload,
		Ts:      time.Now().UnixMilli(),
	})
	if err != nil {
		h.log.Error().Err(err).Str("type", eventType).Msg("Failed to marshal event")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Str("type", eventType).Msg("Event buffer full, dropping event")
	}
}

// Run starts the Hub's event loop.
func (h *Hub) Run() {
	h.log.Info().Msg("Starting WebSocket hub")
	go h.listenToFeed()

	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug().Str("remote", client.Remote).Msg("Client registered")

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.log.Debug().Str("remote", client.Remote).Msg("Client unregistered")
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Client's send buffer is full, drop the connection
					h.log.Warn().Str("remote", client.Remote).Msg("Client send buffer full, closing")
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// listenToFeed forwards periodic balance snapshots onto the broadcast channel.
func (h *Hub) listenToFeed() {
	for event := range Updates {
		msg, err := json.Marshal(event)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to marshal feed event")
			continue
		}
		h.broadcast <- msg
	}
}

// InitializeGlobalHub creates and runs the global Hub instance.
func InitializeGlobalHub(log zerolog.Logger) {
	GlobalHub = NewHub(log)
	go GlobalHub.Run()
}
