package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/events"
)

const sendBuffer = 64

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local gateway
	},
}

// Message is one notifier event as sent to websocket clients
type Message struct {
	Topic   events.Topic `json:"topic"`
	Payload any          `json:"payload,omitempty"`
	At      time.Time    `json:"at"`
}

// Client is one websocket connection
type Client struct {
	ID   uuid.UUID
	Send chan []byte
}

// Hub fans notifier events out to websocket clients. Slow clients miss events
// rather than block the bus goroutine.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  zerolog.Logger
}

// NewHub creates an empty hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client
func (h *Hub) Register() *Client {
	client := &Client{ID: uuid.New(), Send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
	return client
}

// Unregister removes a client and closes its channel
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every client without blocking
func (h *Hub) Broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("topic", string(msg.Topic)).Msg("failed to encode event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn().Str("client", client.ID.String()).Msg("client too slow, event dropped")
		}
	}
}

// Forward subscribes the hub to a notifier
func Forward[T any](h *Hub, n *events.Notifier[T]) events.Subscription {
	return n.Subscribe(func(payload T) {
		h.Broadcast(Message{Topic: n.Topic(), Payload: payload, At: time.Now().UTC()})
	})
}

// ServeWS handles GET /ws
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}
	defer conn.Close()

	client := h.Register()
	defer h.Unregister(client)

	h.logger.Info().Str("client", client.ID.String()).Msg("websocket connection established")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Error().Err(err).Str("client", client.ID.String()).Msg("websocket error")
			}
			break
		}
	}

	h.Unregister(client)
	<-done
	h.logger.Info().Str("client", client.ID.String()).Msg("websocket connection closed")
}
