package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/minigolf/internal/game"
	"github.com/playmatatu/minigolf/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Server message types
const (
	MsgSnapshot       = "snapshot"
	MsgEvent          = "event"
	MsgError          = "error"
	MsgSessionExpired = "session_expired"
	MsgSessionEnded   = "session_ended"
)

// WSMessage is the envelope of every frame in both directions.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client is one websocket connection watching a session.
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	sessionToken string
	send         chan []byte
	greeting     []byte
	closed       chan struct{}
}

// Hub fans session output out to the connections watching each session.
// It implements game.Broadcaster.
type Hub struct {
	rooms      map[string]map[*Client]bool // session token -> clients
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

// Run processes registrations until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	log := logger.For("ws")
	defer close(h.quit)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for token, room := range h.rooms {
				for client := range room {
					close(client.send)
				}
				delete(h.rooms, token)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.sessionToken]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.sessionToken] = room
			}
			room[client] = true
			watchers := len(room)
			if client.greeting != nil {
				client.send <- client.greeting
			}
			h.mu.Unlock()
			log.Info().Str("session", client.sessionToken).Int("watchers", watchers).Msg("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.sessionToken]; ok && room[client] {
				delete(room, client)
				close(client.send)
				if len(room) == 0 {
					delete(h.rooms, client.sessionToken)
				}
			}
			h.mu.Unlock()
			log.Info().Str("session", client.sessionToken).Msg("client disconnected")
		}
	}
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connections watching a session.
func (h *Hub) ClientCount(sessionToken string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionToken])
}

// BroadcastSnapshot sends a snapshot frame to every watcher of a session.
func (h *Hub) BroadcastSnapshot(token string, snap game.Snapshot) {
	h.broadcast(token, MsgSnapshot, snap)
}

// BroadcastEvents sends one event frame per collision event.
func (h *Hub) BroadcastEvents(token string, events []game.CollisionEvent) {
	for _, ev := range events {
		h.broadcast(token, MsgEvent, ev)
	}
}

func (h *Hub) broadcast(token, msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		log := logger.For("ws")
		log.Error().Err(err).Str("type", msgType).Msg("marshal failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[token] {
		select {
		case client.send <- data:
		default:
			log := logger.For("ws")
			log.Warn().Str("session", token).Str("type", msgType).Msg("send buffer full, dropping message")
		}
	}
}

func encode(msgType string, payload interface{}) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(WSMessage{Type: msgType, Data: raw})
}

// enqueue queues a frame for this client only. It reports false when the
// client is gone or its buffer is full.
func (c *Client) enqueue(msgType string, payload interface{}) bool {
	data, err := encode(msgType, payload)
	if err != nil {
		return false
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.rooms[c.sessionToken][c] {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) sendError(message string) {
	c.enqueue(MsgError, map[string]string{"message": message})
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log := logger.For("ws")
				log.Debug().Str("session", c.sessionToken).Err(err).Msg("write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
