package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/playmatatu/ballsim/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Client is one viewer attached to a stage
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	id         string
	stageToken string
	format     game.FrameFormat
	operator   string // empty for anonymous viewers
	send       chan []byte
}

func (c *Client) messageType() int {
	if c.format == game.FormatMsgpack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Hub maintains the set of active viewers grouped by stage
type Hub struct {
	clients    map[string]*Client            // client ID -> Client
	rooms      map[string]map[string]*Client // stage token -> client ID -> Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub. Call Run before accepting connections.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				h.removeLocked(id, client)
			}
			h.mu.Unlock()
			log.Println("[WS] Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			if _, exists := h.rooms[client.stageToken]; !exists {
				h.rooms[client.stageToken] = make(map[string]*Client)
			}
			h.rooms[client.stageToken][client.id] = client
			size := len(h.rooms[client.stageToken])
			h.mu.Unlock()
			log.Printf("[WS] Viewer %s joined stage %s (format=%s operator=%q room_size=%d)", client.id, client.stageToken, client.format, client.operator, size)

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.id]; ok && cur == client {
				h.removeLocked(client.id, client)
				log.Printf("[WS] Viewer %s left stage %s", client.id, client.stageToken)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(id string, client *Client) {
	delete(h.clients, id)
	if room, exists := h.rooms[client.stageToken]; exists {
		delete(room, id)
		if len(room) == 0 {
			delete(h.rooms, client.stageToken)
		}
	}
	close(client.send)
}

// BroadcastFrame sends f to every viewer of its stage, encoding once per format.
func (h *Hub) BroadcastFrame(f game.Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, exists := h.rooms[f.Token]
	if !exists {
		return
	}

	encoded := make(map[game.FrameFormat][]byte, 2)
	for _, client := range room {
		data, ok := encoded[client.format]
		if !ok {
			var err error
			data, err = f.Encode(client.format)
			if err != nil {
				log.Printf("[WS] Failed to encode frame for stage %s: %v", f.Token, err)
				continue
			}
			encoded[client.format] = data
		}
		select {
		case client.send <- data:
		default:
			// slow viewer; it gets the next frame instead
		}
	}
}

// PublishFrame lets the hub act as a game.FrameSink.
func (h *Hub) PublishFrame(ctx context.Context, f game.Frame) {
	h.BroadcastFrame(f)
}

// CloseRoom disconnects every viewer of a stage.
func (h *Hub) CloseRoom(stageToken string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.rooms[stageToken] {
		h.removeLocked(id, client)
	}
}

// RoomSize returns the number of viewers attached to a stage
func (h *Hub) RoomSize(stageToken string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[stageToken])
}

// ClientCount returns the number of connected viewers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WSMessage is an operator command, e.g. {"type":"set_pairwise","enabled":true}
type WSMessage struct {
	Type    string `json:"type" msgpack:"type"`
	Enabled bool   `json:"enabled,omitempty" msgpack:"enabled,omitempty"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub dropped us; best-effort close frame.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(c.messageType(), message); err != nil {
				log.Printf("[WS] Write error for viewer %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for viewer %s: %v", c.id, err)
				return
			}
		}
	}
}

// sendError queues an error message in the client's format
func (c *Client) sendError(message string) {
	payload := map[string]interface{}{
		"type":    "error",
		"message": message,
	}
	var data []byte
	var err error
	if c.format == game.FormatMsgpack {
		data, err = msgpack.Marshal(payload)
	} else {
		data, err = json.Marshal(payload)
	}
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if cur, ok := c.hub.clients[c.id]; ok && cur == c {
		select {
		case c.send <- data:
		default:
		}
	}
}
