package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/playmatatu/ballsim/internal/game"
)

// TokenVerifier resolves an operator bearer token to the operator's name.
type TokenVerifier func(token string) (string, error)

func newClientID() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "v_" + hex.EncodeToString(b), nil
}

// HandleWebSocket streams a stage's frames to a viewer. A stage hosted by
// another instance can be watched when its frame is in the Redis cache; its
// frames then arrive through StartFrameSubscriber and operator commands fail.
// Query: format=json|msgpack, auth=<operator token> (optional).
func HandleWebSocket(m *game.Manager, hub *Hub, verify TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		current, err := m.CurrentFrame(c.Request.Context(), token)
		if errors.Is(err, game.ErrStageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stage not found"})
			return
		}
		if err != nil {
			log.Printf("[WS] Failed to load frame for stage %s: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stage"})
			return
		}

		format, err := game.ParseFrameFormat(c.Query("format"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var operator string
		if auth := c.Query("auth"); auth != "" {
			if verify == nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "operator auth unavailable"})
				return
			}
			operator, err = verify(auth)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid operator token"})
				return
			}
		}

		first, err := current.Encode(format)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode frame"})
			return
		}

		id, err := newClientID()
		if err != nil {
			log.Printf("[WS] Failed to allocate viewer id: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to allocate viewer"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:        hub,
			conn:       conn,
			id:         id,
			stageToken: token,
			format:     format,
			operator:   operator,
			send:       make(chan []byte, 64),
		}
		client.send <- first

		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump(m)
	}
}

// readPump handles viewer commands. Anonymous viewers are read only.
func (c *Client) readPump(m *game.Manager) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		kind, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for viewer %s: %v", c.id, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		if c.operator == "" {
			continue
		}

		var msg WSMessage
		if kind == websocket.BinaryMessage {
			err = msgpack.Unmarshal(message, &msg)
		} else {
			err = json.Unmarshal(message, &msg)
		}
		if err != nil {
			c.sendError("malformed message")
			continue
		}

		c.handleMessage(m, msg)
	}
}

func (c *Client) handleMessage(m *game.Manager, msg WSMessage) {
	stage, err := m.GetStage(c.stageToken)
	if err != nil {
		c.sendError("stage is not hosted on this server")
		return
	}

	switch msg.Type {
	case "randomize":
		stage.Randomize()
		log.Printf("[WS] Operator %s randomized stage %s", c.operator, c.stageToken)

	case "set_pairwise":
		stage.SetPairwise(msg.Enabled)
		log.Printf("[WS] Operator %s set pairwise=%v on stage %s", c.operator, msg.Enabled, c.stageToken)

	default:
		c.sendError("unknown message type: " + msg.Type)
		return
	}

	c.hub.BroadcastFrame(stage.Frame())
}
