package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/aimguide/internal/admin"
	"github.com/playmatatu/aimguide/internal/overlay"
	"github.com/playmatatu/aimguide/internal/profiles"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 * 1024
	saveTimeout    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin is checked by middleware.WebSocketCORSCheck
	},
}

// Client is one live editing session. It keeps a working copy of the
// profile's settings that is only persisted on "save".
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	id      string
	profile string
	canSave bool
	send    chan []byte

	mu       sync.Mutex
	settings overlay.Settings
	deleted  bool // profile was deleted while this session was open
	closed   bool
}

func (c *Client) getSettings() overlay.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// replaceSettings swaps in settings pushed by another session or instance.
func (c *Client) replaceSettings(s overlay.Settings) {
	c.mu.Lock()
	c.settings = s
	c.deleted = false
	c.mu.Unlock()
}

func (c *Client) markDeleted() {
	c.mu.Lock()
	c.deleted = true
	c.mu.Unlock()
}

// edit applies msg to the working copy while holding the session lock, so a
// concurrent replaceSettings is never overwritten by a stale copy.
func (c *Client) edit(msg WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := ApplyEdit(c.settings, msg)
	if err != nil {
		return err
	}
	c.settings = next
	return nil
}

// trySend queues a message without blocking. Messages to a full or closed
// session are dropped, as are nil payloads from a failed encode.
func (c *Client) trySend(payload []byte) {
	if payload == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		log.Printf("[WS] send buffer full for session %s on profile %s, dropping message", c.id, c.profile)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.trySend(encode(MsgError, map[string]string{"message": message}))
}

func (c *Client) sendPrediction() {
	payload := encode(MsgPrediction, NewPredictionData(c.profile, c.getSettings()))
	if payload == nil {
		c.sendError("prediction could not be encoded")
		return
	}
	c.trySend(payload)
}

// HandleProfileWebSocket upgrades GET /profiles/:name/ws into a live editing
// session. A valid admin token in the "token" query parameter allows saving.
func HandleProfileWebSocket(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if !profiles.ValidName(name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile name"})
			return
		}

		settings, err := h.repo.Get(c.Request.Context(), name)
		if errors.Is(err, profiles.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		if err != nil {
			log.Printf("[WS] failed to load profile %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		canSave := false
		if token := c.Query("token"); token != "" {
			if _, err := admin.ParseToken(h.cfg.JWTSecret, token); err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			canSave = true
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:      h,
			conn:     conn,
			id:       generateID(),
			profile:  name,
			canSave:  canSave,
			send:     make(chan []byte, 64),
			settings: settings,
		}

		if !h.join(client) {
			conn.Close()
			return
		}

		client.sendPrediction()

		go client.writePump()
		go client.readPump()
	}
}

// readPump reads editing messages until the connection closes.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] read error for session %s: %v", c.id, err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("invalid message format")
			continue
		}

		switch msg.Type {
		case MsgPing:
			c.trySend(encode(MsgPong, nil))

		case MsgSave:
			c.save()

		default:
			if err := c.edit(msg); err != nil {
				c.sendError(err.Error())
				continue
			}
			c.sendPrediction()
		}
	}
}

func (c *Client) save() {
	if !c.canSave {
		c.sendError("not authorized to save")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	c.mu.Lock()
	s, deleted := c.settings, c.deleted
	c.mu.Unlock()
	if deleted {
		c.sendError("profile was deleted")
		return
	}

	if err := c.hub.repo.Save(ctx, c.profile, s); err != nil {
		log.Printf("[WS] save failed for profile %s: %v", c.profile, err)
		c.sendError("failed to save profile")
		return
	}

	c.trySend(encode(MsgSaved, map[string]string{"profile": c.profile}))
	c.hub.NotifyUpdated(ctx, c.profile, s, c)
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
				// Best-effort close frame; the connection may already be gone.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for session %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for session %s: %v", c.id, err)
				return
			}
		}
	}
}

// generateID returns a short random hex identifier.
func generateID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "session"
	}
	return hex.EncodeToString(b)
}

func generateInstanceID() string {
	return "inst-" + generateID()
}
