package chat

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pulsedesk/backend/pkg/response"
)

const (
	// pingInterval and pongWait are used for heartbeat.
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// Client is one viewer connection attached to a session. It is owned by the
// hub for its lifetime and removed on disconnect or on a failed send.
type Client struct {
	ID        string
	SessionID string
	UserID    uuid.UUID
	Role      string

	hub      *Hub
	pipeline *Pipeline
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// trySend queues data for the write pump without blocking. It reports false
// when the connection is stopping or its buffer is full.
func (c *Client) trySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// stop signals both pumps to exit. Idempotent.
func (c *Client) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// ServeWs handles the websocket upgrade for GET /ws/chat and runs the client
// loop. The boundary layer has already issued the token; traffic past this
// point is treated as authorized session traffic.
func ServeWs(hub *Hub, pipeline *Pipeline, store Store, logger *zap.Logger, jwtValidate func(token string) (userID, role string, err error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("sessionId")
		token := c.Query("token")
		if sessionID == "" || token == "" {
			response.BadRequest(c, "sessionId and token required")
			return
		}
		userIDStr, role, err := jwtValidate(token)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}
		userID, _ := uuid.Parse(userIDStr)

		if err := store.EnsureSession(c.Request.Context(), sessionID); err != nil {
			logger.Error("ensure session", zap.String("session_id", sessionID), zap.Error(err))
			response.Internal(c, "failed to open session")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			UserID:    userID,
			Role:      role,
			hub:       hub,
			pipeline:  pipeline,
			conn:      conn,
			send:      make(chan []byte, sendBuffer),
			done:      make(chan struct{}),
			logger:    logger,
		}
		hub.Attach(sessionID, client)
		go client.writePump()
		client.readPump()
	}
}

// readPump feeds inbound items into the pipeline. Items from this connection
// are handled in read order; the pipeline additionally serializes across all
// connections of the same session.
func (c *Client) readPump() {
	defer func() {
		c.hub.Detach(c.SessionID, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := c.pipeline.Handle(context.Background(), c.SessionID, raw); err != nil {
			c.logger.Error("handle inbound item",
				zap.String("session_id", c.SessionID),
				zap.String("client_id", c.ID),
				zap.Error(err))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
