package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	pkglog "github.com/ArinjayBhola/DocuSend-sub001/pkg/log"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/config"
)

var ErrStreamClosed = errors.New("stream closed")
var ErrSendBufferFull = errors.New("send buffer full")

// Client is a connected WebSocket subscriber. It implements
// domain.Stream: events are enqueued onto a buffered send channel
// drained by WritePump, so broadcast never blocks on a slow consumer.
type Client struct {
	ID   string
	Conn *websocket.Conn

	userID string
	name   string
	role   string

	send   chan []byte
	mu     sync.RWMutex
	closed bool

	config config.WebSocketConfig
}

// NewClient creates a client for an upgraded connection.
func NewClient(userID, name, role string, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	return &Client{
		ID:     uuid.New().String(),
		Conn:   conn,
		userID: userID,
		name:   name,
		role:   role,
		send:   make(chan []byte, cfg.SendBufferSize),
		config: cfg,
	}
}

// UserID returns the id of the authenticated user owning this stream,
// or the empty string for anonymous subscribers.
func (c *Client) UserID() string {
	return c.userID
}

// Name returns the display name of the stream's owner.
func (c *Client) Name() string {
	return c.name
}

// Role returns the role claim of the stream's owner.
func (c *Client) Role() string {
	return c.role
}

// Enqueue hands a serialized event to the client without blocking.
// Returns ErrSendBufferFull when the consumer cannot keep up; the event
// is dropped but the stream stays subscribed.
func (c *Client) Enqueue(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrStreamClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close signals end-of-stream. WritePump sends a close frame and tears
// down the connection. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// SendMessage marshals and enqueues a message for this client only.
func (c *Client) SendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return c.Enqueue(data)
}

// ReadPump pumps inbound messages from the WebSocket connection to the
// handler. onClose runs exactly once when the connection goes away,
// whether the client left cleanly or vanished.
func (c *Client) ReadPump(handler func(*Client, []byte), onClose func(*Client)) {
	defer func() {
		if onClose != nil {
			onClose(c)
		}
		c.Close()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				pkglog.L().Debug().Err(err).Str("client_id", c.ID).Msg("websocket read error")
			}
			break
		}

		if handler != nil {
			handler(c, message)
		}
	}
}

// WritePump pumps enqueued events to the WebSocket connection and keeps
// it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
