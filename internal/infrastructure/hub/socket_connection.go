package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-notify-hub/internal/infrastructure/logger"
)

// SocketConnection is the bidirectional WebSocket transport.
type SocketConnection struct {
	id     string
	userID string
	conn   *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.Mutex

	logger logger.Logger

	send chan *Message

	onMessage func(data []byte)
	onClose   func()

	writeTimeout time.Duration
	pongTimeout  time.Duration
}

// NewSocketConnection wraps an upgraded WebSocket. The read and write pumps do
// not run until Start is called, so callers can attach hooks and register the
// connection first.
func NewSocketConnection(id, userID string, conn *websocket.Conn, log logger.Logger) *SocketConnection {
	ctx, cancel := context.WithCancel(context.Background())

	return &SocketConnection{
		id:           id,
		userID:       userID,
		conn:         conn,
		ctx:          ctx,
		cancel:       cancel,
		logger:       log.WithField("connection_id", id),
		send:         make(chan *Message, 256),
		writeTimeout: 10 * time.Second,
		pongTimeout:  60 * time.Second,
	}
}

func (c *SocketConnection) ID() string           { return c.id }
func (c *SocketConnection) UserID() string       { return c.userID }
func (c *SocketConnection) Transport() Transport { return TransportSocket }

// Context returns the connection's context; it is cancelled on close.
func (c *SocketConnection) Context() context.Context { return c.ctx }

// OnMessage sets the inbound text-frame hook. Must be called before Start.
func (c *SocketConnection) OnMessage(fn func(data []byte)) { c.onMessage = fn }

// OnClose sets a hook invoked exactly once, synchronously, when the
// connection closes. Must be called before Start.
func (c *SocketConnection) OnClose(fn func()) { c.onClose = fn }

// Start launches the read and write pumps.
func (c *SocketConnection) Start() {
	c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
		return nil
	})

	go c.writePump()
	go c.readPump()
}

// Send queues a message for delivery to this connection.
func (c *SocketConnection) Send(ctx context.Context, message *Message) error {
	if c.IsClosed() {
		return fmt.Errorf("socket connection %s is closed", c.id)
	}

	select {
	case c.send <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return fmt.Errorf("socket connection %s is closed", c.id)
	case <-time.After(5 * time.Second):
		return fmt.Errorf("send timeout on socket connection %s", c.id)
	}
}

// Close shuts the transport down and fires the close hook. Idempotent.
func (c *SocketConnection) Close() error {
	c.closedMu.Lock()
	if c.closed {
		c.closedMu.Unlock()
		return nil
	}
	c.closed = true
	c.closedMu.Unlock()

	c.cancel()

	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	c.conn.Close()

	if c.onClose != nil {
		c.onClose()
	}

	c.logger.Info("socket connection closed")
	return nil
}

func (c *SocketConnection) IsClosed() bool {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()
	return c.closed
}

// writePump serializes all writes to the WebSocket and keeps the connection
// alive with pings spaced under the pong timeout.
func (c *SocketConnection) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Errorf("failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Errorf("failed to send ping: %v", err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// readPump consumes client frames and hands text frames to the inbound hook.
func (c *SocketConnection) readPump() {
	defer c.Close()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				c.logger.Errorf("websocket error: %v", err)
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			if c.onMessage != nil {
				c.onMessage(data)
			}
		case websocket.CloseMessage:
			return
		}
	}
}
