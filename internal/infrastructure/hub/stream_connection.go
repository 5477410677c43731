package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-notify-hub/internal/infrastructure/logger"
)

// StreamConnection is the unidirectional long-lived HTTP transport. Messages
// are queued on an outbound channel that the serving loop drains; the
// connection itself never reads from the client.
type StreamConnection struct {
	id     string
	userID string

	outbound chan *Message

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.Mutex

	onClose func()

	logger logger.Logger
}

// NewStreamConnection creates a stream connection scoped to the given request
// context. Cancelling that context (client disconnect) cancels the connection.
func NewStreamConnection(ctx context.Context, id, userID string, log logger.Logger) *StreamConnection {
	cctx, cancel := context.WithCancel(ctx)

	return &StreamConnection{
		id:       id,
		userID:   userID,
		outbound: make(chan *Message, 64),
		ctx:      cctx,
		cancel:   cancel,
		logger:   log.WithField("connection_id", id),
	}
}

func (c *StreamConnection) ID() string           { return c.id }
func (c *StreamConnection) UserID() string       { return c.userID }
func (c *StreamConnection) Transport() Transport { return TransportStream }

// Context returns the connection's context; it is cancelled on close.
func (c *StreamConnection) Context() context.Context { return c.ctx }

// Outbound exposes the queue the serving loop drains.
func (c *StreamConnection) Outbound() <-chan *Message { return c.outbound }

// OnClose sets a hook invoked exactly once, synchronously, when the
// connection closes.
func (c *StreamConnection) OnClose(fn func()) { c.onClose = fn }

// Send queues a message on the outbound channel.
func (c *StreamConnection) Send(ctx context.Context, message *Message) error {
	if c.IsClosed() {
		return fmt.Errorf("stream connection %s is closed", c.id)
	}

	select {
	case c.outbound <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return fmt.Errorf("stream connection %s is closed", c.id)
	case <-time.After(5 * time.Second):
		return fmt.Errorf("send timeout on stream connection %s", c.id)
	}
}

// Close cancels the connection and fires the close hook. Idempotent.
func (c *StreamConnection) Close() error {
	c.closedMu.Lock()
	if c.closed {
		c.closedMu.Unlock()
		return nil
	}
	c.closed = true
	c.closedMu.Unlock()

	c.cancel()

	if c.onClose != nil {
		c.onClose()
	}

	c.logger.Info("stream connection closed")
	return nil
}

func (c *StreamConnection) IsClosed() bool {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()
	return c.closed
}
