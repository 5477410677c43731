package stream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/google/uuid"

	"go-notify-hub/internal/infrastructure/hub"
	"go-notify-hub/internal/infrastructure/logger"
)

// Broadcaster owns the unidirectional stream transport: it admits stream
// connections against the registry and drives each connection's outbound
// sequence, merging bus messages with a periodic heartbeat.
type Broadcaster struct {
	registry  *hub.Registry
	heartbeat time.Duration
	logger    logger.Logger
}

func NewBroadcaster(registry *hub.Registry, heartbeat time.Duration, log logger.Logger) *Broadcaster {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &Broadcaster{
		registry:  registry,
		heartbeat: heartbeat,
		logger:    log.WithField("component", "stream"),
	}
}

// Open creates and registers a stream connection for userID. When the user is
// at the stream cap the open fails before any bytes are streamed; the caller
// surfaces that as a plain HTTP rejection. The connection unregisters itself
// synchronously on close.
func (b *Broadcaster) Open(ctx context.Context, userID string) (*hub.StreamConnection, error) {
	conn := hub.NewStreamConnection(ctx, uuid.NewString(), userID, b.logger)
	conn.OnClose(func() {
		b.registry.Unregister(userID, conn.ID())
	})

	if err := b.registry.Register(conn); err != nil {
		return nil, err
	}

	return conn, nil
}

// Serve writes the connection's merged outbound sequence to w until the
// request context or the connection is cancelled. The heartbeat ticker stops
// with the same signal; no timer outlives the connection.
func (b *Broadcaster) Serve(ctx context.Context, conn *hub.StreamConnection, w http.ResponseWriter) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		conn.Close()
		return fmt.Errorf("response writer does not support flushing")
	}

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()
	defer conn.Close()

	if err := writeEvent(w, flusher, hub.ConnectedMessage(conn.UserID())); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-conn.Context().Done():
			return nil

		case message := <-conn.Outbound():
			if err := writeEvent(w, flusher, message); err != nil {
				b.logger.Errorf("failed to write to stream connection %s: %v", conn.ID(), err)
				return err
			}

		case <-ticker.C:
			if err := writeEvent(w, flusher, hub.KeepAliveMessage()); err != nil {
				b.logger.Errorf("failed to write keepalive to stream connection %s: %v", conn.ID(), err)
				return err
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, message *hub.Message) error {
	err := sse.Encode(w, sse.Event{
		Id:    message.ID,
		Event: message.Type,
		Data:  message.Data,
	})
	if err != nil {
		return err
	}

	flusher.Flush()
	return nil
}
