package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"go-notify-hub/internal/domain/notification"
	"go-notify-hub/internal/domain/port"
	"go-notify-hub/internal/infrastructure/bus"
	"go-notify-hub/internal/infrastructure/hub"
	"go-notify-hub/internal/infrastructure/logger"
	"go-notify-hub/internal/interfaces/auth"
)

// Inbound command actions.
const (
	ActionMarkRead    = "MARK_AS_READ"
	ActionMarkAllRead = "MARK_ALL_AS_READ"
)

type command struct {
	Action         string `json:"action"`
	NotificationID string `json:"notificationId"`
}

// Handler is the Socket Gateway: it authenticates WebSocket connects, admits
// connections against the registry, and relays read-state commands onto the
// bus.
type Handler struct {
	registry *hub.Registry
	bus      *bus.Bus
	verifier port.IdentityVerifier
	logger   logger.Logger
	upgrader websocket.Upgrader
}

func NewHandler(registry *hub.Registry, b *bus.Bus, verifier port.IdentityVerifier, log logger.Logger) *Handler {
	return &Handler{
		registry: registry,
		bus:      b,
		verifier: verifier,
		logger:   log.WithField("handler", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict to the platform's web origins once they are
				// configurable.
				return true
			},
		},
	}
}

// Connect handles the WebSocket connect handshake. Authentication happens
// before the upgrade; a bad credential never touches the registry.
func (h *Handler) Connect(c *gin.Context) {
	token := auth.ExtractToken(c.Request)
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	userID, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		h.logger.Warnf("rejected socket connect: %v", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("failed to upgrade connection: %v", err)
		return
	}

	conn := hub.NewSocketConnection(uuid.NewString(), userID, ws, h.logger)
	conn.OnMessage(func(data []byte) {
		h.handleCommand(conn, data)
	})
	conn.OnClose(func() {
		h.registry.Unregister(userID, conn.ID())
	})

	if err := h.registry.Register(conn); err != nil {
		var maxErr *hub.MaxConnectionsError
		if errors.As(err, &maxErr) {
			// Pumps are not running yet, writing directly is safe.
			ws.WriteJSON(hub.ErrorMessage(maxErr.Error()))
		}
		conn.Close()
		return
	}

	conn.Start()

	if err := conn.Send(c.Request.Context(), hub.ConnectedMessage(userID)); err != nil {
		h.logger.Errorf("failed to send connect ack to %s: %v", conn.ID(), err)
	}

	h.logger.Infof("socket connection %s open for user %s", conn.ID(), userID)

	// Hold the handler until the transport closes; unregistration already
	// happened inside the close hook by the time this returns.
	<-conn.Context().Done()
	h.logger.Infof("socket connection %s disconnected", conn.ID())
}

// handleCommand processes one inbound client frame.
func (h *Handler) handleCommand(conn *hub.SocketConnection, data []byte) {
	ctx := context.Background()

	var cmd command
	if err := json.Unmarshal(data, &cmd); err != nil {
		conn.Send(ctx, hub.ErrorMessage("invalid command format"))
		return
	}

	if conn.UserID() == "" {
		conn.Send(ctx, hub.ErrorMessage("connection is not authenticated"))
		return
	}

	switch cmd.Action {
	case ActionMarkRead:
		if cmd.NotificationID == "" {
			conn.Send(ctx, hub.ErrorMessage("notificationId is required"))
			return
		}
		h.bus.Publish(ctx, notification.Event{
			Kind:        notification.KindMarkRead,
			RecipientID: conn.UserID(),
			Payload:     notification.Payload{"notificationId": cmd.NotificationID},
		})

	case ActionMarkAllRead:
		h.bus.Publish(ctx, notification.Event{
			Kind:        notification.KindMarkAllRead,
			RecipientID: conn.UserID(),
		})

	default:
		conn.Send(ctx, hub.ErrorMessage("unknown action"))
	}
}
