package hub

import (
	"github.com/google/uuid"

	"go-notify-hub/internal/domain/notification"
)

// Outbound message types seen by clients.
const (
	TypeConnected = "connected"
	TypeError     = "error"
	TypeRead      = "notificationRead"
	TypeAllRead   = "allNotificationsRead"
	TypeKeepAlive = "keepalive"

	notifyPrefix = "notify."
)

// NotifyMessage builds the live-delivery message for a domain event. The type
// is the event kind under a "notify." prefix, e.g. "notify.FOLLOW".
func NotifyMessage(kind notification.Kind, payload notification.Payload) *Message {
	return &Message{
		ID:   uuid.NewString(),
		Type: notifyPrefix + string(kind),
		Data: payload,
	}
}

// ConnectedMessage acknowledges a successful connect for userID.
func ConnectedMessage(userID string) *Message {
	return &Message{
		ID:   uuid.NewString(),
		Type: TypeConnected,
		Data: map[string]any{"userId": userID, "message": "connected"},
	}
}

// ErrorMessage reports a client-visible failure on a single connection.
func ErrorMessage(msg string) *Message {
	return &Message{
		ID:   uuid.NewString(),
		Type: TypeError,
		Data: map[string]any{"message": msg},
	}
}

// ReadMessage acknowledges a single notification marked as read.
func ReadMessage(notificationID string) *Message {
	return &Message{
		ID:   uuid.NewString(),
		Type: TypeRead,
		Data: map[string]any{"notificationId": notificationID},
	}
}

// AllReadMessage acknowledges a mark-all-read.
func AllReadMessage() *Message {
	return &Message{
		ID:   uuid.NewString(),
		Type: TypeAllRead,
		Data: map[string]any{},
	}
}

// KeepAliveMessage is the periodic heartbeat item for stream connections. It
// carries no semantic payload; it only defeats idle-timeout proxies.
func KeepAliveMessage() *Message {
	return &Message{
		ID:   uuid.NewString(),
		Type: TypeKeepAlive,
		Data: map[string]any{"message": "connection alive"},
	}
}
