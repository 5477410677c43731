package port

import (
	"context"

	"go-notify-hub/internal/domain/notification"
)

// NotificationStore is the durable storage collaborator. Implementations live
// in internal/infrastructure/store.
type NotificationStore interface {
	Create(ctx context.Context, record *notification.Record) error
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	ListRecent(ctx context.Context, userID string, limit int) ([]*notification.Record, error)
}
