package listener

import (
	"context"

	"go-notify-hub/internal/domain/notification"
	"go-notify-hub/internal/domain/port"
	"go-notify-hub/internal/infrastructure/logger"
)

// ReadState applies client-issued read-state changes to the store. Like the
// persistence listener, it is decoupled from the broadcast acknowledgment.
type ReadState struct {
	store  port.NotificationStore
	logger logger.Logger
}

func NewReadState(store port.NotificationStore, log logger.Logger) *ReadState {
	return &ReadState{
		store:  store,
		logger: log.WithField("listener", "readstate"),
	}
}

// HandleEvent consumes MARK_READ and MARK_ALL_READ control events.
func (r *ReadState) HandleEvent(ctx context.Context, event notification.Event) {
	switch event.Kind {
	case notification.KindMarkRead:
		notificationID, _ := event.Payload["notificationId"].(string)
		if notificationID == "" {
			r.logger.Warnf("mark-read event for user %s without notificationId", event.RecipientID)
			return
		}
		if err := r.store.MarkRead(ctx, event.RecipientID, notificationID); err != nil {
			r.logger.Errorf("failed to mark notification %s read for user %s: %v",
				notificationID, event.RecipientID, err)
		}

	case notification.KindMarkAllRead:
		if err := r.store.MarkAllRead(ctx, event.RecipientID); err != nil {
			r.logger.Errorf("failed to mark all notifications read for user %s: %v",
				event.RecipientID, err)
		}
	}
}
