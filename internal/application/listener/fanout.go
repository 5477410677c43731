package listener

import (
	"context"

	"go-notify-hub/internal/domain/notification"
	"go-notify-hub/internal/infrastructure/hub"
	"go-notify-hub/internal/infrastructure/logger"
)

// Fanout pushes every published event to all of the recipient's open
// connections. A recipient with no connections is a silent no-op; a failed
// send on one connection does not stop delivery to the rest.
type Fanout struct {
	registry *hub.Registry
	logger   logger.Logger
}

func NewFanout(registry *hub.Registry, log logger.Logger) *Fanout {
	return &Fanout{
		registry: registry,
		logger:   log.WithField("listener", "fanout"),
	}
}

// HandleEvent delivers one message per open connection of the recipient.
func (f *Fanout) HandleEvent(ctx context.Context, event notification.Event) {
	connections := f.registry.ListFor(event.RecipientID)
	if len(connections) == 0 {
		return
	}

	message := messageFor(event)
	for _, conn := range connections {
		if err := conn.Send(ctx, message); err != nil {
			f.logger.Errorf("failed to deliver %s to connection %s: %v",
				message.Type, conn.ID(), err)
		}
	}

	f.logger.Debugf("delivered %s to %d connections of user %s",
		message.Type, len(connections), event.RecipientID)
}

func messageFor(event notification.Event) *hub.Message {
	switch event.Kind {
	case notification.KindMarkRead:
		notificationID, _ := event.Payload["notificationId"].(string)
		return hub.ReadMessage(notificationID)
	case notification.KindMarkAllRead:
		return hub.AllReadMessage()
	default:
		return hub.NotifyMessage(event.Kind, event.Payload)
	}
}
