package listener

import (
	"context"
	"time"

	"github.com/google/uuid"

	"go-notify-hub/internal/domain/notification"
	"go-notify-hub/internal/domain/port"
	"go-notify-hub/internal/infrastructure/logger"
)

// Persistence turns domain events into durable notification records. It is
// deliberately decoupled from live delivery: a failed write is logged and
// dropped, never retried, and never blocks the fan-out subscriber.
type Persistence struct {
	store  port.NotificationStore
	logger logger.Logger
}

func NewPersistence(store port.NotificationStore, log logger.Logger) *Persistence {
	return &Persistence{
		store:  store,
		logger: log.WithField("listener", "persistence"),
	}
}

// HandleEvent records one domain event. Control kinds are ignored here; the
// read-state listener owns them.
func (p *Persistence) HandleEvent(ctx context.Context, event notification.Event) {
	if event.Kind.IsControl() {
		return
	}

	record := &notification.Record{
		ID:        uuid.NewString(),
		UserID:    event.RecipientID,
		Kind:      event.Kind,
		Payload:   event.Payload,
		CreatedAt: time.Now().UTC(),
	}

	if err := p.store.Create(ctx, record); err != nil {
		p.logger.Errorf("failed to persist %s notification for user %s: %v",
			event.Kind, event.RecipientID, err)
	}
}
