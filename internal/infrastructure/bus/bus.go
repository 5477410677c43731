package bus

import (
	"context"
	"sync"

	"go-notify-hub/internal/domain/notification"
	"go-notify-hub/internal/infrastructure/logger"
)

// Handler consumes a published event. Handlers are long-lived singletons
// registered at startup; there is no unsubscribe.
type Handler func(ctx context.Context, event notification.Event)

// Bus is the in-process publish/subscribe register. Publish dispatches
// synchronously, in registration order, and isolates each handler so one
// panicking handler cannot stop the rest of the fan-out.
type Bus struct {
	mu       sync.RWMutex
	handlers map[notification.Kind][]Handler

	logger logger.Logger
}

func New(log logger.Logger) *Bus {
	return &Bus{
		handlers: make(map[notification.Kind][]Handler),
		logger:   log.WithField("component", "bus"),
	}
}

// Subscribe registers a handler for the given kind. Meant to be called during
// startup wiring only; the subscriber list is effectively static afterwards.
func (b *Bus) Subscribe(kind notification.Kind, handler Handler) {
	b.mu.Lock()
	b.handlers[kind] = append(b.handlers[kind], handler)
	b.mu.Unlock()
}

// Publish delivers the event to every handler subscribed to its kind, in the
// order they were registered. Zero subscribers is a silent no-op.
func (b *Bus) Publish(ctx context.Context, event notification.Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Kind]
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(ctx, event, handler)
	}
}

func (b *Bus) dispatch(ctx context.Context, event notification.Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("handler panicked on %s event for user %s: %v",
				event.Kind, event.RecipientID, r)
		}
	}()

	handler(ctx, event)
}
