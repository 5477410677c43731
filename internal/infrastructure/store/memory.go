package store

import (
	"context"
	"sync"

	"go-notify-hub/internal/domain/notification"
	"go-notify-hub/internal/domain/port"
)

// MemoryStore is the in-process NotificationStore used when no database is
// configured, and by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*notification.Record
}

var _ port.NotificationStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(ctx context.Context, record *notification.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *record
	s.records = append(s.records, &copied)
	return nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, userID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.UserID == userID && r.ID == notificationID {
			r.Read = true
		}
	}
	return nil
}

func (s *MemoryStore) MarkAllRead(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.UserID == userID {
			r.Read = true
		}
	}
	return nil
}

func (s *MemoryStore) ListRecent(ctx context.Context, userID string, limit int) ([]*notification.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*notification.Record, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if s.records[i].UserID == userID {
			copied := *s.records[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}
