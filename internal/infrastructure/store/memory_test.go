package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-notify-hub/internal/domain/notification"
)

func record(id, userID string) *notification.Record {
	return &notification.Record{
		ID:        id,
		UserID:    userID,
		Kind:      notification.KindFollow,
		Payload:   notification.Payload{"viewerId": "v-1"},
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryStore_CreateAndListRecent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Create(ctx, record(fmt.Sprintf("n-%d", i), "user-1")))
	}
	require.NoError(t, s.Create(ctx, record("other", "user-2")))

	records, err := s.ListRecent(ctx, "user-1", 3)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Most recent first.
	assert.Equal(t, "n-4", records[0].ID)
	assert.Equal(t, "n-3", records[1].ID)
	assert.Equal(t, "n-2", records[2].ID)
}

func TestMemoryStore_MarkRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, record("n-1", "user-1")))
	require.NoError(t, s.Create(ctx, record("n-2", "user-1")))

	require.NoError(t, s.MarkRead(ctx, "user-1", "n-1"))

	records, err := s.ListRecent(ctx, "user-1", 10)
	require.NoError(t, err)
	byID := map[string]bool{}
	for _, r := range records {
		byID[r.ID] = r.Read
	}
	assert.True(t, byID["n-1"])
	assert.False(t, byID["n-2"])
}

func TestMemoryStore_MarkReadScopedToUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, record("n-1", "user-1")))

	// A different user cannot flip someone else's record.
	require.NoError(t, s.MarkRead(ctx, "user-2", "n-1"))

	records, err := s.ListRecent(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Read)
}

func TestMemoryStore_MarkAllRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, record("n-1", "user-1")))
	require.NoError(t, s.Create(ctx, record("n-2", "user-1")))
	require.NoError(t, s.Create(ctx, record("n-3", "user-2")))

	require.NoError(t, s.MarkAllRead(ctx, "user-1"))

	mine, err := s.ListRecent(ctx, "user-1", 10)
	require.NoError(t, err)
	for _, r := range mine {
		assert.True(t, r.Read)
	}

	theirs, err := s.ListRecent(ctx, "user-2", 10)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.False(t, theirs[0].Read)
}

func TestMemoryStore_CreateCopiesRecord(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	r := record("n-1", "user-1")
	require.NoError(t, s.Create(ctx, r))
	r.Read = true

	records, err := s.ListRecent(ctx, "user-1", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Read, "store must not alias the caller's record")
}
