package listener

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-notify-hub/internal/domain/notification"
	"go-notify-hub/internal/infrastructure/bus"
	"go-notify-hub/internal/infrastructure/hub"
	"go-notify-hub/internal/infrastructure/logger"
)

func testLogger() logger.Logger {
	cfg := logger.NewDefaultConfig()
	cfg.Level = logger.LevelFatal
	return logger.NewLogrusLogger(cfg)
}

func TestFanout_DeliversToEveryConnectionOfRecipient(t *testing.T) {
	registry := hub.NewRegistry(0, 0, testLogger())
	fanout := NewFanout(registry, testLogger())

	socketConn := newFakeConnection("conn-1", "user-1", hub.TransportSocket)
	streamConn := newFakeConnection("conn-2", "user-1", hub.TransportStream)
	otherUser := newFakeConnection("conn-3", "user-2", hub.TransportSocket)
	require.NoError(t, registry.Register(socketConn))
	require.NoError(t, registry.Register(streamConn))
	require.NoError(t, registry.Register(otherUser))

	payload := notification.Payload{"postId": "p-1", "viewerId": "v-1"}
	fanout.HandleEvent(context.Background(), notification.Event{
		Kind:        notification.KindFollow,
		RecipientID: "user-1",
		Payload:     payload,
	})

	require.Len(t, socketConn.messages(), 1)
	require.Len(t, streamConn.messages(), 1)
	assert.Empty(t, otherUser.messages())

	// Both connections see an identical (type, payload) pair.
	first, second := socketConn.messages()[0], streamConn.messages()[0]
	assert.Equal(t, "notify.FOLLOW", first.Type)
	assert.Equal(t, first.Type, second.Type)
	assert.Equal(t, first.Data, second.Data)
}

func TestFanout_NoConnectionsIsSilentNoOp(t *testing.T) {
	registry := hub.NewRegistry(0, 0, testLogger())
	fanout := NewFanout(registry, testLogger())

	assert.NotPanics(t, func() {
		fanout.HandleEvent(context.Background(), notification.Event{
			Kind:        notification.KindPostLike,
			RecipientID: "nobody-home",
		})
	})
}

func TestFanout_FailingConnectionDoesNotStopDelivery(t *testing.T) {
	registry := hub.NewRegistry(0, 0, testLogger())
	fanout := NewFanout(registry, testLogger())

	dead := newFakeConnection("conn-dead", "user-1", hub.TransportSocket)
	dead.sendErr = errors.New("write to dead socket")
	alive := newFakeConnection("conn-alive", "user-1", hub.TransportStream)
	require.NoError(t, registry.Register(dead))
	require.NoError(t, registry.Register(alive))

	fanout.HandleEvent(context.Background(), notification.Event{
		Kind:        notification.KindSystem,
		RecipientID: "user-1",
	})

	assert.Len(t, alive.messages(), 1)
}

func TestFanout_ControlEventsBecomeReadAcks(t *testing.T) {
	registry := hub.NewRegistry(0, 0, testLogger())
	fanout := NewFanout(registry, testLogger())

	conn := newFakeConnection("conn-1", "user-1", hub.TransportStream)
	require.NoError(t, registry.Register(conn))

	fanout.HandleEvent(context.Background(), notification.Event{
		Kind:        notification.KindMarkRead,
		RecipientID: "user-1",
		Payload:     notification.Payload{"notificationId": "n-1"},
	})
	fanout.HandleEvent(context.Background(), notification.Event{
		Kind:        notification.KindMarkAllRead,
		RecipientID: "user-1",
	})

	msgs := conn.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, hub.TypeRead, msgs[0].Type)
	assert.Equal(t, map[string]any{"notificationId": "n-1"}, msgs[0].Data)
	assert.Equal(t, hub.TypeAllRead, msgs[1].Type)
}

func TestPersistence_CreatesRecordFromEvent(t *testing.T) {
	store := &fakeStore{}
	persistence := NewPersistence(store, testLogger())

	persistence.HandleEvent(context.Background(), notification.Event{
		Kind:        notification.KindCommentReply,
		RecipientID: "user-1",
		Payload:     notification.Payload{"commentId": "c-1", "replyId": "r-1"},
	})

	require.Len(t, store.created, 1)
	record := store.created[0]
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, notification.KindCommentReply, record.Kind)
	assert.Equal(t, notification.Payload{"commentId": "c-1", "replyId": "r-1"}, record.Payload)
	assert.False(t, record.Read)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestPersistence_IgnoresControlKinds(t *testing.T) {
	store := &fakeStore{}
	persistence := NewPersistence(store, testLogger())

	persistence.HandleEvent(context.Background(), notification.Event{
		Kind:        notification.KindMarkRead,
		RecipientID: "user-1",
	})

	assert.Empty(t, store.created)
}

// A failing store write must not prevent live delivery: persistence and
// fan-out are independent subscribers to the same publish.
func TestPersistence_StoreFailureDoesNotBlockFanout(t *testing.T) {
	registry := hub.NewRegistry(0, 0, testLogger())
	store := &fakeStore{createErr: errors.New("database down")}

	eventBus := bus.New(testLogger())
	persistence := NewPersistence(store, testLogger())
	fanout := NewFanout(registry, testLogger())
	eventBus.Subscribe(notification.KindPostLike, persistence.HandleEvent)
	eventBus.Subscribe(notification.KindPostLike, fanout.HandleEvent)

	conn := newFakeConnection("conn-1", "user-1", hub.TransportSocket)
	require.NoError(t, registry.Register(conn))

	eventBus.Publish(context.Background(), notification.Event{
		Kind:        notification.KindPostLike,
		RecipientID: "user-1",
		Payload:     notification.Payload{"postId": "p-1"},
	})

	assert.Len(t, conn.messages(), 1)
}

func TestReadState_MarksSingleNotificationRead(t *testing.T) {
	store := &fakeStore{}
	readState := NewReadState(store, testLogger())

	readState.HandleEvent(context.Background(), notification.Event{
		Kind:        notification.KindMarkRead,
		RecipientID: "user-1",
		Payload:     notification.Payload{"notificationId": "n-1"},
	})

	require.Len(t, store.markedRead, 1)
	assert.Equal(t, [2]string{"user-1", "n-1"}, store.markedRead[0])
}

func TestReadState_MarkReadWithoutIDIsDropped(t *testing.T) {
	store := &fakeStore{}
	readState := NewReadState(store, testLogger())

	readState.HandleEvent(context.Background(), notification.Event{
		Kind:        notification.KindMarkRead,
		RecipientID: "user-1",
	})

	assert.Empty(t, store.markedRead)
}

func TestReadState_MarksAllRead(t *testing.T) {
	store := &fakeStore{}
	readState := NewReadState(store, testLogger())

	readState.HandleEvent(context.Background(), notification.Event{
		Kind:        notification.KindMarkAllRead,
		RecipientID: "user-1",
	})

	assert.Equal(t, []string{"user-1"}, store.markedAllRead)
}

// Mock implementations for testing

type fakeConnection struct {
	id        string
	userID    string
	transport hub.Transport
	sendErr   error

	mu       sync.Mutex
	closed   bool
	received []*hub.Message
}

func newFakeConnection(id, userID string, transport hub.Transport) *fakeConnection {
	return &fakeConnection{id: id, userID: userID, transport: transport}
}

func (f *fakeConnection) ID() string                 { return f.id }
func (f *fakeConnection) UserID() string             { return f.userID }
func (f *fakeConnection) Transport() hub.Transport   { return f.transport }
func (f *fakeConnection) Context() context.Context   { return context.Background() }
func (f *fakeConnection) IsClosed() bool             { return f.closed }
func (f *fakeConnection) Close() error               { f.closed = true; return nil }

func (f *fakeConnection) Send(ctx context.Context, message *hub.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, message)
	return nil
}

func (f *fakeConnection) messages() []*hub.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*hub.Message, len(f.received))
	copy(out, f.received)
	return out
}

type fakeStore struct {
	createErr error

	created       []*notification.Record
	markedRead    [][2]string
	markedAllRead []string
}

func (f *fakeStore) Create(ctx context.Context, record *notification.Record) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, record)
	return nil
}

func (f *fakeStore) MarkRead(ctx context.Context, userID, notificationID string) error {
	f.markedRead = append(f.markedRead, [2]string{userID, notificationID})
	return nil
}

func (f *fakeStore) MarkAllRead(ctx context.Context, userID string) error {
	f.markedAllRead = append(f.markedAllRead, userID)
	return nil
}

func (f *fakeStore) ListRecent(ctx context.Context, userID string, limit int) ([]*notification.Record, error) {
	return nil, nil
}
