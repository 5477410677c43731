package hub

import (
	"context"
	"testing"
	"time"
)

func TestStreamConnection_SendQueuesOnOutbound(t *testing.T) {
	conn := NewStreamConnection(context.Background(), "conn-1", "user-1", &mockLogger{})
	defer conn.Close()

	message := &Message{ID: "m-1", Type: "notify.FOLLOW"}
	if err := conn.Send(context.Background(), message); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case got := <-conn.Outbound():
		if got.ID != "m-1" {
			t.Errorf("expected message m-1, got %s", got.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("message never appeared on the outbound channel")
	}
}

func TestStreamConnection_SendAfterCloseFails(t *testing.T) {
	conn := NewStreamConnection(context.Background(), "conn-1", "user-1", &mockLogger{})
	conn.Close()

	if err := conn.Send(context.Background(), &Message{ID: "m-1"}); err == nil {
		t.Error("expected send on a closed connection to fail")
	}
}

func TestStreamConnection_CloseIsIdempotentAndFiresHookOnce(t *testing.T) {
	conn := NewStreamConnection(context.Background(), "conn-1", "user-1", &mockLogger{})

	fired := 0
	conn.OnClose(func() { fired++ })

	conn.Close()
	conn.Close()

	if fired != 1 {
		t.Errorf("expected close hook to fire exactly once, fired %d times", fired)
	}
	if !conn.IsClosed() {
		t.Error("connection should report closed")
	}

	select {
	case <-conn.Context().Done():
	default:
		t.Error("connection context should be cancelled after close")
	}
}

func TestStreamConnection_ParentContextCancellationPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	conn := NewStreamConnection(ctx, "conn-1", "user-1", &mockLogger{})
	defer conn.Close()

	cancel()

	select {
	case <-conn.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation did not reach the connection context")
	}
}
