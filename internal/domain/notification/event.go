package notification

import (
	"fmt"
	"time"
)

// Kind identifies a notification event on the bus.
type Kind string

const (
	KindPostLike     Kind = "POST_LIKE"
	KindPostComment  Kind = "POST_COMMENT"
	KindCommentLike  Kind = "COMMENT_LIKE"
	KindCommentReply Kind = "COMMENT_REPLY"
	KindFollow       Kind = "FOLLOW"
	KindSystem       Kind = "SYSTEM"

	// Control kinds carry client-issued read-state changes, not domain actions.
	KindMarkRead    Kind = "MARK_READ"
	KindMarkAllRead Kind = "MARK_ALL_READ"
)

// Payload is the kind-specific associative data carried by an event.
type Payload map[string]any

// Event is the value published on the bus. It is constructed once and never
// mutated after publish.
type Event struct {
	Kind        Kind
	RecipientID string
	Payload     Payload
}

// DomainKinds returns the kinds produced by domain services, in a stable order.
func DomainKinds() []Kind {
	return []Kind{
		KindPostLike,
		KindPostComment,
		KindCommentLike,
		KindCommentReply,
		KindFollow,
		KindSystem,
	}
}

// ControlKinds returns the read-state control kinds.
func ControlKinds() []Kind {
	return []Kind{KindMarkRead, KindMarkAllRead}
}

// IsControl reports whether k is a read-state control kind.
func (k Kind) IsControl() bool {
	return k == KindMarkRead || k == KindMarkAllRead
}

// ParseKind validates a wire string against the known domain kinds. Control
// kinds are rejected here; they only originate from authenticated socket
// commands, never from producers.
func ParseKind(s string) (Kind, error) {
	for _, k := range DomainKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown notification kind %q", s)
}

// Record is the durable form of a notification held by the NotificationStore.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Kind      Kind      `json:"kind"`
	Payload   Payload   `json:"payload"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
