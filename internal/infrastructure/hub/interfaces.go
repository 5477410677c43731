package hub

import "context"

// Transport is the concrete channel kind a connection rides on.
type Transport string

const (
	TransportSocket Transport = "socket"
	TransportStream Transport = "stream"
)

// Connection represents one open delivery channel, regardless of transport.
type Connection interface {
	ID() string
	UserID() string
	Transport() Transport
	Send(ctx context.Context, message *Message) error
	Close() error
	IsClosed() bool
	Context() context.Context
}

// Message is the unit written to a connection's outbound path.
type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data"`
}
