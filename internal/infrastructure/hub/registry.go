package hub

import (
	"fmt"
	"sync"

	"go-notify-hub/internal/infrastructure/logger"
)

// Default per-user connection caps, enforced independently per transport.
const (
	DefaultMaxSocketConnections = 7
	DefaultMaxStreamConnections = 10
)

// MaxConnectionsError is returned by Register when the user already holds the
// maximum number of connections for the attempted transport.
type MaxConnectionsError struct {
	UserID    string
	Transport Transport
	Limit     int
}

func (e *MaxConnectionsError) Error() string {
	return fmt.Sprintf("user %s reached the %s connection limit (%d)",
		e.UserID, e.Transport, e.Limit)
}

// entry holds one user's open connections in registration order.
type entry struct {
	connections []Connection
	socketCount int
	streamCount int
}

// Registry tracks every open connection grouped by owning user. All access is
// serialized behind one mutex; per-user operations are linearized.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry

	maxSocket int
	maxStream int

	logger logger.Logger
}

// NewRegistry creates a Registry with the given per-transport caps. Caps of
// zero or below fall back to the defaults.
func NewRegistry(maxSocket, maxStream int, log logger.Logger) *Registry {
	if maxSocket <= 0 {
		maxSocket = DefaultMaxSocketConnections
	}
	if maxStream <= 0 {
		maxStream = DefaultMaxStreamConnections
	}
	return &Registry{
		entries:   make(map[string]*entry),
		maxSocket: maxSocket,
		maxStream: maxStream,
		logger:    log.WithField("component", "registry"),
	}
}

// Register admits conn under its user, or returns MaxConnectionsError when the
// user is at the cap for conn's transport. The cap check and the insert are
// one atomic step.
func (r *Registry) Register(conn Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID := conn.UserID()
	e, ok := r.entries[userID]
	if !ok {
		e = &entry{}
		r.entries[userID] = e
	}

	switch conn.Transport() {
	case TransportSocket:
		if e.socketCount >= r.maxSocket {
			r.evictIfEmptyLocked(userID, e)
			return &MaxConnectionsError{UserID: userID, Transport: TransportSocket, Limit: r.maxSocket}
		}
		e.socketCount++
	case TransportStream:
		if e.streamCount >= r.maxStream {
			r.evictIfEmptyLocked(userID, e)
			return &MaxConnectionsError{UserID: userID, Transport: TransportStream, Limit: r.maxStream}
		}
		e.streamCount++
	default:
		r.evictIfEmptyLocked(userID, e)
		return fmt.Errorf("unknown transport %q", conn.Transport())
	}

	e.connections = append(e.connections, conn)
	r.logger.Infof("connection %s registered for user %s (%s)", conn.ID(), userID, conn.Transport())
	return nil
}

// Unregister removes the connection if present. Removing an absent connection
// is a no-op. When the user's last connection goes, the entry goes with it.
func (r *Registry) Unregister(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userID]
	if !ok {
		return
	}

	for i, conn := range e.connections {
		if conn.ID() != connID {
			continue
		}
		e.connections = append(e.connections[:i], e.connections[i+1:]...)
		switch conn.Transport() {
		case TransportSocket:
			e.socketCount--
		case TransportStream:
			e.streamCount--
		}
		r.logger.Infof("connection %s unregistered for user %s", connID, userID)
		break
	}

	r.evictIfEmptyLocked(userID, e)
}

// ListFor returns a snapshot of the user's open connections in registration
// order. The returned slice is the caller's to keep.
func (r *Registry) ListFor(userID string) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[userID]
	if !ok {
		return nil
	}

	snapshot := make([]Connection, len(e.connections))
	copy(snapshot, e.connections)
	return snapshot
}

// UserCount returns the number of users with at least one open connection.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ConnectionCount returns the total number of open connections.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, e := range r.entries {
		total += len(e.connections)
	}
	return total
}

// Shutdown closes every open connection and empties the registry. Used on
// process teardown.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	connections := make([]Connection, 0)
	for _, e := range r.entries {
		connections = append(connections, e.connections...)
	}
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, conn := range connections {
		if err := conn.Close(); err != nil {
			r.logger.Errorf("failed to close connection %s: %v", conn.ID(), err)
		}
	}

	r.logger.Infof("registry shut down, closed %d connections", len(connections))
}

// evictIfEmptyLocked deletes the user's entry once no connections remain.
// Callers must hold r.mu.
func (r *Registry) evictIfEmptyLocked(userID string, e *entry) {
	if len(e.connections) == 0 {
		delete(r.entries, userID)
	}
}
