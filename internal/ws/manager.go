package ws

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrConnectionNotFound means no live socket is registered under the
// requested connection id.
var ErrConnectionNotFound = errors.New("ws: connection not registered")

// Pushable is the connection surface the manager needs.
type Pushable interface {
	ConnectionID() string
	Enqueue(msg []byte) error
	Ping() error
}

// Manager tracks live client connections by socket connection id.
type Manager struct {
	mu           sync.RWMutex
	connections  map[string]Pushable
	pingInterval time.Duration
}

// NewManager builds the connection registry.
func NewManager(pingInterval time.Duration) *Manager {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Manager{
		connections:  make(map[string]Pushable),
		pingInterval: pingInterval,
	}
}

// Add registers a connection, replacing any previous one under the same id.
func (m *Manager) Add(conn Pushable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn.ConnectionID()] = conn
}

// Remove drops a connection from the registry.
func (m *Manager) Remove(connectionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, connectionID)
}

// Push enqueues a message for the connection with the given id.
func (m *Manager) Push(connectionID string, msg []byte) error {
	m.mu.RLock()
	conn, ok := m.connections[connectionID]
	m.mu.RUnlock()
	if !ok {
		return ErrConnectionNotFound
	}
	return conn.Enqueue(msg)
}

// Start begins the ping loop that keeps idle connections alive.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.RLock()
			for _, conn := range m.connections {
				_ = conn.Ping()
			}
			m.mu.RUnlock()
		}
	}
}
