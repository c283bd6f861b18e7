// Package feed hosts live practice sessions over WebSocket. Each
// connection owns one server-side session controller; the presentation
// layer sends attempt events and receives state snapshots.
package feed

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Registry tracks active practice session connections.
type Registry struct {
	mu     sync.RWMutex
	active map[string]*websocket.Conn
}

// NewRegistry creates a new registry.
func NewRegistry() *Registry {
	return &Registry{
		active: make(map[string]*websocket.Conn),
	}
}

// Register adds a new session connection.
func (r *Registry) Register(sessionID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active[sessionID] = conn
	slog.Info("Practice session registered", "session_id", sessionID)
}

// Unregister removes a session connection.
func (r *Registry) Unregister(sessionID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, exists := r.active[sessionID]; exists && current == conn {
		delete(r.active, sessionID)
		slog.Info("Practice session unregistered", "session_id", sessionID)
	}
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

// CloseAll terminates every active session, used during shutdown.
func (r *Registry) CloseAll(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, conn := range r.active {
		_ = conn.Close(websocket.StatusNormalClosure, reason)
		slog.Info("Practice session closed", "session_id", id)
	}
	r.active = make(map[string]*websocket.Conn)
}
