package realtime

import (
	"sync"
)

// Conn is a live transport handle for one user. The hub is agnostic to the
// underlying transport; anything that can emit a named event qualifies.
type Conn interface {
	Emit(event string, payload interface{}) error
}

// Hub is the in-process registry of live connections, keyed by user id.
// It holds exactly one connection per user: a reconnect (or a second device)
// silently overwrites the previous handle, last writer wins. State is not
// persisted and is rebuilt from zero on process restart.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]Conn)}
}

// Register inserts or overwrites the connection for userID.
func (h *Hub) Register(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[userID] = c
}

// Deregister removes the connection for userID. Removing an absent entry is
// a no-op; sends for that user simply become persistence-only.
func (h *Hub) Deregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, userID)
}

// DeregisterConn removes the connection for userID only if it is still c.
// A handler tearing down after its client reconnected must not drop the
// replacement connection.
func (h *Hub) DeregisterConn(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == c {
		delete(h.conns, userID)
	}
}

// Connected reports whether userID currently has a live connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[userID]
	return ok
}

// Push emits an event to userID's connection if one exists. Returns false
// when the user is not connected; a transport error is returned as-is so the
// caller can decide to log it (delivery is best-effort everywhere).
func (h *Hub) Push(userID, event string, payload interface{}) (bool, error) {
	h.mu.RLock()
	c, ok := h.conns[userID]
	h.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, c.Emit(event, payload)
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
