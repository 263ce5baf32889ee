package hub

import (
	"sync"

	"github.com/meetsync/backend/internal/model"
)

// Conn is one attached client's duplex channel to a session. Implementations
// must make Send non-blocking: a send that cannot be accepted immediately
// (closed transport, full buffer) returns an error instead of stalling the
// caller.
type Conn interface {
	// Identity returns the verified identity resolved at admission.
	Identity() model.Identity

	// Send queues a frame for delivery. It must not block.
	Send(data []byte) error

	// Close tears down the underlying transport. Idempotent.
	Close()
}

// Registry maps a session id to the set of currently attached connections and
// each connection back to its session for O(1) teardown. It has no knowledge
// of session semantics: a session may be live with zero attached connections.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[Conn]struct{}
	conns    map[Conn]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]map[Conn]struct{}),
		conns:    make(map[Conn]string),
	}
}

// Attach inserts the connection under the given session. A connection may be
// registered under at most one session at a time; attaching an already
// registered connection fails with model.ErrAlreadyAttached.
func (r *Registry) Attach(sessionID string, conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn]; ok {
		return model.ErrAlreadyAttached
	}

	set, ok := r.sessions[sessionID]
	if !ok {
		set = make(map[Conn]struct{})
		r.sessions[sessionID] = set
	}
	set[conn] = struct{}{}
	r.conns[conn] = sessionID
	return nil
}

// Detach removes the connection from whichever session it is registered
// under. Detaching an unregistered connection is a no-op.
func (r *Registry) Detach(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessionID, ok := r.conns[conn]
	if !ok {
		return
	}
	delete(r.conns, conn)

	if set, ok := r.sessions[sessionID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(r.sessions, sessionID)
		}
	}
}

// Connections returns the connections currently attached to the session.
// Unknown sessions yield an empty slice, not an error.
func (r *Registry) Connections(sessionID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.sessions[sessionID]
	if len(set) == 0 {
		return nil
	}
	conns := make([]Conn, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	return conns
}

// Count returns the number of connections attached to the session.
func (r *Registry) Count(sessionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[sessionID])
}

// SessionOf returns the session the connection is registered under.
func (r *Registry) SessionOf(conn Conn) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.conns[conn]
	return id, ok
}
