package realtime

import "sync"

// Presence is the process-wide registry of which users currently hold a live
// connection. It is owned by the Hub rather than being a package-level global so
// the single-process assumption stays explicit and the registry stays swappable.
//
// At most one entry exists per user id; a second registration for the same user
// wins and the prior connection is presumed stale (last writer wins). Absence is
// a normal outcome, not an error.
type Presence struct {
	mu      sync.RWMutex
	byUser  map[string]*Connection
	session map[string]string // connection ID -> user ID, for removal by handle
}

// NewPresence constructs an empty registry.
func NewPresence() *Presence {
	return &Presence{
		byUser:  make(map[string]*Connection),
		session: make(map[string]string),
	}
}

// SetOnline registers conn as the live handle for its user, replacing any prior
// mapping. The replaced connection is returned so the caller can close it.
func (p *Presence) SetOnline(conn *Connection) *Connection {
	p.mu.Lock()
	defer p.mu.Unlock()

	previous := p.byUser[conn.UserID]
	if previous != nil {
		delete(p.session, previous.ID)
	}
	p.byUser[conn.UserID] = conn
	p.session[conn.ID] = conn.UserID
	return previous
}

// Handle returns the live connection for userID, if any.
func (p *Presence) Handle(userID string) (*Connection, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conn, ok := p.byUser[userID]
	return conn, ok
}

// IsOnline reports whether userID currently has a live connection.
func (p *Presence) IsOnline(userID string) bool {
	_, ok := p.Handle(userID)
	return ok
}

// Clear removes whichever mapping currently points at conn. Disconnect events
// only carry the handle, so removal is keyed by connection identity; a mapping
// already replaced by a newer connection for the same user is left alone.
func (p *Presence) Clear(conn *Connection) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.session[conn.ID]
	if !ok {
		return false
	}
	delete(p.session, conn.ID)
	if current := p.byUser[userID]; current != nil && current.ID == conn.ID {
		delete(p.byUser, userID)
	}
	return true
}

// drain empties the registry and returns every connection it held.
func (p *Presence) drain() []*Connection {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns := make([]*Connection, 0, len(p.byUser))
	for _, conn := range p.byUser {
		conns = append(conns, conn)
	}
	p.byUser = make(map[string]*Connection)
	p.session = make(map[string]string)
	return conns
}
