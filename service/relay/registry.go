package relay

import (
	"sync"
)

// Registry tracks open connections and which user each belongs to.
// The byUser index is the user's implicit personal delivery channel:
// message fan-out is a ListByUser call, no explicit room join needed.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*Client // user -> conn_id -> client
	byConn map[string]*Client            // conn_id -> client
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]*Client),
		byConn: make(map[string]*Client),
	}
}

// Track records a connection before it has registered an identity.
func (r *Registry) Track(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byConn[c.ConnID] = c
}

// Bind attaches a tracked connection to a user. Idempotent per
// connection; re-binding to the same user is a no-op, re-binding to a
// different user moves the connection. Returns true when this is the
// user's first connection (offline -> online transition).
func (r *Registry) Bind(connID, userID string) (first bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, found := r.byConn[connID]
	if !found {
		return false, false
	}
	cur := c.User()
	if cur == userID {
		return false, true
	}
	if cur != "" {
		r.detachLocked(c, cur)
	}
	c.setUser(userID)
	m := r.byUser[userID]
	if m == nil {
		m = make(map[string]*Client)
		r.byUser[userID] = m
	}
	m[connID] = c
	return len(m) == 1, true
}

// Remove drops the connection from both indexes. Returns the client
// and whether its user just went offline (last connection removed).
func (r *Registry) Remove(connID string) (c *Client, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, found := r.byConn[connID]
	if !found {
		return nil, false
	}
	delete(r.byConn, connID)
	if userID := c.User(); userID != "" {
		last = r.detachLocked(c, userID)
	}
	return c, last
}

// caller holds r.mu; reports whether the user index entry was emptied
func (r *Registry) detachLocked(c *Client, userID string) bool {
	m := r.byUser[userID]
	if m == nil {
		return false
	}
	delete(m, c.ConnID)
	if len(m) == 0 {
		delete(r.byUser, userID)
		return true
	}
	return false
}

// ListByUser returns the user's open registered connections; empty
// slice means offline.
func (r *Registry) ListByUser(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byUser[userID]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

func (r *Registry) GetByConnID(connID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byConn[connID]
}

// IsOnline derives presence from registry occupancy. There is no
// heartbeat protocol beyond the transport's own ping/pong; a dropped
// transport stays "online" until its close fires.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}
