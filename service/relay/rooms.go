package relay

import (
	"sync"
)

// Rooms is the membership table for typing fan-out. Message delivery
// does not go through rooms (the registry's user index covers it).
type Rooms struct {
	mu     sync.RWMutex
	byRoom map[RoomKey]map[string]*Client
	byConn map[string]map[RoomKey]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		byRoom: make(map[RoomKey]map[string]*Client),
		byConn: make(map[string]map[RoomKey]struct{}),
	}
}

// Join is idempotent.
func (r *Rooms) Join(c *Client, key RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.byRoom[key]
	if m == nil {
		m = make(map[string]*Client)
		r.byRoom[key] = m
	}
	m[c.ConnID] = c

	ks := r.byConn[c.ConnID]
	if ks == nil {
		ks = make(map[RoomKey]struct{})
		r.byConn[c.ConnID] = ks
	}
	ks[key] = struct{}{}
}

func (r *Rooms) Leave(connID string, key RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(connID, key)
}

// LeaveAll runs from the disconnect path so no room keeps a dead
// connection.
func (r *Rooms) LeaveAll(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.byConn[connID] {
		r.leaveLocked(connID, key)
	}
}

// caller holds r.mu
func (r *Rooms) leaveLocked(connID string, key RoomKey) {
	if m := r.byRoom[key]; m != nil {
		delete(m, connID)
		if len(m) == 0 {
			delete(r.byRoom, key) // no dangling empty sets
		}
	}
	if ks := r.byConn[connID]; ks != nil {
		delete(ks, key)
		if len(ks) == 0 {
			delete(r.byConn, connID)
		}
	}
}

// MembersOf lists the room's connections, excluding excludeConnID
// (the typing sender never receives its own echo).
func (r *Rooms) MembersOf(key RoomKey, excludeConnID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byRoom[key]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for id, c := range m {
		if id == excludeConnID {
			continue
		}
		out = append(out, c)
	}
	return out
}
