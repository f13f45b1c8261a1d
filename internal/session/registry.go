package session

import (
	"sync"
	"time"
)

// Binding ties a client token to the seat it created or joined.
type Binding struct {
	RoomID   string
	PlayerID string
}

type entry struct {
	lastSeen time.Time
	binding  *Binding
}

// Eviction is a session that timed out while still holding a seat.
type Eviction struct {
	Token string
	Binding
}

// Registry tracks client liveness. Tokens are opaque and carry no
// authorization weight; they only decide when an abandoned seat is reclaimed.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*entry)}
}

// Touch records that token was seen at now. Empty tokens are ignored.
func (r *Registry) Touch(token string, now time.Time) {
	if token == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[token]
	if !ok {
		e = &entry{}
		r.sessions[token] = e
	}
	e.lastSeen = now
}

// Bind associates token with a seat, replacing any previous binding.
func (r *Registry) Bind(token, roomID, playerID string, now time.Time) {
	if token == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = &entry{
		lastSeen: now,
		binding:  &Binding{RoomID: roomID, PlayerID: playerID},
	}
}

// Unbind drops the seat held by token if it matches roomID/playerID.
func (r *Registry) Unbind(token, roomID, playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[token]
	if !ok || e.binding == nil {
		return
	}
	if e.binding.RoomID == roomID && e.binding.PlayerID == playerID {
		e.binding = nil
	}
}

// UnbindSeat drops every binding that points at the given seat, whichever
// token holds it.
func (r *Registry) UnbindSeat(roomID, playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.sessions {
		if e.binding != nil && e.binding.RoomID == roomID && e.binding.PlayerID == playerID {
			e.binding = nil
		}
	}
}

// Lookup returns the binding for token, if any.
func (r *Registry) Lookup(token string) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[token]
	if !ok || e.binding == nil {
		return Binding{}, false
	}
	return *e.binding, true
}

// LastSeen returns when token was last touched.
func (r *Registry) LastSeen(token string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[token]
	if !ok {
		return time.Time{}, false
	}
	return e.lastSeen, true
}

// Expire removes sessions not seen within ttl and returns the seats they
// still held so the caller can vacate them.
func (r *Registry) Expire(now time.Time, ttl time.Duration) []Eviction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var evicted []Eviction
	for token, e := range r.sessions {
		if now.Sub(e.lastSeen) <= ttl {
			continue
		}
		if e.binding != nil {
			evicted = append(evicted, Eviction{Token: token, Binding: *e.binding})
		}
		delete(r.sessions, token)
	}
	return evicted
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
