package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry owns live sessions for surfaces that serve several callers. All
// access to a session goes through Do, which holds the session's lock for
// the duration of fn.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*ownedSession
	newID    func() string
}

type ownedSession struct {
	mu      sync.Mutex
	session *Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*ownedSession),
		newID:    uuid.NewString,
	}
}

// Create registers a new session and returns its id.
func (r *Registry) Create(worldID, defaultStateID string, opts ...Option) string {
	s := New(worldID, defaultStateID, opts...)

	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newID()
	r.sessions[id] = &ownedSession{session: s}
	return id
}

func (r *Registry) Do(id string, fn func(*Session) error) error {
	r.mu.Lock()
	owned, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}

	owned.mu.Lock()
	defer owned.mu.Unlock()
	return fn(owned.session)
}

func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
