package memory

import (
	"sync"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
)

// SessionStore is the process-wide table of authenticated sessions. Guarded
// by its own lock, independent of the pending-login table: unrelated users
// must never serialize against each other across tables.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.UserKey]domain.AuthenticatedSession
}

// NewSessionStore constructs an empty session table.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[domain.UserKey]domain.AuthenticatedSession)}
}

// Get returns the session for the key, if any.
func (s *SessionStore) Get(key domain.UserKey) (domain.AuthenticatedSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[key]
	return session, ok
}

// Put stores the session, replacing any prior one for the same key.
func (s *SessionStore) Put(session domain.AuthenticatedSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Key] = session
}

// Delete removes the session for the key.
func (s *SessionStore) Delete(key domain.UserKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
}
