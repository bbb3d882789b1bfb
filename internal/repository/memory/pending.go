package memory

import (
	"sync"
	"time"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/repository"
)

const defaultPendingCapacity = 1024

// PendingLoginStore keeps in-flight login attempts in process memory. One
// entry per user key; a new Put for the same key supersedes the old attempt.
type PendingLoginStore struct {
	mu       sync.Mutex
	entries  map[domain.UserKey]domain.PendingLogin
	capacity int
	now      func() time.Time
}

// NewPendingLoginStore constructs a store bounded to the given capacity.
// Non-positive capacity falls back to the default.
func NewPendingLoginStore(capacity int) *PendingLoginStore {
	if capacity <= 0 {
		capacity = defaultPendingCapacity
	}
	return &PendingLoginStore{
		entries:  make(map[domain.UserKey]domain.PendingLogin),
		capacity: capacity,
		now:      time.Now,
	}
}

// WithClock overrides the store's clock. Test hook.
func (s *PendingLoginStore) WithClock(now func() time.Time) *PendingLoginStore {
	s.now = now
	return s
}

// Put stores the pending login under its key, overwriting any prior attempt
// for the same user. When the table is at capacity, the oldest entry is
// evicted first; if eviction cannot free a slot, Put fails with
// repository.ErrCapacityExceeded.
func (s *PendingLoginStore) Put(key domain.UserKey, login domain.PendingLogin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.capacity {
		if !s.evictOldestLocked() {
			return repository.ErrCapacityExceeded
		}
	}

	if login.CreatedAt.IsZero() {
		login.CreatedAt = s.now()
	}
	s.entries[key] = login
	return nil
}

// Take removes and returns the pending login for the key. A second Take for
// the same attempt reports false, which forces a fresh login.
func (s *PendingLoginStore) Take(key domain.UserKey) (domain.PendingLogin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	login, ok := s.entries[key]
	if !ok {
		return domain.PendingLogin{}, false
	}
	delete(s.entries, key)
	return login, true
}

// Has reports whether a pending login exists for the key without consuming it.
func (s *PendingLoginStore) Has(key domain.UserKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[key]
	return ok
}

// Delete discards the pending login for the key.
func (s *PendingLoginStore) Delete(key domain.UserKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Len returns the number of in-flight logins.
func (s *PendingLoginStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// evictOldestLocked drops the entry with the earliest CreatedAt. Caller holds
// the lock.
func (s *PendingLoginStore) evictOldestLocked() bool {
	var (
		oldestKey domain.UserKey
		oldestAt  time.Time
		found     bool
	)
	for key, entry := range s.entries {
		if !found || entry.CreatedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.CreatedAt
			found = true
		}
	}
	if !found {
		return false
	}
	delete(s.entries, oldestKey)
	return true
}
