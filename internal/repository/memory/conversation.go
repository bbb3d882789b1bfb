package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
)

// ConversationCache is the in-memory TTL map from (user, chat) to the last
// LLM turn id. Entries older than the TTL are filtered on read and removed by
// Sweep; the sweep re-checks timestamps under the same lock it deletes in so
// a concurrent Update can never lose its fresh timestamp.
type ConversationCache struct {
	mu      sync.Mutex
	entries map[domain.UserKey]domain.ConversationEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewConversationCache constructs a cache with the given TTL.
func NewConversationCache(ttl time.Duration) *ConversationCache {
	return &ConversationCache{
		entries: make(map[domain.UserKey]domain.ConversationEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock overrides the cache's clock. Test hook.
func (c *ConversationCache) WithClock(now func() time.Time) *ConversationCache {
	c.now = now
	return c
}

// Get returns the cached turn id. An entry older than the TTL is logically
// absent even if not yet swept.
func (c *ConversationCache) Get(_ context.Context, key domain.UserKey) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if c.now().Sub(entry.LastActivity) >= c.ttl {
		return "", false, nil
	}
	return entry.ResponseID, true, nil
}

// Update upserts the turn id and resets the entry's last-activity time.
func (c *ConversationCache) Update(_ context.Context, key domain.UserKey, responseID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = domain.ConversationEntry{
		ResponseID:   responseID,
		LastActivity: c.now(),
	}
	return nil
}

// Sweep removes every entry older than the TTL and returns the removed count.
func (c *ConversationCache) Sweep(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.LastActivity) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of physically present entries, expired or not.
func (c *ConversationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
