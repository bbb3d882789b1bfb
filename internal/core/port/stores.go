package port

import (
	"context"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
)

// PendingLoginStore holds ephemeral login material for the duration of the
// OAuth round trip. The store keeps at most one entry per user: Put overwrites
// any prior attempt, making the earlier login URL unredeemable.
type PendingLoginStore interface {
	// Put stores the pending login, replacing any existing entry for the same
	// key. Returns repository.ErrCapacityExceeded when the table is full and
	// no slot can be evicted.
	Put(key domain.UserKey, login domain.PendingLogin) error
	// Take removes and returns the pending login. Promotion is consume-once:
	// a second Take for the same attempt reports false.
	Take(key domain.UserKey) (domain.PendingLogin, bool)
	// Has reports whether a pending login exists without consuming it.
	Has(key domain.UserKey) bool
	// Delete discards the pending login, if any.
	Delete(key domain.UserKey)
}

// SessionStore is the process-wide table of authenticated sessions, one per
// user key. Sessions are never persisted.
type SessionStore interface {
	Get(key domain.UserKey) (domain.AuthenticatedSession, bool)
	Put(session domain.AuthenticatedSession)
	Delete(key domain.UserKey)
}

// ConversationCache bounds the lifetime of LLM turn-continuation handles.
// Implementations must make Get, Update, and Sweep atomic with respect to
// each other.
type ConversationCache interface {
	// Get returns the cached turn id, reporting false when the entry is
	// absent or older than the TTL.
	Get(ctx context.Context, key domain.UserKey) (string, bool, error)
	// Update upserts the turn id and resets the entry's last-activity time.
	Update(ctx context.Context, key domain.UserKey, responseID string) error
	// Sweep removes every entry older than the TTL and returns the count of
	// removed entries.
	Sweep(ctx context.Context) (int, error)
}
