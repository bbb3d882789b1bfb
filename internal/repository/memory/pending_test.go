package memory

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/repository"
)

func pendingLogin(key domain.UserKey, nonce string) domain.PendingLogin {
	return domain.PendingLogin{
		Key:      key,
		Nonce:    nonce,
		MaxEpoch: 10,
		Network:  domain.NetworkDevnet,
	}
}

func TestPendingPutTakeRoundTrip(t *testing.T) {
	store := NewPendingLoginStore(8)
	key := domain.UserKey{UserID: 1, ChatID: 2}

	if err := store.Put(key, pendingLogin(key, "nonce-1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !store.Has(key) {
		t.Fatal("expected Has to report the entry")
	}

	login, ok := store.Take(key)
	if !ok {
		t.Fatal("expected Take to return the entry")
	}
	if login.Nonce != "nonce-1" {
		t.Errorf("unexpected nonce %q", login.Nonce)
	}
}

func TestPendingTakeIsConsumeOnce(t *testing.T) {
	store := NewPendingLoginStore(8)
	key := domain.UserKey{UserID: 1, ChatID: 2}

	if err := store.Put(key, pendingLogin(key, "nonce-1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := store.Take(key); !ok {
		t.Fatal("first Take must succeed")
	}
	if _, ok := store.Take(key); ok {
		t.Fatal("second Take must fail")
	}
	if store.Has(key) {
		t.Error("entry must be gone after Take")
	}
}

func TestPendingPutOverwritesSameKey(t *testing.T) {
	store := NewPendingLoginStore(8)
	key := domain.UserKey{UserID: 1, ChatID: 2}

	if err := store.Put(key, pendingLogin(key, "first")); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := store.Put(key, pendingLogin(key, "second")); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	if got := store.Len(); got != 1 {
		t.Fatalf("expected one entry, got %d", got)
	}
	login, _ := store.Take(key)
	if login.Nonce != "second" {
		t.Errorf("expected the later attempt to win, got %q", login.Nonce)
	}
}

func TestPendingCapacityEvictsOldest(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewPendingLoginStore(3).WithClock(func() time.Time { return clock })

	keys := make([]domain.UserKey, 4)
	for i := range keys {
		keys[i] = domain.UserKey{UserID: int64(i + 1), ChatID: 100}
		clock = clock.Add(time.Second)
		if err := store.Put(keys[i], pendingLogin(keys[i], fmt.Sprintf("nonce-%d", i))); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}

	if got := store.Len(); got != 3 {
		t.Fatalf("expected capacity to hold at 3, got %d", got)
	}
	if store.Has(keys[0]) {
		t.Error("expected the oldest entry to be evicted")
	}
	for _, key := range keys[1:] {
		if !store.Has(key) {
			t.Errorf("expected entry for %s to survive", key)
		}
	}
}

func TestPendingDefaultCapacity(t *testing.T) {
	store := NewPendingLoginStore(0)
	if store.capacity != defaultPendingCapacity {
		t.Errorf("expected default capacity %d, got %d", defaultPendingCapacity, store.capacity)
	}
}

func TestPendingDelete(t *testing.T) {
	store := NewPendingLoginStore(8)
	key := domain.UserKey{UserID: 1, ChatID: 2}

	if err := store.Put(key, pendingLogin(key, "nonce")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	store.Delete(key)
	if store.Has(key) {
		t.Error("expected entry to be deleted")
	}

	// Deleting a missing key is a no-op.
	store.Delete(domain.UserKey{UserID: 9, ChatID: 9})
}

func TestPendingErrCapacityExceededIsSentinel(t *testing.T) {
	// The sentinel must survive wrapping so callers can classify it.
	wrapped := fmt.Errorf("store pending login: %w", repository.ErrCapacityExceeded)
	if !errors.Is(wrapped, repository.ErrCapacityExceeded) {
		t.Fatal("expected errors.Is to match the sentinel")
	}
}
