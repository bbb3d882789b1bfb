package memory

import (
	"sync"
	"testing"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStore()
	key := domain.UserKey{UserID: 1, ChatID: 2}

	if _, ok := store.Get(key); ok {
		t.Fatal("expected empty store")
	}

	store.Put(domain.AuthenticatedSession{Key: key, Address: "0xabc", ValidUntilEpoch: 10})
	session, ok := store.Get(key)
	if !ok {
		t.Fatal("expected session")
	}
	if session.Address != "0xabc" {
		t.Errorf("unexpected address %q", session.Address)
	}

	store.Put(domain.AuthenticatedSession{Key: key, Address: "0xdef", ValidUntilEpoch: 12})
	session, _ = store.Get(key)
	if session.Address != "0xdef" {
		t.Error("expected Put to replace the session")
	}

	store.Delete(key)
	if _, ok := store.Get(key); ok {
		t.Error("expected session to be deleted")
	}
}

func TestSessionStoreConcurrentAccess(t *testing.T) {
	store := NewSessionStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := domain.UserKey{UserID: int64(i), ChatID: 1}
			store.Put(domain.AuthenticatedSession{Key: key, ValidUntilEpoch: uint64(i)})
			if _, ok := store.Get(key); !ok {
				t.Errorf("missing session for %s", key)
			}
		}(i)
	}
	wg.Wait()
}
