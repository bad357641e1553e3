package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
)

// countingIdentityStore counts FindUserIdentity calls so tests can tell a
// cache hit from a passthrough. everything else is never called here.
type countingIdentityStore struct {
	domain.StatsStore

	identities map[int64]domain.UserIdentity
	calls      int
}

func (s *countingIdentityStore) FindUserIdentity(_ context.Context, user domain.UserID) (domain.UserIdentity, error) {
	s.calls++
	identity, ok := s.identities[user.Int64()]
	if !ok {
		return domain.UserIdentity{}, domain.ErrNotFound
	}
	return identity, nil
}

func TestIdentityCache_SecondLookupHitsCache(t *testing.T) {
	store := &countingIdentityStore{identities: map[int64]domain.UserIdentity{
		7: {UserID: domain.NewUserID(7), Username: "alice"},
	}}
	cached := NewStatsStoreWithIdentityCache(store, time.Minute)

	for i := 0; i < 3; i++ {
		identity, err := cached.FindUserIdentity(context.Background(), domain.NewUserID(7))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.Username != "alice" {
			t.Errorf("expected alice, got %q", identity.Username)
		}
	}

	if store.calls != 1 {
		t.Errorf("expected 1 store call, got %d", store.calls)
	}
}

func TestIdentityCache_NegativeResultCached(t *testing.T) {
	store := &countingIdentityStore{identities: map[int64]domain.UserIdentity{}}
	cached := NewStatsStoreWithIdentityCache(store, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := cached.FindUserIdentity(context.Background(), domain.NewUserID(999))
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}

	if store.calls != 1 {
		t.Errorf("expected unknown user cached after 1 call, got %d", store.calls)
	}
}

func TestIdentityCache_InvalidateForcesRefetch(t *testing.T) {
	store := &countingIdentityStore{identities: map[int64]domain.UserIdentity{
		7: {UserID: domain.NewUserID(7), Username: "alice"},
	}}
	cached := NewStatsStoreWithIdentityCache(store, time.Minute)

	if _, err := cached.FindUserIdentity(context.Background(), domain.NewUserID(7)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.identities[7] = domain.UserIdentity{UserID: domain.NewUserID(7), Username: "alice_renamed"}
	cached.Invalidate(domain.NewUserID(7))

	identity, err := cached.FindUserIdentity(context.Background(), domain.NewUserID(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Username != "alice_renamed" {
		t.Errorf("expected refreshed identity, got %q", identity.Username)
	}
	if store.calls != 2 {
		t.Errorf("expected 2 store calls, got %d", store.calls)
	}
}

func TestIdentityCache_ExpiredEntryRefetched(t *testing.T) {
	store := &countingIdentityStore{identities: map[int64]domain.UserIdentity{
		7: {UserID: domain.NewUserID(7), Username: "alice"},
	}}
	cached := NewStatsStoreWithIdentityCache(store, -time.Second)

	for i := 0; i < 2; i++ {
		if _, err := cached.FindUserIdentity(context.Background(), domain.NewUserID(7)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if store.calls != 2 {
		t.Errorf("expected expired entry to refetch, got %d calls", store.calls)
	}
}

func TestIdentityCache_CleanupRemovesExpired(t *testing.T) {
	store := &countingIdentityStore{identities: map[int64]domain.UserIdentity{
		7: {UserID: domain.NewUserID(7), Username: "alice"},
	}}
	cached := NewStatsStoreWithIdentityCache(store, -time.Second)

	if _, err := cached.FindUserIdentity(context.Background(), domain.NewUserID(7)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached.Size() != 1 {
		t.Fatalf("expected 1 entry before cleanup, got %d", cached.Size())
	}

	cached.Cleanup()

	if cached.Size() != 0 {
		t.Errorf("expected 0 entries after cleanup, got %d", cached.Size())
	}
}
