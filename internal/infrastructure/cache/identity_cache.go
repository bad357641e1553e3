package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
)

// StatsStoreWithIdentityCache wraps a StatsStore and memoizes user identity
// lookups in memory. the leaderboard join asks for the same identities on
// every request, and display names change rarely, so a short TTL removes
// most of those queries. all other reads delegate untouched.
type StatsStoreWithIdentityCache struct {
	domain.StatsStore

	entries map[int64]*identityEntry
	mu      sync.RWMutex
	ttl     time.Duration
}

type identityEntry struct {
	identity  domain.UserIdentity
	found     bool
	expiresAt time.Time
}

// NewStatsStoreWithIdentityCache creates the caching decorator.
func NewStatsStoreWithIdentityCache(store domain.StatsStore, ttl time.Duration) *StatsStoreWithIdentityCache {
	return &StatsStoreWithIdentityCache{
		StatsStore: store,
		entries:    make(map[int64]*identityEntry),
		ttl:        ttl,
	}
}

// FindUserIdentity returns the cached identity when fresh, otherwise
// queries the underlying store. negative results (ErrNotFound) are cached
// too, so unknown users don't hammer the database.
func (c *StatsStoreWithIdentityCache) FindUserIdentity(ctx context.Context, user domain.UserID) (domain.UserIdentity, error) {
	key := user.Int64()

	// fast path: check cache
	c.mu.RLock()
	entry, ok := c.entries[key]
	if ok && time.Now().Before(entry.expiresAt) {
		c.mu.RUnlock()
		if !entry.found {
			return domain.UserIdentity{}, domain.ErrNotFound
		}
		return entry.identity, nil
	}
	c.mu.RUnlock()

	// slow path: query the store
	identity, err := c.StatsStore.FindUserIdentity(ctx, user)
	if errors.Is(err, domain.ErrNotFound) {
		c.put(key, &identityEntry{found: false, expiresAt: time.Now().Add(c.ttl)})
		return domain.UserIdentity{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserIdentity{}, err
	}

	c.put(key, &identityEntry{identity: identity, found: true, expiresAt: time.Now().Add(c.ttl)})
	return identity, nil
}

func (c *StatsStoreWithIdentityCache) put(key int64, entry *identityEntry) {
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Invalidate removes a user from the cache.
// call this when an ingestion path updates a profile.
func (c *StatsStoreWithIdentityCache) Invalidate(user domain.UserID) {
	c.mu.Lock()
	delete(c.entries, user.Int64())
	c.mu.Unlock()
}

// Size returns the current number of cached entries.
func (c *StatsStoreWithIdentityCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes expired entries.
// call this periodically to prevent memory growth.
func (c *StatsStoreWithIdentityCache) Cleanup() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}
