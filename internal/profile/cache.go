// File: internal/profile/cache.go
package profile

import (
	"sync"
	"time"
)

// roleCache is an in-process TTL cache of resolved identities, keyed by
// Firebase UID. It exists so that a slow or unreachable database degrades a
// session to a recent answer instead of an error. Entries are small and the
// population is bounded by the number of active sessions, so eviction is
// lazy, expired entries are dropped on read and on Set sweeps.
type roleCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]roleCacheEntry
	now     func() time.Time
}

type roleCacheEntry struct {
	identity ResolvedIdentity
	storedAt time.Time
}

func newRoleCache(ttl time.Duration) *roleCache {
	return &roleCache{
		ttl:     ttl,
		entries: make(map[string]roleCacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached identity for the UID if present and fresh.
func (c *roleCache) Get(uid string) (ResolvedIdentity, bool) {
	c.mu.RLock()
	entry, ok := c.entries[uid]
	c.mu.RUnlock()
	if !ok {
		return ResolvedIdentity{}, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, uid)
		c.mu.Unlock()
		return ResolvedIdentity{}, false
	}
	identity := entry.identity
	identity.FromCache = true
	return identity, true
}

// Set stores a freshly resolved identity and opportunistically sweeps
// expired entries.
func (c *roleCache) Set(uid string, identity ResolvedIdentity) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, k)
		}
	}
	identity.FromCache = false
	c.entries[uid] = roleCacheEntry{identity: identity, storedAt: now}
}

// Invalidate removes the entry for a UID. Sign out clears the cache before
// anything else so a failed revoke cannot leave a stale role behind.
func (c *roleCache) Invalidate(uid string) {
	c.mu.Lock()
	delete(c.entries, uid)
	c.mu.Unlock()
}
