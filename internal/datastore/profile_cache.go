package datastore

import (
	"time"

	"github.com/aleister1102/changewatch/internal/models"
)

// ProfileCache is the dependency-profile cache held inside CheckState, with the
// freshness window applied.
type ProfileCache struct {
	state          *models.CheckState
	window         time.Duration
	retryFallbacks bool
}

// NewProfileCache wraps state. When retryFallbacks is set, cached fallback profiles
// never count as fresh.
func NewProfileCache(state *models.CheckState, window time.Duration, retryFallbacks bool) *ProfileCache {
	return &ProfileCache{
		state:          state,
		window:         window,
		retryFallbacks: retryFallbacks,
	}
}

// Get returns the cached entry for consumer regardless of age.
func (c *ProfileCache) Get(consumer string) (models.CacheEntry, bool) {
	return c.state.CacheEntry(consumer)
}

// Put stores a freshly computed entry. Older or equal timestamps are ignored.
func (c *ProfileCache) Put(consumer string, entry models.CacheEntry) bool {
	return c.state.PutCacheEntry(consumer, entry)
}

// Fresh reports whether entry may be reused at now.
func (c *ProfileCache) Fresh(entry models.CacheEntry, now time.Time) bool {
	if c.retryFallbacks && entry.Profile.Fallback {
		return false
	}
	return entry.IsFresh(now, c.window)
}

// Lookup returns the entry for consumer only if it is fresh at now.
func (c *ProfileCache) Lookup(consumer string, now time.Time) (models.CacheEntry, bool) {
	entry, ok := c.Get(consumer)
	if !ok || !c.Fresh(entry, now) {
		return models.CacheEntry{}, false
	}
	return entry, true
}
