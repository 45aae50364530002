package models

import (
	"sync"
	"time"
)

// StateVersion is the version of the persisted state layout.
const StateVersion = 1

// StateSnapshot is the serialized form of CheckState.
type StateSnapshot struct {
	Version         int                            `json:"version"`
	LastRun         time.Time                      `json:"last_run,omitempty"`
	Providers       map[string]map[string]Resource `json:"providers"`
	DependencyCache map[string]CacheEntry          `json:"dependency_cache"`
}

// CheckState is the persisted aggregate of a check cycle. It is safe for concurrent use.
type CheckState struct {
	mu              sync.RWMutex
	lastRun         time.Time
	providers       map[string]map[string]Resource
	dependencyCache map[string]CacheEntry
}

// NewCheckState returns an empty state, the first-run baseline.
func NewCheckState() *CheckState {
	return &CheckState{
		providers:       make(map[string]map[string]Resource),
		dependencyCache: make(map[string]CacheEntry),
	}
}

// CheckStateFromSnapshot builds a state from its serialized form. Nil maps are allowed.
func CheckStateFromSnapshot(s StateSnapshot) *CheckState {
	cs := NewCheckState()
	cs.lastRun = s.LastRun
	for key, resources := range s.Providers {
		inner := make(map[string]Resource, len(resources))
		for url, r := range resources {
			inner[url] = r
		}
		cs.providers[key] = inner
	}
	for consumer, entry := range s.DependencyCache {
		cs.dependencyCache[consumer] = entry
	}
	return cs
}

// Snapshot returns a deep copy of the state taken under the read lock.
func (s *CheckState) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StateSnapshot{
		Version:         StateVersion,
		LastRun:         s.lastRun,
		Providers:       make(map[string]map[string]Resource, len(s.providers)),
		DependencyCache: make(map[string]CacheEntry, len(s.dependencyCache)),
	}
	for key, resources := range s.providers {
		inner := make(map[string]Resource, len(resources))
		for url, r := range resources {
			inner[url] = r
		}
		snap.Providers[key] = inner
	}
	for consumer, entry := range s.dependencyCache {
		snap.DependencyCache[consumer] = entry
	}
	return snap
}

// Resource returns the stored resource for (provider, url).
func (s *CheckState) Resource(providerKey, url string) (Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.providers[providerKey][url]
	return r, ok
}

// PutResource replaces the stored resource for (provider, url) as a whole.
func (s *CheckState) PutResource(providerKey, url string, r Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inner, ok := s.providers[providerKey]
	if !ok {
		inner = make(map[string]Resource)
		s.providers[providerKey] = inner
	}
	inner[url] = r
}

// ResourceCount returns the number of stored resources.
func (s *CheckState) ResourceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, inner := range s.providers {
		n += len(inner)
	}
	return n
}

// CacheEntry returns the cached dependency profile for a consumer.
func (s *CheckState) CacheEntry(consumer string) (CacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.dependencyCache[consumer]
	return e, ok
}

// PutCacheEntry stores entry unless the cached one is at least as new. It reports
// whether the entry was stored.
func (s *CheckState) PutCacheEntry(consumer string, entry CacheEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.dependencyCache[consumer]; ok && !entry.Timestamp.After(existing.Timestamp) {
		return false
	}
	s.dependencyCache[consumer] = entry
	return true
}

// LastRun returns the time the last cycle completed.
func (s *CheckState) LastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

// SetLastRun records the completion time of a cycle.
func (s *CheckState) SetLastRun(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = t
}
