package models

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderChangeSet_MergeEntries(t *testing.T) {
	set := EmptyChangeSet("openai", "OpenAI", false)
	assert.True(t, set.NoChangesDetected)

	set.MergeEntries([]ChangeEntry{
		{Title: "Model retired", SourceURL: "a"},
		{Title: "New endpoint", SourceURL: "a"},
	})
	set.MergeEntries([]ChangeEntry{
		{Title: "Model retired", SourceURL: "b"},
		{Title: "model retired", SourceURL: "b"},
	})

	require.Len(t, set.Changes, 3)
	assert.Equal(t, "Model retired", set.Changes[0].Title)
	assert.Equal(t, "a", set.Changes[0].SourceURL, "first occurrence wins")
	assert.Equal(t, "New endpoint", set.Changes[1].Title)
	assert.Equal(t, "model retired", set.Changes[2].Title, "case differences are not merged")
	assert.False(t, set.NoChangesDetected)
}

func TestParsers(t *testing.T) {
	assert.Equal(t, ChangeTypeBreaking, ParseChangeType(" Breaking "))
	assert.Equal(t, ChangeTypeUnknown, ParseChangeType("security"))
	assert.Equal(t, LevelHigh, ParseLevel("HIGH"))
	assert.Equal(t, LevelMedium, ParseLevel("critical"))

	a, ok := ParseActionLevel("Urgent")
	assert.True(t, ok)
	assert.Equal(t, ActionUrgent, a)
	_, ok = ParseActionLevel("panic")
	assert.False(t, ok)
}

func TestGroupByProvider(t *testing.T) {
	records := []ChangeRecord{
		{ProviderKey: "b", Kind: ChangeKindModified, URL: "b1"},
		{ProviderKey: "a", Kind: ChangeKindUnavailable, URL: "a0"},
		{ProviderKey: "a", Kind: ChangeKindNew, URL: "a1"},
		{ProviderKey: "b", Kind: ChangeKindNew, URL: "b2"},
	}
	grouped, order, unavailable := GroupByProvider(records)
	assert.Equal(t, []string{"b", "a"}, order)
	assert.Len(t, grouped["b"], 2)
	assert.Len(t, grouped["a"], 1)
	require.Len(t, unavailable, 1)
	assert.Equal(t, "a0", unavailable[0].URL)
}

func TestFallbackProfile(t *testing.T) {
	p := FallbackProfile(Consumer{Name: "billing", Purpose: "invoices", Dependencies: []string{"stripe", "openai"}})
	assert.True(t, p.Fallback)
	assert.Equal(t, "billing", p.Consumer)
	require.Len(t, p.Dependencies, 2)
	for _, d := range p.Dependencies {
		assert.True(t, d.Critical)
		assert.Empty(t, d.Endpoints)
	}

	empty := FallbackProfile(Consumer{Name: "bare"})
	assert.NotNil(t, empty.Dependencies)
}

func TestCacheEntry_IsFresh(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour
	e := CacheEntry{Timestamp: t0}

	assert.True(t, e.IsFresh(t0, window))
	assert.True(t, e.IsFresh(t0.Add(window-time.Nanosecond), window))
	assert.False(t, e.IsFresh(t0.Add(window), window))
	assert.False(t, e.IsFresh(t0.Add(window+time.Hour), window))
}

func TestCheckState_Resources(t *testing.T) {
	s := NewCheckState()
	_, ok := s.Resource("p", "u")
	assert.False(t, ok)

	s.PutResource("p", "u", Resource{Fingerprint: "h1", StatusCode: 200})
	s.PutResource("p", "u", Resource{Fingerprint: "h2", StatusCode: 0})
	r, ok := s.Resource("p", "u")
	require.True(t, ok)
	assert.Equal(t, Resource{Fingerprint: "h2", StatusCode: 0}, r)
	assert.Equal(t, 1, s.ResourceCount())
}

func TestCheckState_PutCacheEntry_OnlyNewer(t *testing.T) {
	s := NewCheckState()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, s.PutCacheEntry("c", CacheEntry{Profile: DependencyProfile{Purpose: "v1"}, Timestamp: t0}))
	assert.False(t, s.PutCacheEntry("c", CacheEntry{Profile: DependencyProfile{Purpose: "old"}, Timestamp: t0.Add(-time.Hour)}))
	assert.False(t, s.PutCacheEntry("c", CacheEntry{Profile: DependencyProfile{Purpose: "same"}, Timestamp: t0}))
	assert.True(t, s.PutCacheEntry("c", CacheEntry{Profile: DependencyProfile{Purpose: "v2"}, Timestamp: t0.Add(time.Hour)}))

	e, ok := s.CacheEntry("c")
	require.True(t, ok)
	assert.Equal(t, "v2", e.Profile.Purpose)
}

func TestCheckState_SnapshotRoundTrip(t *testing.T) {
	s := NewCheckState()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.PutResource("p", "u", Resource{Fingerprint: "h", StatusCode: 200, LastChecked: now})
	s.PutCacheEntry("c", CacheEntry{Timestamp: now})
	s.SetLastRun(now)

	snap := s.Snapshot()
	assert.Equal(t, StateVersion, snap.Version)

	// the snapshot is a copy
	snap.Providers["p"]["u"] = Resource{}
	r, _ := s.Resource("p", "u")
	assert.Equal(t, "h", r.Fingerprint)

	restored := CheckStateFromSnapshot(s.Snapshot())
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	assert.Equal(t, now, restored.LastRun())
}

func TestCheckState_ConcurrentWriters(t *testing.T) {
	s := NewCheckState()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.PutResource("p", string(rune('a'+i%26))+string(rune('a'+i/26)), Resource{StatusCode: 200})
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.ResourceCount())
}
