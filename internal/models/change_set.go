package models

import "strings"

// ChangeType is the category Stage 1 assigns to a change entry.
type ChangeType string

const (
	ChangeTypeDeprecation ChangeType = "deprecation"
	ChangeTypeBreaking    ChangeType = "breaking"
	ChangeTypeNewFeature  ChangeType = "new_feature"
	ChangeTypeMaintenance ChangeType = "maintenance"
	ChangeTypeUnknown     ChangeType = "unknown"
)

// ParseChangeType maps free text to a ChangeType, unknown values become ChangeTypeUnknown.
func ParseChangeType(s string) ChangeType {
	switch ct := ChangeType(strings.ToLower(strings.TrimSpace(s))); ct {
	case ChangeTypeDeprecation, ChangeTypeBreaking, ChangeTypeNewFeature, ChangeTypeMaintenance:
		return ct
	default:
		return ChangeTypeUnknown
	}
}

// Level is a three-step severity used for relevance and impact.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// ParseLevel maps free text to a Level, unknown values become LevelMedium.
func ParseLevel(s string) Level {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelHigh, LevelMedium, LevelLow:
		return l
	default:
		return LevelMedium
	}
}

// ChangeEntry is one classified change extracted from a changed page.
type ChangeEntry struct {
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Type      ChangeType `json:"type"`
	Relevance Level      `json:"relevance"`
	SourceURL string     `json:"source_url"`
	Date      string     `json:"date,omitempty"`
}

// ProviderChangeSet is the Stage 1 output for a provider.
type ProviderChangeSet struct {
	ProviderKey       string        `json:"provider_key"`
	ProviderName      string        `json:"provider_name"`
	Changes           []ChangeEntry `json:"changes"`
	NoChangesDetected bool          `json:"no_changes_detected"`
	AnalysisFailed    bool          `json:"analysis_failed,omitempty"`
}

// EmptyChangeSet returns the set used when a provider has nothing to report or its
// analysis failed.
func EmptyChangeSet(key, name string, failed bool) ProviderChangeSet {
	return ProviderChangeSet{
		ProviderKey:       key,
		ProviderName:      name,
		Changes:           []ChangeEntry{},
		NoChangesDetected: true,
		AnalysisFailed:    failed,
	}
}

// MergeEntries appends entries whose title has not been seen yet. Titles are compared
// exactly and first occurrence wins.
func (s *ProviderChangeSet) MergeEntries(entries []ChangeEntry) {
	seen := make(map[string]bool, len(s.Changes))
	for _, c := range s.Changes {
		seen[c.Title] = true
	}
	for _, e := range entries {
		if seen[e.Title] {
			continue
		}
		seen[e.Title] = true
		s.Changes = append(s.Changes, e)
	}
	s.NoChangesDetected = len(s.Changes) == 0
}

// CountChanges returns the number of change entries across all sets.
func CountChanges(sets []ProviderChangeSet) int {
	n := 0
	for _, s := range sets {
		n += len(s.Changes)
	}
	return n
}
