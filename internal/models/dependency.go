package models

import "time"

// Consumer is a downstream entity that may be affected by upstream API changes.
// It is supplied by discovery and never mutated by the pipeline.
type Consumer struct {
	Name         string   `json:"name" yaml:"name" validate:"required"`
	Purpose      string   `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty" validate:"dive,required"`
	UsageFiles   []string `json:"usage_files,omitempty" yaml:"usage_files,omitempty"`
	// UsageSnapshot is assembled from UsageFiles at discovery time.
	UsageSnapshot string `json:"-" yaml:"-"`
}

// DependencyEntry is one external API a consumer relies on.
type DependencyEntry struct {
	API       string   `json:"api"`
	Endpoints []string `json:"endpoints"`
	Critical  bool     `json:"critical"`
}

// DependencyProfile is the Stage 2 output for a consumer.
type DependencyProfile struct {
	Consumer     string            `json:"consumer"`
	Purpose      string            `json:"purpose"`
	Dependencies []DependencyEntry `json:"dependencies"`
	Fallback     bool              `json:"fallback,omitempty"`
}

// FallbackProfile derives a profile from the consumer's statically observed
// dependencies, each treated as critical with no known endpoints.
func FallbackProfile(c Consumer) DependencyProfile {
	deps := make([]DependencyEntry, 0, len(c.Dependencies))
	for _, d := range c.Dependencies {
		deps = append(deps, DependencyEntry{API: d, Endpoints: []string{}, Critical: true})
	}
	return DependencyProfile{
		Consumer:     c.Name,
		Purpose:      c.Purpose,
		Dependencies: deps,
		Fallback:     true,
	}
}

// CacheEntry wraps a DependencyProfile with the time it was computed.
type CacheEntry struct {
	Profile   DependencyProfile `json:"profile"`
	Timestamp time.Time         `json:"timestamp"`
}

// IsFresh reports whether the entry is younger than window at now.
func (e CacheEntry) IsFresh(now time.Time, window time.Duration) bool {
	return now.Sub(e.Timestamp) < window
}
