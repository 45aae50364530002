package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/changewatch/internal/datastore"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/rs/zerolog"
)

// ProfileSource tells where a resolved profile came from.
type ProfileSource string

const (
	ProfileCached   ProfileSource = "cached"
	ProfileComputed ProfileSource = "computed"
	ProfileFallback ProfileSource = "fallback"
)

type resolveResult struct {
	Purpose      string `json:"purpose"`
	Dependencies []struct {
		API       string   `json:"api"`
		Endpoints []string `json:"endpoints"`
		Critical  bool     `json:"critical"`
	} `json:"dependencies"`
}

func validateResolveResult(r *resolveResult) error {
	if r.Dependencies == nil {
		return fmt.Errorf("missing dependencies")
	}
	for i, d := range r.Dependencies {
		if strings.TrimSpace(d.API) == "" {
			return fmt.Errorf("dependency %d has no api", i)
		}
	}
	return nil
}

// Resolver is Stage 2: it produces a dependency profile per consumer, reusing fresh
// cache entries.
type Resolver struct {
	client Client
	cache  *datastore.ProfileCache
	logger zerolog.Logger
}

// NewResolver creates a Resolver backed by cache.
func NewResolver(client Client, cache *datastore.ProfileCache, logger zerolog.Logger) *Resolver {
	return &Resolver{
		client: client,
		cache:  cache,
		logger: logger.With().Str("component", "Resolver").Logger(),
	}
}

// Resolve returns the consumer's profile. A fresh cache entry is returned verbatim.
// Otherwise the service is asked, and on failure a fallback profile is built from the
// consumer's static dependencies. Computed and fallback profiles are both cached at now.
func (r *Resolver) Resolve(ctx context.Context, consumer models.Consumer, now time.Time) (models.DependencyProfile, ProfileSource) {
	if entry, ok := r.cache.Lookup(consumer.Name, now); ok {
		r.logger.Debug().Str("consumer", consumer.Name).Time("cached_at", entry.Timestamp).Msg("Using cached dependency profile")
		return entry.Profile, ProfileCached
	}

	profile, err := r.compute(ctx, consumer)
	source := ProfileComputed
	if err != nil {
		stageErr := &StageError{Stage: StageResolve, Subject: consumer.Name, Err: err}
		r.logger.Error().Err(stageErr).
			Str("stage", string(StageResolve)).
			Str("consumer", consumer.Name).
			Str("failure", failureKind(err)).
			Msg("Dependency resolution failed")
		r.logger.Warn().Str("consumer", consumer.Name).Int("dependencies", len(consumer.Dependencies)).Msg("Using fallback dependency profile")
		profile = models.FallbackProfile(consumer)
		source = ProfileFallback
	}

	if !r.cache.Put(consumer.Name, models.CacheEntry{Profile: profile, Timestamp: now}) {
		r.logger.Warn().Str("consumer", consumer.Name).Msg("Cache already holds a newer profile, not replaced")
	}
	return profile, source
}

func (r *Resolver) compute(ctx context.Context, consumer models.Consumer) (models.DependencyProfile, error) {
	result, err := Invoke(ctx, r.client, resolveInstructions, resolvePayload(consumer), validateResolveResult)
	if err != nil {
		return models.DependencyProfile{}, err
	}

	deps := make([]models.DependencyEntry, 0, len(result.Dependencies))
	for _, d := range result.Dependencies {
		endpoints := d.Endpoints
		if endpoints == nil {
			endpoints = []string{}
		}
		deps = append(deps, models.DependencyEntry{
			API:       strings.TrimSpace(d.API),
			Endpoints: endpoints,
			Critical:  d.Critical,
		})
	}

	purpose := strings.TrimSpace(result.Purpose)
	if purpose == "" {
		purpose = consumer.Purpose
	}
	return models.DependencyProfile{
		Consumer:     consumer.Name,
		Purpose:      purpose,
		Dependencies: deps,
	}, nil
}

func resolvePayload(consumer models.Consumer) string {
	meta := struct {
		Name         string   `json:"name"`
		Purpose      string   `json:"purpose"`
		Dependencies []string `json:"dependencies"`
	}{consumer.Name, consumer.Purpose, consumer.Dependencies}
	data, _ := json.Marshal(meta)

	var b strings.Builder
	fmt.Fprintf(&b, "Component: %s\n", data)
	if consumer.UsageSnapshot != "" {
		b.WriteString("\nUsage excerpts:\n")
		b.WriteString(consumer.UsageSnapshot)
	}
	return b.String()
}
