package monitor

import (
	"context"
	"time"

	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Detector runs one detection pass over the provider registry.
type Detector struct {
	logger        zerolog.Logger
	checker       *URLChecker
	mutexes       *URLMutexManager
	maxConcurrent int
}

// NewDetector creates a Detector. now may be nil to use the wall clock.
func NewDetector(fetcher Fetcher, cfg config.MonitorConfig, now func() time.Time, logger zerolog.Logger) *Detector {
	maxConcurrent := cfg.Concurrency()
	width := cfg.FingerprintWidth
	if width <= 0 {
		width = config.DefaultMonitorFingerprintWidth
	}

	processor := NewContentProcessor(width, cfg.MaxAnalysisChars, logger)
	return &Detector{
		logger:        logger.With().Str("component", "Detector").Logger(),
		checker:       NewURLChecker(fetcher, processor, now, logger),
		mutexes:       NewURLMutexManager(logger),
		maxConcurrent: maxConcurrent,
	}
}

// Targets flattens the registry into check order: providers by sorted key, sources
// in file order.
func Targets(registry *config.Registry) []SourceTarget {
	var targets []SourceTarget
	for _, key := range registry.Keys() {
		provider := registry.Providers[key]
		for _, source := range provider.Sources {
			targets = append(targets, SourceTarget{
				ProviderKey:  key,
				ProviderName: provider.Name,
				Source:       source,
			})
		}
	}
	return targets
}

// Check fetches every configured source with bounded concurrency and returns the
// change records in registry order. A failing source never affects the others.
func (d *Detector) Check(ctx context.Context, registry *config.Registry, state *models.CheckState) []models.ChangeRecord {
	targets := Targets(registry)
	results := make([]*models.ChangeRecord, len(targets))

	activeURLs := make([]string, 0, len(targets))
	for _, t := range targets {
		activeURLs = append(activeURLs, t.Source.URL)
	}
	d.mutexes.CleanupUnusedMutexes(activeURLs)

	var g errgroup.Group
	g.SetLimit(d.maxConcurrent)
	for i, target := range targets {
		g.Go(func() error {
			mu := d.mutexes.GetMutex(target.Source.URL)
			mu.Lock()
			defer mu.Unlock()

			results[i] = d.checker.CheckSource(ctx, target, state)
			return nil
		})
	}
	_ = g.Wait()

	records := make([]models.ChangeRecord, 0)
	counts := make(map[models.ChangeKind]int)
	for _, r := range results {
		if r == nil {
			continue
		}
		records = append(records, *r)
		counts[r.Kind]++
	}

	d.logger.Info().
		Int("sources", len(targets)).
		Int("new", counts[models.ChangeKindNew]).
		Int("modified", counts[models.ChangeKindModified]).
		Int("unavailable", counts[models.ChangeKindUnavailable]).
		Msg("Detection pass complete")
	return records
}
