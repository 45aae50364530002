package main

import (
	"time"

	"github.com/aleister1102/changewatch/internal/datastore"
	"github.com/aleister1102/changewatch/internal/discovery"
	"github.com/aleister1102/changewatch/internal/reporter"
	"github.com/spf13/cobra"
)

func newDiscoverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List known consumers, their static dependencies and cached profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOrBackground(cmd.Context())

			consumers, err := discovery.NewCatalog(a.cfg.DiscoveryConfig, a.logger).Consumers(ctx)
			if err != nil {
				return err
			}

			state := datastore.NewStateStore(a.cfg.StorageConfig.StatePath, a.logger).Load(ctx)
			cache := datastore.NewProfileCache(state, a.cfg.AnalysisConfig.FreshnessWindow(), a.cfg.AnalysisConfig.RetryFallbackProfiles)
			now := time.Now()

			views := make([]reporter.ConsumerView, 0, len(consumers))
			for _, c := range consumers {
				view := reporter.ConsumerView{Consumer: c}
				if entry, ok := cache.Get(c.Name); ok {
					view.Cached = true
					view.CachedAt = entry.Timestamp
					view.Fresh = cache.Fresh(entry, now)
					view.Fallback = entry.Profile.Fallback
				}
				views = append(views, view)
			}
			return a.reporter.RenderConsumers(views)
		},
	}
}
