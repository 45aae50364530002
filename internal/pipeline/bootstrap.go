package pipeline

import (
	"github.com/aleister1102/changewatch/internal/analysis"
	"github.com/aleister1102/changewatch/internal/common"
	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/datastore"
	"github.com/aleister1102/changewatch/internal/discovery"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/aleister1102/changewatch/internal/monitor"
	"github.com/aleister1102/changewatch/internal/notifier"
	"github.com/rs/zerolog"
)

// Service is an Orchestrator wired from configuration, plus the resources it owns.
type Service struct {
	*Orchestrator
	history *datastore.HistoryDB
	logger  zerolog.Logger
}

// NewService builds every collaborator from cfg. The analysis client is built once here
// and shared by the three stages.
func NewService(cfg *config.GlobalConfig, logger zerolog.Logger) (*Service, error) {
	fetcher, err := monitor.NewFetcher(cfg.MonitorConfig, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to create fetcher")
	}

	client, err := analysis.NewOpenAIClient(cfg.AnalysisConfig, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to create analysis client")
	}

	alerts, err := notifier.New(cfg.NotificationConfig, cfg.MonitorConfig.UserAgent, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to create notifier")
	}

	analysisCfg := cfg.AnalysisConfig
	components := Components{
		Detector:   monitor.NewDetector(fetcher, cfg.MonitorConfig, nil, logger),
		Classifier: analysis.NewClassifier(client, logger),
		NewResolver: func(state *models.CheckState) DependencyResolver {
			cache := datastore.NewProfileCache(state, analysisCfg.FreshnessWindow(), analysisCfg.RetryFallbackProfiles)
			return analysis.NewResolver(client, cache, logger)
		},
		Decider:   analysis.NewDecider(client, logger),
		Consumers: discovery.NewCatalog(cfg.DiscoveryConfig, logger),
		Store:     datastore.NewStateStore(cfg.StorageConfig.StatePath, logger),
		Notifier:  alerts,
	}

	svc := &Service{logger: logger}
	if cfg.StorageConfig.HistoryEnabled {
		history, err := datastore.NewHistoryDB(cfg.StorageConfig.HistoryDBPath, logger)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.StorageConfig.HistoryDBPath).Msg("Cycle history disabled")
		} else {
			svc.history = history
			components.History = history
		}
	}

	orchestrator, err := NewOrchestrator(components, logger)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.Orchestrator = orchestrator
	return svc, nil
}

// Close releases the history database.
func (s *Service) Close() {
	if s.history == nil {
		return
	}
	if err := s.history.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to close history database")
	}
}
