package pipeline

import (
	"context"
	"time"

	"github.com/aleister1102/changewatch/internal/analysis"
	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/datastore"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/aleister1102/changewatch/internal/notifier"
)

// ChangeDetector fetches every registry source and reports what changed.
type ChangeDetector interface {
	Check(ctx context.Context, registry *config.Registry, state *models.CheckState) []models.ChangeRecord
}

// ChangeClassifier is Stage 1.
type ChangeClassifier interface {
	Classify(ctx context.Context, providerKey, providerName string, records []models.ChangeRecord) models.ProviderChangeSet
}

// DependencyResolver is Stage 2.
type DependencyResolver interface {
	Resolve(ctx context.Context, consumer models.Consumer, now time.Time) (models.DependencyProfile, analysis.ProfileSource)
}

// DecisionMaker is Stage 3.
type DecisionMaker interface {
	Decide(ctx context.Context, sets []models.ProviderChangeSet, profiles []models.DependencyProfile) models.Decision
}

// ConsumerSource enumerates the consumers known to discovery.
type ConsumerSource interface {
	Consumers(ctx context.Context) ([]models.Consumer, error)
}

// StateStore loads and persists the check state.
type StateStore interface {
	Load(ctx context.Context) *models.CheckState
	Save(ctx context.Context, state *models.CheckState) error
}

// HistoryRecorder appends cycle summaries to the history DB.
type HistoryRecorder interface {
	RecordCycleStart(ctx context.Context, cycleID, mode string, startedAt time.Time) (int64, error)
	RecordCycleCompletion(ctx context.Context, id int64, outcome datastore.CycleOutcome) error
}

// Components are the collaborators of an Orchestrator. Resolvers are built per cycle
// because they wrap the cycle's dependency cache.
type Components struct {
	Detector    ChangeDetector
	Classifier  ChangeClassifier
	NewResolver func(state *models.CheckState) DependencyResolver
	Decider     DecisionMaker
	Consumers   ConsumerSource
	Store       StateStore
	Notifier    notifier.Notifier
	History     HistoryRecorder  // optional
	Now         func() time.Time // defaults to time.Now
}
