package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/datastore"
	"github.com/aleister1102/changewatch/internal/logger"
	"github.com/aleister1102/changewatch/internal/models"
	"github.com/aleister1102/changewatch/internal/notifier"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Orchestrator runs check cycles: detect, classify, resolve, decide, report.
// Stage failures are absorbed into fallback values so every full cycle ends with a
// Decision.
type Orchestrator struct {
	components Components
	logger     zerolog.Logger
}

// NewOrchestrator creates an Orchestrator. Detector, Classifier and Store are required;
// the other components are required only for full cycles.
func NewOrchestrator(components Components, logger zerolog.Logger) (*Orchestrator, error) {
	if components.Detector == nil || components.Classifier == nil || components.Store == nil {
		return nil, errors.New("orchestrator requires a detector, a classifier and a state store")
	}
	if components.Now == nil {
		components.Now = time.Now
	}
	if components.Notifier == nil {
		components.Notifier = notifier.NopNotifier{}
	}
	return &Orchestrator{
		components: components,
		logger:     logger.With().Str("component", "Orchestrator").Logger(),
	}, nil
}

// cycle carries the per-run state of one Run call.
type cycle struct {
	report    *Report
	state     *models.CheckState
	logger    zerolog.Logger
	historyID int64
	recorded  bool
}

func (c *cycle) advance(to CycleState) {
	if !canAdvance(c.report.State(), to) {
		c.logger.Error().Str("from", string(c.report.State())).Str("to", string(to)).Msg("Invalid state transition ignored")
		return
	}
	c.report.States = append(c.report.States, to)
	c.logger.Debug().Str("state", string(to)).Msg("Cycle state changed")
}

// Run executes one cycle against registry. The returned report is never nil; its Err
// carries persistence failures.
func (o *Orchestrator) Run(ctx context.Context, mode Mode, registry *config.Registry) *Report {
	c := &cycle{
		report: &Report{
			CycleID:   uuid.NewString(),
			Mode:      mode,
			StartedAt: o.components.Now(),
			States:    []CycleState{StateIdle},
		},
	}
	c.logger = logger.ForCycle(o.logger, c.report.CycleID, string(mode))
	c.logger.Info().Int("providers", len(registry.Providers)).Int("sources", registry.SourceCount()).Msg("Cycle started")

	o.recordStart(ctx, c)
	c.state = o.components.Store.Load(ctx)

	c.advance(StateDetecting)
	records := o.components.Detector.Check(ctx, registry, c.state)
	grouped, order, unavailable := models.GroupByProvider(records)
	for _, key := range order {
		c.report.Changes = append(c.report.Changes, grouped[key]...)
	}
	c.report.Unavailable = unavailable
	c.logger.Info().Int("changed", len(c.report.Changes)).Int("unavailable", len(unavailable)).Msg("Detection complete")

	if len(order) > 0 {
		c.advance(StateClassifying)
		for _, key := range order {
			set := o.components.Classifier.Classify(ctx, key, registry.Providers[key].Name, grouped[key])
			c.report.ChangeSets = append(c.report.ChangeSets, set)
		}
	} else {
		c.logger.Info().Msg("No changed sources, skipping classification")
	}

	if mode == ModeFull {
		o.runAnalysis(ctx, c, len(order) > 0)
	}

	c.advance(StateReporting)
	if mode == ModeFull {
		o.notify(ctx, c)
	}
	c.state.SetLastRun(o.components.Now())
	o.persist(ctx, c, "reporting")

	c.advance(StateDone)
	c.report.FinishedAt = o.components.Now()
	o.recordCompletion(ctx, c)

	c.logger.Info().
		Dur("duration", c.report.Duration()).
		Int("change_entries", models.CountChanges(c.report.ChangeSets)).
		Int("persistence_errors", len(c.report.PersistenceErrs())).
		Msg("Cycle finished")
	return c.report
}

// runAnalysis covers Resolving and Deciding. Without changes it goes straight to
// Deciding, which short-circuits to action none.
func (o *Orchestrator) runAnalysis(ctx context.Context, c *cycle, changed bool) {
	var profiles []models.DependencyProfile

	if changed {
		c.advance(StateResolving)
		profiles = o.resolve(ctx, c)
	} else {
		c.logger.Info().Msg("No changed sources, skipping dependency resolution")
	}
	o.persist(ctx, c, "resolving")

	c.advance(StateDeciding)
	var decision models.Decision
	if o.components.Decider == nil {
		decision = models.NoActionDecision()
	} else {
		decision = o.components.Decider.Decide(ctx, c.report.ChangeSets, profiles)
	}
	c.report.Decision = &decision
	c.logger.Info().Str("action", string(decision.Action)).Bool("fallback", decision.Fallback).Msg("Decision reached")
}

func (o *Orchestrator) resolve(ctx context.Context, c *cycle) []models.DependencyProfile {
	if o.components.Consumers == nil || o.components.NewResolver == nil {
		c.logger.Warn().Msg("No consumer source configured, deciding without dependency profiles")
		return nil
	}

	consumers, err := o.components.Consumers.Consumers(ctx)
	if err != nil {
		c.report.DiscoveryErr = err
		c.logger.Error().Err(err).Msg("Consumer discovery failed, deciding without dependency profiles")
		return nil
	}

	resolver := o.components.NewResolver(c.state)
	profiles := make([]models.DependencyProfile, 0, len(consumers))
	for _, consumer := range consumers {
		profile, source := resolver.Resolve(ctx, consumer, o.components.Now())
		profiles = append(profiles, profile)
		c.report.Profiles = append(c.report.Profiles, ResolvedProfile{Profile: profile, Source: source})
	}
	return profiles
}

func (o *Orchestrator) notify(ctx context.Context, c *cycle) {
	decision := c.report.Decision
	if decision == nil || decision.Action == models.ActionNone {
		return
	}
	alert := notifier.Alert{
		CycleID:     c.report.CycleID,
		Decision:    *decision,
		Unavailable: c.report.Unavailable,
		Timestamp:   o.components.Now(),
	}
	if err := o.components.Notifier.Notify(ctx, alert); err != nil {
		c.report.NotificationErr = err
		c.logger.Error().Err(err).Msg("Notification failed")
	}
}

func (o *Orchestrator) persist(ctx context.Context, c *cycle, checkpoint string) {
	if err := o.components.Store.Save(ctx, c.state); err != nil {
		c.report.Persistence.AddWithContext(err, "checkpoint "+checkpoint)
		c.logger.Error().Err(err).Str("checkpoint", checkpoint).Msg("Failed to persist check state")
		return
	}
	c.logger.Debug().Str("checkpoint", checkpoint).Msg("Check state persisted")
}

func (o *Orchestrator) recordStart(ctx context.Context, c *cycle) {
	if o.components.History == nil {
		return
	}
	id, err := o.components.History.RecordCycleStart(ctx, c.report.CycleID, string(c.report.Mode), c.report.StartedAt)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to record cycle start")
		return
	}
	c.historyID = id
	c.recorded = true
}

func (o *Orchestrator) recordCompletion(ctx context.Context, c *cycle) {
	if o.components.History == nil || !c.recorded {
		return
	}
	outcome := datastore.CycleOutcome{
		FinishedAt:  c.report.FinishedAt,
		Status:      datastore.CycleStatusCompleted,
		Changes:     len(c.report.Changes),
		Unavailable: len(c.report.Unavailable),
		Errors:      len(c.report.PersistenceErrs()),
	}
	if c.report.Persistence.HasErrors() {
		outcome.Status = datastore.CycleStatusFailed
	}
	if d := c.report.Decision; d != nil {
		outcome.Action = string(d.Action)
		outcome.Summary = d.Summary
	}
	if err := o.components.History.RecordCycleCompletion(ctx, c.historyID, outcome); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to record cycle completion")
	}
}
