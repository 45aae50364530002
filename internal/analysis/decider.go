package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aleister1102/changewatch/internal/models"
	"github.com/rs/zerolog"
)

const (
	fallbackSummary           = "automated analysis failed, manual review recommended"
	fallbackRecommendedAction = "Review the detected upstream changes manually."
)

type decideResult struct {
	Action            string   `json:"action"`
	Summary           string   `json:"summary"`
	AffectedConsumers []string `json:"affected_consumers"`
	RecommendedAction string   `json:"recommended_action"`
	Details           []struct {
		Consumer string   `json:"consumer"`
		Changes  []string `json:"changes"`
		Impact   string   `json:"impact"`
	} `json:"details"`
}

func validateDecideResult(r *decideResult) error {
	if _, ok := models.ParseActionLevel(r.Action); !ok {
		return fmt.Errorf("unknown action %q", r.Action)
	}
	return nil
}

// Decider is Stage 3: it turns the cycle's changes and profiles into a Decision.
type Decider struct {
	client Client
	logger zerolog.Logger
}

// NewDecider creates a Decider.
func NewDecider(client Client, logger zerolog.Logger) *Decider {
	return &Decider{
		client: client,
		logger: logger.With().Str("component", "Decider").Logger(),
	}
}

// Decide returns action none without calling the service when there are no change
// entries. A failed call yields a notify decision naming every consumer.
func (d *Decider) Decide(ctx context.Context, sets []models.ProviderChangeSet, profiles []models.DependencyProfile) models.Decision {
	if models.CountChanges(sets) == 0 {
		d.logger.Info().Msg("No change entries, skipping decision call")
		return models.NoActionDecision()
	}

	result, err := Invoke(ctx, d.client, decideInstructions, decidePayload(sets, profiles), validateDecideResult)
	if err != nil {
		stageErr := &StageError{Stage: StageDecide, Err: err}
		d.logger.Error().Err(stageErr).
			Str("stage", string(StageDecide)).
			Str("failure", failureKind(err)).
			Msg("Decision failed")
		d.logger.Warn().Msg("Using fallback notify decision")
		return FallbackDecision(profiles)
	}

	action, _ := models.ParseActionLevel(result.Action)
	decision := models.Decision{
		Action:            action,
		Summary:           strings.TrimSpace(result.Summary),
		AffectedConsumers: nonNil(result.AffectedConsumers),
		RecommendedAction: strings.TrimSpace(result.RecommendedAction),
		Details:           make([]models.ConsumerDetail, 0, len(result.Details)),
	}
	for _, det := range result.Details {
		decision.Details = append(decision.Details, models.ConsumerDetail{
			Consumer: det.Consumer,
			Changes:  nonNil(det.Changes),
			Impact:   models.ParseLevel(det.Impact),
		})
	}

	d.logger.Info().Str("action", string(decision.Action)).Int("affected", len(decision.AffectedConsumers)).Msg("Decision made")
	return decision
}

// FallbackDecision is the decision used when the service could not decide.
func FallbackDecision(profiles []models.DependencyProfile) models.Decision {
	affected := make([]string, 0, len(profiles))
	for _, p := range profiles {
		affected = append(affected, p.Consumer)
	}
	return models.Decision{
		Action:            models.ActionNotify,
		Summary:           fallbackSummary,
		AffectedConsumers: affected,
		RecommendedAction: fallbackRecommendedAction,
		Details:           []models.ConsumerDetail{},
		Fallback:          true,
	}
}

func decidePayload(sets []models.ProviderChangeSet, profiles []models.DependencyProfile) string {
	withChanges := make([]models.ProviderChangeSet, 0, len(sets))
	for _, s := range sets {
		if len(s.Changes) > 0 {
			withChanges = append(withChanges, s)
		}
	}
	payload := struct {
		Changes   []models.ProviderChangeSet `json:"changes"`
		Consumers []models.DependencyProfile `json:"consumers"`
	}{withChanges, profiles}
	data, _ := json.MarshalIndent(payload, "", "  ")
	return string(data)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
