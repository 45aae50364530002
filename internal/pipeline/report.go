package pipeline

import (
	"time"

	"github.com/aleister1102/changewatch/internal/analysis"
	"github.com/aleister1102/changewatch/internal/common"
	"github.com/aleister1102/changewatch/internal/models"
)

// ResolvedProfile is a Stage 2 result with its origin.
type ResolvedProfile struct {
	Profile models.DependencyProfile
	Source  analysis.ProfileSource
}

// Report is everything a cycle produced. It is printed and summarized in the history DB.
type Report struct {
	CycleID    string
	Mode       Mode
	StartedAt  time.Time
	FinishedAt time.Time
	States     []CycleState

	Changes     []models.ChangeRecord
	Unavailable []models.ChangeRecord
	ChangeSets  []models.ProviderChangeSet
	Profiles    []ResolvedProfile
	Decision    *models.Decision

	DiscoveryErr    error
	NotificationErr error
	// Persistence collects failed state saves, one per checkpoint.
	Persistence common.ErrorCollector
}

// State returns the last state the cycle reached.
func (r *Report) State() CycleState {
	if len(r.States) == 0 {
		return StateIdle
	}
	return r.States[len(r.States)-1]
}

// Visited reports whether the cycle passed through s.
func (r *Report) Visited(s CycleState) bool {
	for _, v := range r.States {
		if v == s {
			return true
		}
	}
	return false
}

// FailedProviders lists providers whose classification fell back to an empty set.
func (r *Report) FailedProviders() []string {
	var keys []string
	for _, s := range r.ChangeSets {
		if s.AnalysisFailed {
			keys = append(keys, s.ProviderKey)
		}
	}
	return keys
}

// PersistenceErrs returns the failed state saves in checkpoint order.
func (r *Report) PersistenceErrs() []error {
	return r.Persistence.Errors()
}

// Err returns the persistence failures of the cycle, if any. Stage and notification
// failures are absorbed and never reported here.
func (r *Report) Err() error {
	return r.Persistence.Error()
}

// Duration is the wall time of the cycle.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
