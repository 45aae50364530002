package models

import "strings"

// ActionLevel is the outcome of Stage 3.
type ActionLevel string

const (
	ActionNone   ActionLevel = "none"
	ActionNotify ActionLevel = "notify"
	ActionUrgent ActionLevel = "urgent"
)

// ParseActionLevel returns the action level for s and whether s was a known level.
func ParseActionLevel(s string) (ActionLevel, bool) {
	switch a := ActionLevel(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionNone, ActionNotify, ActionUrgent:
		return a, true
	default:
		return "", false
	}
}

// ConsumerDetail describes how a cycle's changes affect one consumer.
type ConsumerDetail struct {
	Consumer string   `json:"consumer"`
	Changes  []string `json:"changes"`
	Impact   Level    `json:"impact"`
}

// Decision is the terminal artifact of a check cycle. It is printed and handed to
// the notifier, never persisted.
type Decision struct {
	Action            ActionLevel      `json:"action"`
	Summary           string           `json:"summary"`
	AffectedConsumers []string         `json:"affected_consumers"`
	RecommendedAction string           `json:"recommended_action"`
	Details           []ConsumerDetail `json:"details"`
	Fallback          bool             `json:"fallback,omitempty"`
}

// NoActionDecision is returned when there is nothing to decide about.
func NoActionDecision() Decision {
	return Decision{
		Action:            ActionNone,
		Summary:           "No relevant upstream changes detected",
		AffectedConsumers: []string{},
		Details:           []ConsumerDetail{},
	}
}
