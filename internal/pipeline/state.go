package pipeline

import "fmt"

// Mode selects how far a cycle runs.
type Mode string

const (
	// ModeSourcesOnly detects and classifies changes without resolving dependencies,
	// deciding or alerting.
	ModeSourcesOnly Mode = "sources-only"
	// ModeFull runs every stage and hands the decision to the notifier.
	ModeFull Mode = "full"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSourcesOnly, ModeFull:
		return m, nil
	default:
		return "", fmt.Errorf("unknown cycle mode %q", s)
	}
}

// CycleState is a step of the cycle state machine. Transitions only move forward.
type CycleState string

const (
	StateIdle        CycleState = "idle"
	StateDetecting   CycleState = "detecting"
	StateClassifying CycleState = "classifying"
	StateResolving   CycleState = "resolving"
	StateDeciding    CycleState = "deciding"
	StateReporting   CycleState = "reporting"
	StateDone        CycleState = "done"
)

var stateOrder = map[CycleState]int{
	StateIdle:        0,
	StateDetecting:   1,
	StateClassifying: 2,
	StateResolving:   3,
	StateDeciding:    4,
	StateReporting:   5,
	StateDone:        6,
}

// canAdvance reports whether moving from one state to another goes forward.
func canAdvance(from, to CycleState) bool {
	return stateOrder[to] > stateOrder[from]
}
