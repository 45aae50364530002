package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResult means the service answered with nothing usable.
	ErrNoResult = errors.New("analysis returned no result")
	// ErrMalformedResult means the answer did not hold a valid result of the expected shape.
	ErrMalformedResult = errors.New("analysis returned a malformed result")
)

// TransportError wraps a failure to reach the analysis service.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("analysis transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Stage names a step of the analysis pipeline.
type Stage string

const (
	StageClassify Stage = "classify"
	StageResolve  Stage = "resolve"
	StageDecide   Stage = "decide"
)

// StageError records which stage failed and for which provider or consumer.
type StageError struct {
	Stage   Stage
	Subject string
	Err     error
}

func (e *StageError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage failed for '%s': %v", e.Stage, e.Subject, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedResult, fmt.Sprintf(format, args...))
}

// failureKind is a short label for logs.
func failureKind(err error) string {
	var te *TransportError
	switch {
	case errors.Is(err, ErrNoResult):
		return "no_result"
	case errors.Is(err, ErrMalformedResult):
		return "malformed_result"
	case errors.As(err, &te):
		return "transport"
	default:
		return "unknown"
	}
}
