package controller

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrInvalidTransition is wrapped by every TransitionError.
	ErrInvalidTransition = errors.New("controller: invalid state transition")

	// ErrScreenMismatch is returned when the stored calibration was made on
	// a display of a different resolution.
	ErrScreenMismatch = errors.New("controller: calibration screen size mismatch")

	// ErrStopped is returned by commands issued after Run has exited.
	ErrStopped = errors.New("controller: stopped")
)

// TransitionError reports a refused application state change.
type TransitionError struct {
	From AppState
	To   AppState
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("controller: cannot go from %s to %s", e.From, e.To)
}

// Unwrap returns ErrInvalidTransition.
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
