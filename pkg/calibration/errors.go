package calibration

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrInvalidCalibration is wrapped by every ValidationError.
	ErrInvalidCalibration = errors.New("calibration: invalid data")

	// ErrInsufficientSamples is returned when a target has too few samples.
	ErrInsufficientSamples = errors.New("calibration: insufficient samples")

	// ErrInvalidPhase is returned for a phase change the state machine does not allow.
	ErrInvalidPhase = errors.New("calibration: invalid phase transition")

	// ErrNoCalibration is returned by Store.Load when nothing has been saved.
	ErrNoCalibration = errors.New("calibration: no saved calibration")

	// ErrUnsafePath is returned when the store path escapes its data directory.
	ErrUnsafePath = errors.New("calibration: path traversal detected")
)

// ValidationError describes malformed or out-of-range calibration data.
type ValidationError struct {
	// Field names the offending field, e.g. "screen_width" or "points[2].gaze_x".
	Field string

	// Reason is a human readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("calibration: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidCalibration.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidCalibration
}

// InsufficientSamplesError reports a target that never reached the minimum.
type InsufficientSamplesError struct {
	Target int // Target index, -1 when not tied to a target
	Have   int
	Need   int
}

// Error implements the error interface.
func (e *InsufficientSamplesError) Error() string {
	if e.Target < 0 {
		return fmt.Sprintf("calibration: insufficient samples: have %d, need %d", e.Have, e.Need)
	}
	return fmt.Sprintf("calibration: insufficient samples for target %d: have %d, need %d",
		e.Target, e.Have, e.Need)
}

// Unwrap returns ErrInsufficientSamples.
func (e *InsufficientSamplesError) Unwrap() error {
	return ErrInsufficientSamples
}

// StoreError wraps a persistence failure with the operation that failed.
type StoreError struct {
	Op   string // "save", "load", "delete"
	Path string
	Err  error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("calibration store: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}
