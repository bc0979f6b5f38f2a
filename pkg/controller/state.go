package controller

import "fmt"

// AppState is the top-level application mode.
type AppState int

const (
	// StateIdle means the camera is unused and the cursor untouched.
	StateIdle AppState = iota
	// StateCalibrating runs the guided calibration.
	StateCalibrating
	// StateTracking drives the cursor from gaze.
	StateTracking
	// StatePaused keeps processing frames but leaves the cursor alone.
	StatePaused
	// StateError needs user intervention before anything else runs.
	StateError
)

// String returns the state name.
func (s AppState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCalibrating:
		return "calibrating"
	case StateTracking:
		return "tracking"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// validTransitions lists the allowed moves out of each state.
//
//	idle -> calibrating -> idle
//	idle -> tracking <-> paused
//	tracking, paused -> idle
//	any -> error -> idle
var validTransitions = map[AppState][]AppState{
	StateIdle:        {StateCalibrating, StateTracking, StateError},
	StateCalibrating: {StateIdle, StateError},
	StateTracking:    {StatePaused, StateIdle, StateError},
	StatePaused:      {StateTracking, StateIdle, StateError},
	StateError:       {StateIdle},
}

// CanTransition reports whether from -> to is allowed.
// Staying in the same state is always allowed.
func CanTransition(from, to AppState) bool {
	if from == to {
		return true
	}
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ErrorInfo describes why the application entered StateError.
type ErrorInfo struct {
	Type        string `json:"type"` // e.g. "CalibrationError", "CameraError"
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
	Details     string `json:"details,omitempty"`
}

// StateMachine tracks the application state. Owned by the processing loop.
type StateMachine struct {
	current  AppState
	previous AppState
	err      *ErrorInfo
}

// NewStateMachine starts in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{current: StateIdle, previous: StateIdle}
}

// Current returns the active state.
func (m *StateMachine) Current() AppState {
	return m.current
}

// Previous returns the state before the last transition.
func (m *StateMachine) Previous() AppState {
	return m.previous
}

// CanTransitionTo reports whether the current state may move to s.
func (m *StateMachine) CanTransitionTo(s AppState) bool {
	return CanTransition(m.current, s)
}

// TransitionTo moves to s or returns a *TransitionError.
// Leaving StateError clears the error.
func (m *StateMachine) TransitionTo(s AppState) error {
	if !m.CanTransitionTo(s) {
		return &TransitionError{From: m.current, To: s}
	}
	if s == m.current {
		return nil
	}
	m.previous = m.current
	m.current = s
	if s != StateError {
		m.err = nil
	}
	return nil
}

// SetError enters StateError. Every state may fail.
func (m *StateMachine) SetError(info ErrorInfo) {
	m.previous = m.current
	m.current = StateError
	m.err = &info
}

// Error returns the active error, or nil.
func (m *StateMachine) Error() *ErrorInfo {
	if m.err == nil {
		return nil
	}
	info := *m.err
	return &info
}

// ClearError returns from StateError to StateIdle.
func (m *StateMachine) ClearError() {
	if m.current == StateError {
		m.TransitionTo(StateIdle)
	}
}

// Reset forces StateIdle.
func (m *StateMachine) Reset() {
	m.previous = m.current
	m.current = StateIdle
	m.err = nil
}
