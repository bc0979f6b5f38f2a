// Package cursor moves the operating-system pointer with rate limiting,
// bounds checking and an emergency stop. The desktop subpackage provides
// the real pointer.
package cursor

import (
	"errors"
	"sync"
)

// ErrDisabled is returned by movers that refuse to move.
var ErrDisabled = errors.New("cursor: control disabled")

// Mover is the OS pointer primitive.
type Mover interface {
	// MoveTo places the pointer at absolute screen pixels.
	MoveTo(x, y int) error

	// ScreenSize returns the primary display resolution.
	ScreenSize() (width, height int)
}

// Move is one recorded MockMover call.
type Move struct {
	X, Y int
}

// MockMover records moves instead of touching the real pointer.
type MockMover struct {
	mu     sync.Mutex
	width  int
	height int
	moves  []Move
	err    error
}

// MockMoverOption configures a MockMover.
type MockMoverOption func(*MockMover)

// WithMoveError makes every MoveTo fail with err.
func WithMoveError(err error) MockMoverOption {
	return func(m *MockMover) {
		m.err = err
	}
}

// NewMockMover creates a mock display of the given size.
func NewMockMover(width, height int, opts ...MockMoverOption) *MockMover {
	m := &MockMover{width: width, height: height}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MoveTo records the move.
func (m *MockMover) MoveTo(x, y int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.moves = append(m.moves, Move{X: x, Y: y})
	return nil
}

// ScreenSize returns the configured size.
func (m *MockMover) ScreenSize() (int, int) {
	return m.width, m.height
}

// Moves returns a copy of all recorded moves.
func (m *MockMover) Moves() []Move {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Move, len(m.moves))
	copy(out, m.moves)
	return out
}

// Last returns the most recent move.
func (m *MockMover) Last() (Move, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.moves) == 0 {
		return Move{}, false
	}
	return m.moves[len(m.moves)-1], true
}
