// Package desktop drives the operating-system pointer through robotgo.
package desktop

import (
	"github.com/go-vgo/robotgo"

	"github.com/teslashibe/go-visioncursor/pkg/cursor"
)

var _ cursor.Mover = (*Mover)(nil)

// Mover moves the real pointer on the primary display.
type Mover struct{}

// NewMover returns a mover for the primary display.
func NewMover() *Mover {
	return &Mover{}
}

// MoveTo implements cursor.Mover.
func (*Mover) MoveTo(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

// ScreenSize implements cursor.Mover.
func (*Mover) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

// Position returns the current pointer location.
func (*Mover) Position() (int, int) {
	return robotgo.Location()
}
