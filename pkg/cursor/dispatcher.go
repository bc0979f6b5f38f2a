package cursor

import (
	"context"
	"sync/atomic"
)

// Position is a target pointer location.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Dispatcher hands positions from the processing loop to the pointer on its
// own goroutine. Submit never blocks; an unconsumed position is replaced by
// the newer one.
type Dispatcher struct {
	ctrl    *Controller
	pending chan Position

	submitted atomic.Int64
	replaced  atomic.Int64
}

// NewDispatcher creates a dispatcher for ctrl. Call Run to start it.
func NewDispatcher(ctrl *Controller) *Dispatcher {
	return &Dispatcher{
		ctrl:    ctrl,
		pending: make(chan Position, 1),
	}
}

// Submit queues p, replacing any position not yet applied.
// Safe for a single producer.
func (d *Dispatcher) Submit(p Position) {
	d.submitted.Add(1)
	for {
		select {
		case d.pending <- p:
			return
		default:
		}

		select {
		case <-d.pending:
			d.replaced.Add(1)
		default:
		}
	}
}

// Run applies positions until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-d.pending:
			d.ctrl.MoveTo(p.X, p.Y)
		}
	}
}

// Controller returns the wrapped controller.
func (d *Dispatcher) Controller() *Controller {
	return d.ctrl
}

// Replaced returns how many positions were superseded before being applied.
func (d *Dispatcher) Replaced() int64 {
	return d.replaced.Load()
}

// Submitted returns how many positions were queued.
func (d *Dispatcher) Submitted() int64 {
	return d.submitted.Load()
}
