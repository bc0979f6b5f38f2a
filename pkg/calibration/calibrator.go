package calibration

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/teslashibe/go-visioncursor/pkg/gaze"
)

// State is the phase of the guided procedure.
type State int

const (
	// StateIdle means no procedure is running, or one was aborted.
	StateIdle State = iota
	// StateCountdown shows the next target while the user settles.
	StateCountdown
	// StateCollecting gathers samples for the current target.
	StateCollecting
	// StateCompleted means every target was collected and Data is ready.
	StateCompleted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCountdown:
		return "countdown"
	case StateCollecting:
		return "collecting"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Target is one guided fixation point and the samples gathered for it.
type Target struct {
	Index   int
	ScreenX float64 // pixels
	ScreenY float64 // pixels
	Samples []gaze.Vector
}

// TargetInfo is a read-only snapshot of the active target.
type TargetInfo struct {
	Index         int     `json:"index"`
	Total         int     `json:"total"`
	ScreenX       float64 `json:"screen_x"`
	ScreenY       float64 `json:"screen_y"`
	SampleCount   int     `json:"sample_count"`
	SamplesNeeded int     `json:"samples_needed"`
	State         string  `json:"state"`
}

// Calibrator runs the guided procedure:
//
//  1. show a target, countdown (timed by the caller)
//  2. collect SamplesPerPoint gaze samples
//  3. repeat for every target
//  4. trimmed-mean each target and assemble Data
//
// It is owned by a single processing loop and is not safe for concurrent use.
type Calibrator struct {
	cfg        Config
	aggregator Aggregator
	logger     *slog.Logger

	width  int
	height int

	state     State
	current   int
	targets   []Target
	data      *Data
	lastErr   error
	sessionID string
}

// NewCalibrator creates a calibrator for the given screen size.
func NewCalibrator(cfg Config, width, height int, logger *slog.Logger) *Calibrator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Calibrator{
		cfg:        cfg,
		aggregator: NewAggregator(cfg.MinSamples),
		logger:     logger,
		width:      width,
		height:     height,
	}
	logger.Info("calibrator initialized", "width", width, "height", height)
	return c
}

// Start resets the procedure for the given targets and screen size.
// The calibrator is left in StateIdle until AdvancePhase(StateCountdown).
func (c *Calibrator) Start(positions []NormalizedPosition, width, height int) {
	c.width = width
	c.height = height
	c.state = StateIdle
	c.current = 0
	c.data = nil
	c.lastErr = nil
	c.sessionID = uuid.New().String()

	c.targets = make([]Target, len(positions))
	for i, p := range positions {
		c.targets[i] = Target{
			Index:   i,
			ScreenX: p.X * float64(width),
			ScreenY: p.Y * float64(height),
		}
	}

	c.logger.Info("calibration started",
		"session", c.sessionID, "targets", len(c.targets), "width", width, "height", height)
}

// AdvancePhase applies an externally timed phase change. Allowed:
// idle→countdown (begin the first target, after Start) and
// countdown→collecting (the countdown elapsed).
func (c *Calibrator) AdvancePhase(next State) error {
	switch {
	case c.state == next:
		return nil
	case c.state == StateIdle && next == StateCountdown && len(c.targets) > 0 && c.current < len(c.targets):
	case c.state == StateCountdown && next == StateCollecting:
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPhase, c.state, next)
	}

	c.state = next
	c.logger.Debug("calibration phase", "session", c.sessionID, "target", c.current, "state", next)
	return nil
}

// AddSample records a gaze sample for the current target.
// Returns false when not collecting.
func (c *Calibrator) AddSample(v gaze.Vector) bool {
	if c.state != StateCollecting {
		return false
	}

	target := &c.targets[c.current]
	target.Samples = append(target.Samples, v)

	if len(target.Samples) >= c.cfg.SamplesPerPoint {
		c.completeCurrentTarget()
	}
	return true
}

// completeCurrentTarget moves on to the next target or finalizes.
func (c *Calibrator) completeCurrentTarget() {
	c.logger.Info("calibration target completed",
		"session", c.sessionID, "target", c.current, "samples", len(c.targets[c.current].Samples))

	c.current++
	if c.current >= len(c.targets) {
		c.finalize()
		return
	}
	c.state = StateCountdown
}

// finalize aggregates every target. Any failure aborts to idle with no data.
func (c *Calibrator) finalize() {
	points := make([]Point, 0, len(c.targets))

	for _, t := range c.targets {
		gx, gy, err := c.aggregator.Aggregate(t.Samples, c.cfg.OutlierTrimPercent)
		if err != nil {
			var ise *InsufficientSamplesError
			if errors.As(err, &ise) {
				ise.Target = t.Index
			}
			c.abort(err)
			return
		}

		points = append(points, Point{
			ScreenX:     t.ScreenX,
			ScreenY:     t.ScreenY,
			GazeX:       gx,
			GazeY:       gy,
			SampleCount: len(t.Samples),
		})
	}

	data := NewData(c.width, c.height, points)
	if err := data.Validate(); err != nil {
		c.abort(err)
		return
	}

	c.data = data
	c.targets = nil
	c.state = StateCompleted
	c.logger.Info("calibration finalized", "session", c.sessionID, "points", len(points))
}

func (c *Calibrator) abort(err error) {
	c.logger.Error("calibration finalization failed", "session", c.sessionID, "error", err)
	c.lastErr = err
	c.data = nil
	c.targets = nil
	c.current = 0
	c.state = StateIdle
}

// Cancel discards all in-progress buffers and returns to idle.
func (c *Calibrator) Cancel() {
	if c.state == StateCountdown || c.state == StateCollecting {
		c.logger.Info("calibration cancelled", "session", c.sessionID, "target", c.current)
	}
	c.targets = nil
	c.current = 0
	c.data = nil
	c.state = StateIdle
}

// CurrentTarget returns the active target while counting down or collecting.
func (c *Calibrator) CurrentTarget() (TargetInfo, bool) {
	if c.state != StateCountdown && c.state != StateCollecting {
		return TargetInfo{}, false
	}
	if c.current < 0 || c.current >= len(c.targets) {
		return TargetInfo{}, false
	}

	t := c.targets[c.current]
	return TargetInfo{
		Index:         t.Index,
		Total:         len(c.targets),
		ScreenX:       t.ScreenX,
		ScreenY:       t.ScreenY,
		SampleCount:   len(t.Samples),
		SamplesNeeded: c.cfg.SamplesPerPoint,
		State:         c.state.String(),
	}, true
}

// State returns the current phase.
func (c *Calibrator) State() State {
	return c.state
}

// Data returns the finished calibration, or nil.
func (c *Calibrator) Data() *Data {
	return c.data
}

// LastError returns why the most recent finalization failed, if it did.
func (c *Calibrator) LastError() error {
	return c.lastErr
}

// Progress returns (current target index, total targets).
func (c *Calibrator) Progress() (int, int) {
	return c.current, len(c.targets)
}

// SessionID identifies the current or most recent run in logs.
func (c *Calibrator) SessionID() string {
	return c.sessionID
}
