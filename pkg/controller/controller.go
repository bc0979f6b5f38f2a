// Package controller runs the camera → landmarks → gaze → calibration or
// mapping → smoothing → cursor pipeline.
//
// A single goroutine (Run) owns every stateful component. Other goroutines
// talk to it through commands and read immutable Status snapshots; results
// leave through the cursor Dispatcher and the status Publisher, neither of
// which can block frame processing.
package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-visioncursor/pkg/calibration"
	"github.com/teslashibe/go-visioncursor/pkg/cursor"
	"github.com/teslashibe/go-visioncursor/pkg/gaze"
	"github.com/teslashibe/go-visioncursor/pkg/timing"
	"github.com/teslashibe/go-visioncursor/pkg/tracking"
)

// maxFrameFailures is how many consecutive unreadable frames put the
// application into StateError.
const maxFrameFailures = 30

// statusInterval throttles per-frame status broadcasts.
const statusInterval = 100 * time.Millisecond

// VideoSource interface for capturing frames
type VideoSource interface {
	CaptureJPEG() ([]byte, error)
}

// Publisher receives status events. hub.Hub implements it.
type Publisher interface {
	Publish(eventType string, data any) error
}

// Options wires the controller's collaborators.
type Options struct {
	Calibration calibration.Config
	Tracking    tracking.Config

	ScreenWidth  int
	ScreenHeight int
	TargetFPS    float64

	Video      VideoSource
	Landmarker gaze.Landmarker
	Store      *calibration.Store // nil: calibrations are not persisted
	Cursor     *cursor.Dispatcher // nil: dry run, positions are only reported
	Publisher  Publisher          // nil: no status events

	Logger *slog.Logger
	Clock  func() time.Time
}

// FrameResult reports what one ProcessFrame call did.
type FrameResult struct {
	Success      bool             `json:"success"`
	FaceDetected bool             `json:"face_detected"`
	Gaze         *gaze.Vector     `json:"gaze,omitempty"`
	Cursor       *cursor.Position `json:"cursor,omitempty"`
	FPS          float64          `json:"fps"`
	State        AppState         `json:"-"`
}

// Controller coordinates every component of the pipeline.
type Controller struct {
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	// Owned by the processing loop
	machine    *StateMachine
	estimator  *gaze.Estimator
	calibrator *calibration.Calibrator
	mapper     *calibration.Mapper
	smoother   *tracking.Smoother
	fps        *timing.FPSCounter
	limiter    *timing.RateLimiter

	gazeConfig      tracking.Config
	width, height   int
	trackingEnabled bool
	lastCursor      *cursor.Position
	lastFace        bool
	phaseStart      time.Time
	frameFailures   int
	lastPublish     time.Time
	calErr          error
	stored          bool // the store holds a calibration file, usable or not

	// Shared with other goroutines
	mu       sync.Mutex // serializes the owner: Run iteration or inline command
	commands chan command
	running  atomic.Bool
	stopped  chan struct{}
	stopOnce sync.Once
	status   atomic.Pointer[Status]
	calData  atomic.Pointer[calibration.Data]
}

type command struct {
	name  string
	fn    func() error
	reply chan error
}

// New creates a controller in StateIdle and tries to load a stored
// calibration. A failed load is logged and reported in Status.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "controller")

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		opts:       opts,
		logger:     logger,
		now:        now,
		machine:    NewStateMachine(),
		estimator:  gaze.NewEstimator(logger),
		calibrator: calibration.NewCalibrator(opts.Calibration, opts.ScreenWidth, opts.ScreenHeight, logger),
		smoother:   tracking.NewSmoother(opts.Tracking, opts.ScreenWidth, opts.ScreenHeight),
		fps:        timing.NewFPSCounter(timing.DefaultWindow),
		limiter:    timing.NewRateLimiter(opts.TargetFPS),
		gazeConfig: opts.Tracking,
		width:      opts.ScreenWidth,
		height:     opts.ScreenHeight,
		commands:   make(chan command, 16),
		stopped:    make(chan struct{}),
	}

	if err := c.loadCalibration(); err != nil && !errors.Is(err, calibration.ErrNoCalibration) {
		c.calErr = err
		logger.Warn("stored calibration unusable", "error", err)
	}
	c.snapshot()

	logger.Info("controller initialized", "width", c.width, "height", c.height, "calibrated", c.mapper != nil)
	return c
}

// do runs fn on the owner: through the command channel while Run is active,
// inline otherwise.
func (c *Controller) do(name string, fn func() error) error {
	if !c.running.Load() {
		select {
		case <-c.stopped:
			return ErrStopped
		default:
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		err := fn()
		c.afterCommand(name, err)
		return err
	}

	cmd := command{name: name, fn: fn, reply: make(chan error, 1)}
	select {
	case c.commands <- cmd:
	case <-c.stopped:
		return ErrStopped
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-c.stopped:
		return ErrStopped
	}
}

func (c *Controller) afterCommand(name string, err error) {
	if err != nil {
		c.logger.Debug("command failed", "command", name, "error", err)
	}
	c.snapshot()
	c.publishStatus(true)
}

// --- Calibration ---

// StartCalibration begins the guided procedure. A recoverable error is
// cleared first.
func (c *Controller) StartCalibration() error {
	return c.do("start_calibration", func() error {
		c.clearRecoverableError()
		if !c.machine.CanTransitionTo(StateCalibrating) {
			return &TransitionError{From: c.machine.Current(), To: StateCalibrating}
		}

		c.calErr = nil
		c.estimator.Reset()
		c.calibrator.Start(c.opts.Calibration.TargetPositions, c.width, c.height)
		if err := c.calibrator.AdvancePhase(calibration.StateCountdown); err != nil {
			return err
		}
		c.phaseStart = c.now()
		c.fps.Reset()

		if err := c.machine.TransitionTo(StateCalibrating); err != nil {
			c.calibrator.Cancel()
			return err
		}
		c.logger.Info("calibration started", "session", c.calibrator.SessionID())
		c.publishCalibration()
		return nil
	})
}

// CancelCalibration aborts a running calibration and returns to idle.
func (c *Controller) CancelCalibration() error {
	return c.do("cancel_calibration", func() error {
		if c.machine.Current() != StateCalibrating {
			return &TransitionError{From: c.machine.Current(), To: StateIdle}
		}
		c.calibrator.Cancel()
		c.logger.Info("calibration cancelled")
		return c.machine.TransitionTo(StateIdle)
	})
}

// DeleteCalibration removes the stored calibration and forgets the mapper.
// Returns whether a stored file existed.
func (c *Controller) DeleteCalibration() (bool, error) {
	var deleted bool
	err := c.do("delete_calibration", func() error {
		c.mapper = nil
		c.calData.Store(nil)
		c.calErr = nil
		if c.opts.Store == nil {
			return nil
		}
		var err error
		deleted, err = c.opts.Store.Delete()
		if err == nil {
			c.stored = false
			c.logger.Info("calibration deleted", "existed", deleted)
		}
		return err
	})
	return deleted, err
}

// Calibration returns the calibration in use, if any.
func (c *Controller) Calibration() (*calibration.Data, bool) {
	d := c.calData.Load()
	return d, d != nil
}

// --- Tracking ---

// StartTracking begins driving the cursor. Without a mapper the stored
// calibration is loaded; a missing or incompatible one enters StateError.
func (c *Controller) StartTracking() error {
	return c.do("start_tracking", func() error {
		c.clearRecoverableError()
		if !c.machine.CanTransitionTo(StateTracking) {
			return &TransitionError{From: c.machine.Current(), To: StateTracking}
		}

		if c.mapper == nil {
			if err := c.loadCalibration(); err != nil {
				c.calErr = err
				c.machine.SetError(ErrorInfo{
					Type:        "CalibrationError",
					Message:     "No usable calibration found. Please calibrate first.",
					Recoverable: true,
					Details:     err.Error(),
				})
				c.publishError()
				return err
			}
		}

		c.setCursorEnabled(true)
		c.smoother.Reset()
		c.estimator.Reset()
		c.fps.Reset()
		c.trackingEnabled = true
		c.lastCursor = nil

		if err := c.machine.TransitionTo(StateTracking); err != nil {
			return err
		}
		c.logger.Info("tracking started")
		return nil
	})
}

// StopTracking returns to idle from tracking or paused.
func (c *Controller) StopTracking() error {
	return c.do("stop_tracking", func() error {
		cur := c.machine.Current()
		if cur != StateTracking && cur != StatePaused {
			return &TransitionError{From: cur, To: StateIdle}
		}
		c.trackingEnabled = false
		c.setCursorEnabled(false)
		c.logger.Info("tracking stopped")
		return c.machine.TransitionTo(StateIdle)
	})
}

// PauseTracking keeps processing frames but stops moving the cursor.
func (c *Controller) PauseTracking() error {
	return c.do("pause_tracking", func() error {
		if c.machine.Current() != StateTracking {
			return &TransitionError{From: c.machine.Current(), To: StatePaused}
		}
		c.setCursorEnabled(false)
		c.logger.Info("tracking paused")
		return c.machine.TransitionTo(StatePaused)
	})
}

// ResumeTracking continues from pause with a fresh smoother.
func (c *Controller) ResumeTracking() error {
	return c.do("resume_tracking", func() error {
		if c.machine.Current() != StatePaused {
			return &TransitionError{From: c.machine.Current(), To: StateTracking}
		}
		c.setCursorEnabled(true)
		c.smoother.Reset()
		c.logger.Info("tracking resumed")
		return c.machine.TransitionTo(StateTracking)
	})
}

// EnableTracking turns on cursor output while tracking.
func (c *Controller) EnableTracking() error {
	return c.do("enable_tracking", func() error {
		c.trackingEnabled = true
		c.logger.Info("cursor tracking enabled")
		return nil
	})
}

// DisableTracking is the safety switch: frames are still processed but the
// cursor is left where it is.
func (c *Controller) DisableTracking() error {
	return c.do("disable_tracking", func() error {
		c.trackingEnabled = false
		c.logger.Info("cursor tracking disabled")
		return nil
	})
}

// ToggleTracking flips the safety switch and returns the new value.
func (c *Controller) ToggleTracking() (bool, error) {
	var enabled bool
	err := c.do("toggle_tracking", func() error {
		c.trackingEnabled = !c.trackingEnabled
		enabled = c.trackingEnabled
		c.logger.Info("cursor tracking toggled", "enabled", enabled)
		return nil
	})
	return enabled, err
}

// --- Tuning ---

// UpdateSensitivity changes the displacement multiplier.
func (c *Controller) UpdateSensitivity(sensitivity float64) error {
	return c.do("update_sensitivity", func() error {
		cfg := c.gazeConfig
		cfg.Sensitivity = sensitivity
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.applyGazeConfig(cfg)
		return nil
	})
}

// UpdateTuning applies the fields present in u.
func (c *Controller) UpdateTuning(u tracking.TuningUpdate) error {
	return c.do("update_tuning", func() error {
		cfg := u.Apply(c.gazeConfig)
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.applyGazeConfig(cfg)
		return nil
	})
}

// Tuning returns the active tuning parameters.
func (c *Controller) Tuning() tracking.TuningParams {
	return c.Status().Tuning
}

func (c *Controller) applyGazeConfig(cfg tracking.Config) {
	c.gazeConfig = cfg
	c.smoother.UpdateConfig(cfg)
	c.logger.Debug("gaze config updated", "sensitivity", cfg.Sensitivity, "smoothing", cfg.SmoothingFactor)
}

// UpdateScreenSize adapts to a new display resolution. A calibration made
// for another resolution is dropped.
func (c *Controller) UpdateScreenSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", width, height)
	}
	return c.do("update_screen_size", func() error {
		c.width, c.height = width, height
		c.smoother.UpdateScreenSize(width, height)
		if c.opts.Cursor != nil {
			c.opts.Cursor.Controller().UpdateScreenSize(width, height)
		}
		if d := c.calData.Load(); d != nil && !d.IsCompatibleWithScreen(width, height) {
			c.logger.Warn("calibration no longer matches screen",
				"calibrated", fmt.Sprintf("%dx%d", d.ScreenWidth, d.ScreenHeight),
				"current", fmt.Sprintf("%dx%d", width, height))
			c.mapper = nil
			c.calData.Store(nil)
		}
		return nil
	})
}

// Shutdown disables the cursor and cancels any calibration.
func (c *Controller) Shutdown() {
	c.do("shutdown", func() error {
		c.shutdownLocked()
		return nil
	})
}

func (c *Controller) shutdownLocked() {
	c.logger.Info("shutting down controller")
	c.setCursorEnabled(false)
	c.trackingEnabled = false
	c.calibrator.Cancel()
	c.machine.Reset()
}

// --- Internals ---

func (c *Controller) clearRecoverableError() {
	if info := c.machine.Error(); info != nil && info.Recoverable {
		c.machine.ClearError()
	}
}

func (c *Controller) setCursorEnabled(on bool) {
	if c.opts.Cursor == nil {
		return
	}
	if on {
		c.opts.Cursor.Controller().Enable()
	} else {
		c.opts.Cursor.Controller().Disable()
	}
}

// loadCalibration reads the store and builds the mapper.
func (c *Controller) loadCalibration() error {
	if c.opts.Store == nil {
		return calibration.ErrNoCalibration
	}

	data, err := c.opts.Store.Load()
	c.stored = !errors.Is(err, calibration.ErrNoCalibration)
	if err != nil {
		return err
	}

	if !data.IsCompatibleWithScreen(c.width, c.height) {
		return fmt.Errorf("%w: calibrated for %dx%d, current %dx%d",
			ErrScreenMismatch, data.ScreenWidth, data.ScreenHeight, c.width, c.height)
	}

	return c.useCalibration(data)
}

func (c *Controller) useCalibration(data *calibration.Data) error {
	mapper, err := calibration.NewMapper(data)
	if err != nil {
		return err
	}
	if dx, dy := mapper.Degenerate(); dx || dy {
		c.logger.Warn("degenerate calibration axis, using screen midpoint", "x", dx, "y", dy)
	}

	c.mapper = mapper
	c.calData.Store(data)
	c.logger.Info("calibration loaded", "timestamp", data.Timestamp, "points", len(data.Points))
	return nil
}
