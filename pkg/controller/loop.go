package controller

import (
	"context"
	"errors"
	"time"

	"github.com/teslashibe/go-visioncursor/pkg/calibration"
	"github.com/teslashibe/go-visioncursor/pkg/cursor"
	"github.com/teslashibe/go-visioncursor/pkg/gaze"
	"github.com/teslashibe/go-visioncursor/pkg/hub"
	"github.com/teslashibe/go-visioncursor/pkg/tracking"
)

// errTargetTimeout is recorded when a calibration target never fills up.
var errTargetTimeout = errors.New("calibration target timed out")

// Run owns the pipeline until ctx is cancelled. While calibrating, tracking
// or paused it processes one frame per tick; otherwise it waits for commands.
// Run may be called once.
func (c *Controller) Run(ctx context.Context) error {
	c.running.Store(true)
	defer func() {
		c.mu.Lock()
		c.shutdownLocked()
		c.snapshot()
		c.mu.Unlock()

		c.running.Store(false)
		c.stopOnce.Do(func() { close(c.stopped) })
	}()

	c.logger.Info("processing loop started", "target_fps", c.opts.TargetFPS)

	for {
		if c.active() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cmd := <-c.commands:
				c.execute(cmd)
				continue
			default:
			}

			c.mu.Lock()
			c.ProcessFrame()
			c.mu.Unlock()

			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-c.commands:
			c.execute(cmd)
		}
	}
}

func (c *Controller) execute(cmd command) {
	c.mu.Lock()
	err := cmd.fn()
	c.afterCommand(cmd.name, err)
	c.mu.Unlock()
	cmd.reply <- err
}

// active reports whether frames need processing. Only the owner calls it.
func (c *Controller) active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.machine.Current() {
	case StateCalibrating, StateTracking, StatePaused:
		return true
	}
	return false
}

// ProcessFrame runs one frame through the pipeline. It must only be called
// by the owner of the controller: Run, or a test driving it directly.
func (c *Controller) ProcessFrame() FrameResult {
	now := c.now()
	state := c.machine.Current()
	result := FrameResult{FPS: c.fps.Tick(), State: state}

	defer func() {
		c.lastFace = result.FaceDetected
		c.snapshot()
		c.publishStatus(false)
	}()

	// Timers advance even when no face is visible
	if state == StateCalibrating {
		if !c.tickCalibration(now) {
			return result
		}
	}

	if c.opts.Video == nil || c.opts.Landmarker == nil {
		return result
	}

	frame, err := c.opts.Video.CaptureJPEG()
	if err != nil {
		c.frameFailed(err)
		return result
	}

	landmarks, err := c.opts.Landmarker.ProcessFrame(frame)
	if err != nil {
		c.frameFailed(err)
		return result
	}
	c.frameFailures = 0

	if landmarks == nil || landmarks.Confidence < c.gazeConfig.MinFaceConfidence {
		c.freezeCursor(state, &result)
		return result
	}
	result.FaceDetected = true

	v, ok := c.estimator.Estimate(landmarks)
	if !ok {
		c.freezeCursor(state, &result)
		return result
	}
	result.Gaze = &v

	switch state {
	case StateCalibrating:
		c.processCalibrationGaze(v, now)
	case StateTracking:
		result.Cursor = c.processTrackingGaze(v)
	}

	result.Success = true
	return result
}

// freezeCursor reports the last cursor position when the face is lost.
func (c *Controller) freezeCursor(state AppState, result *FrameResult) {
	if state == StateTracking && c.gazeConfig.FreezeOnFaceLost && c.lastCursor != nil {
		p := *c.lastCursor
		result.Cursor = &p
	}
}

func (c *Controller) frameFailed(err error) {
	c.frameFailures++
	c.logger.Debug("frame failed", "error", err, "consecutive", c.frameFailures)

	if c.frameFailures < maxFrameFailures {
		return
	}

	c.frameFailures = 0
	c.calibrator.Cancel()
	c.trackingEnabled = false
	c.setCursorEnabled(false)
	c.machine.SetError(ErrorInfo{
		Type:        "CameraError",
		Message:     "Camera or landmark detector stopped delivering frames",
		Recoverable: true,
		Details:     err.Error(),
	})
	c.logger.Error("too many failed frames", "error", err)
	c.publishError()
}

// tickCalibration applies the countdown and target timeout. Returns false
// when the calibration ended.
func (c *Controller) tickCalibration(now time.Time) bool {
	elapsed := now.Sub(c.phaseStart)

	switch c.calibrator.State() {
	case calibration.StateCountdown:
		if elapsed >= c.opts.Calibration.Countdown {
			if err := c.calibrator.AdvancePhase(calibration.StateCollecting); err != nil {
				c.logger.Error("calibration phase change failed", "error", err)
				return true
			}
			c.phaseStart = now
			c.logger.Debug("calibration sample collection started")
			c.publishCalibration()
		}

	case calibration.StateCollecting:
		timeout := c.opts.Calibration.TargetTimeout
		if timeout > 0 && elapsed >= timeout {
			cur, total := c.calibrator.Progress()
			c.logger.Warn("calibration target timed out", "target", cur, "total", total, "timeout", timeout)
			c.calibrator.Cancel()
			c.calErr = errTargetTimeout
			c.machine.TransitionTo(StateIdle)
			c.publishError()
			return false
		}
	}
	return true
}

func (c *Controller) processCalibrationGaze(v gaze.Vector, now time.Time) {
	if c.calibrator.State() != calibration.StateCollecting {
		return
	}

	c.calibrator.AddSample(v)

	switch c.calibrator.State() {
	case calibration.StateCountdown:
		// Target completed, moved to the next one
		c.phaseStart = now
		c.publishCalibration()

	case calibration.StateCompleted:
		c.finalizeCalibration()

	case calibration.StateIdle:
		// Aggregation or validation failed; the user can retry
		c.calErr = c.calibrator.LastError()
		c.logger.Warn("calibration failed", "error", c.calErr)
		c.machine.TransitionTo(StateIdle)
		c.publishError()
	}
}

func (c *Controller) finalizeCalibration() {
	data := c.calibrator.Data()

	if c.opts.Store != nil {
		if err := c.opts.Store.Save(data); err != nil {
			c.machine.SetError(ErrorInfo{
				Type:        "StorageError",
				Message:     "Failed to save calibration",
				Recoverable: true,
				Details:     err.Error(),
			})
			c.publishError()
			return
		}
		c.stored = true
	}

	if err := c.useCalibration(data); err != nil {
		c.calErr = err
		c.machine.SetError(ErrorInfo{
			Type:        "CalibrationError",
			Message:     "Calibration produced an unusable mapping",
			Recoverable: true,
			Details:     err.Error(),
		})
		c.publishError()
		return
	}

	c.smoother.Reset()
	c.machine.TransitionTo(StateIdle)
	c.logger.Info("calibration completed", "session", c.calibrator.SessionID())
	c.publishCalibration()
}

func (c *Controller) processTrackingGaze(v gaze.Vector) *cursor.Position {
	if c.mapper == nil {
		return nil
	}
	if !c.trackingEnabled {
		if c.lastCursor == nil {
			return nil
		}
		p := *c.lastCursor
		return &p
	}

	rawX, rawY := c.mapper.Map(v)
	smoothed := c.smoother.Smooth(rawX, rawY)

	p := cursor.Position{X: smoothed.X, Y: smoothed.Y}
	if c.opts.Cursor != nil {
		c.opts.Cursor.Submit(p)
	}
	c.lastCursor = &p

	out := p
	return &out
}

// --- Status ---

// CalibrationStatus describes a running or finished calibration.
type CalibrationStatus struct {
	Session   string                  `json:"session"`
	Phase     string                  `json:"phase"`
	Target    *calibration.TargetInfo `json:"target,omitempty"`
	Countdown float64                 `json:"countdown_remaining"` // seconds
}

// Status is an immutable snapshot for other goroutines.
type Status struct {
	State            string                `json:"state"`
	Error            *ErrorInfo            `json:"error,omitempty"`
	TrackingEnabled  bool                  `json:"tracking_enabled"`
	HasCalibration   bool                  `json:"has_calibration"`
	CalibrationError string                `json:"calibration_error,omitempty"`
	Calibration      *CalibrationStatus    `json:"calibration,omitempty"`
	FaceDetected     bool                  `json:"face_detected"`
	Cursor           *cursor.Position      `json:"cursor,omitempty"`
	FPS              float64               `json:"fps"`
	ScreenWidth      int                   `json:"screen_width"`
	ScreenHeight     int                   `json:"screen_height"`
	Tuning           tracking.TuningParams `json:"tuning"`
	CursorStats      *cursor.Stats         `json:"cursor_stats,omitempty"`
}

// Status returns the latest snapshot.
func (c *Controller) Status() Status {
	if s := c.status.Load(); s != nil {
		return *s
	}
	return Status{State: StateIdle.String()}
}

// State returns the current application state.
func (c *Controller) State() AppState {
	switch c.Status().State {
	case StateCalibrating.String():
		return StateCalibrating
	case StateTracking.String():
		return StateTracking
	case StatePaused.String():
		return StatePaused
	case StateError.String():
		return StateError
	}
	return StateIdle
}

// snapshot publishes a new Status. Owner only.
func (c *Controller) snapshot() {
	s := &Status{
		State:           c.machine.Current().String(),
		Error:           c.machine.Error(),
		TrackingEnabled: c.trackingEnabled,
		HasCalibration:  c.mapper != nil || c.stored,
		FaceDetected:    c.lastFace,
		FPS:             c.fps.FPS(),
		ScreenWidth:     c.width,
		ScreenHeight:    c.height,
		Tuning:          tracking.TuningFromConfig(c.gazeConfig),
	}
	if c.calErr != nil {
		s.CalibrationError = c.calErr.Error()
	}
	if c.lastCursor != nil {
		p := *c.lastCursor
		s.Cursor = &p
	}
	if c.opts.Cursor != nil {
		stats := c.opts.Cursor.Controller().Stats()
		s.CursorStats = &stats
	}
	if c.machine.Current() == StateCalibrating {
		s.Calibration = c.calibrationStatus()
	}
	c.status.Store(s)
}

func (c *Controller) calibrationStatus() *CalibrationStatus {
	cs := &CalibrationStatus{
		Session: c.calibrator.SessionID(),
		Phase:   c.calibrator.State().String(),
	}
	if info, ok := c.calibrator.CurrentTarget(); ok {
		cs.Target = &info
	}
	if c.calibrator.State() == calibration.StateCountdown {
		remaining := c.opts.Calibration.Countdown - c.now().Sub(c.phaseStart)
		cs.Countdown = max(remaining.Seconds(), 0)
	}
	return cs
}

func (c *Controller) publishStatus(force bool) {
	if c.opts.Publisher == nil {
		return
	}
	now := c.now()
	if !force && now.Sub(c.lastPublish) < statusInterval {
		return
	}
	c.lastPublish = now
	if err := c.opts.Publisher.Publish(hub.EventStatus, c.Status()); err != nil {
		c.logger.Debug("status publish failed", "error", err)
	}
}

func (c *Controller) publishCalibration() {
	if c.opts.Publisher == nil {
		return
	}
	cs := c.calibrationStatus()
	if c.calibrator.State() == calibration.StateCompleted {
		cs.Phase = calibration.StateCompleted.String()
	}
	c.opts.Publisher.Publish(hub.EventCalibration, cs)
}

func (c *Controller) publishError() {
	if c.opts.Publisher == nil {
		return
	}
	payload := map[string]any{"state": c.machine.Current().String()}
	if info := c.machine.Error(); info != nil {
		payload["error"] = info
	}
	if c.calErr != nil {
		payload["calibration_error"] = c.calErr.Error()
	}
	c.opts.Publisher.Publish(hub.EventError, payload)
}
