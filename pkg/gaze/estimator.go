package gaze

import (
	"log/slog"
	"math"
)

// Estimator computes gaze from iris position relative to the eye corners.
//
// It assumes roughly horizontal eyes and works best within about ±30° of the
// screen centre; head movement after calibration degrades accuracy.
type Estimator struct {
	logger *slog.Logger

	last    Vector
	hasLast bool
	held    int // consecutive frames answered with the last valid gaze
}

// NewEstimator creates a gaze estimator.
func NewEstimator(logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{logger: logger}
}

// Estimate returns the gaze for a face, or false when the eye geometry is
// unusable (closed eye, degenerate box).
//
// When the geometry produces non-finite values the previous valid gaze is
// returned instead; HeldFrames reports how often that happened in a row.
func (e *Estimator) Estimate(lm *Landmarks) (Vector, bool) {
	if lm == nil {
		return Vector{}, false
	}

	lx, ly, okLeft := eyeGaze(lm.LeftEye)
	rx, ry, okRight := eyeGaze(lm.RightEye)
	if !okLeft || !okRight {
		return Vector{}, false
	}

	v := Vector{
		X:          (lx + rx) / 2,
		Y:          (ly + ry) / 2,
		Confidence: lm.Confidence,
	}

	if !finite(v.X) || !finite(v.Y) {
		e.logger.Debug("gaze estimation produced non-finite values", "held", e.held+1)
		if !e.hasLast {
			return Vector{}, false
		}
		e.held++
		return e.last, true
	}

	e.last = v
	e.hasLast = true
	e.held = 0
	return v, true
}

// Last returns the last valid gaze, if any.
func (e *Estimator) Last() (Vector, bool) {
	return e.last, e.hasLast
}

// HeldFrames returns how many consecutive estimates reused the last gaze.
func (e *Estimator) HeldFrames() int {
	return e.held
}

// Reset clears the remembered gaze.
func (e *Estimator) Reset() {
	e.last = Vector{}
	e.hasLast = false
	e.held = 0
}

// eyeGaze maps the iris position inside one eye to [-1, 1] on both axes.
func eyeGaze(eye Eye) (x, y float64, ok bool) {
	width := eye.RightCorner.X - eye.LeftCorner.X
	if !(width > 0) {
		return 0, 0, false
	}
	height := eye.Bottom.Y - eye.Top.Y
	if !(height > 0) {
		return 0, 0, false
	}

	x = (eye.Iris.X-eye.LeftCorner.X)/width*2 - 1
	y = (eye.Iris.Y-eye.Top.Y)/height*2 - 1

	return clamp(x, -1, 1), clamp(y, -1, 1), true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// clamp limits a value to a range; NaN passes through.
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
