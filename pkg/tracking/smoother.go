package tracking

import (
	"log/slog"
	"math"
)

// SmoothedGaze is a filtered screen position. Plain data, safe to hand off.
type SmoothedGaze struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Velocity float64 `json:"velocity"` // Applied displacement before EMA (px/frame)
}

// Smoother turns a jittery stream of raw screen points into cursor motion.
//
// Per frame, in order:
//  1. first frame after Reset: adopt the raw point
//  2. dead zone: ignore moves shorter than the dead-zone radius
//  3. sensitivity: scale the displacement
//  4. velocity clamp: cap the displacement at MaxVelocity
//  5. EMA: move alpha of the displacement
//  6. clamp to screen
//
// Owned by the processing loop; not safe for concurrent use.
type Smoother struct {
	config Config
	width  int
	height int

	deadZonePixels int

	x, y        float64
	initialized bool

	logger *slog.Logger
}

// NewSmoother creates a smoother for the given screen size.
func NewSmoother(config Config, width, height int) *Smoother {
	s := &Smoother{
		config: config,
		width:  width,
		height: height,
		logger: slog.Default().With("component", "smoother"),
	}
	s.recomputeDeadZone()

	s.logger.Info("smoother initialized",
		"smoothing", config.SmoothingFactor,
		"dead_zone_px", s.deadZonePixels,
		"max_velocity", config.MaxVelocity)
	return s
}

// Smooth filters one raw screen point.
func (s *Smoother) Smooth(rawX, rawY float64) SmoothedGaze {
	if !s.initialized {
		s.x, s.y = rawX, rawY
		s.initialized = true
		return SmoothedGaze{X: int(rawX), Y: int(rawY)}
	}

	dx := rawX - s.x
	dy := rawY - s.y
	distance := math.Hypot(dx, dy)

	if distance < float64(s.deadZonePixels) {
		return SmoothedGaze{X: int(s.x), Y: int(s.y)}
	}

	dx *= s.config.Sensitivity
	dy *= s.config.Sensitivity
	distance *= s.config.Sensitivity

	if distance > s.config.MaxVelocity {
		scale := s.config.MaxVelocity / distance
		dx *= scale
		dy *= scale
		distance = s.config.MaxVelocity
	}

	alpha := s.config.SmoothingFactor
	s.x = clamp(s.x+alpha*dx, 0, float64(s.width-1))
	s.y = clamp(s.y+alpha*dy, 0, float64(s.height-1))

	return SmoothedGaze{X: int(s.x), Y: int(s.y), Velocity: distance}
}

// Reset forgets the current position. The next Smooth adopts its input.
func (s *Smoother) Reset() {
	s.initialized = false
	s.x, s.y = 0, 0
	s.logger.Debug("smoother reset")
}

// UpdateConfig swaps parameters without resetting position.
func (s *Smoother) UpdateConfig(config Config) {
	s.config = config
	s.recomputeDeadZone()
	s.logger.Debug("smoother config updated", "smoothing", config.SmoothingFactor, "dead_zone_px", s.deadZonePixels)
}

// UpdateScreenSize changes the clamp bounds and dead zone without resetting position.
func (s *Smoother) UpdateScreenSize(width, height int) {
	s.width = width
	s.height = height
	s.recomputeDeadZone()
	s.logger.Info("screen size updated", "width", width, "height", height)
}

// Config returns the active parameters.
func (s *Smoother) Config() Config {
	return s.config
}

// Position returns the current smoothed position, if any.
func (s *Smoother) Position() (x, y int, ok bool) {
	if !s.initialized {
		return 0, 0, false
	}
	return int(s.x), int(s.y), true
}

// DeadZonePixels returns the dead-zone radius in pixels.
func (s *Smoother) DeadZonePixels() int {
	return s.deadZonePixels
}

func (s *Smoother) recomputeDeadZone() {
	s.deadZonePixels = int(s.config.DeadZoneRadius * float64(min(s.width, s.height)))
}

// clamp limits a value to a range
func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
