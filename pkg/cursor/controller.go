package cursor

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultMinInterval caps pointer updates at 100 Hz.
const DefaultMinInterval = 10 * time.Millisecond

// Stats counts pointer updates.
type Stats struct {
	TotalMoves    int64   `json:"total_moves"`
	SkippedMoves  int64   `json:"skipped_moves"`
	FailedMoves   int64   `json:"failed_moves"`
	EffectiveRate float64 `json:"effective_rate"` // total / (total + skipped)
}

// Controller wraps a Mover with the safety checks:
//   - screen bounds clamping
//   - a minimum interval between updates
//   - an enable flag for emergency stop
type Controller struct {
	mover       Mover
	minInterval time.Duration
	logger      *slog.Logger
	now         func() time.Time

	mu       sync.Mutex
	enabled  bool
	width    int
	height   int
	lastMove time.Time
	total    int64
	skipped  int64
	failed   int64
}

// NewController creates an enabled controller sized from the mover.
// A minInterval of 0 uses DefaultMinInterval.
func NewController(mover Mover, minInterval time.Duration, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}

	w, h := mover.ScreenSize()
	c := &Controller{
		mover:       mover,
		minInterval: minInterval,
		logger:      logger,
		now:         time.Now,
		enabled:     true,
		width:       w,
		height:      h,
	}

	logger.Info("cursor controller initialized", "width", w, "height", h, "min_interval", minInterval)
	return c
}

// MoveTo moves the pointer, returning false when disabled, rate limited or
// the mover failed.
func (c *Controller) MoveTo(x, y int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return false
	}

	now := c.now()
	if !c.lastMove.IsZero() && now.Sub(c.lastMove) < c.minInterval {
		c.skipped++
		return false
	}

	cx := max(0, min(x, c.width-1))
	cy := max(0, min(y, c.height-1))
	if cx != x || cy != y {
		c.logger.Debug("cursor position clamped", "x", x, "y", y, "cx", cx, "cy", cy)
	}

	if err := c.mover.MoveTo(cx, cy); err != nil {
		c.failed++
		c.logger.Error("failed to move cursor", "error", err)
		return false
	}

	c.lastMove = now
	c.total++
	return true
}

// Enable resumes pointer control.
func (c *Controller) Enable() {
	c.mu.Lock()
	c.enabled = true
	c.mu.Unlock()
	c.logger.Info("cursor control enabled")
}

// Disable is the emergency stop.
func (c *Controller) Disable() {
	c.mu.Lock()
	c.enabled = false
	c.mu.Unlock()
	c.logger.Info("cursor control disabled")
}

// Enabled reports whether moves are applied.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// UpdateScreenSize changes the clamp bounds.
func (c *Controller) UpdateScreenSize(width, height int) {
	c.mu.Lock()
	c.width, c.height = width, height
	c.mu.Unlock()
	c.logger.Info("screen size updated", "width", width, "height", height)
}

// ScreenSize returns the clamp bounds.
func (c *Controller) ScreenSize() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Stats returns the move counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{TotalMoves: c.total, SkippedMoves: c.skipped, FailedMoves: c.failed}
	if attempts := c.total + c.skipped; attempts > 0 {
		s.EffectiveRate = float64(c.total) / float64(attempts)
	}
	return s
}

// ResetStats zeroes the counters.
func (c *Controller) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total, c.skipped, c.failed = 0, 0, 0
}
