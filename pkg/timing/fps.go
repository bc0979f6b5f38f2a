// Package timing provides frame-rate measurement and pacing.
package timing

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is the number of frame intervals averaged by FPSCounter.
const DefaultWindow = 30

// FPSCounter measures frame rate over a sliding window.
type FPSCounter struct {
	mu        sync.Mutex
	window    int
	intervals []time.Duration
	last      time.Time
	now       func() time.Time
}

// NewFPSCounter creates a counter. A window below 1 uses DefaultWindow.
func NewFPSCounter(window int) *FPSCounter {
	if window < 1 {
		window = DefaultWindow
	}
	return &FPSCounter{window: window, now: time.Now}
}

// Tick records a frame and returns the current rate.
func (f *FPSCounter) Tick() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if !f.last.IsZero() {
		f.intervals = append(f.intervals, now.Sub(f.last))
		if len(f.intervals) > f.window {
			f.intervals = f.intervals[1:]
		}
	}
	f.last = now

	return f.fpsLocked()
}

// FPS returns the current rate, or 0 before two frames.
func (f *FPSCounter) FPS() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fpsLocked()
}

func (f *FPSCounter) fpsLocked() float64 {
	if len(f.intervals) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range f.intervals {
		sum += d
	}
	avg := sum.Seconds() / float64(len(f.intervals))
	if avg <= 0 {
		return 0
	}
	return 1 / avg
}

// Reset forgets all frames.
func (f *FPSCounter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intervals = nil
	f.last = time.Time{}
}

// RateLimiter paces a loop to a target frame rate.
type RateLimiter struct {
	interval time.Duration
	last     time.Time
}

// NewRateLimiter creates a limiter. A non-positive fps disables pacing.
func NewRateLimiter(fps float64) *RateLimiter {
	r := &RateLimiter{}
	r.SetTargetFPS(fps)
	return r
}

// SetTargetFPS changes the target rate.
func (r *RateLimiter) SetTargetFPS(fps float64) {
	if fps <= 0 {
		r.interval = 0
		return
	}
	r.interval = time.Duration(float64(time.Second) / fps)
}

// Interval returns the minimum time between frames.
func (r *RateLimiter) Interval() time.Duration {
	return r.interval
}

// Wait sleeps until a full interval has passed since the previous Wait.
// Returns ctx.Err() if ctx is cancelled while sleeping.
func (r *RateLimiter) Wait(ctx context.Context) error {
	now := time.Now()
	if r.last.IsZero() || r.interval == 0 {
		r.last = now
		return nil
	}

	remaining := r.interval - now.Sub(r.last)
	if remaining <= 0 {
		r.last = now
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		r.last = time.Now()
		return nil
	}
}
