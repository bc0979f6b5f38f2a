package timing

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestFPSCounter(t *testing.T) {
	f := NewFPSCounter(3)
	clock := time.Unix(0, 0)
	f.now = func() time.Time { return clock }

	if got := f.Tick(); got != 0 {
		t.Errorf("Expected 0 after first frame, got %v", got)
	}

	for i := 0; i < 5; i++ {
		clock = clock.Add(50 * time.Millisecond)
		f.Tick()
	}
	if got := f.FPS(); math.Abs(got-20) > 1e-9 {
		t.Errorf("Expected 20 fps, got %v", got)
	}

	// Window of 3: older intervals fall out
	for i := 0; i < 3; i++ {
		clock = clock.Add(100 * time.Millisecond)
		f.Tick()
	}
	if got := f.FPS(); math.Abs(got-10) > 1e-9 {
		t.Errorf("Expected 10 fps, got %v", got)
	}

	f.Reset()
	if got := f.FPS(); got != 0 {
		t.Errorf("Expected 0 after reset, got %v", got)
	}
}

func TestRateLimiter_Paces(t *testing.T) {
	r := NewRateLimiter(50) // 20ms
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 4; i++ {
		if err := r.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 55*time.Millisecond {
		t.Errorf("Expected at least 60ms for 3 intervals, got %v", elapsed)
	}
}

func TestRateLimiter_Cancel(t *testing.T) {
	r := NewRateLimiter(1) // 1s
	ctx, cancel := context.WithCancel(context.Background())

	r.Wait(ctx)
	cancel()
	if err := r.Wait(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := NewRateLimiter(0)
	if r.Interval() != 0 {
		t.Errorf("Expected no interval, got %v", r.Interval())
	}
	ctx := context.Background()
	r.Wait(ctx)
	start := time.Now()
	r.Wait(ctx)
	if time.Since(start) > 10*time.Millisecond {
		t.Error("Expected disabled limiter not to sleep")
	}
}
