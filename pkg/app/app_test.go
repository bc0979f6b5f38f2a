package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-visioncursor/internal/config"
	"github.com/teslashibe/go-visioncursor/internal/loopback"
	"github.com/teslashibe/go-visioncursor/pkg/calibration"
	"github.com/teslashibe/go-visioncursor/pkg/controller"
	"github.com/teslashibe/go-visioncursor/pkg/gaze"
	"github.com/teslashibe/go-visioncursor/pkg/hub"
	"github.com/teslashibe/go-visioncursor/pkg/tracking"
)

// stillFrames always returns the same tiny JPEG.
type stillFrames struct{}

func (stillFrames) CaptureJPEG() ([]byte, error) {
	return []byte{0xff, 0xd8}, nil
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewCalibrateEnablesDashboard(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	if cfg.Dashboard.Enabled {
		t.Fatal("Expected dashboard disabled by default")
	}

	a, err := New(cfg, Options{Mode: ModeCalibrate}, slog.Default())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	want := "http://" + loopback.DashboardAddr
	if got := a.DashboardURL(); got != want {
		t.Errorf("Expected dashboard at %s, got %q", want, got)
	}
}

func TestNewCalibrateFillsEmptyAddr(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(cfg, Options{Mode: ModeCalibrate}, slog.Default())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := a.DashboardURL(); got != "http://"+loopback.DashboardAddr {
		t.Errorf("Expected default dashboard address, got %q", got)
	}
}

func TestNewTrackLeavesDashboardOff(t *testing.T) {
	a, err := New(testConfig(t), Options{Mode: ModeTrack}, slog.Default())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := a.DashboardURL(); got != "" {
		t.Errorf("Expected no dashboard, got %q", got)
	}
}

func TestWaitForViewerCancelled(t *testing.T) {
	h := hub.New("status", nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	waitCtx, waitCancel := context.WithTimeout(ctx, 3*watchInterval)
	defer waitCancel()
	err := waitForViewer(waitCtx, h)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded with no viewer, got %v", err)
	}
	cancel()
}

func TestWaitForViewerReturnsOnConnect(t *testing.T) {
	h := hub.New("status", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go h.Run(ctx)

	done := make(chan error, 1)
	go func() { done <- waitForViewer(ctx, h) }()

	if _, err := hub.NewClient(h, nil); err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil once a viewer connects, got %v", err)
		}
	case <-ctx.Done():
		t.Fatal("waitForViewer did not return after a client connected")
	}
}

func TestRunCalibrateWaitsForViewerAndReportsCancel(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, Options{Mode: ModeCalibrate}, slog.Default())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a.store, err = OpenStore(cfg, slog.Default())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	a.statusHub = hub.New("status", nil)
	a.ctrl = controller.New(controller.Options{
		Calibration:  calibration.DefaultConfig(),
		Tracking:     tracking.DefaultConfig(),
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		TargetFPS:    30,
		Video:        stillFrames{},
		Landmarker:   gaze.NewScriptedLandmarker(),
		Store:        a.store,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result := make(chan error, 1)
	go func() { result <- a.Run(ctx) }()

	waitUntil(t, "status hub", a.statusHub.IsRunning)
	time.Sleep(2 * watchInterval)
	if state := a.ctrl.State(); state == controller.StateCalibrating {
		t.Fatal("Expected calibration to wait for a viewer")
	}

	if _, err := hub.NewClient(a.statusHub, nil); err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	waitUntil(t, "calibration start", func() bool {
		return a.ctrl.State() == controller.StateCalibrating
	})
	if err := a.ctrl.CancelCalibration(); err != nil {
		t.Fatalf("CancelCalibration failed: %v", err)
	}

	select {
	case err := <-result:
		if err == nil || !strings.Contains(err.Error(), "did not complete") {
			t.Errorf("Expected incomplete calibration error, got %v", err)
		}
	case <-ctx.Done():
		t.Fatal("Run did not return after the calibration was cancelled")
	}
}
