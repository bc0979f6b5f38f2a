// Package app wires the camera, landmark detector, controller, cursor and
// dashboard into the visioncursor application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-visioncursor/internal/config"
	"github.com/teslashibe/go-visioncursor/internal/loopback"
	"github.com/teslashibe/go-visioncursor/pkg/calibration"
	"github.com/teslashibe/go-visioncursor/pkg/camera/webcam"
	"github.com/teslashibe/go-visioncursor/pkg/controller"
	"github.com/teslashibe/go-visioncursor/pkg/cursor"
	"github.com/teslashibe/go-visioncursor/pkg/cursor/desktop"
	"github.com/teslashibe/go-visioncursor/pkg/dashboard"
	"github.com/teslashibe/go-visioncursor/pkg/gaze"
	"github.com/teslashibe/go-visioncursor/pkg/hub"
	"github.com/teslashibe/go-visioncursor/pkg/tracking/detection/yunet"
)

// Mode selects what Run does.
type Mode int

const (
	// ModeTrack drives the cursor from a stored calibration.
	ModeTrack Mode = iota
	// ModeCalibrate runs one calibration and exits.
	ModeCalibrate
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeCalibrate {
		return "calibrate"
	}
	return "track"
}

// Options are per-run settings that do not belong in the config file.
type Options struct {
	Mode Mode

	// Screen size; zero asks the operating system.
	ScreenWidth  int
	ScreenHeight int
}

// watchInterval is how often calibrate mode checks for completion and for
// a dashboard viewer.
const watchInterval = 200 * time.Millisecond

// App is the main application orchestrator.
// It manages all components and their lifecycle.
type App struct {
	cfg    *config.AppConfig
	opts   Options
	logger *slog.Logger

	// Vision
	capture    *webcam.Capture
	landmarker *yunet.EyeLandmarker

	// Output
	mover      cursor.Mover
	dispatcher *cursor.Dispatcher

	// Core
	store *calibration.Store
	ctrl  *controller.Controller

	// Web dashboard
	statusHub *hub.Hub
	webServer *dashboard.Server

	// Calibrate mode: the calibration in use before, and the outcome,
	// sent once before the run is cancelled
	prevCal   *calibration.Data
	calResult chan error
}

// New creates an application. Call Init before Run.
func New(cfg *config.AppConfig, opts Options, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Calibration targets are drawn by the dashboard page
	if opts.Mode == ModeCalibrate && !cfg.Dashboard.Enabled {
		cfg.Dashboard.Enabled = true
		if cfg.Dashboard.Addr == "" {
			cfg.Dashboard.Addr = loopback.DashboardAddr
		}
		if err := loopback.Check(cfg.Dashboard.Addr); err != nil {
			return nil, fmt.Errorf("calibration needs the dashboard: %w", err)
		}
		logger.Info("dashboard enabled for calibration", "addr", cfg.Dashboard.Addr)
	}

	return &App{cfg: cfg, opts: opts, logger: logger, calResult: make(chan error, 1)}, nil
}

// DashboardURL returns the dashboard address, or "" when it is disabled.
func (a *App) DashboardURL() string {
	if !a.cfg.Dashboard.Enabled {
		return ""
	}
	return "http://" + a.cfg.Dashboard.Addr
}

// Init opens the camera and model and builds the pipeline.
func (a *App) Init() error {
	store, err := OpenStore(a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.store = store

	width, height := a.screenSize()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("unknown screen size; pass -screen WxH")
	}

	if !a.cfg.Cursor.DryRun {
		a.dispatcher = cursor.NewDispatcher(cursor.NewController(a.mover, a.cfg.Cursor.MinInterval, a.logger))
	}

	a.landmarker, err = yunet.NewEyeLandmarker(a.cfg.Detection)
	if err != nil {
		return fmt.Errorf("landmark model: %w", err)
	}

	a.capture, err = webcam.Open(a.cfg.Camera)
	if err != nil {
		a.landmarker.Close()
		return fmt.Errorf("camera: %w", err)
	}

	a.statusHub = hub.New("status", a.logger)

	a.ctrl = a.newController(a.capture, a.landmarker, width, height)

	if a.cfg.Dashboard.Enabled {
		a.webServer, err = dashboard.NewServer(a.cfg.Dashboard.Addr, a.ctrl, a.statusHub, a.logger)
		if err != nil {
			a.Shutdown()
			return err
		}
	}

	a.logger.Info("visioncursor initialized",
		"mode", a.opts.Mode, "screen", fmt.Sprintf("%dx%d", width, height),
		"dry_run", a.cfg.Cursor.DryRun, "dashboard", a.cfg.Dashboard.Enabled)
	return nil
}

func (a *App) newController(video controller.VideoSource, lm gaze.Landmarker, width, height int) *controller.Controller {
	opts := controller.Options{
		Calibration:  a.cfg.Calibration,
		Tracking:     a.cfg.Gaze,
		ScreenWidth:  width,
		ScreenHeight: height,
		TargetFPS:    a.cfg.TargetFPS,
		Video:        video,
		Landmarker:   lm,
		Store:        a.store,
		Cursor:       a.dispatcher,
		Logger:       a.logger,
	}
	// A nil *hub.Hub must not become a non-nil Publisher
	if a.statusHub != nil {
		opts.Publisher = a.statusHub
	}
	return controller.New(opts)
}

// screenSize returns the configured size or asks the pointer backend.
func (a *App) screenSize() (int, int) {
	if a.mover == nil {
		a.mover = desktop.NewMover()
	}
	if a.opts.ScreenWidth > 0 && a.opts.ScreenHeight > 0 {
		return a.opts.ScreenWidth, a.opts.ScreenHeight
	}
	return a.mover.ScreenSize()
}

// Controller returns the pipeline controller, or nil before Init.
func (a *App) Controller() *controller.Controller {
	return a.ctrl
}

// Run starts the background tasks and the processing loop.
// Blocks until ctx is cancelled or, in calibrate mode, the calibration ends.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.statusHub.Run(ctx)
	if a.dispatcher != nil {
		go a.dispatcher.Run(ctx)
	}
	if a.webServer != nil {
		go func() {
			if err := a.webServer.Run(ctx); err != nil {
				a.logger.Error("dashboard stopped", "error", err)
			}
		}()
	}

	if a.opts.Mode == ModeCalibrate {
		a.logger.Info("waiting for the dashboard to show calibration targets", "url", a.DashboardURL())
		if err := waitForViewer(ctx, a.statusHub); err != nil {
			return nil
		}
	}

	if err := a.start(); err != nil {
		return err
	}

	if a.opts.Mode == ModeCalibrate {
		go a.watchCalibration(ctx, cancel)
	}

	err := a.ctrl.Run(ctx)
	select {
	case result := <-a.calResult:
		return result
	default:
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// waitForViewer blocks until a status client is connected to h, so the
// first calibration countdown starts once targets can be seen.
func waitForViewer(ctx context.Context, h *hub.Hub) error {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for h.ClientCount() == 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (a *App) start() error {
	switch a.opts.Mode {
	case ModeCalibrate:
		a.prevCal, _ = a.ctrl.Calibration()
		return a.ctrl.StartCalibration()
	default:
		err := a.ctrl.StartTracking()
		if errors.Is(err, calibration.ErrNoCalibration) {
			return fmt.Errorf("%w: run `visioncursor calibrate` first", err)
		}
		return err
	}
}

// watchCalibration stops the run once the calibration leaves StateCalibrating.
func (a *App) watchCalibration(ctx context.Context, done context.CancelFunc) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.ctrl.State() == controller.StateCalibrating {
				continue
			}
			s := a.ctrl.Status()
			if cur, ok := a.ctrl.Calibration(); ok && cur != a.prevCal {
				a.logger.Info("calibration saved", "path", a.store.Path())
				a.calResult <- nil
			} else {
				a.calResult <- fmt.Errorf("calibration did not complete: %s", failureReason(s))
			}
			done()
			return
		}
	}
}

// Shutdown releases the camera and model. Safe to call more than once.
func (a *App) Shutdown() {
	if a.ctrl != nil {
		a.ctrl.Shutdown()
	}
	if a.capture != nil {
		a.capture.Close()
		a.capture = nil
	}
	if a.landmarker != nil {
		a.landmarker.Close()
		a.landmarker = nil
	}
}

// OpenStore opens the calibration store named by the config.
func OpenStore(cfg *config.AppConfig, logger *slog.Logger) (*calibration.Store, error) {
	dir, err := cfg.DataDir()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	return calibration.NewStore(dir, cfg.Storage.Filename, logger)
}

func failureReason(s controller.Status) string {
	switch {
	case s.CalibrationError != "":
		return s.CalibrationError
	case s.Error != nil:
		return s.Error.Message
	default:
		return "cancelled"
	}
}
