// Package dashboard provides a local web page and JSON API for controlling
// visioncursor and watching its status.
//
// The server only binds loopback addresses. It carries status values,
// never camera frames.
package dashboard

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-visioncursor/internal/loopback"
	"github.com/teslashibe/go-visioncursor/pkg/calibration"
	"github.com/teslashibe/go-visioncursor/pkg/controller"
	"github.com/teslashibe/go-visioncursor/pkg/hub"
	"github.com/teslashibe/go-visioncursor/pkg/tracking"
)

// DefaultAddr is used when no address is configured.
const DefaultAddr = loopback.DashboardAddr

//go:embed static/index.html
var indexHTML []byte

// Backend is the application surface the dashboard drives.
// controller.Controller implements it.
type Backend interface {
	Status() controller.Status

	StartCalibration() error
	CancelCalibration() error
	Calibration() (*calibration.Data, bool)
	DeleteCalibration() (bool, error)

	StartTracking() error
	StopTracking() error
	PauseTracking() error
	ResumeTracking() error
	ToggleTracking() (bool, error)

	Tuning() tracking.TuningParams
	UpdateTuning(u tracking.TuningUpdate) error
}

// Server is the dashboard HTTP server
type Server struct {
	app     *fiber.App
	addr    string
	backend Backend
	hub     *hub.Hub
	logger  *slog.Logger
}

// NewServer creates a dashboard bound to addr. Status events reach
// websocket clients through h, which the caller runs.
func NewServer(addr string, backend Backend, h *hub.Hub, logger *slog.Logger) (*Server, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	if err := loopback.Check(addr); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		addr:    addr,
		backend: backend,
		hub:     h,
		logger:  logger.With("component", "dashboard"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "visioncursor",
		DisableStartupMessage: true,
	})

	app.Get("/", s.handleIndex)

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/calibration", s.handleGetCalibration)
	api.Delete("/calibration", s.handleDeleteCalibration)
	api.Post("/calibration/start", s.command(backend.StartCalibration))
	api.Post("/calibration/cancel", s.command(backend.CancelCalibration))
	api.Post("/tracking/start", s.command(backend.StartTracking))
	api.Post("/tracking/stop", s.command(backend.StopTracking))
	api.Post("/tracking/pause", s.command(backend.PauseTracking))
	api.Post("/tracking/resume", s.command(backend.ResumeTracking))
	api.Post("/tracking/toggle", s.handleToggle)
	api.Get("/tuning", s.handleGetTuning)
	api.Put("/tuning", s.handlePutTuning)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("dashboard listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("dashboard listening", "url", "http://"+ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(ln)
	}()

	select {
	case <-ctx.Done():
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("dashboard shutdown failed", "error", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
