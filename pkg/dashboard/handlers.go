package dashboard

import (
	"errors"
	"slices"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-visioncursor/pkg/calibration"
	"github.com/teslashibe/go-visioncursor/pkg/controller"
	"github.com/teslashibe/go-visioncursor/pkg/hub"
	"github.com/teslashibe/go-visioncursor/pkg/tracking"
)

// handleIndex serves the embedded dashboard page
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html")
	return c.Send(indexHTML)
}

// handleStatus returns the latest status snapshot
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.backend.Status())
}

// handleGetCalibration returns the calibration in use
func (s *Server) handleGetCalibration(c *fiber.Ctx) error {
	data, ok := s.backend.Calibration()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": calibration.ErrNoCalibration.Error(),
		})
	}
	return c.JSON(data)
}

// handleDeleteCalibration removes the stored calibration
func (s *Server) handleDeleteCalibration(c *fiber.Ctx) error {
	deleted, err := s.backend.DeleteCalibration()
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// command wraps a backend action that only reports an error
func (s *Server) command(fn func() error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := fn(); err != nil {
			return s.fail(c, err)
		}
		return c.JSON(fiber.Map{"state": s.backend.Status().State})
	}
}

// handleToggle flips the cursor safety switch
func (s *Server) handleToggle(c *fiber.Ctx) error {
	enabled, err := s.backend.ToggleTracking()
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"tracking_enabled": enabled})
}

// handleGetTuning returns the active smoothing parameters
func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	return c.JSON(s.backend.Tuning())
}

// handlePutTuning applies the parameters present in the body
func (s *Server) handlePutTuning(c *fiber.Ctx) error {
	var p tracking.TuningUpdate
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.backend.UpdateTuning(p); err != nil {
		if errors.Is(err, controller.ErrStopped) {
			return s.fail(c, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(s.backend.Tuning())
}

// fail maps application errors to HTTP statuses
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, controller.ErrInvalidTransition):
		status = fiber.StatusConflict
	case errors.Is(err, calibration.ErrNoCalibration),
		errors.Is(err, calibration.ErrInvalidCalibration),
		errors.Is(err, controller.ErrScreenMismatch):
		status = fiber.StatusPreconditionFailed
	case errors.Is(err, controller.ErrStopped):
		status = fiber.StatusServiceUnavailable
	}
	if status == fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// handleStatusWS sends the current status, then streams hub events
// ("?events=status,error" limits the stream)
func (s *Server) handleStatusWS(c *websocket.Conn) {
	topics := hub.ParseTopics(c.Query("events"))

	// Written before the hub's write pump exists, so this is the only writer
	if len(topics) == 0 || slices.Contains(topics, hub.EventStatus) {
		if msg, err := hub.NewEvent(hub.EventStatus, s.backend.Status()).Encode(); err == nil {
			if err := c.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
				return
			}
		}
	}

	client, err := hub.NewClient(s.hub, c, topics...)
	if err != nil {
		s.logger.Debug("status client rejected", "error", err)
		return
	}
	client.Run()
}
