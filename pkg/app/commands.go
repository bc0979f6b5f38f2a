package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/teslashibe/go-visioncursor/internal/config"
	"github.com/teslashibe/go-visioncursor/internal/httpc"
	"github.com/teslashibe/go-visioncursor/pkg/calibration"
	"github.com/teslashibe/go-visioncursor/pkg/camera/webcam"
	"github.com/teslashibe/go-visioncursor/pkg/controller"
)

// liveTimeout bounds the status request to a running instance's dashboard.
const liveTimeout = time.Second

// PrintStatus reports the status of a running instance when its dashboard
// answers, then the stored calibration.
func PrintStatus(ctx context.Context, cfg *config.AppConfig, w io.Writer, logger *slog.Logger) error {
	if cfg.Dashboard.Addr != "" {
		reqCtx, cancel := context.WithTimeout(ctx, liveTimeout)
		var s controller.Status
		err := httpc.GetJSON(reqCtx, "http://"+cfg.Dashboard.Addr+"/api/status", &s)
		cancel()

		if err == nil {
			printLive(w, s)
		} else {
			logger.Debug("no running instance", "addr", cfg.Dashboard.Addr, "error", err)
			fmt.Fprintln(w, "Running:     no")
		}
	}

	store, err := OpenStore(cfg, logger)
	if err != nil {
		return err
	}

	data, err := store.Load()
	switch {
	case errors.Is(err, calibration.ErrNoCalibration):
		fmt.Fprintln(w, "Calibration: none")
		return nil
	case err != nil:
		fmt.Fprintf(w, "Calibration: unusable (%v)\n", err)
		return nil
	}

	fmt.Fprintf(w, "Calibration: %s\n", store.Path())
	fmt.Fprintf(w, "  created:   %s\n", data.Timestamp)
	fmt.Fprintf(w, "  screen:    %dx%d\n", data.ScreenWidth, data.ScreenHeight)
	fmt.Fprintf(w, "  points:    %d\n", len(data.Points))
	return nil
}

func printLive(w io.Writer, s controller.Status) {
	fmt.Fprintf(w, "Running:     yes (%s)\n", s.State)
	fmt.Fprintf(w, "  tracking:  %v\n", s.TrackingEnabled)
	fmt.Fprintf(w, "  face:      %v\n", s.FaceDetected)
	fmt.Fprintf(w, "  fps:       %.1f\n", s.FPS)
	if s.Cursor != nil {
		fmt.Fprintf(w, "  cursor:    %d, %d\n", s.Cursor.X, s.Cursor.Y)
	}
	if s.Error != nil {
		fmt.Fprintf(w, "  error:     %s: %s\n", s.Error.Type, s.Error.Message)
	}
}

// Reset deletes the stored calibration.
func Reset(cfg *config.AppConfig, w io.Writer, logger *slog.Logger) error {
	store, err := OpenStore(cfg, logger)
	if err != nil {
		return err
	}

	deleted, err := store.Delete()
	if err != nil {
		return err
	}
	if deleted {
		fmt.Fprintf(w, "Deleted %s\n", store.Path())
	} else {
		fmt.Fprintln(w, "No calibration to delete")
	}
	return nil
}

// ListCameras prints the camera indices that open.
func ListCameras(w io.Writer, limit int) {
	found := webcam.ListAvailable(limit)
	if len(found) == 0 {
		fmt.Fprintln(w, "No cameras found")
		return
	}
	for _, idx := range found {
		fmt.Fprintf(w, "camera %d\n", idx)
	}
}

// ParseScreen parses "WIDTHxHEIGHT". An empty string returns zeros.
func ParseScreen(s string) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("screen %q: expected WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("screen %q: invalid width", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("screen %q: invalid height", s)
	}
	return w, h, nil
}
