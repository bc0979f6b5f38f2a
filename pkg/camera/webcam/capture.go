// Package webcam captures frames from a local camera as JPEG bytes.
// Frames stay in memory; nothing is written to disk.
package webcam

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-visioncursor/pkg/camera"
	"gocv.io/x/gocv"
)

// ErrNoFrame is returned when the device delivers no image.
var ErrNoFrame = errors.New("webcam: no frame")

// Capture reads frames from a local webcam.
type Capture struct {
	cfg    camera.Config
	device *gocv.VideoCapture
	frame  gocv.Mat
	logger *slog.Logger
	mu     sync.Mutex
	count  uint64
}

// Open opens the camera, applies the requested resolution and discards
// the warmup frames.
func Open(cfg camera.Config) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %v", errs)
	}

	device, err := gocv.OpenVideoCapture(cfg.Index)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.Index, err)
	}
	if !device.IsOpened() {
		device.Close()
		return nil, fmt.Errorf("camera %d not available", cfg.Index)
	}

	device.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	device.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	device.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	c := &Capture{
		cfg:    cfg,
		device: device,
		frame:  gocv.NewMat(),
		logger: slog.Default().With("component", "camera"),
	}

	for i := 0; i < cfg.WarmupFrames; i++ {
		device.Read(&c.frame)
	}

	w, h := c.Size()
	c.logger.Info("camera opened", "index", cfg.Index, "width", w, "height", h, "fps", cfg.Framerate)
	return c, nil
}

// CaptureJPEG grabs one frame and encodes it as JPEG.
func (c *Capture) CaptureJPEG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ok := c.device.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, ErrNoFrame
	}
	c.count++

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, c.frame, []int{int(gocv.IMWriteJpegQuality), c.cfg.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close
	return bytes.Clone(buf.GetBytes()), nil
}

// Size returns the resolution the device actually delivers.
func (c *Capture) Size() (int, int) {
	return int(c.device.Get(gocv.VideoCaptureFrameWidth)), int(c.device.Get(gocv.VideoCaptureFrameHeight))
}

// Frames returns how many frames were captured since Open.
func (c *Capture) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Close releases the device.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frame.Close()
	err := c.device.Close()
	c.logger.Info("camera closed", "frames", c.count)
	return err
}

// ListAvailable tries indices [0, limit) and returns the ones that open.
func ListAvailable(limit int) []int {
	var found []int
	for i := 0; i < limit; i++ {
		device, err := gocv.OpenVideoCapture(i)
		if err != nil {
			continue
		}
		if device.IsOpened() {
			found = append(found, i)
		}
		device.Close()
	}
	return found
}
