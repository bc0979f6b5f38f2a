// Package yunet runs OpenCV's YuNet face model to find faces and eyes.
package yunet

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	"github.com/teslashibe/go-visioncursor/pkg/tracking/detection"
	"gocv.io/x/gocv"
)

var _ detection.Detector = (*Detector)(nil)

// Detector uses OpenCV's FaceDetectorYN for face detection
type Detector struct {
	detector gocv.FaceDetectorYN
	config   detection.Config
	logger   *slog.Logger
	mu       sync.Mutex // Protects inference
}

// New creates a new YuNet face detector using GoCV's built-in FaceDetectorYN
func New(cfg detection.Config) (*Detector, error) {
	// Check if model file exists first
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	// Input size is updated per image
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"", // No config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &Detector{
		detector: detector,
		config:   cfg,
		logger:   slog.Default().With("component", "yunet"),
	}, nil
}

// Detect finds faces in the JPEG image
func (d *Detector) Detect(jpeg []byte) ([]detection.Detection, error) {
	img, err := decode(jpeg)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	return d.detectMat(img), nil
}

// detectMat runs the model on a decoded BGR image.
func (d *Detector) detectMat(img gocv.Mat) []detection.Detection {
	d.mu.Lock()
	defer d.mu.Unlock()

	imgW := float64(img.Cols())
	imgH := float64(img.Rows())

	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(img, &faces)

	var detections []detection.Detection
	for r := 0; r < faces.Rows(); r++ {
		// YuNet output format (15 columns):
		// 0-3: x, y, w, h (bounding box in pixels)
		// 4-13: 5 facial landmarks (x,y pairs), eyes first
		// 14: face score
		col := func(c int) float64 { return float64(faces.GetFloatAt(r, c)) }

		e1 := detection.Keypoint{X: col(4) / imgW, Y: col(5) / imgH}
		e2 := detection.Keypoint{X: col(6) / imgW, Y: col(7) / imgH}
		if e2.X < e1.X {
			e1, e2 = e2, e1
		}

		detections = append(detections, detection.Detection{
			X:          col(0) / imgW,
			Y:          col(1) / imgH,
			W:          col(2) / imgW,
			H:          col(3) / imgH,
			Confidence: col(14),
			LeftEye:    e1,
			RightEye:   e2,
		})
	}

	if len(detections) > 0 {
		d.logger.Debug("faces detected", "count", len(detections))
	}

	return detections
}

// Close releases the detector resources
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}

func decode(jpeg []byte) (gocv.Mat, error) {
	if len(jpeg) == 0 {
		return gocv.NewMat(), fmt.Errorf("empty image")
	}

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return img, fmt.Errorf("decode image: %w", err)
	}
	if img.Empty() {
		return img, fmt.Errorf("empty image")
	}
	return img, nil
}
