// Package detection holds the face detection types shared by the detector
// backends: detections with eye keypoints, face selection and the eye
// geometry that turns a face into gaze landmarks.
package detection

import (
	"errors"
	"math"
)

// Keypoint is a landmark position (0-1 normalized)
type Keypoint struct {
	X, Y float64
}

// Detection represents a detected face
type Detection struct {
	X, Y       float64 // Top-left corner (0-1 normalized)
	W, H       float64 // Width and height (0-1 normalized)
	Confidence float64 // Detection confidence (0-1)

	// Eye centers as reported by the detector, in image order
	// (LeftEye has the smaller X).
	LeftEye  Keypoint
	RightEye Keypoint
}

// HasEyes reports whether the detector located two distinct eyes.
func (d Detection) HasEyes() bool {
	return d.RightEye.X > d.LeftEye.X
}

// EyeDistance returns the interocular distance in pixels for a w x h image.
func (d Detection) EyeDistance(w, h int) float64 {
	return math.Hypot((d.RightEye.X-d.LeftEye.X)*float64(w), (d.RightEye.Y-d.LeftEye.Y)*float64(h))
}

// Area returns the area of the bounding box
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Detector is the interface for face detection backends
type Detector interface {
	// Detect finds faces in the image and returns their positions
	Detect(jpeg []byte) ([]Detection, error)

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath        string  `yaml:"model_path" json:"model_path"`               // Path to ONNX model
	ConfidenceThresh float64 `yaml:"confidence_thresh" json:"confidence_thresh"` // Minimum confidence (default 0.5)
	InputWidth       int     `yaml:"input_width" json:"input_width"`             // Model input width
	InputHeight      int     `yaml:"input_height" json:"input_height"`           // Model input height

	// Eye region size relative to the distance between the eyes
	EyeWidthRatio  float64 `yaml:"eye_width_ratio" json:"eye_width_ratio"`
	EyeHeightRatio float64 `yaml:"eye_height_ratio" json:"eye_height_ratio"`
}

// DefaultConfig returns production defaults for YuNet
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
		EyeWidthRatio:    0.5,
		EyeHeightRatio:   0.3,
	}
}

// Validate checks the detector settings.
func (c Config) Validate() error {
	var errs []error
	if c.ModelPath == "" {
		errs = append(errs, errors.New("model_path must not be empty"))
	}
	if c.ConfidenceThresh < 0 || c.ConfidenceThresh > 1 {
		errs = append(errs, errors.New("confidence_thresh must be between 0 and 1"))
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		errs = append(errs, errors.New("input size must be positive"))
	}
	if c.EyeWidthRatio <= 0 || c.EyeHeightRatio <= 0 {
		errs = append(errs, errors.New("eye ratios must be positive"))
	}
	return errors.Join(errs...)
}

// SelectBest picks the face to track from multiple detections.
// Faces without both eyes are skipped; the rest score
// confidence * 0.7 + relative area * 0.3, so the nearest clear face wins.
func SelectBest(dets []Detection) *Detection {
	maxArea := 0.0
	for _, d := range dets {
		if d.HasEyes() && d.Area() > maxArea {
			maxArea = d.Area()
		}
	}
	if maxArea == 0 {
		return nil
	}

	bestScore := -1.0
	var best *Detection
	for i := range dets {
		if !dets[i].HasEyes() {
			continue
		}
		score := dets[i].Confidence*0.7 + (dets[i].Area()/maxArea)*0.3
		if score > bestScore {
			bestScore = score
			best = &dets[i]
		}
	}
	return best
}
