// Package gaze turns eye landmarks into normalized gaze vectors.
//
// A gaze vector is independent of screen geometry: X runs from -1 (looking
// left) to +1 (looking right) and Y from -1 (up) to +1 (down). Mapping to
// pixels is the job of the calibration package.
package gaze

// Vector is a per-frame gaze estimate in normalized eye space.
type Vector struct {
	X          float64 `json:"x"`          // Horizontal component
	Y          float64 `json:"y"`          // Vertical component
	Confidence float64 `json:"confidence"` // Estimation confidence (0-1)
}

// Point is a 2D landmark position, normalized to the frame (0-1).
type Point struct {
	X, Y float64
}

// Rect is a normalized bounding box.
type Rect struct {
	X, Y, W, H float64
}

// Eye holds the landmarks needed to locate the iris inside the eye opening.
type Eye struct {
	LeftCorner  Point
	RightCorner Point
	Top         Point
	Bottom      Point
	Iris        Point
}

// Landmarks is the detection result for one face.
type Landmarks struct {
	Confidence float64
	Box        Rect
	LeftEye    Eye
	RightEye   Eye
}

// Landmarker is the external landmark detector.
// ProcessFrame returns nil landmarks (and a nil error) when no face is found.
type Landmarker interface {
	ProcessFrame(jpeg []byte) (*Landmarks, error)
}
