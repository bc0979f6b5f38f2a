// Package calibration implements the guided gaze calibration procedure, the
// calibration record it produces, and the gaze-to-screen mapping built from
// that record.
//
// Privacy: a calibration record holds only screen coordinates and averaged
// gaze values. No images, no facial data, no biometric templates.
package calibration

import (
	"fmt"
	"time"
)

// SchemaVersion is written into every new calibration record.
const SchemaVersion = "1.0"

// MinPoints is the fewest calibration points a record may hold.
const MinPoints = 3

// GazeTolerance bounds stored gaze values. Deliberately wider than the
// nominal [-1, 1] produced by the estimator.
const GazeTolerance = 2.0

// Point is the durable summary of one calibration target.
type Point struct {
	// Target position on screen (pixels)
	ScreenX float64 `json:"screen_x"`
	ScreenY float64 `json:"screen_y"`

	// Averaged gaze while fixating the target
	GazeX float64 `json:"gaze_x"`
	GazeY float64 `json:"gaze_y"`

	// Number of samples averaged for this point
	SampleCount int `json:"sample_count"`
}

// Validate checks the point invariants.
func (p Point) Validate() error {
	if p.ScreenX < 0 || p.ScreenY < 0 {
		return &ValidationError{Field: "screen", Reason: "coordinates must be non-negative"}
	}
	if !(p.GazeX >= -GazeTolerance && p.GazeX <= GazeTolerance) {
		return &ValidationError{Field: "gaze_x", Reason: fmt.Sprintf("%v outside [-2, 2]", p.GazeX)}
	}
	if !(p.GazeY >= -GazeTolerance && p.GazeY <= GazeTolerance) {
		return &ValidationError{Field: "gaze_y", Reason: fmt.Sprintf("%v outside [-2, 2]", p.GazeY)}
	}
	if p.SampleCount <= 0 {
		return &ValidationError{Field: "sample_count", Reason: "must be positive"}
	}
	return nil
}

// Data is one complete calibration, the unit of persistence.
type Data struct {
	// Schema version for forward compatibility
	Version string `json:"version"`

	// ISO-8601 time the calibration finished
	Timestamp string `json:"timestamp"`

	// Screen resolution at calibration time
	ScreenWidth  int `json:"screen_width"`
	ScreenHeight int `json:"screen_height"`

	// Points, typically center, left, right, top, bottom
	Points []Point `json:"points"`
}

// NewData creates a record stamped with the current time.
func NewData(width, height int, points []Point) *Data {
	return &Data{
		Version:      SchemaVersion,
		Timestamp:    time.Now().Format(time.RFC3339Nano),
		ScreenWidth:  width,
		ScreenHeight: height,
		Points:       points,
	}
}

// Validate checks every invariant of the record and of each point.
// Nothing is corrected; the first violation is returned.
func (d *Data) Validate() error {
	if d == nil {
		return &ValidationError{Field: "data", Reason: "missing"}
	}
	if d.Version == "" {
		return &ValidationError{Field: "version", Reason: "missing"}
	}
	if d.ScreenWidth <= 0 {
		return &ValidationError{Field: "screen_width", Reason: fmt.Sprintf("must be positive, got %d", d.ScreenWidth)}
	}
	if d.ScreenHeight <= 0 {
		return &ValidationError{Field: "screen_height", Reason: fmt.Sprintf("must be positive, got %d", d.ScreenHeight)}
	}
	if len(d.Points) < MinPoints {
		return &ValidationError{Field: "points", Reason: fmt.Sprintf("need at least %d, got %d", MinPoints, len(d.Points))}
	}
	for i, p := range d.Points {
		if err := p.Validate(); err != nil {
			ve := err.(*ValidationError)
			return &ValidationError{Field: fmt.Sprintf("points[%d].%s", i, ve.Field), Reason: ve.Reason}
		}
	}
	if _, err := ParseTimestamp(d.Timestamp); err != nil {
		return &ValidationError{Field: "timestamp", Reason: err.Error()}
	}
	return nil
}

// IsCompatibleWithScreen reports whether the record was made on a display
// of exactly this resolution.
func (d *Data) IsCompatibleWithScreen(width, height int) bool {
	return d.ScreenWidth == width && d.ScreenHeight == height
}

// CalibratedAt returns the parsed timestamp.
func (d *Data) CalibratedAt() (time.Time, error) {
	return ParseTimestamp(d.Timestamp)
}

// timestampLayouts are the ISO-8601 forms accepted on load, including the
// offset-less microsecond form other tools write.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp format %q", s)
}
