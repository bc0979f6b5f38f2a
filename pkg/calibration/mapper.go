package calibration

import (
	"github.com/teslashibe/go-visioncursor/pkg/gaze"
)

// Axis holds the two extreme calibration points of one axis.
type Axis struct {
	GazeMin     float64
	GazeMax     float64
	ScreenAtMin float64
	ScreenAtMax float64
}

// Degenerate reports whether the axis has zero gaze range.
func (a Axis) Degenerate() bool {
	return a.GazeMax == a.GazeMin
}

// project linearly maps g through the two extremes. Values outside
// [GazeMin, GazeMax] extrapolate. A degenerate axis returns mid.
func (a Axis) project(g, mid float64) float64 {
	if a.Degenerate() {
		return mid
	}
	t := (g - a.GazeMin) / (a.GazeMax - a.GazeMin)
	return a.ScreenAtMin + t*(a.ScreenAtMax-a.ScreenAtMin)
}

// Mapper converts gaze vectors to screen pixels using a per-axis linear fit
// through the two extreme calibration points of each axis. The other points
// are not used. It is immutable after construction.
type Mapper struct {
	X Axis
	Y Axis

	width  int
	height int
}

// NewMapper validates data and builds a mapper from it.
func NewMapper(data *Data) (*Mapper, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	return &Mapper{
		X:      fitAxis(data.Points, func(p Point) (float64, float64) { return p.GazeX, p.ScreenX }),
		Y:      fitAxis(data.Points, func(p Point) (float64, float64) { return p.GazeY, p.ScreenY }),
		width:  data.ScreenWidth,
		height: data.ScreenHeight,
	}, nil
}

// fitAxis finds the first point with the minimum gaze and the first with the
// maximum gaze on one axis.
func fitAxis(points []Point, pick func(Point) (g, s float64)) Axis {
	g0, s0 := pick(points[0])
	a := Axis{GazeMin: g0, ScreenAtMin: s0, GazeMax: g0, ScreenAtMax: s0}

	for _, p := range points[1:] {
		g, s := pick(p)
		if g < a.GazeMin {
			a.GazeMin, a.ScreenAtMin = g, s
		}
		if g > a.GazeMax {
			a.GazeMax, a.ScreenAtMax = g, s
		}
	}
	return a
}

// Map returns the screen position for a gaze vector, clamped to
// [0, width-1] x [0, height-1].
func (m *Mapper) Map(v gaze.Vector) (x, y float64) {
	maxX := float64(m.width - 1)
	maxY := float64(m.height - 1)

	x = clamp(m.X.project(v.X, float64(m.width)/2), 0, maxX)
	y = clamp(m.Y.project(v.Y, float64(m.height)/2), 0, maxY)
	return x, y
}

// Degenerate reports which axes fell back to the screen midpoint.
func (m *Mapper) Degenerate() (x, y bool) {
	return m.X.Degenerate(), m.Y.Degenerate()
}

// ScreenSize returns the resolution the mapper was calibrated for.
func (m *Mapper) ScreenSize() (int, int) {
	return m.width, m.height
}

func clamp(v, lo, hi float64) float64 {
	// NaN input collapses to lo
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
