package gaze

import "sync"

// ScriptedLandmarker is a deterministic Landmarker for tests and replays.
// Each ProcessFrame call returns the next scripted step; once the script is
// exhausted the final step repeats.
type ScriptedLandmarker struct {
	mu    sync.Mutex
	steps []ScriptStep
	pos   int // steps consumed
	calls int
}

// ScriptStep is one scripted detection result.
// A nil Landmarks with a nil Err means "no face this frame".
type ScriptStep struct {
	Landmarks *Landmarks
	Err       error
}

// NewScriptedLandmarker creates a landmarker replaying the given steps.
func NewScriptedLandmarker(steps ...ScriptStep) *ScriptedLandmarker {
	return &ScriptedLandmarker{steps: steps}
}

// NewGazeScript builds a script whose landmarks estimate to the given gazes.
func NewGazeScript(gazes ...Vector) *ScriptedLandmarker {
	steps := make([]ScriptStep, len(gazes))
	for i, g := range gazes {
		steps[i] = ScriptStep{Landmarks: LandmarksFor(g)}
	}
	return NewScriptedLandmarker(steps...)
}

// Append adds steps to the end of the script.
func (s *ScriptedLandmarker) Append(steps ...ScriptStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, steps...)
}

// ProcessFrame ignores the frame and returns the next scripted step.
func (s *ScriptedLandmarker) ProcessFrame(_ []byte) (*Landmarks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if len(s.steps) == 0 {
		return nil, nil
	}

	if s.pos < len(s.steps) {
		s.pos++
	}
	step := s.steps[s.pos-1]
	return step.Landmarks, step.Err
}

// Calls returns how many frames were processed.
func (s *ScriptedLandmarker) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// LandmarksFor returns symmetric landmarks whose estimated gaze equals g
// (for components within [-1, 1]).
func LandmarksFor(g Vector) *Landmarks {
	eye := func(cx float64) Eye {
		const half = 0.05
		return Eye{
			LeftCorner:  Point{X: cx - half, Y: 0.4},
			RightCorner: Point{X: cx + half, Y: 0.4},
			Top:         Point{X: cx, Y: 0.4 - half},
			Bottom:      Point{X: cx, Y: 0.4 + half},
			Iris: Point{
				X: cx - half + (g.X+1)/2*2*half,
				Y: 0.4 - half + (g.Y+1)/2*2*half,
			},
		}
	}
	return &Landmarks{
		Confidence: g.Confidence,
		Box:        Rect{X: 0.3, Y: 0.2, W: 0.4, H: 0.5},
		LeftEye:    eye(0.4),
		RightEye:   eye(0.6),
	}
}
