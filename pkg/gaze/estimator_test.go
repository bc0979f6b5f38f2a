package gaze

import (
	"math"
	"testing"
)

func TestEstimator_CenteredIris(t *testing.T) {
	e := NewEstimator(nil)

	v, ok := e.Estimate(LandmarksFor(Vector{X: 0, Y: 0, Confidence: 0.9}))
	if !ok {
		t.Fatal("Expected estimate for centered iris")
	}
	if math.Abs(v.X) > 1e-9 || math.Abs(v.Y) > 1e-9 {
		t.Errorf("Expected (0,0), got (%.4f,%.4f)", v.X, v.Y)
	}
	if v.Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %v", v.Confidence)
	}
}

func TestEstimator_MatchesScriptedGaze(t *testing.T) {
	tests := []struct {
		name string
		in   Vector
	}{
		{"left", Vector{X: -0.8, Y: 0}},
		{"right", Vector{X: 0.8, Y: 0}},
		{"up", Vector{X: 0, Y: -0.5}},
		{"down right", Vector{X: 0.3, Y: 0.7}},
	}

	e := NewEstimator(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := e.Estimate(LandmarksFor(tc.in))
			if !ok {
				t.Fatal("Expected estimate")
			}
			if math.Abs(v.X-tc.in.X) > 1e-9 || math.Abs(v.Y-tc.in.Y) > 1e-9 {
				t.Errorf("Expected (%.2f,%.2f), got (%.4f,%.4f)", tc.in.X, tc.in.Y, v.X, v.Y)
			}
		})
	}
}

func TestEstimator_ClampsToUnitRange(t *testing.T) {
	lm := LandmarksFor(Vector{})
	lm.LeftEye.Iris.X = 10
	lm.RightEye.Iris.X = 10

	v, ok := NewEstimator(nil).Estimate(lm)
	if !ok {
		t.Fatal("Expected estimate")
	}
	if v.X != 1 {
		t.Errorf("Expected X clamped to 1, got %v", v.X)
	}
}

func TestEstimator_DegenerateEye(t *testing.T) {
	e := NewEstimator(nil)

	lm := LandmarksFor(Vector{})
	lm.RightEye.RightCorner = lm.RightEye.LeftCorner
	if _, ok := e.Estimate(lm); ok {
		t.Error("Expected no estimate for zero-width eye")
	}

	lm = LandmarksFor(Vector{})
	lm.LeftEye.Bottom = lm.LeftEye.Top
	if _, ok := e.Estimate(lm); ok {
		t.Error("Expected no estimate for zero-height eye")
	}

	if _, ok := e.Estimate(nil); ok {
		t.Error("Expected no estimate for nil landmarks")
	}
}

func TestEstimator_HoldsLastOnNonFinite(t *testing.T) {
	e := NewEstimator(nil)

	bad := LandmarksFor(Vector{})
	bad.LeftEye.Iris.X = math.NaN()

	// No previous gaze: nothing to hold
	if _, ok := e.Estimate(bad); ok {
		t.Error("Expected no estimate without a previous gaze")
	}

	good := Vector{X: 0.25, Y: -0.25, Confidence: 0.8}
	e.Estimate(LandmarksFor(good))

	v, ok := e.Estimate(bad)
	if !ok {
		t.Fatal("Expected last gaze to be held")
	}
	if math.Abs(v.X-good.X) > 1e-9 || math.Abs(v.Y-good.Y) > 1e-9 {
		t.Errorf("Expected held gaze %+v, got %+v", good, v)
	}
	if e.HeldFrames() != 1 {
		t.Errorf("Expected 1 held frame, got %d", e.HeldFrames())
	}

	e.Reset()
	if _, ok := e.Last(); ok {
		t.Error("Expected no last gaze after reset")
	}
}

func TestScriptedLandmarker_RepeatsFinalStep(t *testing.T) {
	s := NewScriptedLandmarker(
		ScriptStep{Landmarks: LandmarksFor(Vector{X: 0.1})},
		ScriptStep{},
	)

	first, _ := s.ProcessFrame(nil)
	if first == nil {
		t.Fatal("Expected landmarks on first step")
	}
	for i := 0; i < 3; i++ {
		lm, err := s.ProcessFrame(nil)
		if lm != nil || err != nil {
			t.Errorf("Expected no face on step %d", i+2)
		}
	}
	if s.Calls() != 4 {
		t.Errorf("Expected 4 calls, got %d", s.Calls())
	}
}

func TestScriptedLandmarker_AppendAfterExhausted(t *testing.T) {
	s := NewScriptedLandmarker(ScriptStep{})
	s.ProcessFrame(nil)
	s.ProcessFrame(nil)

	s.Append(ScriptStep{Landmarks: LandmarksFor(Vector{X: 0.5})})
	lm, _ := s.ProcessFrame(nil)
	if lm == nil {
		t.Fatal("Expected the appended step to be returned")
	}
}
