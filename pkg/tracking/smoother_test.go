package tracking

import (
	"math"
	"testing"
)

func TestSmoother_FirstCallAdoptsRaw(t *testing.T) {
	s := NewSmoother(DefaultConfig(), 1920, 1080)

	got := s.Smooth(500.7, 300.2)
	if got.X != 500 || got.Y != 300 {
		t.Errorf("Expected (500, 300), got (%d, %d)", got.X, got.Y)
	}
	if got.Velocity != 0 {
		t.Errorf("Expected velocity 0, got %v", got.Velocity)
	}
}

func TestSmoother_DeadZone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeadZoneRadius = 0.05
	s := NewSmoother(cfg, 1920, 1080)

	if s.DeadZonePixels() != 54 {
		t.Fatalf("Expected dead zone 54px, got %d", s.DeadZonePixels())
	}

	s.Smooth(960, 540)
	for i := 0; i < 100; i++ {
		got := s.Smooth(990, 540) // 30px < 54px
		if got.X != 960 || got.Y != 540 {
			t.Fatalf("Frame %d: expected (960, 540), got (%d, %d)", i, got.X, got.Y)
		}
		if got.Velocity != 0 {
			t.Fatalf("Frame %d: expected velocity 0, got %v", i, got.Velocity)
		}
	}
}

func TestSmoother_VelocityClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SmoothingFactor = 1.0
	cfg.Sensitivity = 1.0
	cfg.MaxVelocity = 32
	s := NewSmoother(cfg, 1920, 1080)

	s.Smooth(0, 540)
	got := s.Smooth(1024, 540)

	if got.Velocity != 32 {
		t.Errorf("Expected velocity 32, got %v", got.Velocity)
	}
	if got.X != 32 || got.Y != 540 {
		t.Errorf("Expected (32, 540), got (%d, %d)", got.X, got.Y)
	}
}

func TestSmoother_OrderOfOperations(t *testing.T) {
	// Defaults: alpha 0.2, sensitivity 0.8, max 35, dead zone int(0.035*1080)=37
	s := NewSmoother(DefaultConfig(), 1920, 1080)
	s.Smooth(960, 540)

	// 40px: passes dead zone, 32px after sensitivity, under clamp, 6.4px after EMA
	got := s.Smooth(1000, 540)
	if math.Abs(got.Velocity-32) > 1e-9 {
		t.Errorf("Expected velocity 32, got %v", got.Velocity)
	}
	if got.X != 966 {
		t.Errorf("Expected x 966, got %d", got.X)
	}

	// 600px: 480 after sensitivity, clamped to 35, 7px after EMA
	s.Reset()
	s.Smooth(960, 540)
	got = s.Smooth(960, 1140)
	if got.Velocity != 35 {
		t.Errorf("Expected velocity 35, got %v", got.Velocity)
	}
	if got.Y < 546 || got.Y > 547 {
		t.Errorf("Expected y near 547, got %d", got.Y)
	}
}

func TestSmoother_ClampsToScreen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SmoothingFactor = 1.0
	cfg.Sensitivity = 1.0
	cfg.MaxVelocity = 10000
	cfg.DeadZoneRadius = 0
	s := NewSmoother(cfg, 800, 600)

	s.Smooth(790, 590)
	got := s.Smooth(2000, 2000)
	if got.X != 799 || got.Y != 599 {
		t.Errorf("Expected (799, 599), got (%d, %d)", got.X, got.Y)
	}

	got = s.Smooth(-500, -500)
	if got.X != 0 || got.Y != 0 {
		t.Errorf("Expected (0, 0), got (%d, %d)", got.X, got.Y)
	}
}

func TestSmoother_Reset(t *testing.T) {
	s := NewSmoother(DefaultConfig(), 1920, 1080)
	s.Smooth(100, 100)

	if _, _, ok := s.Position(); !ok {
		t.Fatal("Expected position after first frame")
	}

	s.Reset()
	if _, _, ok := s.Position(); ok {
		t.Error("Expected no position after reset")
	}

	got := s.Smooth(1500, 900)
	if got.X != 1500 || got.Y != 900 {
		t.Errorf("Expected raw adopted after reset, got (%d, %d)", got.X, got.Y)
	}
}

func TestSmoother_UpdateConfigKeepsPosition(t *testing.T) {
	s := NewSmoother(DefaultConfig(), 1920, 1080)
	s.Smooth(960, 540)

	cfg := DefaultConfig()
	cfg.DeadZoneRadius = 0.1
	s.UpdateConfig(cfg)

	if s.DeadZonePixels() != 108 {
		t.Errorf("Expected dead zone 108px, got %d", s.DeadZonePixels())
	}
	x, y, ok := s.Position()
	if !ok || x != 960 || y != 540 {
		t.Errorf("Expected position kept at (960, 540), got (%d, %d, %v)", x, y, ok)
	}
}

func TestSmoother_UpdateScreenSize(t *testing.T) {
	s := NewSmoother(DefaultConfig(), 1920, 1080)
	s.Smooth(960, 540)

	s.UpdateScreenSize(2560, 1440)
	if s.DeadZonePixels() != 50 {
		t.Errorf("Expected dead zone 50px, got %d", s.DeadZonePixels())
	}
	if _, _, ok := s.Position(); !ok {
		t.Error("Expected position kept after resize")
	}
}

func TestConfigPresetsValid(t *testing.T) {
	configs := []struct {
		name string
		cfg  Config
	}{
		{"Default", DefaultConfig()},
		{"Smooth", SmoothConfig()},
		{"Responsive", ResponsiveConfig()},
	}

	for _, tc := range configs {
		if err := tc.cfg.Validate(); err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"smoothing above 1", func(c *Config) { c.SmoothingFactor = 1.5 }},
		{"dead zone too large", func(c *Config) { c.DeadZoneRadius = 0.2 }},
		{"sensitivity too low", func(c *Config) { c.Sensitivity = 0.05 }},
		{"zero velocity", func(c *Config) { c.MaxVelocity = 0 }},
		{"confidence above 1", func(c *Config) { c.MinFaceConfidence = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func f64(v float64) *float64 { return &v }

func TestTuningUpdate_Apply(t *testing.T) {
	cfg := DefaultConfig()

	got := TuningUpdate{SmoothingFactor: f64(0.5)}.Apply(cfg)
	if got.SmoothingFactor != 0.5 {
		t.Errorf("Expected smoothing 0.5, got %v", got.SmoothingFactor)
	}
	if got.MaxVelocity != cfg.MaxVelocity || got.Sensitivity != cfg.Sensitivity || got.DeadZoneRadius != cfg.DeadZoneRadius {
		t.Error("Expected absent params to leave fields unchanged")
	}

	got = TuningUpdate{Sensitivity: f64(10), DeadZoneRadius: f64(0.5)}.Apply(cfg)
	if got.Sensitivity != 5.0 {
		t.Errorf("Expected sensitivity clamped to 5.0, got %v", got.Sensitivity)
	}
	if got.DeadZoneRadius != 0.1 {
		t.Errorf("Expected dead zone clamped to 0.1, got %v", got.DeadZoneRadius)
	}
}

func TestTuningUpdate_ZeroDeadZone(t *testing.T) {
	got := TuningUpdate{DeadZoneRadius: f64(0)}.Apply(DefaultConfig())
	if got.DeadZoneRadius != 0 {
		t.Errorf("Expected dead zone 0, got %v", got.DeadZoneRadius)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Expected zero dead zone valid, got %v", err)
	}

	s := NewSmoother(got, 1920, 1080)
	if s.DeadZonePixels() != 0 {
		t.Errorf("Expected 0px dead zone, got %d", s.DeadZonePixels())
	}
}

func TestTuningUpdate_FromParams(t *testing.T) {
	p := TuningParams{SmoothingFactor: 0.3, DeadZoneRadius: 0, MaxVelocity: 50, Sensitivity: 1.2}
	got := TuningFromConfig(p.Update().Apply(DefaultConfig()))
	if got != p {
		t.Errorf("Expected %+v, got %+v", p, got)
	}
}

func TestTuningFromConfig(t *testing.T) {
	p := TuningFromConfig(DefaultConfig())
	if p.SmoothingFactor != 0.2 || p.MaxVelocity != 35 {
		t.Errorf("Expected defaults, got %+v", p)
	}
}
