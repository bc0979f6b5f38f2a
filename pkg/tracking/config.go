package tracking

import "fmt"

// Config holds all tunable parameters for gaze smoothing
type Config struct {
	// Smoothing
	SmoothingFactor float64 `yaml:"smoothing_factor" json:"smoothing_factor"` // EMA alpha (0-1, lower = smoother)
	DeadZoneRadius  float64 `yaml:"dead_zone_radius" json:"dead_zone_radius"` // Fraction of min(width, height)

	// Movement
	MaxVelocity float64 `yaml:"max_velocity" json:"max_velocity"` // Max pixels per frame
	Sensitivity float64 `yaml:"sensitivity" json:"sensitivity"`   // Displacement multiplier

	// Face handling
	MinFaceConfidence float64 `yaml:"min_face_confidence" json:"min_face_confidence"` // Drop frames below this
	FreezeOnFaceLost  bool    `yaml:"freeze_on_face_lost" json:"freeze_on_face_lost"` // Hold cursor instead of drifting
}

// DefaultConfig returns the recommended configuration for everyday use
func DefaultConfig() Config {
	return Config{
		SmoothingFactor: 0.2,   // 20% of each step
		DeadZoneRadius:  0.035, // 3.5% of screen
		MaxVelocity:     35.0,  // px/frame

		Sensitivity: 0.8,

		MinFaceConfidence: 0.6,
		FreezeOnFaceLost:  true,
	}
}

// SmoothConfig returns a configuration for slower, steadier cursor motion
func SmoothConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothingFactor = 0.1
	cfg.DeadZoneRadius = 0.05
	cfg.MaxVelocity = 20.0
	return cfg
}

// ResponsiveConfig returns a configuration for fast cursor motion
func ResponsiveConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothingFactor = 0.4
	cfg.DeadZoneRadius = 0.02
	cfg.MaxVelocity = 60.0
	cfg.Sensitivity = 1.0
	return cfg
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.SmoothingFactor < 0 || c.SmoothingFactor > 1 {
		return fmt.Errorf("smoothing_factor must be between 0.0 and 1.0, got %v", c.SmoothingFactor)
	}
	if c.DeadZoneRadius < 0 || c.DeadZoneRadius > 0.1 {
		return fmt.Errorf("dead_zone_radius must be between 0.0 and 0.1, got %v", c.DeadZoneRadius)
	}
	if c.Sensitivity < 0.1 || c.Sensitivity > 5.0 {
		return fmt.Errorf("sensitivity must be between 0.1 and 5.0, got %v", c.Sensitivity)
	}
	if c.MaxVelocity <= 0 {
		return fmt.Errorf("max_velocity must be positive, got %v", c.MaxVelocity)
	}
	if c.MinFaceConfidence < 0 || c.MinFaceConfidence > 1 {
		return fmt.Errorf("min_face_confidence must be between 0.0 and 1.0, got %v", c.MinFaceConfidence)
	}
	return nil
}
