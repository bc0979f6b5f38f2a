package calibration

import (
	"fmt"
	"time"
)

// NormalizedPosition is a target position as a fraction of the screen (0-1).
type NormalizedPosition struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Config holds the guided calibration parameters.
type Config struct {
	// SamplesPerPoint is how many gaze samples each target collects.
	// 90 samples is three seconds at 30 fps.
	SamplesPerPoint int `yaml:"samples_per_point" json:"samples_per_point"`

	// MinSamples is the fewest samples the aggregator accepts per target.
	MinSamples int `yaml:"min_samples" json:"min_samples"`

	// Countdown before sample collection starts for each target.
	Countdown time.Duration `yaml:"countdown" json:"countdown"`

	// TargetTimeout cancels calibration when one target takes this long to
	// fill (face lost, user walked away). Zero disables the timeout.
	TargetTimeout time.Duration `yaml:"target_timeout" json:"target_timeout"`

	// TargetPositions in order: center, left, right, top, bottom.
	TargetPositions []NormalizedPosition `yaml:"target_positions" json:"target_positions"`

	// TargetSize is the on-screen dot diameter in pixels.
	TargetSize int `yaml:"target_size" json:"target_size"`

	// OutlierTrimPercent is trimmed from each end before averaging (0-0.5).
	OutlierTrimPercent float64 `yaml:"outlier_trim_percent" json:"outlier_trim_percent"`
}

// DefaultTargetPositions returns the five-point layout, inset 15% from the
// edges where eye trackers are least reliable.
func DefaultTargetPositions() []NormalizedPosition {
	return []NormalizedPosition{
		{X: 0.5, Y: 0.5},  // Center
		{X: 0.15, Y: 0.5}, // Left
		{X: 0.85, Y: 0.5}, // Right
		{X: 0.5, Y: 0.15}, // Top
		{X: 0.5, Y: 0.85}, // Bottom
	}
}

// DefaultConfig returns the recommended calibration configuration.
func DefaultConfig() Config {
	return Config{
		SamplesPerPoint:    90,
		MinSamples:         DefaultMinSamples,
		Countdown:          3 * time.Second,
		TargetTimeout:      20 * time.Second,
		TargetPositions:    DefaultTargetPositions(),
		TargetSize:         25,
		OutlierTrimPercent: 0.15,
	}
}

// QuickConfig returns a shorter procedure for repeat users.
func QuickConfig() Config {
	cfg := DefaultConfig()
	cfg.SamplesPerPoint = 45
	cfg.Countdown = 2 * time.Second
	return cfg
}

// Validate checks that the configuration can drive a calibration.
func (c *Config) Validate() error {
	if c.SamplesPerPoint < DefaultMinSamples {
		return fmt.Errorf("samples_per_point must be at least %d, got %d", DefaultMinSamples, c.SamplesPerPoint)
	}
	if c.MinSamples < 1 || c.MinSamples > c.SamplesPerPoint {
		return fmt.Errorf("min_samples must be between 1 and samples_per_point, got %d", c.MinSamples)
	}
	if c.Countdown < 0 {
		return fmt.Errorf("countdown must not be negative, got %v", c.Countdown)
	}
	if c.TargetTimeout < 0 {
		return fmt.Errorf("target_timeout must not be negative, got %v", c.TargetTimeout)
	}
	if len(c.TargetPositions) < MinPoints {
		return fmt.Errorf("need at least %d target_positions, got %d", MinPoints, len(c.TargetPositions))
	}
	for i, p := range c.TargetPositions {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			return fmt.Errorf("target_positions[%d] (%.2f, %.2f) outside [0,1]", i, p.X, p.Y)
		}
	}
	if c.OutlierTrimPercent < 0 || c.OutlierTrimPercent >= 0.5 {
		return fmt.Errorf("outlier_trim_percent must be in [0, 0.5), got %v", c.OutlierTrimPercent)
	}
	return nil
}
