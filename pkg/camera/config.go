// Package camera describes capture settings and presets. The webcam
// subpackage opens the device.
package camera

// Config holds the capture parameters.
type Config struct {
	Index     int `yaml:"index" json:"index"`         // OS camera index
	Width     int `yaml:"width" json:"width"`         // Frame width in pixels
	Height    int `yaml:"height" json:"height"`       // Frame height in pixels
	Framerate int `yaml:"framerate" json:"framerate"` // Target FPS
	Quality   int `yaml:"quality" json:"quality"`     // JPEG quality 1-100

	// Frames discarded after opening while exposure settles
	WarmupFrames int `yaml:"warmup_frames" json:"warmup_frames"`
}

// DefaultConfig returns the recommended configuration.
// 640x480 balances landmark quality against CPU use.
func DefaultConfig() Config {
	return Config{
		Index:        0,
		Width:        640,
		Height:       480,
		Framerate:    30,
		Quality:      85,
		WarmupFrames: 10,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Index < 0 {
		errors = append(errors, "index must be non-negative")
	}
	if c.Width < 160 || c.Width > 3840 {
		errors = append(errors, "width must be between 160 and 3840")
	}
	if c.Height < 120 || c.Height > 2160 {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > 60 {
		errors = append(errors, "framerate must be between 1 and 60")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}
	if c.WarmupFrames < 0 {
		errors = append(errors, "warmup_frames must be non-negative")
	}

	return errors
}
