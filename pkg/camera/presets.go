package camera

import (
	"fmt"
	"slices"
)

// Preset names accepted by -camera-preset
const (
	PresetDefault = "default"
	PresetLow     = "low"
	Preset720p    = "720p"
)

var presets = map[string]func() Config{
	PresetDefault: DefaultConfig,
	PresetLow:     LowPowerConfig,
	Preset720p:    HD720Config,
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ApplyPreset replaces the capture settings with the named preset.
// The device index is kept.
func (c *Config) ApplyPreset(name string) error {
	build, ok := presets[name]
	if !ok {
		return fmt.Errorf("camera: unknown preset %q (have %v)", name, PresetNames())
	}
	index := c.Index
	*c = build()
	c.Index = index
	return nil
}

// LowPowerConfig trades landmark precision for CPU on older laptops.
func LowPowerConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 320
	cfg.Height = 240
	cfg.Framerate = 15
	cfg.Quality = 75
	return cfg
}

// HD720Config gives sharper irises at a distance for more CPU.
func HD720Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}
