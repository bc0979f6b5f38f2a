package camera

import "testing"

func TestPresetsValid(t *testing.T) {
	for _, name := range PresetNames() {
		cfg := DefaultConfig()
		if err := cfg.ApplyPreset(name); err != nil {
			t.Fatalf("ApplyPreset(%q) failed: %v", name, err)
		}
		if errs := cfg.Validate(); len(errs) > 0 {
			t.Errorf("Preset %q invalid: %v", name, errs)
		}
	}
}

func TestApplyPresetKeepsIndex(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Index = 2

	if err := cfg.ApplyPreset(PresetLow); err != nil {
		t.Fatalf("ApplyPreset failed: %v", err)
	}
	if cfg.Index != 2 {
		t.Errorf("Expected index 2, got %d", cfg.Index)
	}
	if cfg.Width != 320 || cfg.Framerate != 15 {
		t.Errorf("Expected 320 wide at 15 fps, got %d at %d", cfg.Width, cfg.Framerate)
	}
}

func TestApplyPresetUnknown(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ApplyPreset("8k"); err == nil {
		t.Error("Expected error for unknown preset")
	}
	if cfg.Width != 640 {
		t.Errorf("Expected config untouched, got width %d", cfg.Width)
	}
}

func TestPresetNamesSorted(t *testing.T) {
	names := PresetNames()
	want := []string{Preset720p, PresetDefault, PresetLow}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, names)
			break
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errors int
	}{
		{"valid", func(c *Config) {}, 0},
		{"negative index", func(c *Config) { c.Index = -1 }, 1},
		{"tiny frame", func(c *Config) { c.Width = 10; c.Height = 10 }, 2},
		{"framerate too high", func(c *Config) { c.Framerate = 240 }, 1},
		{"quality zero", func(c *Config) { c.Quality = 0 }, 1},
		{"negative warmup", func(c *Config) { c.WarmupFrames = -1 }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if got := len(cfg.Validate()); got != tt.errors {
				t.Errorf("Expected %d errors, got %d: %v", tt.errors, got, cfg.Validate())
			}
		})
	}
}
