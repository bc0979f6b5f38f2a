// Package config loads the visioncursor application configuration.
//
// Priority, highest first: command-line flags (applied by the caller),
// environment variables, the YAML file, built-in defaults. Keys missing from
// the file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-visioncursor/internal/log"
	"github.com/teslashibe/go-visioncursor/internal/loopback"
	"github.com/teslashibe/go-visioncursor/pkg/calibration"
	"github.com/teslashibe/go-visioncursor/pkg/camera"
	"github.com/teslashibe/go-visioncursor/pkg/cursor"
	"github.com/teslashibe/go-visioncursor/pkg/tracking"
	"github.com/teslashibe/go-visioncursor/pkg/tracking/detection"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvLogLevel = log.EnvLevel
	EnvDataDir  = "VISIONCURSOR_DATA_DIR"
	EnvCamera   = "VISIONCURSOR_CAMERA"
	EnvModel    = "VISIONCURSOR_MODEL"
)

// DefaultTargetFPS is the processing loop rate.
const DefaultTargetFPS = 30

// StorageConfig controls where data is kept.
type StorageConfig struct {
	// DataDir holds the calibration file. Empty uses the user config dir.
	DataDir  string `yaml:"data_dir" json:"data_dir"`
	Filename string `yaml:"filename" json:"filename"`

	// File logging is off by default
	EnableFileLogging bool   `yaml:"enable_file_logging" json:"enable_file_logging"`
	LogFile           string `yaml:"log_file" json:"log_file"`
}

// CursorConfig controls pointer output.
type CursorConfig struct {
	MinInterval time.Duration `yaml:"min_interval" json:"min_interval"`
	DryRun      bool          `yaml:"dry_run" json:"dry_run"` // report positions without moving the pointer
}

// DashboardConfig controls the local web dashboard.
type DashboardConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"` // loopback only
}

// AppConfig is the complete application configuration.
type AppConfig struct {
	Camera      camera.Config      `yaml:"camera" json:"camera"`
	Detection   detection.Config   `yaml:"detection" json:"detection"`
	Gaze        tracking.Config    `yaml:"gaze" json:"gaze"`
	Calibration calibration.Config `yaml:"calibration" json:"calibration"`
	Storage     StorageConfig      `yaml:"storage" json:"storage"`
	Cursor      CursorConfig       `yaml:"cursor" json:"cursor"`
	Dashboard   DashboardConfig    `yaml:"dashboard" json:"dashboard"`

	LogLevel  string  `yaml:"log_level" json:"log_level"`
	TargetFPS float64 `yaml:"target_fps" json:"target_fps"`
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Camera:      camera.DefaultConfig(),
		Detection:   detection.DefaultConfig(),
		Gaze:        tracking.DefaultConfig(),
		Calibration: calibration.DefaultConfig(),
		Storage: StorageConfig{
			Filename: calibration.DefaultFilename,
			LogFile:  "visioncursor.log",
		},
		Cursor: CursorConfig{
			MinInterval: cursor.DefaultMinInterval,
		},
		Dashboard: DashboardConfig{
			Addr: loopback.DashboardAddr,
		},
		LogLevel:  log.DefaultLevel,
		TargetFPS: DefaultTargetFPS,
	}
}

// DefaultPath returns ~/.visioncursor/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".visioncursor", "config.yaml"), nil
}

// Load reads the file at path over the defaults and applies the environment.
// An empty path uses DefaultPath, which may be absent; an explicit path
// must exist.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			cfg.ApplyEnv()
			return cfg, nil
		}
		path = p
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides settings from VISIONCURSOR_* variables.
// Unparseable values are ignored.
func (c *AppConfig) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv(EnvCamera); v != "" {
		if idx, err := strconv.Atoi(v); err == nil {
			c.Camera.Index = idx
		}
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Detection.ModelPath = v
	}
}

// DataDir returns the configured data directory or the platform default.
func (c *AppConfig) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return calibration.DefaultDir()
}

// LogFilePath returns the log file path when file logging is enabled,
// otherwise "". Relative paths live in the data directory.
func (c *AppConfig) LogFilePath() string {
	if !c.Storage.EnableFileLogging || c.Storage.LogFile == "" {
		return ""
	}
	if filepath.IsAbs(c.Storage.LogFile) {
		return c.Storage.LogFile
	}
	dir, err := c.DataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, c.Storage.LogFile)
}

// Validate checks every section and returns all problems joined.
func (c *AppConfig) Validate() error {
	var errs []error

	for _, msg := range c.Camera.Validate() {
		errs = append(errs, fmt.Errorf("camera: %s", msg))
	}
	if err := c.Gaze.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gaze: %w", err))
	}
	if err := c.Calibration.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("calibration: %w", err))
	}
	if err := c.Detection.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detection: %w", err))
	}
	if c.TargetFPS < 1 || c.TargetFPS > 60 {
		errs = append(errs, fmt.Errorf("target_fps must be between 1 and 60, got %v", c.TargetFPS))
	}
	if c.Cursor.MinInterval < 0 {
		errs = append(errs, fmt.Errorf("cursor: min_interval must not be negative, got %v", c.Cursor.MinInterval))
	}
	if c.Storage.Filename == "" {
		errs = append(errs, errors.New("storage: filename must not be empty"))
	}
	if c.Dashboard.Enabled {
		if err := loopback.Check(c.Dashboard.Addr); err != nil {
			errs = append(errs, fmt.Errorf("dashboard: %w", err))
		}
	}

	return errors.Join(errs...)
}
