package calibration

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultFilename is the calibration file name inside the data directory.
const DefaultFilename = "calibration.json"

// Store persists a single calibration record as a JSON file.
type Store struct {
	dir    string
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates a store for dir/filename. The directory is created on
// first save. A filename that resolves outside dir is rejected.
func NewStore(dir, filename string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if filename == "" {
		filename = DefaultFilename
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	path := filepath.Join(absDir, filename)

	// Reject "../" and absolute filenames that escape the data dir
	rel, err := filepath.Rel(absDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s", ErrUnsafePath, filename)
	}

	return &Store{dir: absDir, path: path, logger: logger}, nil
}

// DefaultDir returns the per-user data directory (~/.config/visioncursor on Linux).
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(base, "visioncursor"), nil
}

// Path returns the absolute file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a calibration file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save validates data and writes it atomically.
func (s *Store) Save(data *Data) error {
	if err := data.Validate(); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return &StoreError{Op: "save", Path: s.path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return &StoreError{Op: "save", Path: s.path, Err: err}
	}

	// Write to temp file first, then rename (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0644); err != nil {
		return &StoreError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return &StoreError{Op: "save", Path: s.path, Err: err}
	}

	s.logger.Info("calibration saved", "path", s.path, "points", len(data.Points))
	return nil
}

// Load reads and validates the stored calibration.
// Returns ErrNoCalibration when no file exists.
func (s *Store) Load() (*Data, error) {
	s.mu.Lock()
	raw, err := os.ReadFile(s.path)
	s.mu.Unlock()

	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoCalibration
	}
	if err != nil {
		return nil, &StoreError{Op: "load", Path: s.path, Err: err}
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &StoreError{Op: "load", Path: s.path, Err: err}
	}
	if err := data.Validate(); err != nil {
		return nil, &StoreError{Op: "load", Path: s.path, Err: err}
	}

	s.logger.Debug("calibration loaded", "path", s.path, "timestamp", data.Timestamp)
	return &data, nil
}

// Delete removes the stored calibration. Returns false if there was none.
func (s *Store) Delete() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &StoreError{Op: "delete", Path: s.path, Err: err}
	}

	s.logger.Info("calibration deleted", "path", s.path)
	return true, nil
}
