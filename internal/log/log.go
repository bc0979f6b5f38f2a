// Package log provides structured logging for visioncursor.
// It wraps slog with privacy-conservative defaults: console only, file
// logging strictly opt-in, and no network handlers.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// EnvLevel is the environment variable consulted when no level is given.
const EnvLevel = "VISIONCURSOR_LOG_LEVEL"

// DefaultLevel is used when neither a flag nor EnvLevel sets one.
const DefaultLevel = "warn"

var (
	logger  *slog.Logger
	once    sync.Once
	logFile *os.File
)

// ParseLevel maps a level name to a slog.Level.
// Valid levels: "debug", "info", "warn", "error". Unknown names map to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error", "critical":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Init initializes the global logger with the specified level.
// An empty level falls back to $VISIONCURSOR_LOG_LEVEL, then DefaultLevel.
func Init(level string) {
	InitWithFile(level, "")
}

// InitWithFile is Init plus an optional append-only log file.
// If the file cannot be opened, logging continues on stdout only.
func InitWithFile(level, path string) {
	once.Do(func() {
		if level == "" {
			level = os.Getenv(EnvLevel)
		}
		if level == "" {
			level = DefaultLevel
		}

		opts := &slog.HandlerOptions{
			Level: ParseLevel(level),
		}

		var out io.Writer = os.Stdout
		var fileErr error
		if path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				fileErr = err
			} else {
				logFile = f
				out = io.MultiWriter(os.Stdout, f)
			}
		}

		// Use JSON in production, text in development
		if os.Getenv("GO_ENV") == "production" {
			logger = slog.New(slog.NewJSONHandler(out, opts))
		} else {
			logger = slog.New(slog.NewTextHandler(out, opts))
		}

		slog.SetDefault(logger)

		if fileErr != nil {
			logger.Warn("file logging disabled", "path", path, "error", fileErr)
		} else if logFile != nil {
			logger.Info("file logging enabled", "path", path)
		}
	})
}

// L returns the global logger instance.
func L() *slog.Logger {
	if logger == nil {
		Init("")
	}
	return logger
}

// Close flushes and closes the log file, if any.
func Close() error {
	if logFile == nil {
		return nil
	}
	return logFile.Close()
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
