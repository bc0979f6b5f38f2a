// visioncursor - move the mouse pointer with your eyes using a webcam
//
// Usage:
//
//	visioncursor [command] [flags]
//
// Commands: track (default), calibrate, status, reset, cameras.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/go-visioncursor/internal/config"
	"github.com/teslashibe/go-visioncursor/internal/log"
	"github.com/teslashibe/go-visioncursor/pkg/app"
	"github.com/teslashibe/go-visioncursor/pkg/camera"
)

// flags holds command line overrides; zero values leave the config alone.
type flags struct {
	configPath string
	logLevel   string
	debug      bool
	camera     int
	preset     string
	model      string
	screen     string
	dashboard  string
	noCursor   bool
}

func main() {
	command, args := splitCommand(os.Args[1:])
	f, rest := parseFlags(flag.CommandLine, args)
	if command == "" && len(rest) > 0 {
		command = rest[0]
	}
	if command == "" {
		command = "track"
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(cfg, f); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(2)
	}

	log.InitWithFile(cfg.LogLevel, cfg.LogFilePath())
	defer log.Close()
	logger := log.L()

	switch command {
	case "status":
		err = app.PrintStatus(context.Background(), cfg, os.Stdout, logger)
	case "reset":
		err = app.Reset(cfg, os.Stdout, logger)
	case "cameras":
		app.ListCameras(os.Stdout, 10)
	case "track", "calibrate":
		err = run(cfg, f, command, logger)
	default:
		unknownCommand(flag.CommandLine, command)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, f flags, command string, logger *slog.Logger) error {
	width, height, err := app.ParseScreen(f.screen)
	if err != nil {
		return err
	}

	mode := app.ModeTrack
	if command == "calibrate" {
		mode = app.ModeCalibrate
	}

	a, err := app.New(cfg, app.Options{Mode: mode, ScreenWidth: width, ScreenHeight: height}, logger)
	if err != nil {
		return err
	}
	if err := a.Init(); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer a.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if mode == app.ModeCalibrate {
		fmt.Println("👀 Follow the dot with your eyes. Keep your head still.")
		fmt.Printf("   Open %s to see the targets; the countdown starts when the page connects.\n", a.DashboardURL())
	} else {
		fmt.Println("🖱️  Tracking. Press Ctrl+C to stop.")
	}

	if err := a.Run(ctx); err != nil {
		return err
	}
	logger.Info("visioncursor stopped", "mode", mode)
	return nil
}

// splitCommand accepts the command before or after the flags.
func splitCommand(args []string) (string, []string) {
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		return args[0], args[1:]
	}
	return "", args
}

// unknownCommand reports a bad command followed by the flag set's usage.
func unknownCommand(fs *flag.FlagSet, command string) {
	fmt.Fprintf(fs.Output(), "unknown command %q\n", command)
	fs.Usage()
}

// parseFlags parses command line flags into fs and returns the remaining
// arguments.
func parseFlags(fs *flag.FlagSet, args []string) (flags, []string) {
	var f flags

	fs.StringVar(&f.configPath, "config", "", "Config file (default ~/.visioncursor/config.yaml)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.BoolVar(&f.debug, "debug", false, "Shorthand for -log-level debug")
	fs.IntVar(&f.camera, "camera", -1, "Camera index")
	fs.StringVar(&f.preset, "camera-preset", "", "Capture preset: "+strings.Join(camera.PresetNames(), ", "))
	fs.StringVar(&f.model, "model", "", "Path to the YuNet face model")
	fs.StringVar(&f.screen, "screen", "", "Screen size WIDTHxHEIGHT (default: detect)")
	fs.StringVar(&f.dashboard, "dashboard", "", "Enable the dashboard on this loopback address")
	fs.BoolVar(&f.noCursor, "no-cursor", false, "Dry run: compute positions without moving the pointer")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: visioncursor [track|calibrate|status|reset|cameras] [flags]")
		fs.PrintDefaults()
	}

	fs.Parse(args)
	return f, fs.Args()
}

// applyFlags applies flags over the loaded configuration.
func applyFlags(cfg *config.AppConfig, f flags) error {
	if f.preset != "" {
		if err := cfg.Camera.ApplyPreset(f.preset); err != nil {
			return err
		}
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.debug {
		cfg.LogLevel = "debug"
	}
	if f.camera >= 0 {
		cfg.Camera.Index = f.camera
	}
	if f.model != "" {
		cfg.Detection.ModelPath = f.model
	}
	if f.dashboard != "" {
		cfg.Dashboard.Enabled = true
		cfg.Dashboard.Addr = f.dashboard
	}
	if f.noCursor {
		cfg.Cursor.DryRun = true
	}
	return nil
}
