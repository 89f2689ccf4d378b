// Command voxd runs the voice-session orchestrator with a console front-end.
//
// Usage:
//
//	GEMINI_API_KEY=gk-...    voxd [flags]
//	ANTHROPIC_API_KEY=sk-... voxd [flags]
//
// Flags:
//
//	-settings string     Path to YAML settings file (default: ~/.voxd/settings.yaml)
//	-model string        Model ID override (default: from settings)
//	-log string          Log file path (default: ~/.voxd/voxd.log)
//	-debug               Enable debug logging
//	-task-binary string  Taskwarrior-compatible binary (default: task)
//	-notes-url string    Notes REST API base URL (default: http://127.0.0.1:27123)
//
// API keys are read from the environment, optionally via a .env file in the
// working directory. At least one of GEMINI_API_KEY or ANTHROPIC_API_KEY must
// be set; notes operations additionally need OBSIDIAN_API_KEY.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"voxd"
	"voxd/bubbletea"
	"voxd/classify"
	"voxd/logging"
	"voxd/noteshttp"
	"voxd/platform"
	"voxd/taskcli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "voxd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; explicit env vars always win.
	_ = godotenv.Load()

	// Parse flags.
	var (
		settingsPath = flag.String("settings", defaultSettingsPath(), "Path to YAML settings file")
		model        = flag.String("model", "", "Model ID override")
		logPath      = flag.String("log", logging.DefaultPath(), "Log file path")
		debug        = flag.Bool("debug", false, "Enable debug logging")
		taskBinary   = flag.String("task-binary", "task", "Taskwarrior-compatible binary")
		notesURL     = flag.String("notes-url", "", "Notes REST API base URL")
	)
	flag.Parse()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	settings, err := loadSettings(*settingsPath, *settingsPath == defaultSettingsPath())
	if err != nil {
		return err
	}
	if *model != "" {
		settings.Model = *model
	}

	logger, err := logging.New(*logPath, *debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Build the provider registry. Env vars are read here and passed as values.
	registry, err := buildRegistry(ctx,
		os.Getenv("GEMINI_API_KEY"), os.Getenv("ANTHROPIC_API_KEY"))
	if err != nil {
		return err
	}

	classifier := classify.New(registry, settings.Model, logger)
	runner := taskcli.New(logger, taskcli.WithBinary(*taskBinary))

	var notesOpts []noteshttp.Option
	if *notesURL != "" {
		notesOpts = append(notesOpts, noteshttp.WithBaseURL(*notesURL))
	}
	notesClient := noteshttp.New(os.Getenv("OBSIDIAN_API_KEY"), notesOpts...)

	// The feed is both the segment sink and the notifier; it attaches to the
	// Bubble Tea program inside Run.
	feed := bubbletea.NewFeed()
	p := platform.New(classifier, registry, runner, notesClient, feed, feed, logger)
	defer p.Stop()

	p.Start(ctx, settings)

	if err := bubbletea.Run(ctx, bubbletea.New(p, feed)); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}

// loadSettings reads a YAML settings file over the defaults. A missing file
// is tolerated only when it is the default path.
func loadSettings(path string, tolerateMissing bool) (voxd.Settings, error) {
	settings := voxd.DefaultSettings()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return voxd.Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && tolerateMissing:
		// No settings file; use built-in defaults.
	default:
		return voxd.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return settings, nil
}

func defaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".voxd", "settings.yaml")
}
