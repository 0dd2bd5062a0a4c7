// Package commands implements the arklens subcommands.
package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arkstack-labs/arklens/internal/cli/config"
	"github.com/arkstack-labs/arklens/internal/cli/output"
	"github.com/arkstack-labs/arklens/internal/pipeline"
)

// CommandContext bundles what every command needs.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *pipeline.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates the shared command context with a pipeline
// engine. The returned cleanup closes the engine's state store.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	cleanup := func() {
		_ = eng.Close()
	}
	return &CommandContext{Cfg: cfg, Logger: logger, Engine: eng, Renderer: r}, cleanup, nil
}

// getConfig returns the loaded configuration, falling back to defaults
// when a command runs outside the root wiring (tests mostly).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		RosterPath:   config.DefaultRosterPath,
		StatusPath:   config.DefaultStatusPath,
		ChartsDir:    config.DefaultChartsDir,
		StatePath:    config.DefaultStateFile,
		OutputFormat: config.DefaultOutput,
		Clean: config.CleanConfig{
			RosterDrop:      config.DefaultRosterDrop,
			StatusDrop:      config.DefaultStatusDrop,
			RosterNormalize: config.DefaultRosterNormalize,
			StatusNormalize: config.DefaultStatusNormalize,
		},
	}
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*pipeline.Engine, error) {
	// Ensure the state directory exists before SQLite opens the file.
	if cfg.StatePath != "" && cfg.StatePath != ":memory:" {
		stateDir := filepath.Dir(cfg.StatePath)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0o750); err != nil {
				return nil, err
			}
		}
	}

	return pipeline.New(pipeline.Config{
		RosterPath:      cfg.RosterPath,
		StatusPath:      cfg.StatusPath,
		RosterDrop:      cfg.Clean.RosterDrop,
		StatusDrop:      cfg.Clean.StatusDrop,
		RosterNormalize: cfg.Clean.RosterNormalize,
		StatusNormalize: cfg.Clean.StatusNormalize,
		StatePath:       cfg.StatePath,
		Logger:          logger,
	})
}
