// Package config provides configuration management for the ArkLens CLI.
// Precedence, highest to lowest: flags > environment variables > config
// file > defaults.
package config

import "fmt"

// Default configuration values.
const (
	DefaultRosterPath = "data/roster.csv"
	DefaultStatusPath = "data/status.csv"
	DefaultChartsDir  = "charts"
	DefaultStateFile  = ".arklens/state.db"
	DefaultOutput     = "auto" // auto-detect: TTY=text, piped=markdown
)

// Default cleaning lists. The per-source identification columns (genus,
// species, subspecies, assessment scope) duplicate the scientific name and
// are dropped before the merge; categorical columns are normalized so the
// join key and group labels compare reliably.
var (
	DefaultRosterDrop      = []string{"genus", "species", "subspecies"}
	DefaultStatusDrop      = []string{"genus", "species", "scope"}
	DefaultRosterNormalize = []string{"scientific_name", "taxon", "program"}
	DefaultStatusNormalize = []string{"scientific_name", "taxon", "category", "population_trend"}
)

// CleanConfig holds the per-source cleaning column lists.
type CleanConfig struct {
	RosterDrop      []string `koanf:"roster_drop"`
	StatusDrop      []string `koanf:"status_drop"`
	RosterNormalize []string `koanf:"roster_normalize"`
	StatusNormalize []string `koanf:"status_normalize"`
}

// Config holds all CLI configuration options.
type Config struct {
	RosterPath   string      `koanf:"roster"`
	StatusPath   string      `koanf:"status"`
	ChartsDir    string      `koanf:"charts_dir"`
	StatePath    string      `koanf:"state_path"`
	Verbose      bool        `koanf:"verbose"`
	OutputFormat string      `koanf:"output"`
	Clean        CleanConfig `koanf:"clean"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.RosterPath == "" {
		return fmt.Errorf("roster path is required")
	}
	if c.StatusPath == "" {
		return fmt.Errorf("status path is required")
	}
	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.OutputFormat)
	}
	return nil
}
