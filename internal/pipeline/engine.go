// Package pipeline composes the pure dataset stages into the full
// analysis: load roster and status registries, clean both, left-join on
// scientific name, and compute the group-by counts the reports and charts
// are built from.
//
// Each stage consumes an immutable table and returns a new one; the
// engine is the single place the stages are ordered.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arkstack-labs/arklens/internal/dataset"
	"github.com/arkstack-labs/arklens/internal/state"
)

// Default column names shared by both source files.
const (
	DefaultKeyColumn   = "scientific_name"
	DefaultRiskColumn  = "category"
	DefaultTrendColumn = "population_trend"
)

// Suffixes applied to column-name collisions in the merge.
const (
	RosterSuffix = "_roster"
	StatusSuffix = "_status"
)

// Config holds pipeline configuration.
type Config struct {
	// RosterPath is the species-management roster CSV.
	RosterPath string
	// StatusPath is the conservation-status registry CSV.
	StatusPath string

	// RosterDrop and StatusDrop are columns removed from each table
	// before the merge.
	RosterDrop []string
	StatusDrop []string

	// RosterNormalize and StatusNormalize are string columns that get
	// trimmed and upper-cased.
	RosterNormalize []string
	StatusNormalize []string

	// KeyColumn is the join key; defaults to scientific_name.
	KeyColumn string
	// RiskColumn and TrendColumn name the grouped columns in the merged
	// table; defaults to category and population_trend.
	RiskColumn  string
	TrendColumn string

	// StatePath is the run-history SQLite database. Empty disables run
	// recording.
	StatePath string

	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine runs the analysis pipeline.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	store  *state.Store
}

// Result is the outcome of one pipeline run. Everything a report or chart
// needs is carried here; nothing is re-derived from printed output.
type Result struct {
	ID string

	// Row counts after cleaning, and the duplicates removed to get there.
	RosterRows  int
	StatusRows  int
	RosterDupes int
	StatusDupes int

	MergedRows int
	// Unmatched counts roster rows with no status entry. Not fatal:
	// those rows carry null risk and trend fields.
	Unmatched int

	// RiskCounts, TrendCounts and RiskTrendCounts include a null group
	// where unmatched rows exist.
	RiskCounts      []dataset.GroupCount
	TrendCounts     []dataset.GroupCount
	RiskTrendCounts []dataset.GroupCount

	// Assessed is the number of merged rows with a non-null risk
	// category: the single denominator for every percentage.
	Assessed int

	Merged *dataset.Table

	StartedAt time.Time
	Elapsed   time.Duration
}

// New creates an engine. The state store is opened eagerly so a bad state
// path fails before any file is read.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if cfg.KeyColumn == "" {
		cfg.KeyColumn = DefaultKeyColumn
	}
	if cfg.RiskColumn == "" {
		cfg.RiskColumn = DefaultRiskColumn
	}
	if cfg.TrendColumn == "" {
		cfg.TrendColumn = DefaultTrendColumn
	}

	e := &Engine{cfg: cfg, logger: logger}

	if cfg.StatePath != "" {
		store := state.NewStore()
		if err := store.Open(cfg.StatePath); err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to migrate state store: %w", err)
		}
		e.store = store
	}

	return e, nil
}

// Store returns the run-history store, or nil when run recording is
// disabled.
func (e *Engine) Store() *state.Store {
	return e.store
}

// Close releases the state store.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Run executes the pipeline once. Load and clean failures are fatal;
// roster rows without a status match are recorded as warnings in the
// Result. The run is saved to the state store either way.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		ID:        state.NewRunID(),
		StartedAt: time.Now().UTC(),
	}
	e.logger.Info("starting run", "run_id", res.ID,
		"roster", e.cfg.RosterPath, "status", e.cfg.StatusPath)

	err := e.run(ctx, res)
	res.Elapsed = time.Since(res.StartedAt)

	if serr := e.saveRun(res, err); serr != nil {
		e.logger.Error("failed to record run", "run_id", res.ID, "error", serr)
		if err == nil {
			err = serr
		}
	}

	if err != nil {
		e.logger.Error("run failed", "run_id", res.ID, "error", err)
		return res, err
	}
	e.logger.Info("run completed", "run_id", res.ID,
		"merged_rows", res.MergedRows, "unmatched", res.Unmatched,
		"elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func (e *Engine) run(ctx context.Context, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	roster, err := e.loadAndClean(e.cfg.RosterPath, e.cfg.RosterDrop, e.cfg.RosterNormalize,
		&res.RosterRows, &res.RosterDupes)
	if err != nil {
		return err
	}
	status, err := e.loadAndClean(e.cfg.StatusPath, e.cfg.StatusDrop, e.cfg.StatusNormalize,
		&res.StatusRows, &res.StatusDupes)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	merged, unmatched, err := dataset.LeftJoin(roster, status, e.cfg.KeyColumn, RosterSuffix, StatusSuffix)
	if err != nil {
		return fmt.Errorf("failed to merge tables: %w", err)
	}
	res.Merged = merged
	res.MergedRows = merged.Len()
	res.Unmatched = unmatched
	if unmatched > 0 {
		e.logger.Warn("roster rows without status match", "count", unmatched)
	}

	if res.RiskCounts, err = dataset.CountBy(merged, e.cfg.RiskColumn); err != nil {
		return fmt.Errorf("failed to count by risk: %w", err)
	}
	if res.TrendCounts, err = dataset.CountBy(merged, e.cfg.TrendColumn); err != nil {
		return fmt.Errorf("failed to count by trend: %w", err)
	}
	if res.RiskTrendCounts, err = dataset.CountBy(merged, e.cfg.RiskColumn, e.cfg.TrendColumn); err != nil {
		return fmt.Errorf("failed to count by risk and trend: %w", err)
	}

	// One denominator for everything downstream.
	res.Assessed = merged.Len() - merged.NullCount(e.cfg.RiskColumn)

	return nil
}

func (e *Engine) loadAndClean(path string, drop, normalize []string, rows, dupes *int) (*dataset.Table, error) {
	t, err := dataset.ReadCSV(path, e.cfg.KeyColumn)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("loaded table", "table", t.Name, "rows", t.Len(), "columns", len(t.Columns()))

	if len(drop) > 0 {
		if t, err = t.DropColumns(drop...); err != nil {
			return nil, err
		}
	}
	if len(normalize) > 0 {
		if t, err = t.NormalizeStrings(normalize...); err != nil {
			return nil, err
		}
	}

	t, removed := t.Dedupe()
	if removed > 0 {
		e.logger.Debug("removed duplicate rows", "table", t.Name, "count", removed)
	}

	*rows = t.Len()
	*dupes = removed
	return t, nil
}

func (e *Engine) saveRun(res *Result, runErr error) error {
	if e.store == nil {
		return nil
	}

	run := &state.Run{
		ID:          res.ID,
		RosterPath:  e.cfg.RosterPath,
		StatusPath:  e.cfg.StatusPath,
		RosterRows:  res.RosterRows,
		StatusRows:  res.StatusRows,
		RosterDupes: res.RosterDupes,
		StatusDupes: res.StatusDupes,
		MergedRows:  res.MergedRows,
		Unmatched:   res.Unmatched,
		Status:      state.RunStatusCompleted,
		StartedAt:   res.StartedAt,
		CompletedAt: res.StartedAt.Add(res.Elapsed),
	}
	if runErr != nil {
		run.Status = state.RunStatusFailed
		run.Error = runErr.Error()
	}
	return e.store.SaveRun(run)
}
