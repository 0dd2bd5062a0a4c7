package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkstack-labs/arklens/internal/chart"
	"github.com/arkstack-labs/arklens/internal/cli/config"
	"github.com/arkstack-labs/arklens/internal/cli/output"
	"github.com/arkstack-labs/arklens/internal/pipeline"
	"github.com/arkstack-labs/arklens/internal/state"
	"github.com/arkstack-labs/arklens/internal/testutil"
)

func TestNewReportCommand(t *testing.T) {
	cmd := NewReportCommand()

	assert.Equal(t, "report", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"watch", "no-charts"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewStatsCommand(t *testing.T) {
	cmd := NewStatsCommand()

	assert.Equal(t, "stats", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewChartsCommand(t *testing.T) {
	cmd := NewChartsCommand()

	assert.Equal(t, "charts", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewExportCommand(t *testing.T) {
	cmd := NewExportCommand()

	assert.Equal(t, "export <database>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("table"), "flag %q should exist", "table")
}

func TestNewRunsCommand(t *testing.T) {
	cmd := NewRunsCommand()

	assert.Equal(t, "runs [run-id]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("limit"), "flag %q should exist", "limit")
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")

	assert.Equal(t, "version", cmd.Use)

	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1.2.3")
}

// newTestContext builds a command context wired to the testdata CSVs,
// an in-memory state store, and buffered output.
func newTestContext(t *testing.T, mode output.Mode) (*CommandContext, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{
		RosterPath:   filepath.Join("testdata", "roster.csv"),
		StatusPath:   filepath.Join("testdata", "status.csv"),
		ChartsDir:    t.TempDir(),
		StatePath:    ":memory:",
		OutputFormat: string(mode),
		Clean: config.CleanConfig{
			RosterDrop:      config.DefaultRosterDrop,
			StatusDrop:      config.DefaultStatusDrop,
			RosterNormalize: config.DefaultRosterNormalize,
			StatusNormalize: config.DefaultStatusNormalize,
		},
	}

	logger := testutil.NewTestLogger(t)
	eng, err := createEngine(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	var out, errOut bytes.Buffer
	r := output.NewRenderer(&out, &errOut, mode)
	return &CommandContext{Cfg: cfg, Logger: logger, Engine: eng, Renderer: r}, &out, &errOut
}

func TestRunReportText(t *testing.T) {
	cmdCtx, out, errOut := newTestContext(t, output.ModeMarkdown)

	err := runReport(context.Background(), cmdCtx, false)
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Merged dataset (5 rows)")
	assert.Contains(t, got, "Roster: 5 rows (1 duplicates removed)")
	assert.Contains(t, got, "Risk categories")
	assert.Contains(t, got, "Population trends")
	assert.Contains(t, got, "Risk x trend")
	assert.Contains(t, got, "% of assessed")
	assert.Contains(t, errOut.String(), "no conservation-status match")
}

func TestRunReportJSON(t *testing.T) {
	cmdCtx, out, _ := newTestContext(t, output.ModeJSON)

	err := runReport(context.Background(), cmdCtx, false)
	require.NoError(t, err)

	var report jsonReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 5, report.RosterRows)
	assert.Equal(t, 1, report.RosterDupes)
	assert.Equal(t, 5, report.MergedRows)
	assert.Equal(t, 1, report.Unmatched)
	assert.Equal(t, 4, report.Assessed)
	assert.NotEmpty(t, report.RiskCounts)
	assert.NotEmpty(t, report.Columns)
}

func TestRunReportWithCharts(t *testing.T) {
	cmdCtx, out, _ := newTestContext(t, output.ModeMarkdown)

	err := runReport(context.Background(), cmdCtx, true)
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Wrote ")
	assert.FileExists(t, filepath.Join(cmdCtx.Cfg.ChartsDir, chart.RiskPieFile))
	assert.FileExists(t, filepath.Join(cmdCtx.Cfg.ChartsDir, chart.TrendPieFile))
	assert.FileExists(t, filepath.Join(cmdCtx.Cfg.ChartsDir, chart.RiskTrendBarFile))
}

func TestRunReportMissingInput(t *testing.T) {
	cmdCtx, _, _ := newTestContext(t, output.ModeMarkdown)
	cmdCtx.Cfg.RosterPath = filepath.Join("testdata", "nope.csv")

	// Engine config is captured at construction, so rebuild it.
	eng, err := createEngine(cmdCtx.Cfg, cmdCtx.Logger)
	require.NoError(t, err)
	defer eng.Close()
	cmdCtx.Engine = eng

	err = runReport(context.Background(), cmdCtx, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestToJSONGroups(t *testing.T) {
	res := runPipeline(t)

	groups := toJSONGroups(res.RiskCounts)
	require.NotEmpty(t, groups)
	total := 0
	for _, g := range groups {
		require.Len(t, g.Labels, 1)
		total += g.Count
	}
	assert.Equal(t, res.MergedRows, total)
}

func TestPrintRunsEmpty(t *testing.T) {
	var out, errOut bytes.Buffer
	r := output.NewRenderer(&out, &errOut, output.ModeMarkdown)

	require.NoError(t, printRuns(r, nil))
	assert.Contains(t, out.String(), "No runs recorded yet.")
}

func TestPrintRunsTable(t *testing.T) {
	run := &state.Run{
		ID:         "0192aabb-ccdd-7eef-8001-223344556677",
		MergedRows: 285,
		Unmatched:  3,
		Status:     state.RunStatusCompleted,
		StartedAt:  time.Now(),
	}

	var out, errOut bytes.Buffer
	r := output.NewRenderer(&out, &errOut, output.ModeMarkdown)

	require.NoError(t, printRuns(r, []*state.Run{run}))
	got := out.String()
	assert.Contains(t, got, "Runs (1)")
	assert.Contains(t, got, "0192aabb")
	assert.Contains(t, got, "285")
	assert.Contains(t, got, string(state.RunStatusCompleted))
}

func TestPrintRunDetail(t *testing.T) {
	run := &state.Run{
		ID:          "0192aabb-ccdd-7eef-8001-223344556677",
		RosterPath:  "data/roster.csv",
		StatusPath:  "data/status.csv",
		RosterRows:  285,
		MergedRows:  285,
		Unmatched:   73,
		Status:      state.RunStatusFailed,
		Error:       "parse status.csv: file is empty",
		StartedAt:   time.Now(),
		CompletedAt: time.Now(),
	}

	var out, errOut bytes.Buffer
	r := output.NewRenderer(&out, &errOut, output.ModeMarkdown)

	require.NoError(t, printRunDetail(r, run))
	got := out.String()
	assert.Contains(t, got, "Run 0192aabb")
	assert.Contains(t, got, "data/roster.csv")
	assert.Contains(t, got, "285")
	assert.Contains(t, got, "file is empty")
}

func TestPrintRunsJSON(t *testing.T) {
	run := &state.Run{ID: "abc", Status: state.RunStatusFailed, StartedAt: time.Now()}

	var out, errOut bytes.Buffer
	r := output.NewRenderer(&out, &errOut, output.ModeJSON)

	require.NoError(t, printRuns(r, []*state.Run{run}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
}

func runPipeline(t *testing.T) *pipeline.Result {
	t.Helper()
	cmdCtx, _, _ := newTestContext(t, output.ModeMarkdown)
	res, err := cmdCtx.Engine.Run(context.Background())
	require.NoError(t, err)
	return res
}
