package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/arkstack-labs/arklens/internal/cli/output"
	"github.com/arkstack-labs/arklens/internal/state"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded pipeline runs",
		Long: `List the run history from the state database: when each run
happened, the row and duplicate counts, and whether it succeeded.

With a run ID (a unique prefix is enough) the full record of that run is
shown instead.`,
		Example: `  # Last 20 runs
  arklens runs

  # Last 5 runs as JSON
  arklens runs --limit 5 --output json

  # One run in detail
  arklens runs 0192aabb`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			store := cmdCtx.Engine.Store()
			if store == nil {
				return fmt.Errorf("run recording is disabled (no state path configured)")
			}

			if len(args) == 1 {
				run, err := store.GetRun(args[0])
				if err != nil {
					return err
				}
				return printRunDetail(cmdCtx.Renderer, run)
			}

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			return printRuns(cmdCtx.Renderer, runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func printRuns(r *output.Renderer, runs []*state.Run) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(runs)
	}

	r.Header(1, fmt.Sprintf("Runs (%d)", len(runs)))
	r.Println()
	if len(runs) == 0 {
		r.Println("No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID[:8],
			run.StartedAt.Local().Format(time.DateTime),
			strconv.Itoa(run.MergedRows),
			strconv.Itoa(run.RosterDupes + run.StatusDupes),
			strconv.Itoa(run.Unmatched),
			string(run.Status),
		})
	}
	r.Table([]string{"run", "started", "merged", "dupes", "unmatched", "status"}, rows)
	return nil
}

func printRunDetail(r *output.Renderer, run *state.Run) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(run)
	}

	rows := [][]string{
		{"id", run.ID},
		{"status", string(run.Status)},
		{"started", run.StartedAt.Local().Format(time.DateTime)},
		{"completed", run.CompletedAt.Local().Format(time.DateTime)},
		{"roster", run.RosterPath},
		{"status file", run.StatusPath},
		{"roster rows", strconv.Itoa(run.RosterRows)},
		{"status rows", strconv.Itoa(run.StatusRows)},
		{"duplicates removed", strconv.Itoa(run.RosterDupes + run.StatusDupes)},
		{"merged rows", strconv.Itoa(run.MergedRows)},
		{"unmatched rows", strconv.Itoa(run.Unmatched)},
	}
	if run.Error != "" {
		rows = append(rows, []string{"error", run.Error})
	}

	short := run.ID
	if len(short) > 8 {
		short = short[:8]
	}
	r.Header(1, "Run "+short)
	r.Println()
	r.Table([]string{"field", "value"}, rows)
	return nil
}
