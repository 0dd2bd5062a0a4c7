package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arkstack-labs/arklens/internal/chart"
	"github.com/arkstack-labs/arklens/internal/dataset"
	"github.com/arkstack-labs/arklens/internal/pipeline"
)

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	var watch bool
	var noCharts bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the full analysis: merge, summarize and render charts",
		Long: `Load the roster and status files, clean and merge them, print the
group-by summaries, and render the charts from the computed counts.

With --watch the report re-runs whenever an input file changes.`,
		Example: `  # One-shot report with charts
  arklens report

  # Re-run on input changes, skip chart rendering
  arklens report --watch --no-charts

  # Machine-readable summary
  arklens report --output json --no-charts`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if watch {
				return watchAndReport(cmd.Context(), cmdCtx, !noCharts)
			}
			return runReport(cmd.Context(), cmdCtx, !noCharts)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run when an input file changes")
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "Skip chart rendering")
	return cmd
}

func runReport(ctx context.Context, cmdCtx *CommandContext, renderCharts bool) error {
	start := time.Now()
	res, err := cmdCtx.Engine.Run(ctx)
	if err != nil {
		return err
	}

	if err := printSummary(cmdCtx.Renderer, res); err != nil {
		return err
	}

	if renderCharts {
		paths, err := renderResultCharts(ctx, cmdCtx, res)
		if err != nil {
			return err
		}
		for _, p := range paths {
			cmdCtx.Renderer.Printf("Wrote %s\n", p)
		}
	}

	cmdCtx.Logger.Info("report completed",
		"run_id", res.ID, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func renderResultCharts(ctx context.Context, cmdCtx *CommandContext, res *pipeline.Result) ([]string, error) {
	if res.Assessed == 0 {
		return nil, fmt.Errorf("no assessed rows: nothing to chart")
	}
	return chart.RenderAll(ctx, cmdCtx.Cfg.ChartsDir, chart.Inputs{
		RiskCounts:  dataset.DropNull(res.RiskCounts),
		TrendCounts: dataset.DropNull(res.TrendCounts),
		RiskTrend:   dataset.DropNull(res.RiskTrendCounts),
		Denominator: res.Assessed,
	})
}
