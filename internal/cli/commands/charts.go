package commands

import (
	"github.com/spf13/cobra"
)

// NewChartsCommand creates the charts command.
func NewChartsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "charts",
		Short: "Render the report charts",
		Long: `Run the cleaning and merge pipeline and render the three charts
into the charts directory: the risk-category pie, the population-trend pie,
and the risk-by-trend bar chart.

Chart values come straight from the computed group counts; every
percentage shares the count of assessed rows as its denominator.`,
		Example: `  # Render into the configured charts directory
  arklens charts

  # Render elsewhere
  arklens charts --charts-dir /tmp/out`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cmdCtx.Engine.Run(cmd.Context())
			if err != nil {
				return err
			}

			paths, err := renderResultCharts(cmd.Context(), cmdCtx, res)
			if err != nil {
				return err
			}
			for _, p := range paths {
				cmdCtx.Renderer.Printf("Wrote %s\n", p)
			}
			return nil
		},
	}
}
