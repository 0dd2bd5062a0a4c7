package commands

import (
	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print merge and group-by summaries without rendering charts",
		Long: `Run the cleaning and merge pipeline and print the descriptive
statistics: table shapes, per-column null and distinct counts, duplicate
removals, and the group-by counts.

Output adapts to the environment:
  - Terminal: styled tables
  - Piped/scripted: markdown

Use --output to override: auto, text, markdown, json`,
		Example: `  # Human-readable summary
  arklens stats

  # Summary as JSON
  arklens stats --output json`,
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
			return printSummary(cmdCtx.Renderer, res)
		},
	}
}
