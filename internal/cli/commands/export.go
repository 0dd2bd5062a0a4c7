package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkstack-labs/arklens/internal/export"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var tableName string

	cmd := &cobra.Command{
		Use:   "export <database>",
		Short: "Export the merged dataset to a DuckDB database",
		Long: `Run the cleaning and merge pipeline and write the merged table
into a DuckDB database file, so the combined dataset can be queried with
SQL after the fact.`,
		Example: `  # Write the merged table into species.duckdb
  arklens export species.duckdb

  # Choose the table name
  arklens export species.duckdb --table merged_roster`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cmdCtx.Engine.Run(cmd.Context())
			if err != nil {
				return err
			}
			if res.Merged == nil {
				return fmt.Errorf("pipeline produced no merged table")
			}

			db, err := export.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			// Deterministic row order makes successive exports diffable.
			if err := db.WriteTable(cmd.Context(), tableName, res.Merged.SortByKey()); err != nil {
				return err
			}

			cmdCtx.Renderer.Printf("Exported %d rows to %s (table %s)\n",
				res.MergedRows, args[0], tableName)
			return nil
		},
	}

	cmd.Flags().StringVar(&tableName, "table", "species", "Destination table name")
	return cmd
}
