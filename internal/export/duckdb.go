// Package export writes the merged dataset into a DuckDB database file so
// downstream SQL analysis can pick up where the in-process pipeline stops.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/arkstack-labs/arklens/internal/dataset"
)

// DuckDB exports tables into a DuckDB database.
type DuckDB struct {
	db *sql.DB
}

// Open connects to the DuckDB database at path, creating it if needed.
// Use ":memory:" (or an empty path) for an in-memory database.
func Open(ctx context.Context, path string) (*DuckDB, error) {
	if path == ":memory:" {
		path = ""
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}
	return &DuckDB{db: db}, nil
}

// NewWithDB wraps an existing connection. Used by tests to substitute a
// mock driver.
func NewWithDB(db *sql.DB) *DuckDB {
	return &DuckDB{db: db}
}

// Close closes the database connection.
func (d *DuckDB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// WriteTable creates (or replaces) tableName from the dataset table. All
// columns are TEXT; null cells become SQL NULLs. Rows are inserted in a
// single transaction through one prepared statement.
func (d *DuckDB) WriteTable(ctx context.Context, tableName string, t *dataset.Table) error {
	if d.db == nil {
		return fmt.Errorf("database connection not established")
	}

	cols := t.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	create := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)",
		quoteIdent(tableName), strings.Join(defs, ", "))
	if _, err := d.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(tableName), placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(cols))
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for j, v := range row {
			if v.Valid {
				args[j] = v.S
			} else {
				args[j] = nil
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}
	return nil
}

// quoteIdent double-quotes an identifier, escaping embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
