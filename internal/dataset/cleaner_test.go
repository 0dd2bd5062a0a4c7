package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkTable builds a table for tests. A nil string pointer in cells would be
// clumsy, so "<null>" marks a null cell.
func mkTable(t *testing.T, name, key string, cols []string, rows ...[]string) *Table {
	t.Helper()
	tbl := NewTable(name, key, cols)
	for _, r := range rows {
		require.Len(t, r, len(cols), "row width mismatch in test fixture")
		row := make([]Value, len(r))
		for i, cell := range r {
			if cell == "<null>" {
				row[i] = Null()
			} else {
				row[i] = String(cell)
			}
		}
		tbl.AppendRow(row)
	}
	return tbl
}

func cellString(t *testing.T, tbl *Table, row int, col string) Value {
	t.Helper()
	v, ok := tbl.Cell(row, col)
	require.True(t, ok, "column %s", col)
	return v
}

func TestDropColumns(t *testing.T) {
	tbl := mkTable(t, "roster", "scientific_name",
		[]string{"scientific_name", "genus", "species", "taxon"},
		[]string{"Panthera tigris", "Panthera", "tigris", "MAMMALIA"},
	)

	out, err := tbl.DropColumns("genus", "species")
	require.NoError(t, err)
	assert.Equal(t, []string{"scientific_name", "taxon"}, out.Columns())
	assert.Equal(t, 1, out.Len())

	// Input untouched.
	assert.Equal(t, []string{"scientific_name", "genus", "species", "taxon"}, tbl.Columns())
}

func TestDropColumns_UnknownColumn(t *testing.T) {
	tbl := mkTable(t, "roster", "scientific_name",
		[]string{"scientific_name"},
		[]string{"Panthera tigris"},
	)

	_, err := tbl.DropColumns("subspecies")
	require.Error(t, err)
	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "subspecies", serr.Column)
}

func TestNormalizeStrings(t *testing.T) {
	tbl := mkTable(t, "status", "scientific_name",
		[]string{"scientific_name", "population_trend"},
		[]string{"Panthera tigris", " decreasing "},
		[]string{"Gavialis gangeticus", "<null>"},
		[]string{"Ara macao", "Stable"},
	)

	out, err := tbl.NormalizeStrings("population_trend")
	require.NoError(t, err)

	assert.Equal(t, String("DECREASING"), cellString(t, out, 0, "population_trend"))
	assert.Equal(t, Null(), cellString(t, out, 1, "population_trend"), "null cells stay null")
	assert.Equal(t, String("STABLE"), cellString(t, out, 2, "population_trend"))

	// Untouched columns keep their original casing.
	assert.Equal(t, String("Panthera tigris"), cellString(t, out, 0, "scientific_name"))
}

func TestNormalizeStrings_Idempotent(t *testing.T) {
	tbl := mkTable(t, "status", "scientific_name",
		[]string{"scientific_name", "category"},
		[]string{"Panthera tigris", " en "},
		[]string{"Gavialis gangeticus", "CR"},
		[]string{"Ara macao", "<null>"},
	)

	once, err := tbl.NormalizeStrings("category")
	require.NoError(t, err)
	twice, err := once.NormalizeStrings("category")
	require.NoError(t, err)

	require.Equal(t, once.Len(), twice.Len())
	for i := 0; i < once.Len(); i++ {
		assert.Equal(t, once.Row(i), twice.Row(i), "row %d", i)
	}
}

func TestNormalizeStrings_UnknownColumn(t *testing.T) {
	tbl := mkTable(t, "status", "scientific_name",
		[]string{"scientific_name"},
		[]string{"Panthera tigris"},
	)

	_, err := tbl.NormalizeStrings("category")
	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name        string
		rows        [][]string
		wantRows    int
		wantRemoved int
	}{
		{
			name: "identical rows collapse to one",
			rows: [][]string{
				{"Panthera tigris", "EN"},
				{"Panthera tigris", "EN"},
				{"Gavialis gangeticus", "CR"},
			},
			wantRows:    2,
			wantRemoved: 1,
		},
		{
			name: "same key different value is not a duplicate",
			rows: [][]string{
				{"Panthera tigris", "EN"},
				{"Panthera tigris", "CR"},
			},
			wantRows:    2,
			wantRemoved: 0,
		},
		{
			name: "null and empty-ish values are distinct",
			rows: [][]string{
				{"Panthera tigris", "<null>"},
				{"Panthera tigris", "EN"},
			},
			wantRows:    2,
			wantRemoved: 0,
		},
		{
			name: "duplicate null rows collapse",
			rows: [][]string{
				{"Panthera tigris", "<null>"},
				{"Panthera tigris", "<null>"},
				{"Panthera tigris", "<null>"},
			},
			wantRows:    1,
			wantRemoved: 2,
		},
		{
			// The cells differ only in where the row splits them, so a
			// separator-based row key would make these collide.
			name: "control bytes in cells do not collide",
			rows: [][]string{
				{"a\x1f\x01b", "c"},
				{"a", "b\x1f\x01c"},
			},
			wantRows:    2,
			wantRemoved: 0,
		},
		{
			name:        "empty table",
			rows:        nil,
			wantRows:    0,
			wantRemoved: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mkTable(t, "status", "scientific_name",
				[]string{"scientific_name", "category"}, tt.rows...)

			out, removed := tbl.Dedupe()
			assert.Equal(t, tt.wantRows, out.Len())
			assert.Equal(t, tt.wantRemoved, removed)
			// Cleaned row count equals original minus reported duplicates.
			assert.Equal(t, tbl.Len()-removed, out.Len())
		})
	}
}

func TestDedupe_KeepsFirstOccurrence(t *testing.T) {
	tbl := mkTable(t, "roster", "scientific_name",
		[]string{"scientific_name", "program"},
		[]string{"Panthera tigris", "SSP"},
		[]string{"Ara macao", "SSP"},
		[]string{"Panthera tigris", "SSP"},
	)

	out, removed := tbl.Dedupe()
	require.Equal(t, 1, removed)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, String("Panthera tigris"), cellString(t, out, 0, "scientific_name"))
	assert.Equal(t, String("Ara macao"), cellString(t, out, 1, "scientific_name"))
}
