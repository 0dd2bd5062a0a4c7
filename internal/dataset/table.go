// Package dataset provides the in-memory tabular model and the pure
// transformations the analysis pipeline is built from: CSV loading,
// column cleanup, string normalization, duplicate removal, left joins
// and group-by counting.
//
// Tables are immutable by convention: every transformation returns a new
// Table and never modifies its input.
package dataset

import (
	"sort"
	"strconv"
	"strings"
)

// Value is a nullable cell. An invalid Value represents a missing field,
// either an empty cell in the source file or a non-match after a left join.
type Value struct {
	S     string
	Valid bool
}

// String returns a valid Value holding s.
func String(s string) Value {
	return Value{S: s, Valid: true}
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// Table is an ordered collection of named columns over rows of nullable
// string cells. Name identifies the table in error messages, Key names the
// join-key column.
type Table struct {
	Name string
	Key  string

	cols []string
	rows [][]Value
}

// NewTable creates a table with the given columns. Rows are added with
// AppendRow during construction; transformations build their outputs the
// same way.
func NewTable(name, key string, cols []string) *Table {
	return &Table{
		Name: name,
		Key:  key,
		cols: append([]string(nil), cols...),
	}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// ColumnIndex returns the position of a named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.cols {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Row returns the i-th row. The returned slice is shared with the table
// and must not be modified.
func (t *Table) Row(i int) []Value {
	return t.rows[i]
}

// Cell returns the value at row i in the named column.
func (t *Table) Cell(i int, col string) (Value, bool) {
	idx, ok := t.ColumnIndex(col)
	if !ok {
		return Value{}, false
	}
	return t.rows[i][idx], true
}

// AppendRow adds a row. The row is copied; length must match the column
// count (enforced by the loader and the transformations, not re-checked
// here).
func (t *Table) AppendRow(row []Value) {
	t.rows = append(t.rows, append([]Value(nil), row...))
}

// NullCount returns the number of null cells in the named column, or 0 if
// the column does not exist.
func (t *Table) NullCount(col string) int {
	idx, ok := t.ColumnIndex(col)
	if !ok {
		return 0
	}
	n := 0
	for _, row := range t.rows {
		if !row[idx].Valid {
			n++
		}
	}
	return n
}

// DistinctCount returns the number of distinct non-null values in the
// named column, or 0 if the column does not exist.
func (t *Table) DistinctCount(col string) int {
	idx, ok := t.ColumnIndex(col)
	if !ok {
		return 0
	}
	seen := make(map[string]struct{})
	for _, row := range t.rows {
		if row[idx].Valid {
			seen[row[idx].S] = struct{}{}
		}
	}
	return len(seen)
}

// writeCellKey appends an unambiguous encoding of v to b: a validity byte,
// then the length-prefixed text for valid cells. The length prefix keeps
// distinct cell sequences distinct no matter what bytes the text contains.
func writeCellKey(b *strings.Builder, v Value) {
	if !v.Valid {
		b.WriteByte(0)
		return
	}
	b.WriteByte(1)
	b.WriteString(strconv.Itoa(len(v.S)))
	b.WriteByte(':')
	b.WriteString(v.S)
}

// clone returns a table with the same metadata and columns but no rows.
func (t *Table) clone(cols []string) *Table {
	return NewTable(t.Name, t.Key, cols)
}

// ColumnSummary describes one column for printed table summaries.
type ColumnSummary struct {
	Name     string `json:"name"`
	Nulls    int    `json:"nulls"`
	Distinct int    `json:"distinct"`
}

// Summarize returns per-column null and distinct counts in column order.
func (t *Table) Summarize() []ColumnSummary {
	out := make([]ColumnSummary, 0, len(t.cols))
	for _, c := range t.cols {
		out = append(out, ColumnSummary{
			Name:     c,
			Nulls:    t.NullCount(c),
			Distinct: t.DistinctCount(c),
		})
	}
	return out
}

// SortByKey orders rows by the key column, nulls last. Used to make
// printed previews and exports deterministic; the pipeline itself does not
// depend on row order.
func (t *Table) SortByKey() *Table {
	idx, ok := t.ColumnIndex(t.Key)
	if !ok {
		return t
	}
	out := t.clone(t.cols)
	out.rows = append(out.rows, t.rows...)
	sort.SliceStable(out.rows, func(i, j int) bool {
		a, b := out.rows[i][idx], out.rows[j][idx]
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.S < b.S
	})
	return out
}
