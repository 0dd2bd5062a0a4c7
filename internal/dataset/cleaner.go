package dataset

// cleaner.go - column cleanup, string normalization, duplicate removal

import "strings"

// DropColumns returns a table without the named columns. Dropping a column
// that does not exist is a SchemaError: a misspelled cleanup list should
// fail loudly rather than silently keep the column.
func (t *Table) DropColumns(names ...string) (*Table, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if !t.HasColumn(n) {
			return nil, &SchemaError{Table: t.Name, Column: n, Message: "cannot drop: no such column"}
		}
		drop[n] = true
	}

	var keep []string
	var keepIdx []int
	for i, c := range t.cols {
		if !drop[c] {
			keep = append(keep, c)
			keepIdx = append(keepIdx, i)
		}
	}

	out := t.clone(keep)
	row := make([]Value, len(keepIdx))
	for _, src := range t.rows {
		for j, i := range keepIdx {
			row[j] = src[i]
		}
		out.AppendRow(row)
	}
	return out, nil
}

// NormalizeStrings returns a table with the named columns trimmed of
// leading and trailing whitespace and upper-cased. Null cells are left
// untouched. The operation is idempotent.
func (t *Table) NormalizeStrings(cols ...string) (*Table, error) {
	idxs := make([]int, 0, len(cols))
	for _, c := range cols {
		i, ok := t.ColumnIndex(c)
		if !ok {
			return nil, &SchemaError{Table: t.Name, Column: c, Message: "cannot normalize: no such column"}
		}
		idxs = append(idxs, i)
	}

	out := t.clone(t.cols)
	for _, src := range t.rows {
		row := append([]Value(nil), src...)
		for _, i := range idxs {
			if !row[i].Valid {
				continue
			}
			row[i] = String(strings.ToUpper(strings.TrimSpace(row[i].S)))
		}
		out.AppendRow(row)
	}
	return out, nil
}

// Dedupe returns a table with exact-duplicate rows removed, keeping the
// first occurrence, and the number of rows removed. Two rows are
// duplicates when every cell matches, null-ness included.
func (t *Table) Dedupe() (*Table, int) {
	out := t.clone(t.cols)
	seen := make(map[string]struct{}, len(t.rows))
	removed := 0

	var b strings.Builder
	for _, row := range t.rows {
		b.Reset()
		for _, v := range row {
			writeCellKey(&b, v)
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		out.AppendRow(row)
	}
	return out, removed
}
