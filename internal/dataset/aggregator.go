package dataset

// aggregator.go - group-by counting over one or two categorical columns

import (
	"sort"
	"strings"
)

// GroupCount is the count of rows sharing one distinct value (or value
// pair) of the grouped column(s). A null cell forms its own group; see
// DropNull for consumers that need non-null groups only.
type GroupCount struct {
	Keys  []Value
	Count int
}

// Label renders the group keys for reporting, using marker for nulls.
func (g GroupCount) Label(marker string) string {
	parts := make([]string, len(g.Keys))
	for i, k := range g.Keys {
		if k.Valid {
			parts[i] = k.S
		} else {
			parts[i] = marker
		}
	}
	return strings.Join(parts, " / ")
}

// CountBy groups the table by the distinct values of the named columns and
// counts rows per group. Categories with no rows are absent, never
// zero-valued. Results are ordered by descending count, then by key, so
// reports are deterministic.
func CountBy(t *Table, cols ...string) ([]GroupCount, error) {
	idxs := make([]int, 0, len(cols))
	for _, c := range cols {
		i, ok := t.ColumnIndex(c)
		if !ok {
			return nil, &SchemaError{Table: t.Name, Column: c, Message: "cannot group: no such column"}
		}
		idxs = append(idxs, i)
	}

	type group struct {
		keys  []Value
		count int
	}
	groups := make(map[string]*group)

	var b strings.Builder
	for _, row := range t.rows {
		b.Reset()
		keys := make([]Value, len(idxs))
		for j, i := range idxs {
			keys[j] = row[i]
			writeCellKey(&b, row[i])
		}
		k := b.String()
		if g, ok := groups[k]; ok {
			g.count++
			continue
		}
		groups[k] = &group{keys: keys, count: 1}
	}

	out := make([]GroupCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupCount{Keys: g.keys, Count: g.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label("") < out[j].Label("")
	})
	return out, nil
}

// DropNull returns the groups whose keys are all non-null.
func DropNull(counts []GroupCount) []GroupCount {
	out := make([]GroupCount, 0, len(counts))
outer:
	for _, g := range counts {
		for _, k := range g.Keys {
			if !k.Valid {
				continue outer
			}
		}
		out = append(out, g)
	}
	return out
}

// SumCounts returns the total row count across the groups.
func SumCounts(counts []GroupCount) int {
	n := 0
	for _, g := range counts {
		n += g.Count
	}
	return n
}
