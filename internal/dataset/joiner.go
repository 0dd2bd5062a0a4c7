package dataset

// joiner.go - left join of two keyed tables

// LeftJoin joins secondary onto primary by the shared key column. Every
// primary row is retained; a matching secondary row is attached where its
// key matches, and non-matching primary rows get null-filled secondary
// columns. Column-name collisions (other than the key itself) are resolved
// by suffixing the source, e.g. taxon -> taxon_roster / taxon_status.
//
// The merged table has exactly primary.Len() rows. unmatched reports how
// many primary keys had no secondary match; a mismatch is not an error,
// only missing data.
//
// Each key must identify at most one secondary row. A duplicated secondary
// key would silently multiply primary rows in a general join, so it is
// rejected as a SchemaError instead.
func LeftJoin(primary, secondary *Table, key, primarySuffix, secondarySuffix string) (merged *Table, unmatched int, err error) {
	pk, ok := primary.ColumnIndex(key)
	if !ok {
		return nil, 0, &SchemaError{Table: primary.Name, Column: key, Message: "missing join key"}
	}
	sk, ok := secondary.ColumnIndex(key)
	if !ok {
		return nil, 0, &SchemaError{Table: secondary.Name, Column: key, Message: "missing join key"}
	}

	// Index the secondary table by key. Null keys can never match.
	index := make(map[string]int, secondary.Len())
	for i := 0; i < secondary.Len(); i++ {
		v := secondary.Row(i)[sk]
		if !v.Valid {
			continue
		}
		if _, dup := index[v.S]; dup {
			return nil, 0, &SchemaError{Table: secondary.Name, Column: key, Message: "duplicate key value " + v.S}
		}
		index[v.S] = i
	}

	collides := make(map[string]bool)
	for _, c := range primary.Columns() {
		if c != key && secondary.HasColumn(c) {
			collides[c] = true
		}
	}

	cols := make([]string, 0, len(primary.Columns())+len(secondary.Columns()))
	for _, c := range primary.Columns() {
		if collides[c] {
			c += primarySuffix
		}
		cols = append(cols, c)
	}
	secCols := make([]int, 0) // secondary column indexes carried into the merge
	for i, c := range secondary.Columns() {
		if c == key {
			continue
		}
		if collides[c] {
			c += secondarySuffix
		}
		cols = append(cols, c)
		secCols = append(secCols, i)
	}

	merged = NewTable(primary.Name, key, cols)
	row := make([]Value, len(cols))
	for i := 0; i < primary.Len(); i++ {
		src := primary.Row(i)
		copy(row, src)

		match := -1
		if v := src[pk]; v.Valid {
			if j, ok := index[v.S]; ok {
				match = j
			}
		}
		if match < 0 {
			unmatched++
		}

		for j, si := range secCols {
			if match < 0 {
				row[len(src)+j] = Null()
				continue
			}
			row[len(src)+j] = secondary.Row(match)[si]
		}
		merged.AppendRow(row)
	}

	return merged, unmatched, nil
}
