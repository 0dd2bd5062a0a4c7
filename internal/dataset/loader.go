package dataset

// loader.go - CSV loading with header validation

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV reads a delimited file with a header row into a Table keyed by
// keyColumn. Header names are trimmed and lower-cased so downstream code
// can address columns by their canonical names. Empty cells load as nulls.
//
// A UTF-8 byte order mark is tolerated; registry exports produced on
// Windows routinely carry one.
func ReadCSV(path, keyColumn string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{File: path, Message: err.Error()}
	}
	defer func() { _ = f.Close() }()

	return readCSV(f, path, keyColumn)
}

func readCSV(r io.Reader, path, keyColumn string) (*Table, error) {
	// Strip a leading BOM if present, decode as UTF-8 otherwise.
	dec := unicode.UTF8BOM.NewDecoder()
	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{File: path, Message: "file is empty"}
		}
		return nil, &ParseError{File: path, Message: err.Error()}
	}

	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	t := NewTable(name, keyColumn, cols)
	if !t.HasColumn(keyColumn) {
		return nil, &ParseError{File: path, Line: 1, Message: "missing key column " + keyColumn}
	}

	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			// csv.Reader reports ragged rows here.
			return nil, &ParseError{File: path, Line: line, Message: err.Error()}
		}

		row := make([]Value, len(record))
		for i, cell := range record {
			if strings.TrimSpace(cell) == "" {
				row[i] = Null()
				continue
			}
			row[i] = String(cell)
		}
		t.AppendRow(row)
	}

	return t, nil
}
