package dataset

import (
	"path/filepath"
	"strconv"
)

// ParseError represents a failure to read or parse an input file.
// All parse errors are fatal to the pipeline.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return "parse " + filepath.Base(e.File) + ": line " + strconv.Itoa(e.Line) + ": " + e.Message
	}
	return "parse " + filepath.Base(e.File) + ": " + e.Message
}

// SchemaError represents a table that does not have the expected shape:
// a named column is absent, or a key column violates its uniqueness
// contract.
type SchemaError struct {
	Table   string
	Column  string
	Message string
}

func (e *SchemaError) Error() string {
	s := "schema"
	if e.Table != "" {
		s += " " + e.Table
	}
	if e.Column != "" {
		s += ": column " + e.Column
	}
	return s + ": " + e.Message
}
