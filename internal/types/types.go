// =============================================================================
// POS Sales Report - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser   (produces rows)
//   - datefilter  (narrows rows)
//   - aggregator  (consumes rows)
//   - validation  (audits rows)
//
// =============================================================================

package types

import "fmt"

// =============================================================================
// TRANSACTION ROW TYPES
// =============================================================================

// Row is a single transaction record exactly as read from a terminal export.
// Fields are raw text addressed by ordinal position (see fieldmap.FieldMap).
//
// A Row is never modified after loading. Two identical rows are two sales.
type Row struct {
	// Fields contains the raw field values, trimmed of surrounding whitespace.
	Fields []string

	// Source is the path of the file the row was read from.
	Source string

	// Line is the 1-based record number within Source, header rows included.
	// Useful for error reporting.
	Line int
}

// Field returns the value at ordinal i, or "" when the row is too short.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// Location formats the row provenance as "file:line".
func (r Row) Location() string {
	return fmt.Sprintf("%s:%d", r.Source, r.Line)
}

// RowSet is an ordered collection of rows. Order is file discovery order,
// then row order within each file.
//
// Filtering produces a new RowSet; the rows themselves are shared, never
// rewritten.
type RowSet []Row
