// =============================================================================
// POS Sales Report - Data Audit
// =============================================================================
//
// This module audits raw export rows before they are trusted for a report.
// The aggregator tolerates most data problems (non-numeric numbers read as 0,
// malformed dates drop out of every range); this audit makes those silent
// recoveries visible.
//
// CHECKS:
//   error   - row narrower than the field layout
//   error   - amount sign other than 0 or 1
//   warning - transaction date that is not six digits
//   warning - quantity, amount or card deduction that is not an integer
//   warning - blank product code
//
// ERROR HANDLING:
//   - Issues are collected, not returned as errors
//   - Each issue carries file, row, field and value
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
	"github.com/ginjaninja78/pos-sales-report/internal/datefilter"
	"github.com/ginjaninja78/pos-sales-report/internal/fieldmap"
	"github.com/ginjaninja78/pos-sales-report/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Issue is a single audit finding.
type Issue struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the logical field that failed, empty for row-level issues.
	Field fieldmap.Field

	// Value is the offending raw value.
	Value string

	Message string

	Source string
	Line   int
}

// Error implements the error interface.
func (i *Issue) Error() string {
	loc := fmt.Sprintf("%s:%d", i.Source, i.Line)
	if i.Field != "" {
		return fmt.Sprintf("[%s] %s: %s: %s (value: %q)", i.Severity, loc, i.Field, i.Message, i.Value)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, loc, i.Message)
}

// Result contains the results of an audit.
type Result struct {
	// IsValid is false when any error-severity issue was found.
	IsValid bool

	Issues       []*Issue
	ErrorCount   int
	WarningCount int
	RowsAudited  int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options contains options for the audit.
type Options struct {
	// StopOnFirstError stops at the first error-severity issue.
	StopOnFirstError bool

	// TreatWarningsAsErrors marks the result invalid on any warning.
	TreatWarningsAsErrors bool
}

// Validator audits rows against a field layout.
type Validator struct {
	fields  fieldmap.FieldMap
	options Options
}

// NewValidator creates a Validator with default options.
func NewValidator(fields fieldmap.FieldMap) *Validator {
	return &Validator{fields: fields}
}

// NewValidatorWithOptions creates a Validator with custom options.
func NewValidatorWithOptions(fields fieldmap.FieldMap, options Options) *Validator {
	return &Validator{fields: fields, options: options}
}

// Validate audits every row.
func (v *Validator) Validate(rows types.RowSet) *Result {
	result := &Result{IsValid: true, Issues: make([]*Issue, 0)}

	for _, row := range rows {
		result.RowsAudited++

		for _, issue := range v.ValidateRow(row) {
			result.Issues = append(result.Issues, issue)

			if issue.Severity == SeverityError {
				result.ErrorCount++
				result.IsValid = false
				if v.options.StopOnFirstError {
					return result
				}
			} else {
				result.WarningCount++
				if v.options.TreatWarningsAsErrors {
					result.IsValid = false
				}
			}
		}
	}

	return result
}

// ValidateRow audits a single row.
func (v *Validator) ValidateRow(row types.Row) []*Issue {
	newIssue := func(severity string, field fieldmap.Field, value, msg string) *Issue {
		return &Issue{Severity: severity, Field: field, Value: value, Message: msg, Source: row.Source, Line: row.Line}
	}

	if err := fieldmap.CheckRow(row, v.fields.Width()); err != nil {
		return []*Issue{newIssue(SeverityError, "", "", err.Error())}
	}

	var issues []*Issue

	sign := v.fields.Get(row, fieldmap.AmountSign)
	if aggregator.Classify(row, v.fields) == aggregator.Unclassified {
		issues = append(issues, newIssue(SeverityError, fieldmap.AmountSign, sign, "unknown amount sign"))
	}

	date := v.fields.Get(row, fieldmap.TransactionDate)
	if !datefilter.DateCode(date).Valid() {
		issues = append(issues, newIssue(SeverityWarning, fieldmap.TransactionDate, date,
			"not a YYMMDD date; row is excluded from every date range"))
	}

	for _, f := range []fieldmap.Field{fieldmap.Quantity, fieldmap.Amount, fieldmap.CardDeduction} {
		raw := v.fields.Get(row, f)
		if _, ok := aggregator.ParseAmount(raw); !ok && raw != "" {
			issues = append(issues, newIssue(SeverityWarning, f, raw, "not an integer; counted as 0"))
		}
	}

	if strings.TrimSpace(v.fields.Get(row, fieldmap.ProductCode)) == "" {
		issues = append(issues, newIssue(SeverityWarning, fieldmap.ProductCode, "", "blank product code"))
	}

	return issues
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FormatIssues formats issues for display or logging.
func FormatIssues(issues []*Issue) string {
	if len(issues) == 0 {
		return "No issues found."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Audit completed with %d issue(s):\n\n", len(issues))
	for i, issue := range issues {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, issue.Error())
	}
	return builder.String()
}
