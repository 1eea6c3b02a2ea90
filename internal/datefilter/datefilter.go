// =============================================================================
// POS Sales Report - Date Range Filter
// =============================================================================
//
// Terminal exports stamp each transaction with a 6-digit YYMMDD code. Because
// the code is fixed width and year-first, plain string comparison orders it
// chronologically, which is how the filter compares.
//
// LIMITATION:
//   The two-digit year only orders correctly inside one century. Codes are
//   interpreted as 2000-2099 and ParseDateCode refuses anything else.
//
// =============================================================================

package datefilter

import (
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/pos-sales-report/internal/types"
)

// codeLayout is the time layout of a DateCode.
const codeLayout = "060102"

// DateCode is a 6-digit YYMMDD transaction date.
type DateCode string

// FromTime converts t to its DateCode.
func FromTime(t time.Time) DateCode {
	return DateCode(t.Format(codeLayout))
}

// ParseDateCode accepts "YYMMDD", "YYYY-MM-DD" or "YYYY/MM/DD" and returns the
// matching DateCode. The date must exist and fall in 2000-2099.
func ParseDateCode(s string) (DateCode, error) {
	s = strings.TrimSpace(s)

	var (
		t   time.Time
		err error
	)
	switch {
	case isCode(s):
		t, err = time.Parse(codeLayout, s)
	case len(s) == 10 && s[4] == '-':
		t, err = time.Parse("2006-01-02", s)
	case len(s) == 10 && s[4] == '/':
		t, err = time.Parse("2006/01/02", s)
	default:
		return "", fmt.Errorf("invalid date %q: want YYMMDD, YYYY-MM-DD or YYYY/MM/DD", s)
	}
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	if t.Year() < 2000 || t.Year() > 2099 {
		return "", fmt.Errorf("invalid date %q: year %d outside 2000-2099", s, t.Year())
	}
	return FromTime(t), nil
}

// Time returns the calendar date of c at midnight UTC. It returns the zero
// time for a malformed code.
func (c DateCode) Time() time.Time {
	t, err := time.Parse(codeLayout, string(c))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Display formats c as yyyy/MM/dd.
func (c DateCode) Display() string {
	return c.Time().Format("2006/01/02")
}

// Compact formats c as yyyyMMdd, the form used in exported file names.
func (c DateCode) Compact() string {
	return c.Time().Format("20060102")
}

// Valid reports whether c is six ASCII digits.
func (c DateCode) Valid() bool {
	return isCode(string(c))
}

// isCode reports whether s is exactly six ASCII digits.
func isCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// =============================================================================
// FILTER
// =============================================================================

// Filter returns the rows whose date field (at ordinal column) lies in
// [start, end], both ends inclusive. Order is preserved and the input is not
// modified.
//
// Rows with a missing or malformed date are excluded. start > end yields an
// empty set.
func Filter(rows types.RowSet, start, end DateCode, column int) types.RowSet {
	out := make(types.RowSet, 0, len(rows))
	for _, row := range rows {
		code := strings.TrimSpace(row.Field(column))
		if !isCode(code) {
			continue
		}
		if code >= string(start) && code <= string(end) {
			out = append(out, row)
		}
	}
	return out
}

// =============================================================================
// RANGES AND PRESETS
// =============================================================================

// Range is an inclusive date range.
type Range struct {
	Start DateCode
	End   DateCode
}

// NewRange parses both ends with ParseDateCode and checks their order.
func NewRange(from, to string) (Range, error) {
	start, err := ParseDateCode(from)
	if err != nil {
		return Range{}, fmt.Errorf("start date: %w", err)
	}
	end, err := ParseDateCode(to)
	if err != nil {
		return Range{}, fmt.Errorf("end date: %w", err)
	}
	if start > end {
		return Range{}, fmt.Errorf("start date %s is after end date %s", start.Display(), end.Display())
	}
	return Range{Start: start, End: end}, nil
}

// Today is the single-day range containing now.
func Today(now time.Time) Range {
	code := FromTime(now)
	return Range{Start: code, End: code}
}

// ThisMonth runs from the first of now's month to now.
func ThisMonth(now time.Time) Range {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Range{Start: FromTime(first), End: FromTime(now)}
}

// ThisYear runs from January 1st of now's year to now.
func ThisYear(now time.Time) Range {
	first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return Range{Start: FromTime(first), End: FromTime(now)}
}

// SingleDay reports whether the range covers exactly one date.
func (r Range) SingleDay() bool {
	return r.Start == r.End
}

// String formats the range as "yyyy/MM/dd～yyyy/MM/dd".
func (r Range) String() string {
	return r.Start.Display() + "～" + r.End.Display()
}
