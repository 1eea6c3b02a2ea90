// =============================================================================
// POS Sales Report - Classifier
// =============================================================================
//
// Every row belongs to exactly one payment category, decided by two coded
// fields:
//
//   amount sign | card deduction | category
//   ------------+----------------+----------
//   0           | 0              | cash
//   0           | non-zero       | cashless
//   1           | any            | reversal
//   other       | any            | unclassified
//
// Non-numeric or blank codes read as 0.
//
// =============================================================================

package aggregator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ginjaninja78/pos-sales-report/internal/fieldmap"
	"github.com/ginjaninja78/pos-sales-report/internal/types"
)

// =============================================================================
// CATEGORIES
// =============================================================================

// Category is a payment category derived from a row.
type Category string

const (
	Cash     Category = "cash"
	Cashless Category = "cashless"
	Reversal Category = "reversal"

	// Unclassified marks a row whose amount sign is neither 0 nor 1. It never
	// appears in an AggregationResult.
	Unclassified Category = "unclassified"
)

// Categories lists the reportable categories in display order.
var Categories = []Category{Cash, Cashless, Reversal}

// Label is the heading used on reports and in the interactive view.
func (c Category) Label() string {
	switch c {
	case Cash:
		return "現金売上"
	case Cashless:
		return "キャッシュレス決済"
	case Reversal:
		return "赤伝"
	default:
		return "未分類"
	}
}

// ParseCategory accepts a category name or its label.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || s == c.Label() {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (want cash, cashless or reversal)", s)
}

// =============================================================================
// UNKNOWN AMOUNT SIGN
// =============================================================================

// UnknownSignPolicy decides what happens to rows with an unrecognised
// amount sign.
type UnknownSignPolicy string

const (
	// RejectUnknownSign fails the aggregation with an *AmountSignError.
	RejectUnknownSign UnknownSignPolicy = "reject"

	// ExcludeUnknownSign drops the row from every aggregate and counts it in
	// Result.UnclassifiedRows.
	ExcludeUnknownSign UnknownSignPolicy = "exclude"
)

// ParseUnknownSignPolicy validates a policy name. An empty name selects
// RejectUnknownSign.
func ParseUnknownSignPolicy(s string) (UnknownSignPolicy, error) {
	switch UnknownSignPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RejectUnknownSign:
		return RejectUnknownSign, nil
	case ExcludeUnknownSign:
		return ExcludeUnknownSign, nil
	default:
		return "", fmt.Errorf("unknown sign policy %q (want reject or exclude)", s)
	}
}

// ErrUnknownAmountSign is matched by every *AmountSignError.
var ErrUnknownAmountSign = errors.New("unknown amount sign")

// AmountSignError reports the first row carrying an unrecognised amount sign.
type AmountSignError struct {
	Source string
	Line   int
	Value  string
}

func (e *AmountSignError) Error() string {
	return fmt.Sprintf("%s:%d: %v %q", e.Source, e.Line, ErrUnknownAmountSign, e.Value)
}

func (e *AmountSignError) Unwrap() error {
	return ErrUnknownAmountSign
}

// =============================================================================
// CLASSIFIED RECORD
// =============================================================================

// Record is a row after the single typed pass: its category, its numeric
// fields coerced to integers and its key fields. Every grouping pass reads
// Records, never raw fields.
type Record struct {
	Row      types.Row
	Category Category

	Sign          int64
	Quantity      int64
	Amount        int64
	CardDeduction int64

	ProductCode string
	ProductName string
	GroupNumber string
	GroupName   string
}

// Classify returns the category of row.
func Classify(row types.Row, fm fieldmap.FieldMap) Category {
	sign, _ := ParseAmount(fm.Get(row, fieldmap.AmountSign))
	card, _ := ParseAmount(fm.Get(row, fieldmap.CardDeduction))
	return classify(sign, card)
}

func classify(sign, card int64) Category {
	switch {
	case sign == 0 && card == 0:
		return Cash
	case sign == 0:
		return Cashless
	case sign == 1:
		return Reversal
	default:
		return Unclassified
	}
}

// NewRecord classifies row and coerces its numeric fields. Row must be at
// least fm.Width() fields wide.
func NewRecord(row types.Row, fm fieldmap.FieldMap) Record {
	sign, _ := ParseAmount(fm.Get(row, fieldmap.AmountSign))
	qty, _ := ParseAmount(fm.Get(row, fieldmap.Quantity))
	amount, _ := ParseAmount(fm.Get(row, fieldmap.Amount))
	card, _ := ParseAmount(fm.Get(row, fieldmap.CardDeduction))

	return Record{
		Row:           row,
		Category:      classify(sign, card),
		Sign:          sign,
		Quantity:      qty,
		Amount:        amount,
		CardDeduction: card,
		ProductCode:   fm.Get(row, fieldmap.ProductCode),
		ProductName:   fm.Get(row, fieldmap.ProductName),
		GroupNumber:   fm.Get(row, fieldmap.GroupNumber),
		GroupName:     fm.Get(row, fieldmap.GroupName),
	}
}

// ParseAmount coerces a raw numeric field. It accepts an optional sign and
// integral decimal text such as "100.0". Anything else is 0 with ok false.
func ParseAmount(s string) (n int64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
