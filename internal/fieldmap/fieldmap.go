// =============================================================================
// POS Sales Report - Field Map
// =============================================================================
//
// The terminal exports carry no reliable header names, so every field is
// addressed by its ordinal position. This package is the single place where
// those positions are named.
//
// DEFAULT LAYOUT (0-based):
//   9  quantity            13 transaction date (YYMMDD)
//   10 amount sign         16 product code
//   11 amount              17 product name
//   12 card deduction      18 group number
//                          19 group name
//
// =============================================================================

package fieldmap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/pos-sales-report/internal/types"
)

// Field is a logical field name.
type Field string

// Logical fields read by the engine.
const (
	Quantity        Field = "quantity"
	AmountSign      Field = "amount_sign"
	Amount          Field = "amount"
	CardDeduction   Field = "card_deduction"
	TransactionDate Field = "transaction_date"
	ProductCode     Field = "product_code"
	ProductName     Field = "product_name"
	GroupNumber     Field = "group_number"
	GroupName       Field = "group_name"
)

// Fields lists every logical field in layout order.
var Fields = []Field{
	Quantity, AmountSign, Amount, CardDeduction, TransactionDate,
	ProductCode, ProductName, GroupNumber, GroupName,
}

// =============================================================================
// FIELD MAP
// =============================================================================

// FieldMap maps each logical field to a zero-based ordinal position.
type FieldMap map[Field]int

// Default returns the terminal export layout.
func Default() FieldMap {
	return FieldMap{
		Quantity:        9,
		AmountSign:      10,
		Amount:          11,
		CardDeduction:   12,
		TransactionDate: 13,
		ProductCode:     16,
		ProductName:     17,
		GroupNumber:     18,
		GroupName:       19,
	}
}

// Index returns the ordinal of f. It panics when f is not mapped; call
// Validate once after building a FieldMap from configuration.
func (m FieldMap) Index(f Field) int {
	i, ok := m[f]
	if !ok {
		panic(fmt.Sprintf("fieldmap: field %q is not mapped", f))
	}
	return i
}

// Get returns the raw value of f in row.
func (m FieldMap) Get(row types.Row, f Field) string {
	return row.Field(m.Index(f))
}

// Width is the minimum number of fields a row must have.
func (m FieldMap) Width() int {
	width := 0
	for _, i := range m {
		if i+1 > width {
			width = i + 1
		}
	}
	return width
}

// Validate checks that every logical field is mapped to a distinct,
// non-negative ordinal.
func (m FieldMap) Validate() error {
	seen := make(map[int]Field, len(m))
	for _, f := range Fields {
		i, ok := m[f]
		if !ok {
			return fmt.Errorf("field %q is not mapped", f)
		}
		if i < 0 {
			return fmt.Errorf("field %q has negative ordinal %d", f, i)
		}
		if other, dup := seen[i]; dup {
			return fmt.Errorf("fields %q and %q share ordinal %d", other, f, i)
		}
		seen[i] = f
	}
	return nil
}

// String lists the mapping in ordinal order, e.g. "quantity=9 amount_sign=10".
func (m FieldMap) String() string {
	fields := make([]Field, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(a, b int) bool { return m[fields[a]] < m[fields[b]] })

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s=%d", f, m[f])
	}
	return strings.Join(parts, " ")
}

// =============================================================================
// LAYOUT CHECK
// =============================================================================

// FieldLayoutError reports a row with fewer fields than the layout requires.
// It describes the whole batch: one short row rejects every row.
type FieldLayoutError struct {
	Source string
	Line   int
	Got    int
	Want   int
}

func (e *FieldLayoutError) Error() string {
	return fmt.Sprintf("field layout mismatch at %s:%d: row has %d fields, layout needs at least %d",
		e.Source, e.Line, e.Got, e.Want)
}

// CheckRow returns a *FieldLayoutError when row is narrower than width.
func CheckRow(row types.Row, width int) error {
	if len(row.Fields) < width {
		return &FieldLayoutError{Source: row.Source, Line: row.Line, Got: len(row.Fields), Want: width}
	}
	return nil
}

// CheckRows validates every row against the layout and reports the first
// offending row.
func (m FieldMap) CheckRows(rows types.RowSet) error {
	width := m.Width()
	for _, row := range rows {
		if err := CheckRow(row, width); err != nil {
			return err
		}
	}
	return nil
}
