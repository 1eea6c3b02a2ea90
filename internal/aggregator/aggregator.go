// =============================================================================
// POS Sales Report - Aggregator
// =============================================================================
//
// The aggregator turns a filtered row set into a single Result. It is the
// only place in the program where quantities and amounts are summed; the
// interactive view and both exporters read the Result it returns.
//
// PASSES (all over the same classified records):
//   1. Product summary:       cash + cashless, keyed by product
//   2. Group summary:         cash + cashless, keyed by product group
//   3. Category summaries:    each category, keyed by product
//   4. Category report:       each category, keyed by group name + product
//   5. Category group totals: each category, keyed by group name
//   6. Scalar totals:         total and cashless figures
//
// ORDERING:
//   Aggregate rows appear in the order their key was first seen. Sorting is
//   left to the caller.
//
// =============================================================================

package aggregator

import (
	"fmt"

	"github.com/ginjaninja78/pos-sales-report/internal/fieldmap"
	"github.com/ginjaninja78/pos-sales-report/internal/types"
)

// Options controls classification edge cases.
type Options struct {
	// UnknownSign selects how rows with an amount sign other than 0 or 1 are
	// handled. Default: RejectUnknownSign.
	UnknownSign UnknownSignPolicy
}

// DefaultOptions returns the default aggregation options.
func DefaultOptions() Options {
	return Options{UnknownSign: RejectUnknownSign}
}

// =============================================================================
// AGGREGATE
// =============================================================================

// Aggregate classifies every row once and builds the Result.
//
// PARAMETERS:
//   - rows: The (usually date-filtered) row set.
//   - fm: The field layout used to read rows.
//   - opts: Classification options.
//
// RETURNS:
//   - The Result. An empty row set gives a zero-valued Result with
//     HadNoMatches set, not an error.
//   - A *fieldmap.FieldLayoutError when any row is too short, or an
//     *AmountSignError under RejectUnknownSign.
func Aggregate(rows types.RowSet, fm fieldmap.FieldMap, opts Options) (*Result, error) {
	if err := fm.CheckRows(rows); err != nil {
		return nil, err
	}

	records, unclassified, err := classifyAll(rows, fm, opts)
	if err != nil {
		return nil, err
	}

	products := newAccumulator()
	groups := newAccumulator()
	detail := newCategoryAccumulators()
	report := newCategoryAccumulators()
	groupTotals := newCategoryAccumulators()

	result := &Result{
		CategoryTotals: make(map[Category]Totals, len(Categories)),
		RowCount:       len(rows),
		HadNoMatches:   len(rows) == 0,
	}
	result.UnclassifiedRows = unclassified

	for _, rec := range records {
		qty, amount := rec.Quantity, rec.Amount

		if rec.Category == Reversal {
			qty, amount = abs(qty), abs(amount)
		} else {
			products.add(GroupKey{Code: rec.ProductCode, Name: rec.ProductName}, qty, amount)
			groups.add(GroupKey{Code: rec.GroupNumber, Name: rec.GroupName}, qty, amount)

			result.TotalQuantity += qty
			result.TotalAmount += amount
			if rec.Category == Cashless {
				result.CashlessQuantity += qty
				result.CashlessAmount += rec.CardDeduction
			}
		}

		groupName := rec.GroupName
		if groupName == "" {
			groupName = OtherGroupName
		}

		detail[rec.Category].add(GroupKey{
			Category: rec.Category, Code: rec.ProductCode, Name: rec.ProductName,
		}, qty, amount)
		report[rec.Category].add(GroupKey{
			Category: rec.Category, Group: groupName, Code: rec.ProductCode, Name: rec.ProductName,
		}, qty, amount)
		groupTotals[rec.Category].add(GroupKey{
			Category: rec.Category, Group: groupName,
		}, qty, amount)

		t := result.CategoryTotals[rec.Category]
		t.Quantity += qty
		t.Amount += amount
		result.CategoryTotals[rec.Category] = t
	}

	result.ProductSummary = products.rows
	result.GroupSummary = groups.rows
	result.CategorySummaries = detail.collect()
	result.CategoryReport = report.collect()
	result.CategoryGroupTotals = groupTotals.collect()
	for _, c := range Categories {
		if _, ok := result.CategoryTotals[c]; !ok {
			result.CategoryTotals[c] = Totals{}
		}
	}

	return result, nil
}

// classifyAll builds one Record per row and applies the unknown sign policy.
func classifyAll(rows types.RowSet, fm fieldmap.FieldMap, opts Options) ([]Record, int, error) {
	records := make([]Record, 0, len(rows))
	unclassified := 0

	for _, row := range rows {
		rec := NewRecord(row, fm)
		if rec.Category == Unclassified {
			if opts.UnknownSign != ExcludeUnknownSign {
				return nil, 0, &AmountSignError{
					Source: row.Source,
					Line:   row.Line,
					Value:  fm.Get(row, fieldmap.AmountSign),
				}
			}
			unclassified++
			continue
		}
		records = append(records, rec)
	}

	return records, unclassified, nil
}

// =============================================================================
// ORDERED ACCUMULATOR
// =============================================================================

// accumulator sums by key and remembers first-seen key order.
type accumulator struct {
	index map[GroupKey]int
	rows  []AggregateRow
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[GroupKey]int), rows: []AggregateRow{}}
}

func (a *accumulator) add(key GroupKey, qty, amount int64) {
	i, ok := a.index[key]
	if !ok {
		i = len(a.rows)
		a.index[key] = i
		a.rows = append(a.rows, AggregateRow{GroupKey: key})
	}
	a.rows[i].Quantity += qty
	a.rows[i].Amount += amount
}

// categoryAccumulators holds one accumulator per reportable category.
type categoryAccumulators map[Category]*accumulator

func newCategoryAccumulators() categoryAccumulators {
	m := make(categoryAccumulators, len(Categories))
	for _, c := range Categories {
		m[c] = newAccumulator()
	}
	return m
}

func (m categoryAccumulators) collect() map[Category][]AggregateRow {
	out := make(map[Category][]AggregateRow, len(m))
	for c, acc := range m {
		out[c] = acc.rows
	}
	return out
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// CheckInvariants verifies that the totals agree with both summaries and
// with the category totals. A non-nil error means the Result is corrupt.
func (r *Result) CheckInvariants() error {
	var pq, pa, gq, ga int64
	for _, row := range r.ProductSummary {
		pq += row.Quantity
		pa += row.Amount
	}
	for _, row := range r.GroupSummary {
		gq += row.Quantity
		ga += row.Amount
	}
	cash, cashless := r.CategoryTotals[Cash], r.CategoryTotals[Cashless]

	switch {
	case pa != r.TotalAmount || pq != r.TotalQuantity:
		return fmt.Errorf("product summary (%d/%d) disagrees with totals (%d/%d)", pq, pa, r.TotalQuantity, r.TotalAmount)
	case ga != r.TotalAmount || gq != r.TotalQuantity:
		return fmt.Errorf("group summary (%d/%d) disagrees with totals (%d/%d)", gq, ga, r.TotalQuantity, r.TotalAmount)
	case cash.Amount+cashless.Amount != r.TotalAmount || cash.Quantity+cashless.Quantity != r.TotalQuantity:
		return fmt.Errorf("category totals disagree with totals (%d/%d)", r.TotalQuantity, r.TotalAmount)
	}
	return nil
}
