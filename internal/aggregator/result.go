package aggregator

import "slices"

// OtherGroupName replaces a blank group name on category reports.
const OtherGroupName = "その他"

// GroupKey identifies one aggregate row. Which fields are set depends on the
// dimension:
//
//	product summary         Code=product code, Name=product name
//	group summary           Code=group number, Name=group name
//	category summary        Category, Code, Name (product)
//	category report         Category, Group=group name, Code, Name (product)
//	category group totals   Category, Group
type GroupKey struct {
	Category Category `yaml:"category,omitempty" json:"category,omitempty"`
	Group    string   `yaml:"group,omitempty" json:"group,omitempty"`
	Code     string   `yaml:"code,omitempty" json:"code,omitempty"`
	Name     string   `yaml:"name,omitempty" json:"name,omitempty"`
}

// AggregateRow is the summed quantity and amount of one key.
type AggregateRow struct {
	GroupKey `yaml:",inline"`
	Quantity int64 `yaml:"quantity" json:"quantity"`
	Amount   int64 `yaml:"amount" json:"amount"`
}

// Totals is a quantity/amount pair.
type Totals struct {
	Quantity int64 `yaml:"quantity" json:"quantity"`
	Amount   int64 `yaml:"amount" json:"amount"`
}

// Result is the outcome of one aggregation. It is built once and must be
// treated as read-only by every consumer; a new query produces a new Result.
//
// Reversal figures are stored as non-negative magnitudes. Displaying them
// as negatives is up to the renderer.
type Result struct {
	// ProductSummary and GroupSummary cover cash and cashless rows only.
	ProductSummary []AggregateRow `yaml:"product_summary" json:"product_summary"`
	GroupSummary   []AggregateRow `yaml:"group_summary" json:"group_summary"`

	// CategorySummaries holds per-category rows keyed by product.
	CategorySummaries map[Category][]AggregateRow `yaml:"category_summaries" json:"category_summaries"`

	// CategoryReport holds per-category rows keyed by group name and product,
	// in the shape the exported reports print.
	CategoryReport map[Category][]AggregateRow `yaml:"category_report" json:"category_report"`

	// CategoryGroupTotals holds per-category subtotals keyed by group name.
	CategoryGroupTotals map[Category][]AggregateRow `yaml:"category_group_totals" json:"category_group_totals"`

	// CategoryTotals holds one Totals per category.
	CategoryTotals map[Category]Totals `yaml:"category_totals" json:"category_totals"`

	// TotalQuantity and TotalAmount cover cash and cashless rows.
	TotalQuantity int64 `yaml:"total_quantity" json:"total_quantity"`
	TotalAmount   int64 `yaml:"total_amount" json:"total_amount"`

	// CashlessQuantity sums quantity over cashless rows; CashlessAmount sums
	// their card deduction field. Both are subsets of the totals above.
	CashlessQuantity int64 `yaml:"cashless_quantity" json:"cashless_quantity"`
	CashlessAmount   int64 `yaml:"cashless_amount" json:"cashless_amount"`

	RowCount         int  `yaml:"row_count" json:"row_count"`
	UnclassifiedRows int  `yaml:"unclassified_rows" json:"unclassified_rows"`
	HadNoMatches     bool `yaml:"had_no_matches" json:"had_no_matches"`
}

// Detail returns a copy of the product rows of category c.
func (r *Result) Detail(c Category) []AggregateRow {
	return slices.Clone(r.CategorySummaries[c])
}

// Report returns a copy of the group/product rows of category c.
func (r *Result) Report(c Category) []AggregateRow {
	return slices.Clone(r.CategoryReport[c])
}

// GroupTotals returns a copy of the group subtotals of category c.
func (r *Result) GroupTotals(c Category) []AggregateRow {
	return slices.Clone(r.CategoryGroupTotals[c])
}

// Total returns the totals of category c.
func (r *Result) Total(c Category) Totals {
	return r.CategoryTotals[c]
}

// GrandTotal is cash plus cashless.
func (r *Result) GrandTotal() Totals {
	return Totals{Quantity: r.TotalQuantity, Amount: r.TotalAmount}
}
