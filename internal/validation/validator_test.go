package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pos-sales-report/internal/fieldmap"
	"github.com/ginjaninja78/pos-sales-report/internal/types"
)

func row(line int, date, qty, sign, amount, card, code string) types.Row {
	f := make([]string, 20)
	f[9], f[10], f[11], f[12], f[13], f[16] = qty, sign, amount, card, date, code
	return types.Row{Fields: f, Source: "Count.csv", Line: line}
}

func TestValidateCleanRows(t *testing.T) {
	v := NewValidator(fieldmap.Default())
	res := v.Validate(types.RowSet{
		row(2, "240101", "1", "0", "100", "0", "A"),
		row(3, "240101", "1", "1", "100", "", "A"),
	})

	assert.True(t, res.IsValid)
	assert.Empty(t, res.Issues)
	assert.Equal(t, 2, res.RowsAudited)
	assert.Equal(t, "No issues found.", FormatIssues(res.Issues))
}

func TestValidateFindsIssues(t *testing.T) {
	v := NewValidator(fieldmap.Default())
	res := v.Validate(types.RowSet{
		row(2, "2401", "x", "0", "100.5", "0", ""),
		row(3, "240101", "1", "5", "100", "0", "A"),
		{Fields: []string{"short"}, Source: "Count.csv", Line: 4},
	})

	assert.False(t, res.IsValid)
	assert.Equal(t, 2, res.ErrorCount)
	assert.Equal(t, 4, res.WarningCount)

	var fields []fieldmap.Field
	for _, issue := range res.Issues {
		fields = append(fields, issue.Field)
	}
	assert.Equal(t, []fieldmap.Field{
		fieldmap.TransactionDate, fieldmap.Quantity, fieldmap.Amount, fieldmap.ProductCode,
		fieldmap.AmountSign,
		"",
	}, fields)

	text := FormatIssues(res.Issues)
	assert.Contains(t, text, "6 issue(s)")
	assert.Contains(t, text, `Count.csv:3: amount_sign: unknown amount sign (value: "5")`)
	assert.Contains(t, text, "field layout mismatch")
}

func TestValidateOptions(t *testing.T) {
	rows := types.RowSet{
		row(2, "bad", "1", "0", "1", "0", "A"),
		row(3, "240101", "1", "9", "1", "0", "A"),
		row(4, "240101", "1", "9", "1", "0", "A"),
	}

	res := NewValidatorWithOptions(fieldmap.Default(), Options{StopOnFirstError: true}).Validate(rows)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, 1, res.ErrorCount)

	res = NewValidatorWithOptions(fieldmap.Default(), Options{TreatWarningsAsErrors: true}).Validate(rows[:1])
	assert.False(t, res.IsValid)
	assert.Zero(t, res.ErrorCount)
}
