package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
	"github.com/ginjaninja78/pos-sales-report/internal/datefilter"
	"github.com/ginjaninja78/pos-sales-report/internal/fieldmap"
	"github.com/ginjaninja78/pos-sales-report/internal/types"
)

func sale(sign, qty, amount, card, code, name, group string) types.Row {
	f := make([]string, 20)
	f[9], f[10], f[11], f[12], f[13] = qty, sign, amount, card, "240101"
	f[16], f[17], f[18], f[19] = code, name, "1", group
	return types.Row{Fields: f}
}

func sampleResult(t *testing.T) *aggregator.Result {
	t.Helper()
	res, err := aggregator.Aggregate(types.RowSet{
		sale("0", "2", "1000", "0", "0012", "醤油ラーメン", "麺類"),
		sale("0", "1", "300", "0", "0003", "ライス", "ご飯"),
		sale("0", "1", "450", "0", "0002", "塩ラーメン", "麺類"),
		sale("0", "1", "500", "500", "0031", "餃子", ""),
		sale("1", "1", "450", "0", "0002", "塩ラーメン", "麺類"),
	}, fieldmap.Default(), aggregator.DefaultOptions())
	require.NoError(t, err)
	return res
}

var jan1 = datefilter.Range{Start: "240101", End: "240101"}

func TestBuildSections(t *testing.T) {
	layout := Build(sampleResult(t), jan1, Options{NegateReversal: true})

	assert.Equal(t, DailyTitle, layout.Title)
	assert.Equal(t, DefaultShopName, layout.ShopName)
	require.Len(t, layout.Sections, 3)

	cash := layout.Sections[0]
	assert.Equal(t, "現金売上", cash.Label)
	require.Len(t, cash.Groups, 2)
	assert.Equal(t, "ご飯", cash.Groups[0].Name, "groups sort by name")
	assert.Equal(t, "麺類", cash.Groups[1].Name)
	assert.Equal(t, []Item{
		{MenuNumber: "2", Name: "塩ラーメン", Quantity: 1, Amount: 450},
		{MenuNumber: "12", Name: "醤油ラーメン", Quantity: 2, Amount: 1000},
	}, cash.Groups[1].Items, "items sort by product code")
	assert.Equal(t, Line{Label: "麺類 計", Quantity: 3, Amount: 1450}, cash.Groups[1].Subtotal)
	assert.Equal(t, Line{Label: "現金売上 計", Quantity: 4, Amount: 1750}, cash.Total)

	cashless := layout.Sections[1]
	require.Len(t, cashless.Groups, 1)
	assert.Equal(t, aggregator.OtherGroupName, cashless.Groups[0].Name)
}

func TestBuildNegatesReversalOnlyWhenAsked(t *testing.T) {
	res := sampleResult(t)

	negated := Build(res, jan1, Options{NegateReversal: true})
	rev := negated.Sections[2]
	assert.Equal(t, int64(-450), rev.Total.Amount)
	assert.Equal(t, int64(-1), rev.Groups[0].Items[0].Quantity)
	assert.Equal(t, int64(-450), rev.Groups[0].Subtotal.Amount)
	assert.Equal(t, Line{Label: "赤伝", Quantity: -1, Amount: -450}, negated.Overview[2])

	plain := Build(res, jan1, Options{})
	assert.Equal(t, int64(450), plain.Sections[2].Total.Amount)

	assert.Equal(t, int64(450), res.Total(aggregator.Reversal).Amount, "result is untouched")
}

func TestBuildOverviewAndGrandTotal(t *testing.T) {
	layout := Build(sampleResult(t), jan1, Options{ShopName: "Station", NegateReversal: true})

	assert.Equal(t, "Station", layout.ShopName)
	assert.Equal(t, []Line{
		{Label: "現金売上", Quantity: 4, Amount: 1750},
		{Label: "キャッシュレス決済", Quantity: 1, Amount: 500},
		{Label: "赤伝", Quantity: -1, Amount: -450},
	}, layout.Overview)
	assert.Equal(t, Line{Label: GrandTotalLabel, Quantity: 5, Amount: 2250}, layout.GrandTotal)
}

func TestBuildEmptyResult(t *testing.T) {
	res, err := aggregator.Aggregate(nil, fieldmap.Default(), aggregator.DefaultOptions())
	require.NoError(t, err)

	layout := Build(res, datefilter.Range{Start: "240101", End: "240131"}, Options{})
	assert.Equal(t, MonthlyTitle, layout.Title)
	for _, s := range layout.Sections {
		assert.True(t, s.Empty())
		assert.Zero(t, s.Total.Amount)
	}
}

func TestHeaderLines(t *testing.T) {
	now := time.Date(2024, 1, 31, 9, 5, 0, 0, time.Local)
	layout := Build(sampleResult(t), datefilter.Range{Start: "240101", End: "240131"}, Options{ShopName: "KB", Now: now})

	assert.Equal(t, "店舗名: KB", layout.ShopLine())
	assert.Equal(t, "集計日: 2024/01/01～2024/01/31", layout.DateLine())
	assert.Equal(t, "出力日時: 2024年01月31日 09:05", layout.FooterStamp())
}

func TestFileName(t *testing.T) {
	daily := Build(sampleResult(t), jan1, Options{ShopName: "KB/Series"})
	assert.Equal(t, "KB_Series_売上日計表_20240101.xlsx", daily.FileName("{shop}_{title}_{range}", ".xlsx"))

	monthly := Build(sampleResult(t), datefilter.Range{Start: "240101", End: "240131"}, Options{})
	assert.Equal(t, "KB Series_売上月計表_20240101-20240131.pdf", monthly.FileName("{shop}_{title}_{range}", ".pdf"))
}

func TestMenuNumber(t *testing.T) {
	assert.Equal(t, "12", MenuNumber("0012"))
	assert.Equal(t, "0", MenuNumber("000"))
	assert.Equal(t, "A01", MenuNumber("A01"))
	assert.Equal(t, "", MenuNumber(""))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "-450", FormatNumber(-450))
	assert.Equal(t, "0", FormatNumber(0))
}

func TestExportError(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&ExportError{Format: "pdf", Path: "/out/a.pdf", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "export pdf to /out/a.pdf: disk full", err.Error())
}
