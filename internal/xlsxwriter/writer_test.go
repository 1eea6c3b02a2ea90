package xlsxwriter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
	"github.com/ginjaninja78/pos-sales-report/internal/datefilter"
	"github.com/ginjaninja78/pos-sales-report/internal/fieldmap"
	"github.com/ginjaninja78/pos-sales-report/internal/report"
	"github.com/ginjaninja78/pos-sales-report/internal/types"
)

func sale(sign, qty, amount, card, code, name, group string) types.Row {
	f := make([]string, 20)
	f[9], f[10], f[11], f[12], f[13] = qty, sign, amount, card, "240101"
	f[16], f[17], f[18], f[19] = code, name, "1", group
	return types.Row{Fields: f}
}

func sampleLayout(t *testing.T, rows types.RowSet) report.Layout {
	t.Helper()
	res, err := aggregator.Aggregate(rows, fieldmap.Default(), aggregator.DefaultOptions())
	require.NoError(t, err)
	return report.Build(res, datefilter.Range{Start: "240101", End: "240101"}, report.Options{
		ShopName:       "KB",
		NegateReversal: true,
		Now:            time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local),
	})
}

var sampleRows = types.RowSet{
	sale("0", "2", "1000", "0", "0012", "醤油ラーメン", "麺類"),
	sale("0", "1", "300", "0", "0003", "ライス", "ご飯"),
	sale("0", "1", "450", "0", "0002", "塩ラーメン", "麺類"),
	sale("0", "1", "500", "500", "0031", "餃子", ""),
	sale("1", "1", "450", "0", "0002", "塩ラーメン", "麺類"),
}

func render(t *testing.T, layout report.Layout) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, layout))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestRenderSheetOrder(t *testing.T) {
	f := render(t, sampleLayout(t, sampleRows))
	assert.Equal(t, []string{"総括", "現金売上", "キャッシュレス決済", "赤伝"}, f.GetSheetList())
}

func TestRenderHeaderBlock(t *testing.T) {
	f := render(t, sampleLayout(t, sampleRows))

	for _, sheet := range f.GetSheetList() {
		assert.Equal(t, report.DailyTitle, cell(t, f, sheet, "A1"), sheet)
		assert.Equal(t, "店舗名: KB", cell(t, f, sheet, "A2"), sheet)
		assert.Equal(t, "集計日: 2024/01/01～2024/01/01", cell(t, f, sheet, "A3"), sheet)
		assert.Equal(t, "メニュー名", cell(t, f, sheet, "C6"), sheet)
	}
	assert.Equal(t, "【現金売上】", cell(t, f, "現金売上", "A4"))
}

func TestRenderCashSection(t *testing.T) {
	f := render(t, sampleLayout(t, sampleRows))
	const sheet = "現金売上"

	rows := [][]string{
		{"A7", "ご飯"},
		{"B8", "3"}, {"C8", "ライス"}, {"E8", "300"},
		{"A9", "ご飯 計"}, {"D9", "1"}, {"E9", "300"},
		{"A10", "麺類"},
		{"B11", "2"}, {"C11", "塩ラーメン"},
		{"B12", "12"}, {"D12", "2"}, {"E12", "1000"},
		{"A13", "麺類 計"}, {"E13", "1450"},
		{"A14", "現金売上 計"}, {"D14", "4"}, {"E14", "1750"},
	}
	for _, r := range rows {
		assert.Equal(t, r[1], cell(t, f, sheet, r[0]), r[0])
	}
}

func TestRenderReversalNegated(t *testing.T) {
	f := render(t, sampleLayout(t, sampleRows))

	assert.Equal(t, "-450", cell(t, f, "赤伝", "E8"))
	assert.Equal(t, "赤伝 計", cell(t, f, "赤伝", "A10"))
	assert.Equal(t, "-450", cell(t, f, "赤伝", "E10"))
}

func TestRenderOverview(t *testing.T) {
	f := render(t, sampleLayout(t, sampleRows))

	assert.Equal(t, "現金売上", cell(t, f, OverviewSheet, "A7"))
	assert.Equal(t, "1750", cell(t, f, OverviewSheet, "E7"))
	assert.Equal(t, "キャッシュレス決済", cell(t, f, OverviewSheet, "A8"))
	assert.Equal(t, "500", cell(t, f, OverviewSheet, "E8"))
	assert.Equal(t, "-450", cell(t, f, OverviewSheet, "E9"))
	assert.Equal(t, report.GrandTotalLabel, cell(t, f, OverviewSheet, "A10"))
	assert.Equal(t, "5", cell(t, f, OverviewSheet, "D10"))
	assert.Equal(t, "2250", cell(t, f, OverviewSheet, "E10"))
}

func TestRenderEmptySection(t *testing.T) {
	f := render(t, sampleLayout(t, types.RowSet{sale("0", "1", "100", "0", "1", "A", "G")}))

	assert.Equal(t, report.NoDataLabel, cell(t, f, "赤伝", "A7"))
	assert.Equal(t, "赤伝 計", cell(t, f, "赤伝", "A8"))
	assert.Equal(t, "0", cell(t, f, "赤伝", "E8"))
}

func TestWriteFile(t *testing.T) {
	layout := sampleLayout(t, sampleRows)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteFile(path, layout))
	_, err := os.Stat(path)
	assert.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "missing", "report.xlsx")
	err = WriteFile(bad, layout)
	var exportErr *report.ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, "xlsx", exportErr.Format)
	assert.Equal(t, bad, exportErr.Path)
}
