// =============================================================================
// POS Sales Report - XLSX Report Writer
// =============================================================================
//
// This module draws a report.Layout into an Excel workbook.
//
// WORKBOOK STRUCTURE:
//   Sheet order: 総括 | 現金売上 | キャッシュレス決済 | 赤伝
//
//   | Row | Content                                               |
//   |-----|-------------------------------------------------------|
//   | 1   | Title (売上日計表 / 売上月計表)                         |
//   | 2   | 店舗名: <shop>                                         |
//   | 3   | 集計日: <start>～<end>                                 |
//   | 4   | 【<sheet caption>】                                    |
//   | 6   | グループ名 | メニュー番号 | メニュー名 | 数量 | 金額      |
//   | 7.. | group caption, items, "<group> 計", ..., "<label> 計"  |
//
// Numbers are written as numbers with the #,##0 format so the workbook stays
// usable for further calculation.
//
// =============================================================================

package xlsxwriter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/pos-sales-report/internal/report"
)

// OverviewSheet is the name of the first sheet.
const OverviewSheet = "総括"

// Row positions shared by every sheet.
const (
	headerRow    = 6
	firstDataRow = 7
)

// columnWidths are the widths of columns A-E.
var columnWidths = []float64{20, 12, 40, 15, 15}

// numFmtThousands is the built-in excel number format "#,##0".
const numFmtThousands = 3

// =============================================================================
// WRITER
// =============================================================================

// styles holds the style IDs registered on a workbook.
type styles struct {
	title    int
	caption  int
	header   int
	group    int
	text     int
	number   int
	total    int
	totalNum int
}

// sheetWriter writes rows onto one sheet.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	st    styles
	row   int
}

// Render writes layout as an xlsx workbook to w.
func Render(w io.Writer, layout report.Layout) error {
	f, err := build(layout)
	if err != nil {
		return &report.ExportError{Format: "xlsx", Err: err}
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return &report.ExportError{Format: "xlsx", Err: err}
	}
	return nil
}

// WriteFile writes layout to path. A partially written file is removed.
func WriteFile(path string, layout report.Layout) error {
	var buf bytes.Buffer
	if err := Render(&buf, layout); err != nil {
		var exportErr *report.ExportError
		if errors.As(err, &exportErr) {
			exportErr.Path = path
		}
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		os.Remove(path)
		return &report.ExportError{Format: "xlsx", Path: path, Err: err}
	}
	return nil
}

// build creates the workbook in memory.
func build(layout report.Layout) (*excelize.File, error) {
	f := excelize.NewFile()

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetName(f.GetSheetName(0), OverviewSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeOverview(f, st, layout); err != nil {
		f.Close()
		return nil, fmt.Errorf("sheet %s: %w", OverviewSheet, err)
	}

	for _, section := range layout.Sections {
		if _, err := f.NewSheet(section.Label); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeSection(f, st, layout, section); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", section.Label, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// =============================================================================
// SHEETS
// =============================================================================

func writeOverview(f *excelize.File, st styles, layout report.Layout) error {
	w, err := newSheetWriter(f, st, OverviewSheet, layout, "【総括】")
	if err != nil {
		return err
	}

	for _, line := range layout.Overview {
		if err := w.line(line, false); err != nil {
			return err
		}
	}
	return w.line(layout.GrandTotal, true)
}

func writeSection(f *excelize.File, st styles, layout report.Layout, section report.Section) error {
	w, err := newSheetWriter(f, st, section.Label, layout, "【"+section.Label+"】")
	if err != nil {
		return err
	}

	if section.Empty() {
		if err := w.cells([]interface{}{report.NoDataLabel, "", "", "", ""}, st.text, st.text); err != nil {
			return err
		}
	}

	for _, group := range section.Groups {
		if err := w.set("A", group.Name, st.group); err != nil {
			return err
		}
		w.row++

		for _, item := range group.Items {
			values := []interface{}{"", item.MenuNumber, item.Name, item.Quantity, item.Amount}
			if err := w.cells(values, st.text, st.number); err != nil {
				return err
			}
		}
		if err := w.line(group.Subtotal, true); err != nil {
			return err
		}
	}

	return w.line(section.Total, true)
}

// newSheetWriter writes the header block and table header of a sheet.
func newSheetWriter(f *excelize.File, st styles, sheet string, layout report.Layout, caption string) (*sheetWriter, error) {
	w := &sheetWriter{f: f, sheet: sheet, st: st}

	header := []struct {
		row   int
		value string
		style int
	}{
		{1, layout.Title, st.title},
		{2, layout.ShopLine(), 0},
		{3, layout.DateLine(), 0},
		{4, caption, st.caption},
	}
	for _, h := range header {
		w.row = h.row
		if err := w.set("A", h.value, h.style); err != nil {
			return nil, err
		}
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, err
		}
	}

	w.row = headerRow
	values := make([]interface{}, len(report.TableHeader))
	for i, h := range report.TableHeader {
		values[i] = h
	}
	if err := w.cells(values, st.header, st.header); err != nil {
		return nil, err
	}

	w.row = firstDataRow
	return w, nil
}

// set writes one cell on the current row.
func (w *sheetWriter) set(col string, value interface{}, style int) error {
	cell := fmt.Sprintf("%s%d", col, w.row)
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		return err
	}
	if style != 0 {
		return w.f.SetCellStyle(w.sheet, cell, cell, style)
	}
	return nil
}

// cells writes columns A-E of the current row and advances. Columns D and E
// get numStyle, the rest textStyle.
func (w *sheetWriter) cells(values []interface{}, textStyle, numStyle int) error {
	for i, v := range values {
		col, _ := excelize.ColumnNumberToName(i + 1)
		style := textStyle
		if i >= 3 {
			style = numStyle
		}
		if err := w.set(col, v, style); err != nil {
			return err
		}
	}
	w.row++
	return nil
}

// line writes a labelled quantity/amount row.
func (w *sheetWriter) line(l report.Line, total bool) error {
	textStyle, numStyle := w.st.text, w.st.number
	if total {
		textStyle, numStyle = w.st.total, w.st.totalNum
	}
	return w.cells([]interface{}{l.Label, "", "", l.Quantity, l.Amount}, textStyle, numStyle)
}

// =============================================================================
// STYLES
// =============================================================================

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	grey := excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1}
	right := &excelize.Alignment{Horizontal: "right"}

	bold := &excelize.Font{Bold: true}

	var st styles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&st.caption, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}}},
		{&st.header, &excelize.Style{Font: bold, Fill: grey, Border: border,
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"}}},
		{&st.group, &excelize.Style{Font: bold}},
		{&st.text, &excelize.Style{Border: border}},
		{&st.number, &excelize.Style{Border: border, Alignment: right, NumFmt: numFmtThousands}},
		{&st.total, &excelize.Style{Font: bold, Fill: grey, Border: border}},
		{&st.totalNum, &excelize.Style{Font: bold, Fill: grey, Border: border, Alignment: right, NumFmt: numFmtThousands}},
	}

	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return styles{}, fmt.Errorf("failed to create style: %w", err)
		}
		*d.dst = id
	}
	return st, nil
}
