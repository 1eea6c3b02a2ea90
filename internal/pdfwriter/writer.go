// =============================================================================
// POS Sales Report - PDF Report Writer
// =============================================================================
//
// This module draws a report.Layout as a paginated A4 landscape document.
//
// DOCUMENT STRUCTURE:
//   page 1   <title> 店舗名: <shop>
//            集計日: <range>
//            【現金売上】 table
//   page 2   【キャッシュレス決済】 table
//   page 3   【赤伝】 table, then 【総計】 grand total table
//   footer   出力日時: <timestamp>                               <n>ページ
//
// FONTS:
//   Japanese text needs a TrueType font (export.font_path). Without one the
//   core Helvetica font is used and non-Latin text will not render.
//
// =============================================================================

package pdfwriter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/ginjaninja78/pos-sales-report/internal/logging"
	"github.com/ginjaninja78/pos-sales-report/internal/report"
)

const (
	fontFamily     = "jp"
	fallbackFamily = "Helvetica"

	marginSide   = 10.0
	marginTop    = 10.0
	marginBottom = 15.0

	headerHeight = 7.0
	rowHeight    = 5.5
)

// columnShares are the relative widths of the five table columns.
var columnShares = []float64{0.20, 0.10, 0.40, 0.15, 0.15}

// Options controls rendering.
type Options struct {
	// FontPath is a TTF file with Japanese glyphs.
	FontPath string
	Logger   logging.Logger
}

// =============================================================================
// PUBLIC API
// =============================================================================

// Render writes layout as a PDF document to w.
func Render(w io.Writer, layout report.Layout, opts Options) error {
	doc, err := newDocument(layout, opts)
	if err != nil {
		return &report.ExportError{Format: "pdf", Err: err}
	}

	doc.draw()

	if err := doc.pdf.Output(w); err != nil {
		return &report.ExportError{Format: "pdf", Err: err}
	}
	return nil
}

// WriteFile writes layout to path. Nothing is left at path on failure.
func WriteFile(path string, layout report.Layout, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, layout, opts); err != nil {
		var exportErr *report.ExportError
		if errors.As(err, &exportErr) {
			exportErr.Path = path
		}
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		os.Remove(path)
		return &report.ExportError{Format: "pdf", Path: path, Err: err}
	}
	return nil
}

// =============================================================================
// DOCUMENT
// =============================================================================

type document struct {
	pdf    *fpdf.Fpdf
	layout report.Layout
	family string
	// text converts strings for the active font.
	text   func(string) string
	widths []float64
}

func newDocument(layout report.Layout, opts Options) (*document, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(layout.Title, true)
	pdf.SetCreator("salesreport", true)

	doc := &document{pdf: pdf, layout: layout, family: fontFamily, text: func(s string) string { return s }}

	if opts.FontPath != "" {
		data, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font: %w", err)
		}
		pdf.AddUTF8FontFromBytes(fontFamily, "", data)
		pdf.AddUTF8FontFromBytes(fontFamily, "B", data)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to load font %s: %w", opts.FontPath, err)
		}
	} else {
		if opts.Logger != nil {
			opts.Logger.Warn("no font configured, Japanese text will not render", "setting", "export.font_path")
		}
		doc.family = fallbackFamily
		doc.text = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 2*marginSide
	for _, share := range columnShares {
		doc.widths = append(doc.widths, usable*share)
	}

	pdf.SetFooterFunc(doc.footer)
	return doc, nil
}

func (d *document) draw() {
	d.pdf.AddPage()

	d.pdf.SetFont(d.family, "B", 18)
	d.pdf.CellFormat(0, 10, d.text(d.layout.Title+" "+d.layout.ShopLine()), "", 1, "L", false, 0, "")
	d.pdf.SetFont(d.family, "", 14)
	d.pdf.CellFormat(0, 8, d.text(d.layout.DateLine()), "", 1, "L", false, 0, "")
	d.pdf.Ln(6)

	for i, section := range d.layout.Sections {
		if i > 0 {
			d.pdf.AddPage()
		}
		d.caption(section.Label)
		d.tableHeader()

		if section.Empty() {
			d.row([]string{report.NoDataLabel, "", "", "", ""}, false)
		}
		for _, group := range section.Groups {
			d.groupCaption(group.Name)
			for _, item := range group.Items {
				d.row([]string{"", item.MenuNumber, item.Name,
					report.FormatNumber(item.Quantity), report.FormatNumber(item.Amount)}, false)
			}
			d.line(group.Subtotal)
		}
		d.line(section.Total)
		d.pdf.Ln(8)
	}

	d.caption("総計")
	d.tableHeader()
	d.line(d.layout.GrandTotal)
}

// =============================================================================
// DRAWING HELPERS
// =============================================================================

func (d *document) caption(label string) {
	d.pdf.SetFont(d.family, "B", 11)
	d.pdf.CellFormat(0, 7, d.text("【"+label+"】"), "", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

func (d *document) tableHeader() {
	d.pdf.SetFont(d.family, "B", 10)
	d.pdf.SetFillColor(217, 217, 217)
	for i, h := range report.TableHeader {
		d.pdf.CellFormat(d.widths[i], headerHeight, d.text(h), "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)
}

func (d *document) groupCaption(name string) {
	d.pdf.SetFont(d.family, "B", 10)
	d.pdf.CellFormat(d.widths[0], rowHeight, d.text(name), "LTB", 0, "L", false, 0, "")
	rest := 0.0
	for _, w := range d.widths[1:] {
		rest += w
	}
	d.pdf.CellFormat(rest, rowHeight, "", "RTB", 1, "L", false, 0, "")
}

// line draws a grey subtotal or total row.
func (d *document) line(l report.Line) {
	d.pdf.SetFillColor(217, 217, 217)
	d.row([]string{l.Label, "", "", report.FormatNumber(l.Quantity), report.FormatNumber(l.Amount)}, true)
}

// row draws five cells. Quantity and amount are right aligned.
func (d *document) row(cells []string, total bool) {
	style := ""
	if total {
		style = "B"
	}
	d.pdf.SetFont(d.family, style, 9)
	for i, c := range cells {
		align := "L"
		if i >= 3 {
			align = "R"
		}
		d.pdf.CellFormat(d.widths[i], rowHeight, d.text(c), "1", 0, align, total, 0, "")
	}
	d.pdf.Ln(-1)
}

func (d *document) footer() {
	d.pdf.SetY(-marginBottom + 3)
	d.pdf.SetFont(d.family, "", 8)
	d.pdf.CellFormat(0, 5, d.text(d.layout.FooterStamp()), "", 0, "L", false, 0, "")
	d.pdf.SetX(marginSide)
	d.pdf.CellFormat(0, 5, d.text(fmt.Sprintf("%dページ", d.pdf.PageNo())), "", 0, "R", false, 0, "")
}
