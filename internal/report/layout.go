// =============================================================================
// POS Sales Report - Report Layout
// =============================================================================
//
// This module shapes an aggregation Result into the printed report: title,
// overview lines and one section per payment category. Both exporters
// (xlsxwriter, pdfwriter) draw a Layout; neither reads the Result directly.
//
// LAYOUT:
//   Title      売上日計表 for a single day, 売上月計表 otherwise
//   Overview   one line per category + 総計(現金･キャッシュレス決済)
//   Sections   現金売上 / キャッシュレス決済 / 赤伝, each with
//                group blocks sorted by group name, then product code
//                "<group> 計" subtotal per block
//                "<category> 計" total per section
//
// Every figure is copied from the Result. The only transformation applied
// here is sign negation of reversal figures when NegateReversal is set.
//
// =============================================================================

package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
	"github.com/ginjaninja78/pos-sales-report/internal/datefilter"
	"github.com/ginjaninja78/pos-sales-report/pkg/utils"
)

// Fixed report wording.
const (
	DailyTitle      = "売上日計表"
	MonthlyTitle    = "売上月計表"
	GrandTotalLabel = "総計(現金･キャッシュレス決済)"
	NoDataLabel     = "データなし"
	SubtotalSuffix  = " 計"
	DefaultShopName = "KB Series"
)

// TableHeader is the column header row of every section table.
var TableHeader = []string{"グループ名", "メニュー番号", "メニュー名", "数量", "金額"}

// =============================================================================
// LAYOUT TYPES
// =============================================================================

// Layout is a fully shaped report, ready to draw.
type Layout struct {
	Title       string
	ShopName    string
	Range       datefilter.Range
	GeneratedAt time.Time

	Overview   []Line
	GrandTotal Line
	Sections   []Section
}

// Line is a labelled quantity/amount pair.
type Line struct {
	Label    string
	Quantity int64
	Amount   int64
}

// Section is the table of one payment category.
type Section struct {
	Category aggregator.Category
	Label    string
	Groups   []GroupBlock
	Total    Line
}

// Empty reports whether the section has no rows; renderers print NoDataLabel.
func (s Section) Empty() bool {
	return len(s.Groups) == 0
}

// GroupBlock is one product group inside a section.
type GroupBlock struct {
	Name     string
	Items    []Item
	Subtotal Line
}

// Item is one product line.
type Item struct {
	MenuNumber string
	Name       string
	Quantity   int64
	Amount     int64
}

// Options controls Build.
type Options struct {
	ShopName       string
	NegateReversal bool
	// Now stamps the layout. Zero uses time.Now.
	Now time.Time
}

// =============================================================================
// BUILD
// =============================================================================

// Build shapes result for the date range rng.
func Build(result *aggregator.Result, rng datefilter.Range, opts Options) Layout {
	shop := strings.TrimSpace(opts.ShopName)
	if shop == "" {
		shop = DefaultShopName
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	layout := Layout{
		Title:       Title(rng),
		ShopName:    shop,
		Range:       rng,
		GeneratedAt: now,
	}

	for _, c := range aggregator.Categories {
		sign := int64(1)
		if c == aggregator.Reversal && opts.NegateReversal {
			sign = -1
		}

		total := result.Total(c)
		layout.Overview = append(layout.Overview, Line{
			Label:    c.Label(),
			Quantity: sign * total.Quantity,
			Amount:   sign * total.Amount,
		})
		layout.Sections = append(layout.Sections, buildSection(result, c, sign))
	}

	grand := result.GrandTotal()
	layout.GrandTotal = Line{Label: GrandTotalLabel, Quantity: grand.Quantity, Amount: grand.Amount}

	return layout
}

func buildSection(result *aggregator.Result, c aggregator.Category, sign int64) Section {
	rows := result.Report(c)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Group != rows[j].Group {
			return rows[i].Group < rows[j].Group
		}
		return rows[i].Code < rows[j].Code
	})

	subtotals := make(map[string]aggregator.AggregateRow)
	for _, st := range result.GroupTotals(c) {
		subtotals[st.Group] = st
	}

	section := Section{Category: c, Label: c.Label()}
	for _, row := range rows {
		n := len(section.Groups)
		if n == 0 || section.Groups[n-1].Name != row.Group {
			st := subtotals[row.Group]
			section.Groups = append(section.Groups, GroupBlock{
				Name: row.Group,
				Subtotal: Line{
					Label:    row.Group + SubtotalSuffix,
					Quantity: sign * st.Quantity,
					Amount:   sign * st.Amount,
				},
			})
			n++
		}
		section.Groups[n-1].Items = append(section.Groups[n-1].Items, Item{
			MenuNumber: MenuNumber(row.Code),
			Name:       row.Name,
			Quantity:   sign * row.Quantity,
			Amount:     sign * row.Amount,
		})
	}

	total := result.Total(c)
	section.Total = Line{
		Label:    c.Label() + SubtotalSuffix,
		Quantity: sign * total.Quantity,
		Amount:   sign * total.Amount,
	}
	return section
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// Title returns the report title for rng.
func Title(rng datefilter.Range) string {
	if rng.SingleDay() {
		return DailyTitle
	}
	return MonthlyTitle
}

// MenuNumber strips leading zeros from an all-digit product code. Other codes
// are returned unchanged.
func MenuNumber(code string) string {
	if code == "" {
		return code
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return code
		}
	}
	trimmed := strings.TrimLeft(code, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

var printer = message.NewPrinter(language.Japanese)

// FormatNumber renders n with thousands separators, e.g. -1,234.
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// ShopLine is the shop header line.
func (l Layout) ShopLine() string {
	return "店舗名: " + l.ShopName
}

// DateLine is the date header line.
func (l Layout) DateLine() string {
	return "集計日: " + l.Range.String()
}

// FooterStamp is the generation timestamp printed in the PDF footer.
func (l Layout) FooterStamp() string {
	return "出力日時: " + l.GeneratedAt.Format("2006年01月02日 15:04")
}

// =============================================================================
// FILE NAMES
// =============================================================================

// FileName builds the output file name for the layout.
//
// PARAMETERS:
//   - format: The configured file name format (see config.ExportSettings).
//   - ext: The extension including the dot, e.g. ".xlsx".
func (l Layout) FileName(format, ext string) string {
	rangePart := l.Range.Start.Compact()
	if !l.Range.SingleDay() {
		rangePart += "-" + l.Range.End.Compact()
	}
	return utils.GenerateOutputFileName(format, map[string]string{
		"shop":  l.ShopName,
		"title": l.Title,
		"range": rangePart,
	}, ext)
}

// =============================================================================
// EXPORT ERRORS
// =============================================================================

// ExportError reports a failure while writing a report. It never affects the
// aggregation it was rendering.
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("export %s to %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
