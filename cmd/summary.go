// =============================================================================
// POS Sales Report - Summary Command
// =============================================================================
//
// This file defines the 'summary' command, which runs one query and prints
// its totals and summaries to stdout.
//
// COMMAND USAGE:
//   salesreport summary [range flags] [--output table|json|yaml] [--category c]
//
// OUTPUT (table):
//   title and range, category totals with the grand total, the product and
//   group summaries, and the product detail of --category when given.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
	"github.com/ginjaninja78/pos-sales-report/internal/datefilter"
	"github.com/ginjaninja78/pos-sales-report/internal/engine"
	"github.com/ginjaninja78/pos-sales-report/internal/report"
)

var summaryFlags queryFlags

var (
	summaryOutput   string
	summaryCategory string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print sales totals for a date range",
	Long: `The summary command loads every export file, keeps the transactions in the
requested date range and prints their totals.

Reversal (赤伝) figures are shown as negatives when export.negate_reversal is
set; they are never part of the grand total.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := summaryFlags.query(time.Now())
		if err != nil {
			return err
		}

		var category aggregator.Category
		if summaryCategory != "" {
			if category, err = aggregator.ParseCategory(summaryCategory); err != nil {
				return err
			}
		}

		session, err := newEngine().Run(cmd.Context(), q)
		if err != nil {
			return err
		}
		return printSummary(cmd.OutOrStdout(), session, summaryOptions{
			Format:         summaryOutput,
			Category:       category,
			NegateReversal: app.cfg.Export.NegateReversal,
		})
	},
}

func init() {
	summaryFlags.register(summaryCmd)
	summaryCmd.Flags().StringVarP(&summaryOutput, "output", "o", "table", "Output format: table, json or yaml")
	summaryCmd.Flags().StringVar(&summaryCategory, "category", "", "Also print the detail of one category (cash, cashless, reversal)")
	rootCmd.AddCommand(summaryCmd)
}

// =============================================================================
// OUTPUT
// =============================================================================

type summaryOptions struct {
	Format         string
	Category       aggregator.Category
	NegateReversal bool
}

// summaryDocument is the json/yaml form of a session.
type summaryDocument struct {
	Session     string              `json:"session" yaml:"session"`
	Start       datefilter.DateCode `json:"start" yaml:"start"`
	End         datefilter.DateCode `json:"end" yaml:"end"`
	RowsLoaded  int                 `json:"rows_loaded" yaml:"rows_loaded"`
	RowsMatched int                 `json:"rows_matched" yaml:"rows_matched"`
	Files       []string            `json:"files" yaml:"files"`
	Result      *aggregator.Result  `json:"result" yaml:"result"`
}

func printSummary(w io.Writer, s *engine.Session, opts summaryOptions) error {
	switch opts.Format {
	case "json", "yaml":
		doc := summaryDocument{
			Session:     s.ID.String(),
			Start:       s.Query.Range.Start,
			End:         s.Query.Range.End,
			RowsLoaded:  s.RowsLoaded,
			RowsMatched: s.RowsMatched,
			Files:       s.Files,
			Result:      s.Result,
		}
		if opts.Format == "json" {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()

	case "table", "":
		printSummaryTables(w, s, opts)
		return nil

	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", opts.Format)
	}
}

var headingStyle = lipgloss.NewStyle().Bold(true)

func printSummaryTables(w io.Writer, s *engine.Session, opts summaryOptions) {
	rng := s.Query.Range
	fmt.Fprintln(w, headingStyle.Render(report.Title(rng)+"  集計日: "+rng.String()))

	if s.Empty() {
		fmt.Fprintln(w, "該当するデータがありません")
		return
	}

	res := s.Result
	fmt.Fprintf(w, "%d rows from %d file(s)\n\n", s.RowsMatched, len(s.Files))

	layout := report.Build(res, rng, report.Options{NegateReversal: opts.NegateReversal})
	totals := newTable("区分", "枚数", "金額")
	for _, line := range layout.Overview {
		totals.Row(line.Label, report.FormatNumber(line.Quantity), report.FormatNumber(line.Amount))
	}
	totals.Row(layout.GrandTotal.Label, report.FormatNumber(layout.GrandTotal.Quantity), report.FormatNumber(layout.GrandTotal.Amount))
	totals.Row("キャッシュレス決済額", report.FormatNumber(res.CashlessQuantity), report.FormatNumber(res.CashlessAmount))
	fmt.Fprintln(w, totals.Render())

	fmt.Fprintln(w, headingStyle.Render("商品別"))
	fmt.Fprintln(w, rowsTable("商品コード", "商品名", res.ProductSummary, 1).Render())

	fmt.Fprintln(w, headingStyle.Render("グループ別"))
	fmt.Fprintln(w, rowsTable("グループ番号", "グループ名", res.GroupSummary, 1).Render())

	if opts.Category != "" {
		sign := int64(1)
		if opts.Category == aggregator.Reversal && opts.NegateReversal {
			sign = -1
		}
		fmt.Fprintln(w, headingStyle.Render(opts.Category.Label()))
		fmt.Fprintln(w, rowsTable("商品コード", "商品名", s.Detail(opts.Category), sign).Render())
	}

	if res.UnclassifiedRows > 0 {
		fmt.Fprintf(w, "%d row(s) with an unknown amount sign were excluded\n", res.UnclassifiedRows)
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			if col > 0 && col >= len(headers)-2 {
				return style.Align(lipgloss.Right)
			}
			return style
		})
}

func rowsTable(codeHeader, nameHeader string, rows []aggregator.AggregateRow, sign int64) *table.Table {
	t := newTable(codeHeader, nameHeader, "枚数", "金額")
	for _, r := range rows {
		t.Row(r.Code, r.Name, report.FormatNumber(sign*r.Quantity), report.FormatNumber(sign*r.Amount))
	}
	return t
}
