// =============================================================================
// POS Sales Report - Export Command
// =============================================================================
//
// This file defines the 'export' command, which runs one query and writes
// the sales report as an Excel workbook and/or a PDF document.
//
// COMMAND USAGE:
//   salesreport export [range flags] [--format xlsx,pdf] [--out dir] [--shop name]
//
// OUTPUT FILES:
//   <output_dir>/<export.file_name_format>.xlsx
//   <output_dir>/<export.file_name_format>.pdf
//
// A range with no transactions writes nothing and is not an error.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pos-sales-report/internal/config"
	"github.com/ginjaninja78/pos-sales-report/internal/engine"
	"github.com/ginjaninja78/pos-sales-report/internal/logging"
	"github.com/ginjaninja78/pos-sales-report/internal/pdfwriter"
	"github.com/ginjaninja78/pos-sales-report/internal/report"
	"github.com/ginjaninja78/pos-sales-report/internal/xlsxwriter"
	"github.com/ginjaninja78/pos-sales-report/pkg/utils"
)

var exportFlags queryFlags

var (
	exportFormats []string
	exportOut     string
	exportShop    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the sales report as xlsx and/or pdf",
	Long: `The export command runs the same query as summary and writes the report
to the output directory. A single day produces 売上日計表, any longer range
produces 売上月計表.

The workbook has the sheets 総括, 現金売上, キャッシュレス決済 and 赤伝. The PDF
needs export.font_path to point at a Japanese TrueType font.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := exportFlags.query(time.Now())
		if err != nil {
			return err
		}

		session, err := newEngine().Run(cmd.Context(), q)
		if err != nil {
			return err
		}

		opts := exportOptions{
			Formats:   app.cfg.Export.Formats,
			OutputDir: app.cfg.OutputDir,
			ShopName:  app.cfg.ShopName,
		}
		if cmd.Flags().Changed("format") {
			opts.Formats = exportFormats
		}
		if exportOut != "" {
			opts.OutputDir = exportOut
		}
		if exportShop != "" {
			opts.ShopName = exportShop
		}

		_, err = exportSession(cmd.OutOrStdout(), session, app.cfg.Export, opts, app.logger)
		return err
	},
}

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringSliceVar(&exportFormats, "format", nil, "Formats to write: xlsx, pdf (default: export.formats)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory (default: output_dir)")
	exportCmd.Flags().StringVar(&exportShop, "shop", "", "Shop name printed on the report (default: shop_name)")
	rootCmd.AddCommand(exportCmd)
}

type exportOptions struct {
	Formats   []string
	OutputDir string
	ShopName  string
}

// exportSession writes one file per format and returns their paths.
func exportSession(w io.Writer, s *engine.Session, settings config.ExportSettings, opts exportOptions, logger logging.Logger) ([]string, error) {
	for _, f := range opts.Formats {
		if f != "xlsx" && f != "pdf" {
			return nil, fmt.Errorf("unsupported format %q (want xlsx or pdf)", f)
		}
	}

	if s.Empty() {
		fmt.Fprintf(w, "該当するデータがありません (%s); nothing exported\n", s.Query.Range.String())
		return nil, nil
	}

	fm := utils.NewFileManager(opts.OutputDir)
	if err := fm.EnsureDirectories(); err != nil {
		return nil, err
	}

	layout := report.Build(s.Result, s.Query.Range, report.Options{
		ShopName:       opts.ShopName,
		NegateReversal: settings.NegateReversal,
	})

	var written []string
	for _, format := range opts.Formats {
		path := fm.OutputPath(layout.FileName(settings.FileNameFormat, "."+format))

		var err error
		switch format {
		case "xlsx":
			err = xlsxwriter.WriteFile(path, layout)
		case "pdf":
			err = pdfwriter.WriteFile(path, layout, pdfwriter.Options{FontPath: settings.FontPath, Logger: logger})
		}
		if err != nil {
			return written, err
		}

		logger.Info("report written", "format", format, "path", path, "session", s.ID)
		fmt.Fprintf(w, "  ✓ %s\n", path)
		written = append(written, path)
	}
	return written, nil
}
