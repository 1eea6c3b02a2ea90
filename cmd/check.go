// =============================================================================
// POS Sales Report - Check Command
// =============================================================================
//
// This file defines the 'check' command, which audits the export files in a
// directory without aggregating them.
//
// COMMAND USAGE:
//   salesreport check [--dir path] [--strict] [--stop-on-error] [--audit-log]
//
// EXIT STATUS:
//   0  no error-severity issues (warnings are printed)
//   1  at least one error-severity issue, or any warning with --strict
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pos-sales-report/internal/validation"
	"github.com/ginjaninja78/pos-sales-report/pkg/utils"
)

var (
	checkDir         string
	checkStrict      bool
	checkStopOnError bool
	checkAuditLog    bool
)

// errAuditFailed is returned when the audit finds blocking issues.
var errAuditFailed = errors.New("audit found blocking issues")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Audit export files for data problems",
	Long: `The check command reads every export file in the input directory and reports
rows that a report would reject or silently correct:

  error    rows narrower than the field layout
  error    amount sign other than 0 (sale) or 1 (reversal)
  warning  transaction dates that are not YYMMDD
  warning  quantity, amount or card deduction that is not an integer
  warning  blank product codes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newEngine().Audit(cmd.Context(), checkDir, validation.Options{
			StopOnFirstError:      checkStopOnError,
			TreatWarningsAsErrors: checkStrict,
		})
		if err != nil {
			return err
		}

		if checkAuditLog {
			path, err := writeAuditLog(res, app.cfg.OutputDir)
			if err != nil {
				return err
			}
			if path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Audit log written to %s\n", path)
			}
		}

		return reportAudit(cmd.OutOrStdout(), res)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkDir, "dir", "", "Directory of export files (default: input_dir)")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Fail on warnings too")
	checkCmd.Flags().BoolVar(&checkStopOnError, "stop-on-error", false, "Stop at the first error")
	checkCmd.Flags().BoolVar(&checkAuditLog, "audit-log", false, "Also write the findings to a log file in output_dir")
	rootCmd.AddCommand(checkCmd)
}

// reportAudit prints the findings and fails when the result is invalid.
func reportAudit(w io.Writer, res *validation.Result) error {
	fmt.Fprintf(w, "Rows audited: %d  errors: %d  warnings: %d\n\n",
		res.RowsAudited, res.ErrorCount, res.WarningCount)
	fmt.Fprint(w, validation.FormatIssues(res.Issues))
	fmt.Fprintln(w)

	if !res.IsValid {
		return errAuditFailed
	}
	return nil
}

func writeAuditLog(res *validation.Result, outputDir string) (string, error) {
	if err := utils.NewFileManager(outputDir).EnsureDirectories(); err != nil {
		return "", err
	}

	entries := make([]utils.AuditLogEntry, len(res.Issues))
	for i, issue := range res.Issues {
		entries[i] = utils.AuditLogEntry{
			Severity:   issue.Severity,
			FileName:   issue.Source,
			RowNumber:  issue.Line,
			FieldName:  string(issue.Field),
			FieldValue: issue.Value,
			Message:    issue.Message,
		}
	}
	return utils.WriteAuditLog(entries, outputDir)
}
