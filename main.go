// =============================================================================
// POS Sales Report - Main Entry Point
// =============================================================================
//
// This is the main entry point for the salesreport CLI. It delegates command
// execution to the cmd package.
//
// USAGE:
//   salesreport summary   - Print totals for a date range
//   salesreport export    - Write the xlsx / pdf report
//   salesreport view      - Browse a date range interactively
//   salesreport check     - Audit the export files
//   salesreport config    - Print the effective configuration
//   salesreport version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : loading, classification, aggregation and rendering
//   - pkg/           : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/pos-sales-report/cmd"
)

func main() {
	cmd.Execute()
}
