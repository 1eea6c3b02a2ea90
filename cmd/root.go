// =============================================================================
// POS Sales Report - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand is
// attached here and shares the configuration and logger built before it runs.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesreport)
//   ├── summaryCmd  (salesreport summary)
//   ├── exportCmd   (salesreport export)
//   ├── viewCmd     (salesreport view)
//   ├── checkCmd    (salesreport check)
//   ├── configCmd   (salesreport config)
//   └── versionCmd  (salesreport version)
//
// CONFIGURATION:
//   1. --config names the YAML file (missing file: defaults apply)
//   2. SALESREPORT_* environment variables override file values
//   3. --verbose forces debug logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pos-sales-report/internal/config"
	"github.com/ginjaninja78/pos-sales-report/internal/engine"
	"github.com/ginjaninja78/pos-sales-report/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// app is the state shared by subcommands once PersistentPreRunE has run.
var app struct {
	cfg    *config.MainConfig
	logger *log.Logger
	closer io.Closer
}

// skipSetup marks commands that run without configuration.
const skipSetup = "skip-setup"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "salesreport",
	Short: "POS Sales Report - daily and monthly sales from terminal exports",
	Long: `salesreport reads the CSV transaction exports written by POS terminals,
classifies every transaction as cash, cashless or reversal, and produces
daily (売上日計表) and monthly (売上月計表) sales reports.

Example Usage:
  salesreport summary --today                      # Totals for today
  salesreport summary --from 240101 --to 240131    # Totals for January 2024
  salesreport export --this-month --format xlsx    # Write the monthly workbook
  salesreport view --this-month                    # Browse interactively
  salesreport check                                # Audit the input directory`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipSetup] == "true" {
			return nil
		}
		return setup(cmd)
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app.closer != nil {
			app.closer.Close()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main(). An interrupt
// cancels the running query.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// setup loads the configuration and builds the logger.
func setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	app.cfg = cfg
	app.logger = logger
	app.closer = closer
	return nil
}

// newEngine builds an engine from the loaded configuration.
func newEngine() *engine.Engine {
	return engine.New(app.cfg, app.logger)
}
