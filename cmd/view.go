package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pos-sales-report/internal/engine"
	"github.com/ginjaninja78/pos-sales-report/internal/logging"
	"github.com/ginjaninja78/pos-sales-report/internal/tui"
)

var viewFlags queryFlags

// viewCmd opens the interactive view. Logs would corrupt the screen, so they
// go to log_file or nowhere.
var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse a date range interactively",
	Long: `The view command runs a query in the background and opens an interactive
table with product (商品別), group (グループ別) and per-category (伝票別) tabs.

Keys: tab switches tabs, c switches category, s and r sort, ctrl+r reloads,
q quits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := viewFlags.query(time.Now())
		if err != nil {
			return err
		}

		var logger logging.Logger = logging.Discard()
		if app.cfg.LogFile != "" {
			logger = app.logger
		}
		return tui.Run(cmd.Context(), engine.New(app.cfg, logger), q)
	},
}

func init() {
	viewFlags.register(viewCmd)
	rootCmd.AddCommand(viewCmd)
}
