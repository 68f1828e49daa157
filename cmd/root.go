// Package cmd defines and implements the CLI commands for the stocktracker
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command. Running the root
// directly picks the mode from the SINGLE_CHECK environment flag, matching
// how scheduled cloud deployments invoke the binary.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stocktracker",
		Short: "Watches product pages and alerts when items come back in stock.",
		Long: `stocktracker periodically fetches configured e-commerce product pages,
decides whether each page reports the item as available, and sends email
and Telegram alerts when a product transitions into stock. Pages can be
fetched statically or through a shared headless Chrome session for
JavaScript-heavy storefronts.`,

		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfgFile)
			if err != nil {
				return err
			}
			if a.cfg.SingleCheck {
				return a.runOnce(cmd.Context())
			}
			return a.runMonitor(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default config.json in the working directory)")

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newMonitorCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
