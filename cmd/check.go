package cmd

import "github.com/spf13/cobra"

// newCheckCmd creates the 'check' subcommand: one pass over the product
// list, alerting for anything currently in stock, then exit. Meant for cron
// or scheduled jobs.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Runs a single stock check over all products and exits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfgFile)
			if err != nil {
				return err
			}
			return a.runOnce(cmd.Context())
		},
	}
}
