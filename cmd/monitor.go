package cmd

import "github.com/spf13/cobra"

// newMonitorCmd creates the 'monitor' subcommand: check continuously at the
// configured interval until interrupted.
func newMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Monitors products continuously until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfgFile)
			if err != nil {
				return err
			}
			return a.runMonitor(cmd.Context())
		},
	}
}
