// Package cli implements the carbonctl operator commands.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the carbonctl command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "carbonctl",
		Short:         "Operate the carbon tracker backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("log-level", "", "override LOG_LEVEL")
	cmd.PersistentFlags().String("log-format", "console", "log output format (json or console)")

	cmd.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newEstimateCmd(),
	)
	return cmd
}
