package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gutterbot",
		Short: "Chat-driven Gutter cycle game bot",
		Long: `gutterbot runs the Gutter: a recurring timed event in a Twitch channel
where viewers join, accumulate Scum, fight each other and roaming mobs,
and try to extract before they end up in timeout.

Configuration is environment-driven; see internal/config for the surface.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConsoleCmd())
	rootCmd.AddCommand(newSeedCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
