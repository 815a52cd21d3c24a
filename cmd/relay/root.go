package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "relay - a composable PROXY-protocol-aware connection relay",
	Long: `relay is an open-source connection relay built around a generic,
type-structural request/response middleware stack.

It accepts inbound connections, runs them through a configurable chain of
named layers (timeouts, tracing, panic recovery), and forwards the connection to an upstream behind a
client-side PROXY protocol header (v1 text or v2 binary) so the upstream
can recover the original client address.

For more information, visit: https://github.com/mercator-hq/relay`,
	Version: Version,
}

// Execute runs the root command, mapping command failures onto the
// sysexits-style codes in pkg/cli so scripts can branch on the cause.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
