package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate relay configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration file",
	Long: `Load the configuration file named by --config, apply defaults, and run
full validation (listener, haproxy, telemetry, stack, reload and
housekeeping sections). Exits non-zero and prints every validation error
found if the configuration is invalid.`,
	RunE: runConfigValidate,
}

var configLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate the configuration and warn about suspicious defaults",
	Long: `Like "config validate", but also flags configuration that parses and
validates successfully yet is likely a mistake: an enabled PROXY layer with
no upstream_address override relying on the zero-value default, a
housekeeping schedule that never fires, or a stack with no layers at all.`,
	RunE: runConfigLint,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configLintCmd)
}

func loadAndValidate() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadAndValidate()
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}
	fmt.Printf("configuration %s is valid\n", cfgFile)
	fmt.Printf("listen: %s %s\n", cfg.Listen.Network, cfg.Listen.Address)
	fmt.Printf("haproxy: enabled=%v version=%s transport=%s\n", cfg.HaProxy.Enabled, cfg.HaProxy.Version, cfg.HaProxy.Transport)
	fmt.Printf("stack: %d layer(s)\n", len(cfg.Stack.Layers))
	return nil
}

func runConfigLint(cmd *cobra.Command, args []string) error {
	cfg, err := loadAndValidate()
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}

	var warnings []string
	if cfg.HaProxy.Enabled && cfg.HaProxy.UpstreamAddress == "" {
		warnings = append(warnings, "haproxy.enabled is true but haproxy.upstream_address is empty")
	}
	if len(cfg.Stack.Layers) == 0 {
		warnings = append(warnings, "stack.layers is empty: connections will be dialed with no middleware at all")
	}
	if cfg.Housekeeping.Enabled && cfg.Housekeeping.Schedule == "" {
		warnings = append(warnings, "housekeeping.enabled is true but housekeeping.schedule is empty")
	}
	if cfg.Reload.Enabled && cfg.Listen.TLS.Enabled {
		warnings = append(warnings, "reload.enabled with listen.tls.enabled: certificate rotation on reload is not automatic, only the in-memory config singleton updates")
	}

	fmt.Printf("configuration %s is valid\n", cfgFile)
	if len(warnings) == 0 {
		fmt.Println("no lint warnings")
		return nil
	}
	fmt.Printf("%d lint warning(s):\n", len(warnings))
	for _, w := range warnings {
		fmt.Printf("  - %s\n", w)
	}
	return nil
}
