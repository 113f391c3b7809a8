package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/dashgate/pkg/cli"
	"mercator-hq/dashgate/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dashgate",
	Short: "Dashgate - multi-tenant dashboard dispatcher",
	Long: `Dashgate serves many small dashboard applications from a single process.

The first path segment of every request selects a tenant. The tenant's
application is built from its stored definition on first use, cached, and
receives the request with that segment removed. "/api/..." reaches the
built-in read-only API (health, readiness, metrics, stored apps).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and DASHGATE_* environment when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the --config file with environment overrides and then
// overrides applied, and publishes the result as the process configuration.
func loadConfig(overrides ...config.Override) (*config.Config, error) {
	cfg, err := config.Initialize(cfgFile, overrides...)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	return cfg, nil
}
