package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/dashgate/pkg/cli"
	"mercator-hq/dashgate/pkg/config"
	"mercator-hq/dashgate/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the dashgate server",
	Long: `Start the dashgate server with the specified configuration.

The server listens on the configured address and dispatches each request to
the tenant named by its first path segment.

Examples:
  # Start with defaults and DASHGATE_* environment overrides
  dashgate run

  # Start with a config file
  dashgate run --config /etc/dashgate/config.yaml

  # Override listen address
  dashgate run --listen 0.0.0.0:8050

  # Validate config without starting the server
  dashgate run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(flagOverrides)
	if err != nil {
		return err
	}

	logger, err := newLogger(&cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	printBanner(cmd, cfg)

	app, err := newApplication(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.close(closeCtx); err != nil {
			logger.Error("shutdown cleanup failed", "error", err)
		}
	}()

	ctx := cli.SetupSignalHandler()

	if err := app.sweeper.Start(ctx); err != nil {
		return cli.NewConfigError("dispatch.sweep_schedule", err.Error())
	}
	if next := app.sweeper.NextRun(); next != nil {
		logger.Debug("cache sweeper started", "next_run", next)
	}

	if cfg.Dispatch.WatchConfig && cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, config.DefaultDebounceInterval, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Stop()

		go func() {
			if err := watcher.Watch(ctx, app.reconfigure); err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(out, "✓ Health endpoint: http://%s/api/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s/api/metrics\n", cfg.Server.ListenAddress)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := app.server.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// flagOverrides applies the run flags on top of the loaded configuration.
func flagOverrides(cfg *config.Config) {
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg *config.LoggingConfig) (*slog.Logger, error) {
	l, err := logging.New(logging.Config{
		Level:         cfg.Level,
		Format:        cfg.Format,
		AddSource:     cfg.AddSource,
		RedactSecrets: cfg.RedactSecrets,
	})
	if err != nil {
		return nil, err
	}
	return l.Slog(), nil
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dashgate v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "Loading configuration from: %s\n", cfgFile)
	}
	fmt.Fprintln(out, "✓ Configuration loaded")

	slog.Debug("store backend", "backend", cfg.Store.Backend)
	slog.Debug("tenant pattern", "pattern", cfg.Dispatch.AllowedNamePattern,
		"retention", cfg.Dispatch.Retention().String())
	if cfg.Telemetry.Tracing.Enabled {
		slog.Debug("tracing enabled", "endpoint", cfg.Telemetry.Tracing.Endpoint)
	}
}
