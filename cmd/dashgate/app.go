package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"

	"mercator-hq/dashgate/pkg/api"
	"mercator-hq/dashgate/pkg/builder"
	"mercator-hq/dashgate/pkg/cli"
	"mercator-hq/dashgate/pkg/config"
	"mercator-hq/dashgate/pkg/dispatch"
	"mercator-hq/dashgate/pkg/server"
	"mercator-hq/dashgate/pkg/store"
	"mercator-hq/dashgate/pkg/telemetry/health"
	"mercator-hq/dashgate/pkg/telemetry/metrics"
	"mercator-hq/dashgate/pkg/telemetry/tracing"
)

// application holds the wired components of a running dashgate process.
type application struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      store.Store
	collector  *metrics.Collector
	tracer     *tracing.Tracer
	dispatcher *dispatch.Dispatcher
	sweeper    *dispatch.Sweeper
	server     *server.Server
}

// newApplication wires the store, builder, dispatcher, API service and HTTP
// server described by cfg. The caller owns the returned application and
// must call close.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.tracer = tracer

	st, err := openStore(&cfg.Store)
	if err != nil {
		app.close(context.Background())
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	app.store = st

	app.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	b := builder.New(builder.Config{
		MaxBodyBytes: cfg.Builder.MaxBodyBytes,
		CallTimeout:  cfg.Builder.CallTimeout,
	}, logger)

	d, err := dispatch.New(st, b, nil, dispatcherConfig(cfg),
		dispatch.WithCoalescing(cfg.Dispatch.CoalesceBuilds),
		dispatch.WithMetrics(app.collector),
		dispatch.WithLogger(logger),
	)
	if err != nil {
		app.close(context.Background())
		return nil, cli.NewConfigError("dispatch.allowed_name_pattern", err.Error())
	}
	app.dispatcher = d

	app.server = server.NewServer(&cfg.Server, d,
		server.WithLogger(logger),
		server.WithMetrics(app.collector),
	)

	checker := health.New(health.DefaultCheckTimeout)
	checker.RegisterCheck("server", app.server.Health)

	apiOpts := []api.Option{
		api.WithCache(d.Cache()),
		api.WithHealthChecker(checker),
		api.WithVersion(Version, GitCommit, BuildDate),
		api.WithLogger(logger.With("component", "api")),
	}
	if cfg.Telemetry.Metrics.Enabled {
		apiOpts = append(apiOpts, api.WithMetricsHandler(app.collector.Handler()))
	}
	d.SetAPIHandler(api.New(st, apiOpts...))

	app.sweeper = dispatch.NewSweeper(d.Cache(), cfg.Dispatch.SweepSchedule, cfg.Dispatch.SweepMaxAge)

	return app, nil
}

// handler returns the fully wrapped HTTP handler.
func (a *application) handler() http.Handler {
	return a.server.Handler()
}

// reconfigure applies a reloaded configuration to the running dispatcher.
// Only the identifier pattern and the retention period change at runtime;
// other changed settings are logged and wait for a restart.
func (a *application) reconfigure(cfg *config.Config) error {
	if err := a.dispatcher.Reconfigure(dispatcherConfig(cfg)); err != nil {
		return err
	}
	if prev := config.GetConfig(); prev != nil {
		for _, field := range restartRequired(prev, cfg) {
			a.logger.Warn("configuration change requires a restart", "field", field)
		}
	}
	return nil
}

// restartRequired lists the settings that differ between prev and next but
// are only read at startup.
func restartRequired(prev, next *config.Config) []string {
	var fields []string
	if prev.Server != next.Server {
		fields = append(fields, "server")
	}
	if prev.Store != next.Store {
		fields = append(fields, "store")
	}
	if prev.Builder != next.Builder {
		fields = append(fields, "builder")
	}
	if prev.Dispatch.CoalesceBuilds != next.Dispatch.CoalesceBuilds {
		fields = append(fields, "dispatch.coalesce_builds")
	}
	if prev.Dispatch.SweepSchedule != next.Dispatch.SweepSchedule || prev.Dispatch.SweepMaxAge != next.Dispatch.SweepMaxAge {
		fields = append(fields, "dispatch.sweep")
	}
	if !reflect.DeepEqual(prev.Telemetry, next.Telemetry) {
		fields = append(fields, "telemetry")
	}
	return fields
}

// close releases resources in reverse order of acquisition.
func (a *application) close(ctx context.Context) error {
	var errs []error
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing store: %w", err))
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down tracer: %w", err))
		}
	}
	return errors.Join(errs...)
}

func dispatcherConfig(cfg *config.Config) dispatch.Config {
	return dispatch.Config{
		AllowedNamePattern: cfg.Dispatch.AllowedNamePattern,
		Retention:          cfg.Dispatch.Retention(),
	}
}
