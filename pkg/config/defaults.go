package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8050"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultRequestTimeout  = 60 * time.Second

	// Dispatch defaults
	DefaultAllowedNamePattern = `^[a-zA-Z0-9_-]+$`
	DefaultRetentionPeriodMin = 60
	DefaultCoalesceBuilds     = true
	DefaultSweepMaxAge        = 24 * time.Hour

	// Store defaults
	DefaultStoreBackend       = "sqlite"
	DefaultSQLitePath         = "data/dashgate.db"
	DefaultSQLiteMaxOpenConns = 4
	DefaultSQLiteBusyTimeout  = 5 * time.Second
	DefaultSQLiteWALMode      = true

	// Builder defaults
	DefaultBuilderMaxBodyBytes = int64(1048576)
	DefaultBuilderCallTimeout  = 5 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultLoggingRedact       = true
	DefaultMetricsEnabled      = true
	DefaultMetricsNamespace    = "dashgate"
	DefaultMetricsSubsystem    = "dispatch"
	DefaultTracingEnabled      = false
	DefaultTracingSampler      = "ratio"
	DefaultTracingSamplingRate = 1.0
	DefaultTracingTimeout      = 10 * time.Second
	DefaultTracingServiceName  = "dashgate"
)

// DefaultBuildDurationBuckets are the histogram buckets for tenant build
// duration in seconds.
var DefaultBuildDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// NewDefaultConfig returns a configuration with every field set to its
// default. Boolean fields whose default is true can only be expressed this
// way, so file loading starts from it.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Dispatch: DispatchConfig{
			CoalesceBuilds: DefaultCoalesceBuilds,
		},
		Store: StoreConfig{
			SQLite: SQLiteConfig{
				WALMode: DefaultSQLiteWALMode,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				RedactSecrets: DefaultLoggingRedact,
			},
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
			},
			Tracing: TracingConfig{
				Enabled: DefaultTracingEnabled,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-valued field of cfg with its default.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}

	// Dispatch defaults
	if cfg.Dispatch.AllowedNamePattern == "" {
		cfg.Dispatch.AllowedNamePattern = DefaultAllowedNamePattern
	}
	if cfg.Dispatch.RetentionPeriodMin == 0 {
		cfg.Dispatch.RetentionPeriodMin = DefaultRetentionPeriodMin
	}
	if cfg.Dispatch.SweepMaxAge == 0 {
		cfg.Dispatch.SweepMaxAge = DefaultSweepMaxAge
	}

	// Store defaults
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Store.SQLite.MaxOpenConns == 0 {
		cfg.Store.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Store.SQLite.BusyTimeout == 0 {
		cfg.Store.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Builder defaults
	if cfg.Builder.MaxBodyBytes == 0 {
		cfg.Builder.MaxBodyBytes = DefaultBuilderMaxBodyBytes
	}
	if cfg.Builder.CallTimeout == 0 {
		cfg.Builder.CallTimeout = DefaultBuilderCallTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.BuildDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.BuildDurationBuckets = append([]float64(nil), DefaultBuildDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}
