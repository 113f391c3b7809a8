package config

import "time"

// Config is the root configuration structure for dashgate.
// It contains the HTTP server, dispatch, definition store, application
// builder and telemetry settings.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Dispatch contains tenant routing and instance cache configuration.
	Dispatch DispatchConfig `yaml:"dispatch"`

	// Store contains configuration for the definition store backend.
	Store StoreConfig `yaml:"store"`

	// Builder contains limits applied to built tenant applications.
	Builder BuilderConfig `yaml:"builder"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8050", "0.0.0.0:8050").
	// Default: "127.0.0.1:8050"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// RequestTimeout bounds the time spent handling a single request,
	// including a tenant build on a cache miss.
	// Default: 60s
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DispatchConfig contains configuration for tenant routing.
type DispatchConfig struct {
	// AllowedNamePattern is the regular expression a tenant identifier must
	// fully match.
	// Default: "^[a-zA-Z0-9_-]+$"
	AllowedNamePattern string `yaml:"allowed_name_pattern"`

	// RetentionPeriodMin is how many minutes a built tenant instance stays
	// fresh. Expiry is only checked on root page requests.
	// Default: 60
	RetentionPeriodMin int `yaml:"retention_period_min"`

	// CoalesceBuilds makes concurrent cache misses for one tenant share a
	// single build.
	// Default: true
	CoalesceBuilds bool `yaml:"coalesce_builds"`

	// SweepSchedule is a cron expression for evicting stale instances
	// regardless of traffic. Empty disables the sweep.
	// Default: ""
	SweepSchedule string `yaml:"sweep_schedule"`

	// SweepMaxAge is the age past which the sweep evicts an instance. It
	// must exceed the retention period.
	// Default: 24h
	SweepMaxAge time.Duration `yaml:"sweep_max_age"`

	// WatchConfig reloads the pattern and retention period when the
	// configuration file changes.
	// Default: false
	WatchConfig bool `yaml:"watch_config"`
}

// Retention returns the retention period as a duration.
func (c DispatchConfig) Retention() time.Duration {
	return time.Duration(c.RetentionPeriodMin) * time.Minute
}

// StoreConfig contains configuration for the definition store.
type StoreConfig struct {
	// Backend selects the store implementation.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite backend configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/dashgate.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`
}

// BuilderConfig contains limits for built tenant applications.
type BuilderConfig struct {
	// MaxBodyBytes bounds the request body passed to a tenant script.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CallTimeout bounds the wall clock time of one script call.
	// Default: 5s
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks credentials such as bearer tokens and password
	// query parameters in log entries.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "dashgate"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "dispatch"
	Subsystem string `yaml:"subsystem"`

	// BuildDurationBuckets defines histogram buckets for tenant build
	// duration (seconds).
	// Default: [0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5]
	BuildDurationBuckets []float64 `yaml:"build_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds span export calls.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name in traces.
	// Default: "dashgate"
	ServiceName string `yaml:"service_name"`
}
