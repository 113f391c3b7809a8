package builder

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Config controls the resources a built application may use.
type Config struct {
	// MaxBodyBytes bounds the request body handed to serve.
	// Default: 1 MiB
	MaxBodyBytes int64

	// CallTimeout bounds the wall clock time of a single script call.
	// Default: 5 seconds
	CallTimeout time.Duration
}

// DefaultConfig returns the default builder configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes: 1 << 20,
		CallTimeout:  5 * time.Second,
	}
}

// Builder compiles definitions into Apps.
type Builder struct {
	config Config
	logger *slog.Logger
}

// New creates a Builder. A nil logger uses slog.Default().
func New(config Config, logger *slog.Logger) *Builder {
	defaults := DefaultConfig()
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = defaults.CallTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		config: config,
		logger: logger.With("component", "builder"),
	}
}

// Build compiles def into a handler bound to cfg. The same definition and
// configuration always produce an equivalent handler.
func (b *Builder) Build(ctx context.Context, def *Definition, cfg ServerConfig) (http.Handler, error) {
	return b.BuildApp(ctx, def, cfg)
}

// BuildApp is Build returning the concrete *App.
func (b *Builder) BuildApp(ctx context.Context, def *Definition, cfg ServerConfig) (*App, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if def == nil {
		return nil, ErrInvalidDefinition
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if cfg.PathPrefix == "" {
		cfg = NewServerConfig(cfg.TenantID)
	}

	return newApp(ctx, def, cfg, b.config, b.logger.With("tenant", cfg.TenantID))
}
