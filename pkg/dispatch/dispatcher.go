package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/dashgate/pkg/telemetry/logging"
	"mercator-hq/dashgate/pkg/telemetry/tracing"
	"mercator-hq/dashgate/pkg/tenant"
)

// Config holds the dispatcher settings that can change at runtime.
type Config struct {
	// AllowedNamePattern is the regular expression tenant identifiers must
	// fully match. Empty means tenant.DefaultPattern.
	AllowedNamePattern string

	// Retention is how long a cached instance stays fresh. Zero means
	// DefaultRetention.
	Retention time.Duration
}

// Dispatcher is an http.Handler that routes each request to the tenant
// application named by its first path segment.
type Dispatcher struct {
	validator atomic.Pointer[tenant.Validator]
	cache     *InstanceCache
	api       http.Handler
	logger    *slog.Logger
}

// New creates a Dispatcher with its own instance cache. apiHandler serves
// requests whose first segment is "api"; nil answers them with 404.
func New(s DefinitionStore, b Builder, apiHandler http.Handler, cfg Config, opts ...CacheOption) (*Dispatcher, error) {
	v, err := tenant.NewValidator(cfg.AllowedNamePattern)
	if err != nil {
		return nil, err
	}
	if apiHandler == nil {
		apiHandler = http.NotFoundHandler()
	}

	opts = append([]CacheOption{WithRetention(cfg.Retention)}, opts...)
	cache := NewInstanceCache(s, b, opts...)

	d := &Dispatcher{
		cache:  cache,
		api:    apiHandler,
		logger: cache.logger.With("component", "dispatch"),
	}
	d.validator.Store(v)
	return d, nil
}

// Cache returns the dispatcher's instance cache.
func (d *Dispatcher) Cache() *InstanceCache {
	return d.cache
}

// Pattern returns the identifier pattern currently in effect.
func (d *Dispatcher) Pattern() string {
	return d.validator.Load().Pattern()
}

// SetAPIHandler replaces the handler serving the reserved "api" segment. It
// must be called before the dispatcher starts serving.
func (d *Dispatcher) SetAPIHandler(h http.Handler) {
	if h == nil {
		h = http.NotFoundHandler()
	}
	d.api = h
}

// Reconfigure swaps in a new identifier pattern and retention period. On
// error the current settings are kept.
func (d *Dispatcher) Reconfigure(cfg Config) error {
	v, err := tenant.NewValidator(cfg.AllowedNamePattern)
	if err != nil {
		return err
	}
	d.validator.Store(v)
	d.cache.SetRetention(cfg.Retention)

	d.logger.Info("dispatcher reconfigured",
		"pattern", v.Pattern(),
		"retention", d.cache.Retention(),
	)
	return nil
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := d.cache.tracer.Start(r.Context(), "dispatch.request")
	defer span.End()

	id := FirstSegment(r.URL.Path)
	if id == "" {
		d.fail(w, span, OutcomeNotFound, http.StatusNotFound)
		return
	}
	rootPage := IsRootPage(r.URL.Path)
	tracing.SetTenantAttributes(span, id, rootPage)

	if tenant.IsReserved(id) {
		d.logger.DebugContext(ctx, "dispatching to api service", "path", r.URL.Path)
		d.forward(logging.WithTenant(ctx, id), w, r, span, OutcomeAPI, d.api)
		return
	}

	if v := d.validator.Load(); !v.Valid(id) {
		d.logger.InfoContext(ctx, "tenant identifier does not match the allowed pattern",
			"tenant", id,
			"pattern", v.Pattern(),
		)
		d.fail(w, span, OutcomeBadRequest, http.StatusBadRequest)
		return
	}

	handler, err := d.cache.Resolve(ctx, id, rootPage)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrTenantNotFound) {
			d.fail(w, span, OutcomeNotFound, http.StatusNotFound)
			return
		}
		d.fail(w, span, OutcomeBuildError, http.StatusInternalServerError)
		return
	}

	d.forward(logging.WithTenant(ctx, id), w, r, span, OutcomeForwarded, handler)
}

// forward calls h with a shallow copy of r whose path has lost its first
// segment. r itself is left untouched.
func (d *Dispatcher) forward(ctx context.Context, w http.ResponseWriter, r *http.Request, span trace.Span, outcome string, h http.Handler) {
	d.cache.metrics.RecordDispatch(outcome)
	tracing.SetOutcome(span, outcome)

	fr := r.WithContext(ctx)
	fr.URL = stripURL(r.URL)
	h.ServeHTTP(w, fr)
}

func (d *Dispatcher) fail(w http.ResponseWriter, span trace.Span, outcome string, code int) {
	d.cache.metrics.RecordDispatch(outcome)
	tracing.SetOutcome(span, outcome)
	http.Error(w, http.StatusText(code), code)
}
