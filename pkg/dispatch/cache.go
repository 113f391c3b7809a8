package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"mercator-hq/dashgate/pkg/builder"
	"mercator-hq/dashgate/pkg/store"
	"mercator-hq/dashgate/pkg/telemetry/tracing"
	"mercator-hq/dashgate/pkg/tenant"
)

// DefaultRetention is how long an instance stays fresh when no retention is
// configured.
const DefaultRetention = 60 * time.Minute

// DefinitionStore looks definitions up by tenant identifier.
type DefinitionStore interface {
	// FindDefinition returns store.ErrNotFound when no record exists.
	FindDefinition(ctx context.Context, id string) (*store.Record, error)
}

// Builder turns a decoded definition into a handler.
type Builder interface {
	Build(ctx context.Context, def *builder.Definition, cfg builder.ServerConfig) (http.Handler, error)
}

// Instance is a cached, built tenant handler. Instances are replaced
// wholesale and never mutated after installation.
type Instance struct {
	Handler     http.Handler
	InstalledAt time.Time
}

// InstanceInfo describes a cached instance.
type InstanceInfo struct {
	ID          string    `json:"id"`
	InstalledAt time.Time `json:"installed_at"`
}

// CacheOption configures an InstanceCache.
type CacheOption func(*InstanceCache)

// WithRetention sets the retention period. Non-positive values are ignored.
func WithRetention(d time.Duration) CacheOption {
	return func(c *InstanceCache) {
		if d > 0 {
			c.retention = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *InstanceCache) {
		c.now = now
	}
}

// WithCoalescing controls whether concurrent misses for one tenant share a
// single build.
func WithCoalescing(enabled bool) CacheOption {
	return func(c *InstanceCache) {
		c.coalesce = enabled
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) CacheOption {
	return func(c *InstanceCache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *InstanceCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// InstanceCache maps tenant identifiers to built handlers.
type InstanceCache struct {
	store   DefinitionStore
	builder Builder

	mu        sync.Mutex
	instances map[string]*Instance
	retention time.Duration

	coalesce bool
	group    singleflight.Group

	now     func() time.Time
	metrics Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewInstanceCache creates an empty cache that loads definitions from s and
// builds them with b.
func NewInstanceCache(s DefinitionStore, b Builder, opts ...CacheOption) *InstanceCache {
	c := &InstanceCache{
		store:     s,
		builder:   b,
		instances: make(map[string]*Instance),
		retention: DefaultRetention,
		coalesce:  true,
		now:       time.Now,
		metrics:   nopMetrics{},
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracing.InstrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "dispatch.cache")
	return c
}

// Resolve returns the handler for tenant id, building it from the store when
// it is not cached. When rootPage is set, a cached instance older than the
// retention period is discarded first.
//
// Resolve returns an error wrapping ErrTenantNotFound when the store has no
// definition for id or could not be read, and one wrapping ErrBuildFailed
// when the definition could not be built. Failures are never cached. The
// reserved "api" identifier is never looked up or cached.
func (c *InstanceCache) Resolve(ctx context.Context, id string, rootPage bool) (http.Handler, error) {
	if tenant.IsReserved(id) {
		return nil, fmt.Errorf("%w: %s is reserved", ErrTenantNotFound, id)
	}

	span := trace.SpanFromContext(ctx)
	if inst := c.lookup(ctx, id, rootPage); inst != nil {
		c.metrics.RecordCacheHit(cacheName)
		tracing.SetCacheAttributes(span, true)
		return inst.Handler, nil
	}
	c.metrics.RecordCacheMiss(cacheName)
	tracing.SetCacheAttributes(span, false)

	if !c.coalesce {
		return c.load(ctx, id)
	}

	// The shared build must not fail because one waiting caller went away.
	buildCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		return c.load(buildCtx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(http.Handler), nil
}

// lookup returns the live instance for id, discarding it first when rootPage
// is set and it has outlived the retention period.
func (c *InstanceCache) lookup(ctx context.Context, id string, rootPage bool) *Instance {
	c.mu.Lock()
	defer c.mu.Unlock()

	inst, ok := c.instances[id]
	if !ok {
		return nil
	}
	if rootPage && c.now().Sub(inst.InstalledAt) > c.retention {
		delete(c.instances, id)
		c.metrics.RecordCacheEviction(cacheName, EvictExpired)
		c.metrics.UpdateCacheSize(cacheName, len(c.instances))
		c.logger.InfoContext(ctx, "tenant instance expired", "tenant", id)
		return nil
	}
	return inst
}

// load fetches, builds and installs the instance for id.
func (c *InstanceCache) load(ctx context.Context, id string) (http.Handler, error) {
	ctx, span := c.tracer.Start(ctx, "dispatch.build", trace.WithAttributes(attribute.String(tracing.AttrTenant, id)))
	defer span.End()

	rec, err := c.fetch(ctx, id)
	if err != nil {
		tracing.SetErrorAttributes(span, err, "not_found")
		return nil, err
	}

	start := time.Now()
	handler, err := c.build(ctx, id, rec)
	duration := time.Since(start)
	if err != nil {
		c.metrics.RecordBuild(id, "error", duration)
		c.logger.ErrorContext(ctx, "tenant build failed", "tenant", id, "error", err)
		tracing.SetErrorAttributes(span, err, "build")
		return nil, fmt.Errorf("%w: %s: %v", ErrBuildFailed, id, err)
	}
	c.metrics.RecordBuild(id, "success", duration)

	c.mu.Lock()
	c.instances[id] = &Instance{Handler: handler, InstalledAt: c.now()}
	size := len(c.instances)
	c.mu.Unlock()
	c.metrics.UpdateCacheSize(cacheName, size)

	c.logger.InfoContext(ctx, "tenant instance loaded from store",
		"tenant", id,
		"build_duration", duration,
	)
	return handler, nil
}

// fetch reads the record for id. Missing records, records without a
// definition and store failures all report ErrTenantNotFound.
func (c *InstanceCache) fetch(ctx context.Context, id string) (*store.Record, error) {
	rec, err := c.store.FindDefinition(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.metrics.RecordStoreError()
			c.logger.WarnContext(ctx, "definition store lookup failed", "tenant", id, "error", err)
		}
		return nil, fmt.Errorf("%w: %s", ErrTenantNotFound, id)
	}
	if !rec.HasDefinition() {
		return nil, fmt.Errorf("%w: %s", ErrTenantNotFound, id)
	}
	return rec, nil
}

func (c *InstanceCache) build(ctx context.Context, id string, rec *store.Record) (http.Handler, error) {
	def, err := builder.Decode(rec)
	if err != nil {
		return nil, err
	}
	handler, err := c.builder.Build(ctx, def, builder.NewServerConfig(id))
	if err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, errors.New("builder returned a nil handler")
	}
	return handler, nil
}

// SetRetention changes the retention period for subsequent expiry checks.
// Non-positive values are ignored.
func (c *InstanceCache) SetRetention(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.retention = d
	c.mu.Unlock()
}

// Retention returns the current retention period.
func (c *InstanceCache) Retention() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retention
}

// Len returns the number of cached instances.
func (c *InstanceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.instances)
}

// Get returns the cached instance for id without checking expiry.
func (c *InstanceCache) Get(id string) (Instance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inst, ok := c.instances[id]
	if !ok {
		return Instance{}, false
	}
	return *inst, true
}

// Snapshot lists the cached instances sorted by identifier.
func (c *InstanceCache) Snapshot() []InstanceInfo {
	c.mu.Lock()
	infos := make([]InstanceInfo, 0, len(c.instances))
	for id, inst := range c.instances {
		infos = append(infos, InstanceInfo{ID: id, InstalledAt: inst.InstalledAt})
	}
	c.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Sweep evicts every instance installed more than maxAge ago and returns the
// number evicted.
func (c *InstanceCache) Sweep(maxAge time.Duration) int {
	c.mu.Lock()
	now := c.now()
	evicted := 0
	for id, inst := range c.instances {
		if now.Sub(inst.InstalledAt) > maxAge {
			delete(c.instances, id)
			evicted++
		}
	}
	size := len(c.instances)
	c.mu.Unlock()

	for i := 0; i < evicted; i++ {
		c.metrics.RecordCacheEviction(cacheName, EvictSweep)
	}
	if evicted > 0 {
		c.metrics.UpdateCacheSize(cacheName, size)
	}
	return evicted
}
