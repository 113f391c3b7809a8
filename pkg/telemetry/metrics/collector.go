package metrics

import (
	"sync"
	"time"

	"mercator-hq/dashgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// OtherTenant replaces the tenant label once the cardinality limit is hit.
const OtherTenant = "other"

// DefaultMaxTenantLabels bounds the distinct tenant label values.
const DefaultMaxTenantLabels = 1000

// Collector is the main orchestrator for all Prometheus metrics in dashgate.
// It owns a private registry and implements dispatch.Metrics.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// HTTP request metrics
	requestMetrics *RequestMetrics

	// Dispatch outcome and store metrics
	dispatchMetrics *DispatchMetrics

	// Tenant build metrics
	buildMetrics *BuildMetrics

	// Instance cache metrics
	cacheMetrics *CacheMetrics

	// Cardinality tracking for the tenant label
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new private registry is used.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "dashgate",
//		Subsystem: "dispatch",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.BuildDurationBuckets) == 0 {
		cfg.BuildDurationBuckets = append([]float64(nil), config.DefaultBuildDurationBuckets...)
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(DefaultMaxTenantLabels),
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.dispatchMetrics = NewDispatchMetrics(cfg, registry)
	c.buildMetrics = NewBuildMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)

	return c
}

// RecordHTTPRequest records a completed HTTP request.
//
// Parameters:
//   - method: HTTP method
//   - code: response status code
//   - duration: time spent serving the request
//   - size: response body size in bytes
func (c *Collector) RecordHTTPRequest(method string, code int, duration time.Duration, size int) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordRequest(method, code, duration, size)
}

// RecordDispatch records how the dispatcher answered a request.
//
// Parameters:
//   - outcome: one of forwarded, api, bad_request, not_found, build_error
func (c *Collector) RecordDispatch(outcome string) {
	if !c.config.Enabled {
		return
	}

	c.dispatchMetrics.RecordOutcome(outcome)
}

// RecordStoreError records a failed definition store lookup.
func (c *Collector) RecordStoreError() {
	if !c.config.Enabled {
		return
	}

	c.dispatchMetrics.RecordStoreError()
}

// RecordBuild records the result of building a tenant application.
//
// Parameters:
//   - tenant: tenant identifier
//   - result: "success" or "error"
//   - duration: time spent fetching and building
func (c *Collector) RecordBuild(tenant, result string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	// Aggregate into "other" to prevent cardinality explosion
	if !c.cardinalityLimiter.Allow(tenant) {
		tenant = OtherTenant
	}

	c.buildMetrics.RecordBuild(tenant, result, duration)
}

// RecordCacheHit records a cache hit.
//
// Parameters:
//   - cacheName: Name of the cache (e.g., "instances")
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
//
// Parameters:
//   - cacheName: Name of the cache
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordMiss(cacheName)
}

// RecordCacheEviction records a cache eviction.
//
// Parameters:
//   - cacheName: Name of the cache
//   - reason: why the entry was removed ("expired", "sweep")
func (c *Collector) RecordCacheEviction(cacheName, reason string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordEviction(cacheName, reason)
}

// UpdateCacheSize updates the current size of a cache.
//
// Parameters:
//   - cacheName: Name of the cache
//   - size: Current number of entries in the cache
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.UpdateSize(cacheName, size)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this value would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
