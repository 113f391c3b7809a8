// Package metrics provides Prometheus metrics collection for dashgate.
//
// # Metrics Categories
//
//   - Request Metrics: HTTP request count, duration, and response size
//   - Dispatch Metrics: routing outcome per request and store lookup failures
//   - Build Metrics: tenant application builds by result and their duration
//   - Cache Metrics: instance cache hits, misses, size, and evictions
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	cache := dispatch.NewInstanceCache(store, builder,
//		dispatch.WithMetrics(collector),
//	)
//
//	mux.Handle("/metrics", collector.Handler())
//
// # Cardinality Management
//
// The tenant label on builds is capped at DefaultMaxTenantLabels distinct
// values. Builds of further tenants are counted under "other".
//
// # Prometheus Endpoint
//
//	# HELP dashgate_dispatch_requests_total Total number of dispatched requests by outcome
//	# TYPE dashgate_dispatch_requests_total counter
//	dashgate_dispatch_requests_total{outcome="forwarded"} 1234
package metrics
