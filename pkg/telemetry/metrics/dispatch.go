package metrics

import (
	"mercator-hq/dashgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics tracks routing decisions.
//
// Metrics:
//   - dashgate_dispatch_requests_total: requests by outcome
//   - dashgate_dispatch_store_errors_total: failed definition lookups
type DispatchMetrics struct {
	requestsTotal    *prometheus.CounterVec
	storeErrorsTotal prometheus.Counter
}

// NewDispatchMetrics creates and registers dispatch metrics with the provided registry.
func NewDispatchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DispatchMetrics {
	dm := &DispatchMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of dispatched requests by outcome",
			},
			[]string{"outcome"},
		),

		storeErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_errors_total",
				Help:      "Total number of failed definition store lookups",
			},
		),
	}

	registry.MustRegister(
		dm.requestsTotal,
		dm.storeErrorsTotal,
	)

	return dm
}

// RecordOutcome increments the counter for outcome.
func (dm *DispatchMetrics) RecordOutcome(outcome string) {
	dm.requestsTotal.WithLabelValues(outcome).Inc()
}

// RecordStoreError increments the store error counter.
func (dm *DispatchMetrics) RecordStoreError() {
	dm.storeErrorsTotal.Inc()
}
