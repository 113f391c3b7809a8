package metrics

import (
	"time"

	"mercator-hq/dashgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// BuildMetrics tracks tenant application builds.
//
// Metrics:
//   - dashgate_dispatch_builds_total: builds by tenant and result
//   - dashgate_dispatch_build_duration_seconds: build duration histogram
type BuildMetrics struct {
	buildsTotal   *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
}

// NewBuildMetrics creates and registers build metrics with the provided registry.
func NewBuildMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BuildMetrics {
	bm := &BuildMetrics{
		buildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "builds_total",
				Help:      "Total number of tenant application builds",
			},
			[]string{"tenant", "result"},
		),

		buildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "build_duration_seconds",
				Help:      "Duration of tenant application builds in seconds",
				Buckets:   cfg.BuildDurationBuckets,
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		bm.buildsTotal,
		bm.buildDuration,
	)

	return bm
}

// RecordBuild records one build.
func (bm *BuildMetrics) RecordBuild(tenant, result string, duration time.Duration) {
	bm.buildsTotal.WithLabelValues(tenant, result).Inc()
	bm.buildDuration.WithLabelValues(result).Observe(duration.Seconds())
}
