package dispatch

import "time"

// Outcomes recorded for each dispatched request.
const (
	OutcomeForwarded  = "forwarded"
	OutcomeAPI        = "api"
	OutcomeBadRequest = "bad_request"
	OutcomeNotFound   = "not_found"
	OutcomeBuildError = "build_error"
)

// Eviction reasons.
const (
	EvictExpired = "expired"
	EvictSweep   = "sweep"
)

// cacheName labels the instance cache in cache metrics.
const cacheName = "instances"

// Metrics receives dispatch and cache events. *metrics.Collector implements
// it.
type Metrics interface {
	RecordDispatch(outcome string)
	RecordCacheHit(cacheName string)
	RecordCacheMiss(cacheName string)
	RecordCacheEviction(cacheName, reason string)
	UpdateCacheSize(cacheName string, size int)
	RecordBuild(tenant, result string, duration time.Duration)
	RecordStoreError()
}

type nopMetrics struct{}

func (nopMetrics) RecordDispatch(string) {}
func (nopMetrics) RecordCacheHit(string) {}
func (nopMetrics) RecordCacheMiss(string) {}
func (nopMetrics) RecordCacheEviction(string, string) {}
func (nopMetrics) UpdateCacheSize(string, int) {}
func (nopMetrics) RecordBuild(string, string, time.Duration) {}
func (nopMetrics) RecordStoreError() {}
