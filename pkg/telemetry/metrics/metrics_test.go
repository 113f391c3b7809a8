package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/dashgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:              true,
		Namespace:            "test",
		Subsystem:            "dispatch",
		BuildDurationBuckets: []float64{0.01, 0.1, 1.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_NewCollectorDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := NewCollector(cfg, nil)

	if collector.Registry() == nil {
		t.Fatal("expected a private registry")
	}
	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("expected namespace %q, got %q", config.DefaultMetricsNamespace, cfg.Namespace)
	}
	if len(cfg.BuildDurationBuckets) == 0 {
		t.Error("expected default build buckets")
	}
}

func TestCollector_RecordDispatch(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	outcomes := []string{"forwarded", "forwarded", "api", "bad_request", "not_found", "build_error"}
	for _, o := range outcomes {
		collector.RecordDispatch(o)
	}

	tests := []struct {
		outcome string
		want    float64
	}{
		{"forwarded", 2},
		{"api", 1},
		{"bad_request", 1},
		{"not_found", 1},
		{"build_error", 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(collector.dispatchMetrics.requestsTotal.WithLabelValues(tt.outcome))
		if got != tt.want {
			t.Errorf("requests_total{outcome=%q} = %v, want %v", tt.outcome, got, tt.want)
		}
	}
}

func TestCollector_RecordStoreError(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordStoreError()
	collector.RecordStoreError()

	if got := testutil.ToFloat64(collector.dispatchMetrics.storeErrorsTotal); got != 2 {
		t.Errorf("store_errors_total = %v, want 2", got)
	}
}

func TestCollector_RecordBuild(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordBuild("demo1", "success", 20*time.Millisecond)
	collector.RecordBuild("demo1", "error", 5*time.Millisecond)
	collector.RecordBuild("demo2", "success", 200*time.Millisecond)

	if got := testutil.ToFloat64(collector.buildMetrics.buildsTotal.WithLabelValues("demo1", "success")); got != 1 {
		t.Errorf("builds_total{demo1,success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.buildMetrics.buildsTotal.WithLabelValues("demo1", "error")); got != 1 {
		t.Errorf("builds_total{demo1,error} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(collector.buildMetrics.buildDuration); got != 2 {
		t.Errorf("expected 2 duration series, got %d", got)
	}
}

func TestCollector_RecordBuildCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.cardinalityLimiter = NewCardinalityLimiter(2)

	collector.RecordBuild("a", "success", time.Millisecond)
	collector.RecordBuild("b", "success", time.Millisecond)
	collector.RecordBuild("c", "success", time.Millisecond)
	collector.RecordBuild("d", "success", time.Millisecond)

	if got := testutil.ToFloat64(collector.buildMetrics.buildsTotal.WithLabelValues(OtherTenant, "success")); got != 2 {
		t.Errorf("builds_total{other} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.buildMetrics.buildsTotal.WithLabelValues("a", "success")); got != 1 {
		t.Errorf("builds_total{a} = %v, want 1", got)
	}
}

func TestCollector_CacheMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordCacheHit("instances")
	collector.RecordCacheHit("instances")
	collector.RecordCacheMiss("instances")
	collector.RecordCacheEviction("instances", "expired")
	collector.RecordCacheEviction("instances", "sweep")
	collector.RecordCacheEviction("instances", "sweep")
	collector.UpdateCacheSize("instances", 7)

	cm := collector.cacheMetrics
	if got := testutil.ToFloat64(cm.hitsTotal.WithLabelValues("instances")); got != 2 {
		t.Errorf("cache_hits_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(cm.missesTotal.WithLabelValues("instances")); got != 1 {
		t.Errorf("cache_misses_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(cm.evictionsTotal.WithLabelValues("instances", "sweep")); got != 2 {
		t.Errorf("cache_evictions_total{sweep} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(cm.entries.WithLabelValues("instances")); got != 7 {
		t.Errorf("cache_entries = %v, want 7", got)
	}
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordHTTPRequest("GET", 200, 10*time.Millisecond, 512)
	collector.RecordHTTPRequest("GET", 404, time.Millisecond, 0)

	rm := collector.requestMetrics
	if got := testutil.ToFloat64(rm.requestsTotal.WithLabelValues("GET", "200")); got != 1 {
		t.Errorf("http_requests_total{GET,200} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.requestsTotal.WithLabelValues("GET", "404")); got != 1 {
		t.Errorf("http_requests_total{GET,404} = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RecordDispatch("forwarded")
	collector.RecordCacheHit("instances")
	collector.RecordBuild("demo1", "success", time.Millisecond)

	if got := testutil.CollectAndCount(collector.dispatchMetrics.requestsTotal); got != 0 {
		t.Errorf("expected no dispatch series when disabled, got %d", got)
	}
	if got := testutil.CollectAndCount(collector.buildMetrics.buildsTotal); got != 0 {
		t.Errorf("expected no build series when disabled, got %d", got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("expected first two label sets to be allowed")
	}
	if cl.Allow("c") {
		t.Error("expected third label set to be rejected")
	}
	if !cl.Allow("a") {
		t.Error("expected existing label set to be allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordDispatch("forwarded")

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `test_dispatch_requests_total{outcome="forwarded"} 1`) {
		t.Errorf("expected dispatch counter in exposition, got:\n%s", rec.Body.String())
	}
}
