package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/dashgate/pkg/config"
)

const remoteTraceParent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

// installRecorder makes the global provider record spans in memory for the
// duration of the test.
func installRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})
	return exporter
}

func TestNew_Disabled(t *testing.T) {
	tr, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.Enabled() {
		t.Error("Enabled() = true for disabled config")
	}

	_, span := tr.Start(context.Background(), "op")
	if span.IsRecording() {
		t.Error("disabled tracer produced a recording span")
	}
	span.End()

	if err := tr.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) should fail")
	}

	_, err := New(&config.TracingConfig{Enabled: true, Endpoint: "localhost:4317", Sampler: "bogus"})
	if err == nil {
		t.Error("New() with unknown sampler should fail")
	}
}

func TestTraceID(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID(empty) = %q, want empty", got)
	}

	otel.SetTextMapPropagator(propagation.TraceContext{})
	h := http.Header{}
	h.Set("traceparent", remoteTraceParent)
	ctx := Extract(context.Background(), h)

	if got := TraceID(ctx); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("TraceID() = %q", got)
	}

	out := http.Header{}
	Inject(ctx, out)
	if out.Get("traceparent") == "" {
		t.Error("Inject() did not write traceparent")
	}
}

func TestHTTPMiddleware(t *testing.T) {
	exporter := installRecorder(t)

	var innerTraceID string
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		innerTraceID = TraceID(r.Context())
		w.WriteHeader(http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodGet, "/demo1/page", nil)
	req.Header.Set("traceparent", remoteTraceParent)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if got := w.Header().Get(TraceIDHeader); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("X-Trace-ID = %q, want the caller's trace ID", got)
	}
	if innerTraceID != w.Header().Get(TraceIDHeader) {
		t.Errorf("handler saw trace %q, header has %q", innerTraceID, w.Header().Get(TraceIDHeader))
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Name != "HTTP GET" {
		t.Errorf("span name = %q", span.Name)
	}
	if span.SpanKind != trace.SpanKindServer {
		t.Errorf("span kind = %v", span.SpanKind)
	}
	if span.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error for 502", span.Status.Code)
	}
	if !hasAttr(span.Attributes, attribute.Int(AttrHTTPStatusCode, http.StatusBadGateway)) {
		t.Errorf("attributes %v missing status code", span.Attributes)
	}
	if !hasAttr(span.Attributes, attribute.String(AttrHTTPTarget, "/demo1/page")) {
		t.Errorf("attributes %v missing target", span.Attributes)
	}
}

func TestSetErrorAttributes(t *testing.T) {
	exporter := installRecorder(t)

	_, span := otel.Tracer(InstrumentationName).Start(context.Background(), "dispatch.build")
	SetTenantAttributes(span, "demo1", true)
	SetErrorAttributes(span, context.DeadlineExceeded, "build")
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	got := spans[0]
	if got.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status.Code)
	}
	if !hasAttr(got.Attributes, attribute.String(AttrTenant, "demo1")) {
		t.Errorf("attributes %v missing tenant", got.Attributes)
	}
	if !hasAttr(got.Attributes, attribute.String(AttrErrorType, "build")) {
		t.Errorf("attributes %v missing error type", got.Attributes)
	}
	if len(got.Events) == 0 {
		t.Error("error was not recorded as an event")
	}
}

func hasAttr(attrs []attribute.KeyValue, want attribute.KeyValue) bool {
	for _, kv := range attrs {
		if kv.Key == want.Key && kv.Value == want.Value {
			return true
		}
	}
	return false
}
