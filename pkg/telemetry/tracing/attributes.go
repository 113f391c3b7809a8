package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Custom attribute keys use the "dashgate.*" namespace. HTTP attributes use
// the OpenTelemetry http.* names.
const (
	// Request attributes
	AttrRequestID      = "dashgate.request_id"
	AttrHTTPMethod     = "http.method"
	AttrHTTPTarget     = "http.target"
	AttrHTTPStatusCode = "http.status_code"

	// Dispatch attributes
	AttrTenant   = "dashgate.tenant"
	AttrRootPage = "dashgate.root_page"
	AttrOutcome  = "dashgate.outcome"

	// Cache attributes
	AttrCacheHit = "dashgate.cache.hit"

	// Error attributes
	AttrErrorType    = "dashgate.error.type"
	AttrErrorMessage = "error.message"
)

// SetTenantAttributes records which tenant a request targets.
func SetTenantAttributes(span trace.Span, tenant string, rootPage bool) {
	span.SetAttributes(
		attribute.String(AttrTenant, tenant),
		attribute.Bool(AttrRootPage, rootPage),
	)
}

// SetOutcome records how the dispatcher answered.
func SetOutcome(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String(AttrOutcome, outcome))
}

// SetCacheAttributes records whether a cache lookup hit.
func SetCacheAttributes(span trace.Span, hit bool) {
	span.SetAttributes(attribute.Bool(AttrCacheHit, hit))
}

// SetErrorAttributes marks the span as failed.
//
// Example:
//
//	SetErrorAttributes(span, err, "build")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds a named event with attributes to the span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
