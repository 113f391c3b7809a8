// Package telemetry groups dashgate's observability packages.
//
//   - logging: slog handlers with request context fields and secret redaction
//   - metrics: Prometheus collector for dispatch, cache, build and HTTP metrics
//   - tracing: OpenTelemetry tracer setup and W3C trace context middleware
//   - health: liveness, readiness and version endpoints
package telemetry
