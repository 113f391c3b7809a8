// Package tracing provides OpenTelemetry distributed tracing for dashgate.
//
// New installs an OTLP/gRPC exporter when tracing is enabled and a noop
// tracer otherwise. HTTPMiddleware extracts W3C trace context
// (traceparent, tracestate) from incoming requests and wraps each request
// in a server span; the dispatcher adds dispatch.request and dispatch.build
// spans below it.
//
// # Sampling Strategies
//
//   - always: Sample all traces
//   - never: Sample no traces
//   - ratio: Sample a fraction of traces by trace ID
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	handler = tracing.HTTPMiddleware(handler)
package tracing
