// Package server provides the HTTP server in front of the tenant dispatcher.
//
// The server owns the listener and the process lifecycle: it starts serving,
// waits for a cancelled context, SIGINT/SIGTERM or an explicit Stop, then
// drains in-flight requests within the configured shutdown timeout.
//
// # Middleware
//
// Every request passes through, outermost first:
//
//  1. Recovery: turns handler panics into a plain 500
//  2. RequestID: assigns X-Request-ID and stores it for logging
//  3. Tracing: extracts W3C trace context and starts a server span
//  4. Logging: one access log line per request
//  5. Metrics: http_requests_total and friends
//  6. Timeout: cancels the request context after request_timeout
//
// # Basic Usage
//
//	d := dispatch.New(...)
//	srv := server.NewServer(&cfg.Server, d,
//	    server.WithLogger(logger),
//	    server.WithMetrics(collector),
//	)
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
