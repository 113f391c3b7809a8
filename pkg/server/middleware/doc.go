// Package middleware provides the HTTP middleware wrapped around the
// dispatcher: panic recovery, request IDs, access logging, request metrics
// and per-request timeouts.
//
// The server composes them as
//
//	Recovery(RequestID(Tracing(Logging(Metrics(Timeout(dispatcher))))))
//
// so that access logs carry the request and trace IDs.
package middleware
