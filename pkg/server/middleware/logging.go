package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// LoggingMiddleware logs every request on completion with its method, path,
// status, latency and response size. Request scoped fields such as
// request_id and tenant are added by the logging handler from the context,
// so this middleware must run inside RequestIDMiddleware.
//
// Log format (JSON):
//
//	{
//	  "time": "2026-01-16T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "GET",
//	  "path": "/demo1/",
//	  "status": 200,
//	  "latency_ms": 12,
//	  "bytes": 5120,
//	  "request_id": "1f0c6f0e-3c7a-4b8e-9d0a-1a2b3c4d5e6f"
//	}
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			logger.DebugContext(r.Context(), "request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)

			next.ServeHTTP(rw, r)

			logLevel := slog.LevelInfo
			if rw.statusCode >= 500 {
				logLevel = slog.LevelError
			} else if rw.statusCode >= 400 {
				logLevel = slog.LevelWarn
			}

			logger.Log(r.Context(), logLevel, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", rw.statusCode,
				"latency_ms", time.Since(start).Milliseconds(),
				"bytes", rw.bytes,
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
