package middleware

import (
	"net/http"
	"time"
)

// HTTPRecorder receives one observation per completed request.
// *metrics.Collector implements it.
type HTTPRecorder interface {
	RecordHTTPRequest(method string, code int, duration time.Duration, size int)
}

// MetricsMiddleware reports every request to rec.
func MetricsMiddleware(rec HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rec == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			rec.RecordHTTPRequest(r.Method, rw.statusCode, time.Since(start), rw.bytes)
		})
	}
}
