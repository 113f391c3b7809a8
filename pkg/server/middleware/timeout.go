package middleware

import (
	"net/http"
	"time"
)

// TimeoutMessage is the body sent when a request exceeds its deadline.
const TimeoutMessage = "Request timeout: the request took too long to complete\n"

// TimeoutMiddleware bounds each request to timeout. At the deadline the
// client receives 503 Service Unavailable and the request context is
// cancelled, which stops a running script call. A coalesced tenant build is
// shared with other requests and keeps running, bounded only by the
// builder's call timeout. A zero or negative timeout disables the limit.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.TimeoutHandler(next, timeout, TimeoutMessage)
	}
}
