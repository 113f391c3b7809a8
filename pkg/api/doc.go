// Package api implements the fixed service reached through the reserved
// "api" tenant segment.
//
// The dispatcher strips "/api" before forwarding, so routes are registered
// without it:
//
//	GET /health             liveness
//	GET /ready              readiness, 503 when the store is unreachable
//	GET /version            build information
//	GET /apps               stored tenant identifiers
//	GET /apps/{id}          record metadata
//	GET /apps/{id}/layout   layout of the stored definition
//	GET /cache              cached instances and the retention period
//	GET /metrics            Prometheus exposition
//
// The service never writes to the store. Definitions are managed with the
// "dashgate apps" commands.
package api
