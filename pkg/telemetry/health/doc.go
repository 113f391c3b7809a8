// Package health provides liveness, readiness and version endpoints.
//
// The API service mounts them under /api:
//
//   - /api/health: liveness, always 200 while the process runs
//   - /api/ready: readiness, runs the registered component checks
//   - /api/version: build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("store", func(ctx context.Context) error {
//	    return db.Ping(ctx)
//	})
package health
