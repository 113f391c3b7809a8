// Dashgate serves many small dashboard applications from one process.
//
// The first path segment of each request names a tenant. Dashgate builds
// the tenant's application from the definition stored under that name,
// caches it, and forwards the request with the segment stripped. The
// reserved segment "api" reaches the built-in read-only API.
//
// Usage:
//
//	# Start the server with defaults and DASHGATE_* environment overrides
//	dashgate run
//
//	# Start with a configuration file
//	dashgate run --config /etc/dashgate/config.yaml
//
//	# Store a definition under tenant "demo1"
//	dashgate apps put demo1 --file demo1.yaml --compress
//
//	# Check a definition without storing it
//	dashgate validate demo1.yaml
package main

import "os"

func main() {
	os.Exit(Execute())
}
