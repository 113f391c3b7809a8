// Package dispatch routes requests to tenant applications selected by the
// first path segment.
//
// # Request flow
//
//	/demo1/page?x=1
//	  │
//	  ├─ first segment "demo1"
//	  ├─ "api"? → fixed API service
//	  ├─ valid identifier? otherwise 400
//	  ├─ InstanceCache.Resolve("demo1", rootPage=false)
//	  │    ├─ cached → handler
//	  │    └─ missing → store lookup → build → install
//	  └─ forward with path "/page"
//
// # Expiry
//
// Cached instances carry the time they were installed. Expiry is only
// checked when the request targets an application's root page (see
// IsRootPage), so an application in active use by deep links keeps its
// instance until someone loads its root page after the retention period.
// An optional Sweeper evicts instances older than a separate maximum age
// on a cron schedule.
//
// # Concurrency
//
// A single mutex guards the cache map, and the lookup, expiry check and
// delete happen under it as one step. Builds run outside the lock.
// Concurrent misses for the same tenant share a single build when
// coalescing is enabled; otherwise each miss builds and the last install
// wins.
package dispatch
