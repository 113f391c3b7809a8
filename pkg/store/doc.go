// Package store defines the backing store of tenant application definitions.
//
// The dispatch core only ever reads from a store: it looks a definition up by
// tenant identifier when a tenant is not cached or its cached instance has
// expired. Writes happen out of band, through the Writer interface used by
// the administrative CLI.
//
// # Backends
//
//   - sqlite: a SQLite database managed with embedded goose migrations
//     (package store/sqlite)
//   - memory: a map guarded by a read-write mutex (package store/memory),
//     used for tests and ephemeral deployments
//
// # Records
//
// A Record carries the serialized application definition as an opaque blob
// together with its encoding. The blob is interpreted by package builder; the
// store never looks inside it.
package store
