// Package store persists encoded snapshot streams under fingerprint keys.
//
// A Store is a flat keyed blob space: the engine hands it the raw bytes of
// one snapshot stream per entry key and reads them back verbatim. Stores
// never look inside the bytes; versioning, integrity, and invalidation
// decisions belong to the engine.
//
// Four backends cover the usual deployments:
//
//   - FSStore: sharded files under a local directory, with atomic
//     temp-and-rename writes. The default for a single machine.
//
//   - MemoryStore: a process-local map with copy-in/copy-out semantics.
//     For tests and short-lived tools.
//
//   - RedisStore: snapshots in Redis with optional TTL expiry, for sharing
//     a snapshot cache across machines (CI fleets, ephemeral builders).
//
//   - SQLiteStore: one WAL-mode database file, when a single relocatable
//     artifact beats a directory tree.
//
// All backends treat Delete of a missing entry as a no-op and report a
// missing entry from Get as ErrEntryNotFound:
//
//	data, err := s.Get(ctx, key)
//	if errors.Is(err, store.ErrEntryNotFound) {
//		// miss: rebuild and Put
//	}
package store
