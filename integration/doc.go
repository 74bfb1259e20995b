// Package integration provides comprehensive integration tests for the
// statecache module.
//
// This package contains end-to-end tests that verify the cache components
// work together correctly. Unlike unit tests that focus on individual
// packages, these integration tests validate complete workflows and
// interactions between the stream, codec, artifact, store, integrity and
// root packages.
//
// # Test Coverage
//
// The integration tests cover the following areas:
//
//  1. Cache Integration (cache_test.go)
//     - Cache construction from configuration files
//     - Snapshot lifecycle (Save → Load → Invalidate) across every store
//       backend (memory, filesystem, SQLite)
//     - Concurrent loads against one cache instance
//     - Health reporting through the facade
//     - Package import verification
//
//  2. Replay Integration (replay_test.go)
//     - Full round trips preserving owner, attributes, file order, and
//       transform steps
//     - Replay visitation modes, including the unsupported ones
//     - Shared identity across a state graph referencing one set twice
//     - Snapshots surviving repeated save/load generations
//     - Unknown wire tags invalidating the snapshot
//
//  3. Freshness Integration (freshness_test.go)
//     - Integrity manifests invalidating snapshots whose inputs changed
//     - Watcher-driven invalidation in a long-lived process
//     - Manifest entries stored and removed alongside their snapshots
//
// # Running the Tests
//
// To run all integration tests:
//
//	cd /path/to/statecache
//	go test ./integration/...
//
// To run with verbose output:
//
//	go test -v ./integration/...
//
// To run a specific test:
//
//	go test -v -run TestSnapshotLifecycle ./integration/
//
// # Test Organization
//
// Each test file focuses on a specific concern:
//
//   - cache_test.go: Facade construction, store backends, configuration
//   - replay_test.go: Codec semantics observed through the full stack
//   - freshness_test.go: Captured-input verification and invalidation
//
// # Mock Components
//
// The integration tests include small in-file implementations for testing:
//
//   - sliceSource: a Set source yielding a fixed artifact list
//   - collectingVisitor: a Visitor recording the artifacts it receives
//
// These stand in for the build tool's resolution and execution engines
// while verifying the cache conforms to the consumed interfaces.
//
// # Dependencies
//
// These tests use the testify package for assertions:
//
//	github.com/stretchr/testify
//
// All other dependencies are from the statecache module itself.
package integration
