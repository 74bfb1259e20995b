// Package statecache persists object graphs between tool invocations and
// replays them without re-running the work that produced them.
//
// The cache was built for resolution-style workloads: a session resolves
// external components, runs transform chains over their artifacts, and ends
// up with object graphs that are expensive to recompute but cheap to
// describe. statecache encodes those graphs into versioned binary
// snapshots, stores them under a caller-chosen key, and decodes them back
// in a later session as lightweight replay values.
//
// # Core Concepts
//
// The cache is organized around several key concepts:
//
//   - Snapshots: versioned binary encodings of object graphs, one per entry key
//   - Codecs: per-type encode/decode logic registered in a codec registry
//   - Shared identity: objects referenced from several places are written once
//     and come back as one object, preserving aliasing across the round trip
//   - Stores: pluggable snapshot backends (filesystem, memory, SQLite, Redis)
//   - Integrity: manifests that fingerprint the files a snapshot references
//
// # Architecture
//
// The module is layered from the wire format up:
//
//   - stream: versioned primitive writer/reader over a compact binary format
//   - codec: tagged codec dispatch and the shared-identity table
//   - artifact: transformed artifact sets, their replay form and their codec
//   - store: snapshot persistence backends
//   - integrity: input fingerprinting and change watching
//   - statecache: the cache facade tying the layers together
//
// # Getting Started
//
// Create a cache, save a value, and load it back in a later session:
//
//	import "github.com/buildweave/statecache"
//
//	cache, err := statecache.New(
//	    statecache.WithStore(fsStore),
//	    statecache.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
//	if err := cache.Save(ctx, key, artifactSet); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Later, usually in another process:
//	v, err := cache.Load(ctx, key)
//	if statecache.IsMiss(err) {
//	    // Recompute and save again.
//	}
//
// LoadOrCompute wraps that pattern:
//
//	v, err := cache.LoadOrCompute(ctx, key, func(ctx context.Context) (any, error) {
//	    return resolveArtifacts(ctx)
//	})
//
// # Error Handling
//
// The cache uses sentinel errors and structured error types. Every
// condition that invalidates a snapshot resolves to a miss, so callers
// recover from stale, corrupt and version-skewed entries the same way:
//
//	v, err := cache.Load(ctx, key)
//	if err != nil {
//	    if statecache.IsMiss(err) {
//	        // Recompute; the unusable entry has been deleted.
//	    }
//	    // Handle store or configuration errors
//	}
//
// # Observability
//
// The cache integrates OpenTelemetry for tracing and metrics:
//
//	cache, err := statecache.New(
//	    statecache.WithTracer(tracerProvider.Tracer("statecache")),
//	    statecache.WithMeterProvider(meterProvider),
//	)
//
// Spans wrap save and load operations; counters and histograms record
// hits, misses, snapshot sizes and durations.
//
// # Thread Safety
//
// All Cache methods are safe for concurrent use. A single save or load
// session is sequential: values decode in exactly the order they were
// encoded.
package statecache
