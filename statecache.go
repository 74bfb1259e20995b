package statecache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/buildweave/statecache/artifact"
	"github.com/buildweave/statecache/codec"
	"github.com/buildweave/statecache/config"
	"github.com/buildweave/statecache/health"
	"github.com/buildweave/statecache/integrity"
	"github.com/buildweave/statecache/store"
	"github.com/buildweave/statecache/stream"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// manifestSuffix names the companion entry holding a snapshot's input manifest.
const manifestSuffix = ".manifest"

// Cache persists object graphs as versioned binary snapshots and replays
// them in later sessions. Values are encoded through a codec registry with
// shared-identity tracking, so objects referenced from several places come
// back as one object. All methods are safe for concurrent use.
type Cache struct {
	id        string
	store     store.Store
	registry  *codec.Registry
	logger    *slog.Logger
	tracer    trace.Tracer
	meter     metric.Meter
	metrics   *cacheMetrics
	integrity bool

	mu     sync.Mutex
	closed bool
}

// New creates a cache instance with the provided options.
//
// Example:
//
//	cache, err := statecache.New(
//	    statecache.WithStore(fsStore),
//	    statecache.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
func New(opts ...Option) (*Cache, error) {
	cfg := &cacheConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Create default logger if not provided
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	// Snapshots live in memory unless a persistent store is configured
	if cfg.store == nil {
		cfg.store = store.NewMemoryStore()
	}

	if cfg.registry == nil {
		reg := codec.NewRegistry()
		if err := artifact.RegisterSetCodec(reg); err != nil {
			return nil, NewConfigurationError("New", err)
		}
		cfg.registry = reg
	}

	c := &Cache{
		id:        uuid.NewString(),
		store:     cfg.store,
		registry:  cfg.registry,
		logger:    cfg.logger,
		tracer:    cfg.tracer,
		integrity: cfg.integrity,
	}

	if cfg.meterProvider != nil {
		c.meter = cfg.meterProvider.Meter("github.com/buildweave/statecache")

		metrics, err := c.initMetrics()
		if err != nil {
			// Metrics are optional; the cache works without them.
			c.logger.Warn("failed to initialize metrics", "error", err)
		} else {
			c.metrics = metrics
		}
	}

	c.logger.Debug("cache ready",
		"cache_id", c.id,
		"integrity", c.integrity)

	return c, nil
}

// NewFromConfig creates a cache from a statecache.yaml configuration.
// The configuration selects and connects the store backend; options are
// applied afterwards and take precedence over configured values.
//
// Example:
//
//	cfg, err := config.LoadFromCurrentDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache, err := statecache.NewFromConfig(ctx, cfg, statecache.WithLogger(logger))
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Cache, error) {
	if cfg == nil {
		return nil, NewConfigurationError("NewFromConfig", ErrInvalidConfig)
	}

	s, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithStore(s),
		WithIntegrityChecks(cfg.Integrity.IsEnabled()),
	}
	return New(append(base, opts...)...)
}

// openStore connects the store backend a configuration selects.
func openStore(ctx context.Context, sc *config.StoreConfig) (store.Store, error) {
	const op = "NewFromConfig"

	switch backend := sc.GetBackend(); backend {
	case "fs":
		s, err := store.NewFSStore(sc.GetDir())
		if err != nil {
			return nil, NewConfigurationError(op, err)
		}
		return s, nil

	case "memory":
		return store.NewMemoryStore(), nil

	case "sqlite":
		s, err := store.NewSQLiteStore(ctx, sc.GetPath())
		if err != nil {
			return nil, NewConfigurationError(op, err)
		}
		return s, nil

	case "redis":
		var rc *config.RedisConfig
		if sc != nil {
			rc = sc.Redis
		}
		s, err := store.NewRedisStore(store.RedisOptions{
			URL:            rc.GetURL(),
			KeyPrefix:      rc.GetKeyPrefix(),
			TTL:            rc.GetTTL(),
			ConnectTimeout: rc.GetConnectTimeout(),
		})
		if err != nil {
			return nil, NewConfigurationError(op, err)
		}
		return s, nil

	default:
		return nil, NewConfigurationError(op,
			fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, backend))
	}
}

// Registry returns the codec registry backing this cache. Callers register
// codecs for their own types here before saving values of those types.
func (c *Cache) Registry() *codec.Registry {
	return c.registry
}

// Save encodes value into a versioned snapshot and stores it under key.
// The value's declared type must have a registered codec; otherwise Save
// fails with KindUnsupported before touching the store.
//
// When integrity checking is enabled and the value is an artifact set, a
// manifest fingerprinting the set's files is stored alongside the snapshot.
func (c *Cache) Save(ctx context.Context, key string, value any) error {
	start := time.Now()
	size, err := c.save(ctx, key, value)
	c.recordSave(ctx, key, size, start, err)

	if err != nil {
		c.logger.Error("failed to save snapshot",
			"key", key,
			"error", err)
		return err
	}

	c.logger.Debug("snapshot written",
		"key", key,
		"bytes", size)
	return nil
}

func (c *Cache) save(ctx context.Context, key string, value any) (int, error) {
	const op = "Cache.Save"
	if err := c.guard(op); err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	enc := codec.NewEncoder(w, c.registry)

	if err := enc.EncodeValue(value); err != nil {
		if errors.Is(err, codec.ErrNoCodec) {
			return 0, NewUnsupportedError(op, err)
		}
		return 0, NewExecutionError(op, err)
	}
	if err := w.Flush(); err != nil {
		return 0, NewInternalError(op, err)
	}

	data := buf.Bytes()
	if err := c.store.Put(ctx, key, data); err != nil {
		return 0, NewStoreError(op, err)
	}

	if c.integrity {
		if err := c.saveManifest(ctx, key, value); err != nil {
			return len(data), err
		}
	}
	return len(data), nil
}

// saveManifest fingerprints the files an artifact set references and stores
// the manifest next to the snapshot. Values that are not artifact sets carry
// no file references and need no manifest.
func (c *Cache) saveManifest(ctx context.Context, key string, value any) error {
	const op = "Cache.Save"

	set, ok := value.(artifact.Set)
	if !ok {
		return nil
	}

	var files []string
	err := set.VisitArtifacts(func(a artifact.Artifact) error {
		files = append(files, a.File)
		return nil
	})
	if err != nil {
		return NewExecutionError(op, err)
	}

	m, err := integrity.Capture(files)
	if err != nil {
		return NewIntegrityError(op, err)
	}
	data, err := m.Encode()
	if err != nil {
		return NewInternalError(op, err)
	}
	if err := c.store.Put(ctx, key+manifestSuffix, data); err != nil {
		return NewStoreError(op, err)
	}
	return nil
}

// Load reads the snapshot stored under key and decodes it back into a value.
//
// A missing entry, a snapshot written by a different format version, a
// structurally corrupt snapshot and stale integrity inputs all resolve to a
// miss: the returned error matches ErrMiss and the unusable entry is deleted.
// The error kind distinguishes the cases for logging and metrics.
func (c *Cache) Load(ctx context.Context, key string) (any, error) {
	start := time.Now()
	v, size, err := c.load(ctx, key)
	c.recordLoad(ctx, key, size, start, err)

	if err != nil {
		if IsMiss(err) {
			c.logger.Debug("snapshot miss",
				"key", key,
				"kind", errKind(err))
		} else {
			c.logger.Error("failed to load snapshot",
				"key", key,
				"error", err)
		}
		return nil, err
	}

	c.logger.Debug("snapshot hit",
		"key", key,
		"bytes", size)
	return v, nil
}

func (c *Cache) load(ctx context.Context, key string) (any, int, error) {
	const op = "Cache.Load"
	if err := c.guard(op); err != nil {
		return nil, 0, err
	}

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			return nil, 0, NewMissError(op, ErrMiss)
		}
		return nil, 0, NewStoreError(op, err)
	}

	r, err := stream.NewReader(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, stream.ErrVersionMismatch) {
			c.discard(ctx, key, "format version changed")
			return nil, 0, NewVersionMismatchError(op, err)
		}
		c.discard(ctx, key, "snapshot header unreadable")
		return nil, 0, NewCorruptError(op, err)
	}

	if c.integrity {
		if err := c.verifyManifest(ctx, key); err != nil {
			if IsMiss(err) {
				c.discard(ctx, key, "inputs changed since capture")
			}
			return nil, 0, err
		}
	}

	dec := codec.NewDecoder(r, c.registry)
	v, err := dec.DecodeValue()
	if err != nil {
		c.discard(ctx, key, "snapshot undecodable")
		return nil, 0, NewCorruptError(op, err)
	}
	return v, len(data), nil
}

// verifyManifest checks the snapshot's input manifest, if one exists.
// Snapshots saved without integrity checking have no manifest and pass.
func (c *Cache) verifyManifest(ctx context.Context, key string) error {
	const op = "Cache.Load"

	data, err := c.store.Get(ctx, key+manifestSuffix)
	if err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			return nil
		}
		return NewStoreError(op, err)
	}

	m, err := integrity.ParseManifest(data)
	if err != nil {
		return NewCorruptError(op, err)
	}

	violations := m.Verify()
	if len(violations) == 0 {
		return nil
	}

	for _, v := range violations {
		c.logger.Warn("snapshot input changed",
			"key", key,
			"violation", v.String())
	}
	return NewIntegrityError(op, fmt.Errorf("%d stale input(s)", len(violations)))
}

// LoadOrCompute returns the value stored under key, or computes, saves and
// returns it on a miss. Compute is only invoked when no usable snapshot
// exists. A failed save is logged but does not discard the computed value.
func (c *Cache) LoadOrCompute(ctx context.Context, key string, compute func(context.Context) (any, error)) (any, error) {
	v, err := c.Load(ctx, key)
	if err == nil {
		return v, nil
	}
	if !IsMiss(err) {
		return nil, err
	}

	v, err = compute(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute entry %s: %w", key, err)
	}

	if err := c.Save(ctx, key, v); err != nil {
		c.logger.Warn("failed to save computed entry",
			"key", key,
			"error", err)
	}
	return v, nil
}

// Health probes the cache's dependencies and reports their combined state.
// A closed cache is unhealthy; otherwise the snapshot store is probed with
// a write/read/delete round trip.
func (c *Cache) Health(ctx context.Context) health.Status {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return health.NewUnhealthyStatus("cache is closed", nil)
	}
	return health.Combine(
		health.StoreCheck(ctx, c.store),
	)
}

// Invalidate removes the snapshot stored under key, along with its
// manifest. Invalidating an absent entry is not an error.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	const op = "Cache.Invalidate"
	if err := c.guard(op); err != nil {
		return err
	}

	if err := c.store.Delete(ctx, key); err != nil {
		return NewStoreError(op, err)
	}
	if err := c.store.Delete(ctx, key+manifestSuffix); err != nil {
		return NewStoreError(op, err)
	}

	c.logger.Debug("snapshot invalidated", "key", key)
	return nil
}

// Close releases the cache and closes its store. Close is idempotent;
// operations after Close fail with ErrClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if err := c.store.Close(); err != nil {
		return NewInternalError("Cache.Close", err)
	}
	return nil
}

// guard rejects operations on a closed cache.
func (c *Cache) guard(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return NewValidationError(op, ErrClosed)
	}
	return nil
}

// discard removes a snapshot that can no longer be trusted. Failures are
// logged rather than returned; the caller is already reporting a miss.
func (c *Cache) discard(ctx context.Context, key, reason string) {
	c.logger.Warn("invalidating snapshot",
		"key", key,
		"reason", reason)

	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Warn("failed to delete snapshot",
			"key", key,
			"error", err)
	}
	if err := c.store.Delete(ctx, key+manifestSuffix); err != nil {
		c.logger.Warn("failed to delete manifest",
			"key", key,
			"error", err)
	}
}
