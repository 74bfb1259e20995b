package statecache

import (
	"log/slog"

	"github.com/buildweave/statecache/codec"
	"github.com/buildweave/statecache/store"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures the Cache.
type Option func(*cacheConfig)

// cacheConfig holds configuration for a Cache instance.
type cacheConfig struct {
	store         store.Store
	registry      *codec.Registry
	logger        *slog.Logger
	tracer        trace.Tracer
	meterProvider metric.MeterProvider
	integrity     bool
}

// WithStore sets the snapshot store backend.
// If not provided, an in-memory store is used; snapshots then live only
// as long as the process.
func WithStore(s store.Store) Option {
	return func(c *cacheConfig) {
		c.store = s
	}
}

// WithRegistry sets the codec registry used to encode and decode values.
// If not provided, a registry with the artifact set codec is used.
// Supplying a custom registry replaces the default registrations entirely.
func WithRegistry(reg *codec.Registry) Option {
	return func(c *cacheConfig) {
		c.registry = reg
	}
}

// WithLogger sets a custom logger for the cache.
// If not provided, a default logger will be created.
func WithLogger(logger *slog.Logger) Option {
	return func(c *cacheConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for distributed tracing.
// This enables span creation around save and load operations.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *cacheConfig) {
		c.tracer = tracer
	}
}

// WithMeterProvider sets an OpenTelemetry meter provider for metrics.
// This enables hit/miss counters and size/duration histograms.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *cacheConfig) {
		c.meterProvider = mp
	}
}

// WithIntegrityChecks enables manifest capture at save time and
// verification at load time for values that reference files on disk.
// A snapshot whose files changed since capture is invalidated and
// reported as a miss.
func WithIntegrityChecks(enabled bool) Option {
	return func(c *cacheConfig) {
		c.integrity = enabled
	}
}
