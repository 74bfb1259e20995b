package statecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// cacheMetrics holds the OpenTelemetry metric instruments for the cache.
// These are created once during construction and reused for all operations.
type cacheMetrics struct {
	// hitCounter increments for each load served from a snapshot
	hitCounter metric.Int64Counter

	// missCounter increments for each load that must recompute
	missCounter metric.Int64Counter

	// saveCounter increments for each snapshot written
	saveCounter metric.Int64Counter

	// sizeHistogram records snapshot sizes in bytes
	sizeHistogram metric.Int64Histogram

	// durationHistogram records operation duration in milliseconds
	durationHistogram metric.Float64Histogram
}

// initMetrics creates and initializes all OpenTelemetry metric instruments.
// This is called once when the cache is constructed with a MeterProvider.
func (c *Cache) initMetrics() (*cacheMetrics, error) {
	if c.meter == nil {
		return nil, nil
	}

	metrics := &cacheMetrics{}
	var err error

	metrics.hitCounter, err = c.meter.Int64Counter(
		"statecache.hits",
		metric.WithDescription("Number of loads served from a snapshot"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create hit counter: %w", err)
	}

	metrics.missCounter, err = c.meter.Int64Counter(
		"statecache.misses",
		metric.WithDescription("Number of loads that required recomputation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create miss counter: %w", err)
	}

	metrics.saveCounter, err = c.meter.Int64Counter(
		"statecache.saves",
		metric.WithDescription("Number of snapshots written"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create save counter: %w", err)
	}

	metrics.sizeHistogram, err = c.meter.Int64Histogram(
		"statecache.snapshot_size",
		metric.WithDescription("Snapshot size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create size histogram: %w", err)
	}

	metrics.durationHistogram, err = c.meter.Float64Histogram(
		"statecache.duration",
		metric.WithDescription("Cache operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return metrics, nil
}

// recordSave creates an OpenTelemetry span and records metrics for a save.
//
// If OTel is not configured (nil tracer/meter), this method returns silently.
// OTel failures never break the cache operation that triggered them.
func (c *Cache) recordSave(ctx context.Context, key string, size int, start time.Time, opErr error) {
	if c.tracer == nil && c.meter == nil {
		return
	}

	durationMs := float64(time.Since(start).Milliseconds())

	if c.tracer != nil {
		_, span := c.tracer.Start(ctx, "statecache.save", trace.WithTimestamp(start))
		span.SetAttributes(
			attribute.String("cache.id", c.id),
			attribute.String("entry.key", key),
			attribute.Int("snapshot.size_bytes", size),
			attribute.Float64("duration_ms", durationMs),
		)
		if opErr != nil {
			span.RecordError(opErr)
			span.SetStatus(codes.Error, "save failed")
		} else {
			span.SetStatus(codes.Ok, "snapshot written")
		}
		span.End()
	}

	if c.meter != nil && c.metrics != nil {
		opts := metric.WithAttributes(attribute.String("op", "save"))
		c.metrics.durationHistogram.Record(ctx, durationMs, opts)
		if opErr == nil {
			c.metrics.saveCounter.Add(ctx, 1)
			c.metrics.sizeHistogram.Record(ctx, int64(size), opts)
		}
	}
}

// recordLoad creates an OpenTelemetry span and records metrics for a load.
// A miss is a normal outcome and does not mark the span as an error; only
// store and internal failures do.
func (c *Cache) recordLoad(ctx context.Context, key string, size int, start time.Time, opErr error) {
	if c.tracer == nil && c.meter == nil {
		return
	}

	hit := opErr == nil
	durationMs := float64(time.Since(start).Milliseconds())

	if c.tracer != nil {
		_, span := c.tracer.Start(ctx, "statecache.load", trace.WithTimestamp(start))
		span.SetAttributes(
			attribute.String("cache.id", c.id),
			attribute.String("entry.key", key),
			attribute.Bool("cache.hit", hit),
			attribute.Float64("duration_ms", durationMs),
		)
		if hit {
			span.SetAttributes(attribute.Int("snapshot.size_bytes", size))
			span.SetStatus(codes.Ok, "snapshot hit")
		} else if IsMiss(opErr) {
			span.SetAttributes(attribute.String("miss.kind", errKind(opErr)))
			span.SetStatus(codes.Ok, "snapshot miss")
		} else {
			span.RecordError(opErr)
			span.SetStatus(codes.Error, "load failed")
		}
		span.End()
	}

	if c.meter != nil && c.metrics != nil {
		opts := metric.WithAttributes(attribute.String("op", "load"))
		c.metrics.durationHistogram.Record(ctx, durationMs, opts)
		switch {
		case hit:
			c.metrics.hitCounter.Add(ctx, 1)
			c.metrics.sizeHistogram.Record(ctx, int64(size), opts)
		case IsMiss(opErr):
			c.metrics.missCounter.Add(ctx, 1,
				metric.WithAttributes(attribute.String("kind", errKind(opErr))))
		}
	}
}

// errKind extracts the CacheError kind for telemetry attributes.
func errKind(err error) string {
	var ce *CacheError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return "unknown"
}
