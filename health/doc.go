// Package health provides reusable health check functions for snapshot
// cache deployments.
//
// This package offers standardized ways to verify store connectivity,
// cache directories, and captured-input freshness. It is designed to help
// tools that embed the cache implement consistent health checking patterns.
//
// # Health Check Functions
//
// The package provides five main health check functions:
//
//   - StoreCheck: Verify a snapshot store accepts and returns a probe entry
//   - DirCheck: Verify a cache directory exists and is a directory
//   - NetworkCheck: Verify TCP connectivity to a remote store host:port
//   - ManifestCheck: Verify the files captured in a manifest are unchanged
//   - Combine: Aggregate multiple health checks into a single status
//
// # Usage Example
//
//	import (
//	    "context"
//	    "time"
//
//	    "github.com/buildweave/statecache/health"
//	)
//
//	// Check the cache directory
//	dirStatus := health.DirCheck(".statecache")
//	if dirStatus.IsUnhealthy() {
//	    log.Fatal("cache directory is missing")
//	}
//
//	// Check connectivity to a remote Redis store
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	redisStatus := health.NetworkCheck(ctx, "cache.internal", 6379)
//
//	// Combine multiple checks
//	overall := health.Combine(
//	    dirStatus,
//	    redisStatus,
//	    health.StoreCheck(ctx, snapshotStore),
//	)
//
//	if overall.IsUnhealthy() {
//	    log.Printf("health check failed: %s", overall.Message)
//	    log.Printf("details: %+v", overall.Details)
//	}
//
// # Health Status Priority
//
// When combining health checks with Combine(), the result follows this priority:
//
//   - Unhealthy: If any check is unhealthy, the combined result is unhealthy
//   - Degraded: If any check is degraded (and none unhealthy), the result is degraded
//   - Healthy: If all checks are healthy, the result is healthy
//
// # Context and Timeouts
//
// StoreCheck and NetworkCheck accept a context for timeout and cancellation
// control. If NetworkCheck receives a nil context, a default 5-second
// timeout is used.
package health
