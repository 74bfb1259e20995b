package health

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/buildweave/statecache/integrity"
	"github.com/buildweave/statecache/store"
)

// Health state constants represent the operational state of a checked component.
const (
	// StateHealthy indicates the component is fully operational.
	StateHealthy = "healthy"

	// StateDegraded indicates the component is operational but experiencing issues.
	StateDegraded = "degraded"

	// StateUnhealthy indicates the component is not operational.
	StateUnhealthy = "unhealthy"
)

// Status represents the health state of a cache component.
// It provides detailed information about operational status, issues, and context.
type Status struct {
	// State is the current health state (healthy, degraded, or unhealthy).
	State string `json:"state"`

	// Message provides a human-readable description of the health status.
	Message string `json:"message,omitempty"`

	// Details contains additional context and diagnostic information.
	// This can include error details, probe keys, or per-file violations.
	Details map[string]any `json:"details,omitempty"`
}

// IsHealthy returns true if the state is StateHealthy.
func (s Status) IsHealthy() bool {
	return s.State == StateHealthy
}

// IsDegraded returns true if the state is StateDegraded.
func (s Status) IsDegraded() bool {
	return s.State == StateDegraded
}

// IsUnhealthy returns true if the state is StateUnhealthy.
func (s Status) IsUnhealthy() bool {
	return s.State == StateUnhealthy
}

// NewHealthyStatus creates a new healthy status with an optional message.
func NewHealthyStatus(message string) Status {
	return Status{
		State:   StateHealthy,
		Message: message,
	}
}

// NewDegradedStatus creates a new degraded status with a message and optional details.
func NewDegradedStatus(message string, details map[string]any) Status {
	return Status{
		State:   StateDegraded,
		Message: message,
		Details: details,
	}
}

// NewUnhealthyStatus creates a new unhealthy status with a message and optional details.
func NewUnhealthyStatus(message string, details map[string]any) Status {
	return Status{
		State:   StateUnhealthy,
		Message: message,
		Details: details,
	}
}

// StoreCheck verifies that a snapshot store accepts writes and returns them
// intact. It writes a probe entry under a random key, reads it back, and
// deletes it. A failed cleanup degrades the status instead of failing it:
// the store still serves the cache, but leaks probe entries.
//
// Example:
//
//	status := health.StoreCheck(ctx, snapshotStore)
//	if status.IsUnhealthy() {
//	    log.Fatal("snapshot store is unreachable")
//	}
func StoreCheck(ctx context.Context, s store.Store) Status {
	if s == nil {
		return NewUnhealthyStatus("store cannot be nil", nil)
	}

	key := "health-probe-" + uuid.NewString()
	probe := []byte("statecache health probe")

	if err := s.Put(ctx, key, probe); err != nil {
		return NewUnhealthyStatus(
			"store rejected probe write",
			map[string]any{
				"key":   key,
				"error": err.Error(),
			},
		)
	}

	data, err := s.Get(ctx, key)
	if err != nil {
		return NewUnhealthyStatus(
			"store did not return probe entry",
			map[string]any{
				"key":   key,
				"error": err.Error(),
			},
		)
	}
	if !bytes.Equal(data, probe) {
		return NewUnhealthyStatus(
			"store returned different bytes for probe entry",
			map[string]any{
				"key":      key,
				"expected": len(probe),
				"actual":   len(data),
			},
		)
	}

	if err := s.Delete(ctx, key); err != nil {
		return NewDegradedStatus(
			"store could not delete probe entry",
			map[string]any{
				"key":   key,
				"error": err.Error(),
			},
		)
	}

	return NewHealthyStatus("store persisted and returned the probe entry")
}

// DirCheck verifies that a cache directory exists at the specified path and
// is actually a directory. It returns healthy if so, unhealthy otherwise.
//
// Example:
//
//	status := health.DirCheck(".statecache")
//	if status.IsUnhealthy() {
//	    log.Fatal(".statecache is missing")
//	}
func DirCheck(path string) Status {
	if path == "" {
		return NewUnhealthyStatus("path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewUnhealthyStatus(
				fmt.Sprintf("cache directory '%s' does not exist", path),
				map[string]any{
					"path": path,
				},
			)
		}

		return NewUnhealthyStatus(
			fmt.Sprintf("failed to stat path '%s'", path),
			map[string]any{
				"path":  path,
				"error": err.Error(),
			},
		)
	}

	if !info.IsDir() {
		return NewUnhealthyStatus(
			fmt.Sprintf("'%s' is not a directory", path),
			map[string]any{
				"path": path,
			},
		)
	}

	return NewHealthyStatus(
		fmt.Sprintf("cache directory '%s' exists", path),
	)
}

// NetworkCheck verifies TCP connectivity to a host and port, typically the
// endpoint of a remote snapshot store. It uses the provided context for
// timeout and cancellation control.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	status := health.NetworkCheck(ctx, "cache.internal", 6379)
//	if status.IsUnhealthy() {
//	    log.Println("cannot reach cache.internal:6379")
//	}
func NetworkCheck(ctx context.Context, host string, port int) Status {
	if host == "" {
		return NewUnhealthyStatus("host cannot be empty", nil)
	}

	if port <= 0 || port > 65535 {
		return NewUnhealthyStatus(
			fmt.Sprintf("invalid port number: %d", port),
			map[string]any{"port": port},
		)
	}

	// Use context with timeout if not already set
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return NewUnhealthyStatus(
			fmt.Sprintf("failed to connect to %s", address),
			map[string]any{
				"host":  host,
				"port":  port,
				"error": err.Error(),
			},
		)
	}

	// Close connection immediately
	conn.Close()

	return NewHealthyStatus(
		fmt.Sprintf("successfully connected to %s", address),
	)
}

// ManifestCheck verifies that every file captured in the manifest is still
// present and unchanged. A stale manifest means the snapshot built from
// those files would replay outdated state.
//
// A nil manifest or a manifest without entries is healthy: there is nothing
// to go stale.
//
// Example:
//
//	status := health.ManifestCheck(manifest)
//	if status.IsUnhealthy() {
//	    log.Println("snapshot inputs changed, recompute before replaying")
//	}
func ManifestCheck(m *integrity.Manifest) Status {
	if m == nil || len(m.Entries) == 0 {
		return NewHealthyStatus("no captured inputs to verify")
	}

	violations := m.Verify()
	if len(violations) == 0 {
		return NewHealthyStatus(
			fmt.Sprintf("all %d captured input(s) unchanged", len(m.Entries)),
		)
	}

	changed := make([]string, len(violations))
	for i, v := range violations {
		changed[i] = v.String()
	}

	return NewUnhealthyStatus(
		fmt.Sprintf("%d captured input(s) changed", len(violations)),
		map[string]any{
			"total":      len(m.Entries),
			"violations": changed,
		},
	)
}

// Combine aggregates multiple health checks into a single status.
// The result follows this priority:
//   - If any check is unhealthy, the result is unhealthy
//   - If any check is degraded (and none unhealthy), the result is degraded
//   - If all checks are healthy, the result is healthy
//
// Example:
//
//	status := health.Combine(
//	    health.DirCheck(".statecache"),
//	    health.StoreCheck(ctx, snapshotStore),
//	)
//	if status.IsUnhealthy() {
//	    log.Fatal("cache dependencies not met")
//	}
func Combine(checks ...Status) Status {
	if len(checks) == 0 {
		return NewHealthyStatus("no checks provided")
	}

	var unhealthyChecks []string
	var degradedChecks []string
	var healthyCount int

	for _, check := range checks {
		switch check.State {
		case StateUnhealthy:
			msg := check.Message
			if msg == "" {
				msg = "unnamed check"
			}
			unhealthyChecks = append(unhealthyChecks, msg)
		case StateDegraded:
			msg := check.Message
			if msg == "" {
				msg = "unnamed check"
			}
			degradedChecks = append(degradedChecks, msg)
		case StateHealthy:
			healthyCount++
		}
	}

	// Return unhealthy if any check is unhealthy
	if len(unhealthyChecks) > 0 {
		return NewUnhealthyStatus(
			fmt.Sprintf("%d check(s) failed", len(unhealthyChecks)),
			map[string]any{
				"total":         len(checks),
				"unhealthy":     len(unhealthyChecks),
				"degraded":      len(degradedChecks),
				"healthy":       healthyCount,
				"failed_checks": unhealthyChecks,
			},
		)
	}

	// Return degraded if any check is degraded
	if len(degradedChecks) > 0 {
		return NewDegradedStatus(
			fmt.Sprintf("%d check(s) degraded", len(degradedChecks)),
			map[string]any{
				"total":           len(checks),
				"degraded":        len(degradedChecks),
				"healthy":         healthyCount,
				"degraded_checks": degradedChecks,
			},
		)
	}

	// All checks are healthy
	return NewHealthyStatus(
		fmt.Sprintf("all %d check(s) passed", len(checks)),
	)
}
