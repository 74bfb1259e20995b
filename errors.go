package statecache

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for common cache conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrMiss indicates that no usable snapshot exists for the requested key.
	// A miss is the normal recompute signal: the entry was never saved, was
	// written by an incompatible format version, or was invalidated.
	ErrMiss = errors.New("snapshot not available")

	// ErrClosed indicates the cache has been closed and can no longer
	// serve requests.
	ErrClosed = errors.New("cache is closed")

	// ErrInvalidConfig indicates the provided configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error kinds categorize errors by their type.
const (
	// KindMiss represents a plain cache miss: no entry under the key.
	KindMiss = "miss"

	// KindVersionMismatch represents a snapshot written by a different
	// format version.
	KindVersionMismatch = "version_mismatch"

	// KindCorrupt represents a snapshot that failed structural validation
	// during decoding.
	KindCorrupt = "corrupt"

	// KindIntegrity represents a snapshot whose referenced files changed
	// since capture.
	KindIntegrity = "integrity"

	// KindUnsupported represents values the codec registry cannot encode.
	KindUnsupported = "unsupported"

	// KindExecution represents failures raised by the value itself while
	// its state was being captured, such as a failed artifact resolution.
	KindExecution = "execution"

	// KindStore represents failures in the underlying snapshot store.
	KindStore = "store"

	// KindValidation represents errors related to input validation.
	KindValidation = "validation"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindInternal represents internal cache errors.
	KindInternal = "internal"
)

// CacheError is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of error.
//
// CacheError implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
//
// Example usage:
//
//	err := &CacheError{
//		Op:   "Cache.Load",
//		Kind: KindCorrupt,
//		Err:  cause,
//	}
type CacheError struct {
	// Op is the operation that failed (e.g., "Cache.Load", "Cache.Save").
	Op string

	// Kind categorizes the error (e.g., KindMiss, KindCorrupt).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	// This can include entry keys, byte counts, or other debugging information.
	Context map[string]any
}

// Error implements the error interface, returning a formatted error message
// that includes the operation, kind, and underlying error.
func (e *CacheError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("statecache: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("statecache: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("statecache: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and errors.As()
// to work correctly with wrapped errors.
func (e *CacheError) Unwrap() error {
	return e.Err
}

// Is implements error matching for CacheError, allowing comparison based on
// the underlying error or the CacheError itself.
//
// Every kind that invalidates a snapshot also matches ErrMiss, because the
// caller's recovery is identical: recompute the value and save it again.
func (e *CacheError) Is(target error) bool {
	if target == nil {
		return false
	}

	if target == ErrMiss && missKind(e.Kind) {
		return true
	}

	// Check if target is a CacheError with matching Kind
	if t, ok := target.(*CacheError); ok {
		// Match if both Op and Kind are the same, or if Kind matches and Op is empty in target
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	// Delegate to underlying error
	return errors.Is(e.Err, target)
}

// missKind reports whether a kind resolves to a recomputable miss.
func missKind(kind string) bool {
	switch kind {
	case KindMiss, KindVersionMismatch, KindCorrupt, KindIntegrity:
		return true
	}
	return false
}

// IsMiss reports whether err resolves to a cache miss. It matches plain
// misses as well as version, corruption and integrity invalidations.
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}

// WithContext returns a new CacheError with the provided context added.
// This is useful for adding debugging information to errors.
//
// Example:
//
//	err := NewStoreError("Cache.Save", cause)
//	err = err.WithContext(map[string]any{
//		"key":  "abc123",
//		"size": 1024,
//	})
func (e *CacheError) WithContext(ctx map[string]any) *CacheError {
	newErr := *e
	merged := make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	newErr.Context = merged
	return &newErr
}

// NewMissError creates a new CacheError with KindMiss.
func NewMissError(op string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Kind: KindMiss,
		Err:  err,
	}
}

// NewVersionMismatchError creates a new CacheError with KindVersionMismatch.
func NewVersionMismatchError(op string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Kind: KindVersionMismatch,
		Err:  err,
	}
}

// NewCorruptError creates a new CacheError with KindCorrupt.
func NewCorruptError(op string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Kind: KindCorrupt,
		Err:  err,
	}
}

// NewIntegrityError creates a new CacheError with KindIntegrity.
func NewIntegrityError(op string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Kind: KindIntegrity,
		Err:  err,
	}
}

// NewUnsupportedError creates a new CacheError with KindUnsupported.
func NewUnsupportedError(op string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Kind: KindUnsupported,
		Err:  err,
	}
}

// NewExecutionError creates a new CacheError with KindExecution.
func NewExecutionError(op string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Kind: KindExecution,
		Err:  err,
	}
}

// NewStoreError creates a new CacheError with KindStore.
func NewStoreError(op string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Kind: KindStore,
		Err:  err,
	}
}

// NewValidationError creates a new CacheError with KindValidation.
func NewValidationError(op string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Kind: KindValidation,
		Err:  err,
	}
}

// NewConfigurationError creates a new CacheError with KindConfiguration.
func NewConfigurationError(op string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Kind: KindConfiguration,
		Err:  err,
	}
}

// NewInternalError creates a new CacheError with KindInternal.
func NewInternalError(op string, err error) *CacheError {
	return &CacheError{
		Op:   op,
		Kind: KindInternal,
		Err:  err,
	}
}

// CloseWithLog attempts to close the provided resource and logs any error
// at warning level. This is intended for use in defer statements to ensure
// cleanup errors are not silently ignored.
//
// The name parameter should describe the resource being closed (e.g.,
// "cache", "store", "watcher"). If logger is nil, slog.Default() is used.
//
// Example usage:
//
//	defer statecache.CloseWithLog(cache, logger, "snapshot cache")
//	defer statecache.CloseWithLog(db, logger, "snapshot store")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
