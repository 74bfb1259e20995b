package artifact

import (
	"context"
	"errors"
)

// Sentinel errors for artifact visitation.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrReplayUnsupported indicates a visitation mode that does not
	// survive snapshot replay. Hitting it is a caller defect: the calling
	// code is using a replayed set where a live resolution is required.
	ErrReplayUnsupported = errors.New("artifact: visitation mode not supported after replay")
)

// Operation is a unit of deferred work produced while visiting live
// artifact sets, typically a pending transform execution.
type Operation interface {
	// Run executes the operation. Run is called at most once.
	Run(ctx context.Context) error
}

// OperationQueue schedules operations for the build's execution engine.
// The engine owns ordering, parallelism, and failure collection; artifact
// sets only submit work. Implementations come from the embedding build
// tool.
type OperationQueue interface {
	// Add submits an operation for execution.
	Add(op Operation)
}

// Visitor observes the outcome of visiting an artifact set.
type Visitor interface {
	// VisitResolved receives a set's artifacts as one completed unit of
	// work. The slice is ordered and owned by the visitor after the call.
	VisitResolved(artifacts []Artifact)
}

// SerialQueue is an OperationQueue that runs each operation immediately on
// the calling goroutine, in submission order. It serves replay paths and
// tests, where no execution engine is involved.
type SerialQueue struct {
	ctx  context.Context
	errs []error
}

// NewSerialQueue creates a queue running operations under ctx.
func NewSerialQueue(ctx context.Context) *SerialQueue {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SerialQueue{ctx: ctx}
}

// Add runs op immediately and records its failure, if any.
func (q *SerialQueue) Add(op Operation) {
	if err := op.Run(q.ctx); err != nil {
		q.errs = append(q.errs, err)
	}
}

// Err returns the failures of all operations run so far, joined, or nil.
func (q *SerialQueue) Err() error {
	return errors.Join(q.errs...)
}
