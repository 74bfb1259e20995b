package artifact

import (
	"context"
	"fmt"
	"slices"
)

// Set is the capability surface every artifact set offers, live or
// replayed. Consumers working against Set cannot tell a freshly resolved
// set from one rebuilt out of a snapshot.
type Set interface {
	// OwnerID returns the component the artifacts belong to.
	OwnerID() ComponentID

	// TargetAttributes returns the variant attributes the set was resolved
	// for. The returned map must be treated as read-only.
	TargetAttributes() Attributes

	// BoundSteps returns the transform chain bound to this set, in
	// application order.
	BoundSteps() []BoundStep

	// VisitArtifacts yields every artifact in the set, in order, stopping
	// at the first error. On live sets this may block on resolution and
	// transform work.
	VisitArtifacts(fn func(Artifact) error) error
}

// Resolvable is the resolution-facing visitation surface of artifact sets.
// Live sets answer every mode; replayed sets answer only the modes whose
// inputs survive in the snapshot.
type Resolvable interface {
	// Visit makes the set's artifacts available to the visitor. Deferred
	// work, if any, is scheduled on queue; the visitor receives the
	// complete artifact list as one unit once it is available.
	Visit(queue OperationQueue, visitor Visitor) error

	// VisitDependencies reports the upstream components the set's transform
	// chain consumed.
	VisitDependencies(fn func(ComponentID) error) error

	// VisitLocalArtifacts yields the artifacts produced by the local build,
	// if any.
	VisitLocalArtifacts(fn func(Artifact) error) error

	// VisitExternalArtifacts yields the artifacts that came from external
	// components, in set order.
	VisitExternalArtifacts(fn func(Artifact) error) error
}

// Source yields the artifacts of a live resolution. Implementations come
// from the embedding build tool's resolution engine; visiting one may block
// until downloads and transform executions finish.
type Source interface {
	VisitArtifacts(fn func(Artifact) error) error
}

// TransformedSet is a live artifact set: an external component's artifacts
// with a transform chain bound to them, backed by the resolution engine
// that produces the transformed files.
type TransformedSet struct {
	owner      ComponentID
	attributes Attributes
	source     Source
	steps      []BoundStep
}

var (
	_ Set        = (*TransformedSet)(nil)
	_ Resolvable = (*TransformedSet)(nil)
)

// NewTransformedSet creates a live set over source. The owner and source
// are required; attributes and steps are copied.
func NewTransformedSet(owner ComponentID, attributes Attributes, source Source, steps []BoundStep) (*TransformedSet, error) {
	if owner == "" {
		return nil, fmt.Errorf("artifact: set requires an owner component")
	}
	if source == nil {
		return nil, fmt.Errorf("artifact: set requires an artifact source")
	}
	return &TransformedSet{
		owner:      owner,
		attributes: attributes.Clone(),
		source:     source,
		steps:      slices.Clone(steps),
	}, nil
}

// OwnerID returns the component the artifacts belong to.
func (s *TransformedSet) OwnerID() ComponentID {
	return s.owner
}

// TargetAttributes returns the variant attributes the set was resolved for.
func (s *TransformedSet) TargetAttributes() Attributes {
	return s.attributes
}

// BoundSteps returns the transform chain in application order.
func (s *TransformedSet) BoundSteps() []BoundStep {
	return slices.Clone(s.steps)
}

// VisitArtifacts yields the transformed artifacts from the backing source,
// in resolution order. It blocks until the source has produced them all.
func (s *TransformedSet) VisitArtifacts(fn func(Artifact) error) error {
	return s.source.VisitArtifacts(fn)
}

// Visit resolves the set's artifacts and hands them to the visitor as one
// completed unit. With a queue, resolution runs as a scheduled operation;
// without one it runs inline.
func (s *TransformedSet) Visit(queue OperationQueue, visitor Visitor) error {
	op := &resolveOperation{set: s, visitor: visitor}
	if queue == nil {
		return op.Run(context.Background())
	}
	queue.Add(op)
	return nil
}

// VisitDependencies reports each upstream component of the bound transform
// chain, stopping at the first error.
func (s *TransformedSet) VisitDependencies(fn func(ComponentID) error) error {
	for _, bound := range s.steps {
		for _, upstream := range bound.Upstream {
			if err := fn(upstream); err != nil {
				return err
			}
		}
	}
	return nil
}

// VisitLocalArtifacts completes without yielding anything: every artifact
// in an external set originates outside the local build.
func (s *TransformedSet) VisitLocalArtifacts(fn func(Artifact) error) error {
	return nil
}

// VisitExternalArtifacts yields all artifacts; an external set's artifacts
// are external by definition.
func (s *TransformedSet) VisitExternalArtifacts(fn func(Artifact) error) error {
	return s.VisitArtifacts(fn)
}

// resolveOperation drains a live set and delivers the result to a visitor.
type resolveOperation struct {
	set     *TransformedSet
	visitor Visitor
}

func (o *resolveOperation) Run(ctx context.Context) error {
	var artifacts []Artifact
	err := o.set.VisitArtifacts(func(a Artifact) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		artifacts = append(artifacts, a)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to resolve artifacts of %s: %w", o.set.owner, err)
	}
	o.visitor.VisitResolved(artifacts)
	return nil
}
