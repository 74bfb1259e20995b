package artifact

import (
	"fmt"
	"path/filepath"
	"slices"
)

// FixedSet replays an artifact set from its captured snapshot: the owner,
// the variant attributes, the ordered file list, and the recreated
// transform steps. The files are assumed to exist on disk from the build
// that wrote the snapshot; nothing is resolved, downloaded, or transformed
// again.
//
// Under the Set capability a FixedSet behaves exactly like the live set it
// replaced. The resolution-facing modes are narrower: dependency and
// local-artifact visitation did not survive the snapshot and always fail
// with ErrReplayUnsupported.
type FixedSet struct {
	owner      ComponentID
	attributes Attributes
	files      []string
	steps      []*Step
}

var (
	_ Set        = (*FixedSet)(nil)
	_ Resolvable = (*FixedSet)(nil)
)

// NewFixedSet creates a replay set over the captured file list. The owner
// is required; files and steps are copied and keep their order.
func NewFixedSet(owner ComponentID, attributes Attributes, files []string, steps []*Step) (*FixedSet, error) {
	if owner == "" {
		return nil, fmt.Errorf("artifact: replay set requires an owner component")
	}
	return &FixedSet{
		owner:      owner,
		attributes: attributes.Clone(),
		files:      slices.Clone(files),
		steps:      slices.Clone(steps),
	}, nil
}

// OwnerID returns the component the artifacts belong to.
func (s *FixedSet) OwnerID() ComponentID {
	return s.owner
}

// TargetAttributes returns the variant attributes captured in the snapshot.
func (s *FixedSet) TargetAttributes() Attributes {
	return s.attributes
}

// BoundSteps returns the recreated transform chain. Replayed steps carry no
// upstream components; that binding does not survive the snapshot.
func (s *FixedSet) BoundSteps() []BoundStep {
	bound := make([]BoundStep, len(s.steps))
	for i, step := range s.steps {
		bound[i] = BoundStep{Step: step}
	}
	return bound
}

// Files returns the captured file list in snapshot order.
func (s *FixedSet) Files() []string {
	return slices.Clone(s.files)
}

// Steps returns the recreated transform steps in application order.
func (s *FixedSet) Steps() []*Step {
	return slices.Clone(s.steps)
}

// VisitArtifacts yields one artifact per captured file, in file-list order.
// An empty capture completes without invoking fn.
func (s *FixedSet) VisitArtifacts(fn func(Artifact) error) error {
	for _, file := range s.files {
		if err := fn(s.artifactFor(file)); err != nil {
			return err
		}
	}
	return nil
}

// Visit builds one artifact descriptor per captured file, synchronously and
// in file-list order, and delivers the complete list to the visitor as a
// single completed unit. No work is scheduled on the queue: replay has
// nothing left to defer.
func (s *FixedSet) Visit(queue OperationQueue, visitor Visitor) error {
	artifacts := make([]Artifact, len(s.files))
	for i, file := range s.files {
		artifacts[i] = s.artifactFor(file)
	}
	visitor.VisitResolved(artifacts)
	return nil
}

// VisitDependencies always fails: the upstream components a transform chain
// consumed are not captured in the snapshot.
func (s *FixedSet) VisitDependencies(fn func(ComponentID) error) error {
	return fmt.Errorf("%w: dependencies of %s were not captured", ErrReplayUnsupported, s.owner)
}

// VisitLocalArtifacts always fails: project-local artifacts cannot appear
// in a replayed external set.
func (s *FixedSet) VisitLocalArtifacts(fn func(Artifact) error) error {
	return fmt.Errorf("%w: %s replays external artifacts only", ErrReplayUnsupported, s.owner)
}

// VisitExternalArtifacts yields one artifact per captured file, in
// file-list order, stopping at the first error from fn.
func (s *FixedSet) VisitExternalArtifacts(fn func(Artifact) error) error {
	return s.VisitArtifacts(fn)
}

// artifactFor builds the descriptor for one captured file. The identifier
// and display name derive from the file name; classifiers are gone after
// replay, so the name carries NoClassifier.
func (s *FixedSet) artifactFor(file string) Artifact {
	fileName := filepath.Base(file)
	return Artifact{
		ID:   ArtifactID{Owner: s.owner, FileName: fileName},
		Name: ParseArtifactName(fileName),
		File: file,
	}
}
