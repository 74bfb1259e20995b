package artifact

import (
	"fmt"
	"maps"
)

// Step is one live link of a transform chain: the transform to apply, its
// configuration parameters, and the fingerprint of the inputs captured when
// the chain was bound. Steps are immutable once created.
type Step struct {
	transform   string
	parameters  map[string]string
	fingerprint string
}

// NewStep creates a live transform step. The transform name is required;
// parameters are copied, so later changes to the argument do not leak in.
func NewStep(transform string, parameters map[string]string, inputsFingerprint string) (*Step, error) {
	if transform == "" {
		return nil, fmt.Errorf("artifact: step requires a transform name")
	}
	return &Step{
		transform:   transform,
		parameters:  maps.Clone(parameters),
		fingerprint: inputsFingerprint,
	}, nil
}

// Transform returns the name of the transform this step applies.
func (s *Step) Transform() string {
	return s.transform
}

// Parameters returns a copy of the step's configuration parameters.
func (s *Step) Parameters() map[string]string {
	return maps.Clone(s.parameters)
}

// InputsFingerprint returns the digest of the inputs the step was bound
// against, or "" when none was captured.
func (s *Step) InputsFingerprint() string {
	return s.fingerprint
}

// Spec unpacks the step into its serializable record.
func (s *Step) Spec() StepSpec {
	return StepSpec{
		Transform:         s.transform,
		Parameters:        maps.Clone(s.parameters),
		InputsFingerprint: s.fingerprint,
	}
}

// StepSpec is the serializable record of a transform step: everything
// needed to recreate the live step, and nothing tied to the resolution
// session that produced it. Specs exist only in transit; they are unpacked
// from live steps at encode time and discarded after decode recreates the
// steps.
type StepSpec struct {
	Transform         string
	Parameters        map[string]string
	InputsFingerprint string
}

// Recreate builds the live step this spec describes. Recreation is a pure
// function of the spec: equal specs yield interchangeable steps, with no
// dependence on session state.
func (s StepSpec) Recreate() (*Step, error) {
	return NewStep(s.Transform, s.Parameters, s.InputsFingerprint)
}

// BoundStep couples a live step with the upstream components whose
// artifacts it consumed when the chain was bound. The coupling exists only
// during a live resolution: snapshots persist the step spec alone, which is
// why replayed sets cannot answer dependency queries.
type BoundStep struct {
	Step *Step

	// Upstream lists the components this step's inputs came from. Empty for
	// steps recreated from a snapshot.
	Upstream []ComponentID
}
