package artifact

import (
	"fmt"
	"reflect"

	"github.com/buildweave/statecache/codec"
)

// TagTransformedSet is the wire tag of transformed external artifact sets.
// The tag is persistent format; it must not change or be reused.
const TagTransformedSet codec.Tag = 1

// SetCodec persists transformed external artifact sets.
//
// Encoding captures the set's owner, its target attributes, the concrete
// files obtained by fully draining the live set, and the specs of its
// transform steps. Decoding recreates the steps from their specs and
// returns a FixedSet that replays the captured files.
//
// The whole payload is written under one shared identity, keyed by the
// set's reference: a set referenced from several places in the state graph
// is written once and every decode site receives the same replayed
// instance.
type SetCodec struct{}

var _ codec.Codec = SetCodec{}

// RegisterSetCodec registers the artifact set codec with reg for both the
// live and the replayed set types, so sets survive any number of
// save/load generations.
func RegisterSetCodec(reg *codec.Registry) error {
	return reg.Register(SetCodec{},
		reflect.TypeOf((*TransformedSet)(nil)),
		reflect.TypeOf((*FixedSet)(nil)),
	)
}

// Tag returns the codec's stable wire tag.
func (SetCodec) Tag() codec.Tag {
	return TagTransformedSet
}

// Encode writes value, which must be an artifact Set, under the session's
// shared-identity table.
func (SetCodec) Encode(enc *codec.Encoder, value any) error {
	set, ok := value.(Set)
	if !ok {
		return fmt.Errorf("artifact: cannot encode %T as an artifact set", value)
	}
	return enc.EncodeShared(value, func(e *codec.Encoder) error {
		return encodeSetPayload(e, set)
	})
}

// Decode reads one set written by Encode. First occurrences rebuild a
// FixedSet; back-references return the FixedSet already rebuilt under the
// same identity.
func (SetCodec) Decode(dec *codec.Decoder) (any, error) {
	return dec.DecodeShared(func(d *codec.Decoder) (any, error) {
		return decodeSetPayload(d)
	})
}

func encodeSetPayload(e *codec.Encoder, set Set) error {
	if err := e.WriteString(string(set.OwnerID())); err != nil {
		return err
	}
	if err := encodeAttributes(e, set.TargetAttributes()); err != nil {
		return err
	}

	// Drain the live set completely before writing the list; a partial
	// capture would replay as a truncated set.
	var files []string
	err := set.VisitArtifacts(func(a Artifact) error {
		files = append(files, a.File)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to capture artifacts of %s: %w", set.OwnerID(), err)
	}
	if err := e.WriteFileList(files); err != nil {
		return err
	}

	steps := set.BoundSteps()
	if err := e.WriteCount(len(steps)); err != nil {
		return err
	}
	for _, bound := range steps {
		if err := encodeStepSpec(e, bound.Step.Spec()); err != nil {
			return err
		}
	}
	return nil
}

func decodeSetPayload(d *codec.Decoder) (*FixedSet, error) {
	owner, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	attrs, err := decodeAttributes(d)
	if err != nil {
		return nil, err
	}
	files, err := d.ReadFileList()
	if err != nil {
		return nil, err
	}

	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	steps := make([]*Step, 0, count)
	for i := 0; i < count; i++ {
		spec, err := decodeStepSpec(d)
		if err != nil {
			return nil, err
		}
		step, err := spec.Recreate()
		if err != nil {
			return nil, fmt.Errorf("failed to recreate transform step %d of %s: %w", i, owner, err)
		}
		steps = append(steps, step)
	}

	return NewFixedSet(ComponentID(owner), attrs, files, steps)
}

// encodeAttributes writes attributes as count-prefixed pairs in sorted key
// order, keeping the bytes deterministic for identical attribute sets.
func encodeAttributes(e *codec.Encoder, attrs Attributes) error {
	if err := e.WriteCount(len(attrs)); err != nil {
		return err
	}
	for _, key := range attrs.Keys() {
		if err := e.WriteString(key); err != nil {
			return err
		}
		if err := e.WriteString(attrs[key]); err != nil {
			return err
		}
	}
	return nil
}

func decodeAttributes(d *codec.Decoder) (Attributes, error) {
	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	attrs := make(Attributes, count)
	for i := 0; i < count; i++ {
		key, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		value, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		attrs[key] = value
	}
	return attrs, nil
}

func encodeStepSpec(e *codec.Encoder, spec StepSpec) error {
	if err := e.WriteString(spec.Transform); err != nil {
		return err
	}
	if err := encodeAttributes(e, Attributes(spec.Parameters)); err != nil {
		return err
	}
	return e.WriteString(spec.InputsFingerprint)
}

func decodeStepSpec(d *codec.Decoder) (StepSpec, error) {
	transform, err := d.ReadString()
	if err != nil {
		return StepSpec{}, err
	}
	params, err := decodeAttributes(d)
	if err != nil {
		return StepSpec{}, err
	}
	fingerprint, err := d.ReadString()
	if err != nil {
		return StepSpec{}, err
	}
	return StepSpec{
		Transform:         transform,
		Parameters:        map[string]string(params),
		InputsFingerprint: fingerprint,
	}, nil
}
