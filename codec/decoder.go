package codec

import (
	"fmt"

	"github.com/buildweave/statecache/stream"
)

// Decoder is the read-side context of one decode session.
//
// It embeds the primitive stream.Reader and mirrors Encoder: EncodeValue
// pairs with DecodeValue, EncodeShared with DecodeShared, in the same order.
// The decode-side identity table maps ids back to the objects already
// rebuilt this session, so every back-reference resolves to the same Go
// object and the graph's aliasing survives the round trip.
//
// A Decoder is single-use and not safe for concurrent use.
type Decoder struct {
	*stream.Reader

	registry *Registry
	table    []any
}

// NewDecoder starts a decode session reading from r, dispatching through reg.
func NewDecoder(r *stream.Reader, reg *Registry) *Decoder {
	return &Decoder{
		Reader:   r,
		registry: reg,
	}
}

// DecodeValue reads one value written by Encoder.EncodeValue.
//
// The codec is selected by the tag on the wire. A tag no registered codec
// claims yields ErrUnknownTag: the snapshot came from an unknown or newer
// build and must be invalidated, never partially decoded.
func (d *Decoder) DecodeValue() (any, error) {
	tag, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if Tag(tag) == TagNil {
		return nil, nil
	}
	c, err := d.registry.CodecByTag(Tag(tag))
	if err != nil {
		return nil, err
	}
	return c.Decode(d)
}

// DecodeShared reads one shared object written by Encoder.EncodeShared.
//
// A first-occurrence marker reserves the object's id, runs payload to
// rebuild the object, and registers the result under that id. A
// back-reference marker returns the object already registered, without
// running payload. Ids are validated against the table as they arrive;
// any disagreement with the encode-side numbering is corruption.
func (d *Decoder) DecodeShared(payload func(*Decoder) (any, error)) (any, error) {
	marker, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	switch marker {
	case markerRef:
		id, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if id >= uint64(len(d.table)) {
			return nil, fmt.Errorf("codec: back-reference to unknown id %d: %w", id, stream.ErrCorrupt)
		}
		v := d.table[id]
		if v == nil {
			return nil, fmt.Errorf("codec: back-reference to unfinished id %d: %w", id, stream.ErrCorrupt)
		}
		return v, nil

	case markerFirst:
		id, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if id != uint64(len(d.table)) {
			return nil, fmt.Errorf("codec: first occurrence carries id %d, expected %d: %w", id, len(d.table), stream.ErrCorrupt)
		}
		// Reserve the slot so nested shared objects number identically to
		// the encode side.
		d.table = append(d.table, nil)
		v, err := payload(d)
		if err != nil {
			return nil, err
		}
		d.table[id] = v
		return v, nil

	default:
		return nil, fmt.Errorf("codec: unexpected identity marker %d: %w", marker, stream.ErrCorrupt)
	}
}

// SharedCount reports how many shared objects the session has decoded so far.
func (d *Decoder) SharedCount() int {
	return len(d.table)
}
