package codec

import (
	"fmt"
	"reflect"

	"github.com/buildweave/statecache/stream"
)

// Identity markers distinguish the first occurrence of a shared object from
// back-references to it. They precede the object's id on the wire.
const (
	markerRef   = 0
	markerFirst = 1
)

// Encoder is the write-side context of one encode session.
//
// It embeds the primitive stream.Writer, so codecs write scalars, strings,
// and collections directly, and adds registry dispatch (EncodeValue) and
// shared-identity tracking (EncodeShared). The identity table is owned by
// this session alone and ids are never reused within it.
//
// An Encoder is single-use and not safe for concurrent use: one goroutine
// drives the whole session, then discards it.
type Encoder struct {
	*stream.Writer

	registry *Registry
	ids      map[any]uint64
	next     uint64
}

// NewEncoder starts an encode session writing to w, dispatching through reg.
func NewEncoder(w *stream.Writer, reg *Registry) *Encoder {
	return &Encoder{
		Writer:   w,
		registry: reg,
		ids:      make(map[any]uint64),
	}
}

// EncodeValue writes value prefixed with its codec's tag.
//
// The codec is resolved from the value's declared type before anything is
// written, so an unsupported value fails fast and leaves the stream
// untouched. nil is written with the reserved nil tag and no payload.
func (e *Encoder) EncodeValue(value any) error {
	if value == nil {
		return e.WriteUvarint(uint64(TagNil))
	}
	c, err := e.registry.CodecFor(reflect.TypeOf(value))
	if err != nil {
		return err
	}
	if err := e.WriteUvarint(uint64(c.Tag())); err != nil {
		return err
	}
	return c.Encode(e, value)
}

// EncodeShared writes value at most once per session.
//
// The first time a reference is seen it is assigned the next id, a
// first-occurrence marker and the id are written, and payload runs to write
// the object's content. Every later call with the same reference writes only
// a back-reference marker and the existing id; payload does not run again.
//
// Identity is reference identity, not value equality: two equal but distinct
// objects encode as two payloads. Values must be comparable (in practice,
// pointers to graph nodes). Graphs must be acyclic through shared values; a
// payload cannot reach back to an object whose payload is still being
// written.
func (e *Encoder) EncodeShared(value any, payload func(*Encoder) error) error {
	if value == nil {
		return fmt.Errorf("codec: cannot share nil value")
	}
	if !reflect.TypeOf(value).Comparable() {
		return fmt.Errorf("codec: shared value of type %T is not comparable", value)
	}

	if id, ok := e.ids[value]; ok {
		if err := e.WriteUvarint(markerRef); err != nil {
			return err
		}
		return e.WriteUvarint(id)
	}

	id := e.next
	e.next++
	e.ids[value] = id

	if err := e.WriteUvarint(markerFirst); err != nil {
		return err
	}
	if err := e.WriteUvarint(id); err != nil {
		return err
	}
	return payload(e)
}

// SharedCount reports how many distinct objects the session has assigned
// identities to so far.
func (e *Encoder) SharedCount() int {
	return len(e.ids)
}
