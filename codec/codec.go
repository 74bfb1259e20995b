package codec

import "errors"

// Tag identifies a codec on the wire. Every encoded value is prefixed with
// its codec's tag so the decode side can dispatch without type information.
//
// Tags are part of the persistent format: once a tag has shipped it must keep
// meaning the same value shape, and retired tags must not be reused.
type Tag uint64

// TagNil is reserved for the nil value and cannot be claimed by a codec.
const TagNil Tag = 0

// Sentinel errors for codec registration and dispatch failures.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrNoCodec indicates no codec is registered for a value's type.
	// Encoding fails fast with this error; it is never deferred to decode.
	ErrNoCodec = errors.New("codec: no codec registered for type")

	// ErrUnknownTag indicates the stream carries a tag no registered codec
	// claims. The snapshot was written by an unknown or newer build and must
	// be discarded.
	ErrUnknownTag = errors.New("codec: unrecognized type tag")

	// ErrDuplicateTag indicates a codec registration reused an existing tag.
	ErrDuplicateTag = errors.New("codec: tag already registered")

	// ErrDuplicateType indicates a type was bound to more than one codec.
	ErrDuplicateType = errors.New("codec: type already registered")
)

// Codec translates values of one declared type to and from snapshot streams.
//
// Encode receives the value exactly as it was passed to the encoder; Decode
// must rebuild an equivalent value by mirroring Encode's writes in order.
// Implementations are consulted through a Registry and must be safe for
// concurrent use across encode sessions (the sessions themselves are
// single-threaded).
type Codec interface {
	// Tag returns the codec's stable wire tag.
	Tag() Tag

	// Encode writes value to the session's stream.
	Encode(enc *Encoder, value any) error

	// Decode reads one value written by Encode from the session's stream.
	Decode(dec *Decoder) (any, error)
}
