// Package codec dispatches object-graph values to type-specific codecs and
// preserves shared references across a snapshot round trip.
//
// The package supplies the three pieces every snapshot session is built
// from:
//
//   - Registry: maps declared Go types to codecs for encoding, and wire
//     tags back to codecs for decoding. Registration happens once at
//     startup; an unregistered type fails at encode time, before any bytes
//     are written.
//
//   - Encoder: the write-side session context. Embeds the primitive
//     stream.Writer and adds tagged dispatch (EncodeValue) and
//     shared-identity tracking (EncodeShared).
//
//   - Decoder: the read-side mirror. Reads must follow encode order
//     exactly; the decoder never scans ahead or skips.
//
// # Shared identity
//
// Graphs in a build's resolved state alias heavily: the same artifact set
// is referenced from many places. EncodeShared writes each distinct
// reference once, assigning it a session-scoped integer id; later
// occurrences write only a back-reference to that id. DecodeShared rebuilds
// the object on first occurrence and returns the identical Go object for
// every back-reference, so aliasing topology (not just value equality)
// survives persistence. Ids start at zero and grow by one per distinct
// object, which doubles as a cheap consistency check: a decoded id that
// disagrees with the table's size means the stream is damaged.
//
// Identity tables live and die with a single Encoder or Decoder. Nothing is
// shared between sessions, so ids from one snapshot mean nothing in
// another.
//
// # Writing a codec
//
// A codec declares a stable wire tag and encodes its value with the
// primitives the contexts embed:
//
//	type pointCodec struct{}
//
//	func (pointCodec) Tag() codec.Tag { return 7 }
//
//	func (pointCodec) Encode(enc *codec.Encoder, value any) error {
//		p := value.(*Point)
//		if err := enc.WriteInt64(p.X); err != nil {
//			return err
//		}
//		return enc.WriteInt64(p.Y)
//	}
//
//	func (pointCodec) Decode(dec *codec.Decoder) (any, error) {
//		x, err := dec.ReadInt64()
//		if err != nil {
//			return nil, err
//		}
//		y, err := dec.ReadInt64()
//		if err != nil {
//			return nil, err
//		}
//		return &Point{X: x, Y: y}, nil
//	}
//
//	reg := codec.NewRegistry()
//	reg.Register(pointCodec{}, reflect.TypeOf((*Point)(nil)))
//
// # Failure model
//
// Encoding a type with no codec fails with ErrNoCodec; this is a build
// configuration defect, reported before the snapshot is written. Decoding a
// tag with no codec fails with ErrUnknownTag, and identity-table
// inconsistencies fail with errors wrapping stream.ErrCorrupt; both mean
// the snapshot must be discarded.
package codec
