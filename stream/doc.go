// Package stream implements the primitive binary layer of snapshot streams.
//
// A snapshot stream is a versioned, append-only byte sequence. It opens with
// a fixed magic marker and a format version, followed by the values the
// caller writes, in order, with no padding or realignment. Decoding is
// strictly sequential: reads must mirror the writes that produced the
// stream, value for value.
//
// # Encoding
//
// Integers use protobuf varint encoding (signed values are zigzagged), so
// small magnitudes stay small on disk. Strings, byte blobs, and file paths
// are length-prefixed. Ordered collections are count-prefixed. Optional
// values carry an explicit one-byte presence marker.
//
// # Writing and reading
//
//	var buf bytes.Buffer
//	w := stream.NewWriter(&buf)
//	w.WriteString("libA")
//	w.WriteFileList([]string{"a.jar", "b.jar"})
//	if err := w.Flush(); err != nil {
//		return err
//	}
//
//	r, err := stream.NewReader(&buf)
//	if err != nil {
//		return err // ErrVersionMismatch for foreign or outdated streams
//	}
//	owner, _ := r.ReadString()
//	files, _ := r.ReadFileList()
//
// # Failure model
//
// NewReader returns ErrVersionMismatch when the header does not match the
// current format; callers treat this as a cache miss, not a defect. All
// other structural anomalies (truncation, malformed varints, implausible
// lengths) surface as errors wrapping ErrCorrupt. Corruption is fatal for
// the whole stream: decoding stops at the first anomaly and nothing already
// read should be trusted.
package stream
