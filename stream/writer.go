package stream

import (
	"bufio"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Writer serializes primitive values to a snapshot stream.
//
// Values are written as a flat, append-only sequence with no framing beyond
// each value's own encoding: integers are protobuf varints, strings and byte
// blobs are length-prefixed, collections are count-prefixed. A stream written
// by Writer must be consumed by Reader in exactly the same order.
//
// Writer buffers internally; call Flush before using the underlying
// io.Writer's output. Writer is not safe for concurrent use.
type Writer struct {
	w       *bufio.Writer
	scratch []byte
}

// NewWriter creates a Writer over w and buffers the stream header
// (magic bytes plus format version). Header bytes reach w on Flush.
func NewWriter(w io.Writer) *Writer {
	sw := &Writer{
		w:       bufio.NewWriter(w),
		scratch: make([]byte, 0, 2*maxVarintLen),
	}
	sw.w.Write(magic[:])
	sw.scratch = protowire.AppendVarint(sw.scratch[:0], FormatVersion)
	sw.w.Write(sw.scratch)
	return sw
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush snapshot stream: %w", err)
	}
	return nil
}

// WriteUvarint writes an unsigned integer as a varint.
func (w *Writer) WriteUvarint(v uint64) error {
	w.scratch = protowire.AppendVarint(w.scratch[:0], v)
	_, err := w.w.Write(w.scratch)
	return err
}

// WriteInt64 writes a signed integer using zigzag varint encoding, keeping
// small negative values compact.
func (w *Writer) WriteInt64(v int64) error {
	return w.WriteUvarint(protowire.EncodeZigZag(v))
}

// WriteBool writes a boolean as a single byte.
func (w *Writer) WriteBool(v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	return w.w.WriteByte(b)
}

// WriteCount writes a non-negative collection size.
func (w *Writer) WriteCount(n int) error {
	if n < 0 {
		return fmt.Errorf("stream: negative count %d", n)
	}
	return w.WriteUvarint(uint64(n))
}

// WriteString writes a length-prefixed string.
func (w *Writer) WriteString(s string) error {
	w.scratch = protowire.AppendString(w.scratch[:0], s)
	_, err := w.w.Write(w.scratch)
	return err
}

// WriteNullableString writes a presence marker followed by the string when
// s is non-nil.
func (w *Writer) WriteNullableString(s *string) error {
	if s == nil {
		return w.WriteBool(false)
	}
	if err := w.WriteBool(true); err != nil {
		return err
	}
	return w.WriteString(*s)
}

// WriteBytes writes a length-prefixed byte blob.
func (w *Writer) WriteBytes(b []byte) error {
	w.scratch = protowire.AppendVarint(w.scratch[:0], uint64(len(b)))
	if _, err := w.w.Write(w.scratch); err != nil {
		return err
	}
	_, err := w.w.Write(b)
	return err
}

// WriteFile writes a file path. Paths travel verbatim; they are not
// normalized or resolved.
func (w *Writer) WriteFile(path string) error {
	return w.WriteString(path)
}

// WriteStringList writes a count-prefixed ordered list of strings.
func (w *Writer) WriteStringList(values []string) error {
	if err := w.WriteCount(len(values)); err != nil {
		return err
	}
	for _, s := range values {
		if err := w.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

// WriteFileList writes a count-prefixed ordered list of file paths,
// preserving order.
func (w *Writer) WriteFileList(paths []string) error {
	if err := w.WriteCount(len(paths)); err != nil {
		return err
	}
	for _, p := range paths {
		if err := w.WriteFile(p); err != nil {
			return err
		}
	}
	return nil
}
