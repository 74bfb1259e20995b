package stream

import (
	"bufio"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Reader deserializes primitive values from a snapshot stream.
//
// Reads must mirror the writes that produced the stream, in the same order
// and with the same types. Any structural anomaly (truncation, implausible
// length, malformed varint) fails with an error wrapping ErrCorrupt and the
// stream must be abandoned. Reader is not safe for concurrent use.
type Reader struct {
	r *bufio.Reader
}

// NewReader creates a Reader over r and validates the stream header.
// It returns ErrVersionMismatch when the stream carries a different format
// version or does not start with the snapshot magic bytes.
func NewReader(r io.Reader) (*Reader, error) {
	sr := &Reader{r: bufio.NewReader(r)}
	if err := sr.readHeader(); err != nil {
		return nil, err
	}
	return sr, nil
}

func (r *Reader) readHeader() error {
	var m [4]byte
	if _, err := io.ReadFull(r.r, m[:]); err != nil {
		return r.corrupt("read header", err)
	}
	if m != magic {
		return fmt.Errorf("stream: unrecognized header: %w", ErrVersionMismatch)
	}
	version, err := r.ReadUvarint()
	if err != nil {
		return err
	}
	if version != FormatVersion {
		return fmt.Errorf("stream: snapshot version %d, expected %d: %w", version, FormatVersion, ErrVersionMismatch)
	}
	return nil
}

// corrupt wraps cause as a corruption error for the given operation.
func (r *Reader) corrupt(op string, cause error) error {
	if cause == nil {
		return fmt.Errorf("stream: %s: %w", op, ErrCorrupt)
	}
	return fmt.Errorf("stream: %s: %v: %w", op, cause, ErrCorrupt)
}

// ReadUvarint reads an unsigned varint.
func (r *Reader) ReadUvarint() (uint64, error) {
	buf, _ := r.r.Peek(maxVarintLen)
	if len(buf) == 0 {
		return 0, r.corrupt("read varint", io.ErrUnexpectedEOF)
	}
	v, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, r.corrupt("read varint", protowire.ParseError(n))
	}
	if _, err := r.r.Discard(n); err != nil {
		return 0, r.corrupt("read varint", err)
	}
	return v, nil
}

// ReadInt64 reads a zigzag-encoded signed integer.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}
	return protowire.DecodeZigZag(v), nil
}

// ReadBool reads a boolean. Any byte other than 0 or 1 is corruption.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return false, r.corrupt("read bool", err)
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, r.corrupt("read bool", fmt.Errorf("unexpected byte %#x", b))
	}
}

// ReadCount reads a collection size written by WriteCount.
func (r *Reader) ReadCount() (int, error) {
	v, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if v > maxChunkLen {
		return 0, r.corrupt("read count", fmt.Errorf("implausible count %d", v))
	}
	return int(v), nil
}

// ReadString reads a length-prefixed string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return "", err
	}
	if n > maxChunkLen {
		return "", r.corrupt("read string", fmt.Errorf("implausible length %d", n))
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", r.corrupt("read string", err)
	}
	return string(buf), nil
}

// ReadNullableString reads a presence marker and, when present, the string.
// Absent values return nil.
func (r *Reader) ReadNullableString() (*string, error) {
	present, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	s, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadBytes reads a length-prefixed byte blob.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if n > maxChunkLen {
		return nil, r.corrupt("read bytes", fmt.Errorf("implausible length %d", n))
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, r.corrupt("read bytes", err)
	}
	return buf, nil
}

// ReadFile reads a file path written by WriteFile.
func (r *Reader) ReadFile() (string, error) {
	return r.ReadString()
}

// ReadStringList reads a count-prefixed list of strings.
func (r *Reader) ReadStringList() ([]string, error) {
	n, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	values := make([]string, n)
	for i := range values {
		values[i], err = r.ReadString()
		if err != nil {
			return nil, err
		}
	}
	return values, nil
}

// ReadFileList reads a count-prefixed list of file paths in written order.
func (r *Reader) ReadFileList() ([]string, error) {
	n, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	paths := make([]string, n)
	for i := range paths {
		paths[i], err = r.ReadFile()
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}
