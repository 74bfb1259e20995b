package stream

import "errors"

// FormatVersion identifies the snapshot stream layout produced by this
// package. Readers refuse streams written with any other version; callers
// treat the refusal as a cache miss and rebuild the snapshot.
const FormatVersion = 1

// magic marks the first four bytes of every snapshot stream.
var magic = [4]byte{'b', 'w', 's', 'c'}

// Sentinel errors for stream validation failures.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrVersionMismatch indicates the stream was written by an incompatible
	// format version (or is not a snapshot stream at all). The snapshot is
	// unusable but the condition is expected across upgrades.
	ErrVersionMismatch = errors.New("stream: incompatible snapshot format")

	// ErrCorrupt indicates the stream is truncated or structurally damaged.
	// Decoding stops at the first anomaly; no partial recovery is attempted.
	ErrCorrupt = errors.New("stream: corrupt snapshot data")
)

// maxChunkLen bounds any single length-prefixed value. A length above this
// limit is treated as corruption rather than honored as an allocation size.
const maxChunkLen = 1 << 30

// maxVarintLen is the longest encoded varint this package will consume.
const maxVarintLen = 10
