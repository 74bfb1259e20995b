package codec

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry maps declared Go types to codecs for encoding and wire tags to
// codecs for decoding.
//
// Lookup is by exact type: no interface satisfaction walks, no fallback
// chains. A value whose type has no registered codec cannot be encoded.
// Registration normally happens once at startup; Registry is safe for
// concurrent use afterwards.
type Registry struct {
	mu     sync.RWMutex
	byTag  map[Tag]Codec
	byType map[reflect.Type]Codec
}

// NewRegistry creates an empty codec registry.
func NewRegistry() *Registry {
	return &Registry{
		byTag:  make(map[Tag]Codec),
		byType: make(map[reflect.Type]Codec),
	}
}

// Register binds c to its wire tag and to each of the given declared types.
// Encoding a value of any of those types dispatches to c; decoding a value
// prefixed with c's tag does the same.
//
// A codec serving several concrete types (for example a live and a replayed
// form of the same value) lists all of them here. Tags and types are claimed
// exclusively; reusing either fails.
func (r *Registry) Register(c Codec, types ...reflect.Type) error {
	if c == nil {
		return fmt.Errorf("codec: cannot register nil codec")
	}
	if c.Tag() == TagNil {
		return fmt.Errorf("codec: tag %d is reserved for nil", TagNil)
	}
	if len(types) == 0 {
		return fmt.Errorf("codec: tag %d registered without any types", c.Tag())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byTag[c.Tag()]; exists {
		return fmt.Errorf("%w: tag %d", ErrDuplicateTag, c.Tag())
	}
	for _, t := range types {
		if t == nil {
			return fmt.Errorf("codec: cannot register nil type for tag %d", c.Tag())
		}
		if _, exists := r.byType[t]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateType, t)
		}
	}

	r.byTag[c.Tag()] = c
	for _, t := range types {
		r.byType[t] = c
	}
	return nil
}

// CodecFor returns the codec registered for the declared type t.
// It returns ErrNoCodec when t has no registered codec.
func (r *Registry) CodecFor(t reflect.Type) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCodec, t)
	}
	return c, nil
}

// CodecByTag returns the codec registered under the wire tag.
// It returns ErrUnknownTag when no codec claims the tag.
func (r *Registry) CodecByTag(tag Tag) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byTag[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, tag)
	}
	return c, nil
}

// Clear removes all registered codecs.
// This is primarily useful for testing.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byTag = make(map[Tag]Codec)
	r.byType = make(map[reflect.Type]Codec)
}
