package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreConformance runs the behavior every backend must share.
func testStoreConformance(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("put and get round trip", func(t *testing.T) {
		s := newStore(t)
		data := []byte{0x62, 0x77, 0x73, 0x63, 0x01, 0xff}

		require.NoError(t, s.Put(ctx, "abc123", data))

		got, err := s.Get(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("get missing entry", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrEntryNotFound)
	})

	t.Run("put replaces existing entry", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Put(ctx, "abc123", []byte("first")))
		require.NoError(t, s.Put(ctx, "abc123", []byte("second")))

		got, err := s.Get(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("delete removes entry", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Put(ctx, "abc123", []byte("data")))
		require.NoError(t, s.Delete(ctx, "abc123"))

		_, err := s.Get(ctx, "abc123")
		assert.ErrorIs(t, err, ErrEntryNotFound)
	})

	t.Run("delete missing entry is a no-op", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Delete(ctx, "missing"))
	})

	t.Run("has", func(t *testing.T) {
		s := newStore(t)

		exists, err := s.Has(ctx, "abc123")
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, s.Put(ctx, "abc123", []byte("data")))

		exists, err = s.Has(ctx, "abc123")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("empty value round trips", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Put(ctx, "abc123", nil))

		got, err := s.Get(ctx, "abc123")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("key validation", func(t *testing.T) {
		s := newStore(t)

		assert.Error(t, s.Put(ctx, "", []byte("data")))
		assert.Error(t, s.Put(ctx, "a/b", []byte("data")))
		assert.Error(t, s.Put(ctx, "..", []byte("data")))
		_, err := s.Get(ctx, "a\\b")
		assert.Error(t, err)
	})
}

func TestMemoryStore(t *testing.T) {
	testStoreConformance(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStoreCopiesEntries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("original")
	require.NoError(t, s.Put(ctx, "abc123", data))
	data[0] = 'X'

	got, err := s.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got, "mutating the caller's slice must not reach the store")

	got[0] = 'Y'
	again, err := s.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again, "mutating a returned slice must not reach the store")
}

func TestFSStore(t *testing.T) {
	testStoreConformance(t, func(t *testing.T) Store {
		s, err := NewFSStore(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestFSStoreLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFSStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "abc123", []byte("data")))

	// Entries shard under the first two key characters.
	_, err = os.Stat(filepath.Join(dir, "ab", "abc123.bin"))
	assert.NoError(t, err)
}

func TestFSStoreShortKey(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a", []byte("data")))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestFSStoreRequiresDir(t *testing.T) {
	_, err := NewFSStore("")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	testStoreConformance(t, func(t *testing.T) Store {
		s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "snapshots.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")

	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "abc123", []byte("data")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	_, err := NewSQLiteStore(context.Background(), "")
	assert.Error(t, err)
}
