package statecache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/buildweave/statecache/artifact"
	"github.com/buildweave/statecache/codec"
	"github.com/buildweave/statecache/config"
	"github.com/buildweave/statecache/store"
	"github.com/buildweave/statecache/stream"
)

// stubSource yields a fixed artifact list, standing in for a resolution engine.
type stubSource struct {
	artifacts []artifact.Artifact
}

func (s *stubSource) VisitArtifacts(fn func(artifact.Artifact) error) error {
	for _, a := range s.artifacts {
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

func testArtifact(owner artifact.ComponentID, file string) artifact.Artifact {
	fileName := filepath.Base(file)
	return artifact.Artifact{
		ID:   artifact.ArtifactID{Owner: owner, FileName: fileName},
		Name: artifact.ParseArtifactName(fileName),
		File: file,
	}
}

const testOwner = artifact.ComponentID("com.example:lib-a:1.2.0")

func testLiveSet(t *testing.T) *artifact.TransformedSet {
	t.Helper()

	step, err := artifact.NewStep("minify", map[string]string{"level": "high"}, "sha256:abc123")
	if err != nil {
		t.Fatalf("NewStep failed: %v", err)
	}

	set, err := artifact.NewTransformedSet(
		testOwner,
		artifact.Attributes{"usage": "java-runtime"},
		&stubSource{artifacts: []artifact.Artifact{
			testArtifact(testOwner, "/repo/lib-a/a.jar"),
			testArtifact(testOwner, "/repo/lib-a/b.jar"),
		}},
		[]artifact.BoundStep{{Step: step}},
	)
	if err != nil {
		t.Fatalf("NewTransformedSet failed: %v", err)
	}
	return set
}

func newTestCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()

	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	c, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCacheSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if err := c.Save(ctx, "abc123", testLiveSet(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	v, err := c.Load(ctx, "abc123")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	set, ok := v.(*artifact.FixedSet)
	if !ok {
		t.Fatalf("Load() = %T, want *artifact.FixedSet", v)
	}
	if set.OwnerID() != testOwner {
		t.Errorf("OwnerID() = %q, want %q", set.OwnerID(), testOwner)
	}
	if got := set.TargetAttributes()["usage"]; got != "java-runtime" {
		t.Errorf("TargetAttributes()[usage] = %q, want %q", got, "java-runtime")
	}

	wantFiles := []string{"/repo/lib-a/a.jar", "/repo/lib-a/b.jar"}
	files := set.Files()
	if len(files) != len(wantFiles) {
		t.Fatalf("len(Files()) = %d, want %d", len(files), len(wantFiles))
	}
	for i, want := range wantFiles {
		if files[i] != want {
			t.Errorf("Files()[%d] = %q, want %q", i, files[i], want)
		}
	}

	steps := set.Steps()
	if len(steps) != 1 {
		t.Fatalf("len(Steps()) = %d, want 1", len(steps))
	}
	if steps[0].Transform() != "minify" {
		t.Errorf("Transform() = %q, want %q", steps[0].Transform(), "minify")
	}
	if got := steps[0].Parameters()["level"]; got != "high" {
		t.Errorf("Parameters()[level] = %q, want %q", got, "high")
	}
}

func TestCacheLoadMissingEntry(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	_, err := c.Load(ctx, "missing")
	if !IsMiss(err) {
		t.Fatalf("Load() error = %v, want a miss", err)
	}
	if !errors.Is(err, &CacheError{Kind: KindMiss}) {
		t.Errorf("error kind = %s, want %s", errKind(err), KindMiss)
	}
}

func TestCacheLoadOrCompute(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	computeCalls := 0
	compute := func(ctx context.Context) (any, error) {
		computeCalls++
		return testLiveSet(t), nil
	}

	v, err := c.LoadOrCompute(ctx, "abc123", compute)
	if err != nil {
		t.Fatalf("LoadOrCompute failed: %v", err)
	}
	if computeCalls != 1 {
		t.Fatalf("compute calls = %d, want 1", computeCalls)
	}
	if _, ok := v.(*artifact.TransformedSet); !ok {
		t.Errorf("first LoadOrCompute returned %T, want the computed *artifact.TransformedSet", v)
	}

	// Second call replays the snapshot without recomputing.
	v, err = c.LoadOrCompute(ctx, "abc123", compute)
	if err != nil {
		t.Fatalf("LoadOrCompute failed: %v", err)
	}
	if computeCalls != 1 {
		t.Errorf("compute calls = %d, want 1", computeCalls)
	}
	if _, ok := v.(*artifact.FixedSet); !ok {
		t.Errorf("second LoadOrCompute returned %T, want *artifact.FixedSet", v)
	}
}

func TestCacheLoadOrComputeError(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	computeErr := errors.New("resolution failed")
	_, err := c.LoadOrCompute(ctx, "abc123", func(ctx context.Context) (any, error) {
		return nil, computeErr
	})
	if !errors.Is(err, computeErr) {
		t.Fatalf("LoadOrCompute() error = %v, want to wrap %v", err, computeErr)
	}
}

func TestCacheSaveUnregisteredType(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	type opaque struct{ n int }
	err := c.Save(ctx, "abc123", &opaque{n: 7})
	if err == nil {
		t.Fatal("Save succeeded for an unregistered type")
	}
	if !errors.Is(err, codec.ErrNoCodec) {
		t.Errorf("Save() error = %v, want to wrap codec.ErrNoCodec", err)
	}
	if IsMiss(err) {
		t.Error("an unsupported value must not read as a miss")
	}

	// Nothing was written under the key.
	if _, err := c.Load(ctx, "abc123"); !IsMiss(err) {
		t.Errorf("Load() after failed save = %v, want a miss", err)
	}
}

func TestCacheCorruptSnapshotInvalidated(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	c := newTestCache(t, WithStore(s))

	if err := c.Save(ctx, "abc123", testLiveSet(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Truncate the stored snapshot mid-payload.
	data, err := s.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if err := s.Put(ctx, "abc123", data[:len(data)-3]); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	_, err = c.Load(ctx, "abc123")
	if !IsMiss(err) {
		t.Fatalf("Load() error = %v, want a miss", err)
	}
	if !errors.Is(err, &CacheError{Kind: KindCorrupt}) {
		t.Errorf("error kind = %s, want %s", errKind(err), KindCorrupt)
	}
	if !errors.Is(err, stream.ErrCorrupt) {
		t.Errorf("Load() error = %v, want to wrap stream.ErrCorrupt", err)
	}

	// The unusable entry was deleted.
	exists, err := s.Has(ctx, "abc123")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if exists {
		t.Error("corrupt entry still present after load")
	}
}

func TestCacheVersionMismatchInvalidated(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	c := newTestCache(t, WithStore(s))

	if err := c.Save(ctx, "abc123", testLiveSet(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Bump the format version byte after the magic.
	data, err := s.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	data[4] = stream.FormatVersion + 1
	if err := s.Put(ctx, "abc123", data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	_, err = c.Load(ctx, "abc123")
	if !IsMiss(err) {
		t.Fatalf("Load() error = %v, want a miss", err)
	}
	if !errors.Is(err, &CacheError{Kind: KindVersionMismatch}) {
		t.Errorf("error kind = %s, want %s", errKind(err), KindVersionMismatch)
	}

	exists, err := s.Has(ctx, "abc123")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if exists {
		t.Error("version-skewed entry still present after load")
	}
}

func TestCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if err := c.Save(ctx, "abc123", testLiveSet(t)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := c.Invalidate(ctx, "abc123"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, err := c.Load(ctx, "abc123"); !IsMiss(err) {
		t.Errorf("Load() after Invalidate = %v, want a miss", err)
	}

	// Invalidating an absent entry is fine.
	if err := c.Invalidate(ctx, "missing"); err != nil {
		t.Errorf("Invalidate(missing) = %v, want nil", err)
	}
}

func TestCacheClose(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}

	if err := c.Save(ctx, "abc123", testLiveSet(t)); !errors.Is(err, ErrClosed) {
		t.Errorf("Save after Close = %v, want ErrClosed", err)
	}
	if _, err := c.Load(ctx, "abc123"); !errors.Is(err, ErrClosed) {
		t.Errorf("Load after Close = %v, want ErrClosed", err)
	}
	if err := c.Invalidate(ctx, "abc123"); !errors.Is(err, ErrClosed) {
		t.Errorf("Invalidate after Close = %v, want ErrClosed", err)
	}
}

func TestCacheIntegrity(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a := filepath.Join(dir, "a.jar")
	if err := os.WriteFile(a, []byte("artifact a"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	b := filepath.Join(dir, "b.jar")
	if err := os.WriteFile(b, []byte("artifact b"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	set, err := artifact.NewFixedSet(testOwner, artifact.Attributes{"usage": "java-runtime"}, []string{a, b}, nil)
	if err != nil {
		t.Fatalf("NewFixedSet failed: %v", err)
	}

	s := store.NewMemoryStore()
	c := newTestCache(t, WithStore(s), WithIntegrityChecks(true))

	if err := c.Save(ctx, "abc123", set); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Untouched inputs: the snapshot replays.
	if _, err := c.Load(ctx, "abc123"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Changing an input invalidates the snapshot.
	if err := os.WriteFile(b, []byte("artifact B"), 0644); err != nil {
		t.Fatalf("failed to modify file: %v", err)
	}

	_, err = c.Load(ctx, "abc123")
	if !IsMiss(err) {
		t.Fatalf("Load() error = %v, want a miss", err)
	}
	if !errors.Is(err, &CacheError{Kind: KindIntegrity}) {
		t.Errorf("error kind = %s, want %s", errKind(err), KindIntegrity)
	}

	exists, err := s.Has(ctx, "abc123")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if exists {
		t.Error("stale entry still present after load")
	}
}

func TestCacheHealth(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if status := c.Health(ctx); !status.IsHealthy() {
		t.Errorf("Health() = %s (%s), want healthy", status.State, status.Message)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if status := c.Health(ctx); !status.IsUnhealthy() {
		t.Errorf("Health() after Close = %s, want unhealthy", status.State)
	}
}

func TestCacheRegistryExtension(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	// The default registry handles artifact sets; unknown types stay
	// rejected until a codec is registered.
	if c.Registry() == nil {
		t.Fatal("Registry() = nil")
	}
	if err := c.Save(ctx, "abc123", testLiveSet(t)); err != nil {
		t.Fatalf("Save with default registry failed: %v", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("memory backend", func(t *testing.T) {
		cfg := &config.Config{Store: &config.StoreConfig{Backend: "memory"}}

		c, err := NewFromConfig(ctx, cfg, WithLogger(logger))
		if err != nil {
			t.Fatalf("NewFromConfig failed: %v", err)
		}
		defer c.Close()

		if err := c.Save(ctx, "abc123", testLiveSet(t)); err != nil {
			t.Errorf("Save failed: %v", err)
		}
	})

	t.Run("fs backend", func(t *testing.T) {
		cfg := &config.Config{Store: &config.StoreConfig{
			Backend: "fs",
			Dir:     t.TempDir(),
		}}

		c, err := NewFromConfig(ctx, cfg, WithLogger(logger))
		if err != nil {
			t.Fatalf("NewFromConfig failed: %v", err)
		}
		defer c.Close()

		if err := c.Save(ctx, "abc123", testLiveSet(t)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if _, err := c.Load(ctx, "abc123"); err != nil {
			t.Errorf("Load failed: %v", err)
		}
	})

	t.Run("sqlite backend", func(t *testing.T) {
		cfg := &config.Config{Store: &config.StoreConfig{
			Backend: "sqlite",
			Path:    filepath.Join(t.TempDir(), "snapshots.db"),
		}}

		c, err := NewFromConfig(ctx, cfg, WithLogger(logger))
		if err != nil {
			t.Fatalf("NewFromConfig failed: %v", err)
		}
		defer c.Close()

		if err := c.Save(ctx, "abc123", testLiveSet(t)); err != nil {
			t.Errorf("Save failed: %v", err)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &config.Config{Store: &config.StoreConfig{Backend: "tape"}}

		_, err := NewFromConfig(ctx, cfg)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("NewFromConfig() error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("nil config", func(t *testing.T) {
		if _, err := NewFromConfig(ctx, nil); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("NewFromConfig(nil) error = %v, want ErrInvalidConfig", err)
		}
	})
}
