package integrity

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDetectsChange(t *testing.T) {
	dir := t.TempDir()
	tracked := writeTestFile(t, dir, "a.jar", "artifact a")

	w, err := NewWatcher(tracked)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	writeTestFile(t, dir, "a.jar", "artifact a v2")

	// Wait for change with timeout.
	select {
	case change := <-w.Changes:
		if change.Kind != ChangeModified {
			t.Errorf("Kind = %d, want ChangeModified", change.Kind)
		}
		if change.File != filepath.Clean(tracked) {
			t.Errorf("File = %q, want %q", change.File, tracked)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcherIgnoresUntrackedFiles(t *testing.T) {
	dir := t.TempDir()
	tracked := writeTestFile(t, dir, "a.jar", "artifact a")

	w, err := NewWatcher(tracked)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// A sibling file in the same directory is not tracked.
	writeTestFile(t, dir, "b.jar", "artifact b")

	select {
	case change := <-w.Changes:
		t.Errorf("unexpected change event: %+v", change)
	case <-time.After(300 * time.Millisecond):
		// Expected: no events for untracked files.
	}
}

func TestWatcherDetectsRemoval(t *testing.T) {
	dir := t.TempDir()
	tracked := writeTestFile(t, dir, "removable.jar", "artifact")

	w, err := NewWatcher(tracked)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.Remove(tracked); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}

	select {
	case change := <-w.Changes:
		if change.Kind != ChangeRemoved {
			t.Errorf("Kind = %d, want ChangeRemoved", change.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for removal event")
	}
}

func TestWatchManifestTracksEveryEntry(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.jar", "artifact a")
	b := writeTestFile(t, dir, "b.jar", "artifact b")

	m, err := Capture([]string{a, b})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	w, err := WatchManifest(m)
	if err != nil {
		t.Fatalf("WatchManifest failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	writeTestFile(t, dir, "b.jar", "artifact b v2")

	select {
	case change := <-w.Changes:
		if change.File != filepath.Clean(b) {
			t.Errorf("File = %q, want %q", change.File, b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}
