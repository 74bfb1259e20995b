package integrity

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // Tracked file written or replaced
	ChangeRemoved                    // Tracked file deleted
)

// Change represents a detected change to a tracked file.
type Change struct {
	Kind ChangeKind
	File string // Cleaned path as passed to NewWatcher
}

// Watcher monitors a fixed set of files for changes using fsnotify.
// It watches the parent directories rather than the files themselves,
// which keeps editors that replace files via rename visible.
type Watcher struct {
	Changes <-chan Change // Read-only external channel

	changes chan Change // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
	tracked map[string]struct{}
}

// NewWatcher creates a watcher over the given files. The set is fixed;
// files added to the watched directories later are ignored.
func NewWatcher(files ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	tracked := make(map[string]struct{}, len(files))
	for _, f := range files {
		tracked[filepath.Clean(f)] = struct{}{}
	}

	ch := make(chan Change, 16)
	w := &Watcher{
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
		tracked: tracked,
	}
	return w, nil
}

// WatchManifest creates a watcher over every file a manifest tracks.
func WatchManifest(m *Manifest) (*Watcher, error) {
	return NewWatcher(m.Paths()...)
}

// Start begins watching the parent directories of the tracked files.
func (w *Watcher) Start() error {
	dirs := make(map[string]struct{})
	for f := range w.tracked {
		dirs[filepath.Dir(f)] = struct{}{}
	}

	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: track last event time per file.
	const debounce = 100 * time.Millisecond
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				// Drain pending on close.
				for file := range pending {
					w.emitChange(file)
				}
				return
			}

			name := filepath.Clean(event.Name)
			if !w.isTracked(name) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[name] = time.Now()
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= debounce {
					w.emitChange(file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore watch errors; they're non-fatal.
		}
	}
}

func (w *Watcher) isTracked(name string) bool {
	_, ok := w.tracked[name]
	return ok
}

func (w *Watcher) emitChange(file string) {
	if _, err := os.Stat(file); err != nil {
		w.changes <- Change{
			Kind: ChangeRemoved,
			File: file,
		}
		return
	}

	w.changes <- Change{
		Kind: ChangeModified,
		File: file,
	}
}
