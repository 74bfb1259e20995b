// Package integrity fingerprints the files a snapshot depends on and
// detects when they drift after capture.
//
// A snapshot records paths to files on disk, not their contents. The
// snapshot only replays correctly while those files still hold the
// bytes they held at capture time. This package provides two layers of
// protection: a Manifest that fingerprints files with sha256 so a later
// session can verify them before trusting a snapshot, and a Watcher
// that reports changes to tracked files while a session is running.
//
// # Manifests
//
// Capture fingerprints a file set and Verify re-checks it:
//
//	manifest, err := integrity.Capture(files)
//	if err != nil {
//		return err
//	}
//
//	// Later, before reusing the snapshot:
//	if violations := manifest.Verify(); len(violations) > 0 {
//		for _, v := range violations {
//			log.Printf("stale input: %s", v)
//		}
//		// Discard the snapshot and recompute.
//	}
//
// Manifests serialize with Encode and ParseManifest so they can be
// stored next to the snapshot they guard.
//
// # Watching
//
// A Watcher monitors a fixed file set and emits debounced change
// events on its Changes channel:
//
//	w, err := integrity.WatchManifest(manifest)
//	if err != nil {
//		return err
//	}
//	if err := w.Start(); err != nil {
//		return err
//	}
//	defer w.Stop()
//
//	for change := range w.Changes {
//		log.Printf("input changed: %s", change.File)
//	}
package integrity
