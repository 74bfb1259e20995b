package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Entry records the observed state of a single file at capture time.
type Entry struct {
	Path   string `yaml:"path"`
	Size   int64  `yaml:"size"`
	SHA256 string `yaml:"sha256"`
}

// Manifest is a point-in-time fingerprint of a set of files. A snapshot
// that was written alongside a manifest is only trustworthy while every
// entry still verifies.
type Manifest struct {
	CapturedAt time.Time `yaml:"captured_at"`
	Entries    []Entry   `yaml:"entries"`
}

// ViolationKind describes how a file diverged from its manifest entry.
type ViolationKind int

const (
	ViolationMissing  ViolationKind = iota // File no longer exists
	ViolationResized                       // File size changed
	ViolationModified                      // File content changed
)

// String returns a short name for the violation kind.
func (k ViolationKind) String() string {
	switch k {
	case ViolationMissing:
		return "missing"
	case ViolationResized:
		return "resized"
	case ViolationModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Violation reports one file that no longer matches its manifest entry.
type Violation struct {
	Kind ViolationKind
	Path string
}

// String returns a human-readable description of the violation.
func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Kind)
}

// Capture fingerprints the given files in order. Every file must exist
// and be readable; a capture over files that are already gone would
// produce a manifest that can never verify.
func Capture(files []string) (*Manifest, error) {
	m := &Manifest{
		CapturedAt: time.Now().UTC(),
		Entries:    make([]Entry, 0, len(files)),
	}

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to capture %s: %w", path, err)
		}

		sum, err := hashFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to capture %s: %w", path, err)
		}

		m.Entries = append(m.Entries, Entry{
			Path:   path,
			Size:   info.Size(),
			SHA256: sum,
		})
	}

	return m, nil
}

// Verify re-examines every entry and returns the files that no longer
// match. A nil result means the manifest still holds. Size is compared
// before content, so a resized file is reported without rehashing it.
func (m *Manifest) Verify() []Violation {
	var violations []Violation

	for _, entry := range m.Entries {
		info, err := os.Stat(entry.Path)
		if err != nil {
			violations = append(violations, Violation{Kind: ViolationMissing, Path: entry.Path})
			continue
		}

		if info.Size() != entry.Size {
			violations = append(violations, Violation{Kind: ViolationResized, Path: entry.Path})
			continue
		}

		sum, err := hashFile(entry.Path)
		if err != nil {
			violations = append(violations, Violation{Kind: ViolationMissing, Path: entry.Path})
			continue
		}

		if sum != entry.SHA256 {
			violations = append(violations, Violation{Kind: ViolationModified, Path: entry.Path})
		}
	}

	return violations
}

// Paths returns the tracked file paths in entry order.
func (m *Manifest) Paths() []string {
	paths := make([]string, len(m.Entries))
	for i, entry := range m.Entries {
		paths[i] = entry.Path
	}
	return paths
}

// Encode serializes the manifest for storage next to a snapshot.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return data, nil
}

// ParseManifest decodes a manifest previously produced by Encode.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// hashFile computes the hex-encoded sha256 digest of a file's content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
