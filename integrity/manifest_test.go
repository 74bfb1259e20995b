package integrity

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestCaptureAndVerifyClean(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.jar", "artifact a")
	b := writeTestFile(t, dir, "b.jar", "artifact b")

	m, err := Capture([]string{a, b})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if len(m.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(m.Entries))
	}
	if m.Entries[0].Path != a || m.Entries[1].Path != b {
		t.Errorf("entries out of order: %v", m.Paths())
	}
	if m.Entries[0].Size != int64(len("artifact a")) {
		t.Errorf("Entries[0].Size = %d, want %d", m.Entries[0].Size, len("artifact a"))
	}
	if len(m.Entries[0].SHA256) != 64 {
		t.Errorf("Entries[0].SHA256 = %q, want 64 hex chars", m.Entries[0].SHA256)
	}
	if m.CapturedAt.IsZero() {
		t.Error("CapturedAt is zero")
	}

	if violations := m.Verify(); len(violations) != 0 {
		t.Errorf("Verify() = %v, want none", violations)
	}
}

func TestCaptureMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := Capture([]string{filepath.Join(dir, "gone.jar")})
	if err == nil {
		t.Fatal("Capture succeeded for a missing file")
	}
}

func TestVerifyDetectsModification(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.jar", "artifact a")

	m, err := Capture([]string{a})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	// Same size, different content.
	writeTestFile(t, dir, "a.jar", "artifact X")

	violations := m.Verify()
	if len(violations) != 1 {
		t.Fatalf("Verify() = %v, want one violation", violations)
	}
	if violations[0].Kind != ViolationModified {
		t.Errorf("Kind = %v, want modified", violations[0].Kind)
	}
	if violations[0].Path != a {
		t.Errorf("Path = %q, want %q", violations[0].Path, a)
	}
}

func TestVerifyDetectsResize(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.jar", "artifact a")

	m, err := Capture([]string{a})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	writeTestFile(t, dir, "a.jar", "artifact a plus more")

	violations := m.Verify()
	if len(violations) != 1 {
		t.Fatalf("Verify() = %v, want one violation", violations)
	}
	if violations[0].Kind != ViolationResized {
		t.Errorf("Kind = %v, want resized", violations[0].Kind)
	}
}

func TestVerifyDetectsMissing(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.jar", "artifact a")
	b := writeTestFile(t, dir, "b.jar", "artifact b")

	m, err := Capture([]string{a, b})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if err := os.Remove(a); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}

	violations := m.Verify()
	if len(violations) != 1 {
		t.Fatalf("Verify() = %v, want one violation", violations)
	}
	if violations[0].Kind != ViolationMissing || violations[0].Path != a {
		t.Errorf("violation = %v, want missing %s", violations[0], a)
	}
}

func TestManifestEncodeParse(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.jar", "artifact a")

	m, err := Capture([]string{a})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	data, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	parsed, err := ParseManifest(data)
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}

	if len(parsed.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(parsed.Entries))
	}
	if parsed.Entries[0] != m.Entries[0] {
		t.Errorf("entry = %+v, want %+v", parsed.Entries[0], m.Entries[0])
	}
	if !parsed.CapturedAt.Equal(m.CapturedAt) {
		t.Errorf("CapturedAt = %v, want %v", parsed.CapturedAt, m.CapturedAt)
	}

	if violations := parsed.Verify(); len(violations) != 0 {
		t.Errorf("Verify() after round trip = %v, want none", violations)
	}
}

func TestParseManifestRejectsGarbage(t *testing.T) {
	if _, err := ParseManifest([]byte("\t{not yaml")); err == nil {
		t.Fatal("ParseManifest accepted garbage")
	}
}

func TestViolationString(t *testing.T) {
	v := Violation{Kind: ViolationModified, Path: "/repo/a.jar"}
	if got := v.String(); got != "/repo/a.jar: modified" {
		t.Errorf("String() = %q", got)
	}
}
