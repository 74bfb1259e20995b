package artifact

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// ComponentID identifies the external component that owns an artifact set,
// for example "com.example:libA:1.2".
type ComponentID string

// String returns the identifier as a plain string.
func (id ComponentID) String() string {
	return string(id)
}

// Attributes describe the variant an artifact set was resolved for, such as
// usage, category, or target environment. Keys and values are opaque to the
// snapshot engine; they travel through persistence unchanged.
type Attributes map[string]string

// Keys returns the attribute keys in sorted order. Snapshots encode
// attributes in this order so identical attribute sets produce identical
// bytes.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Equal reports whether both attribute sets hold the same pairs.
func (a Attributes) Equal(other Attributes) bool {
	return maps.Equal(a, other)
}

// Clone returns an independent copy of the attributes.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	return Attributes(maps.Clone(map[string]string(a)))
}

// ArtifactID identifies one artifact within its owning component. The pair
// of owner and file name is stable across builds, which makes it usable as
// a snapshot-independent handle.
type ArtifactID struct {
	Owner    ComponentID
	FileName string
}

// String renders the id as "owner:fileName".
func (id ArtifactID) String() string {
	return fmt.Sprintf("%s:%s", id.Owner, id.FileName)
}

// NoClassifier is the explicit absence of a classifier in an artifact name.
// Names derived from captured files always carry it: the snapshot records
// file names only, and a classifier cannot be recovered from a file name
// alone.
const NoClassifier = ""

// ArtifactName is the display decomposition of an artifact's file name.
type ArtifactName struct {
	// Name is the file name without its extension.
	Name string

	// Extension is the suffix after the final dot, or "" when the file name
	// has none.
	Extension string

	// Classifier distinguishes secondary artifacts (sources, javadoc).
	// Replayed artifacts always carry NoClassifier.
	Classifier string
}

// ParseArtifactName derives an artifact name from a file name. The name and
// extension split on the final dot; a leading dot does not start an
// extension. The classifier is always NoClassifier: nothing in a file name
// identifies one.
func ParseArtifactName(fileName string) ArtifactName {
	base := filepath.Base(fileName)
	ext := ""
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		ext = base[i+1:]
		base = base[:i]
	}
	return ArtifactName{Name: base, Extension: ext, Classifier: NoClassifier}
}

// Artifact is one resolvable file together with its identity and display
// name. Artifacts are plain values: copying one never shares state.
type Artifact struct {
	ID   ArtifactID
	Name ArtifactName

	// File is the artifact's path on disk, exactly as captured.
	File string
}
