// Package document describes the shape of the structured-document store the
// wall is built on: slash-separated collection and document paths, field maps
// and full-result-set snapshots.
package document

import (
	"path"
	"strings"
	"time"
)

// CollectionPath addresses a collection, e.g. "artifacts/app/public/data/wall_messages".
type CollectionPath string

// DocumentPath addresses one document inside a collection.
type DocumentPath string

// Fields holds the field values of a document. Values are JSON-compatible:
// string, bool, float64/int64, nested maps and slices.
type Fields map[string]any

// Document is one stored document together with its store-assigned id.
type Document struct {
	ID     string
	Fields Fields
}

// Snapshot is the complete result set of a collection at ReadAt.
type Snapshot struct {
	Documents []Document
	ReadAt    time.Time
}

// NewCollectionPath joins segments into a collection path.
func NewCollectionPath(segments ...string) CollectionPath {
	return CollectionPath(path.Join(segments...))
}

// Doc returns the path of the document with the given id.
func (c CollectionPath) Doc(id string) DocumentPath {
	return DocumentPath(path.Join(string(c), id))
}

func (c CollectionPath) String() string { return string(c) }

// Collection returns the collection holding the document.
func (d DocumentPath) Collection() CollectionPath {
	return CollectionPath(path.Dir(string(d)))
}

// ID returns the last path segment.
func (d DocumentPath) ID() string {
	return path.Base(string(d))
}

// ValidID reports whether id names a single document inside its collection.
func ValidID(id string) bool {
	return strings.TrimSpace(id) != "" && !strings.Contains(id, "/") && id != "." && id != ".."
}

// Valid reports whether the path has a non-empty collection and id.
func (d DocumentPath) Valid() bool {
	id := d.ID()
	return strings.Contains(string(d), "/") && id != "/" && ValidID(id)
}

func (d DocumentPath) String() string { return string(d) }

// Merge returns a copy of f overwritten by the values of partial.
func (f Fields) Merge(partial Fields) Fields {
	merged := make(Fields, len(f)+len(partial))
	for k, v := range f {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return merged
}
