package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectionPath_Doc(t *testing.T) {
	req := require.New(t)
	collection := NewCollectionPath("artifacts", "app", "public", "data", "wall_messages")

	doc := collection.Doc("abc")

	req.Equal(DocumentPath("artifacts/app/public/data/wall_messages/abc"), doc)
	req.Equal(collection, doc.Collection())
	req.Equal("abc", doc.ID())
	req.True(doc.Valid())
}

func TestDocumentPath_Valid(t *testing.T) {
	req := require.New(t)
	req.False(DocumentPath("").Valid())
	req.False(DocumentPath("orphan").Valid())
	req.False(DocumentPath("/").Valid())
	req.False(DocumentPath("a/..").Valid())
}

func TestValidID(t *testing.T) {
	req := require.New(t)
	req.True(ValidID("abc"))
	req.True(ValidID("a.b"))
	req.True(ValidID("..."))
	req.False(ValidID(""))
	req.False(ValidID("  "))
	req.False(ValidID("."))
	req.False(ValidID(".."))
	req.False(ValidID("a/b"))
}

func TestFields_Merge(t *testing.T) {
	req := require.New(t)
	original := Fields{"text": "hello", "status": "pending"}

	merged := original.Merge(Fields{"status": "approved"})

	// Then only the partial field changed
	req.Equal(Fields{"text": "hello", "status": "approved"}, merged)
	// And the original is untouched
	req.Equal("pending", original["status"])
}
