// Package wall contains the core concepts of the wish wall.
// Messages are validated by the submission service and only their status
// changes after creation.
package wall

import (
	"fmt"
	"time"

	"wish-wall/domain/document"
	"wish-wall/errors"
)

const (
	CollectionName = "wall_messages"

	FieldText      = "text"
	FieldStatus    = "status"
	FieldCreatedAt = "createdAt"
)

type Status string

const (
	Pending  Status = "pending"
	Approved Status = "approved"
	Rejected Status = "rejected"
)

// ParseStatus returns the Status matching s.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case Pending, Approved, Rejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", errors.ErrMalformedDocument, s)
	}
}

// Message is a single wish.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Status    Status `json:"status"`
	CreatedAt int64  `json:"createdAt"` // milliseconds since epoch
}

// Collection returns the collection holding the public wall messages of a deployment.
func Collection(appID string) document.CollectionPath {
	return document.NewCollectionPath("artifacts", appID, "public", "data", CollectionName)
}

// NewFields builds the fields of a freshly submitted wish.
func NewFields(text string, at time.Time) document.Fields {
	return document.Fields{
		FieldText:      text,
		FieldStatus:    string(Pending),
		FieldCreatedAt: at.UnixMilli(),
	}
}

// StatusFields builds the single-field update applied by moderation.
func StatusFields(status Status) document.Fields {
	return document.Fields{FieldStatus: string(status)}
}

// FromDocument decodes a stored document into a Message.
func FromDocument(doc document.Document) (Message, error) {
	text, ok := doc.Fields[FieldText].(string)
	if !ok {
		return Message{}, fmt.Errorf("%w: %s has no text", errors.ErrMalformedDocument, doc.ID)
	}
	rawStatus, ok := doc.Fields[FieldStatus].(string)
	if !ok {
		return Message{}, fmt.Errorf("%w: %s has no status", errors.ErrMalformedDocument, doc.ID)
	}
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return Message{}, err
	}
	createdAt, err := toMillis(doc.Fields[FieldCreatedAt])
	if err != nil {
		return Message{}, fmt.Errorf("%w: %s: %v", errors.ErrMalformedDocument, doc.ID, err)
	}
	return Message{
		ID:        doc.ID,
		Text:      text,
		Status:    status,
		CreatedAt: createdAt,
	}, nil
}

// CreatedTime returns CreatedAt as a time.Time.
func (m Message) CreatedTime() time.Time {
	return time.UnixMilli(m.CreatedAt).UTC()
}

func toMillis(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case nil:
		return 0, fmt.Errorf("createdAt is missing")
	default:
		return 0, fmt.Errorf("createdAt has type %T", v)
	}
}
