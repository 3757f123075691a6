// Package projection derives the moderation queue and the wall from a full
// snapshot of the message collection.
// Each call starts from scratch: a new snapshot fully replaces the previous view.
// Does not talk to the store or to viewers.
package projection

import (
	"sort"
	"wish-wall/contract"
	"wish-wall/domain/wall"

	"github.com/samber/lo"
)

// Projector turns a decoded snapshot into a view for one feed.
type Projector func(messages []wall.Message) contract.View

// byCreatedAt orders oldest first, ties broken by id.
func byCreatedAt(messages []wall.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt != messages[j].CreatedAt {
			return messages[i].CreatedAt < messages[j].CreatedAt
		}
		return messages[i].ID < messages[j].ID
	})
}

// byNewest orders newest first, ties broken by id.
func byNewest(messages []wall.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt != messages[j].CreatedAt {
			return messages[i].CreatedAt > messages[j].CreatedAt
		}
		return messages[i].ID < messages[j].ID
	})
}

func withStatus(messages []wall.Message, status wall.Status) []wall.Message {
	return lo.Filter(messages, func(m wall.Message, _ int) bool {
		return m.Status == status
	})
}
