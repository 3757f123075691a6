package projection

import (
	"wish-wall/contract"
	"wish-wall/domain/wall"

	"github.com/samber/lo"
)

const QueuePlaceholder = "No pending wishes."

// Hinter annotates pending messages for the moderator. Hints are advisory only.
type Hinter interface {
	Hints(text string) (flagged []string, lang string)
}

type QueueItem struct {
	wall.Message
	Flagged []string `json:"flagged,omitempty"`
	Lang    string   `json:"lang,omitempty"`
}

// QueueView lists pending messages, oldest first.
type QueueView struct {
	Items       []QueueItem `json:"items"`
	Placeholder string      `json:"placeholder,omitempty"`
}

func (QueueView) Feed() contract.FeedName { return contract.QueueFeed }

// Queue keeps the pending messages. hinter may be nil.
func Queue(messages []wall.Message, hinter Hinter) QueueView {
	pending := withStatus(messages, wall.Pending)
	byCreatedAt(pending)

	items := lo.Map(pending, func(m wall.Message, _ int) QueueItem {
		item := QueueItem{Message: m}
		if hinter != nil {
			item.Flagged, item.Lang = hinter.Hints(m.Text)
		}
		return item
	})
	view := QueueView{Items: items}
	if len(items) == 0 {
		view.Placeholder = QueuePlaceholder
	}
	return view
}

// QueueProjector binds a hinter into a Projector.
func QueueProjector(hinter Hinter) Projector {
	return func(messages []wall.Message) contract.View {
		return Queue(messages, hinter)
	}
}
