package projection

import (
	"wish-wall/contract"
	"wish-wall/domain/wall"
	"wish-wall/layout"

	"github.com/samber/lo"
)

const WallPlaceholder = "Waiting for wishes to fall from the sky..."

type Tile struct {
	wall.Message
	Layout layout.Profile `json:"layout"`
}

// WallView lists approved messages, newest first, each with its placement.
type WallView struct {
	Tiles       []Tile `json:"tiles"`
	Placeholder string `json:"placeholder,omitempty"`
}

func (WallView) Feed() contract.FeedName { return contract.WallFeed }

func Wall(messages []wall.Message) WallView {
	approved := withStatus(messages, wall.Approved)
	byNewest(approved)

	tiles := lo.Map(approved, func(m wall.Message, idx int) Tile {
		return Tile{Message: m, Layout: layout.ForText(m.ID, m.Text, idx)}
	})
	view := WallView{Tiles: tiles}
	if len(tiles) == 0 {
		view.Placeholder = WallPlaceholder
	}
	return view
}

func WallProjector() Projector {
	return func(messages []wall.Message) contract.View {
		return Wall(messages)
	}
}
