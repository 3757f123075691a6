package projection

import (
	"testing"
	"wish-wall/contract"
	"wish-wall/domain/wall"
	"wish-wall/layout"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type stubHinter struct{}

func (stubHinter) Hints(text string) ([]string, string) {
	if text == "you idiot" {
		return []string{"idiot"}, "en"
	}
	return nil, ""
}

func messages() []wall.Message {
	return []wall.Message{
		{ID: "c", Text: "Joy to the world", Status: wall.Approved, CreatedAt: 300},
		{ID: "a", Text: "Peace on Earth", Status: wall.Pending, CreatedAt: 200},
		{ID: "b", Text: "you idiot", Status: wall.Pending, CreatedAt: 100},
		{ID: "d", Text: "Let it snow", Status: wall.Rejected, CreatedAt: 50},
		{ID: "e", Text: "Merry Christmas to all of you and your families", Status: wall.Approved, CreatedAt: 400},
	}
}

func TestQueue_Keeps_Pending_Oldest_First(t *testing.T) {
	req := require.New(t)

	view := Queue(messages(), stubHinter{})

	req.Equal(contract.QueueFeed, view.Feed())
	req.Empty(view.Placeholder)
	req.Equal([]string{"b", "a"}, lo.Map(view.Items, func(i QueueItem, _ int) string { return i.ID }))
	req.Equal([]string{"idiot"}, view.Items[0].Flagged)
	req.Equal("en", view.Items[0].Lang)
	req.Nil(view.Items[1].Flagged)
}

func TestQueue_Without_Hinter(t *testing.T) {
	req := require.New(t)

	view := Queue(messages(), nil)

	req.Len(view.Items, 2)
	req.Nil(view.Items[0].Flagged)
}

func TestQueue_Empty_Shows_Placeholder(t *testing.T) {
	req := require.New(t)

	view := Queue(nil, nil)

	req.Empty(view.Items)
	req.Equal(QueuePlaceholder, view.Placeholder)
}

func TestWall_Keeps_Approved_Newest_First(t *testing.T) {
	req := require.New(t)

	view := Wall(messages())

	req.Equal(contract.WallFeed, view.Feed())
	req.Empty(view.Placeholder)
	req.Equal([]string{"e", "c"}, lo.Map(view.Tiles, func(tl Tile, _ int) string { return tl.ID }))
	req.Equal(layout.ForText("e", view.Tiles[0].Text, 0), view.Tiles[0].Layout)
	req.Equal(layout.ForText("c", view.Tiles[1].Text, 1), view.Tiles[1].Layout)
	req.Equal(layout.Full, view.Tiles[0].Layout.Width)
}

func TestWall_Empty_Shows_Placeholder(t *testing.T) {
	req := require.New(t)

	view := Wall([]wall.Message{{ID: "a", Text: "pending", Status: wall.Pending, CreatedAt: 1}})

	req.Empty(view.Tiles)
	req.Equal(WallPlaceholder, view.Placeholder)
}

func TestTieBreak_Is_Independent_Of_Input_Order(t *testing.T) {
	req := require.New(t)
	x := wall.Message{ID: "x", Text: "one", Status: wall.Pending, CreatedAt: 10}
	y := wall.Message{ID: "y", Text: "two", Status: wall.Pending, CreatedAt: 10}

	first := Queue([]wall.Message{x, y}, nil)
	second := Queue([]wall.Message{y, x}, nil)

	req.Equal(first, second)
	req.Equal("x", first.Items[0].ID)

	x.Status, y.Status = wall.Approved, wall.Approved
	req.Equal(Wall([]wall.Message{x, y}), Wall([]wall.Message{y, x}))
	req.Equal("x", Wall([]wall.Message{y, x}).Tiles[0].ID)
}

func TestProjectors(t *testing.T) {
	req := require.New(t)

	req.Equal(Queue(messages(), nil), QueueProjector(nil)(messages()))
	req.Equal(Wall(messages()), WallProjector()(messages()))
}
