package main

import (
	"strings"
	"testing"
	"wish-wall/domain/wall"
	"wish-wall/layout"
	"wish-wall/projection"

	"github.com/stretchr/testify/require"
)

func TestRender_Placeholder(t *testing.T) {
	r := renderer{columns: 80}
	out := r.render(projection.Wall(nil))
	require.Equal(t, projection.WallPlaceholder+"\n", out)
}

func TestRender_Tiles(t *testing.T) {
	req := require.New(t)
	r := renderer{columns: 80}
	view := projection.Wall([]wall.Message{
		{ID: "a", Text: "Peace", Status: wall.Approved, CreatedAt: 2},
		{ID: "b", Text: "A much longer wish that fills the full width of the wall", Status: wall.Approved, CreatedAt: 1},
	})

	out := r.render(view)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n\n")
	req.Len(lines, 2)

	// Newest first; short text is a headline with the gift badge
	first := view.Tiles[0]
	req.Equal(layout.Headline, first.Layout.Font)
	req.Contains(lines[0], "🎁 PEACE")
	req.True(strings.HasPrefix(lines[0], strings.Repeat(" ", first.Layout.OffsetPx/8)+" "))

	// Long text keeps its case and gets the snowflake
	req.Contains(lines[1], "❄ A much longer wish")
	req.GreaterOrEqual(len([]rune(strings.TrimLeft(lines[1], " "))), 80-1)
}
