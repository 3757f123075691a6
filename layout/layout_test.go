package layout

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSeed_Is_FNV1a(t *testing.T) {
	req := require.New(t)
	req.Equal(uint32(0x811c9dc5), Seed(""))
	req.Equal(uint32(0xe40c292c), Seed("a"))
}

func TestFor_Is_Deterministic(t *testing.T) {
	req := require.New(t)
	id := "0f8e2a4c-1b7d-4e0a-9c55-5d1f2b3a4c6e"

	first := For(id, 30, 3)
	for i := 0; i < 10; i++ {
		req.Equal(first, For(id, 30, 3))
	}
}

func TestFor_Width(t *testing.T) {
	req := require.New(t)
	id := "some-id"
	seed := Seed(id)

	req.Equal(Narrow, For(id, 0, 0).Width)
	req.Equal(Narrow, For(id, 14, 0).Width)
	req.Equal(Full, For(id, 51, 0).Width)
	req.Equal(100, For(id, 51, 0).Percent)

	medium := For(id, 15, 0).Width
	if seed%2 == 0 {
		req.Equal(MediumWide, medium)
	} else {
		req.Equal(MediumNarrow, medium)
	}
	req.Equal(medium, For(id, 50, 0).Width)
}

func TestFor_Width_Covers_Both_Medium_Classes(t *testing.T) {
	req := require.New(t)
	seen := map[Width]bool{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		seen[For(id, 30, 0).Width] = true
	}
	req.True(seen[MediumWide])
	req.True(seen[MediumNarrow])
}

func TestFor_Theme_And_Offset_Follow_Seed(t *testing.T) {
	req := require.New(t)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		seed := Seed(id)
		p := For(id, 30, 0)

		req.Equal(Palette[seed%3], p.Theme)
		switch {
		case seed%5 == 0:
			req.Equal(Deep, p.Offset)
			req.Equal(32, p.OffsetPx)
		case seed%3 == 0:
			req.Equal(Flush, p.Offset)
			req.Equal(0, p.OffsetPx)
		default:
			req.Equal(Shallow, p.Offset)
			req.Equal(16, p.OffsetPx)
		}
	}
}

func TestFor_Font(t *testing.T) {
	req := require.New(t)
	req.Equal(Headline, For("x", 19, 0).Font)
	req.Equal(Body, For("x", 20, 0).Font)
}

func TestFor_Entrance(t *testing.T) {
	req := require.New(t)

	// Stagger stops after ten tiles
	req.Equal(time.Duration(0), For("x", 10, 0).Entrance.Delay())
	req.Equal(1800*time.Millisecond, For("x", 10, 9).Entrance.Delay())
	req.Equal(time.Duration(0), For("x", 10, 10).Entrance.Delay())

	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		e := For(id, 10, 0).Entrance
		abs := e.RotateFrom
		if abs < 0 {
			abs = -abs
		}
		req.GreaterOrEqual(abs, 2)
		req.LessOrEqual(abs, 8)
		req.GreaterOrEqual(e.RotateTo, -1)
		req.LessOrEqual(e.RotateTo, 1)
		req.GreaterOrEqual(e.Duration(), 1200*time.Millisecond)
		req.LessOrEqual(e.Duration(), 1500*time.Millisecond)
	}
}

func TestFor_Badge_Alternates(t *testing.T) {
	req := require.New(t)
	req.Equal(Gift, For("x", 10, 0).Badge)
	req.Equal(Snowflake, For("x", 10, 1).Badge)
	req.Equal(Gift, For("x", 10, 2).Badge)
}

func TestForText_Counts_UTF16_Units(t *testing.T) {
	req := require.New(t)
	// 14 units but more bytes
	req.Equal(Narrow, ForText("x", strings.Repeat("é", 14), 0).Width)
	// 8 emoji are 16 units
	req.NotEqual(Narrow, ForText("x", strings.Repeat("🎄", 8), 0).Width)
}

func TestTextLength(t *testing.T) {
	req := require.New(t)
	req.Equal(0, TextLength(""))
	req.Equal(5, TextLength("Noël!"))
	req.Equal(2, TextLength("🎄"))
	req.Equal(4, TextLength("a🎄é"))
}
