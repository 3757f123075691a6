// Package layout derives the hand-placed look of each wall tile from the
// message id, so every display renders the same wall without coordination.
package layout

import (
	"fmt"
	"hash/fnv"
	"time"
	"unicode/utf16"
)

const (
	narrowBelow   = 15
	fullAbove     = 50
	headlineBelow = 20

	staggerStep     = 200 * time.Millisecond
	staggeredTiles  = 10
	baseDuration    = 1200 * time.Millisecond
	durationStep    = 100 * time.Millisecond
	durationVariety = 4
)

type Width string

const (
	Narrow       Width = "narrow"
	MediumWide   Width = "medium-wide"
	MediumNarrow Width = "medium-narrow"
	Full         Width = "full"
)

// Percent is the share of the wall row a tile takes.
func (w Width) Percent() int {
	switch w {
	case Narrow:
		return 45
	case MediumWide:
		return 55
	case MediumNarrow:
		return 40
	default:
		return 100
	}
}

type Theme struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Border     string `json:"border"`
	Text       string `json:"text"`
}

// Palette holds exactly the three tile themes.
var Palette = [3]Theme{
	{Name: "crimson", Background: "#b91c1c", Border: "#fef2f2", Text: "#ffffff"},
	{Name: "pine", Background: "#166534", Border: "#f0fdf4", Text: "#ffffff"},
	{Name: "slate", Background: "#1e293b", Border: "#facc15", Text: "#ffffff"},
}

type Offset string

const (
	Deep    Offset = "deep"
	Flush   Offset = "flush"
	Shallow Offset = "shallow"
)

// Pixels is the top margin of a tile.
func (o Offset) Pixels() int {
	switch o {
	case Deep:
		return 32
	case Flush:
		return 0
	default:
		return 16
	}
}

type Font string

const (
	Headline Font = "headline"
	Body     Font = "body"
)

type Badge string

const (
	Gift      Badge = "gift"
	Snowflake Badge = "snowflake"
)

// Entrance describes the drop-in animation of a tile.
type Entrance struct {
	RotateFrom int `json:"rotateFrom"` // degrees
	RotateTo   int `json:"rotateTo"`
	DurationMs int `json:"durationMs"`
	DelayMs    int `json:"delayMs"`
}

func (e Entrance) Duration() time.Duration { return time.Duration(e.DurationMs) * time.Millisecond }

func (e Entrance) Delay() time.Duration { return time.Duration(e.DelayMs) * time.Millisecond }

// Profile is the full visual placement of one tile.
type Profile struct {
	Seed     uint32   `json:"seed"`
	Width    Width    `json:"width"`
	Percent  int      `json:"percent"`
	Theme    Theme    `json:"theme"`
	Offset   Offset   `json:"offset"`
	OffsetPx int      `json:"offsetPx"`
	Font     Font     `json:"font"`
	Entrance Entrance `json:"entrance"`
	Badge    Badge    `json:"badge"`
}

// Seed is the 32-bit FNV-1a hash of the id.
func Seed(id string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32()
}

// For computes the profile of the tile at position idx (0 being the newest)
// showing a text of textLen UTF-16 code units. Everything but the stagger delay and
// the badge depends only on id and textLen.
func For(id string, textLen int, idx int) Profile {
	seed := Seed(id)
	width := widthFor(seed, textLen)
	offset := offsetFor(seed)
	return Profile{
		Seed:     seed,
		Width:    width,
		Percent:  width.Percent(),
		Theme:    Palette[seed%uint32(len(Palette))],
		Offset:   offset,
		OffsetPx: offset.Pixels(),
		Font:     fontFor(textLen),
		Entrance: entranceFor(seed, idx),
		Badge:    badgeFor(idx),
	}
}

// ForText is For with the length counted in UTF-16 code units, the way
// browsers measure strings, so every client picks the same width and font.
func ForText(id, text string, idx int) Profile {
	return For(id, TextLength(text), idx)
}

// TextLength counts text in UTF-16 code units. Runes outside the basic
// multilingual plane, such as most emoji, count twice.
func TextLength(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return n
}

func widthFor(seed uint32, textLen int) Width {
	switch {
	case textLen < narrowBelow:
		return Narrow
	case textLen > fullAbove:
		return Full
	case seed%2 == 0:
		return MediumWide
	default:
		return MediumNarrow
	}
}

func offsetFor(seed uint32) Offset {
	switch {
	case seed%5 == 0:
		return Deep
	case seed%3 == 0:
		return Flush
	default:
		return Shallow
	}
}

func fontFor(textLen int) Font {
	if textLen < headlineBelow {
		return Headline
	}
	return Body
}

// entranceFor tilts the tile by 2 to 8 degrees either way and lets it
// settle within one degree of straight.
func entranceFor(seed uint32, idx int) Entrance {
	tilt := 2 + int(seed%7)
	if seed%2 == 1 {
		tilt = -tilt
	}
	var delay time.Duration
	if idx >= 0 && idx < staggeredTiles {
		delay = time.Duration(idx) * staggerStep
	}
	return Entrance{
		RotateFrom: tilt,
		RotateTo:   int((seed>>3)%3) - 1,
		DurationMs: int((baseDuration + time.Duration(seed%durationVariety)*durationStep).Milliseconds()),
		DelayMs:    int(delay.Milliseconds()),
	}
}

func badgeFor(idx int) Badge {
	if idx%2 == 0 {
		return Gift
	}
	return Snowflake
}

func (p Profile) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", p.Width, p.Theme.Name, p.Offset, p.Font)
}
