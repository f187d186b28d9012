package viewer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Battle-Sense/internal/game"
)

const (
	feedPanelWidth = 340
	feedMaxEntries = 60
	feedLineHeight = 13
)

// feedCategories are the log categories worth showing on screen. Movement
// and path noise stays in the log for reports.
var feedCategories = map[string]bool{
	"order":     true,
	"combat":    true,
	"damage":    true,
	"paralysis": true,
	"mine":      true,
	"rocket":    true,
	"lifecycle": true,
}

// Feed is a ring buffer of recent battle events rendered beside the map.
type Feed struct {
	entries []game.BattleLogEntry
	head    int
	count   int
	seen    int // log entries already consumed
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{entries: make([]game.BattleLogEntry, feedMaxEntries)}
}

// Add appends an entry, overwriting the oldest when full.
func (f *Feed) Add(e game.BattleLogEntry) {
	f.entries[f.head] = e
	f.head = (f.head + 1) % feedMaxEntries
	if f.count < feedMaxEntries {
		f.count++
	}
}

// Sync pulls entries the feed has not seen yet from log.
func (f *Feed) Sync(log *game.BattleLog) {
	fresh := log.Since(f.seen)
	f.seen += len(fresh)
	for _, e := range fresh {
		if feedCategories[e.Category] {
			f.Add(e)
		}
	}
}

// Recent returns entries oldest first.
func (f *Feed) Recent() []game.BattleLogEntry {
	out := make([]game.BattleLogEntry, f.count)
	for i := 0; i < f.count; i++ {
		idx := (f.head - f.count + i + feedMaxEntries) % feedMaxEntries
		out[i] = f.entries[idx]
	}
	return out
}

// Draw renders the feed panel at panelX.
func (f *Feed) Draw(screen *ebiten.Image, face text.Face, panelX, panelH int) {
	px := float32(panelX)
	vector.FillRect(screen, px, 0, feedPanelWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, float32(panelH), 1, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)
	vector.FillRect(screen, px, 0, feedPanelWidth, 18, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	drawText(screen, face, "BATTLE FEED", panelX+8, 3, color.White)

	entries := f.Recent()
	maxVisible := (panelH - 24) / feedLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	y := 22
	for i, e := range entries {
		// Newest few get a highlight row.
		if i >= len(entries)-3 {
			vector.FillRect(screen, px+2, float32(y), feedPanelWidth-4, feedLineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		vector.FillRect(screen, px+5, float32(y+4), 3, 5, sideColor(e.Side), false)
		line := fmt.Sprintf("%4d %-3s %s %s", e.Tick, e.Actor, e.Key, e.Value)
		if len(line) > 52 {
			line = line[:52]
		}
		drawText(screen, face, line, panelX+12, y, color.RGBA{R: 200, G: 210, B: 200, A: 255})
		y += feedLineHeight
	}
}
