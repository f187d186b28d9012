package main

import (
	"fmt"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Battle-Sense/internal/game"
)

// glyph is one terminal cell of the battlefield.
type glyph struct {
	r     rune
	style tcell.Style
}

var groundGlyphs = map[game.GroundType]glyph{
	game.GroundOpen:  {'.', tcell.StyleDefault.Foreground(tcell.ColorDarkOliveGreen)},
	game.GroundRough: {',', tcell.StyleDefault.Foreground(tcell.ColorOlive)},
	game.GroundMud:   {'~', tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown)},
	game.GroundWater: {'=', tcell.StyleDefault.Foreground(tcell.ColorSteelBlue)},
	game.GroundRock:  {'^', tcell.StyleDefault.Foreground(tcell.ColorGray)},
}

var sideStyles = map[string]tcell.Style{
	game.SideAttacker.String(): tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	game.SideDefender.String(): tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue).Bold(true),
}

var kindRunes = map[string]rune{
	"tank":            't',
	"artillery":       'a',
	"rocket_launcher": 'r',
	"paralyzer":       'p',
	"minelayer":       'm',
	"kamikaze":        'k',
	"repair_tank":     'h',
}

// glyphForUnit picks the letter for a unit kind; unknown kinds use their
// first letter.
func glyphForUnit(u game.UnitView) glyph {
	r, ok := kindRunes[u.Kind]
	if !ok {
		r = '?'
		for _, c := range u.Kind {
			r = unicode.ToLower(c)
			break
		}
	}
	st := sideStyles[u.Side]
	if u.State == game.UnitStateParalyzed.String() {
		st = st.Foreground(tcell.ColorPurple)
	}
	return glyph{r: r, style: st}
}

// compose lays the snapshot out as rows of glyphs. ground may be shorter
// than the map (unknown cells render as open).
func compose(s game.Snapshot, ground []game.GroundType) [][]glyph {
	grid := make([][]glyph, s.Height)
	for y := range grid {
		grid[y] = make([]glyph, s.Width)
		for x := range grid[y] {
			g := game.GroundOpen
			if i := y*s.Width + x; i < len(ground) {
				g = ground[i]
			}
			grid[y][x] = groundGlyphs[g]
		}
	}
	set := func(x, y int, g glyph) {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) {
			grid[y][x] = g
		}
	}

	for _, b := range s.Buildings {
		g := glyph{'#', tcell.StyleDefault.Foreground(tcell.ColorLightSlateGray)}
		switch {
		case b.Destroyed:
			g = glyph{'x', tcell.StyleDefault.Foreground(tcell.ColorDimGray)}
		case b.Unfinished:
			g = glyph{'+', tcell.StyleDefault.Foreground(tcell.ColorLightSlateGray)}
		}
		for _, c := range b.Rect.Cells() {
			set(c.X, c.Y, g)
		}
	}
	for _, gn := range s.Guns {
		c := game.CellOf(gn.X, gn.Y)
		set(c.X, c.Y, glyph{'T', sideStyles[game.SideDefender.String()]})
	}
	for _, m := range s.Mines {
		set(m.X, m.Y, glyph{'*', tcell.StyleDefault.Foreground(tcell.ColorYellow)})
	}
	for _, u := range s.Units {
		c := game.CellOf(u.X, u.Y)
		set(c.X, c.Y, glyphForUnit(u))
	}
	for _, r := range s.Rockets {
		c := game.CellOf(r.X, r.Y)
		set(c.X, c.Y, glyph{'!', tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)})
	}
	for _, e := range s.Explosions {
		c := game.CellOf(e.X, e.Y)
		set(c.X, c.Y, glyph{'@', tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)})
	}
	return grid
}

// draw renders the map and a status block below it.
func draw(screen tcell.Screen, s game.Snapshot, ground []game.GroundType, status string) {
	screen.Clear()
	grid := compose(s, ground)
	for y, row := range grid {
		for x, g := range row {
			screen.SetContent(x, y, g.r, nil, g.style)
		}
	}

	atk, def := 0, 0
	for _, u := range s.Units {
		if u.Side == game.SideAttacker.String() {
			atk++
		} else {
			def++
		}
	}
	lines := []string{
		fmt.Sprintf("tick %d  %s  speed %dx  attackers %d  defenders %d  guns %d", s.Tick, s.Phase, s.Speed, atk, def, len(s.Guns)),
		"q quit  space pause  1/2/4 speed  r attacker retreat",
		status,
	}
	if s.Winner != "" {
		lines = append(lines, "BATTLE OVER: "+s.Winner+" wins")
	}
	for i, l := range lines {
		putString(screen, 0, s.Height+1+i, l, tcell.StyleDefault)
	}
	screen.Show()
}

func putString(screen tcell.Screen, x, y int, s string, st tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, st)
		x++
	}
}
