package viewer

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Battle-Sense/internal/game"
)

var groundColors = map[game.GroundType]color.RGBA{
	game.GroundOpen:  {R: 62, G: 78, B: 48, A: 255},
	game.GroundRough: {R: 86, G: 84, B: 58, A: 255},
	game.GroundMud:   {R: 74, G: 58, B: 40, A: 255},
	game.GroundWater: {R: 38, G: 62, B: 96, A: 255},
	game.GroundRock:  {R: 92, G: 92, B: 96, A: 255},
}

var (
	attackerColor = color.RGBA{R: 210, G: 70, B: 70, A: 255}
	defenderColor = color.RGBA{R: 70, G: 110, B: 210, A: 255}
	neutralColor  = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

func sideColor(side string) color.RGBA {
	switch side {
	case game.SideAttacker.String():
		return attackerColor
	case game.SideDefender.String():
		return defenderColor
	default:
		return neutralColor
	}
}

// px converts a battlefield coordinate to a world-buffer pixel.
func px(v float64) float32 { return float32(v * cellPx) }

// renderGround paints the static terrain once.
func renderGround(s game.Snapshot) *ebiten.Image {
	img := ebiten.NewImage(s.Width*cellPx, s.Height*cellPx)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			g := game.GroundOpen
			if i := y*s.Width + x; i < len(s.Ground) {
				g = s.Ground[i]
			}
			vector.FillRect(img, float32(x*cellPx), float32(y*cellPx), cellPx, cellPx, groundColors[g], false)
		}
	}
	grid := color.RGBA{R: 0, G: 0, B: 0, A: 28}
	for x := 0; x <= s.Width; x++ {
		vector.StrokeLine(img, float32(x*cellPx), 0, float32(x*cellPx), float32(s.Height*cellPx), 1, grid, false)
	}
	for y := 0; y <= s.Height; y++ {
		vector.StrokeLine(img, 0, float32(y*cellPx), float32(s.Width*cellPx), float32(y*cellPx), 1, grid, false)
	}
	return img
}

// drawBattle draws everything that changes tick to tick.
func drawBattle(dst *ebiten.Image, s game.Snapshot) {
	for _, b := range s.Buildings {
		drawBuilding(dst, b)
	}
	for _, m := range s.Mines {
		cx, cy := m.Center()
		c := color.RGBA{R: 230, G: 200, B: 60, A: 220}
		vector.StrokeLine(dst, px(cx)-3, px(cy)-3, px(cx)+3, px(cy)+3, 1.5, c, false)
		vector.StrokeLine(dst, px(cx)-3, px(cy)+3, px(cx)+3, px(cy)-3, 1.5, c, false)
	}
	for _, g := range s.Guns {
		vector.FillRect(dst, px(g.X)-3, px(g.Y)-3, 6, 6, color.RGBA{R: 40, G: 60, B: 110, A: 255}, false)
		drawHeading(dst, g.X, g.Y, g.Heading, 7, color.RGBA{R: 170, G: 190, B: 230, A: 255})
	}
	for _, u := range s.Units {
		drawUnit(dst, u)
	}
	for _, r := range s.Rockets {
		vector.FillCircle(dst, px(r.X), px(r.Y), 2.5, color.RGBA{R: 255, G: 240, B: 180, A: 255}, true)
	}
	for _, e := range s.Explosions {
		if e.Phases <= 0 {
			continue
		}
		f := float32(e.Phase+1) / float32(e.Phases)
		alpha := uint8(230 * (1 - f*0.7))
		vector.FillCircle(dst, px(e.X), px(e.Y), 4+f*10, color.RGBA{R: 255, G: 150, B: 40, A: alpha}, true)
	}
}

func drawBuilding(dst *ebiten.Image, b game.BuildingView) {
	x, y := float32(b.Rect.X*cellPx), float32(b.Rect.Y*cellPx)
	w, h := float32(b.Rect.W*cellPx), float32(b.Rect.H*cellPx)
	if b.Destroyed {
		vector.FillRect(dst, x, y, w, h, color.RGBA{R: 30, G: 28, B: 26, A: 160}, false)
		return
	}
	fill := color.RGBA{R: 60, G: 70, B: 90, A: 255}
	if b.Unfinished {
		fill.A = 120
	}
	vector.FillRect(dst, x+1, y+1, w-2, h-2, fill, false)
	vector.StrokeRect(dst, x+1, y+1, w-2, h-2, 1, defenderColor, false)
	drawHPBar(dst, x+2, y+2, w-4, b.HP/b.MaxHP)
}

func drawUnit(dst *ebiten.Image, u game.UnitView) {
	c := sideColor(u.Side)
	if u.State == game.UnitStateParalyzed.String() {
		c = color.RGBA{R: 180, G: 120, B: 220, A: 255}
	}
	x, y := px(u.X), px(u.Y)
	if u.Selected {
		vector.StrokeCircle(dst, x, y, 8, 1.5, color.RGBA{R: 255, G: 255, B: 120, A: 255}, true)
	}
	vector.FillCircle(dst, x, y, 5, c, true)
	drawHeading(dst, u.X, u.Y, u.Heading, 8, color.RGBA{R: 240, G: 240, B: 240, A: 255})
	if u.MaxHP > 0 {
		drawHPBar(dst, x-6, y-9, 12, u.HP/u.MaxHP)
	}
}

func drawHeading(dst *ebiten.Image, x, y, heading float64, length float32, c color.Color) {
	dx := float32(math.Cos(heading)) * length
	dy := float32(math.Sin(heading)) * length
	vector.StrokeLine(dst, px(x), px(y), px(x)+dx, px(y)+dy, 1.5, c, true)
}

func drawHPBar(dst *ebiten.Image, x, y, w float32, frac float64) {
	frac = min(max(frac, 0), 1)
	vector.FillRect(dst, x, y, w, 2, color.RGBA{R: 40, G: 0, B: 0, A: 200}, false)
	c := color.RGBA{R: 80, G: 200, B: 80, A: 255}
	if frac < 0.35 {
		c = color.RGBA{R: 220, G: 80, B: 60, A: 255}
	}
	vector.FillRect(dst, x, y, w*float32(frac), 2, c, false)
}
