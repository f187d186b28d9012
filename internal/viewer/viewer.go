// Package viewer is the ebiten debug viewer for a running battle.
package viewer

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Battle-Sense/internal/game"
)

const (
	cellPx      = 16
	borderWidth = 24
	hudLines    = 6
)

// Game adapts a battle to ebiten.Game. The battle is ticked from Update, so
// all simulation state stays on ebiten's update goroutine.
type Game struct {
	battle *game.Battle
	feed   *Feed
	face   text.Face

	width, height int // window
	worldW        int
	worldH        int
	offX, offY    int

	worldBuf  *ebiten.Image
	groundImg *ebiten.Image

	camX, camY float64
	camZoom    float64

	paused    bool
	accum     time.Duration
	selected  *game.Unit
	formation game.FormationType
	showHUD   bool
	status    string // last one-line message in the HUD

	prevKeys  map[ebiten.Key]bool
	prevMouse bool
	prevRight bool
}

// New wraps b in a viewer sized to its battlefield.
func New(b *game.Battle) *Game {
	t := b.Terrain()
	g := &Game{
		battle:   b,
		feed:     NewFeed(),
		face:     text.NewGoXFace(basicfont.Face7x13),
		worldW:   t.Width * cellPx,
		worldH:   t.Height * cellPx,
		offX:     borderWidth,
		offY:     borderWidth,
		camZoom:  1,
		showHUD:  true,
		prevKeys: map[ebiten.Key]bool{},
	}
	g.width = g.worldW + 2*borderWidth + feedPanelWidth
	g.height = max(g.worldH+2*borderWidth+hudLines*feedLineHeight, 480)
	g.camX = float64(g.worldW) / 2
	g.camY = float64(g.worldH) / 2
	g.worldBuf = ebiten.NewImage(g.worldW, g.worldH)
	return g
}

// WindowSize is the preferred window size.
func (g *Game) WindowSize() (int, int) { return g.width, g.height }

func (g *Game) Update() error {
	g.handleInput()
	g.feed.Sync(g.battle.Log)
	if g.paused || g.battle.Phase() != game.PhaseSimulating {
		return nil
	}
	g.accum += time.Second / time.Duration(ebiten.TPS())
	g.accum = advance(g.battle, g.accum)
	return nil
}

// advance runs as many ticks as fit in accum and returns what is left.
func advance(b *game.Battle, accum time.Duration) time.Duration {
	interval := b.TickInterval()
	for accum >= interval && b.Phase() == game.PhaseSimulating {
		accum -= interval
		b.Tick()
	}
	if b.Phase() != game.PhaseSimulating {
		return 0
	}
	return accum
}

// pressed reports a key going down this frame and records it for the next.
func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

func (g *Game) handleInput() {
	cur := map[ebiten.Key]bool{}

	if g.pressed(cur, ebiten.KeySpace) {
		g.paused = !g.paused
	}
	for k, speed := range speedKeys {
		if g.pressed(cur, k) {
			g.battle.SetSpeed(speed)
			g.status = fmt.Sprintf("speed %dx", speed)
		}
	}
	if g.pressed(cur, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.pressed(cur, ebiten.KeyC) {
		g.copyReport()
	}
	if g.pressed(cur, ebiten.KeyR) && g.battle.Phase() == game.PhaseSimulating {
		g.battle.Retreat(game.SideAttacker)
		g.status = "attacker retreat ordered"
	}
	if g.pressed(cur, ebiten.KeyG) && g.selected != nil {
		g.battle.Guard(g.selected, !g.selected.Guarding())
	}
	if g.pressed(cur, ebiten.KeyX) && g.selected != nil {
		g.battle.Special(g.selected)
	}
	if g.pressed(cur, ebiten.KeyF) {
		g.formation = g.formation.Next()
		g.status = "formation " + g.formation.String()
	}
	if g.pressed(cur, ebiten.KeyEscape) && g.selected != nil {
		g.clearSelection()
	}

	// Camera pan and zoom.
	pan := 6.0 / g.camZoom
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.camY -= pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.camY += pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.camX -= pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.camX += pan
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.camZoom *= math.Pow(1.12, wy)
	}
	if g.pressed(cur, ebiten.KeyEqual) {
		g.camZoom *= 1.25
	}
	if g.pressed(cur, ebiten.KeyMinus) {
		g.camZoom /= 1.25
	}
	g.camZoom = min(max(g.camZoom, 1), 4)
	g.clampCamera()

	// Left click selects a unit; right click orders the selected unit.
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !g.prevMouse {
		sx, sy := ebiten.CursorPosition()
		g.handleClick(sx, sy, ebiten.IsKeyPressed(ebiten.KeyShift))
	}
	g.prevMouse = left
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && !g.prevRight && g.selected != nil {
		g.orderAt(ebiten.CursorPosition())
	}
	g.prevRight = right

	g.prevKeys = cur
}

var speedKeys = map[ebiten.Key]int{
	ebiten.Key1: 1,
	ebiten.Key2: 2,
	ebiten.Key4: 4,
}

func (g *Game) clampCamera() {
	halfW := float64(g.worldW) / 2 / g.camZoom
	halfH := float64(g.worldH) / 2 / g.camZoom
	g.camX = min(max(g.camX, halfW), float64(g.worldW)-halfW)
	g.camY = min(max(g.camY, halfH), float64(g.worldH)-halfH)
}

// screenToWorld maps a window position to battlefield cell coordinates.
func (g *Game) screenToWorld(sx, sy int) (float64, float64) {
	wx := (float64(sx-g.offX)-float64(g.worldW)/2)/g.camZoom + g.camX
	wy := (float64(sy-g.offY)-float64(g.worldH)/2)/g.camZoom + g.camY
	return wx / cellPx, wy / cellPx
}

// handleClick selects the unit under the cursor. With add set, the unit
// joins the current selection's control group instead of replacing it.
func (g *Game) handleClick(sx, sy int, add bool) {
	x, y := g.screenToWorld(sx, sy)
	var best *game.Unit
	bestD := 0.75
	for _, u := range g.battle.Units() {
		if !u.Alive() {
			continue
		}
		ux, uy := u.Pos()
		if d := game.Distance(x, y, ux, uy); d < bestD {
			best, bestD = u, d
		}
	}
	if add && best != nil && g.selected != nil && best.Owner() == g.selected.Owner() {
		g.battle.Select(best, true, selectionGroup)
		g.status = fmt.Sprintf("%d in group", len(g.battle.GroupMembers(best.Owner().Side, selectionGroup)))
		return
	}
	g.clearSelection()
	g.selected = best
	if best != nil {
		g.battle.Select(best, true, selectionGroup)
		g.status = "selected " + best.Label()
	}
}

// selectionGroup is the control group mouse selection assigns to.
const selectionGroup = 1

func (g *Game) clearSelection() {
	if g.selected == nil {
		return
	}
	for _, u := range g.battle.GroupMembers(g.selected.Owner().Side, selectionGroup) {
		g.battle.Select(u, false, 0)
	}
	g.battle.Select(g.selected, false, 0)
	g.selected = nil
}

// orderAt sends the selection at an enemy under the cursor, or moves it to
// the clicked cell. A multi-unit selection moves in the current formation.
func (g *Game) orderAt(sx, sy int) {
	x, y := g.screenToWorld(sx, sy)
	c := game.CellOf(x, y)
	group := []*game.Unit{g.selected}
	for _, u := range g.battle.GroupMembers(g.selected.Owner().Side, selectionGroup) {
		if u != g.selected {
			group = append(group, u)
		}
	}

	var target game.Target
	for _, u := range g.battle.Units() {
		if u.Alive() && u.Owner() != g.selected.Owner() && u.Cell() == c {
			target.Unit = u
			break
		}
	}
	if target.Unit == nil {
		for _, bd := range g.battle.Buildings() {
			if !bd.Destroyed() && bd.Owner() != g.selected.Owner() && bd.Rect().Contains(c) {
				target.Building = bd
				break
			}
		}
	}
	if target.Unit != nil || target.Building != nil {
		for _, u := range group {
			g.battle.Attack(u, target)
		}
		return
	}
	if len(group) > 1 {
		g.battle.MoveGroup(group, c.X, c.Y, g.formation)
		return
	}
	g.battle.Move(g.selected, c.X, c.Y)
}

func (g *Game) copyReport() {
	report := g.battle.BattleReport(300)
	if g.selected != nil {
		report = g.battle.UnitReport(g.selected, 300)
	}
	if err := clipboard.WriteAll(report); err != nil {
		slog.Warn("copy report", "err", err)
		g.status = "clipboard unavailable"
		return
	}
	g.status = "report copied"
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})

	snap := g.battle.Snapshot(g.groundImg == nil)
	if g.groundImg == nil {
		g.groundImg = renderGround(snap)
	}

	g.worldBuf.Clear()
	g.worldBuf.DrawImage(g.groundImg, nil)
	drawBattle(g.worldBuf, snap)

	var cam ebiten.DrawImageOptions
	cam.GeoM.Translate(-g.camX, -g.camY)
	cam.GeoM.Scale(g.camZoom, g.camZoom)
	cam.GeoM.Translate(float64(g.worldW)/2+float64(g.offX), float64(g.worldH)/2+float64(g.offY))
	screen.DrawImage(g.worldBuf, &cam)

	ox, oy := float32(g.offX), float32(g.offY)
	vector.StrokeRect(screen, ox-1, oy-1, float32(g.worldW)+2, float32(g.worldH)+2, 2, color.RGBA{R: 65, G: 90, B: 65, A: 255}, false)

	g.feed.Draw(screen, g.face, g.offX+g.worldW+g.offX, g.height)
	if g.showHUD {
		g.drawHUD(screen, snap)
	}
	if snap.Winner != "" {
		msg := "BATTLE OVER: " + snap.Winner + " wins"
		w := len(msg) * 7
		x := g.offX + (g.worldW-w)/2
		vector.FillRect(screen, float32(x-8), float32(g.offY+8), float32(w+16), 20, color.RGBA{A: 200}, false)
		drawText(screen, g.face, msg, x, g.offY+11, color.RGBA{R: 255, G: 220, B: 120, A: 255})
	}
}

func (g *Game) drawHUD(screen *ebiten.Image, snap game.Snapshot) {
	speed := fmt.Sprintf("%dx", snap.Speed)
	if g.paused {
		speed = "PAUSED"
	}
	atk, def := 0, 0
	for _, u := range snap.Units {
		if u.Side == game.SideAttacker.String() {
			atk++
		} else {
			def++
		}
	}
	lines := []string{
		fmt.Sprintf("tick %d  phase %s  speed %s", snap.Tick, snap.Phase, speed),
		fmt.Sprintf("attackers %d  defenders %d  guns %d  mines %d", atk, def, len(snap.Guns), len(snap.Mines)),
		"space=pause 1/2/4=speed R=retreat C=copy report H=hud",
		"click=select shift-click=add right-click=move/attack G=guard X=special",
		fmt.Sprintf("F=formation (%s)  WASD=pan  scroll/-/= zoom", g.formation),
		g.status,
	}
	y := g.offY + g.worldH + 6
	vector.FillRect(screen, float32(g.offX), float32(y-2), float32(g.worldW), float32(len(lines)*feedLineHeight+4), color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	for i, l := range lines {
		drawText(screen, g.face, l, g.offX+4, y+i*feedLineHeight, color.RGBA{R: 190, G: 220, B: 190, A: 255})
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, face, op)
}
