package game

import (
	"fmt"
	"math"
)

// moveUnit advances a unit along its path by one tick's worth of travel.
// A unit whose next waypoint is held by another unit backs off for the
// yield window and then replans toward its goal.
func (b *Battle) moveUnit(u *Unit) {
	side := u.owner.Side.String()
	if u.yield > 0 {
		u.yield--
		if u.yield == 0 {
			u.path = nil
			if u.hasGoal {
				u.requestPlan(u.goal)
				b.Log.Add(b.tick, u.label, side, "move", "replan", fmtCell(u.goal), 0)
			}
		}
		return
	}
	if len(u.path) == 0 {
		return
	}
	if b.index.OccupiedByOther(u.path[0], u) {
		u.yield = b.rules.YieldTicks
		b.Log.Add(b.tick, u.label, side, "move", "yield", fmtCell(u.path[0]), float64(u.yield))
		return
	}

	budget := float64(b.rules.TickDuration) / u.kind.MoveSpeed * b.terrain.MoveMul(u.cell)
	first := true
	for budget > 1e-12 && len(u.path) > 0 {
		wp := u.path[0]
		if !first && b.index.OccupiedByOther(wp, u) {
			break
		}
		first = false
		wx, wy := wp.Center()
		dist := Distance(u.x, u.y, wx, wy)
		if dist > 1e-9 {
			u.heading = AngleTo(u.x, u.y, wx, wy)
		}
		if dist <= budget {
			u.x, u.y = wx, wy
			budget -= dist
			u.path = u.path[1:]
		} else {
			u.x += (wx - u.x) / dist * budget
			u.y += (wy - u.y) / dist * budget
			budget = 0
		}
		b.syncCell(u)
		if !u.Alive() {
			return
		}
	}
	b.Log.AddVerbose(b.tick, u.label, side, "move", "position", fmt.Sprintf("(%.2f,%.2f)", u.x, u.y), 0)

	if len(u.path) > 0 {
		return
	}
	b.Log.Add(b.tick, u.label, side, "move", "arrived", fmtCell(u.cell), 0)
	if u.target.IsZero() {
		u.hasGoal = false
	}
	if u.retreating {
		b.resumeRetreat(u)
	}
}

// syncCell moves u between location index buckets when its rounded
// position changes cell, and springs any enemy mine in the new cell.
func (b *Battle) syncCell(u *Unit) {
	c := CellOf(u.x, u.y)
	if c == u.cell {
		return
	}
	b.index.Move(u, u.cell, c)
	u.cell = c
	b.triggerMine(u, c)
}

// triggerMine detonates an enemy mine at c on u. Mines fire once.
func (b *Battle) triggerMine(u *Unit, c Cell) {
	m, ok := b.mines[c]
	if !ok || m.Owner == u.owner {
		return
	}
	delete(b.mines, c)
	x, y := c.Center()
	b.explosions = append(b.explosions, &Explosion{X: x, Y: y, Phases: b.rules.ExplosionPhases})
	b.Log.Add(b.tick, u.label, u.owner.Side.String(), "mine", "triggered", fmtCell(c), m.Damage)
	b.damageUnit(u, m.Damage)
}

// --- retreat ---

// beginRetreat sends every unit of side to the nearest map edge. Only the
// first retreat of a battle counts.
func (b *Battle) beginRetreat(side Side) {
	if side != SideAttacker && side != SideDefender {
		return
	}
	if b.retreat != SideNone {
		b.Log.Add(b.tick, "--", side.String(), "order", "dropped", "retreat already under way", 0)
		return
	}
	b.retreat = side
	b.Log.Add(b.tick, "--", side.String(), "order", "retreat", "", 0)
	for _, u := range b.units {
		if !u.Alive() || u.owner.Side != side {
			continue
		}
		if u.paralyzedBy != nil {
			u.paralyzedBy = nil
			u.paralysis = 0
		}
		u.clearOrders()
		u.retreating = true
		if b.onEdge(u.cell) {
			continue
		}
		u.requestPlan(b.nearestEdge(u.cell))
	}
}

// resumeRetreat withdraws a retreating unit standing on the edge, or plans
// its route there again. An edge cell that stays out of reach ends in an
// empty plan, which withdraws the unit in place.
func (b *Battle) resumeRetreat(u *Unit) {
	if b.onEdge(u.cell) {
		b.removeUnit(u, true)
		return
	}
	u.requestPlan(b.nearestEdge(u.cell))
	b.Log.Add(b.tick, u.label, u.owner.Side.String(), "move", "replan", "retreat to edge", 0)
}

func (b *Battle) onEdge(c Cell) bool {
	return c.X == 0 || c.Y == 0 || c.X == b.terrain.Width-1 || c.Y == b.terrain.Height-1
}

// nearestEdge returns the closest passable border cell to c.
func (b *Battle) nearestEdge(c Cell) Cell {
	w, h := b.terrain.Width, b.terrain.Height
	best := Cell{X: 0, Y: c.Y}
	bestD := math.Inf(1)
	consider := func(e Cell) {
		if !b.staticPassable(e) {
			return
		}
		d := Octile(c, e)
		if d < bestD {
			best, bestD = e, d
		}
	}
	for x := 0; x < w; x++ {
		consider(Cell{X: x, Y: 0})
		consider(Cell{X: x, Y: h - 1})
	}
	for y := 1; y < h-1; y++ {
		consider(Cell{X: 0, Y: y})
		consider(Cell{X: w - 1, Y: y})
	}
	return best
}
