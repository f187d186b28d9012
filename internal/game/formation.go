package game

import (
	"math"
	"sort"
)

// FormationType identifies the shape of a group move.
type FormationType int

const (
	FormationLine    FormationType = iota // side-by-side perpendicular to heading
	FormationWedge                        // V-shape, leader at point
	FormationColumn                       // single file behind leader
	FormationEchelon                      // diagonal line offset to one flank
)

func (ft FormationType) String() string {
	switch ft {
	case FormationLine:
		return "line"
	case FormationWedge:
		return "wedge"
	case FormationColumn:
		return "column"
	case FormationEchelon:
		return "echelon"
	default:
		return "unknown"
	}
}

// Next cycles through the formation types.
func (ft FormationType) Next() FormationType {
	return (ft + 1) % (FormationEchelon + 1)
}

// slotSpacing is the cell gap between adjacent formation slots.
const slotSpacing = 1.5

// formationOffsets returns the local (forward, right) offsets for each slot
// in a formation of `count` members (slot 0 is the leader).
// Forward is along the movement direction; right is 90° clockwise.
func formationOffsets(ft FormationType, count int) [][2]float64 {
	offsets := make([][2]float64, count)
	if count == 0 {
		return offsets
	}

	switch ft {
	case FormationLine:
		// Spread symmetrically: ...-2,-1,0,+1,+2,...
		for i := 1; i < count; i++ {
			side := float64((i+1)/2) * slotSpacing
			if i%2 == 1 {
				side = -side
			}
			offsets[i] = [2]float64{0, side}
		}

	case FormationWedge:
		for i := 1; i < count; i++ {
			depth := float64((i+1)/2) * slotSpacing
			side := float64((i+1)/2) * slotSpacing
			if i%2 == 1 {
				side = -side
			}
			offsets[i] = [2]float64{-depth, side}
		}

	case FormationColumn:
		for i := 1; i < count; i++ {
			offsets[i] = [2]float64{-float64(i) * slotSpacing, 0}
		}

	case FormationEchelon:
		for i := 1; i < count; i++ {
			offsets[i] = [2]float64{-float64(i) * slotSpacing * 0.7, float64(i) * slotSpacing * 0.7}
		}
	}
	return offsets
}

// SlotWorld converts a local (forward, right) offset into a world position
// given the leader's world position and heading.
func SlotWorld(leaderX, leaderY, heading, fwd, right float64) (float64, float64) {
	fx := math.Cos(heading)
	fy := math.Sin(heading)
	// Right is 90° clockwise from forward in screen coordinates.
	rx := -fy
	ry := fx

	return leaderX + fx*fwd + rx*right, leaderY + fy*fwd + ry*right
}

// GroupMembers returns the living units of side in control group g, by ID.
func (b *Battle) GroupMembers(side Side, g int) []*Unit {
	var out []*Unit
	for _, u := range b.units {
		if u.Alive() && u.owner.Side == side && u.group == g {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// MoveGroup orders units to the cell (x, y) in formation ft. The formation
// faces from the group's centroid towards the destination; the first unit
// takes the point slot. Slots that land off the map or on blocked ground
// fall back to the nearest open cell. It returns the assigned cells.
func (b *Battle) MoveGroup(units []*Unit, x, y int, ft FormationType) []Cell {
	if len(units) == 0 {
		return nil
	}
	var cx, cy float64
	for _, u := range units {
		cx += u.x
		cy += u.y
	}
	cx /= float64(len(units))
	cy /= float64(len(units))

	dest := Cell{X: x, Y: y}
	tx, ty := dest.Center()
	heading := math.Atan2(ty-cy, tx-cx)

	taken := map[Cell]bool{}
	cells := make([]Cell, len(units))
	for i, off := range formationOffsets(ft, len(units)) {
		sx, sy := SlotWorld(tx, ty, heading, off[0], off[1])
		c := b.openSlot(CellOf(sx, sy), dest, taken)
		taken[c] = true
		cells[i] = c
		b.Move(units[i], c.X, c.Y)
	}
	return cells
}

// openSlot returns c if it is in bounds, statically passable and not yet
// taken, otherwise the closest such cell to c within a small radius, and
// dest as a last resort.
func (b *Battle) openSlot(c, dest Cell, taken map[Cell]bool) Cell {
	ok := func(c Cell) bool {
		return b.terrain.InBounds(c) && b.staticPassable(c) && !taken[c]
	}
	if ok(c) {
		return c
	}
	for r := 1; r <= 3; r++ {
		best, bestD := Cell{}, math.Inf(1)
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				n := Cell{X: c.X + dx, Y: c.Y + dy}
				if !ok(n) {
					continue
				}
				if d := float64(dx*dx + dy*dy); d < bestD {
					best, bestD = n, d
				}
			}
		}
		if !math.IsInf(bestD, 1) {
			return best
		}
	}
	return dest
}
