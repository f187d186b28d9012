package game

import (
	"fmt"

	"github.com/Garsondee/Battle-Sense/internal/config"
)

// UnitState is the per-tick behaviour state reported to consumers.
type UnitState int

const (
	UnitStateIdle        UnitState = iota // no order, guard scan only
	UnitStateMoving                       // following a move order
	UnitStateApproaching                  // closing on an attack target
	UnitStateRotating                     // in range, turning onto target
	UnitStateFiring                       // mid fire phases
	UnitStateParalyzed                    // orders suspended
	UnitStateLayingMine                   // mine lay phases
	UnitStateYielding                     // blocked by another unit, backing off
	UnitStateDestroyed                    // hp reached zero
)

func (us UnitState) String() string {
	switch us {
	case UnitStateIdle:
		return "idle"
	case UnitStateMoving:
		return "moving"
	case UnitStateApproaching:
		return "approaching"
	case UnitStateRotating:
		return "rotating"
	case UnitStateFiring:
		return "firing"
	case UnitStateParalyzed:
		return "paralyzed"
	case UnitStateLayingMine:
		return "laying_mine"
	case UnitStateYielding:
		return "yielding"
	case UnitStateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Target is what a unit attacks: a unit or a building, never both.
type Target struct {
	Unit     *Unit
	Building *Building
}

// IsZero reports whether no target is set.
func (t Target) IsZero() bool {
	return t.Unit == nil && t.Building == nil
}

// Alive reports whether the target can still be attacked.
func (t Target) Alive() bool {
	switch {
	case t.Unit != nil:
		return t.Unit.Alive()
	case t.Building != nil:
		return !t.Building.destroyed
	}
	return false
}

// Owner returns the player owning the target.
func (t Target) Owner() *Player {
	switch {
	case t.Unit != nil:
		return t.Unit.owner
	case t.Building != nil:
		return t.Building.owner
	}
	return nil
}

// Position returns the point weapons aim at.
func (t Target) Position() (float64, float64) {
	switch {
	case t.Unit != nil:
		return t.Unit.x, t.Unit.y
	case t.Building != nil:
		return t.Building.rect.Center()
	}
	return 0, 0
}

// DistanceFrom measures from (x, y) to the target. Buildings measure to the
// nearest point of their footprint.
func (t Target) DistanceFrom(x, y float64) float64 {
	switch {
	case t.Unit != nil:
		return Distance(x, y, t.Unit.x, t.Unit.y)
	case t.Building != nil:
		return RectDistance(x, y, t.Building.rect)
	}
	return 0
}

// Unit is a deployed combat unit owned by one side of a battle.
type Unit struct {
	id    int
	label string
	owner *Player
	kind  *config.UnitKind

	x, y    float64
	heading float64
	hp      float64
	cell    Cell // cell currently recorded in the location index

	// Navigation
	path     []Cell
	goal     Cell
	hasGoal  bool
	planning bool   // one outstanding path request at most
	planSeq  uint64 // bumps on every new request; stale results are dropped
	wantPlan bool   // request to be collected this tick
	stuck    bool   // last search came back empty; wait for a new order
	yield    int    // backoff ticks remaining

	// Combat
	target   Target
	explicit bool // target came from an attack order (pursue), not a guard scan
	guard    bool
	phase    int
	cooldown int

	// Status
	paralyzedBy *Unit
	paralysis   int
	layingMine  bool
	retreating  bool
	removed     bool // left the active set (killed or withdrawn)
	withdrawn   bool

	// UI-only
	selected bool
	group    int

	state UnitState
}

func newUnit(id int, owner *Player, kind *config.UnitKind, c Cell, heading float64, guard bool) *Unit {
	x, y := c.Center()
	return &Unit{
		id:      id,
		label:   fmt.Sprintf("%s%d", owner.Side.Prefix(), id),
		owner:   owner,
		kind:    kind,
		x:       x,
		y:       y,
		heading: heading,
		hp:      kind.MaxHP,
		cell:    c,
		guard:   guard,
	}
}

func (u *Unit) ID() int                { return u.id }
func (u *Unit) Label() string          { return u.label }
func (u *Unit) Owner() *Player         { return u.owner }
func (u *Unit) Kind() *config.UnitKind { return u.kind }
func (u *Unit) HP() float64            { return u.hp }
func (u *Unit) Heading() float64       { return u.heading }
func (u *Unit) State() UnitState       { return u.state }
func (u *Unit) Target() Target         { return u.target }
func (u *Unit) Phase() int             { return u.phase }
func (u *Unit) Cooldown() int          { return u.cooldown }
func (u *Unit) Guarding() bool         { return u.guard }
func (u *Unit) ParalyzedBy() *Unit     { return u.paralyzedBy }
func (u *Unit) ParalysisLeft() int     { return u.paralysis }
func (u *Unit) Cell() Cell             { return u.cell }
func (u *Unit) Selected() bool         { return u.selected }
func (u *Unit) Group() int             { return u.group }

// Pos returns the continuous position.
func (u *Unit) Pos() (float64, float64) { return u.x, u.y }

// Path returns a copy of the remaining waypoints.
func (u *Unit) Path() []Cell {
	return append([]Cell(nil), u.path...)
}

// Alive reports whether the unit is on the field with hp left.
func (u *Unit) Alive() bool {
	return u.hp > 0 && !u.removed
}

// Idle reports whether the unit has nothing to do and can take a new order
// from a behaviour.
func (u *Unit) Idle() bool {
	return u.Alive() && u.target.IsZero() && len(u.path) == 0 && !u.planning &&
		!u.wantPlan && u.paralysis == 0 && !u.layingMine && u.yield == 0 && !u.retreating
}

// clearOrders drops movement and attack state. Guard stance is kept.
func (u *Unit) clearOrders() {
	u.path = nil
	u.hasGoal = false
	u.wantPlan = false
	u.planning = false
	u.planSeq++
	u.stuck = false
	u.yield = 0
	u.target = Target{}
	u.explicit = false
	u.phase = 0
	u.layingMine = false
}

// requestPlan marks the unit for path planning toward goal in the next
// planning batch. Any result still in flight for an older goal is superseded.
func (u *Unit) requestPlan(goal Cell) {
	u.goal = goal
	u.hasGoal = true
	u.path = nil
	u.wantPlan = true
	u.planSeq++
}
