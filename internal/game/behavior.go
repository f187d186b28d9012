package game

import "math"

// Behavior steers one side's idle units. It runs at the start of every tick
// and may only issue orders through the battle's order helpers.
type Behavior interface {
	Act(b *Battle, side Side, idle []*Unit)
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(b *Battle, side Side, idle []*Unit)

func (f BehaviorFunc) Act(b *Battle, side Side, idle []*Unit) { f(b, side, idle) }

// AssaultBehavior sends every idle armed unit at the nearest enemy unit, or
// at the nearest armed enemy structure once no enemy unit is left.
type AssaultBehavior struct{}

func (AssaultBehavior) Act(b *Battle, side Side, idle []*Unit) {
	for _, u := range idle {
		if !u.kind.Armed() {
			continue
		}
		if t, ok := b.nearestEnemyTarget(u); ok {
			b.Attack(u, t)
		}
	}
}

// HoldBehavior keeps idle units in place with guard on, so they engage
// anything that comes into range.
type HoldBehavior struct{}

func (HoldBehavior) Act(b *Battle, side Side, idle []*Unit) {
	for _, u := range idle {
		if !u.guard {
			b.Guard(u, true)
		}
	}
}

// nearestEnemyTarget picks what an assaulting unit should go after. Paralyzers
// only consider units.
func (b *Battle) nearestEnemyTarget(u *Unit) (Target, bool) {
	var (
		best  Target
		bestD = math.Inf(1)
	)
	for _, e := range b.units {
		if !e.Alive() || e.owner.Side == u.owner.Side {
			continue
		}
		if d := Distance(u.x, u.y, e.x, e.y); d < bestD {
			best, bestD = Target{Unit: e}, d
		}
	}
	if !best.IsZero() || !u.kind.DirectFire() {
		return best, !best.IsZero()
	}
	// No units left: structures with guns first, then the rest.
	for _, armedOnly := range []bool{true, false} {
		for _, bd := range b.buildings {
			if bd.destroyed || bd.owner.Side == u.owner.Side || (armedOnly && len(bd.guns) == 0) {
				continue
			}
			if d := RectDistance(u.x, u.y, bd.rect); d < bestD {
				best, bestD = Target{Building: bd}, d
			}
		}
		if !best.IsZero() {
			return best, true
		}
	}
	return Target{}, false
}
