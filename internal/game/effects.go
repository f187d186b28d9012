package game

import (
	"fmt"
	"math"
)

// advanceExplosions steps every explosion one phase. A kill target leaves
// the field when its explosion reaches the half point.
func (b *Battle) advanceExplosions() {
	kept := b.explosions[:0]
	for _, e := range b.explosions {
		e.Phase++
		if e.Half() && e.Target != nil {
			b.removeUnit(e.Target, false)
		}
		if !e.Done() {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(b.explosions); i++ {
		b.explosions[i] = nil
	}
	b.explosions = kept
}

func (b *Battle) launchRocket(x, y, tx, ty float64, owner *Player, speed, damage, area float64) {
	b.rockets = append(b.rockets, &Rocket{
		X: x, Y: y, TX: tx, TY: ty,
		Owner:  owner,
		Speed:  speed,
		Damage: damage,
		Area:   area,
	})
}

// advanceRockets moves every rocket toward its aim point. A rocket detonates
// on arrival or on the first enemy structure its flight crosses.
func (b *Battle) advanceRockets() {
	kept := b.rockets[:0]
	for _, r := range b.rockets {
		if b.stepRocket(r) {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(b.rockets); i++ {
		b.rockets[i] = nil
	}
	b.rockets = kept
}

// stepRocket reports whether the rocket is still in flight.
func (b *Battle) stepRocket(r *Rocket) bool {
	dx, dy := r.TX-r.X, r.TY-r.Y
	dist := math.Hypot(dx, dy)
	nx, ny := r.TX, r.TY
	arrived := dist <= r.Speed
	if !arrived {
		nx = r.X + dx/dist*r.Speed
		ny = r.Y + dy/dist*r.Speed
	}

	if bd, hx, hy, hit := b.firstStructureHit(r.X, r.Y, nx, ny, r.Owner); hit {
		b.Log.Add(b.tick, "--", r.Owner.Side.String(), "rocket", "impact", buildingLabel(bd), r.Damage)
		b.detonate(r, hx, hy)
		return false
	}
	if arrived {
		b.Log.Add(b.tick, "--", r.Owner.Side.String(), "rocket", "impact", fmt.Sprintf("(%.1f,%.1f)", nx, ny), r.Damage)
		b.detonate(r, nx, ny)
		return false
	}
	r.X, r.Y = nx, ny
	if !b.terrain.InBounds(CellOf(nx, ny)) {
		b.Log.Add(b.tick, "--", r.Owner.Side.String(), "rocket", "lost", "left the field", 0)
		return false
	}
	return true
}

// detonate deals the rocket's splash. Direct-hit rockets still use a small
// radius so the aim point takes full damage.
func (b *Battle) detonate(r *Rocket, x, y float64) {
	b.explosions = append(b.explosions, &Explosion{X: x, Y: y, Phases: b.rules.ExplosionPhases})
	b.DamageArea(x, y, r.Damage, math.Max(r.Area, 0.5), r.Owner)
}
