package game

import "fmt"

// ApplyDamage deals amount to a unit or building. Non-positive amounts and
// dead targets are ignored.
func (b *Battle) ApplyDamage(t Target, amount float64) {
	switch {
	case t.Unit != nil:
		b.damageUnit(t.Unit, amount)
	case t.Building != nil:
		b.damageBuilding(t.Building, amount)
	}
}

// DamageArea applies linear-falloff damage around (x, y): full at the centre,
// zero at radius. Units and buildings of excluded are spared; pass nil to
// hit everyone. Buildings measure from the nearest footprint point.
func (b *Battle) DamageArea(x, y, damage, radius float64, excluded *Player) {
	if damage <= 0 || radius <= 0 {
		return
	}
	for _, u := range b.units {
		if !u.Alive() || (excluded != nil && u.owner == excluded) {
			continue
		}
		if dmg := Falloff(damage, radius, Distance(x, y, u.x, u.y)); dmg > 0 {
			b.damageUnit(u, dmg)
		}
	}
	for _, bd := range b.buildings {
		if bd.destroyed || (excluded != nil && bd.owner == excluded) {
			continue
		}
		if dmg := Falloff(damage, radius, RectDistance(x, y, bd.rect)); dmg > 0 {
			b.damageBuilding(bd, dmg)
		}
	}
}

func (b *Battle) damageUnit(u *Unit, amount float64) {
	if amount <= 0 || !u.Alive() {
		return
	}
	u.hp -= amount
	b.Log.Add(b.tick, u.label, u.owner.Side.String(), "damage", "hit", fmt.Sprintf("%.1f, %.1f left", amount, max(u.hp, 0)), amount)
	if u.hp <= 0 {
		u.hp = 0
		b.killUnit(u)
	}
}

// killUnit starts a unit's death: orders stop, paralysis victims go free and
// an explosion takes it off the field at its half point.
func (b *Battle) killUnit(u *Unit) {
	u.hp = 0
	u.clearOrders()
	u.paralyzedBy = nil
	u.paralysis = 0
	u.state = UnitStateDestroyed
	b.releaseVictims(u, "destroyed")
	b.explosions = append(b.explosions, &Explosion{X: u.x, Y: u.y, Target: u, Phases: b.rules.ExplosionPhases})
	b.Log.Add(b.tick, u.label, u.owner.Side.String(), "damage", "destroyed", u.kind.Name, 0)
}

func (b *Battle) damageBuilding(bd *Building, amount float64) {
	if amount <= 0 || bd.destroyed {
		return
	}
	prev := bd.hp
	bd.hp = max(bd.hp-amount, 0)
	label := buildingLabel(bd)
	side := bd.owner.Side.String()
	b.Log.Add(b.tick, label, side, "damage", "hit", fmt.Sprintf("%.1f, %.1f left", amount, bd.hp), amount)

	half := bd.kind.MaxHP / 2
	if !bd.halfLost && prev > half && bd.hp <= half {
		bd.halfLost = true
		if lost := b.dropGuns(bd, bd.initGuns/2); lost > 0 {
			b.Log.Add(b.tick, label, side, "damage", "guns_lost", fmt.Sprintf("%d of %d", lost, bd.initGuns), float64(lost))
		}
	}
	if bd.hp <= 0 {
		b.destroyBuilding(bd)
	}
}

// dropGuns removes up to n guns from the end of bd's mount list.
func (b *Battle) dropGuns(bd *Building, n int) int {
	lost := 0
	for n > 0 && len(bd.guns) > 0 {
		g := bd.guns[len(bd.guns)-1]
		bd.guns = bd.guns[:len(bd.guns)-1]
		g.removed = true
		g.target = nil
		n--
		lost++
	}
	return lost
}

func (b *Battle) destroyBuilding(bd *Building) {
	b.removeBuilding(bd)
	label := buildingLabel(bd)
	b.destroyed = append(b.destroyed, label)
	cx, cy := bd.rect.Center()
	b.explosions = append(b.explosions, &Explosion{X: cx, Y: cy, Phases: b.rules.ExplosionPhases})
	b.Log.Add(b.tick, label, bd.owner.Side.String(), "damage", "destroyed", bd.kind.Name, 0)
}
