package game

import (
	"fmt"
	"math"

	"github.com/Garsondee/Battle-Sense/internal/config"
)

// approachAngles is how many random bearings a ranged unit tries when looking
// for a stand-off cell outside its dead zone.
const approachAngles = 8

// rotationStep returns the heading change per tick for a weapon that needs
// rotationTime time units to turn one angle frame. Zero turns instantly.
func (b *Battle) rotationStep(rotationTime float64) float64 {
	if rotationTime <= 0 {
		return 0
	}
	frame := 2 * math.Pi / float64(b.rules.AngleFrames)
	return frame * float64(b.rules.TickDuration) / rotationTime
}

// --- units ---

// updateUnit runs one tick of a unit: upkeep, status, movement, target
// selection and firing.
func (b *Battle) updateUnit(u *Unit) {
	if !u.Alive() {
		if u.hp <= 0 {
			u.state = UnitStateDestroyed
		}
		return
	}
	side := u.owner.Side.String()

	if u.kind.RepairRate > 0 && u.hp < u.kind.MaxHP {
		u.hp = math.Min(u.kind.MaxHP, u.hp+u.kind.RepairRate)
	}
	if u.cooldown > 0 {
		u.cooldown--
	}

	if u.paralysis > 0 {
		u.paralysis--
		if u.paralysis == 0 {
			b.Log.Add(b.tick, u.label, side, "paralysis", "released", "expired", 0)
			u.paralyzedBy = nil
			u.state = UnitStateIdle
			return
		}
		u.state = UnitStateParalyzed
		return
	}

	if u.layingMine {
		b.layMine(u)
		u.state = b.classify(u)
		return
	}

	if u.retreating && len(u.path) == 0 && !u.planning && !u.wantPlan && u.yield == 0 {
		// Off the edge with no route (arrived short, or the path was lost
		// to paralysis): withdraw or plan again.
		b.resumeRetreat(u)
		return
	}

	if b.targetInRange(u) {
		// Close enough: stand and fight.
		if len(u.path) > 0 || u.yield > 0 {
			u.path = nil
			u.yield = 0
			u.hasGoal = false
		}
	} else {
		b.moveUnit(u)
		if !u.Alive() {
			return
		}
	}

	b.updateTargeting(u)
	b.updateUnitWeapon(u)
	u.state = b.classify(u)
}

func (b *Battle) targetInRange(u *Unit) bool {
	if u.target.IsZero() || !u.target.Alive() {
		return false
	}
	return InRange(u.target.DistanceFrom(u.x, u.y), u.kind.MinRange, u.kind.MaxRange)
}

// classify derives the reported state from the unit's internals.
func (b *Battle) classify(u *Unit) UnitState {
	switch {
	case !u.Alive():
		return UnitStateDestroyed
	case u.paralysis > 0:
		return UnitStateParalyzed
	case u.layingMine:
		return UnitStateLayingMine
	case u.yield > 0:
		return UnitStateYielding
	case !u.target.IsZero():
		if !b.targetInRange(u) {
			return UnitStateApproaching
		}
		if u.phase > 0 {
			return UnitStateFiring
		}
		tx, ty := u.target.Position()
		if math.Abs(NormalizeAngle(AngleTo(u.x, u.y, tx, ty)-u.heading)) > 1e-9 {
			return UnitStateRotating
		}
		return UnitStateFiring
	case len(u.path) > 0 || u.planning || u.wantPlan:
		return UnitStateMoving
	}
	return UnitStateIdle
}

// updateTargeting drops dead targets, runs the guard scan and starts the
// approach when an explicit target is out of reach.
func (b *Battle) updateTargeting(u *Unit) {
	side := u.owner.Side.String()
	if !u.target.IsZero() && !u.target.Alive() {
		b.Log.Add(b.tick, u.label, side, "combat", "target_lost", targetLabel(u.target), 0)
		if u.explicit {
			u.path = nil
			u.hasGoal = false
			u.planSeq++
			u.planning = false
			u.wantPlan = false
		}
		u.target = Target{}
		u.explicit = false
		u.phase = 0
	}

	if u.target.IsZero() {
		if u.guard && !u.retreating && u.kind.DirectFire() && len(u.path) == 0 && !u.planning && !u.wantPlan && u.yield == 0 {
			b.guardScan(u)
		}
		return
	}

	if b.targetInRange(u) {
		return
	}
	if !u.explicit {
		// Guard targets are not pursued.
		b.Log.Add(b.tick, u.label, side, "combat", "target_lost", targetLabel(u.target)+" out of range", 0)
		u.target = Target{}
		u.phase = 0
		return
	}
	if len(u.path) > 0 || u.planning || u.wantPlan || u.yield > 0 || u.stuck {
		return
	}
	goal := b.approachCell(u)
	u.requestPlan(goal)
	b.Log.Add(b.tick, u.label, side, "combat", "approach", fmt.Sprintf("%s via %s", targetLabel(u.target), fmtCell(goal)), 0)
}

// guardScan picks a random enemy unit inside the weapon band.
func (b *Battle) guardScan(u *Unit) {
	var candidates []*Unit
	for _, e := range b.units {
		if !e.Alive() || e.owner.Side == u.owner.Side {
			continue
		}
		if InRange(Distance(u.x, u.y, e.x, e.y), u.kind.MinRange, u.kind.MaxRange) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return
	}
	pick := candidates[b.rng.Intn(len(candidates))] // #nosec G404 -- game only
	u.target = Target{Unit: pick}
	u.explicit = false
	u.phase = 0
	b.Log.Add(b.tick, u.label, u.owner.Side.String(), "combat", "acquire", pick.label, Distance(u.x, u.y, pick.x, pick.y))
}

// approachCell chooses where to walk to bring the target into the band.
// Melee units walk to the target itself; ranged units look for a point just
// outside their dead zone.
func (b *Battle) approachCell(u *Unit) Cell {
	tx, ty := u.target.Position()
	tc := CellOf(tx, ty)
	if u.kind.MinRange <= 0 {
		return tc
	}
	dist := math.Min(u.kind.MinRange+1, u.kind.MaxRange)
	for i := 0; i < approachAngles; i++ {
		a := b.rng.Float64() * 2 * math.Pi // #nosec G404 -- game only
		c := CellOf(tx+math.Cos(a)*dist, ty+math.Sin(a)*dist)
		if !b.staticPassable(c) {
			continue
		}
		cx, cy := c.Center()
		if InRange(u.target.DistanceFrom(cx, cy), u.kind.MinRange, u.kind.MaxRange) {
			return c
		}
	}
	return tc
}

// updateUnitWeapon rotates onto the target and runs the fire phases.
func (b *Battle) updateUnitWeapon(u *Unit) {
	if !b.targetInRange(u) {
		u.phase = 0
		return
	}
	tx, ty := u.target.Position()
	var aligned bool
	u.heading, aligned = RotateToward(u.heading, AngleTo(u.x, u.y, tx, ty), b.rotationStep(u.kind.RotationTime))
	if !aligned {
		u.phase = 0
		return
	}
	if u.cooldown > 0 {
		return
	}
	u.phase++
	if u.phase < u.kind.MaxPhase {
		return
	}
	u.phase = 0
	u.cooldown = u.kind.Delay
	b.fireUnit(u)
}

func (b *Battle) fireUnit(u *Unit) {
	k := u.kind
	t := u.target
	tx, ty := t.Position()
	side := u.owner.Side.String()

	switch {
	case k.Special == config.SpecialParalyze:
		if t.Unit != nil {
			b.paralyze(u, t.Unit)
		}
	case k.Rocket:
		b.launchRocket(u.x, u.y, tx, ty, u.owner, k.RocketSpeed, k.Damage, k.Area)
		b.Log.Add(b.tick, u.label, side, "combat", "launch", targetLabel(t), k.Damage)
	case k.Area > 0:
		b.Log.Add(b.tick, u.label, side, "combat", "fire", fmt.Sprintf("%s area %.1f", targetLabel(t), k.Area), k.Damage)
		b.DamageArea(tx, ty, k.Damage, k.Area, u.owner)
	default:
		b.Log.Add(b.tick, u.label, side, "combat", "fire", fmt.Sprintf("%s for %.0f", targetLabel(t), k.Damage), k.Damage)
		b.ApplyDamage(t, k.Damage)
	}
}

// --- paralysis ---

// paralyze locks victim for the configured time. A victim already held by a
// different paralyzer is left alone; the holder may refresh its own lock.
func (b *Battle) paralyze(src, victim *Unit) {
	if !victim.Alive() {
		return
	}
	if victim.paralyzedBy != nil && victim.paralyzedBy != src {
		b.Log.Add(b.tick, src.label, src.owner.Side.String(), "paralysis", "refused",
			fmt.Sprintf("%s held by %s", victim.label, victim.paralyzedBy.label), 0)
		return
	}
	fresh := victim.paralyzedBy == nil
	victim.clearOrders()
	victim.paralyzedBy = src
	victim.paralysis = b.rules.ParalysisTicks
	victim.state = UnitStateParalyzed
	key := "refreshed"
	if fresh {
		key = "applied"
	}
	b.Log.Add(b.tick, victim.label, victim.owner.Side.String(), "paralysis", key, "by "+src.label, float64(b.rules.ParalysisTicks))
}

// releaseVictims frees every unit held by p.
func (b *Battle) releaseVictims(p *Unit, reason string) {
	for _, v := range b.units {
		if v.paralyzedBy != p {
			continue
		}
		v.paralyzedBy = nil
		v.paralysis = 0
		if v.Alive() {
			v.state = UnitStateIdle
		}
		b.Log.Add(b.tick, v.label, v.owner.Side.String(), "paralysis", "released", p.label+" "+reason, 0)
	}
}

// --- specials ---

// startSpecial triggers the unit kind's special ability.
func (b *Battle) startSpecial(u *Unit) {
	side := u.owner.Side.String()
	switch u.kind.Special {
	case config.SpecialMine:
		u.clearOrders()
		u.layingMine = true
		u.phase = 0
		u.state = UnitStateLayingMine
		b.Log.Add(b.tick, u.label, side, "mine", "laying", fmtCell(u.cell), 0)
	case config.SpecialSelfDestruct:
		b.Log.Add(b.tick, u.label, side, "combat", "self_destruct", fmtCell(u.cell), u.kind.Damage)
		x, y := u.x, u.y
		u.clearOrders()
		b.killUnit(u)
		b.DamageArea(x, y, u.kind.Damage, math.Max(u.kind.Area, 0.5), u.owner)
	default:
		b.Log.Add(b.tick, u.label, side, "order", "dropped", "special: none for "+u.kind.Name, 0)
	}
}

// layMine advances the lay phases and drops the mine on completion.
func (b *Battle) layMine(u *Unit) {
	u.phase++
	if u.phase < u.kind.MaxPhase {
		return
	}
	u.phase = 0
	u.layingMine = false
	side := u.owner.Side.String()
	if _, taken := b.mines[u.cell]; taken {
		b.Log.Add(b.tick, u.label, side, "mine", "occupied", fmtCell(u.cell), 0)
		return
	}
	b.mines[u.cell] = &Mine{Cell: u.cell, Owner: u.owner, Damage: u.kind.MineDamage}
	b.Log.Add(b.tick, u.label, side, "mine", "laid", fmtCell(u.cell), u.kind.MineDamage)
}

// --- guns ---

// updateGun runs one tick of a turret: keep or pick the nearest enemy,
// rotate, fire.
func (b *Battle) updateGun(g *Gun) {
	if g.removed {
		return
	}
	if g.cooldown > 0 {
		g.cooldown--
	}
	k := g.kind
	gx, gy := g.Pos()
	label := gunLabel(g)

	if g.target != nil && (!g.target.Alive() || !InRange(Distance(gx, gy, g.target.x, g.target.y), k.MinRange, k.MaxRange)) {
		g.target = nil
		g.phase = 0
	}
	if g.target == nil {
		g.target = b.nearestEnemy(g.building.owner.Side, gx, gy, k.MinRange, k.MaxRange)
		if g.target == nil {
			return
		}
		b.Log.Add(b.tick, label, SideDefender.String(), "combat", "acquire", g.target.label, Distance(gx, gy, g.target.x, g.target.y))
	}

	var aligned bool
	g.heading, aligned = RotateToward(g.heading, AngleTo(gx, gy, g.target.x, g.target.y), b.rotationStep(k.RotationTime))
	if !aligned {
		g.phase = 0
		return
	}
	if g.cooldown > 0 {
		return
	}
	g.phase++
	if g.phase < k.MaxPhase {
		return
	}
	g.phase = 0
	g.cooldown = k.Delay

	t := g.target
	owner := g.building.owner
	switch {
	case k.Rocket:
		b.launchRocket(gx, gy, t.x, t.y, owner, k.RocketSpeed, k.Damage, k.Area)
		b.Log.Add(b.tick, label, owner.Side.String(), "combat", "launch", t.label, k.Damage)
	case k.Area > 0:
		b.Log.Add(b.tick, label, owner.Side.String(), "combat", "fire", fmt.Sprintf("%s area %.1f", t.label, k.Area), k.Damage)
		b.DamageArea(t.x, t.y, k.Damage, k.Area, owner)
	default:
		b.Log.Add(b.tick, label, owner.Side.String(), "combat", "fire", fmt.Sprintf("%s for %.0f", t.label, k.Damage), k.Damage)
		b.ApplyDamage(Target{Unit: t}, k.Damage)
	}
}

// nearestEnemy returns the closest live unit not on side within the band.
// Ties go to the lower ID.
func (b *Battle) nearestEnemy(side Side, x, y, minR, maxR float64) *Unit {
	var (
		best  *Unit
		bestD = math.Inf(1)
	)
	for _, u := range b.units {
		if !u.Alive() || u.owner.Side == side {
			continue
		}
		d := Distance(x, y, u.x, u.y)
		if !InRange(d, minR, maxR) {
			continue
		}
		if d < bestD || (d == bestD && best != nil && u.id < best.id) {
			best, bestD = u, d
		}
	}
	return best
}

func gunLabel(g *Gun) string {
	return fmt.Sprintf("G%d", g.id)
}
