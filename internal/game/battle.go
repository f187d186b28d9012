package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Garsondee/Battle-Sense/internal/config"
)

// BattlePhase is the lifecycle state of a battle.
type BattlePhase int

const (
	PhaseDeployment BattlePhase = iota // sides place their rosters
	PhaseSimulating                    // ticks are running
	PhaseConcluded                     // terminal
)

func (p BattlePhase) String() string {
	switch p {
	case PhaseDeployment:
		return "deployment"
	case PhaseSimulating:
		return "simulating"
	case PhaseConcluded:
		return "concluded"
	default:
		return "unknown"
	}
}

// BuildingSpec places one structure of the defender's planet.
type BuildingSpec struct {
	Kind       string
	X, Y       int
	Unfinished bool
}

// DefenderContext is everything the world model hands over about the
// defended planet.
type DefenderContext struct {
	Player    *Player
	Inventory Inventory
	Terrain   *Terrain
	Buildings []BuildingSpec
}

// Battle is one ground engagement. All simulation state is owned by the
// goroutine calling Tick; other goroutines may only enqueue orders.
type Battle struct {
	ID string

	rules    *config.Ruleset
	attacker *Player
	defender *Player
	invs     map[Side]Inventory
	deployed map[Side]map[string]int
	roster   map[Side]int

	terrain    *Terrain
	footprint  map[Cell]*Building
	mainRect   Rect
	hasMain    bool
	units      []*Unit
	buildings  []*Building
	guns       []*Gun
	mines      map[Cell]*Mine
	explosions []*Explosion
	rockets    []*Rocket

	index     *LocationIndex
	planner   *Planner
	orders    OrderQueue
	behaviors map[Side]Behavior
	rng       *rand.Rand

	// Log records simulation events for tests, reports and viewers.
	Log         *BattleLog
	logger      *slog.Logger
	onConcluded func(Summary)
	sandbox     bool

	phase   BattlePhase
	tick    int
	speed   int
	nextID  int
	retreat Side
	winner  Side
	summary *Summary

	casualties map[Side]map[string]int
	withdrawn  map[Side]map[string]int
	destroyed  []string
}

// Option configures a battle at construction.
type Option func(*Battle)

// WithSeed fixes the battle RNG for reproducible runs.
func WithSeed(seed int64) Option {
	return func(b *Battle) {
		b.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- game only
	}
}

// WithLogger routes operational warnings to l.
func WithLogger(l *slog.Logger) Option {
	return func(b *Battle) { b.logger = l }
}

// WithBehavior attaches the AI (or script) steering one side's idle units.
func WithBehavior(side Side, bh Behavior) Option {
	return func(b *Battle) { b.behaviors[side] = bh }
}

// WithConcludedHandler receives the summary once the battle ends.
func WithConcludedHandler(fn func(Summary)) Option {
	return func(b *Battle) { b.onConcluded = fn }
}

// WithBattleLog replaces the default (non-verbose) event log.
func WithBattleLog(l *BattleLog) Option {
	return func(b *Battle) { b.Log = l }
}

// WithSandbox disables the win check; the battle runs until the caller stops.
func WithSandbox() Option {
	return func(b *Battle) { b.sandbox = true }
}

// InitiateBattle sets up a battle in the deployment phase.
func InitiateBattle(rules *config.Ruleset, attacker *Player, attackerInv Inventory, def DefenderContext, opts ...Option) (*Battle, error) {
	if rules == nil {
		return nil, fmt.Errorf("initiate battle: nil ruleset")
	}
	if attacker == nil || def.Player == nil {
		return nil, fmt.Errorf("initiate battle: both players are required")
	}
	if def.Terrain == nil || def.Terrain.Width <= 0 || def.Terrain.Height <= 0 {
		return nil, fmt.Errorf("initiate battle: defender terrain is required")
	}
	attacker.Side = SideAttacker
	def.Player.Side = SideDefender

	b := &Battle{
		ID:         uuid.NewString(),
		rules:      rules,
		attacker:   attacker,
		defender:   def.Player,
		invs:       map[Side]Inventory{SideAttacker: attackerInv, SideDefender: def.Inventory},
		deployed:   map[Side]map[string]int{SideAttacker: {}, SideDefender: {}},
		roster:     map[Side]int{},
		terrain:    def.Terrain,
		footprint:  make(map[Cell]*Building),
		mines:      make(map[Cell]*Mine),
		behaviors:  make(map[Side]Behavior),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- game only
		Log:        NewBattleLog(false),
		speed:      1,
		nextID:     1,
		casualties: make(map[Side]map[string]int),
		withdrawn:  make(map[Side]map[string]int),
	}
	for _, o := range opts {
		o(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.index = NewLocationIndex(b.logger)
	b.index.onAnomaly = func(u *Unit, c Cell) {
		b.Log.Add(b.tick, u.label, u.owner.Side.String(), "index", "anomaly", fmtCell(c), 0)
	}
	b.planner = NewPlanner(rules.PlannerWorkers, rules.SearchLimit)

	for _, spec := range def.Buildings {
		if err := b.placeBuilding(spec); err != nil {
			return nil, fmt.Errorf("initiate battle: %w", err)
		}
	}
	b.Log.Add(0, "--", "--", "lifecycle", "phase", PhaseDeployment.String(), 0)
	return b, nil
}

func (b *Battle) placeBuilding(spec BuildingSpec) error {
	kind, ok := b.rules.BuildingKind(spec.Kind)
	if !ok {
		return fmt.Errorf("unknown building kind %q", spec.Kind)
	}
	r := Rect{X: spec.X, Y: spec.Y, W: kind.Width, H: kind.Height}
	for _, c := range r.Cells() {
		if !b.terrain.Passable(c) {
			return fmt.Errorf("building %q at %s: footprint off the buildable ground", spec.Kind, fmtCell(c))
		}
		if b.footprint[c] != nil {
			return fmt.Errorf("building %q at %s: overlaps another structure", spec.Kind, fmtCell(c))
		}
	}
	bd := &Building{
		id:         b.nextID,
		kind:       kind,
		owner:      b.defender,
		rect:       r,
		hp:         kind.MaxHP,
		unfinished: spec.Unfinished,
	}
	b.nextID++
	for _, c := range r.Cells() {
		b.footprint[c] = bd
	}
	if kind.Defensive && kind.Guns > 0 {
		gk, ok := b.rules.GunKind(kind.Gun)
		if !ok {
			return fmt.Errorf("building %q: unknown gun %q", kind.Name, kind.Gun)
		}
		cells := r.Cells()
		for i := 0; i < kind.Guns; i++ {
			g := &Gun{id: b.nextID, kind: gk, building: bd, cell: cells[i%len(cells)]}
			b.nextID++
			bd.guns = append(bd.guns, g)
			b.guns = append(b.guns, g)
		}
		bd.initGuns = len(bd.guns)
	}
	if kind.Main && !b.hasMain {
		b.mainRect = r
		b.hasMain = true
	}
	b.buildings = append(b.buildings, bd)
	return nil
}

// --- accessors ---

func (b *Battle) Rules() *config.Ruleset { return b.rules }
func (b *Battle) Phase() BattlePhase      { return b.phase }
func (b *Battle) CurrentTick() int        { return b.tick }
func (b *Battle) Terrain() *Terrain       { return b.terrain }
func (b *Battle) Attacker() *Player       { return b.attacker }
func (b *Battle) Defender() *Player       { return b.defender }
func (b *Battle) Units() []*Unit          { return b.units }
func (b *Battle) Buildings() []*Building  { return b.buildings }
func (b *Battle) Guns() []*Gun            { return b.guns }
func (b *Battle) Explosions() int         { return len(b.explosions) }
func (b *Battle) Rockets() int            { return len(b.rockets) }
func (b *Battle) IndexAnomalies() int     { return b.index.Anomalies() }

// Summary returns the conclusion report once the battle is over.
func (b *Battle) Summary() (Summary, bool) {
	if b.summary == nil {
		return Summary{}, false
	}
	return *b.summary, true
}

// Player returns the player of a side.
func (b *Battle) Player(side Side) *Player {
	if side == SideAttacker {
		return b.attacker
	}
	return b.defender
}

// UnitsOf returns the live units of a side.
func (b *Battle) UnitsOf(side Side) []*Unit {
	var out []*Unit
	for _, u := range b.units {
		if u.Alive() && u.owner.Side == side {
			out = append(out, u)
		}
	}
	return out
}

func (b *Battle) unitByID(id int) *Unit {
	for _, u := range b.units {
		if u.id == id {
			return u
		}
	}
	return nil
}

// UnitByID finds a unit still in the active set.
func (b *Battle) UnitByID(id int) *Unit { return b.unitByID(id) }

func (b *Battle) buildingByID(id int) *Building {
	for _, bd := range b.buildings {
		if bd.id == id {
			return bd
		}
	}
	return nil
}

// BuildingByID finds a building, destroyed or not.
func (b *Battle) BuildingByID(id int) *Building { return b.buildingByID(id) }

// SetSpeed selects the 1x, 2x or 4x simulation speed.
func (b *Battle) SetSpeed(speed int) {
	switch speed {
	case 1, 2, 4:
		b.speed = speed
	}
}

// Speed returns the active speed multiplier.
func (b *Battle) Speed() int { return b.speed }

// TickInterval is how often the external timer should call Tick.
func (b *Battle) TickInterval() time.Duration {
	return b.rules.TickInterval(b.speed)
}

// IsPassable reports whether ground units can stand on (x, y): on the map,
// passable ground and no standing structure.
func (b *Battle) IsPassable(x, y int) bool {
	return b.staticPassable(Cell{X: x, Y: y})
}

func (b *Battle) staticPassable(c Cell) bool {
	return b.terrain.Passable(c) && b.footprint[c] == nil
}

// HasMine reports whether a mine lies in cell (x, y).
func (b *Battle) HasMine(x, y int) bool {
	_, ok := b.mines[Cell{X: x, Y: y}]
	return ok
}

// --- tick loop ---

// Tick advances the simulation by one step. It does nothing outside the
// simulating phase.
func (b *Battle) Tick() {
	if b.phase != PhaseSimulating {
		return
	}
	b.tick++

	b.runBehaviors()
	b.applyOrders()
	b.planPaths()
	b.advanceExplosions()
	b.advanceRockets()
	for _, g := range b.guns {
		b.updateGun(g)
	}
	for _, u := range b.units {
		b.updateUnit(u)
	}
	b.compact()
	b.evaluate()
}

func (b *Battle) runBehaviors() {
	for _, side := range []Side{SideAttacker, SideDefender} {
		bh := b.behaviors[side]
		if bh == nil {
			continue
		}
		var idle []*Unit
		for _, u := range b.units {
			if u.owner.Side == side && u.Idle() {
				idle = append(idle, u)
			}
		}
		if len(idle) > 0 {
			bh.Act(b, side, idle)
		}
	}
}

// planPaths collects every pending request, runs them on the planner pool
// and applies the results once the whole batch has joined.
func (b *Battle) planPaths() {
	var reqs []PathRequest
	for _, u := range b.units {
		if !u.wantPlan || !u.Alive() {
			continue
		}
		u.wantPlan = false
		u.planning = true
		reqs = append(reqs, PathRequest{Unit: u, Origin: u.cell, Goal: u.goal, Seq: u.planSeq})
	}
	if len(reqs) == 0 {
		return
	}
	occupied := b.index.Occupancy()
	results := b.planner.Plan(context.Background(), reqs, func(req PathRequest) func(Cell) bool {
		return func(c Cell) bool {
			if !b.staticPassable(c) {
				return false
			}
			return c == req.Origin || !occupied[c]
		}
	})
	b.applyPaths(results)
}

func (b *Battle) applyPaths(results []PathResult) {
	for _, r := range results {
		u := r.Request.Unit
		if !u.Alive() || u.planSeq != r.Request.Seq {
			u.planning = false
			b.Log.Add(b.tick, u.label, u.owner.Side.String(), "path", "stale",
				fmt.Sprintf("seq %d superseded by %d", r.Request.Seq, u.planSeq), 0)
			b.logger.Debug("discarding superseded path", "unit", u.label, "seq", r.Request.Seq)
			continue
		}
		u.planning = false
		u.path = r.Cells
		if len(r.Cells) == 0 {
			if u.retreating {
				b.Log.Add(b.tick, u.label, u.owner.Side.String(), "path", "unreachable", "withdrawing in place", 0)
				b.removeUnit(u, true)
				continue
			}
			u.stuck = true
			u.hasGoal = false
			b.Log.Add(b.tick, u.label, u.owner.Side.String(), "path", "unreachable", fmtCell(r.Request.Goal), 0)
			continue
		}
		b.Log.Add(b.tick, u.label, u.owner.Side.String(), "path", "planned",
			fmt.Sprintf("%s → %s (%d steps)", fmtCell(r.Request.Origin), fmtCell(r.Cells[len(r.Cells)-1]), len(r.Cells)),
			float64(len(r.Cells)))
	}
}

// compact drops removed units and guns from the active collections.
func (b *Battle) compact() {
	units := b.units[:0]
	for _, u := range b.units {
		if !u.removed {
			units = append(units, u)
		}
	}
	for i := len(units); i < len(b.units); i++ {
		b.units[i] = nil
	}
	b.units = units

	guns := b.guns[:0]
	for _, g := range b.guns {
		if !g.removed {
			guns = append(guns, g)
		}
	}
	for i := len(guns); i < len(b.guns); i++ {
		b.guns[i] = nil
	}
	b.guns = guns
}

// --- win condition & conclusion ---

// CheckWinner decides whether one side has won. The attacker loses when no
// direct-fire unit is left; the defender loses when no gun and no unit is
// left; a retreating side loses once all its units have left the field.
// When both sides are empty the defender holds the field.
func (b *Battle) CheckWinner() (Side, bool) {
	if b.retreat != SideNone && b.countOnField(b.retreat) == 0 {
		return b.retreat.Opponent(), true
	}
	attackers := 0
	defenders := 0
	for _, u := range b.units {
		if !u.Alive() {
			continue
		}
		switch u.owner.Side {
		case SideAttacker:
			if u.kind.DirectFire() {
				attackers++
			}
		case SideDefender:
			defenders++
		}
	}
	for _, g := range b.guns {
		if !g.removed {
			defenders++
		}
	}
	switch {
	case attackers == 0:
		return SideDefender, true
	case defenders == 0:
		return SideAttacker, true
	}
	return SideNone, false
}

func (b *Battle) countOnField(side Side) int {
	n := 0
	for _, u := range b.units {
		if u.Alive() && u.owner.Side == side {
			n++
		}
	}
	return n
}

func (b *Battle) evaluate() {
	if b.sandbox {
		return
	}
	winner, ok := b.CheckWinner()
	if !ok {
		return
	}
	if len(b.explosions) > 0 || len(b.rockets) > 0 {
		return
	}
	b.conclude(winner)
}

func (b *Battle) conclude(winner Side) {
	b.phase = PhaseConcluded
	b.winner = winner

	var demolished []string
	if winner == SideAttacker {
		for _, bd := range b.buildings {
			if bd.unfinished && !bd.destroyed {
				bd.demolished = true
				b.removeBuilding(bd)
				demolished = append(demolished, buildingLabel(bd))
			}
		}
	}

	for side, counts := range b.casualties {
		inv := b.invs[side]
		if inv == nil {
			continue
		}
		for kind, n := range counts {
			inv.Remove(kind, n)
		}
	}

	s := Summary{
		BattleID:   b.ID,
		Winner:     winner,
		Ticks:      b.tick,
		Retreat:    b.retreat != SideNone && b.retreat != winner,
		Casualties: b.casualties,
		Withdrawn:  b.withdrawn,
		Destroyed:  b.destroyed,
		Demolished: demolished,
	}
	b.summary = &s
	b.Log.Add(b.tick, "--", "--", "lifecycle", "concluded", winner.String(), float64(b.tick))
	if b.onConcluded != nil {
		b.onConcluded(s)
	}
}

// --- shared helpers ---

func (b *Battle) spawnUnit(owner *Player, kind *config.UnitKind, c Cell) *Unit {
	heading := b.deployHeading(owner.Side, c)
	u := newUnit(b.nextID, owner, kind, c, heading, b.rules.GuardByDefault)
	b.nextID++
	b.units = append(b.units, u)
	b.index.Add(u, c)
	b.deployed[owner.Side][kind.Name]++
	b.roster[owner.Side]++
	return u
}

// deployHeading faces attackers toward the map centre and defenders away
// from their main structure.
func (b *Battle) deployHeading(side Side, c Cell) float64 {
	x, y := c.Center()
	if side == SideAttacker {
		return AngleTo(x, y, float64(b.terrain.Width)/2, float64(b.terrain.Height)/2)
	}
	mx, my := float64(b.terrain.Width)/2, float64(b.terrain.Height)/2
	if b.hasMain {
		mx, my = b.mainRect.Center()
	}
	return AngleTo(mx, my, x, y)
}

// removeUnit takes u out of the active set. Withdrawn units left the field
// alive; everything else is a loss.
func (b *Battle) removeUnit(u *Unit, withdrawn bool) {
	if u.removed {
		return
	}
	u.removed = true
	u.withdrawn = withdrawn
	u.path = nil
	b.index.Remove(u, u.cell)
	side := u.owner.Side
	if withdrawn {
		b.releaseVictims(u, "withdrawn")
		addCount(b.withdrawn, side, u.kind.Name)
		b.Log.Add(b.tick, u.label, side.String(), "lifecycle", "withdrawn", fmtCell(u.cell), 0)
		return
	}
	addCount(b.casualties, side, u.kind.Name)
	b.Log.Add(b.tick, u.label, side.String(), "lifecycle", "removed", u.kind.Name, 0)
}

// removeBuilding clears a structure and its guns from the field.
func (b *Battle) removeBuilding(bd *Building) {
	bd.destroyed = true
	for _, g := range bd.guns {
		g.removed = true
		g.target = nil
	}
	bd.guns = nil
	for _, c := range bd.rect.Cells() {
		if b.footprint[c] == bd {
			delete(b.footprint, c)
		}
	}
}

func fmtCell(c Cell) string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func buildingLabel(bd *Building) string {
	return fmt.Sprintf("%s#%d", bd.kind.Name, bd.id)
}

func targetLabel(t Target) string {
	switch {
	case t.Unit != nil:
		return t.Unit.label
	case t.Building != nil:
		return buildingLabel(t.Building)
	}
	return "none"
}
