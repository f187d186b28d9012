package game

import (
	"fmt"

	"github.com/Garsondee/Battle-Sense/internal/config"
)

// Scenario is a headless battle harness used by tests and the report tool.
// Units are placed directly, bypassing the deployment zones, and the battle
// starts simulating immediately.
type Scenario struct {
	Width  int
	Height int
	Rules  *config.Ruleset
	Battle *Battle

	terrain    *Terrain
	ground     []groundPatch
	structures []BuildingSpec
	units      []scenarioUnit
	battleOpts []Option
	conclude   bool
	verbose    bool
}

type groundPatch struct {
	r Rect
	g GroundType
}

type scenarioUnit struct {
	side Side
	kind string
	cell Cell
}

// scenarioOptionKind controls the pass in which an option is applied.
type scenarioOptionKind int

const (
	scenarioOptInfra scenarioOptionKind = iota // map, rules, ground, buildings, applied first
	scenarioOptUnit                            // units, placed after the battle exists
)

// ScenarioOption is a builder function applied to a Scenario during construction.
type ScenarioOption struct {
	kind scenarioOptionKind
	fn   func(*Scenario)
}

// WithMapSize sets the battlefield dimensions in cells.
func WithMapSize(w, h int) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) {
		sc.Width = w
		sc.Height = h
	}}
}

// WithRules replaces the default ruleset.
func WithRules(rs *config.Ruleset) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) { sc.Rules = rs }}
}

// WithGround paints a rectangle of ground type g.
func WithGround(x, y, w, h int, g GroundType) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) {
		sc.ground = append(sc.ground, groundPatch{Rect{X: x, Y: y, W: w, H: h}, g})
	}}
}

// WithStructure places a defender building with its top-left cell at (x, y).
func WithStructure(kind string, x, y int) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) {
		sc.structures = append(sc.structures, BuildingSpec{Kind: kind, X: x, Y: y})
	}}
}

// WithUnfinishedStructure places a defender building still under construction.
func WithUnfinishedStructure(kind string, x, y int) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) {
		sc.structures = append(sc.structures, BuildingSpec{Kind: kind, X: x, Y: y, Unfinished: true})
	}}
}

// WithBattleOptions passes options through to the battle (seed, behaviours...).
func WithBattleOptions(opts ...Option) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) {
		sc.battleOpts = append(sc.battleOpts, opts...)
	}}
}

// WithConclusion enables the win check. Scenarios run in sandbox mode otherwise.
func WithConclusion() ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) { sc.conclude = true }}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) { sc.verbose = v }}
}

// WithAttackerUnit places an attacker unit of kind at cell (cx, cy).
func WithAttackerUnit(kind string, cx, cy int) ScenarioOption {
	return ScenarioOption{scenarioOptUnit, func(sc *Scenario) {
		sc.units = append(sc.units, scenarioUnit{SideAttacker, kind, Cell{X: cx, Y: cy}})
	}}
}

// WithDefenderUnit places a defender unit of kind at cell (cx, cy).
func WithDefenderUnit(kind string, cx, cy int) ScenarioOption {
	return ScenarioOption{scenarioOptUnit, func(sc *Scenario) {
		sc.units = append(sc.units, scenarioUnit{SideDefender, kind, Cell{X: cx, Y: cy}})
	}}
}

// NewScenario builds and starts a battle from the given options. It panics
// on an inconsistent setup, which is always a bug in the calling test.
func NewScenario(opts ...ScenarioOption) *Scenario {
	sc := &Scenario{Width: 32, Height: 32}
	for _, o := range opts {
		if o.kind == scenarioOptInfra {
			o.fn(sc)
		}
	}
	for _, o := range opts {
		if o.kind == scenarioOptUnit {
			o.fn(sc)
		}
	}
	if sc.Rules == nil {
		sc.Rules = config.Default()
	}

	sc.terrain = NewTerrain(sc.Width, sc.Height)
	for _, p := range sc.ground {
		for _, c := range p.r.Cells() {
			sc.terrain.Set(c, p.g)
		}
	}

	stock := map[Side]map[string]int{SideAttacker: {}, SideDefender: {}}
	for _, su := range sc.units {
		stock[su.side][su.kind]++
	}

	bopts := []Option{WithSeed(1), WithBattleLog(NewBattleLog(sc.verbose))}
	if !sc.conclude {
		bopts = append(bopts, WithSandbox())
	}
	bopts = append(bopts, sc.battleOpts...)

	b, err := InitiateBattle(sc.Rules,
		&Player{Name: "attacker"}, NewRoster(stock[SideAttacker]),
		DefenderContext{
			Player:    &Player{Name: "defender"},
			Inventory: NewRoster(stock[SideDefender]),
			Terrain:   sc.terrain,
			Buildings: sc.structures,
		}, bopts...)
	if err != nil {
		panic(fmt.Sprintf("scenario: %v", err))
	}
	for _, su := range sc.units {
		k, ok := sc.Rules.UnitKind(su.kind)
		if !ok {
			panic(fmt.Sprintf("scenario: unknown unit kind %q", su.kind))
		}
		if !b.staticPassable(su.cell) || len(b.index.At(su.cell)) > 0 {
			panic(fmt.Sprintf("scenario: cannot place %s at %s", su.kind, fmtCell(su.cell)))
		}
		b.spawnUnit(b.Player(su.side), k, su.cell)
	}
	if err := b.Start(); err != nil {
		panic(fmt.Sprintf("scenario: %v", err))
	}
	sc.Battle = b
	return sc
}

// Attackers returns the attacker units still on the field.
func (sc *Scenario) Attackers() []*Unit { return sc.Battle.UnitsOf(SideAttacker) }

// Defenders returns the defender units still on the field.
func (sc *Scenario) Defenders() []*Unit { return sc.Battle.UnitsOf(SideDefender) }

// RunTicks advances the battle n ticks.
func (sc *Scenario) RunTicks(n int) {
	for i := 0; i < n; i++ {
		sc.Battle.Tick()
	}
}

// RunUntil advances the battle up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (sc *Scenario) RunUntil(predicate func(*Scenario) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		sc.Battle.Tick()
		if predicate(sc) {
			return sc.Battle.CurrentTick()
		}
	}
	return -1
}

// RunToConclusion runs until the battle ends or maxTicks pass.
func (sc *Scenario) RunToConclusion(maxTicks int) (Summary, bool) {
	sc.RunUntil(func(s *Scenario) bool { return s.Battle.Phase() == PhaseConcluded }, maxTicks)
	return sc.Battle.Summary()
}
