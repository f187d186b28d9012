package game

import (
	"math"
	"testing"

	"github.com/Garsondee/Battle-Sense/internal/config"
)

func TestMovement_ConvergesOnCellCentre(t *testing.T) {
	sc := NewScenario(
		WithMapSize(12, 6),
		WithRules(testRules(t, nil)),
		WithAttackerUnit("scout", 2, 2),
	)
	u := sc.Attackers()[0]
	sc.Battle.Move(u, 6, 2)
	// 200 time units per cell at 100 per tick: half a cell per tick.
	sc.RunTicks(7)
	if x, _ := u.Pos(); math.Abs(x-6.0) > 1e-9 {
		t.Fatalf("expected x=6.0 after 7 ticks, got %f", x)
	}
	sc.RunTicks(1)
	x, y := u.Pos()
	if x != 6.5 || y != 2.5 {
		t.Fatalf("expected exact centre (6.5,2.5), got (%f,%f)", x, y)
	}
	if u.Cell() != (Cell{6, 2}) || u.State() != UnitStateIdle {
		t.Fatalf("expected idle at (6,2), got %v %s", u.Cell(), u.State())
	}
	if got := sc.Battle.index.At(Cell{6, 2}); len(got) != 1 || got[0] != u {
		t.Fatal("location index should hold the unit at its final cell")
	}
}

func TestMovement_MudSlows(t *testing.T) {
	sc := NewScenario(
		WithMapSize(12, 6),
		WithRules(testRules(t, nil)),
		WithGround(0, 0, 12, 6, GroundMud),
		WithAttackerUnit("scout", 2, 2),
	)
	u := sc.Attackers()[0]
	sc.Battle.Move(u, 9, 2)
	sc.RunTicks(4)
	if x, _ := u.Pos(); math.Abs(x-3.5) > 1e-9 {
		t.Fatalf("expected a quarter cell per tick in mud (x=3.5), got %f", x)
	}
}

func TestMovement_YieldThenReplan(t *testing.T) {
	rs := testRules(t, func(rs *config.Ruleset) { rs.YieldTicks = 5 })
	sc := NewScenario(
		WithMapSize(12, 6),
		WithRules(rs),
		WithAttackerUnit("scout", 1, 2),
	)
	b := sc.Battle
	a := sc.Attackers()[0]
	b.Move(a, 8, 2)
	sc.RunTicks(1)
	// A friendly steps into the planned path after planning.
	blocker := b.spawnUnit(b.Player(SideAttacker), unitKind(t, rs, "tank"), Cell{4, 2})

	if sc.RunUntil(func(*Scenario) bool { return a.State() == UnitStateYielding }, 20) < 0 {
		t.Fatalf("expected the scout to yield:\n%s", b.Log.Format())
	}
	held, _ := a.Pos()
	sc.RunTicks(2)
	if x, _ := a.Pos(); x != held {
		t.Fatal("a yielding unit must not move")
	}
	b.Move(blocker, 4, 5)

	if sc.RunUntil(func(*Scenario) bool { return a.Cell() == (Cell{8, 2}) && a.Idle() }, 80) < 0 {
		t.Fatalf("scout never reached its goal:\n%s", b.Log.Format())
	}
	if !b.Log.HasEntry("move", "yield", "") || !b.Log.HasEntry("move", "replan", "(8,2)") {
		t.Fatalf("expected yield and replan log entries:\n%s", b.Log.Format())
	}
}

func TestPlanning_StaleResultDiscarded(t *testing.T) {
	sc := NewScenario(WithMapSize(10, 10), WithAttackerUnit("tank", 1, 1))
	b := sc.Battle
	u := sc.Attackers()[0]
	u.requestPlan(Cell{5, 5})
	old := PathRequest{Unit: u, Origin: u.cell, Goal: Cell{5, 5}, Seq: u.planSeq}
	u.requestPlan(Cell{8, 1})
	b.applyPaths([]PathResult{{Request: old, Cells: []Cell{{2, 2}, {3, 3}}}})
	if len(u.Path()) != 0 {
		t.Fatal("a superseded path must not be applied")
	}
	if !b.Log.HasEntry("path", "stale", "") {
		t.Fatal("expected a stale-path log entry")
	}
	sc.RunTicks(1)
	p := u.Path()
	if len(p) == 0 || p[len(p)-1] != (Cell{8, 1}) {
		t.Fatalf("expected the newer request to be planned, got %v", p)
	}
}

func TestPlanning_UnreachableMarksStuck(t *testing.T) {
	sc := NewScenario(
		WithMapSize(10, 10),
		WithGround(5, 0, 1, 10, GroundWater),
		WithAttackerUnit("tank", 1, 1),
	)
	u := sc.Attackers()[0]
	sc.Battle.Move(u, 8, 8)
	sc.RunTicks(1)
	if u.stuck {
		t.Fatal("an approximate path is not stuck")
	}
	p := u.Path()
	if len(p) == 0 || p[len(p)-1].X != 4 {
		t.Fatalf("expected a path ending at the water's edge, got %v", p)
	}

	// Standing at the closest reachable cell, a new order for the far bank
	// yields nothing.
	sc.RunUntil(func(*Scenario) bool { return len(u.Path()) == 0 }, 100)
	sc.Battle.Move(u, 8, 8)
	sc.RunTicks(1)
	if !u.stuck || !sc.Battle.Log.HasEntry("path", "unreachable", "") {
		t.Fatalf("expected stuck after an empty search:\n%s", sc.Battle.Log.Format())
	}
	sc.RunTicks(5)
	if u.planning || u.wantPlan {
		t.Fatal("a stuck unit waits for the next order")
	}
}

func TestMine_TriggersOnceOnEnemy(t *testing.T) {
	sc := NewScenario(
		WithMapSize(12, 8),
		WithAttackerUnit("minelayer", 2, 2),
		WithDefenderUnit("tank", 9, 2),
	)
	b := sc.Battle
	layer := sc.Attackers()[0]
	enemy := sc.Defenders()[0]
	b.Special(layer)
	sc.RunTicks(6)
	if !b.HasMine(2, 2) {
		t.Fatalf("expected a mine at (2,2):\n%s", b.Log.Format())
	}
	b.Move(layer, 2, 7)
	sc.RunTicks(10)
	if b.HasMine(2, 2) == false {
		t.Fatal("the layer leaving must not spring its own mine")
	}

	b.Move(enemy, 0, 2)
	if sc.RunUntil(func(*Scenario) bool { return !b.HasMine(2, 2) }, 60) < 0 {
		t.Fatalf("enemy never sprang the mine:\n%s", b.Log.Format())
	}
	if enemy.HP() != 40 {
		t.Fatalf("expected 60 mine damage (hp 40), got %.1f", enemy.HP())
	}
	sc.RunTicks(30)
	if enemy.HP() != 40 || b.Log.CountCategory("mine", "triggered") != 1 {
		t.Fatal("a mine fires once")
	}
}

func TestMine_FriendlyDoesNotTrigger(t *testing.T) {
	sc := NewScenario(
		WithMapSize(12, 8),
		WithAttackerUnit("minelayer", 2, 2),
		WithAttackerUnit("tank", 6, 2),
	)
	b := sc.Battle
	layer, tank := sc.Attackers()[0], sc.Attackers()[1]
	b.Special(layer)
	sc.RunTicks(6)
	b.Move(layer, 2, 6)
	sc.RunTicks(15)
	b.Move(tank, 0, 2)
	sc.RunUntil(func(*Scenario) bool { return tank.Cell() == (Cell{0, 2}) }, 60)
	if !b.HasMine(2, 2) || tank.HP() != tank.Kind().MaxHP {
		t.Fatal("friendly units must pass over their side's mines")
	}
}

func TestMine_SecondLayOnSameCellRefused(t *testing.T) {
	sc := NewScenario(WithMapSize(8, 8), WithAttackerUnit("minelayer", 2, 2))
	b := sc.Battle
	layer := sc.Attackers()[0]
	b.Special(layer)
	sc.RunTicks(6)
	b.Special(layer)
	sc.RunTicks(6)
	if !b.Log.HasEntry("mine", "occupied", "(2,2)") || len(b.Snapshot(false).Mines) != 1 {
		t.Fatal("expected one mine and an occupied log entry")
	}
}
