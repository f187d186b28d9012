package game

import (
	"testing"
	"time"

	"github.com/Garsondee/Battle-Sense/internal/config"
)

// testRules returns the default ruleset plus two test-only kinds: an
// unarmed "dummy" target and a fast unarmed "scout".
func testRules(t *testing.T, mutate func(rs *config.Ruleset)) *config.Ruleset {
	t.Helper()
	rs := config.Default()
	rs.Units = append(rs.Units,
		config.UnitKind{Name: "dummy", MaxHP: 1000, MoveSpeed: 300},
		config.UnitKind{Name: "scout", MaxHP: 50, MoveSpeed: 200},
	)
	if mutate != nil {
		mutate(rs)
	}
	if err := rs.Validate(); err != nil {
		t.Fatalf("test ruleset invalid: %v", err)
	}
	return rs
}

func unitKind(t *testing.T, rs *config.Ruleset, name string) *config.UnitKind {
	t.Helper()
	k, ok := rs.UnitKind(name)
	if !ok {
		t.Fatalf("unit kind %q missing", name)
	}
	return k
}

func TestInitiateBattle_RejectsOverlappingStructures(t *testing.T) {
	_, err := InitiateBattle(config.Default(), &Player{Name: "a"}, NewRoster(nil), DefenderContext{
		Player:  &Player{Name: "d"},
		Terrain: NewTerrain(20, 20),
		Buildings: []BuildingSpec{
			{Kind: "bunker", X: 5, Y: 5},
			{Kind: "factory", X: 6, Y: 6},
		},
	})
	if err == nil {
		t.Fatal("expected overlapping structures to be rejected")
	}
}

func TestInitiateBattle_RejectsUnknownStructureAndMissingTerrain(t *testing.T) {
	_, err := InitiateBattle(config.Default(), &Player{}, nil, DefenderContext{
		Player:    &Player{},
		Terrain:   NewTerrain(10, 10),
		Buildings: []BuildingSpec{{Kind: "castle"}},
	})
	if err == nil {
		t.Fatal("expected unknown building kind to be rejected")
	}
	if _, err := InitiateBattle(config.Default(), &Player{}, nil, DefenderContext{Player: &Player{}}); err == nil {
		t.Fatal("expected missing terrain to be rejected")
	}
}

func TestInitiateBattle_MountsGunsAndBlocksFootprint(t *testing.T) {
	b, err := InitiateBattle(config.Default(), &Player{Name: "a"}, nil, DefenderContext{
		Player:    &Player{Name: "d"},
		Terrain:   NewTerrain(20, 20),
		Buildings: []BuildingSpec{{Kind: "bunker", X: 5, Y: 5}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if b.Phase() != PhaseDeployment {
		t.Fatalf("expected deployment phase, got %s", b.Phase())
	}
	if len(b.Guns()) != 2 || b.Buildings()[0].Guns() != 2 {
		t.Fatalf("expected 2 turrets on the bunker, got %d", len(b.Guns()))
	}
	if b.IsPassable(5, 5) || b.IsPassable(6, 6) {
		t.Fatal("bunker footprint must be impassable")
	}
	if !b.IsPassable(7, 5) {
		t.Fatal("cell next to the bunker should be passable")
	}
	if b.Attacker().Side != SideAttacker || b.Defender().Side != SideDefender {
		t.Fatal("players should be assigned their sides")
	}
	if b.ID == "" {
		t.Fatal("expected a battle id")
	}
}

func TestTick_NoOpOutsideSimulation(t *testing.T) {
	b, err := InitiateBattle(config.Default(), &Player{}, nil, DefenderContext{Player: &Player{}, Terrain: NewTerrain(8, 8)})
	if err != nil {
		t.Fatal(err)
	}
	b.Tick()
	if b.CurrentTick() != 0 {
		t.Fatal("tick must not advance during deployment")
	}
}

func TestSetSpeed_TickInterval(t *testing.T) {
	sc := NewScenario(WithMapSize(8, 8))
	b := sc.Battle
	if b.TickInterval() != 100*time.Millisecond {
		t.Fatalf("expected 100ms at 1x, got %s", b.TickInterval())
	}
	b.SetSpeed(4)
	if b.TickInterval() != 25*time.Millisecond {
		t.Fatalf("expected 25ms at 4x, got %s", b.TickInterval())
	}
	b.SetSpeed(3)
	if b.Speed() != 4 {
		t.Fatal("unsupported speed must be ignored")
	}
}

func TestCheckWinner(t *testing.T) {
	rs := testRules(t, nil)
	cases := []struct {
		name   string
		opts   []ScenarioOption
		winner Side
		done   bool
	}{
		{"both armed", []ScenarioOption{WithAttackerUnit("tank", 1, 1), WithDefenderUnit("tank", 15, 15)}, SideNone, false},
		{"attacker has no direct fire", []ScenarioOption{WithAttackerUnit("paralyzer", 1, 1), WithDefenderUnit("dummy", 15, 15)}, SideDefender, true},
		{"defender guns only", []ScenarioOption{WithAttackerUnit("tank", 1, 1), WithStructure("bunker", 10, 10)}, SideNone, false},
		{"defender empty", []ScenarioOption{WithAttackerUnit("tank", 1, 1), WithStructure("factory", 10, 10)}, SideAttacker, true},
		{"both empty", nil, SideDefender, true},
	}
	for _, tc := range cases {
		opts := append([]ScenarioOption{WithMapSize(20, 20), WithRules(rs)}, tc.opts...)
		sc := NewScenario(opts...)
		w, done := sc.Battle.CheckWinner()
		if w != tc.winner || done != tc.done {
			t.Errorf("%s: expected (%s,%v), got (%s,%v)", tc.name, tc.winner, tc.done, w, done)
		}
	}
}

func TestConclusion_AttackerWinsDemolishesAndSettlesInventory(t *testing.T) {
	rs := testRules(t, func(rs *config.Ruleset) {
		unitKind(t, rs, "dummy").MaxHP = 20
	})
	concluded := 0
	sc := NewScenario(
		WithMapSize(20, 10),
		WithRules(rs),
		WithConclusion(),
		WithUnfinishedStructure("factory", 15, 1),
		WithAttackerUnit("tank", 2, 5),
		WithDefenderUnit("dummy", 4, 5),
		WithBattleOptions(
			WithBehavior(SideAttacker, AssaultBehavior{}),
			WithConcludedHandler(func(Summary) { concluded++ }),
		),
	)
	s, ok := sc.RunToConclusion(200)
	if !ok {
		t.Fatalf("battle did not conclude:\n%s", sc.Battle.Log.Format())
	}
	if s.Winner != SideAttacker || s.Retreat {
		t.Fatalf("expected a plain attacker win, got %+v", s)
	}
	if concluded != 1 {
		t.Fatalf("conclusion handler called %d times", concluded)
	}
	if s.Lost(SideDefender) != 1 || s.Lost(SideAttacker) != 0 {
		t.Fatalf("unexpected casualties %v", s.Casualties)
	}
	if len(s.Demolished) != 1 || !sc.Battle.Buildings()[0].Destroyed() {
		t.Fatalf("expected the unfinished factory to be demolished, got %v", s.Demolished)
	}
	if n := sc.Battle.invs[SideDefender].Stock()["dummy"]; n != 0 {
		t.Fatalf("defender inventory should lose the dummy, has %d", n)
	}
	if n := sc.Battle.invs[SideAttacker].Stock()["tank"]; n != 1 {
		t.Fatalf("attacker inventory should keep its tank, has %d", n)
	}
	// Further ticks are inert.
	tick := sc.Battle.CurrentTick()
	sc.RunTicks(5)
	if sc.Battle.CurrentTick() != tick {
		t.Fatal("a concluded battle must not tick")
	}
}

func TestConclusion_WaitsForExplosions(t *testing.T) {
	sc := NewScenario(
		WithMapSize(12, 12),
		WithConclusion(),
		WithAttackerUnit("tank", 2, 2),
		WithDefenderUnit("tank", 9, 9),
	)
	d := sc.Defenders()[0]
	sc.Battle.ApplyDamage(Target{Unit: d}, 500)
	sc.RunTicks(1)
	if sc.Battle.Phase() == PhaseConcluded {
		t.Fatal("battle must not conclude while the kill explosion is running")
	}
	s, ok := sc.RunToConclusion(20)
	if !ok || s.Winner != SideAttacker {
		t.Fatalf("expected attacker win after explosion, got %+v ok=%v", s, ok)
	}
	if s.Ticks != sc.Rules.ExplosionPhases {
		t.Fatalf("expected conclusion when the explosion ends (tick %d), got %d", sc.Rules.ExplosionPhases, s.Ticks)
	}
}

func TestRetreat_WithdrawsAndLoses(t *testing.T) {
	rs := testRules(t, nil)
	sc := NewScenario(
		WithMapSize(20, 10),
		WithRules(rs),
		WithConclusion(),
		WithAttackerUnit("tank", 3, 5),
		WithDefenderUnit("dummy", 15, 5),
	)
	sc.Battle.Retreat(SideAttacker)
	s, ok := sc.RunToConclusion(200)
	if !ok {
		t.Fatalf("retreat did not conclude:\n%s", sc.Battle.Log.Format())
	}
	if s.Winner != SideDefender || !s.Retreat {
		t.Fatalf("expected defender win by retreat, got %+v", s)
	}
	if s.Withdrawn[SideAttacker]["tank"] != 1 || s.Lost(SideAttacker) != 0 {
		t.Fatalf("expected the tank withdrawn, not lost: %+v", s)
	}
	if n := sc.Battle.invs[SideAttacker].Stock()["tank"]; n != 1 {
		t.Fatalf("withdrawn units stay in inventory, have %d", n)
	}
}

func TestRetreat_ResumesAfterParalysis(t *testing.T) {
	rs := testRules(t, func(rs *config.Ruleset) { rs.ParalysisTicks = 3 })
	sc := NewScenario(
		WithMapSize(24, 24),
		WithRules(rs),
		WithConclusion(),
		WithAttackerUnit("tank", 1, 22),
		WithAttackerUnit("paralyzer", 22, 22),
		WithDefenderUnit("scout", 12, 12),
	)
	scout := sc.Defenders()[0]
	sc.Battle.Retreat(SideDefender)
	sc.RunTicks(2)
	if !scout.retreating || len(scout.Path()) == 0 {
		t.Fatal("expected the scout under way to the edge")
	}
	sc.Battle.paralyze(sc.Attackers()[1], scout)
	if len(scout.Path()) != 0 {
		t.Fatal("paralysis drops the route")
	}
	s, ok := sc.RunToConclusion(500)
	if !ok {
		t.Fatalf("paralyzed retreat stranded the scout:\n%s", sc.Battle.Log.Format())
	}
	if s.Winner != SideAttacker || !s.Retreat {
		t.Fatalf("expected attacker win by retreat, got %+v", s)
	}
	if s.Withdrawn[SideDefender]["scout"] != 1 {
		t.Fatalf("expected the scout withdrawn: %+v", s)
	}
}

func TestRetreat_BlockedEdgeWithdrawsShort(t *testing.T) {
	rs := testRules(t, func(rs *config.Ruleset) { rs.GuardByDefault = false })
	sc := NewScenario(
		WithMapSize(12, 9),
		WithRules(rs),
		WithConclusion(),
		// Every border cell but (0,4) is rock.
		WithGround(0, 0, 12, 1, GroundRock),
		WithGround(0, 8, 12, 1, GroundRock),
		WithGround(11, 0, 1, 9, GroundRock),
		WithGround(0, 0, 1, 4, GroundRock),
		WithGround(0, 5, 1, 4, GroundRock),
		WithAttackerUnit("tank", 0, 4),
		WithDefenderUnit("scout", 6, 4),
	)
	sc.Battle.Retreat(SideDefender)
	s, ok := sc.RunToConclusion(1000)
	if !ok {
		t.Fatalf("retreat towards a held edge cell never ended:\n%s", sc.Battle.Log.Format())
	}
	if s.Winner != SideAttacker || !s.Retreat {
		t.Fatalf("expected attacker win by retreat, got %+v", s)
	}
	if s.Withdrawn[SideDefender]["scout"] != 1 || s.Lost(SideDefender) != 0 {
		t.Fatalf("expected the scout withdrawn, not lost: %+v", s)
	}
	if !sc.Battle.Log.HasEntry("move", "replan", "retreat to edge") {
		t.Fatal("arriving short of the edge should plan again")
	}
}

func TestCheckWinner_MutualDestructionGoesToDefender(t *testing.T) {
	rs := testRules(t, func(rs *config.Ruleset) {
		for i := range rs.Units {
			if rs.Units[i].Name == "scout" {
				rs.Units[i].MaxHP = 40
			}
		}
	})
	sc := NewScenario(
		WithMapSize(20, 20),
		WithRules(rs),
		WithConclusion(),
		WithAttackerUnit("kamikaze", 10, 10),
		WithDefenderUnit("scout", 9, 10),
	)
	sc.Battle.Special(sc.Attackers()[0])
	s, ok := sc.RunToConclusion(200)
	if !ok {
		t.Fatal("both sides wiped out should conclude")
	}
	if s.Lost(SideAttacker) != 1 || s.Lost(SideDefender) != 1 {
		t.Fatalf("expected both units lost: %+v", s)
	}
	if s.Winner != SideDefender {
		t.Fatalf("a mutual wipe-out goes to the defender, got %s", s.Winner)
	}
}

func TestBattle_DeterministicDuel(t *testing.T) {
	run := func() (Summary, float64) {
		sc := NewScenario(
			WithMapSize(20, 20),
			WithConclusion(),
			WithAttackerUnit("tank", 5, 10),
			WithDefenderUnit("tank", 10, 10),
			WithBattleOptions(WithSeed(42), WithBehavior(SideAttacker, AssaultBehavior{})),
		)
		s, ok := sc.RunToConclusion(2000)
		if !ok {
			t.Fatalf("duel did not conclude:\n%s", sc.Battle.Log.Format())
		}
		survivors := append(sc.Attackers(), sc.Defenders()...)
		if len(survivors) != 1 {
			t.Fatalf("expected exactly one survivor, got %d", len(survivors))
		}
		if survivors[0].Owner().Side != s.Winner {
			t.Fatalf("survivor side %s does not match winner %s", survivors[0].Owner().Side, s.Winner)
		}
		return s, survivors[0].HP()
	}
	s1, hp1 := run()
	s2, hp2 := run()
	if s1.Winner != s2.Winner || s1.Ticks != s2.Ticks || hp1 != hp2 {
		t.Fatalf("same seed should replay identically: %s/%d/%.0f vs %s/%d/%.0f",
			s1.Winner, s1.Ticks, hp1, s2.Winner, s2.Ticks, hp2)
	}
	if int(hp1)%20 != 0 || hp1 <= 0 {
		t.Fatalf("survivor hp should be a positive multiple of the tank damage, got %.1f", hp1)
	}
	if s1.Lost(s1.Winner.Opponent()) != 1 {
		t.Fatalf("loser should have lost its tank: %v", s1.Casualties)
	}
}

func TestSnapshot_IsDetached(t *testing.T) {
	sc := NewScenario(
		WithMapSize(10, 10),
		WithStructure("bunker", 6, 6),
		WithAttackerUnit("tank", 1, 1),
	)
	snap := sc.Battle.Snapshot(true)
	if len(snap.Units) != 1 || len(snap.Buildings) != 1 || len(snap.Guns) != 2 {
		t.Fatalf("unexpected snapshot contents %+v", snap)
	}
	if len(snap.Ground) != 100 {
		t.Fatalf("expected 100 ground cells, got %d", len(snap.Ground))
	}
	snap.Units[0].HP = 1
	if sc.Attackers()[0].HP() == 1 {
		t.Fatal("snapshot must not alias live units")
	}
	if sc.Battle.Snapshot(false).Ground != nil {
		t.Fatal("ground omitted when not requested")
	}
}
