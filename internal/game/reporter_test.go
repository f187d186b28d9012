package game

import (
	"strings"
	"testing"
)

func TestSampleOf_CountsSides(t *testing.T) {
	s := Snapshot{
		Tick: 12,
		Units: []UnitView{
			{Side: "attacker", State: "moving", HP: 50, MaxHP: 100},
			{Side: "attacker", State: "firing", HP: 100, MaxHP: 100},
			{Side: "defender", State: "idle", HP: 40, MaxHP: 40},
		},
		Guns:      []GunView{{ID: 1}, {ID: 2}},
		Buildings: []BuildingView{{ID: 1}, {ID: 2, Destroyed: true}},
		Rockets:   []RocketView{{}},
	}
	bs := SampleOf(s)
	if bs.Attacker.Alive != 2 || bs.Attacker.Injured != 1 {
		t.Fatalf("attacker alive=%d injured=%d", bs.Attacker.Alive, bs.Attacker.Injured)
	}
	if bs.Attacker.HPFrac != 0.75 {
		t.Fatalf("attacker hp frac = %v, want 0.75", bs.Attacker.HPFrac)
	}
	if bs.Defender.Guns != 2 || bs.Defender.Buildings != 1 {
		t.Fatalf("defender guns=%d buildings=%d", bs.Defender.Guns, bs.Defender.Buildings)
	}
	if bs.Attacker.States["firing"] != 1 || bs.Rockets != 1 {
		t.Fatalf("states=%v rockets=%d", bs.Attacker.States, bs.Rockets)
	}
}

func TestBattleReporter_WindowSummary(t *testing.T) {
	r := NewBattleReporter(20)
	if r.WindowSummary() != nil {
		t.Fatal("empty reporter should have no summary")
	}
	// Ticks 0..30; the 20-tick window keeps 10, 20, 30.
	for _, p := range []struct{ tick, alive, guns int }{{0, 6, 4}, {10, 5, 4}, {20, 4, 3}, {30, 2, 1}} {
		r.Add(BattleSample{
			Tick:     p.tick,
			Attacker: SideSample{Alive: p.alive, States: map[string]int{"moving": p.alive}},
			Defender: SideSample{Alive: 3, Guns: p.guns, States: map[string]int{"idle": 3}},
		})
	}
	wr := r.WindowSummary()
	if wr.SampleCount != 3 || wr.FromTick != 10 || wr.ToTick != 30 {
		t.Fatalf("window T=%d..%d n=%d", wr.FromTick, wr.ToTick, wr.SampleCount)
	}
	if wr.Attacker.Lost != 3 || wr.Defender.GunsLost != 3 {
		t.Fatalf("lost=%d guns_lost=%d", wr.Attacker.Lost, wr.Defender.GunsLost)
	}
	if wr.Attacker.StatePct["moving"] != 100 {
		t.Fatalf("moving pct = %v", wr.Attacker.StatePct["moving"])
	}
	if !strings.Contains(wr.Format(), "moving") {
		t.Fatalf("format missing state line:\n%s", wr.Format())
	}
}

func TestBattleReporter_CollectFromBattle(t *testing.T) {
	sc := NewScenario(
		WithMapSize(20, 12),
		WithAttackerUnit("tank", 2, 5),
		WithDefenderUnit("tank", 17, 5),
	)
	r := NewBattleReporter(0)
	for i := 0; i < 5; i++ {
		sc.RunTicks(2)
		r.Collect(sc.Battle)
	}
	if r.Samples() != 5 {
		t.Fatalf("samples = %d", r.Samples())
	}
	last := r.Latest()
	if last.Tick != sc.Battle.CurrentTick() {
		t.Fatalf("latest tick %d, battle at %d", last.Tick, sc.Battle.CurrentTick())
	}
	if last.Attacker.Alive+last.Defender.Alive == 0 {
		t.Fatal("sample saw no units")
	}
}
