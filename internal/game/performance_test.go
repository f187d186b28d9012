package game

import (
	"strings"
	"testing"
)

func TestComputeGrade_SurvivorOutscoresEarlyLoss(t *testing.T) {
	good := &PerfTracker{
		Label: "A1", Side: SideAttacker, Kind: "tank", MaxHP: 100, Armed: true, Survived: true,
		TicksAlive: 200, TicksApproaching: 20, TicksRotating: 10, TicksFiring: 60, TicksMoving: 40,
		Shots: 8, DamageTaken: 30, DistanceTraveled: 25,
	}
	bad := &PerfTracker{
		Label: "A2", Side: SideAttacker, Kind: "tank", MaxHP: 100, Armed: true,
		TicksAlive: 20, TicksIdle: 15, TicksYielding: 5, TicksMoving: 5,
		DamageTaken: 100,
	}
	gg, bg := computeGrade(good), computeGrade(bad)
	if gg.Score <= bg.Score {
		t.Fatalf("survivor %.1f should outscore early loss %.1f", gg.Score, bg.Score)
	}
	if gg.GunneryScore < 0 || bg.GunneryScore >= 0 {
		t.Fatalf("gunnery scores %.1f / %.1f", gg.GunneryScore, bg.GunneryScore)
	}
	if !containsTrait(gg.GoodTraits, "steady_gunner") {
		t.Fatalf("good traits = %v", gg.GoodTraits)
	}
	if !containsTrait(bg.BadTraits, "early_loss") || !containsTrait(bg.BadTraits, "idle_gun") {
		t.Fatalf("bad traits = %v", bg.BadTraits)
	}
}

func TestPerfLetterGrade(t *testing.T) {
	cases := map[float64]string{100: "A+", 86: "A", 70: "B", 56: "C", 10: "F"}
	for score, want := range cases {
		if got := PerfLetterGrade(score); got != want {
			t.Fatalf("PerfLetterGrade(%v) = %s, want %s", score, got, want)
		}
	}
}

func TestPerfBoard_GradesDuel(t *testing.T) {
	sc := NewScenario(
		WithMapSize(20, 10),
		WithConclusion(),
		WithAttackerUnit("tank", 3, 5),
		WithDefenderUnit("tank", 8, 5),
		WithBattleOptions(WithSeed(42), WithBehavior(SideAttacker, AssaultBehavior{})),
	)
	pb := NewPerfBoard()
	for i := 0; i < 3000 && sc.Battle.Phase() == PhaseSimulating; i++ {
		sc.Battle.Tick()
		pb.Update(sc.Battle)
	}
	sum, ok := sc.Battle.Summary()
	if !ok {
		t.Fatal("duel did not conclude")
	}
	pb.Finalize(sc.Battle.Log)
	grades := pb.Grades()
	if len(grades) != 2 {
		t.Fatalf("grades = %d, want 2", len(grades))
	}
	shots := 0
	for _, g := range grades {
		shots += g.Shots
		if g.Side != sum.Winner && g.Survived {
			t.Fatalf("%s on the losing side marked survived", g.Label)
		}
	}
	if shots == 0 {
		t.Fatal("no shots attributed")
	}
	if out := FormatGrades(grades); !strings.Contains(out, "ATTACKER") || !strings.Contains(out, "DEFENDER") {
		t.Fatalf("format:\n%s", out)
	}
	if out := FormatGradesSummary(grades); !strings.Contains(out, "avg_score") {
		t.Fatalf("summary:\n%s", out)
	}
}

func containsTrait(traits []string, want string) bool {
	for _, t := range traits {
		if t == want {
			return true
		}
	}
	return false
}
