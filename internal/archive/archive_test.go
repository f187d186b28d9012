package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Garsondee/Battle-Sense/internal/game"
)

func openTemp(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "battles.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestRecordAndStats(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()

	first := game.Summary{
		BattleID: "b-1",
		Winner:   game.SideAttacker,
		Ticks:    100,
		Casualties: map[game.Side]map[string]int{
			game.SideAttacker: {"tank": 2},
			game.SideDefender: {"tank": 1, "minelayer": 1},
		},
		Destroyed:  []string{"bunker#3"},
		Demolished: []string{"factory#9"},
	}
	second := game.Summary{
		BattleID:   "b-2",
		Winner:     game.SideDefender,
		Ticks:      300,
		Retreat:    true,
		Casualties: map[game.Side]map[string]int{game.SideAttacker: {"tank": 1}},
		Withdrawn:  map[game.Side]map[string]int{game.SideAttacker: {"artillery": 2}},
	}
	for _, s := range []game.Summary{first, second} {
		if err := a.Record(ctx, s); err != nil {
			t.Fatalf("Record %s: %v", s.BattleID, err)
		}
	}

	st, err := a.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Battles != 2 || st.Retreats != 1 {
		t.Fatalf("battles=%d retreats=%d, want 2 and 1", st.Battles, st.Retreats)
	}
	if st.MeanTicks != 200 {
		t.Fatalf("mean ticks = %v, want 200", st.MeanTicks)
	}
	if st.Wins["attacker"] != 1 || st.Wins["defender"] != 1 {
		t.Fatalf("wins = %v", st.Wins)
	}
	if st.Casualties["tank"] != 4 || st.Casualties["minelayer"] != 1 {
		t.Fatalf("casualties = %v", st.Casualties)
	}
	if _, ok := st.Casualties["artillery"]; ok {
		t.Fatalf("withdrawn units counted as casualties: %v", st.Casualties)
	}
}

func TestRecord_DuplicateRejected(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()
	s := game.Summary{BattleID: "dup", Winner: game.SideDefender, Ticks: 5}
	if err := a.Record(ctx, s); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if err := a.Record(ctx, s); err == nil {
		t.Fatal("expected error recording the same battle twice")
	}
	st, err := a.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Battles != 1 {
		t.Fatalf("battles = %d, want 1", st.Battles)
	}
}

func TestStats_Empty(t *testing.T) {
	a := openTemp(t)
	st, err := a.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Battles != 0 || st.MeanTicks != 0 || len(st.Wins) != 0 {
		t.Fatalf("empty stats = %+v", st)
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := a.Record(ctx, game.Summary{BattleID: id, Winner: game.SideAttacker, Ticks: 1}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	got, err := a.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("recent = %+v", got)
	}
}

func TestArchiveRecordsConcludedBattle(t *testing.T) {
	a := openTemp(t)
	sc := game.NewScenario(
		game.WithConclusion(),
		game.WithAttackerUnit("tank", 2, 2),
	)
	sum, ok := sc.RunToConclusion(10)
	if !ok {
		t.Fatal("lone attacker battle did not conclude")
	}
	if err := a.Record(context.Background(), sum); err != nil {
		t.Fatalf("Record: %v", err)
	}
	st, err := a.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Wins[sum.Winner.String()] != 1 {
		t.Fatalf("wins = %v, want one for %s", st.Wins, sum.Winner)
	}
}
