package main

import (
	"testing"

	"github.com/Garsondee/Battle-Sense/internal/config"
	"github.com/Garsondee/Battle-Sense/internal/game"
)

func TestCollectStats_CountsEvents(t *testing.T) {
	entries := []game.BattleLogEntry{
		{Tick: 3, Actor: "A1", Side: "attacker", Category: "combat", Key: "fire"},
		{Tick: 3, Actor: "D1", Side: "defender", Category: "damage", Key: "hit"},
		{Tick: 7, Actor: "A1", Side: "attacker", Category: "combat", Key: "fire"},
		{Tick: 7, Actor: "D1", Side: "defender", Category: "damage", Key: "destroyed", Value: "tank"},
		{Tick: 9, Actor: "bunker#4", Side: "defender", Category: "damage", Key: "destroyed", Value: "bunker"},
		{Tick: 9, Actor: "A2", Side: "attacker", Category: "mine", Key: "triggered"},
		{Tick: 11, Actor: "A3", Side: "attacker", Category: "move", Key: "yield"},
	}
	rs := collectStats(entries)
	if rs.shots != 2 || rs.hits != 1 {
		t.Fatalf("shots=%d hits=%d, want 2 and 1", rs.shots, rs.hits)
	}
	if rs.kills["defender"] != 1 || rs.kills["attacker"] != 0 {
		t.Fatalf("kills = %v", rs.kills)
	}
	if len(rs.buildings) != 1 || rs.buildings[0] != "bunker#4" {
		t.Fatalf("buildings = %v", rs.buildings)
	}
	if rs.firstFireTick != 3 || rs.firstKillTick != 7 || rs.firstParalysis != -1 {
		t.Fatalf("markers fire=%d kill=%d paralysis=%d", rs.firstFireTick, rs.firstKillTick, rs.firstParalysis)
	}
	if rs.minesTriggered != 1 || rs.yields != 1 {
		t.Fatalf("mines=%d yields=%d", rs.minesTriggered, rs.yields)
	}
}

func TestAggregateRuns(t *testing.T) {
	all := []runStats{
		{concluded: true, ticks: 100, summary: game.Summary{Winner: game.SideAttacker}, shots: 10, firstFireTick: 4, firstKillTick: -1, kills: map[string]int{"defender": 2}},
		{concluded: true, ticks: 300, summary: game.Summary{Winner: game.SideDefender, Retreat: true}, shots: 20, firstFireTick: 6, firstKillTick: 50, kills: map[string]int{"attacker": 1}},
		{concluded: false, ticks: 6000, firstFireTick: -1, firstKillTick: -1, kills: map[string]int{}},
	}
	ag := aggregateRuns(all)
	if ag.runs != 3 || ag.concluded != 2 || ag.retreats != 1 {
		t.Fatalf("runs=%d concluded=%d retreats=%d", ag.runs, ag.concluded, ag.retreats)
	}
	if ag.wins["attacker"] != 1 || ag.wins["defender"] != 1 {
		t.Fatalf("wins = %v", ag.wins)
	}
	if got := avgTickString(ag.ticks); got != "200.0" {
		t.Fatalf("avg ticks = %s, want 200.0", got)
	}
	if got := avgTickString(ag.fireTicks); got != "5.0" {
		t.Fatalf("avg first fire = %s, want 5.0", got)
	}
	if avg(ag.shots, ag.runs) != 10 {
		t.Fatalf("avg shots = %v, want 10", avg(ag.shots, ag.runs))
	}
}

func TestRunBattle_DuelIsReproducible(t *testing.T) {
	rules := config.Default()
	a, err := runBattle(rules, "duel", 1, 7, 5000)
	if err != nil {
		t.Fatalf("runBattle: %v", err)
	}
	b, err := runBattle(rules, "duel", 1, 7, 5000)
	if err != nil {
		t.Fatalf("runBattle: %v", err)
	}
	if !a.concluded {
		t.Fatalf("duel undecided after %d ticks", a.ticks)
	}
	if a.ticks != b.ticks || a.summary.Winner != b.summary.Winner || a.shots != b.shots {
		t.Fatalf("same seed diverged: %d/%s/%d vs %d/%s/%d",
			a.ticks, a.summary.Winner, a.shots, b.ticks, b.summary.Winner, b.shots)
	}
	if a.window == nil || a.window.SampleCount == 0 {
		t.Fatal("no reporter window collected")
	}
	if len(a.grades) != 2 {
		t.Fatalf("grades = %d, want one per tank", len(a.grades))
	}
	if a.shots == 0 {
		t.Fatal("duel concluded without a shot fired")
	}
}

func TestRunBattle_UnknownScenario(t *testing.T) {
	if _, err := runBattle(config.Default(), "nope", 1, 1, 10); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}
