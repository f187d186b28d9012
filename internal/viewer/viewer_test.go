package viewer

import (
	"testing"

	"github.com/Garsondee/Battle-Sense/internal/game"
)

func TestFeed_RingOverwritesOldest(t *testing.T) {
	f := NewFeed()
	for i := 0; i < feedMaxEntries+5; i++ {
		f.Add(game.BattleLogEntry{Tick: i})
	}
	got := f.Recent()
	if len(got) != feedMaxEntries {
		t.Fatalf("len = %d, want %d", len(got), feedMaxEntries)
	}
	if got[0].Tick != 5 || got[len(got)-1].Tick != feedMaxEntries+4 {
		t.Fatalf("window = [%d..%d], want [5..%d]", got[0].Tick, got[len(got)-1].Tick, feedMaxEntries+4)
	}
}

func TestFeed_SyncSkipsNoiseAndSeenEntries(t *testing.T) {
	log := game.NewBattleLog(true)
	log.Add(1, "A1", "attacker", "combat", "fire", "D1", 20)
	log.Add(1, "A1", "attacker", "move", "position", "(3,4)", 0)
	f := NewFeed()
	f.Sync(log)
	f.Sync(log)
	if got := f.Recent(); len(got) != 1 || got[0].Key != "fire" {
		t.Fatalf("after sync: %+v", got)
	}
	log.Add(2, "D1", "defender", "damage", "hit", "A1", 5)
	f.Sync(log)
	if got := f.Recent(); len(got) != 2 || got[1].Key != "hit" {
		t.Fatalf("after second sync: %+v", got)
	}
}

func TestAdvance_TicksPerInterval(t *testing.T) {
	sc := game.NewScenario(game.WithAttackerUnit("tank", 2, 2))
	interval := sc.Battle.TickInterval()

	left := advance(sc.Battle, interval*3+interval/2)
	if sc.Battle.CurrentTick() != 3 {
		t.Fatalf("tick = %d, want 3", sc.Battle.CurrentTick())
	}
	if left != interval/2 {
		t.Fatalf("left = %v, want %v", left, interval/2)
	}

	sc.Battle.SetSpeed(4)
	advance(sc.Battle, interval)
	if sc.Battle.CurrentTick() != 7 {
		t.Fatalf("tick at 4x = %d, want 7", sc.Battle.CurrentTick())
	}
}

func TestScreenToWorld_CentreAndZoom(t *testing.T) {
	g := &Game{worldW: 320, worldH: 160, offX: borderWidth, offY: borderWidth, camZoom: 1}
	g.camX, g.camY = 160, 80
	x, y := g.screenToWorld(borderWidth+160, borderWidth+80)
	if x != 10 || y != 5 {
		t.Fatalf("centre = (%v,%v), want (10,5)", x, y)
	}
	g.camZoom = 2
	x, y = g.screenToWorld(borderWidth+160+32, borderWidth+80)
	if x != 11 || y != 5 {
		t.Fatalf("zoomed = (%v,%v), want (11,5)", x, y)
	}
}
