package game

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Garsondee/Battle-Sense/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUnit(id int) *Unit {
	kind := &config.UnitKind{Name: "tank", MaxHP: 100, MoveSpeed: 100, MaxRange: 3, Damage: 10}
	return newUnit(id, &Player{Name: "a", Side: SideAttacker}, kind, Cell{0, 0}, 0, false)
}

func TestLocationIndex_MoveKeepsSync(t *testing.T) {
	li := NewLocationIndex(quietLogger())
	u := testUnit(1)
	li.Add(u, Cell{1, 1})
	li.Move(u, Cell{1, 1}, Cell{2, 1})
	if len(li.At(Cell{1, 1})) != 0 {
		t.Fatal("old bucket should be empty after move")
	}
	if got := li.At(Cell{2, 1}); len(got) != 1 || got[0] != u {
		t.Fatalf("expected unit in new bucket, got %v", got)
	}
	if li.Anomalies() != 0 {
		t.Fatalf("expected no anomalies, got %d", li.Anomalies())
	}
}

func TestLocationIndex_MissingRemovalIsAnomalyNotPanic(t *testing.T) {
	li := NewLocationIndex(quietLogger())
	u := testUnit(1)
	var seen *Unit
	li.onAnomaly = func(v *Unit, _ Cell) { seen = v }
	if li.Remove(u, Cell{4, 4}) {
		t.Fatal("removal of an absent unit should report false")
	}
	if li.Anomalies() != 1 || seen != u {
		t.Fatalf("expected one anomaly for the unit, got %d", li.Anomalies())
	}
}

func TestLocationIndex_OccupiedByOther(t *testing.T) {
	li := NewLocationIndex(quietLogger())
	a, b := testUnit(1), testUnit(2)
	li.Add(a, Cell{3, 3})
	if li.OccupiedByOther(Cell{3, 3}, a) {
		t.Fatal("a unit does not block itself")
	}
	if !li.OccupiedByOther(Cell{3, 3}, b) {
		t.Fatal("cell holding a should block b")
	}
	occ := li.Occupancy()
	if !occ[Cell{3, 3}] || len(occ) != 1 {
		t.Fatalf("unexpected occupancy snapshot %v", occ)
	}
}
