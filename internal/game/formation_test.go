package game

import (
	"math"
	"testing"
)

func TestFormationOffsets_LeaderAlwaysZero(t *testing.T) {
	for _, ft := range []FormationType{FormationLine, FormationWedge, FormationColumn, FormationEchelon} {
		offsets := formationOffsets(ft, 6)
		if offsets[0][0] != 0 || offsets[0][1] != 0 {
			t.Fatalf("formation %s: leader slot 0 should be (0,0), got (%.1f,%.1f)",
				ft, offsets[0][0], offsets[0][1])
		}
	}
}

func TestFormationOffsets_Count(t *testing.T) {
	for _, count := range []int{0, 1, 3, 6} {
		offsets := formationOffsets(FormationWedge, count)
		if len(offsets) != count {
			t.Fatalf("expected %d offsets, got %d", count, len(offsets))
		}
	}
}

func TestFormationOffsets_Column_SingleFile(t *testing.T) {
	offsets := formationOffsets(FormationColumn, 4)
	for i := 1; i < 4; i++ {
		if offsets[i][1] != 0 {
			t.Fatalf("column slot %d: right offset should be 0, got %.1f", i, offsets[i][1])
		}
		if offsets[i][0] >= 0 {
			t.Fatalf("column slot %d: forward offset should be negative (behind), got %.1f", i, offsets[i][0])
		}
	}
}

func TestFormationOffsets_Line_SameForwardDepth(t *testing.T) {
	offsets := formationOffsets(FormationLine, 5)
	for i := 1; i < 5; i++ {
		if offsets[i][0] != 0 {
			t.Fatalf("line slot %d: forward offset should be 0, got %.1f", i, offsets[i][0])
		}
	}
}

func TestFormationType_NextCycles(t *testing.T) {
	ft := FormationLine
	for i := 0; i < 4; i++ {
		ft = ft.Next()
	}
	if ft != FormationLine {
		t.Fatalf("four steps from line gave %s", ft)
	}
}

func TestSlotWorld_FacingEast(t *testing.T) {
	// heading=0: forward=(1,0), right=(0,1).
	wx, wy := SlotWorld(10, 10, 0, 0, 2)
	if math.Abs(wx-10) > 1e-9 || math.Abs(wy-12) > 1e-9 {
		t.Fatalf("expected (10,12), got (%.2f,%.2f)", wx, wy)
	}
}

func TestSlotWorld_FacingSouth(t *testing.T) {
	wx, wy := SlotWorld(10, 10, math.Pi/2, slotSpacing, 0)
	if math.Abs(wx-10) > 0.01 || math.Abs(wy-(10+slotSpacing)) > 0.01 {
		t.Fatalf("expected (10,%.1f), got (%.2f,%.2f)", 10+slotSpacing, wx, wy)
	}
}

func TestMoveGroup_LineAcrossHeading(t *testing.T) {
	sc := NewScenario(
		WithMapSize(20, 12),
		WithAttackerUnit("tank", 2, 4),
		WithAttackerUnit("tank", 2, 6),
		WithAttackerUnit("tank", 2, 8),
	)
	units := sc.Attackers()
	cells := sc.Battle.MoveGroup(units, 15, 6, FormationLine)
	want := []Cell{{15, 6}, {15, 5}, {15, 8}}
	for i, c := range cells {
		if c != want[i] {
			t.Fatalf("slot %d = %v, want %v", i, c, want[i])
		}
	}
	sc.RunTicks(1)
	if n := sc.Battle.Log.CountCategory("order", "move"); n != 3 {
		t.Fatalf("move orders applied = %d, want 3", n)
	}
}

func TestMoveGroup_BlockedSlotFallsBack(t *testing.T) {
	sc := NewScenario(
		WithMapSize(20, 12),
		WithGround(15, 5, 1, 1, GroundRock),
		WithAttackerUnit("tank", 2, 4),
		WithAttackerUnit("tank", 2, 6),
		WithAttackerUnit("tank", 2, 8),
	)
	cells := sc.Battle.MoveGroup(sc.Attackers(), 15, 6, FormationLine)
	if cells[1] != (Cell{X: 15, Y: 4}) {
		t.Fatalf("blocked slot moved to %v, want (15,4)", cells[1])
	}
	seen := map[Cell]bool{}
	for _, c := range cells {
		if seen[c] {
			t.Fatalf("slot %v assigned twice", c)
		}
		seen[c] = true
	}
}

func TestGroupMembers_FiltersSideAndGroup(t *testing.T) {
	sc := NewScenario(
		WithMapSize(20, 12),
		WithAttackerUnit("tank", 2, 4),
		WithAttackerUnit("tank", 2, 6),
		WithDefenderUnit("tank", 17, 6),
	)
	a := sc.Attackers()
	sc.Battle.Select(a[1], true, 1)
	sc.Battle.Select(sc.Defenders()[0], true, 1)
	got := sc.Battle.GroupMembers(SideAttacker, 1)
	if len(got) != 1 || got[0] != a[1] {
		t.Fatalf("group members = %v", got)
	}
}
