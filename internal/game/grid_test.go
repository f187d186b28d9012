package game

import (
	"math"
	"testing"
)

func TestCellOf_FloorsNegative(t *testing.T) {
	if c := CellOf(2.9, 3.1); c != (Cell{2, 3}) {
		t.Fatalf("expected (2,3) got %v", c)
	}
	if c := CellOf(-0.5, 0); c != (Cell{-1, 0}) {
		t.Fatalf("expected (-1,0) got %v", c)
	}
}

func TestCell_Center(t *testing.T) {
	x, y := Cell{2, 3}.Center()
	if x != 2.5 || y != 3.5 {
		t.Fatalf("expected (2.5,3.5) got (%.2f,%.2f)", x, y)
	}
}

func TestInRange_ExclusiveMin(t *testing.T) {
	if InRange(2, 2, 5) {
		t.Fatal("distance equal to min range is inside the dead zone")
	}
	if !InRange(5, 2, 5) {
		t.Fatal("distance equal to max range is usable")
	}
	if InRange(5.01, 2, 5) {
		t.Fatal("distance beyond max range is not usable")
	}
}

func TestFalloff_Linear(t *testing.T) {
	if got := Falloff(100, 3, 1.5); math.Abs(got-50) > 1e-9 {
		t.Fatalf("expected 50 at half radius, got %f", got)
	}
	if got := Falloff(100, 3, 0); got != 100 {
		t.Fatalf("expected full damage at centre, got %f", got)
	}
	if got := Falloff(100, 3, 3); got != 0 {
		t.Fatalf("expected 0 at radius, got %f", got)
	}
	if got := Falloff(100, 3, 7); got != 0 {
		t.Fatalf("expected 0 beyond radius, got %f", got)
	}
	if got := Falloff(100, 0, 0); got != 0 {
		t.Fatalf("zero radius should deal nothing, got %f", got)
	}
}

func TestRotateToward_StepsAndSnaps(t *testing.T) {
	a, aligned := RotateToward(0, math.Pi/2, 0.5)
	if aligned || math.Abs(a-0.5) > 1e-9 {
		t.Fatalf("expected partial step to 0.5, got %f aligned=%v", a, aligned)
	}
	a, aligned = RotateToward(1.4, math.Pi/2, 0.5)
	if !aligned || math.Abs(a-math.Pi/2) > 1e-9 {
		t.Fatalf("expected snap to π/2, got %f aligned=%v", a, aligned)
	}
	// Shortest way round: from just below π to just above -π is a small turn.
	a, _ = RotateToward(3.0, -3.0, 0.1)
	if math.Abs(NormalizeAngle(a-3.1)) > 1e-9 {
		t.Fatalf("expected to rotate through π, got %f", a)
	}
}

func TestRectDistance(t *testing.T) {
	r := Rect{X: 4, Y: 4, W: 2, H: 2}
	if d := RectDistance(5, 5, r); d != 0 {
		t.Fatalf("inside point should be at distance 0, got %f", d)
	}
	if d := RectDistance(1, 5, r); d != 3 {
		t.Fatalf("expected 3, got %f", d)
	}
	if !r.Contains(Cell{5, 5}) || r.Contains(Cell{6, 5}) {
		t.Fatal("footprint containment wrong")
	}
	if len(r.Cells()) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(r.Cells()))
	}
}

func TestOctile(t *testing.T) {
	if d := Octile(Cell{0, 0}, Cell{3, 0}); d != 3 {
		t.Fatalf("expected 3, got %f", d)
	}
	if d := Octile(Cell{0, 0}, Cell{2, 2}); math.Abs(d-2*math.Sqrt2) > 1e-9 {
		t.Fatalf("expected 2√2, got %f", d)
	}
}
