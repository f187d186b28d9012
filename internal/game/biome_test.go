package game

import (
	"math/rand"
	"testing"
)

func TestValueNoise2D_Range(t *testing.T) {
	seed := int64(12345)
	for y := -10.0; y < 10.0; y += 0.37 {
		for x := -10.0; x < 10.0; x += 0.37 {
			v := valueNoise2D(x, y, seed)
			if v < 0 || v > 1 {
				t.Fatalf("noise at (%.2f,%.2f) = %f, out of [0,1]", x, y, v)
			}
		}
	}
}

func TestValueNoise2D_Deterministic(t *testing.T) {
	seed := int64(99999)
	a := valueNoise2D(3.7, 8.2, seed)
	b := valueNoise2D(3.7, 8.2, seed)
	if a != b {
		t.Fatalf("noise not deterministic: %f != %f", a, b)
	}
}

func TestGenerateTerrain_SameSeedSameMap(t *testing.T) {
	a := GenerateTerrain(40, 30, rand.New(rand.NewSource(7)), DefaultBiome, nil)
	b := GenerateTerrain(40, 30, rand.New(rand.NewSource(7)), DefaultBiome, nil)
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			c := Cell{X: x, Y: y}
			if a.Ground(c) != b.Ground(c) {
				t.Fatalf("ground differs at %v: %v vs %v", c, a.Ground(c), b.Ground(c))
			}
		}
	}
}

func TestGenerateTerrain_KeepStaysOpen(t *testing.T) {
	keep := func(c Cell) bool { return c.X < 10 }
	tr := GenerateTerrain(60, 40, rand.New(rand.NewSource(3)), DefaultBiome, keep)
	for y := 0; y < 40; y++ {
		for x := 0; x < 10; x++ {
			if g := tr.Ground(Cell{X: x, Y: y}); g != GroundOpen {
				t.Fatalf("kept cell (%d,%d) painted %v", x, y, g)
			}
		}
	}
}

func TestGenerateTerrain_VariesGround(t *testing.T) {
	tr := GenerateTerrain(100, 60, rand.New(rand.NewSource(42)), DefaultBiome, nil)
	counts := map[GroundType]int{}
	for y := 0; y < tr.Height; y++ {
		for x := 0; x < tr.Width; x++ {
			counts[tr.Ground(Cell{X: x, Y: y})]++
		}
	}
	t.Logf("grounds: %v", counts)
	if counts[GroundOpen] < tr.Width*tr.Height/2 {
		t.Fatalf("expected mostly open ground, got %v", counts)
	}
	if len(counts) < 2 {
		t.Fatalf("expected some ground variation, got %v", counts)
	}
}
