package game

import (
	"math"
	"math/rand"
)

// BiomeConfig holds the noise scales and thresholds used to paint a
// battlefield surface.
type BiomeConfig struct {
	RoughnessScale float64
	MoistureScale  float64
	RidgeScale     float64

	RoughThreshold float64 // above this → rough ground
	MudThreshold   float64 // above this (moisture) → mud
	WaterThreshold float64 // above this (moisture) → standing water
	RockThreshold  float64 // above this (ridge) → rock outcrop
}

// DefaultBiome gives mostly open ground with scattered slow patches and a
// few impassable outcrops.
var DefaultBiome = BiomeConfig{
	RoughnessScale: 0.11,
	MoistureScale:  0.07,
	RidgeScale:     0.13,

	RoughThreshold: 0.66,
	MudThreshold:   0.72,
	WaterThreshold: 0.86,
	RockThreshold:  0.88,
}

// GenerateTerrain builds a w×h battlefield from value noise. Cells for which
// keep reports true stay open ground; callers use it to keep building plots
// and deployment zones clear. keep may be nil.
func GenerateTerrain(w, h int, rng *rand.Rand, cfg BiomeConfig, keep func(Cell) bool) *Terrain {
	t := NewTerrain(w, h)
	roughSeed := rng.Int63()
	moistSeed := rng.Int63()
	ridgeSeed := rng.Int63()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := Cell{X: x, Y: y}
			if keep != nil && keep(c) {
				continue
			}
			rough := valueNoise2D(float64(x)*cfg.RoughnessScale, float64(y)*cfg.RoughnessScale, roughSeed)
			moist := valueNoise2D(float64(x)*cfg.MoistureScale, float64(y)*cfg.MoistureScale, moistSeed)
			ridge := valueNoise2D(float64(x)*cfg.RidgeScale, float64(y)*cfg.RidgeScale, ridgeSeed)

			switch {
			case ridge > cfg.RockThreshold:
				t.Set(c, GroundRock)
			case moist > cfg.WaterThreshold:
				t.Set(c, GroundWater)
			case moist > cfg.MudThreshold && rough < 0.5:
				t.Set(c, GroundMud)
			case rough > cfg.RoughThreshold:
				t.Set(c, GroundRough)
			}
		}
	}
	return t
}

// valueNoise2D returns a smooth noise value in [0,1] for the given coordinates.
// Lattice value noise with hermite interpolation.
func valueNoise2D(x, y float64, seed int64) float64 {
	xi := int(math.Floor(x))
	yi := int(math.Floor(y))
	xf := x - float64(xi)
	yf := y - float64(yi)

	u := xf * xf * (3 - 2*xf)
	v := yf * yf * (3 - 2*yf)

	n00 := latticeValue(xi, yi, seed)
	n10 := latticeValue(xi+1, yi, seed)
	n01 := latticeValue(xi, yi+1, seed)
	n11 := latticeValue(xi+1, yi+1, seed)

	nx0 := n00*(1-u) + n10*u
	nx1 := n01*(1-u) + n11*u
	return nx0*(1-v) + nx1*v
}

// latticeValue hashes integer coordinates and a seed into [0,1].
func latticeValue(x, y int, seed int64) float64 {
	h := uint64(seed)
	h ^= uint64(x) * 0x517cc1b727220a95
	h ^= uint64(y) * 0x6c62272e07bb0142
	h = h*0x2545f4914f6cdd1d + 0x14057b7ef767814f
	h ^= h >> 16
	h *= 0xd6e8feb86659fd93
	h ^= h >> 16
	return float64(h&0xFFFFFFFF) / float64(0xFFFFFFFF)
}
