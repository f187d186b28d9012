package game

// GroundType identifies the base surface of a cell.
type GroundType uint8

const (
	GroundOpen  GroundType = iota // default open ground
	GroundRough                   // scrub, rubble: slow
	GroundMud                     // churned ground: very slow
	GroundWater                   // impassable for ground units
	GroundRock                    // cliffs, impassable
	groundTypeCount               // sentinel
)

func (g GroundType) String() string {
	switch g {
	case GroundOpen:
		return "open"
	case GroundRough:
		return "rough"
	case GroundMud:
		return "mud"
	case GroundWater:
		return "water"
	case GroundRock:
		return "rock"
	default:
		return "unknown"
	}
}

// groundMovementMul returns the movement speed multiplier for a ground type.
func groundMovementMul(g GroundType) float64 {
	switch g {
	case GroundOpen:
		return 1.0
	case GroundRough:
		return 0.75
	case GroundMud:
		return 0.5
	default:
		return 0
	}
}

// Terrain is the static battlefield surface. Buildings are overlaid by the
// battle and are not part of the terrain.
type Terrain struct {
	Width  int
	Height int
	ground []GroundType
}

// NewTerrain creates an all-open battlefield.
func NewTerrain(w, h int) *Terrain {
	return &Terrain{
		Width:  w,
		Height: h,
		ground: make([]GroundType, w*h),
	}
}

// InBounds reports whether c lies on the battlefield.
func (t *Terrain) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < t.Width && c.Y < t.Height
}

// Ground returns the surface at c. Out-of-bounds reads as rock.
func (t *Terrain) Ground(c Cell) GroundType {
	if !t.InBounds(c) {
		return GroundRock
	}
	return t.ground[c.Y*t.Width+c.X]
}

// Set changes the surface at c. Out-of-bounds writes are ignored.
func (t *Terrain) Set(c Cell, g GroundType) {
	if !t.InBounds(c) || g >= groundTypeCount {
		return
	}
	t.ground[c.Y*t.Width+c.X] = g
}

// Passable reports whether ground units may stand on c.
func (t *Terrain) Passable(c Cell) bool {
	return groundMovementMul(t.Ground(c)) > 0
}

// MoveMul returns the speed multiplier for a unit standing on c.
func (t *Terrain) MoveMul(c Cell) float64 {
	return groundMovementMul(t.Ground(c))
}
