package game

import "math"

// Cell is an integer grid address. Continuous positions map to the cell that
// contains them by flooring both coordinates.
type Cell struct {
	X, Y int
}

// CellOf returns the cell containing the continuous point (x, y).
func CellOf(x, y float64) Cell {
	return Cell{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

// Center returns the continuous coordinates of the cell centre.
func (c Cell) Center() (float64, float64) {
	return float64(c.X) + 0.5, float64(c.Y) + 0.5
}

// Add offsets a cell.
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Distance is the Euclidean distance between two points.
func Distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(bx-ax, by-ay)
}

// InRange reports whether d lies inside the usable band (min, max].
func InRange(d, minRange, maxRange float64) bool {
	return d > minRange && d <= maxRange
}

// Falloff returns area damage at dist from the centre of an effect with the
// given radius: full damage at the centre, linear to zero at the radius.
func Falloff(damage, radius, dist float64) float64 {
	if radius <= 0 || dist >= radius {
		return 0
	}
	if dist < 0 {
		dist = 0
	}
	return damage * (radius - dist) / radius
}

// Octile is the admissible 8-way grid distance used as the search estimate.
func Octile(a, b Cell) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
}

// Chebyshev is the king-move distance between two cells.
func Chebyshev(a, b Cell) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}

// AngleTo returns the heading from (ax, ay) toward (bx, by).
func AngleTo(ax, ay, bx, by float64) float64 {
	return math.Atan2(by-ay, bx-ax)
}

// NormalizeAngle wraps an angle into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// RotateToward turns cur toward target by at most step radians. A step <= 0
// snaps instantly. aligned is true once the heading has reached the target.
func RotateToward(cur, target, step float64) (float64, bool) {
	diff := NormalizeAngle(target - cur)
	if step <= 0 || math.Abs(diff) <= step {
		return NormalizeAngle(target), true
	}
	if diff > 0 {
		return NormalizeAngle(cur + step), false
	}
	return NormalizeAngle(cur - step), false
}

// Rect is an axis-aligned cell footprint: cells [X, X+W) × [Y, Y+H).
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the footprint covers cell c.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.X && c.X < r.X+r.W && c.Y >= r.Y && c.Y < r.Y+r.H
}

// Cells lists every cell of the footprint in row order.
func (r Rect) Cells() []Cell {
	out := make([]Cell, 0, r.W*r.H)
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			out = append(out, Cell{X: x, Y: y})
		}
	}
	return out
}

// Center returns the continuous centre of the footprint.
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// RectDistance is the distance from a point to the nearest point of the
// footprint's continuous area. Zero when the point is inside.
func RectDistance(x, y float64, r Rect) float64 {
	nx := math.Max(float64(r.X), math.Min(x, float64(r.X+r.W)))
	ny := math.Max(float64(r.Y), math.Min(y, float64(r.Y+r.H)))
	return Distance(x, y, nx, ny)
}
