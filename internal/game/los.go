package game

import "math"

// ClearLine returns true if a straight line from (ax,ay) to (bx,by) does not
// cross any of the given footprints. Uses simple segment-vs-AABB tests.
func ClearLine(ax, ay, bx, by float64, rects []Rect) bool {
	for _, r := range rects {
		if _, hit := segmentHitT(ax, ay, bx, by, r); hit {
			return false
		}
	}
	return true
}

// segmentHitT returns the segment parameter where (ax,ay)->(bx,by) enters the
// footprint r, whose cells span [X, X+W) x [Y, Y+H) in continuous coordinates.
func segmentHitT(ax, ay, bx, by float64, r Rect) (float64, bool) {
	return rayAABBHitT(ax, ay, bx, by,
		float64(r.X), float64(r.Y),
		float64(r.X+r.W), float64(r.Y+r.H))
}

// firstStructureHit finds the standing building a flight segment enters
// first, ignoring buildings owned by friendly. The hit point is returned.
func (b *Battle) firstStructureHit(ax, ay, bx, by float64, friendly *Player) (*Building, float64, float64, bool) {
	var (
		best  *Building
		bestT = math.Inf(1)
	)
	for _, bd := range b.buildings {
		if bd.destroyed || bd.owner == friendly {
			continue
		}
		t, hit := segmentHitT(ax, ay, bx, by, bd.rect)
		if hit && t < bestT {
			best, bestT = bd, t
		}
	}
	if best == nil {
		return nil, 0, 0, false
	}
	return best, ax + (bx-ax)*bestT, ay + (by-ay)*bestT, true
}

// rayAABBHitT returns the first segment parameter t in [0,1] where the line
// from (ox,oy)->(ex,ey) enters the AABB. The bool is false when no hit exists.
func rayAABBHitT(ox, oy, ex, ey, minX, minY, maxX, maxY float64) (float64, bool) {
	tMin, tMax := 0.0, 1.0
	var ok bool
	if tMin, tMax, ok = clipSlab(ox, ex-ox, minX, maxX, tMin, tMax); !ok {
		return 0, false
	}
	if tMin, _, ok = clipSlab(oy, ey-oy, minY, maxY, tMin, tMax); !ok {
		return 0, false
	}
	return tMin, true
}

// clipSlab narrows [tMin, tMax] to the part of the segment inside one axis slab.
func clipSlab(o, d, lo, hi, tMin, tMax float64) (float64, float64, bool) {
	if math.Abs(d) < 1e-12 {
		if o < lo || o > hi {
			return 0, 0, false
		}
		return tMin, tMax, true
	}
	t1 := (lo - o) / d
	t2 := (hi - o) / d
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	tMin = math.Max(tMin, t1)
	tMax = math.Min(tMax, t2)
	if tMin > tMax {
		return 0, 0, false
	}
	return tMin, tMax, true
}
