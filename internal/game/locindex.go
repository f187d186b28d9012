package game

import "log/slog"

// LocationIndex buckets live units by the cell that contains them. It is
// owned by the tick loop and never touched from planner workers.
type LocationIndex struct {
	buckets   map[Cell][]*Unit
	anomalies int
	logger    *slog.Logger
	onAnomaly func(u *Unit, c Cell)
}

// NewLocationIndex creates an empty index.
func NewLocationIndex(logger *slog.Logger) *LocationIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationIndex{
		buckets: make(map[Cell][]*Unit),
		logger:  logger,
	}
}

// Add records u in bucket c.
func (li *LocationIndex) Add(u *Unit, c Cell) {
	li.buckets[c] = append(li.buckets[c], u)
}

// Remove drops u from bucket c. A unit missing from the bucket it should be in
// is logged and counted; the simulation carries on.
func (li *LocationIndex) Remove(u *Unit, c Cell) bool {
	bucket := li.buckets[c]
	for i, v := range bucket {
		if v != u {
			continue
		}
		bucket[i] = bucket[len(bucket)-1]
		bucket[len(bucket)-1] = nil
		bucket = bucket[:len(bucket)-1]
		if len(bucket) == 0 {
			delete(li.buckets, c)
		} else {
			li.buckets[c] = bucket
		}
		return true
	}
	li.anomalies++
	li.logger.Warn("location index: unit missing from bucket",
		"unit", u.label, "cell_x", c.X, "cell_y", c.Y)
	if li.onAnomaly != nil {
		li.onAnomaly(u, c)
	}
	return false
}

// Move transfers u from one bucket to another, adding before removing.
func (li *LocationIndex) Move(u *Unit, from, to Cell) {
	if from == to {
		return
	}
	li.Add(u, to)
	li.Remove(u, from)
}

// At returns the units in c. The slice must not be modified.
func (li *LocationIndex) At(c Cell) []*Unit {
	return li.buckets[c]
}

// OccupiedByOther reports whether any unit other than self stands in c.
func (li *LocationIndex) OccupiedByOther(c Cell, self *Unit) bool {
	for _, v := range li.buckets[c] {
		if v != self {
			return true
		}
	}
	return false
}

// Occupancy copies the set of occupied cells. Planner workers read the copy.
func (li *LocationIndex) Occupancy() map[Cell]bool {
	occ := make(map[Cell]bool, len(li.buckets))
	for c, units := range li.buckets {
		if len(units) > 0 {
			occ[c] = true
		}
	}
	return occ
}

// Anomalies returns how many failed removals were observed.
func (li *LocationIndex) Anomalies() int {
	return li.anomalies
}
