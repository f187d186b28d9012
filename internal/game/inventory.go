package game

import (
	"sort"
	"sync"
)

// Inventory is the persistent world-side stock of units a side brings into
// battle. The battle reads it at deployment and removes casualties from it at
// conclusion.
type Inventory interface {
	Stock() map[string]int
	Remove(kind string, n int)
}

// Roster is a simple in-memory Inventory.
type Roster struct {
	mu    sync.Mutex
	items map[string]int
}

// NewRoster copies counts into a new roster.
func NewRoster(items map[string]int) *Roster {
	r := &Roster{items: make(map[string]int, len(items))}
	for k, v := range items {
		if v > 0 {
			r.items[k] = v
		}
	}
	return r
}

// Stock returns a copy of the current counts.
func (r *Roster) Stock() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.items))
	for k, v := range r.items {
		out[k] = v
	}
	return out
}

// Remove takes up to n items of kind out of the roster.
func (r *Roster) Remove(kind string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	left := r.items[kind] - n
	if left <= 0 {
		delete(r.items, kind)
		return
	}
	r.items[kind] = left
}

// Count returns how many items of kind remain.
func (r *Roster) Count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[kind]
}

// sortedKinds returns stock kinds in a stable order.
func sortedKinds(stock map[string]int) []string {
	kinds := make([]string, 0, len(stock))
	for k := range stock {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
