package game

import (
	"container/heap"
	"math"
)

// defaultSearchLimit caps node expansions when the caller passes no limit.
const defaultSearchLimit = 4096

// --- A* pathfinding ---

type pathNode struct {
	cell   Cell
	g, h   float64
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi != fj {
		return fi < fj
	}
	return ol[i].h < ol[j].h
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Search returns the cells to walk from origin toward goal, origin excluded.
//
// The goal itself may be impassable (an occupied cell, a building): the search
// then ends at the reachable cell closest to it. The same happens when the
// goal is unreachable or the expansion limit runs out, so the result can be an
// approximation. An empty result means no progress is possible from origin.
// estimate must not overestimate the true cost; nil uses Octile.
func Search(origin, goal Cell, passable func(Cell) bool, estimate func(a, b Cell) float64, limit int) []Cell {
	if origin == goal {
		return nil
	}
	if estimate == nil {
		estimate = Octile
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	start := &pathNode{cell: origin, h: estimate(origin, goal)}
	ol := &openList{start}
	heap.Init(ol)

	closed := make(map[Cell]bool)
	best := map[Cell]*pathNode{origin: start}
	closest := start
	expanded := 0

	for ol.Len() > 0 && expanded < limit {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cell == goal {
			return buildPath(cur)
		}
		if closed[cur.cell] {
			continue
		}
		closed[cur.cell] = true
		expanded++
		if cur.h < closest.h || (cur.h == closest.h && cur.g < closest.g) {
			closest = cur
		}

		for _, d := range dirs {
			next := cur.cell.Add(d[0], d[1])
			if !passable(next) {
				continue
			}
			// Prevent diagonal corner-cutting through blocked cells.
			if d[0] != 0 && d[1] != 0 {
				if !passable(cur.cell.Add(d[0], 0)) || !passable(cur.cell.Add(0, d[1])) {
					continue
				}
			}
			if closed[next] {
				continue
			}
			cost := 1.0
			if d[0] != 0 && d[1] != 0 {
				cost = math.Sqrt2
			}
			g := cur.g + cost
			if prev, ok := best[next]; ok && g >= prev.g {
				continue
			}
			node := &pathNode{cell: next, g: g, h: estimate(next, goal), parent: cur}
			best[next] = node
			heap.Push(ol, node)
		}
	}
	if closest == start {
		return nil
	}
	return buildPath(closest)
}

func buildPath(end *pathNode) []Cell {
	var cells []Cell
	for n := end; n != nil && n.parent != nil; n = n.parent {
		cells = append(cells, n.cell)
	}
	// Reverse
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}
