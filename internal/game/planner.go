package game

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PathRequest asks for a route for one unit. Seq identifies the unit's
// planning generation at the time of the request.
type PathRequest struct {
	Unit   *Unit
	Origin Cell
	Goal   Cell
	Seq    uint64
}

// PathResult pairs a request with the cells found (possibly empty).
type PathResult struct {
	Request PathRequest
	Cells   []Cell
}

// Planner runs independent searches on a bounded worker pool.
type Planner struct {
	workers int
	limit   int
}

// NewPlanner creates a planner with at most workers concurrent searches,
// each capped at limit node expansions.
func NewPlanner(workers, limit int) *Planner {
	if workers <= 0 {
		workers = 1
	}
	return &Planner{workers: workers, limit: limit}
}

// Plan runs every request and returns only after all of them have finished.
// passable must be safe for concurrent reads: it is called from workers.
// Results are in request order.
func (p *Planner) Plan(ctx context.Context, reqs []PathRequest, passable func(req PathRequest) func(Cell) bool) []PathResult {
	results := make([]PathResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, req := range reqs {
		results[i].Request = req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i].Cells = Search(req.Origin, req.Goal, passable(req), Octile, p.limit)
			return nil
		})
	}
	// A cancelled batch leaves the unfinished results empty, which callers
	// already treat as "stay put".
	_ = g.Wait()
	return results
}
