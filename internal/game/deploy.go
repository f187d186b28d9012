package game

import (
	"errors"
	"fmt"
)

var (
	ErrNotDeploying = errors.New("battle is not in deployment")
	ErrIllegalCell  = errors.New("cell is not a legal placement")
	ErrRosterFull   = errors.New("deployment roster is full")
	ErrNoStock      = errors.New("no stock left of that unit kind")
	ErrUnknownKind  = errors.New("unknown unit kind")
)

// PlacementOptions lists the free cells where side may deploy, in row-major
// order. Attackers use the map border band; defenders use the ring around
// their main structure, or around the map centre if there is none.
func (b *Battle) PlacementOptions(side Side) []Cell {
	var out []Cell
	for y := 0; y < b.terrain.Height; y++ {
		for x := 0; x < b.terrain.Width; x++ {
			c := Cell{X: x, Y: y}
			if !b.staticPassable(c) || len(b.index.At(c)) > 0 {
				continue
			}
			if b.inDeployZone(side, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

func (b *Battle) inDeployZone(side Side, c Cell) bool {
	switch side {
	case SideAttacker:
		w, h := b.terrain.Width, b.terrain.Height
		edge := min(c.X, c.Y, w-1-c.X, h-1-c.Y)
		return edge < b.rules.DeployEdge
	case SideDefender:
		r := Rect{X: b.terrain.Width / 2, Y: b.terrain.Height / 2, W: 1, H: 1}
		if b.hasMain {
			r = b.mainRect
		}
		d := rectChebyshev(c, r)
		return d >= 1 && d <= b.rules.DeployRing
	}
	return false
}

// rectChebyshev is the king-move distance from c to the nearest cell of r.
func rectChebyshev(c Cell, r Rect) int {
	dx := max(r.X-c.X, 0, c.X-(r.X+r.W-1))
	dy := max(r.Y-c.Y, 0, c.Y-(r.Y+r.H-1))
	return max(dx, dy)
}

// Deploy places one unit of kind for side at c.
func (b *Battle) Deploy(side Side, kind string, c Cell) (*Unit, error) {
	if b.phase != PhaseDeployment {
		return nil, ErrNotDeploying
	}
	k, ok := b.rules.UnitKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if b.available(side, kind) <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoStock, kind)
	}
	if b.roster[side] >= b.rules.MaxDeployed {
		return nil, ErrRosterFull
	}
	if !b.staticPassable(c) || len(b.index.At(c)) > 0 || !b.inDeployZone(side, c) {
		return nil, fmt.Errorf("%w: %s", ErrIllegalCell, fmtCell(c))
	}
	u := b.spawnUnit(b.Player(side), k, c)
	b.Log.Add(0, u.label, side.String(), "lifecycle", "deployed", fmt.Sprintf("%s at %s", kind, fmtCell(c)), 0)
	return u, nil
}

// available is the stock of kind not yet on the field.
func (b *Battle) available(side Side, kind string) int {
	inv := b.invs[side]
	if inv == nil {
		return 0
	}
	return inv.Stock()[kind] - b.deployed[side][kind]
}

// AutoDeploy fills side's roster from its inventory, kinds in name order,
// onto the first free placement cells. It returns how many units were placed.
func (b *Battle) AutoDeploy(side Side) int {
	if b.phase != PhaseDeployment || b.invs[side] == nil {
		return 0
	}
	cells := b.PlacementOptions(side)
	placed := 0
	next := 0
	for _, kind := range sortedKinds(b.invs[side].Stock()) {
		for b.available(side, kind) > 0 && b.roster[side] < b.rules.MaxDeployed && next < len(cells) {
			if _, err := b.Deploy(side, kind, cells[next]); err != nil {
				b.logger.Warn("auto deploy", "side", side, "kind", kind, "err", err)
				break
			}
			next++
			placed++
		}
	}
	return placed
}

// Start ends deployment and begins the simulation.
func (b *Battle) Start() error {
	if b.phase != PhaseDeployment {
		return ErrNotDeploying
	}
	b.phase = PhaseSimulating
	b.Log.Add(0, "--", "--", "lifecycle", "phase", PhaseSimulating.String(), 0)
	return nil
}
