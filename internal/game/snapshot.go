package game

import "sort"

// Snapshot is a read-only copy of the battle state for viewers, streams and
// reports. It shares nothing with the live simulation.
type Snapshot struct {
	BattleID   string          `msgpack:"id" json:"battle_id"`
	Tick       int             `msgpack:"t" json:"tick"`
	Phase      string          `msgpack:"p" json:"phase"`
	Speed      int             `msgpack:"s" json:"speed"`
	Winner     string          `msgpack:"w,omitempty" json:"winner,omitempty"`
	Width      int             `msgpack:"mw" json:"width"`
	Height     int             `msgpack:"mh" json:"height"`
	Ground     []GroundType    `msgpack:"g,omitempty" json:"ground,omitempty"`
	Units      []UnitView      `msgpack:"u" json:"units"`
	Buildings  []BuildingView  `msgpack:"b" json:"buildings"`
	Guns       []GunView       `msgpack:"gn" json:"guns"`
	Mines      []Cell          `msgpack:"m" json:"mines"`
	Explosions []ExplosionView `msgpack:"x" json:"explosions"`
	Rockets    []RocketView    `msgpack:"r" json:"rockets"`
}

type UnitView struct {
	ID       int     `msgpack:"id" json:"id"`
	Label    string  `msgpack:"l" json:"label"`
	Kind     string  `msgpack:"k" json:"kind"`
	Side     string  `msgpack:"sd" json:"side"`
	X        float64 `msgpack:"x" json:"x"`
	Y        float64 `msgpack:"y" json:"y"`
	Heading  float64 `msgpack:"h" json:"heading"`
	HP       float64 `msgpack:"hp" json:"hp"`
	MaxHP    float64 `msgpack:"mhp" json:"max_hp"`
	State    string  `msgpack:"st" json:"state"`
	Phase    int     `msgpack:"ph" json:"phase"`
	Target   string  `msgpack:"tg,omitempty" json:"target,omitempty"`
	Guard    bool    `msgpack:"gd" json:"guard"`
	Selected bool    `msgpack:"sel" json:"selected"`
	Group    int     `msgpack:"grp" json:"group"`
}

type BuildingView struct {
	ID         int     `msgpack:"id" json:"id"`
	Label      string  `msgpack:"l" json:"label"`
	Kind       string  `msgpack:"k" json:"kind"`
	Rect       Rect    `msgpack:"rc" json:"rect"`
	HP         float64 `msgpack:"hp" json:"hp"`
	MaxHP      float64 `msgpack:"mhp" json:"max_hp"`
	Guns       int     `msgpack:"gn" json:"guns"`
	Unfinished bool    `msgpack:"uf" json:"unfinished"`
	Destroyed  bool    `msgpack:"d" json:"destroyed"`
}

type GunView struct {
	ID       int     `msgpack:"id" json:"id"`
	Kind     string  `msgpack:"k" json:"kind"`
	Building int     `msgpack:"b" json:"building"`
	X        float64 `msgpack:"x" json:"x"`
	Y        float64 `msgpack:"y" json:"y"`
	Heading  float64 `msgpack:"h" json:"heading"`
	Phase    int     `msgpack:"ph" json:"phase"`
}

type ExplosionView struct {
	X      float64 `msgpack:"x" json:"x"`
	Y      float64 `msgpack:"y" json:"y"`
	Phase  int     `msgpack:"ph" json:"phase"`
	Phases int     `msgpack:"n" json:"phases"`
}

type RocketView struct {
	X    float64 `msgpack:"x" json:"x"`
	Y    float64 `msgpack:"y" json:"y"`
	Side string  `msgpack:"sd" json:"side"`
}

// Snapshot copies the current state. withGround includes the terrain grid,
// which only changes between battles and can be sent once.
func (b *Battle) Snapshot(withGround bool) Snapshot {
	s := Snapshot{
		BattleID: b.ID,
		Tick:     b.tick,
		Phase:    b.phase.String(),
		Speed:    b.speed,
		Width:    b.terrain.Width,
		Height:   b.terrain.Height,
	}
	if b.phase == PhaseConcluded {
		s.Winner = b.winner.String()
	}
	if withGround {
		s.Ground = append([]GroundType(nil), b.terrain.ground...)
	}
	for _, u := range b.units {
		if u.removed {
			continue
		}
		v := UnitView{
			ID:       u.id,
			Label:    u.label,
			Kind:     u.kind.Name,
			Side:     u.owner.Side.String(),
			X:        u.x,
			Y:        u.y,
			Heading:  u.heading,
			HP:       u.hp,
			MaxHP:    u.kind.MaxHP,
			State:    u.state.String(),
			Phase:    u.phase,
			Guard:    u.guard,
			Selected: u.selected,
			Group:    u.group,
		}
		if !u.target.IsZero() {
			v.Target = targetLabel(u.target)
		}
		s.Units = append(s.Units, v)
	}
	for _, bd := range b.buildings {
		s.Buildings = append(s.Buildings, BuildingView{
			ID:         bd.id,
			Label:      buildingLabel(bd),
			Kind:       bd.kind.Name,
			Rect:       bd.rect,
			HP:         bd.hp,
			MaxHP:      bd.kind.MaxHP,
			Guns:       len(bd.guns),
			Unfinished: bd.unfinished,
			Destroyed:  bd.destroyed,
		})
	}
	for _, g := range b.guns {
		if g.removed {
			continue
		}
		x, y := g.Pos()
		s.Guns = append(s.Guns, GunView{ID: g.id, Kind: g.kind.Name, Building: g.building.id, X: x, Y: y, Heading: g.heading, Phase: g.phase})
	}
	for c := range b.mines {
		s.Mines = append(s.Mines, c)
	}
	sortCells(s.Mines)
	for _, e := range b.explosions {
		s.Explosions = append(s.Explosions, ExplosionView{X: e.X, Y: e.Y, Phase: e.Phase, Phases: e.Phases})
	}
	for _, r := range b.rockets {
		s.Rockets = append(s.Rockets, RocketView{X: r.X, Y: r.Y, Side: r.Owner.Side.String()})
	}
	return s
}

func sortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
}
