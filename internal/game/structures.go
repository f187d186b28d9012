package game

import "github.com/Garsondee/Battle-Sense/internal/config"

// Building is a structure standing on the battlefield. Defensive kinds host guns.
type Building struct {
	id         int
	kind       *config.BuildingKind
	owner      *Player
	rect       Rect
	hp         float64
	guns       []*Gun
	initGuns   int
	halfLost   bool // the 50% gun loss has been applied
	unfinished bool
	destroyed  bool
	demolished bool
}

func (b *Building) ID() int                    { return b.id }
func (b *Building) Kind() *config.BuildingKind { return b.kind }
func (b *Building) Owner() *Player             { return b.owner }
func (b *Building) Rect() Rect                 { return b.rect }
func (b *Building) HP() float64                { return b.hp }
func (b *Building) Guns() int                  { return len(b.guns) }
func (b *Building) Destroyed() bool            { return b.destroyed }
func (b *Building) Unfinished() bool           { return b.unfinished }

// Gun is a turret mounted on a building. It never moves.
type Gun struct {
	id       int
	kind     *config.GunKind
	building *Building
	cell     Cell
	heading  float64
	target   *Unit
	phase    int
	cooldown int
	removed  bool
}

func (g *Gun) ID() int               { return g.id }
func (g *Gun) Kind() *config.GunKind { return g.kind }
func (g *Gun) Building() *Building   { return g.building }
func (g *Gun) Cell() Cell            { return g.cell }
func (g *Gun) Heading() float64      { return g.heading }
func (g *Gun) Target() *Unit         { return g.target }
func (g *Gun) Phase() int            { return g.phase }

// Pos returns the turret's continuous position (its cell centre).
func (g *Gun) Pos() (float64, float64) { return g.cell.Center() }

// Mine sits in one cell and detonates on the first enemy unit entering it.
type Mine struct {
	Cell   Cell
	Owner  *Player
	Damage float64
}

// Explosion is a finite animation; at its half point the kill target (if
// any) leaves the active set.
type Explosion struct {
	X, Y   float64
	Target *Unit
	Phase  int
	Phases int
}

// Half reports whether the explosion has reached its kill threshold.
func (e *Explosion) Half() bool { return e.Phase == e.Phases/2 }

// Done reports whether the explosion should be removed.
func (e *Explosion) Done() bool { return e.Phase >= e.Phases }

// Rocket is a projectile flying toward a fixed point.
type Rocket struct {
	X, Y   float64
	TX, TY float64
	Owner  *Player
	Speed  float64 // cells per tick
	Damage float64
	Area   float64
}
