// Package skirmish builds ready-to-run demo battles for the viewer, the
// servers and the headless report.
package skirmish

import (
	"fmt"
	"math/rand"

	"github.com/Garsondee/Battle-Sense/internal/config"
	"github.com/Garsondee/Battle-Sense/internal/game"
)

// Setup describes one skirmish: map size, forces and the defender's base.
type Setup struct {
	Name      string
	Width     int
	Height    int
	Seed      int64
	Attacker  map[string]int
	Defender  map[string]int
	Buildings []game.BuildingSpec
	Biome     game.BiomeConfig
}

// Scenarios lists the built-in setups by name.
var Scenarios = map[string]func(seed int64) Setup{
	"outpost": Outpost,
	"duel":    Duel,
}

// Outpost is a mixed landing against a small fortified base.
func Outpost(seed int64) Setup {
	return Setup{
		Name:   "outpost",
		Width:  48,
		Height: 32,
		Seed:   seed,
		Attacker: map[string]int{
			"tank":            4,
			"artillery":       2,
			"rocket_launcher": 2,
			"paralyzer":       1,
			"kamikaze":        1,
			"repair_tank":     1,
		},
		Defender: map[string]int{
			"tank":      3,
			"minelayer": 1,
			"artillery": 1,
		},
		Buildings: []game.BuildingSpec{
			{Kind: "command_center", X: 22, Y: 14},
			{Kind: "bunker", X: 16, Y: 10},
			{Kind: "bunker", X: 29, Y: 19},
			{Kind: "missile_site", X: 29, Y: 9},
			{Kind: "factory", X: 15, Y: 20, Unfinished: true},
		},
		Biome: game.DefaultBiome,
	}
}

// Duel is a tank-on-tank fight on open ground.
func Duel(seed int64) Setup {
	return Setup{
		Name:     "duel",
		Width:    24,
		Height:   16,
		Seed:     seed,
		Attacker: map[string]int{"tank": 1},
		Defender: map[string]int{"tank": 1},
	}
}

// Lookup resolves a scenario name.
func Lookup(name string, seed int64) (Setup, error) {
	fn, ok := Scenarios[name]
	if !ok {
		return Setup{}, fmt.Errorf("unknown scenario %q", name)
	}
	return fn(seed), nil
}

// Terrain paints the setup's battlefield, keeping building plots, the
// defender ring and the attacker landing band open.
func (s Setup) Terrain(rules *config.Ruleset) *game.Terrain {
	if s.Biome == (game.BiomeConfig{}) {
		return game.NewTerrain(s.Width, s.Height)
	}
	var plots []game.Rect
	for _, bs := range s.Buildings {
		if k, ok := rules.BuildingKind(bs.Kind); ok {
			pad := 0
			if k.Main {
				pad = rules.DeployRing
			}
			plots = append(plots, game.Rect{X: bs.X - pad - 1, Y: bs.Y - pad - 1, W: k.Width + 2*pad + 2, H: k.Height + 2*pad + 2})
		}
	}
	edge := rules.DeployEdge + 1
	keep := func(c game.Cell) bool {
		if c.X < edge || c.Y < edge || c.X >= s.Width-edge || c.Y >= s.Height-edge {
			return true
		}
		for _, r := range plots {
			if r.Contains(c) {
				return true
			}
		}
		return false
	}
	rng := rand.New(rand.NewSource(s.Seed)) // #nosec G404 -- map generation only
	return game.GenerateTerrain(s.Width, s.Height, rng, s.Biome, keep)
}

// New initiates the battle, deploys both sides automatically with the
// assault/hold behaviours attached and starts the simulation. Extra options
// are applied after the skirmish defaults.
func New(rules *config.Ruleset, s Setup, opts ...game.Option) (*game.Battle, *game.Roster, *game.Roster, error) {
	atkInv := game.NewRoster(s.Attacker)
	defInv := game.NewRoster(s.Defender)
	all := append([]game.Option{
		game.WithSeed(s.Seed),
		game.WithBehavior(game.SideAttacker, game.AssaultBehavior{}),
		game.WithBehavior(game.SideDefender, game.HoldBehavior{}),
	}, opts...)

	b, err := game.InitiateBattle(rules,
		&game.Player{Name: "Invaders"}, atkInv,
		game.DefenderContext{
			Player:    &game.Player{Name: "Colony"},
			Inventory: defInv,
			Terrain:   s.Terrain(rules),
			Buildings: s.Buildings,
		},
		all...,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("skirmish %s: %w", s.Name, err)
	}
	b.AutoDeploy(game.SideDefender)
	b.AutoDeploy(game.SideAttacker)
	if err := b.Start(); err != nil {
		return nil, nil, nil, fmt.Errorf("skirmish %s: %w", s.Name, err)
	}
	return b, atkInv, defInv, nil
}
