package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Special identifies a unit kind's special ability.
type Special string

const (
	SpecialNone         Special = ""
	SpecialMine         Special = "mine"          // lays a mine at its cell
	SpecialSelfDestruct Special = "self_destruct" // detonates in place
	SpecialParalyze     Special = "paralyze"      // weapon paralyzes instead of damaging
)

// UnitKind holds the immutable stats of a deployable unit model.
type UnitKind struct {
	Name         string  `yaml:"name"`
	MaxHP        float64 `yaml:"max_hp"`
	MoveSpeed    float64 `yaml:"move_speed"`    // time units to cross one cell
	MinRange     float64 `yaml:"min_range"`     // exclusive dead zone, cells
	MaxRange     float64 `yaml:"max_range"`     // inclusive reach, cells
	RotationTime float64 `yaml:"rotation_time"` // time units per angle frame
	Damage       float64 `yaml:"damage"`
	Delay        int     `yaml:"delay"`     // cooldown ticks after a shot
	MaxPhase     int     `yaml:"max_phase"` // fire / lay phases
	Special      Special `yaml:"special"`
	Rocket       bool    `yaml:"rocket"`
	RocketSpeed  float64 `yaml:"rocket_speed"` // cells per tick
	Area         float64 `yaml:"area"`         // splash radius, 0 = direct hit
	RepairRate   float64 `yaml:"repair_rate"`  // hp per tick
	MineDamage   float64 `yaml:"mine_damage"`
}

// DirectFire reports whether the kind can damage a target with its weapon.
func (k *UnitKind) DirectFire() bool {
	return k.Damage > 0 && k.MaxRange > 0 && k.Special != SpecialParalyze
}

// Armed reports whether the kind carries any weapon at all (damage or paralysis).
func (k *UnitKind) Armed() bool {
	return k.MaxRange > 0 && (k.Damage > 0 || k.Special == SpecialParalyze)
}

// GunKind holds the stats of a building-mounted turret.
type GunKind struct {
	Name         string  `yaml:"name"`
	Damage       float64 `yaml:"damage"`
	MinRange     float64 `yaml:"min_range"`
	MaxRange     float64 `yaml:"max_range"`
	RotationTime float64 `yaml:"rotation_time"`
	Delay        int     `yaml:"delay"`
	MaxPhase     int     `yaml:"max_phase"`
	Rocket       bool    `yaml:"rocket"`
	RocketSpeed  float64 `yaml:"rocket_speed"`
	Area         float64 `yaml:"area"`
}

// BuildingKind describes a structure that can stand on the battlefield.
type BuildingKind struct {
	Name      string  `yaml:"name"`
	MaxHP     float64 `yaml:"max_hp"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Main      bool    `yaml:"main"`      // defender deploys around it
	Defensive bool    `yaml:"defensive"` // hosts guns
	Guns      int     `yaml:"guns"`
	Gun       string  `yaml:"gun"`
}

// Ruleset is the immutable battle configuration handed to a battle at
// construction. Treat every field and every returned kind as read-only once
// a battle holds it. Kinds appended before that are picked up on lookup.
type Ruleset struct {
	TickDuration    int  `yaml:"tick_duration"`
	YieldTicks      int  `yaml:"yield_ticks"`
	ParalysisTicks  int  `yaml:"paralysis_ticks"`
	AngleFrames     int  `yaml:"angle_frames"`
	ExplosionPhases int  `yaml:"explosion_phases"`
	PlannerWorkers  int  `yaml:"planner_workers"`
	SearchLimit     int  `yaml:"search_limit"`
	MaxDeployed     int  `yaml:"max_deployed"`
	DeployRing      int  `yaml:"deploy_ring"`
	DeployEdge      int  `yaml:"deploy_edge"`
	GuardByDefault  bool `yaml:"guard_by_default"`

	Units     []UnitKind     `yaml:"units"`
	Guns      []GunKind      `yaml:"guns"`
	Buildings []BuildingKind `yaml:"buildings"`

	units     map[string]*UnitKind
	guns      map[string]*GunKind
	buildings map[string]*BuildingKind
}

// Default returns the embedded ruleset.
func Default() *Ruleset {
	rs, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded ruleset: %v", err))
	}
	return rs
}

// Load reads and validates a ruleset file.
func Load(path string) (*Ruleset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}
	rs, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return rs, nil
}

// Parse decodes YAML into a validated, indexed ruleset.
func Parse(b []byte) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(b, &rs); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	rs.index()
	return &rs, nil
}

// Validate checks ruleset invariants.
func (rs *Ruleset) Validate() error {
	if rs.TickDuration <= 0 {
		return errors.New("tick_duration must be > 0")
	}
	if rs.YieldTicks <= 0 {
		return errors.New("yield_ticks must be > 0")
	}
	if rs.AngleFrames <= 0 {
		return errors.New("angle_frames must be > 0")
	}
	if rs.ExplosionPhases < 2 {
		return errors.New("explosion_phases must be >= 2")
	}
	if rs.PlannerWorkers <= 0 {
		return errors.New("planner_workers must be > 0")
	}
	if rs.MaxDeployed <= 0 {
		return errors.New("max_deployed must be > 0")
	}

	seen := map[string]bool{}
	for _, u := range rs.Units {
		if u.Name == "" {
			return errors.New("unit kind without name")
		}
		if seen[u.Name] {
			return fmt.Errorf("duplicate unit kind %q", u.Name)
		}
		seen[u.Name] = true
		if u.MaxHP <= 0 {
			return fmt.Errorf("unit %q: max_hp must be > 0", u.Name)
		}
		if u.MoveSpeed <= 0 {
			return fmt.Errorf("unit %q: move_speed must be > 0", u.Name)
		}
		if u.MinRange < 0 || u.MaxRange < u.MinRange {
			return fmt.Errorf("unit %q: bad range band (%.1f, %.1f]", u.Name, u.MinRange, u.MaxRange)
		}
		if u.Rocket && u.RocketSpeed <= 0 {
			return fmt.Errorf("unit %q: rocket weapon needs rocket_speed", u.Name)
		}
		switch u.Special {
		case SpecialNone, SpecialMine, SpecialSelfDestruct, SpecialParalyze:
		default:
			return fmt.Errorf("unit %q: unknown special %q", u.Name, u.Special)
		}
	}

	guns := map[string]bool{}
	for _, g := range rs.Guns {
		if g.Name == "" || guns[g.Name] {
			return fmt.Errorf("bad or duplicate gun kind %q", g.Name)
		}
		guns[g.Name] = true
		if g.MaxRange <= 0 || g.MaxRange < g.MinRange {
			return fmt.Errorf("gun %q: bad range band", g.Name)
		}
		if g.Rocket && g.RocketSpeed <= 0 {
			return fmt.Errorf("gun %q: rocket weapon needs rocket_speed", g.Name)
		}
	}

	bseen := map[string]bool{}
	for _, b := range rs.Buildings {
		if b.Name == "" || bseen[b.Name] {
			return fmt.Errorf("bad or duplicate building kind %q", b.Name)
		}
		bseen[b.Name] = true
		if b.Width <= 0 || b.Height <= 0 || b.MaxHP <= 0 {
			return fmt.Errorf("building %q: size and max_hp must be > 0", b.Name)
		}
		if b.Defensive && b.Guns > 0 && !guns[b.Gun] {
			return fmt.Errorf("building %q: unknown gun %q", b.Name, b.Gun)
		}
	}
	return nil
}

func (rs *Ruleset) index() {
	rs.units = make(map[string]*UnitKind, len(rs.Units))
	for i := range rs.Units {
		rs.units[rs.Units[i].Name] = &rs.Units[i]
	}
	rs.guns = make(map[string]*GunKind, len(rs.Guns))
	for i := range rs.Guns {
		rs.guns[rs.Guns[i].Name] = &rs.Guns[i]
	}
	rs.buildings = make(map[string]*BuildingKind, len(rs.Buildings))
	for i := range rs.Buildings {
		rs.buildings[rs.Buildings[i].Name] = &rs.Buildings[i]
	}
}

// UnitKind looks up a unit model by name.
func (rs *Ruleset) UnitKind(name string) (*UnitKind, bool) {
	if len(rs.units) != len(rs.Units) {
		rs.index()
	}
	k, ok := rs.units[name]
	return k, ok
}

// GunKind looks up a turret model by name.
func (rs *Ruleset) GunKind(name string) (*GunKind, bool) {
	if len(rs.guns) != len(rs.Guns) {
		rs.index()
	}
	k, ok := rs.guns[name]
	return k, ok
}

// BuildingKind looks up a structure model by name.
func (rs *Ruleset) BuildingKind(name string) (*BuildingKind, bool) {
	if len(rs.buildings) != len(rs.Buildings) {
		rs.index()
	}
	k, ok := rs.buildings[name]
	return k, ok
}

// TickInterval returns the wall-clock interval between ticks at the given
// speed multiplier (1, 2 or 4). Other values fall back to 1x.
func (rs *Ruleset) TickInterval(speed int) time.Duration {
	switch speed {
	case 1, 2, 4:
	default:
		speed = 1
	}
	return time.Duration(rs.TickDuration) * time.Millisecond / time.Duration(speed)
}
