package game

import (
	"fmt"
	"sort"
	"strings"
)

// Performance grading thresholds.
const (
	perfMinCombatTicks = 10
	perfMinMoveTicks   = 10
)

// ---------------------------------------------------------------------------
// PerfTracker: per-unit, per-tick accumulator
// ---------------------------------------------------------------------------

// PerfTracker accumulates per-tick performance metrics for one unit.
type PerfTracker struct {
	Label string
	Side  Side
	ID    int
	Kind  string

	MaxHP float64
	Armed bool

	// Lifecycle.
	TicksAlive int
	Survived   bool

	// State-time counters.
	TicksIdle        int
	TicksMoving      int
	TicksApproaching int
	TicksRotating    int
	TicksFiring      int
	TicksParalyzed   int
	TicksLayingMine  int
	TicksYielding    int

	// Aggregates.
	DistanceTraveled float64
	DamageTaken      float64
	HealthAtEnd      float64
	Shots            int
	DamageFired      float64

	prevX, prevY float64
	prevHP       float64
}

// NewPerfTracker creates a tracker seeded from the unit's current state.
func NewPerfTracker(u *Unit) *PerfTracker {
	return &PerfTracker{
		Label:    u.label,
		Side:     u.owner.Side,
		ID:       u.id,
		Kind:     u.kind.Name,
		MaxHP:    u.kind.MaxHP,
		Armed:    u.kind.Armed(),
		Survived: true,
		prevX:    u.x,
		prevY:    u.y,
		prevHP:   u.hp,
	}
}

// Update folds one tick of the unit's state into the tracker.
func (pt *PerfTracker) Update(u *Unit) {
	pt.TicksAlive++
	switch u.state {
	case UnitStateIdle:
		pt.TicksIdle++
	case UnitStateMoving:
		pt.TicksMoving++
	case UnitStateApproaching:
		pt.TicksApproaching++
	case UnitStateRotating:
		pt.TicksRotating++
	case UnitStateFiring:
		pt.TicksFiring++
	case UnitStateParalyzed:
		pt.TicksParalyzed++
	case UnitStateLayingMine:
		pt.TicksLayingMine++
	case UnitStateYielding:
		pt.TicksYielding++
	}
	pt.DistanceTraveled += Distance(pt.prevX, pt.prevY, u.x, u.y)
	if u.hp < pt.prevHP {
		pt.DamageTaken += pt.prevHP - u.hp
	}
	pt.prevX, pt.prevY, pt.prevHP = u.x, u.y, u.hp
	pt.HealthAtEnd = max(u.hp, 0)
}

func (pt *PerfTracker) combatTicks() int {
	return pt.TicksApproaching + pt.TicksRotating + pt.TicksFiring
}

func (pt *PerfTracker) moveTicks() int {
	return pt.TicksMoving + pt.TicksApproaching + pt.TicksYielding
}

// ---------------------------------------------------------------------------
// PerfBoard: trackers for every unit of a battle
// ---------------------------------------------------------------------------

// PerfBoard keeps one tracker per unit that ever took the field.
type PerfBoard struct {
	trackers map[int]*PerfTracker
}

func NewPerfBoard() *PerfBoard {
	return &PerfBoard{trackers: map[int]*PerfTracker{}}
}

// Update samples every unit on the field. Call it once per tick.
func (pb *PerfBoard) Update(b *Battle) {
	for _, u := range b.units {
		if u.removed {
			continue
		}
		pt, ok := pb.trackers[u.id]
		if !ok {
			pt = NewPerfTracker(u)
			pb.trackers[u.id] = pt
		}
		pt.Update(u)
	}
}

// Finalize attributes shots and losses from the battle log.
func (pb *PerfBoard) Finalize(log *BattleLog) {
	byLabel := make(map[string]*PerfTracker, len(pb.trackers))
	for _, pt := range pb.trackers {
		byLabel[pt.Label] = pt
	}
	for _, e := range log.Entries() {
		pt, ok := byLabel[e.Actor]
		if !ok {
			continue
		}
		switch {
		case e.Category == "combat" && (e.Key == "fire" || e.Key == "launch"):
			pt.Shots++
			pt.DamageFired += e.NumVal
		case e.Category == "combat" && e.Key == "self_destruct":
			pt.Shots++
			pt.DamageFired += e.NumVal
			pt.Survived = false
		case e.Category == "damage" && e.Key == "destroyed":
			pt.Survived = false
			pt.HealthAtEnd = 0
		}
	}
}

// Grades computes grades for every tracked unit.
func (pb *PerfBoard) Grades() []UnitGrade {
	return GradePerformance(pb.trackers)
}

// ---------------------------------------------------------------------------
// UnitGrade: computed performance result
// ---------------------------------------------------------------------------

// UnitGrade is the computed performance grade for one unit.
type UnitGrade struct {
	Label    string
	Side     Side
	ID       int
	Kind     string
	Grade    string  // A+, A, B+, B, C+, C, D, F
	Score    float64 // 0-100
	Survived bool

	// Situation scores (0-100; -1 = not enough data to grade).
	GunneryScore    float64
	MobilityScore   float64
	ActivityScore   float64
	ResilienceScore float64

	GoodTraits []string
	BadTraits  []string

	Shots       int
	DamageTaken float64
}

// GradePerformance computes grades from accumulated tracker data.
func GradePerformance(trackers map[int]*PerfTracker) []UnitGrade {
	grades := make([]UnitGrade, 0, len(trackers))
	for _, pt := range trackers {
		grades = append(grades, computeGrade(pt))
	}
	sort.Slice(grades, func(i, j int) bool {
		if grades[i].Side != grades[j].Side {
			return grades[i].Side < grades[j].Side
		}
		if grades[i].Score != grades[j].Score {
			return grades[i].Score > grades[j].Score
		}
		return grades[i].ID < grades[j].ID
	})
	return grades
}

func computeGrade(pt *PerfTracker) UnitGrade {
	g := UnitGrade{
		Label:           pt.Label,
		Side:            pt.Side,
		ID:              pt.ID,
		Kind:            pt.Kind,
		Survived:        pt.Survived,
		Shots:           pt.Shots,
		DamageTaken:     pt.DamageTaken,
		GunneryScore:    -1,
		MobilityScore:   -1,
		ActivityScore:   -1,
		ResilienceScore: -1,
	}

	// Gunnery: time on target against time spent closing in.
	if pt.Armed && pt.combatTicks() >= perfMinCombatTicks {
		onTarget := perfFrac(pt.TicksRotating+pt.TicksFiring, pt.combatTicks())
		g.GunneryScore = perfClamp(40 + onTarget*50 + float64(min(pt.Shots, 10)))
	}

	// Mobility: progress made versus time spent yielding.
	if pt.moveTicks() >= perfMinMoveTicks {
		g.MobilityScore = perfClamp(100 - perfFrac(pt.TicksYielding, pt.moveTicks())*120)
	}

	if pt.TicksAlive > 0 {
		stalled := perfFrac(pt.TicksIdle+pt.TicksParalyzed, pt.TicksAlive)
		if !pt.Armed {
			stalled = perfFrac(pt.TicksParalyzed, pt.TicksAlive)
		}
		g.ActivityScore = perfClamp(100 - stalled*80)
	}

	if pt.MaxHP > 0 {
		g.ResilienceScore = perfClamp(100 - pt.DamageTaken/pt.MaxHP*60)
	}

	var sum, n float64
	for _, s := range []float64{g.GunneryScore, g.MobilityScore, g.ActivityScore, g.ResilienceScore} {
		if s >= 0 {
			sum += s
			n++
		}
	}
	score := 50.0
	if n > 0 {
		score = sum / n
	}
	if pt.Survived {
		score += 8
	} else {
		score -= 15
	}
	g.Score = perfClamp(score)
	g.Grade = PerfLetterGrade(g.Score)
	g.GoodTraits, g.BadTraits = perfDetectTraits(pt)
	return g
}

func perfDetectTraits(pt *PerfTracker) (good, bad []string) {
	if pt.Armed && pt.Shots >= 5 && perfFrac(pt.TicksFiring+pt.TicksRotating, pt.combatTicks()) > 0.6 {
		good = append(good, "steady_gunner")
	}
	if pt.Survived && pt.MaxHP > 0 && pt.DamageTaken > pt.MaxHP*0.5 {
		good = append(good, "tough")
	}
	if pt.TicksLayingMine > 0 {
		good = append(good, "sapper")
	}
	if pt.moveTicks() >= perfMinMoveTicks && pt.DistanceTraveled > 20 && pt.TicksYielding == 0 {
		good = append(good, "clear_runner")
	}

	if pt.moveTicks() >= perfMinMoveTicks && perfFrac(pt.TicksYielding, pt.moveTicks()) > 0.25 {
		bad = append(bad, "jammed")
	}
	if pt.Armed && pt.TicksAlive >= perfMinCombatTicks && pt.Shots == 0 && perfFrac(pt.TicksIdle, pt.TicksAlive) > 0.6 {
		bad = append(bad, "idle_gun")
	}
	if perfFrac(pt.TicksParalyzed, pt.TicksAlive) > 0.2 {
		bad = append(bad, "paralyzed")
	}
	if !pt.Survived && pt.TicksAlive < perfMinCombatTicks*3 {
		bad = append(bad, "early_loss")
	}
	return good, bad
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

// FormatGrades returns a human-readable performance report.
func FormatGrades(grades []UnitGrade) string {
	var sb strings.Builder
	sb.WriteString("\n=== Unit Performance Grades ===\n")

	currentSide := Side(-1)
	for _, g := range grades {
		if g.Side != currentSide {
			currentSide = g.Side
			fmt.Fprintf(&sb, "\n--- %s ---\n", strings.ToUpper(g.Side.String()))
		}

		status := "survived"
		if !g.Survived {
			status = "lost"
		}
		fmt.Fprintf(&sb, "  %-3s  %-4s %-15s [%s]  shots=%d  dmg_taken=%.0f\n",
			g.Grade, g.Label, g.Kind, status, g.Shots, g.DamageTaken)

		if len(g.GoodTraits) > 0 {
			fmt.Fprintf(&sb, "       Good: %s\n", strings.Join(g.GoodTraits, ", "))
		}
		if len(g.BadTraits) > 0 {
			fmt.Fprintf(&sb, "       Bad:  %s\n", strings.Join(g.BadTraits, ", "))
		}

		var scores []string
		if g.GunneryScore >= 0 {
			scores = append(scores, fmt.Sprintf("Gunnery=%.0f", g.GunneryScore))
		}
		if g.MobilityScore >= 0 {
			scores = append(scores, fmt.Sprintf("Mobility=%.0f", g.MobilityScore))
		}
		if g.ActivityScore >= 0 {
			scores = append(scores, fmt.Sprintf("Activity=%.0f", g.ActivityScore))
		}
		if g.ResilienceScore >= 0 {
			scores = append(scores, fmt.Sprintf("Resilience=%.0f", g.ResilienceScore))
		}
		if len(scores) > 0 {
			fmt.Fprintf(&sb, "       Scores: %s\n", strings.Join(scores, "  "))
		}
	}

	return sb.String()
}

// FormatGradesSummary returns a compact side-level summary.
func FormatGradesSummary(grades []UnitGrade) string {
	var sb strings.Builder

	type sideStats struct {
		count     int
		scoreSum  float64
		survived  int
		goodCount map[string]int
		badCount  map[string]int
	}
	sides := map[Side]*sideStats{}
	for _, g := range grades {
		ss, ok := sides[g.Side]
		if !ok {
			ss = &sideStats{goodCount: map[string]int{}, badCount: map[string]int{}}
			sides[g.Side] = ss
		}
		ss.count++
		ss.scoreSum += g.Score
		if g.Survived {
			ss.survived++
		}
		for _, t := range g.GoodTraits {
			ss.goodCount[t]++
		}
		for _, t := range g.BadTraits {
			ss.badCount[t]++
		}
	}

	for _, side := range []Side{SideAttacker, SideDefender} {
		ss, ok := sides[side]
		if !ok {
			continue
		}
		avg := ss.scoreSum / float64(ss.count)
		fmt.Fprintf(&sb, "  %s: avg_score=%.1f (%s)  survived=%d/%d\n",
			side, avg, PerfLetterGrade(avg), ss.survived, ss.count)

		if len(ss.goodCount) > 0 {
			fmt.Fprintf(&sb, "    Top good: %s\n", perfTopTraits(ss.goodCount, 4))
		}
		if len(ss.badCount) > 0 {
			fmt.Fprintf(&sb, "    Top bad:  %s\n", perfTopTraits(ss.badCount, 4))
		}
	}

	return sb.String()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func perfFrac(num, denom int) float64 {
	if denom <= 0 {
		return 0
	}
	return float64(num) / float64(denom)
}

func perfClamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// PerfLetterGrade maps a 0-100 score to a letter grade.
func PerfLetterGrade(score float64) string {
	switch {
	case score >= 93:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 78:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 62:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 45:
		return "D"
	default:
		return "F"
	}
}

func perfTopTraits(counts map[string]int, n int) string {
	type kv struct {
		trait string
		count int
	}
	var items []kv
	for k, v := range counts {
		items = append(items, kv{k, v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return items[i].trait < items[j].trait
	})
	if len(items) > n {
		items = items[:n]
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s(%d)", it.trait, it.count)
	}
	return strings.Join(parts, ", ")
}
