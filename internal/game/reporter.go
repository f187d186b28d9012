package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-behaviour reports (~10s at 10TPS).
const reportWindowTicks = 100

// --- Sample types ---

// SideSample captures one side's forces at one point in time.
type SideSample struct {
	Alive     int
	Injured   int // hp below max but above zero
	HPFrac    float64
	States    map[string]int
	Guns      int
	Buildings int // standing, unfinished included
}

// BattleSample is a condensed snapshot of the battle at one tick.
type BattleSample struct {
	Tick       int
	Attacker   SideSample
	Defender   SideSample
	Rockets    int
	Explosions int
	Mines      int
}

// SampleOf condenses a snapshot into per-side counts.
func SampleOf(s Snapshot) BattleSample {
	bs := BattleSample{
		Tick:       s.Tick,
		Attacker:   SideSample{States: map[string]int{}},
		Defender:   SideSample{States: map[string]int{}},
		Rockets:    len(s.Rockets),
		Explosions: len(s.Explosions),
		Mines:      len(s.Mines),
	}
	var hp, maxHP [2]float64
	for _, u := range s.Units {
		side, i := &bs.Defender, 1
		if u.Side == SideAttacker.String() {
			side, i = &bs.Attacker, 0
		}
		side.Alive++
		side.States[u.State]++
		if u.HP < u.MaxHP {
			side.Injured++
		}
		hp[i] += u.HP
		maxHP[i] += u.MaxHP
	}
	if maxHP[0] > 0 {
		bs.Attacker.HPFrac = hp[0] / maxHP[0]
	}
	if maxHP[1] > 0 {
		bs.Defender.HPFrac = hp[1] / maxHP[1]
	}
	bs.Defender.Guns = len(s.Guns)
	for _, b := range s.Buildings {
		if !b.Destroyed {
			bs.Defender.Buildings++
		}
	}
	return bs
}

// --- Reporter ---

// BattleReporter collects periodic samples from a battle and can produce
// summaries over sliding time windows.
type BattleReporter struct {
	history     []BattleSample
	windowTicks int
}

// NewBattleReporter creates a reporter with the given window size.
func NewBattleReporter(windowTicks int) *BattleReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &BattleReporter{windowTicks: windowTicks}
}

// Collect samples the battle's current state.
// Call this periodically (e.g. every 10 ticks / 1s).
func (r *BattleReporter) Collect(b *Battle) {
	r.Add(SampleOf(b.Snapshot(false)))
}

// Add appends a sample taken elsewhere, such as from a streamed snapshot.
func (r *BattleReporter) Add(s BattleSample) {
	r.history = append(r.history, s)
}

// Samples returns the number of collected samples.
func (r *BattleReporter) Samples() int { return len(r.history) }

// Latest returns the most recent sample, or nil.
func (r *BattleReporter) Latest() *BattleSample {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// WindowSummary averages the samples within the recent window.
func (r *BattleReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}

	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []BattleSample
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:    window[len(window)-1].Tick,
		ToTick:      window[0].Tick,
		SampleCount: len(window),
	}
	wr.Attacker = averageSide(window, n, func(s BattleSample) SideSample { return s.Attacker })
	wr.Defender = averageSide(window, n, func(s BattleSample) SideSample { return s.Defender })
	for _, s := range window {
		wr.AvgRockets += float64(s.Rockets)
		wr.AvgExplosions += float64(s.Explosions)
	}
	wr.AvgRockets /= n
	wr.AvgExplosions /= n

	// Losses are measured across the window, oldest to newest.
	oldest, newest := window[len(window)-1], window[0]
	wr.Attacker.Lost = oldest.Attacker.Alive - newest.Attacker.Alive
	wr.Defender.Lost = oldest.Defender.Alive - newest.Defender.Alive
	wr.Defender.GunsLost = oldest.Defender.Guns - newest.Defender.Guns
	return wr
}

func averageSide(window []BattleSample, n float64, pick func(BattleSample) SideSample) SideWindow {
	sw := SideWindow{StatePct: map[string]float64{}}
	stateTotal := map[string]float64{}
	var units float64
	for _, s := range window {
		ss := pick(s)
		sw.AvgAlive += float64(ss.Alive)
		sw.AvgInjured += float64(ss.Injured)
		sw.AvgHPFrac += ss.HPFrac
		sw.AvgGuns += float64(ss.Guns)
		for st, c := range ss.States {
			stateTotal[st] += float64(c)
			units += float64(c)
		}
	}
	if units > 0 {
		for st, c := range stateTotal {
			sw.StatePct[st] = c / units * 100
		}
	}
	sw.AvgAlive /= n
	sw.AvgInjured /= n
	sw.AvgHPFrac /= n
	sw.AvgGuns /= n
	return sw
}

// SideWindow is one side's aggregate over a window.
type SideWindow struct {
	StatePct   map[string]float64 // 0-100
	AvgAlive   float64
	AvgInjured float64
	AvgHPFrac  float64
	AvgGuns    float64
	Lost       int
	GunsLost   int
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	Attacker, Defender SideWindow

	AvgRockets, AvgExplosions float64
}

var reportStates = []UnitState{
	UnitStateIdle, UnitStateMoving, UnitStateApproaching, UnitStateRotating,
	UnitStateFiring, UnitStateParalyzed, UnitStateLayingMine, UnitStateYielding,
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Battle Window (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)

	for _, side := range []struct {
		name string
		sw   SideWindow
	}{{"ATTACKER", wr.Attacker}, {"DEFENDER", wr.Defender}} {
		fmt.Fprintf(&sb, "--- %s States ---\n", side.name)
		for _, st := range reportStates {
			if pct := side.sw.StatePct[st.String()]; pct > 0.5 {
				fmt.Fprintf(&sb, "  %-14s %5.1f%%\n", st, pct)
			}
		}
	}

	sb.WriteString("--- Forces ---\n")
	fmt.Fprintf(&sb, "  Attacker: alive=%.1f  injured=%.1f  hp=%3.0f%%  lost=%d (%s)\n",
		wr.Attacker.AvgAlive, wr.Attacker.AvgInjured, wr.Attacker.AvgHPFrac*100, wr.Attacker.Lost, strengthLabel(wr.Attacker.AvgHPFrac))
	fmt.Fprintf(&sb, "  Defender: alive=%.1f  injured=%.1f  hp=%3.0f%%  lost=%d  guns=%.1f  guns_lost=%d (%s)\n",
		wr.Defender.AvgAlive, wr.Defender.AvgInjured, wr.Defender.AvgHPFrac*100, wr.Defender.Lost,
		wr.Defender.AvgGuns, wr.Defender.GunsLost, strengthLabel(wr.Defender.AvgHPFrac))
	fmt.Fprintf(&sb, "  In flight: rockets=%.1f  explosions=%.1f\n", wr.AvgRockets, wr.AvgExplosions)
	return sb.String()
}

func strengthLabel(frac float64) string {
	switch {
	case frac > 0.85:
		return "fresh"
	case frac > 0.6:
		return "worn"
	case frac > 0.3:
		return "battered"
	case frac > 0:
		return "broken"
	default:
		return "gone"
	}
}
