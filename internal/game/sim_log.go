package game

import (
	"fmt"
	"strings"
	"sync"
)

// BattleLogEntry is one recorded event during a battle.
type BattleLogEntry struct {
	Tick     int
	Actor    string  // unit label e.g. "A3", "D7", or "--" for battle-wide events
	Side     string  // "attacker", "defender", or "--"
	Category string  // order, path, move, combat, damage, paralysis, mine, rocket, lifecycle, index
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] A3   combat    fire             D7 for 20
func (e BattleLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Actor, e.Category, e.Key, e.Value)
}

// BattleLog collects structured events. Writes come from the tick
// goroutine; viewers and servers read it from others.
type BattleLog struct {
	mu      sync.RWMutex
	entries []BattleLogEntry
	verbose bool
}

// NewBattleLog creates a BattleLog. If verbose is true, per-tick movement
// entries are also recorded (useful for detailed debugging).
func NewBattleLog(verbose bool) *BattleLog {
	return &BattleLog{verbose: verbose}
}

// Add records a new entry.
func (bl *BattleLog) Add(tick int, actor, side, category, key, value string, numVal float64) {
	bl.mu.Lock()
	bl.entries = append(bl.entries, BattleLogEntry{
		Tick:     tick,
		Actor:    actor,
		Side:     side,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
	bl.mu.Unlock()
}

// AddVerbose records an entry only when verbose mode is on.
func (bl *BattleLog) AddVerbose(tick int, actor, side, category, key, value string, numVal float64) {
	if !bl.verbose {
		return
	}
	bl.Add(tick, actor, side, category, key, value, numVal)
}

// Entries returns a copy of all recorded entries.
func (bl *BattleLog) Entries() []BattleLogEntry {
	bl.mu.RLock()
	defer bl.mu.RUnlock()
	return append([]BattleLogEntry(nil), bl.entries...)
}

// Len returns the number of recorded entries.
func (bl *BattleLog) Len() int {
	bl.mu.RLock()
	defer bl.mu.RUnlock()
	return len(bl.entries)
}

// Since returns the entries recorded after the first n.
func (bl *BattleLog) Since(n int) []BattleLogEntry {
	bl.mu.RLock()
	defer bl.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(bl.entries) {
		return nil
	}
	return append([]BattleLogEntry(nil), bl.entries[n:]...)
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (bl *BattleLog) Filter(category, key string) []BattleLogEntry {
	bl.mu.RLock()
	defer bl.mu.RUnlock()
	var out []BattleLogEntry
	for _, e := range bl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterActor returns entries for a specific unit label.
func (bl *BattleLog) FilterActor(label string) []BattleLogEntry {
	bl.mu.RLock()
	defer bl.mu.RUnlock()
	var out []BattleLogEntry
	for _, e := range bl.entries {
		if e.Actor == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (bl *BattleLog) FilterTickRange(fromTick, toTick int) []BattleLogEntry {
	bl.mu.RLock()
	defer bl.mu.RUnlock()
	var out []BattleLogEntry
	for _, e := range bl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (bl *BattleLog) CountCategory(category, key string) int {
	return len(bl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (bl *BattleLog) LastOf(category, key string) (BattleLogEntry, bool) {
	entries := bl.Filter(category, key)
	if len(entries) == 0 {
		return BattleLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (bl *BattleLog) HasEntry(category, key, valueSubstr string) bool {
	bl.mu.RLock()
	defer bl.mu.RUnlock()
	for _, e := range bl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (bl *BattleLog) Format() string {
	return formatEntries(bl.Entries())
}

// FormatRange returns a log string filtered to a tick range.
func (bl *BattleLog) FormatRange(fromTick, toTick int) string {
	return formatEntries(bl.FilterTickRange(fromTick, toTick))
}

func formatEntries(entries []BattleLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the battle state.
func (bl *BattleLog) Summary(b *Battle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d (%s) ---\n", b.tick, b.phase)

	for _, side := range []Side{SideAttacker, SideDefender} {
		states := map[UnitState]int{}
		alive := 0
		for _, u := range b.units {
			if u.owner.Side != side || !u.Alive() {
				continue
			}
			alive++
			states[u.state]++
		}
		fmt.Fprintf(&sb, "%s alive=%d ", side, alive)
		for st := UnitStateIdle; st <= UnitStateDestroyed; st++ {
			if n := states[st]; n > 0 {
				fmt.Fprintf(&sb, "%s=%d  ", st, n)
			}
		}
		sb.WriteByte('\n')
	}

	guns := 0
	for _, g := range b.guns {
		if !g.removed {
			guns++
		}
	}
	standing := 0
	for _, bd := range b.buildings {
		if !bd.destroyed {
			standing++
		}
	}
	fmt.Fprintf(&sb, "Buildings: %d standing  guns: %d  mines: %d\n", standing, guns, len(b.mines))
	fmt.Fprintf(&sb, "In flight: explosions=%d  rockets=%d\n", len(b.explosions), len(b.rockets))
	return sb.String()
}
