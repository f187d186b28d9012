package game

import (
	"fmt"
	"sort"
	"strings"
)

// Side distinguishes the two parties of a battle.
type Side int

const (
	SideNone     Side = iota
	SideAttacker      // landing force
	SideDefender      // holds the planet
)

func (s Side) String() string {
	switch s {
	case SideAttacker:
		return "attacker"
	case SideDefender:
		return "defender"
	default:
		return "none"
	}
}

// Prefix is the short label prefix used in logs ("A3", "D0").
func (s Side) Prefix() string {
	switch s {
	case SideAttacker:
		return "A"
	case SideDefender:
		return "D"
	default:
		return "-"
	}
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	switch s {
	case SideAttacker:
		return SideDefender
	case SideDefender:
		return SideAttacker
	default:
		return SideNone
	}
}

// Player is one party of the battle.
type Player struct {
	Name string
	Side Side
}

// Summary is reported once when the battle concludes.
type Summary struct {
	BattleID   string
	Winner     Side
	Ticks      int
	Retreat    bool // the loser left the field rather than being destroyed
	Casualties map[Side]map[string]int
	Withdrawn  map[Side]map[string]int
	Destroyed  []string // defender structures destroyed in combat
	Demolished []string // unfinished structures razed after conquest
}

// Lost returns the total casualties of a side.
func (s Summary) Lost(side Side) int {
	n := 0
	for _, c := range s.Casualties[side] {
		n += c
	}
	return n
}

// String formats the summary as a short multi-line report.
func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "battle %s: winner=%s ticks=%d retreat=%v\n", s.BattleID, s.Winner, s.Ticks, s.Retreat)
	for _, side := range []Side{SideAttacker, SideDefender} {
		fmt.Fprintf(&sb, "  %s losses: %s\n", side, formatCounts(s.Casualties[side]))
		if len(s.Withdrawn[side]) > 0 {
			fmt.Fprintf(&sb, "  %s withdrawn: %s\n", side, formatCounts(s.Withdrawn[side]))
		}
	}
	if len(s.Destroyed) > 0 {
		fmt.Fprintf(&sb, "  destroyed: %s\n", strings.Join(s.Destroyed, ", "))
	}
	if len(s.Demolished) > 0 {
		fmt.Fprintf(&sb, "  demolished: %s\n", strings.Join(s.Demolished, ", "))
	}
	return sb.String()
}

func formatCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}

func addCount(m map[Side]map[string]int, side Side, kind string) {
	if m[side] == nil {
		m[side] = map[string]int{}
	}
	m[side][kind]++
}
