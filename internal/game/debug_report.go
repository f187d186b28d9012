package game

import (
	"fmt"
	"strings"
)

// UnitReport describes one unit and its recent events. Used by the viewer's
// copy-to-clipboard and the headless report tool.
func (b *Battle) UnitReport(selected *Unit, lastTicks int) string {
	if selected == nil {
		return ""
	}
	if lastTicks <= 0 {
		lastTicks = 120
	}
	toTick := b.tick
	fromTick := max(toTick-lastTicks+1, 0)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Battle-Sense unit report ---\n")
	fmt.Fprintf(&sb, "battle=%s tick_range=[%d..%d] phase=%s\n", b.ID, fromTick, toTick, b.phase)
	fmt.Fprintf(&sb, "unit=%s kind=%s side=%s hp=%.1f/%.1f state=%s\n",
		selected.label, selected.kind.Name, selected.owner.Side, selected.hp, selected.kind.MaxHP, selected.state)
	fmt.Fprintf(&sb, "pos=(%.2f,%.2f) cell=%s heading=%.2f guard=%v\n",
		selected.x, selected.y, fmtCell(selected.cell), selected.heading, selected.guard)
	if !selected.target.IsZero() {
		fmt.Fprintf(&sb, "target=%s explicit=%v phase=%d cooldown=%d\n",
			targetLabel(selected.target), selected.explicit, selected.phase, selected.cooldown)
	}
	if len(selected.path) > 0 {
		fmt.Fprintf(&sb, "path=%d steps → %s\n", len(selected.path), fmtCell(selected.path[len(selected.path)-1]))
	}
	switch {
	case selected.stuck:
		sb.WriteString("navigation: stuck (no route to last goal)\n")
	case selected.yield > 0:
		fmt.Fprintf(&sb, "navigation: yielding %d more ticks\n", selected.yield)
	case selected.planning || selected.wantPlan:
		sb.WriteString("navigation: waiting for path\n")
	}
	if selected.paralyzedBy != nil {
		fmt.Fprintf(&sb, "paralyzed by %s for %d ticks\n", selected.paralyzedBy.label, selected.paralysis)
	}

	sb.WriteString("\nevents:\n")
	n := 0
	for _, e := range b.Log.FilterActor(selected.label) {
		if e.Tick < fromTick || e.Tick > toTick {
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(e.String())
		sb.WriteByte('\n')
		n++
	}
	if n == 0 {
		sb.WriteString("  (none in range)\n")
	}
	return sb.String()
}

// BattleReport is a full text dump: summary counts, every unit and the
// recent battle-wide events.
func (b *Battle) BattleReport(lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 120
	}
	var sb strings.Builder
	sb.WriteString(b.Log.Summary(b))
	if s, ok := b.Summary(); ok {
		sb.WriteString(s.String())
	}
	sb.WriteString("\nunits:\n")
	for _, u := range b.units {
		if u.removed {
			continue
		}
		fmt.Fprintf(&sb, "  %-4s %-15s %-8s hp=%5.1f %-11s %s\n",
			u.label, u.kind.Name, u.owner.Side, u.hp, u.state, fmtCell(u.cell))
	}
	sb.WriteString("\nbuildings:\n")
	for _, bd := range b.buildings {
		status := "standing"
		switch {
		case bd.demolished:
			status = "demolished"
		case bd.destroyed:
			status = "destroyed"
		case bd.unfinished:
			status = "unfinished"
		}
		fmt.Fprintf(&sb, "  %-18s hp=%6.1f guns=%d %s\n", buildingLabel(bd), bd.hp, len(bd.guns), status)
	}
	fmt.Fprintf(&sb, "\nrecent events (last %d ticks):\n", lastTicks)
	sb.WriteString(b.Log.FormatRange(max(b.tick-lastTicks+1, 0), b.tick))
	return sb.String()
}
