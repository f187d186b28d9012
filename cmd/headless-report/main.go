package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/Garsondee/Battle-Sense/internal/archive"
	"github.com/Garsondee/Battle-Sense/internal/config"
	"github.com/Garsondee/Battle-Sense/internal/game"
	"github.com/Garsondee/Battle-Sense/internal/skirmish"
)

type runStats struct {
	runIndex int
	seed     int64

	concluded bool
	summary   game.Summary
	ticks     int

	firstFireTick  int
	firstHitTick   int
	firstKillTick  int
	firstGunLoss   int
	firstParalysis int

	shots          int
	rocketsLaunch  int
	rocketsLost    int
	hits           int
	minesLaid      int
	minesTriggered int
	paralyses      int
	yields         int
	unreachable    int
	stalePlans     int
	anomalies      int

	kills     map[string]int // units destroyed, by side
	buildings []string       // structures destroyed

	window *game.WindowReport // final sampling window
	grades []game.UnitGrade
}

// sampleEvery is the tick interval between reporter samples.
const sampleEvery = 10

var (
	showWindow bool
	showGrades bool
)

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var rulesPath string
	var archivePath string

	flag.IntVar(&runs, "runs", 5, "number of headless battles")
	flag.IntVar(&ticks, "ticks", 6000, "tick cap per battle")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "outpost", "skirmish name (outpost, duel)")
	flag.StringVar(&rulesPath, "ruleset", "", "ruleset YAML (default: embedded)")
	flag.StringVar(&archivePath, "archive", "", "SQLite file to record concluded battles in")
	flag.BoolVar(&showWindow, "window", false, "print the final sampling window of each run")
	flag.BoolVar(&showGrades, "grades", false, "print per-unit performance grades of each run")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if _, err := skirmish.Lookup(scenario, 0); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	rules := config.Default()
	if rulesPath != "" {
		var err error
		if rules, err = config.Load(rulesPath); err != nil {
			log.Fatal(err)
		}
	}

	var arc *archive.Archive
	if archivePath != "" {
		var err error
		if arc, err = archive.Open(archivePath); err != nil {
			log.Fatal(err)
		}
		defer arc.Close()
	}

	fmt.Printf("=== Headless Battle Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", scenario, runs, ticks, seedBase, seedStep)

	ctx := context.Background()
	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats, err := runBattle(rules, scenario, i+1, seed, ticks)
		if err != nil {
			log.Fatal(err)
		}
		all = append(all, stats)
		printRun(stats)
		if arc != nil && stats.concluded {
			if err := arc.Record(ctx, stats.summary); err != nil {
				log.Printf("archive run %d: %v", stats.runIndex, err)
			}
		}
	}

	printAggregate(all)

	if arc != nil {
		st, err := arc.Stats(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\n--- Archive (%s) ---\n", archivePath)
		fmt.Printf("battles=%d retreats=%d mean_ticks=%.1f wins=%s\n", st.Battles, st.Retreats, st.MeanTicks, formatCounts(st.Wins))
		fmt.Printf("casualties_by_kind: %s\n", formatCounts(st.Casualties))
	}
}

func runBattle(rules *config.Ruleset, scenario string, runIndex int, seed int64, maxTicks int) (runStats, error) {
	setup, err := skirmish.Lookup(scenario, seed)
	if err != nil {
		return runStats{}, err
	}
	b, _, _, err := skirmish.New(rules, setup, game.WithBattleLog(game.NewBattleLog(false)))
	if err != nil {
		return runStats{}, err
	}
	reporter := game.NewBattleReporter(0)
	reporter.Collect(b)
	perf := game.NewPerfBoard()
	for i := 0; i < maxTicks && b.Phase() == game.PhaseSimulating; i++ {
		b.Tick()
		perf.Update(b)
		if b.CurrentTick()%sampleEvery == 0 || b.Phase() != game.PhaseSimulating {
			reporter.Collect(b)
		}
	}
	sum, concluded := b.Summary()
	rs := collectStats(b.Log.Entries())
	rs.runIndex = runIndex
	rs.seed = seed
	rs.concluded = concluded
	rs.summary = sum
	rs.ticks = b.CurrentTick()
	rs.anomalies = b.IndexAnomalies()
	rs.window = reporter.WindowSummary()
	perf.Finalize(b.Log)
	rs.grades = perf.Grades()
	return rs, nil
}

// collectStats counts the events of one battle log.
func collectStats(entries []game.BattleLogEntry) runStats {
	rs := runStats{
		firstFireTick:  firstTick(entries, "combat", "fire", ""),
		firstHitTick:   firstTick(entries, "damage", "hit", ""),
		firstKillTick:  firstTick(entries, "damage", "destroyed", ""),
		firstGunLoss:   firstTick(entries, "damage", "guns_lost", ""),
		firstParalysis: firstTick(entries, "paralysis", "applied", ""),
		kills:          map[string]int{},
	}
	for _, e := range entries {
		switch e.Category {
		case "combat":
			switch e.Key {
			case "fire":
				rs.shots++
			case "launch":
				rs.rocketsLaunch++
			}
		case "rocket":
			if e.Key == "lost" {
				rs.rocketsLost++
			}
		case "damage":
			switch e.Key {
			case "hit":
				rs.hits++
			case "destroyed":
				if strings.Contains(e.Actor, "#") {
					rs.buildings = append(rs.buildings, e.Actor)
				} else {
					rs.kills[e.Side]++
				}
			}
		case "mine":
			switch e.Key {
			case "laid":
				rs.minesLaid++
			case "triggered":
				rs.minesTriggered++
			}
		case "paralysis":
			if e.Key == "applied" {
				rs.paralyses++
			}
		case "move":
			if e.Key == "yield" {
				rs.yields++
			}
		case "path":
			switch e.Key {
			case "unreachable":
				rs.unreachable++
			case "stale":
				rs.stalePlans++
			}
		}
	}
	return rs
}

func firstTick(entries []game.BattleLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	if rs.concluded {
		fmt.Printf("outcome: winner=%s ticks=%d retreat=%v\n", rs.summary.Winner, rs.ticks, rs.summary.Retreat)
	} else {
		fmt.Printf("outcome: undecided after %d ticks\n", rs.ticks)
	}
	fmt.Printf("phase_markers: first_fire=%d first_hit=%d first_kill=%d first_gun_loss=%d first_paralysis=%d\n",
		rs.firstFireTick, rs.firstHitTick, rs.firstKillTick, rs.firstGunLoss, rs.firstParalysis)
	fmt.Printf("fire: shots=%d rockets=%d rockets_lost=%d hits=%d\n", rs.shots, rs.rocketsLaunch, rs.rocketsLost, rs.hits)
	fmt.Printf("kills: attacker_units_lost=%d defender_units_lost=%d structures=%s\n",
		rs.kills["attacker"], rs.kills["defender"], joinList(rs.buildings))
	fmt.Printf("specials: mines_laid=%d mines_triggered=%d paralyses=%d\n", rs.minesLaid, rs.minesTriggered, rs.paralyses)
	fmt.Printf("movement: yields=%d unreachable=%d stale_plans=%d index_anomalies=%d\n", rs.yields, rs.unreachable, rs.stalePlans, rs.anomalies)
	if rs.concluded {
		fmt.Print(rs.summary.String())
	}
	if showWindow {
		fmt.Print(rs.window.Format())
	}
	if showGrades {
		fmt.Print(game.FormatGrades(rs.grades))
	}
	fmt.Print(game.FormatGradesSummary(rs.grades))
	fmt.Println()
}

// aggregate is the cross-run roll-up printed at the end.
type aggregate struct {
	runs       int
	concluded  int
	wins       map[string]int
	retreats   int
	ticks      []int
	shots      int
	hits       int
	kills      map[string]int
	structures int
	fireTicks  []int
	killTicks  []int
}

func aggregateRuns(all []runStats) aggregate {
	ag := aggregate{runs: len(all), wins: map[string]int{}, kills: map[string]int{}}
	for _, rs := range all {
		if rs.concluded {
			ag.concluded++
			ag.wins[rs.summary.Winner.String()]++
			ag.ticks = append(ag.ticks, rs.ticks)
			if rs.summary.Retreat {
				ag.retreats++
			}
		}
		ag.shots += rs.shots
		ag.hits += rs.hits
		ag.structures += len(rs.buildings)
		for side, n := range rs.kills {
			ag.kills[side] += n
		}
		if rs.firstFireTick >= 0 {
			ag.fireTicks = append(ag.fireTicks, rs.firstFireTick)
		}
		if rs.firstKillTick >= 0 {
			ag.killTicks = append(ag.killTicks, rs.firstKillTick)
		}
	}
	return ag
}

func printAggregate(all []runStats) {
	ag := aggregateRuns(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d concluded=%d undecided=%d retreats=%d\n", ag.runs, ag.concluded, ag.runs-ag.concluded, ag.retreats)
	fmt.Printf("wins: %s\n", formatCounts(ag.wins))
	fmt.Printf("avg_ticks_to_conclusion=%s avg_first_fire=%s avg_first_kill=%s\n",
		avgTickString(ag.ticks), avgTickString(ag.fireTicks), avgTickString(ag.killTicks))
	fmt.Printf("avg_shots=%.1f avg_hits=%.1f avg_structures_destroyed=%.1f\n",
		avg(ag.shots, ag.runs), avg(ag.hits, ag.runs), avg(ag.structures, ag.runs))
	fmt.Printf("avg_units_lost: attacker=%.1f defender=%.1f\n",
		avg(ag.kills["attacker"], ag.runs), avg(ag.kills["defender"], ag.runs))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
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

func joinList(s []string) string {
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, ",")
}
