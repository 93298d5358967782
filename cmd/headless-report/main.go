package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/KesselZ/HeroHour-sub000/internal/combat"
	"github.com/KesselZ/HeroHour-sub000/internal/config"
	"github.com/KesselZ/HeroHour-sub000/internal/game"
	"github.com/KesselZ/HeroHour-sub000/internal/nav"
	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

const sampleEvery = 60

var scenarios = map[string]func(*game.Sim){
	"idle": func(*game.Sim) {},
	"hunt": hunt,
}

type runStats struct {
	runIndex int
	seed     uint32

	grass, water, mountain int
	entities               map[string]int

	firstBattleTick int
	firstHarvest    int
	firstCapture    int
	days            int

	battles     int
	victories   int
	enemyKilled int
	harvests    int
	captures    int
	pickups     int

	paths         nav.Stats
	factions      []game.FactionReport
	windowSummary *game.WindowReport
}

func main() {
	var runs int
	var ticks int
	var seedBase uint
	var seedStep uint
	var scenario string
	var cfgPath string
	var copyOut bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.UintVar(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.UintVar(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "hunt", "scenario name (idle, hunt)")
	flag.StringVar(&cfgPath, "config", "", "YAML config overlay")
	flag.BoolVar(&copyOut, "copy", false, "copy the report to the clipboard")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		os.Exit(2)
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		os.Exit(2)
	}
	drive, ok := scenarios[scenario]
	if !ok {
		fmt.Printf("error: unsupported scenario %q (supported: idle, hunt)\n", scenario)
		os.Exit(2)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Headless World Report ===\n")
	fmt.Fprintf(&sb, "scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", scenario, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := uint32(seedBase + uint(i)*seedStep)
		stats, err := runScenario(cfg, i+1, seed, ticks, drive)
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			os.Exit(1)
		}
		all = append(all, stats)
		printRun(&sb, stats)
	}
	printAggregate(&sb, all)

	fmt.Print(sb.String())
	if copyOut {
		if err := clipboard.WriteAll(sb.String()); err != nil {
			fmt.Printf("clipboard: %v\n", err)
		}
	}
}

func runScenario(base *config.Config, runIndex int, seed uint32, ticks int, drive func(*game.Sim)) (runStats, error) {
	cfg := *base
	cfg.Seed = seed
	s, err := game.NewSim(&cfg)
	if err != nil {
		return runStats{}, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	rs := runStats{runIndex: runIndex, seed: seed, entities: map[string]int{}}
	rs.grass, rs.water, rs.mountain = s.World.Grid.Composition()
	for _, e := range s.World.Visible() {
		rs.entities[e.Type.String()]++
	}

	reporter := game.NewSimReporter(0)
	for t := 0; t < ticks; t++ {
		drive(s)
		s.Step()
		if t%sampleEvery == 0 {
			reporter.Collect(s)
		}
	}
	reporter.Collect(s)

	l := s.Log
	rs.firstBattleTick = l.FirstTick("battle", "start", "")
	rs.firstHarvest = l.FirstTick("world", "harvest", "")
	rs.firstCapture = l.FirstTick("world", "capture", "")
	rs.days = s.World.Clock.Day
	rs.harvests = l.Count("world", "harvest")
	rs.captures = l.Count("world", "capture")
	rs.pickups = l.Count("world", "pickup")
	for _, b := range s.History() {
		rs.battles++
		if b.Result.Outcome == combat.OutcomePlayerVictory {
			rs.victories++
			rs.enemyKilled += b.Result.EnemyTotal - b.Result.EnemySurvivors
		}
	}
	rs.paths = s.Paths().Stats()
	if latest := reporter.Latest(); latest != nil {
		rs.factions = latest.Factions
	}
	rs.windowSummary = reporter.WindowSummary()
	return rs, nil
}

// hunt walks the player at the nearest enemy group.
func hunt(s *game.Sim) {
	if s.Encounter() != nil {
		return
	}
	w := s.World
	size := float64(w.Grid.Size)
	target := w.Nearest(w.PlayerX, w.PlayerZ, size, func(e *world.Entity) bool {
		return e.Type == world.EntityEnemyGroup
	})
	if target == nil {
		return
	}
	dx, dz := target.X-w.PlayerX, target.Z-w.PlayerZ
	if s.MovePlayer(dx, dz, s.Config().Combat.Dt) {
		return
	}
	// Blocked head-on: try sliding along one axis.
	if math.Abs(dx) > math.Abs(dz) {
		s.MovePlayer(0, dz, s.Config().Combat.Dt)
	} else {
		s.MovePlayer(dx, 0, s.Config().Combat.Dt)
	}
}

func printRun(sb *strings.Builder, rs runStats) {
	fmt.Fprintf(sb, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	total := rs.grass + rs.water + rs.mountain
	fmt.Fprintf(sb, "terrain: grass=%.1f%% water=%.1f%% mountain=%.1f%%\n",
		pct(rs.grass, total), pct(rs.water, total), pct(rs.mountain, total))
	fmt.Fprintf(sb, "entities: %s\n", joinCounts(rs.entities))
	fmt.Fprintf(sb, "phase_markers: first_battle=%d first_harvest=%d first_capture=%d days=%d\n",
		rs.firstBattleTick, rs.firstHarvest, rs.firstCapture, rs.days)
	fmt.Fprintf(sb, "event_totals: battles=%d victories=%d enemies_killed=%d harvests=%d captures=%d pickups=%d\n",
		rs.battles, rs.victories, rs.enemyKilled, rs.harvests, rs.captures, rs.pickups)
	fmt.Fprintf(sb, "paths: calls=%d direct=%d partial=%d failed=%d\n",
		rs.paths.Calls, rs.paths.Direct, rs.paths.Partial, rs.paths.Failed)
	for _, f := range rs.factions {
		fmt.Fprintf(sb, "faction %-10s kind=%-6s gold=%d wood=%d buildings=%d\n", f.Name, f.Kind, f.Gold, f.Wood, f.Buildings)
	}
	if rs.windowSummary != nil {
		sb.WriteString(rs.windowSummary.Format())
	}
	sb.WriteString("\n")
}

func printAggregate(sb *strings.Builder, all []runStats) {
	var battles, victories, killed, harvests, captures, pathCalls, pathFailed int
	battleTicks := make([]int, 0, len(all))
	harvestTicks := make([]int, 0, len(all))
	gold := map[string]int{}
	wood := map[string]int{}

	for _, rs := range all {
		battles += rs.battles
		victories += rs.victories
		killed += rs.enemyKilled
		harvests += rs.harvests
		captures += rs.captures
		pathCalls += rs.paths.Calls
		pathFailed += rs.paths.Failed
		if rs.firstBattleTick >= 0 {
			battleTicks = append(battleTicks, rs.firstBattleTick)
		}
		if rs.firstHarvest >= 0 {
			harvestTicks = append(harvestTicks, rs.firstHarvest)
		}
		for _, f := range rs.factions {
			gold[f.Name] += f.Gold
			wood[f.Name] += f.Wood
		}
	}

	n := len(all)
	fmt.Fprintln(sb, "=== Aggregate ===")
	fmt.Fprintf(sb, "runs=%d\n", n)
	fmt.Fprintf(sb, "avg_events_per_run: battles=%.1f victories=%.1f enemies_killed=%.1f harvests=%.1f captures=%.1f\n",
		avg(battles, n), avg(victories, n), avg(killed, n), avg(harvests, n), avg(captures, n))
	fmt.Fprintf(sb, "win_rate=%s path_failure_rate=%s\n", ratio(victories, battles), ratio(pathFailed, pathCalls))
	fmt.Fprintf(sb, "phase_marker_avg_ticks: first_battle=%s first_harvest=%s\n",
		avgTickString(battleTicks), avgTickString(harvestTicks))

	names := make([]string, 0, len(gold))
	for name := range gold {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(sb, "avg_stockpile %-10s gold=%.1f wood=%.1f\n", name, avg(gold[name], n), avg(wood[name], n))
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func pct(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func ratio(part, total int) string {
	if total <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", pct(part, total))
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

func joinCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}
