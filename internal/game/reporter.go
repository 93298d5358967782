package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KesselZ/HeroHour-sub000/internal/ai"
	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

// reportWindowTicks is the default sliding window for recent-behaviour
// reports (one minute at 20 ticks/s).
const reportWindowTicks = 1200

// --- Snapshot types ---

// FactionReport captures one faction's holdings.
type FactionReport struct {
	Name      string
	Kind      string
	Gold      int
	Wood      int
	Buildings int
}

// SimReport is a snapshot of the overworld at one tick.
type SimReport struct {
	Tick     int
	Day      int
	InBattle bool

	// AI hero behaviour distribution (state name → count).
	HeroStates map[string]int
	Harvests   int

	// Enemy groups currently chasing or heading home.
	Chasing   int
	Returning int

	Groups  int
	Trees   int
	Pickups int

	Factions []FactionReport // sorted by name
}

// --- Reporter ---

// SimReporter collects periodic reports from the simulation and can produce
// summaries over sliding time windows.
type SimReporter struct {
	history     []SimReport
	windowTicks int
}

// NewSimReporter creates a reporter with the given window size.
func NewSimReporter(windowTicks int) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{windowTicks: windowTicks}
}

// Collect gathers a snapshot from the current simulation state.
func (r *SimReporter) Collect(s *Sim) {
	w := s.World
	report := SimReport{
		Tick:       s.Tick(),
		Day:        w.Clock.Day,
		InBattle:   s.Encounter() != nil,
		HeroStates: make(map[string]int),
		Groups:     w.Count(world.EntityEnemyGroup),
		Trees:      w.Count(world.EntityTree),
		Pickups:    w.Count(world.EntityPickup),
	}
	for _, h := range s.Heroes() {
		report.HeroStates[h.State().String()]++
		report.Harvests += h.Harvests()
	}
	for _, p := range s.Pursuers() {
		switch p.State() {
		case ai.PursuitChase:
			report.Chasing++
		case ai.PursuitReturn:
			report.Returning++
		}
	}

	owned := make(map[string]int)
	for _, e := range w.Visible() {
		if e.Type == world.EntityCapturedBuilding && e.Owner != "" {
			owned[e.Owner]++
		}
	}
	for name, f := range w.Factions {
		report.Factions = append(report.Factions, FactionReport{
			Name: name, Kind: f.Kind, Gold: f.Gold, Wood: f.Wood, Buildings: owned[name],
		})
	}
	sort.Slice(report.Factions, func(i, j int) bool { return report.Factions[i].Name < report.Factions[j].Name })
	r.history = append(r.history, report)
}

// Latest returns the most recent report, or nil.
func (r *SimReporter) Latest() *SimReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all collected reports.
func (r *SimReporter) History() []SimReport {
	return r.history
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	// Hero state distribution as percentages (0-100).
	HeroStatePct map[string]float64

	AvgChasing   float64
	AvgReturning float64
	AvgGroups    float64
	AvgTrees     float64
	BattlePct    float64 // share of samples taken mid-battle

	// Stockpile change between the first and last sample, by faction.
	GoldGained map[string]int
	WoodGained map[string]int
}

// WindowSummary returns an aggregated summary over the recent time window.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	latest := r.history[len(r.history)-1]
	cutoff := latest.Tick - r.windowTicks
	first := len(r.history) - 1
	for first > 0 && r.history[first-1].Tick >= cutoff {
		first--
	}
	window := r.history[first:]

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:     window[0].Tick,
		ToTick:       latest.Tick,
		SampleCount:  len(window),
		HeroStatePct: make(map[string]float64),
		GoldGained:   make(map[string]int),
		WoodGained:   make(map[string]int),
	}
	var heroTotal float64
	for _, rpt := range window {
		for st, c := range rpt.HeroStates {
			wr.HeroStatePct[st] += float64(c)
			heroTotal += float64(c)
		}
		wr.AvgChasing += float64(rpt.Chasing)
		wr.AvgReturning += float64(rpt.Returning)
		wr.AvgGroups += float64(rpt.Groups)
		wr.AvgTrees += float64(rpt.Trees)
		if rpt.InBattle {
			wr.BattlePct++
		}
	}
	if heroTotal > 0 {
		for st := range wr.HeroStatePct {
			wr.HeroStatePct[st] = wr.HeroStatePct[st] / heroTotal * 100
		}
	}
	wr.AvgChasing /= n
	wr.AvgReturning /= n
	wr.AvgGroups /= n
	wr.AvgTrees /= n
	wr.BattlePct = wr.BattlePct / n * 100

	start := make(map[string]FactionReport, len(window[0].Factions))
	for _, f := range window[0].Factions {
		start[f.Name] = f
	}
	for _, f := range latest.Factions {
		wr.GoldGained[f.Name] = f.Gold - start[f.Name].Gold
		wr.WoodGained[f.Name] = f.Wood - start[f.Name].Wood
	}
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Behaviour Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)

	sb.WriteString("--- Hero States ---\n")
	for _, st := range []ai.State{ai.StateWander, ai.StateSeek, ai.StateFlee, ai.StateIdle, ai.StateRest} {
		if pct := wr.HeroStatePct[st.String()]; pct > 0.5 {
			fmt.Fprintf(&sb, "  %-14s %5.1f%%\n", st, pct)
		}
	}
	fmt.Fprintf(&sb, "--- Enemies ---\n  groups=%.1f chasing=%.2f returning=%.2f in_battle=%.1f%%\n",
		wr.AvgGroups, wr.AvgChasing, wr.AvgReturning, wr.BattlePct)

	names := make([]string, 0, len(wr.GoldGained))
	for name := range wr.GoldGained {
		names = append(names, name)
	}
	sort.Strings(names)
	sb.WriteString("--- Stockpile Change ---\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "  %-10s gold %+5d  wood %+5d\n", name, wr.GoldGained[name], wr.WoodGained[name])
	}
	return sb.String()
}

// FormatLatest returns a compact one-line summary of the most recent report.
func (r *SimReporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "no reports"
	}
	states := make([]string, 0, len(rpt.HeroStates))
	for st, c := range rpt.HeroStates {
		states = append(states, fmt.Sprintf("%s=%d", st, c))
	}
	sort.Strings(states)
	return fmt.Sprintf("T=%d day=%d groups=%d trees=%d harvests=%d heroes[%s]",
		rpt.Tick, rpt.Day, rpt.Groups, rpt.Trees, rpt.Harvests, strings.Join(states, " "))
}
