package game

import (
	"fmt"
	"math"
	"strings"
)

// DebugReport renders the last lastTicks ticks of the simulation as plain
// text: player and encounter state, every AI hero and pursuer, then the log
// entries in range grouped by actor.
func (s *Sim) DebugReport(lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 120
	}
	toTick := s.tick
	fromTick := toTick - lastTicks + 1
	if fromTick < 0 {
		fromTick = 0
	}
	w := s.World

	var b strings.Builder
	fmt.Fprintf(&b, "--- HeroHour debug report ---\n")
	fmt.Fprintf(&b, "seed=%d tick_range=[%d..%d] ticks=%d day=%d season=%s\n",
		s.cfg.Seed, fromTick, toTick, toTick-fromTick+1, w.Clock.Day, w.Clock.Season())
	fmt.Fprintf(&b, "player=(%.1f,%.1f) home=(%.1f,%.1f)", w.PlayerX, w.PlayerZ, w.HomeX, w.HomeZ)
	if f := w.Factions["player"]; f != nil {
		fmt.Fprintf(&b, " gold=%d wood=%d", f.Gold, f.Wood)
	}
	b.WriteByte('\n')
	if enc := s.encounter; enc != nil {
		o := enc.Battle.Outcome()
		fmt.Fprintf(&b, "battle vs %s#%d since T=%d: tick=%d player=%d/%d enemy=%d/%d\n",
			enc.Kind, enc.GroupID, enc.StartTick, enc.Battle.Tick(),
			o.PlayerSurvivors, o.PlayerTotal, o.EnemySurvivors, o.EnemyTotal)
	}

	b.WriteString("\n== heroes ==\n")
	for _, h := range s.heroes {
		e := w.Entity(h.ID)
		if e == nil {
			continue
		}
		target := "none"
		if t := w.Entity(h.Target()); t != nil {
			target = fmt.Sprintf("%s d=%.1f", t.Label(), math.Hypot(t.X-e.X, t.Z-e.Z))
		}
		fmt.Fprintf(&b, "  %-14s %-10s state=%-13s pos=(%.1f,%.1f) target=%s harvests=%d\n",
			e.Label(), h.Faction, h.State(), e.X, e.Z, target, h.Harvests())
	}

	b.WriteString("\n== pursuers ==\n")
	for _, p := range s.pursuers {
		e := w.Entity(p.ID)
		if e == nil || e.Removed {
			continue
		}
		fmt.Fprintf(&b, "  %-14s state=%-6s pos=(%.1f,%.1f) anchor=(%.1f,%.1f) d_player=%.1f\n",
			e.Label(), p.State(), e.X, e.Z, p.AnchorX, p.AnchorZ, math.Hypot(w.PlayerX-e.X, w.PlayerZ-e.Z))
	}

	byActor := make(map[string][]string)
	var actors []string
	for _, e := range s.Log.Entries() {
		if e.Tick < fromTick || e.Tick > toTick {
			continue
		}
		actor := e.Actor
		if actor == "" {
			actor = "--"
		}
		if _, seen := byActor[actor]; !seen {
			actors = append(actors, actor)
		}
		byActor[actor] = append(byActor[actor], e.String())
	}
	b.WriteString("\n== events ==\n")
	if len(actors) == 0 {
		b.WriteString("(no events in range)\n")
	}
	for _, a := range actors {
		fmt.Fprintf(&b, "%s:\n", a)
		for _, line := range byActor[a] {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
