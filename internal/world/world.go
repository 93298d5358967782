// Package world holds overworld state: the terrain, every entity ever placed,
// factions and their stockpiles, influence centres that bias enemy spawns,
// and the calendar.
package world

import (
	"fmt"
	"math"
	"sort"

	"github.com/KesselZ/HeroHour-sub000/internal/nav"
	"github.com/KesselZ/HeroHour-sub000/internal/rng"
	"github.com/KesselZ/HeroHour-sub000/internal/simlog"
	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
)

// PlayerFaction is the faction name of the human player.
const PlayerFaction = "player"

const queryCellSize = 16.0

// World is the overworld. Entities live in an append-only arena indexed by id.
type World struct {
	Grid     *terrain.Grid
	Spawns   SpawnModel
	Clock    *Clock
	Factions map[string]*Faction

	PlayerX, PlayerZ float64
	HomeX, HomeZ     float64

	rnd      *rng.RNG
	entities []*Entity
	hash     *nav.Hash[*Entity]
	dirty    bool
	log      *simlog.Log
	tick     int
}

// New creates an empty world over grid.
func New(r *rng.RNG, grid *terrain.Grid, spawns SpawnModel, clock *Clock, log *simlog.Log) *World {
	if clock == nil {
		clock = NewClock(0, 0)
	}
	return &World{
		Grid:     grid,
		Spawns:   spawns,
		Clock:    clock,
		Factions: map[string]*Faction{PlayerFaction: {Name: PlayerFaction, Kind: "player"}},
		rnd:      r,
		hash:     nav.NewHash[*Entity](queryCellSize),
		log:      log,
	}
}

// RNG returns the world's random source.
func (w *World) RNG() *rng.RNG { return w.rnd }

// SetTick stamps subsequent log entries.
func (w *World) SetTick(tick int) { w.tick = tick }

// Add registers e and returns its id.
func (w *World) Add(e Entity) *Entity {
	e.ID = len(w.entities)
	p := &e
	w.entities = append(w.entities, p)
	w.dirty = true
	return p
}

// Entity returns the entity with id, or nil. Removed entities are returned.
func (w *World) Entity(id int) *Entity {
	if id < 0 || id >= len(w.entities) {
		return nil
	}
	return w.entities[id]
}

// Entities returns the whole arena, removed entries included.
func (w *World) Entities() []*Entity { return w.entities }

// Visible returns entities that are not removed.
func (w *World) Visible() []*Entity {
	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		if !e.Removed {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of visible entities of type t.
func (w *World) Count(t EntityType) int {
	n := 0
	for _, e := range w.entities {
		if e.Type == t && !e.Removed {
			n++
		}
	}
	return n
}

// Faction returns the named faction, creating it on first use.
func (w *World) Faction(name string) *Faction {
	f, ok := w.Factions[name]
	if !ok {
		f = &Faction{Name: name}
		w.Factions[name] = f
	}
	return f
}

// Moved must be called after changing an entity's position outside the
// world, so spatial queries see it.
func (w *World) Moved() { w.dirty = true }

func (w *World) reindex() {
	if !w.dirty {
		return
	}
	w.hash.Clear()
	for _, e := range w.entities {
		w.hash.Insert(e)
	}
	w.dirty = false
}

// Near returns visible entities within r of (x,z) accepted by keep, nearest
// first. keep may be nil.
func (w *World) Near(x, z, r float64, keep func(*Entity) bool) []*Entity {
	w.reindex()
	cands := w.hash.Query(x, z, r)
	out := cands[:0]
	for _, e := range cands {
		if e.Removed || math.Hypot(e.X-x, e.Z-z) > r {
			continue
		}
		if keep != nil && !keep(e) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		di := math.Hypot(out[i].X-x, out[i].Z-z)
		dj := math.Hypot(out[j].X-x, out[j].Z-z)
		if di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Nearest returns the closest match within r, or nil.
func (w *World) Nearest(x, z, r float64, keep func(*Entity) bool) *Entity {
	if near := w.Near(x, z, r, keep); len(near) > 0 {
		return near[0]
	}
	return nil
}

// Remove hides an entity. Its id stays valid.
func (w *World) Remove(id int) {
	if e := w.Entity(id); e != nil && !e.Removed {
		e.Removed = true
		w.dirty = true
		w.log.Add(w.tick, e.Label(), "", "world", "removed", "", 0)
	}
}

// Interact resolves actor faction acting on entity id. It returns true when
// the interaction is finished and the actor should move on, false when it
// must stay and interact again (a tree still standing). Acting on something
// the faction already owns changes nothing.
func (w *World) Interact(id int, faction string) bool {
	e := w.Entity(id)
	if e == nil || e.Removed {
		return true
	}
	switch e.Type {
	case EntityTree:
		if e.Hits > 1 {
			e.Hits--
			w.log.AddVerbose(w.tick, e.Label(), faction, "world", "chop", "", float64(e.Hits))
			return false
		}
		e.Hits = 0
		w.Faction(faction).Credit("wood", e.Value)
		w.Remove(id)
		w.log.Add(w.tick, e.Label(), faction, "world", "harvest", "wood", float64(e.Value))
		return true

	case EntityPickup:
		w.Faction(faction).Credit(e.Resource(), e.Value)
		w.Remove(id)
		w.log.Add(w.tick, e.Label(), faction, "world", "pickup", e.Resource(), float64(e.Value))
		return true

	case EntityCapturedBuilding:
		if e.Owner == faction {
			return true
		}
		prev := e.Owner
		e.Owner = faction
		w.log.Add(w.tick, e.Label(), faction, "world", "capture", fmt.Sprintf("from=%q", prev), 0)
		return true
	}
	return true
}

// CollectIncome credits each owned building's daily yield to its owner, once
// per elapsed day.
func (w *World) CollectIncome(days int) {
	if days <= 0 {
		return
	}
	for _, e := range w.entities {
		if e.Removed || e.Type != EntityCapturedBuilding || e.Owner == "" {
			continue
		}
		w.Faction(e.Owner).Credit(e.Resource(), e.Value*days)
	}
	w.log.AddVerbose(w.tick, "", "", "world", "income", fmt.Sprintf("day=%d", w.Clock.Day), float64(days))
}

// Advance moves the clock and pays income for completed days.
func (w *World) Advance(dt float64) int {
	days := w.Clock.Advance(dt)
	w.CollectIncome(days)
	return days
}

// EnemyTypeAt picks the enemy template for a spawn at (x,z).
func (w *World) EnemyTypeAt(x, z float64) string {
	return w.Spawns.EnemyTypeAt(w.rnd, x, z)
}
