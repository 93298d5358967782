package world

import (
	"fmt"
	"sort"

	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
)

// SaveVersion is bumped whenever SaveData changes shape.
const SaveVersion = 2

// SaveData is everything needed to resume the overworld exactly. Battles are
// not part of it.
type SaveData struct {
	Version   int               `msgpack:"version"`
	Seed      uint32            `msgpack:"seed"`
	RNGState  uint32            `msgpack:"rng_state"`
	Size      int               `msgpack:"size"`
	Heights   []float32         `msgpack:"heights"`
	Offsets   [2]float64        `msgpack:"offsets"`
	Entities  []Entity          `msgpack:"entities"`
	Influence []InfluenceCenter `msgpack:"influence"`
	Factions  []Faction         `msgpack:"factions"`
	Clock     Clock             `msgpack:"clock"`
	PlayerX   float64           `msgpack:"player_x"`
	PlayerZ   float64           `msgpack:"player_z"`
	HomeX     float64           `msgpack:"home_x"`
	HomeZ     float64           `msgpack:"home_z"`
	Heroes    []HeroSave        `msgpack:"heroes"`
	Pursuers  []PursuerSave     `msgpack:"pursuers"`
}

// Cell is a grid vertex on a saved route.
type Cell struct {
	X int `msgpack:"x"`
	Z int `msgpack:"z"`
}

// HeroSave is the mid-decision state of one AI hero, enough to carry on
// without re-rolling its jitter or timers.
type HeroSave struct {
	ID          int     `msgpack:"id"`
	HomeX       float64 `msgpack:"home_x"`
	HomeZ       float64 `msgpack:"home_z"`
	State       int     `msgpack:"state"`
	Reason      string  `msgpack:"reason"`
	Interval    float64 `msgpack:"interval"`
	Timer       float64 `msgpack:"timer"`
	Target      int     `msgpack:"target"`
	Goal        Cell    `msgpack:"goal"`
	Path        []Cell  `msgpack:"path"`
	PathIndex   int     `msgpack:"path_index"`
	Unreachable []int   `msgpack:"unreachable"`
	Cooldown    float64 `msgpack:"cooldown"`
	WanderX     float64 `msgpack:"wander_x"`
	WanderZ     float64 `msgpack:"wander_z"`
	Wandering   bool    `msgpack:"wandering"`
	FleeX       float64 `msgpack:"flee_x"`
	FleeZ       float64 `msgpack:"flee_z"`
	RestLeft    float64 `msgpack:"rest_left"`
	Harvests    int     `msgpack:"harvests"`
	Total       int     `msgpack:"total"`
}

// PursuerSave is one enemy group's chase phase and anchor.
type PursuerSave struct {
	ID      int     `msgpack:"id"`
	State   int     `msgpack:"state"`
	AnchorX float64 `msgpack:"anchor_x"`
	AnchorZ float64 `msgpack:"anchor_z"`
}

// SaveData snapshots the world. The snapshot shares nothing with w.
func (w *World) SaveData() *SaveData {
	s := &SaveData{
		Version:   SaveVersion,
		Seed:      w.rnd.SeedValue(),
		RNGState:  w.rnd.State(),
		Size:      w.Grid.Size,
		Heights:   append([]float32(nil), w.Grid.Heights...),
		Offsets:   w.Grid.Offsets,
		Entities:  make([]Entity, len(w.entities)),
		Influence: append([]InfluenceCenter(nil), w.Spawns.Centers...),
		Clock:     w.Clock.SaveData(),
		PlayerX:   w.PlayerX,
		PlayerZ:   w.PlayerZ,
		HomeX:     w.HomeX,
		HomeZ:     w.HomeZ,
	}
	for i, e := range w.entities {
		s.Entities[i] = *e
	}
	names := make([]string, 0, len(w.Factions))
	for name := range w.Factions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Factions = append(s.Factions, *w.Factions[name])
	}
	return s
}

// LoadSaveData replaces the world's state with s. Enemy templates and the
// default template are configuration and are kept.
func (w *World) LoadSaveData(s *SaveData) error {
	if s == nil {
		return fmt.Errorf("load world: nil snapshot")
	}
	if s.Version != SaveVersion {
		return fmt.Errorf("load world: save version %d, want %d", s.Version, SaveVersion)
	}
	if s.Size < 2 || len(s.Heights) != s.Size*s.Size {
		return fmt.Errorf("load world: %d heights for size %d", len(s.Heights), s.Size)
	}
	for i, e := range s.Entities {
		if e.ID != i {
			return fmt.Errorf("load world: entity %d has id %d", i, e.ID)
		}
	}

	grid := terrain.FromHeights(s.Size, s.Heights)
	grid.Offsets = s.Offsets
	w.Grid = grid
	w.rnd.Restore(s.Seed, s.RNGState)

	w.entities = make([]*Entity, len(s.Entities))
	for i := range s.Entities {
		e := s.Entities[i]
		w.entities[i] = &e
	}
	w.dirty = true

	w.Spawns.Centers = append([]InfluenceCenter(nil), s.Influence...)
	w.Factions = make(map[string]*Faction, len(s.Factions))
	for i := range s.Factions {
		f := s.Factions[i]
		w.Factions[f.Name] = &f
	}
	if _, ok := w.Factions[PlayerFaction]; !ok {
		w.Factions[PlayerFaction] = &Faction{Name: PlayerFaction, Kind: "player"}
	}
	w.Clock.LoadSaveData(s.Clock)
	w.PlayerX, w.PlayerZ = s.PlayerX, s.PlayerZ
	w.HomeX, w.HomeZ = s.HomeX, s.HomeZ
	w.log.Add(w.tick, "", "", "save", "loaded", fmt.Sprintf("entities=%d", len(s.Entities)), float64(w.Clock.Day))
	return nil
}
