package game

import (
	"github.com/KesselZ/HeroHour-sub000/internal/config"
	"github.com/KesselZ/HeroHour-sub000/internal/rng"
	"github.com/KesselZ/HeroHour-sub000/internal/simlog"
	"github.com/KesselZ/HeroHour-sub000/internal/sink"
	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

// TestSim is a headless simulation harness used by tests and the headless
// report. It records every sound and draw call instead of playing them.
type TestSim struct {
	*Sim
	Sinks *sink.Recorder

	cfg     *config.Config
	flat    int // >0 builds an all-grass world of this size instead of generating one
	verbose bool
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // config, seed, map, verbose: applied before the world exists
	simOptEntity                      // entities and positions: applied after the sim is built
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the world seed.
func WithSeed(seed uint32) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cfg.Seed = seed }}
}

// WithMapSize generates terrain of the given size with a proportional border.
func WithMapSize(size int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cfg.Terrain.Size = size
		ts.cfg.Terrain.Border = float64(size) / 8
	}}
}

// WithFlatWorld skips generation: the world is size x size of open grass with
// nothing on it but the player's home at the origin.
func WithFlatWorld(size int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.flat = size }}
}

// WithConfig edits the configuration before the sim is built.
func WithConfig(edit func(*config.Config)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { edit(ts.cfg) }}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.verbose = v }}
}

// WithPlayerAt moves the player.
func WithPlayerAt(x, z float64) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.World.PlayerX, ts.World.PlayerZ = x, z
	}}
}

// WithEnemyGroup places an enemy group of template kind.
func WithEnemyGroup(kind string, x, z float64) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.AddEntity(world.Entity{Type: world.EntityEnemyGroup, Kind: kind, X: x, Z: z})
	}}
}

// WithHero places an AI hero of faction.
func WithHero(faction string, x, z float64) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.World.Faction(faction).Kind = "sect"
		ts.AddEntity(world.Entity{Type: world.EntityAIHero, Kind: faction, Name: faction, X: x, Z: z, Owner: faction})
	}}
}

// WithTree places a tree that falls after hits interactions.
func WithTree(x, z float64, hits, wood int) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.AddEntity(world.Entity{Type: world.EntityTree, Kind: "tree", X: x, Z: z, Hits: hits, Value: wood})
	}}
}

// WithEntity places an arbitrary entity.
func WithEntity(e world.Entity) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) { ts.AddEntity(e) }}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (config, seed, map, verbose)
//  2. World generation (or a flat world) and AI attachment
//  3. Entities
//
// It panics on an invalid configuration.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{cfg: config.Default(), Sinks: &sink.Recorder{}}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	if err := ts.cfg.Validate(); err != nil {
		panic(err)
	}

	log := simlog.New(ts.verbose)
	simOpts := []Option{WithLog(log), WithRenderer(ts.Sinks), WithAudio(ts.Sinks)}
	var err error
	if ts.flat > 0 {
		w := world.New(rng.New(ts.cfg.Seed), terrain.NewGrid(ts.flat), ts.cfg.SpawnModel(), ts.cfg.NewClock(), log)
		w.Add(world.Entity{Type: world.EntityCity, Kind: "home", Name: "Home", Owner: world.PlayerFaction})
		ts.Sim, err = NewSimWithWorld(ts.cfg, w, simOpts...)
	} else {
		ts.Sim, err = NewSim(ts.cfg, simOpts...)
	}
	if err != nil {
		panic(err)
	}

	for _, o := range opts {
		if o.kind == simOptEntity {
			o.fn(ts)
		}
	}
	return ts
}

// RunTicks advances the simulation n fixed steps.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.Step()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.Step()
		if predicate(ts) {
			return ts.Tick()
		}
	}
	return -1
}

// SimSnapshot is a lightweight state summary.
type SimSnapshot struct {
	Tick     int
	Day      int
	Visible  int
	Groups   int
	Heroes   []HeroSnapshot
	Factions map[string][2]int // gold, wood
	Battles  int
}

// HeroSnapshot is a copy of one AI hero's state at a tick.
type HeroSnapshot struct {
	ID       int
	Faction  string
	X, Z     float64
	State    string
	Harvests int
}

// Snapshot returns the current state of the overworld.
func (ts *TestSim) Snapshot() SimSnapshot {
	w := ts.World
	snap := SimSnapshot{
		Tick:     ts.Tick(),
		Day:      w.Clock.Day,
		Visible:  len(w.Visible()),
		Groups:   w.Count(world.EntityEnemyGroup),
		Factions: make(map[string][2]int, len(w.Factions)),
		Battles:  len(ts.History()),
	}
	for _, h := range ts.Heroes() {
		hs := HeroSnapshot{ID: h.ID, Faction: h.Faction, State: h.State().String(), Harvests: h.Harvests()}
		if e := w.Entity(h.ID); e != nil {
			hs.X, hs.Z = e.X, e.Z
		}
		snap.Heroes = append(snap.Heroes, hs)
	}
	for name, f := range w.Factions {
		snap.Factions[name] = [2]int{f.Gold, f.Wood}
	}
	return snap
}
