package world

import (
	"math"

	"github.com/KesselZ/HeroHour-sub000/internal/rng"
	"github.com/KesselZ/HeroHour-sub000/internal/simlog"
	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
)

// SectConfig describes an AI sect: its faction, hero and home city.
type SectConfig struct {
	Name string `yaml:"name"`
	Hero string `yaml:"hero"`
	City string `yaml:"city"`
}

// GenConfig controls overworld population.
type GenConfig struct {
	HomeRadius       float64      `yaml:"home_radius"`
	HomeStrength     float64      `yaml:"home_strength"`
	SafeRadius       float64      `yaml:"safe_radius"` // forced grass around the player's home
	SectRadius       float64      `yaml:"sect_radius"`
	SectStrength     float64      `yaml:"sect_strength"`
	EvilRadius       float64      `yaml:"evil_radius"`
	EvilStrength     float64      `yaml:"evil_strength"`
	Sects            []SectConfig `yaml:"sects"`
	EvilFactions     []string     `yaml:"evil_factions"`
	Trees            int          `yaml:"trees"`
	TreeHits         int          `yaml:"tree_hits"`
	TreeWood         int          `yaml:"tree_wood"`
	Pickups          int          `yaml:"pickups"`
	PickupValue      int          `yaml:"pickup_value"`
	Mines            int          `yaml:"mines"`
	MineYield        int          `yaml:"mine_yield"`
	EnemyGroups      int          `yaml:"enemy_groups"`
	EnemyMinDistance float64      `yaml:"enemy_min_distance"` // from the player's home
	StartGold        int          `yaml:"start_gold"`
	StartWood        int          `yaml:"start_wood"`
}

// DefaultGenConfig matches the shipped configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		HomeRadius:       50,
		HomeStrength:     1500,
		SafeRadius:       6,
		SectRadius:       40,
		SectStrength:     600,
		EvilRadius:       60,
		EvilStrength:     800,
		Trees:            120,
		TreeHits:         3,
		TreeWood:         5,
		Pickups:          40,
		PickupValue:      50,
		Mines:            12,
		MineYield:        20,
		EnemyGroups:      60,
		EnemyMinDistance: 15,
		StartGold:        500,
		StartWood:        50,
	}
}

const placementAttempts = 40

// Populate places the player's home, sect cities with their heroes, evil
// bases and scattered resources and enemies, deriving influence centres from
// the placements. Sites come from the terrain's open areas, largest first.
func (w *World) Populate(cfg GenConfig) {
	g := w.Grid
	pois := g.FindPOICandidates(1 + len(cfg.Sects) + len(cfg.EvilFactions))
	next := 0
	site := func() (float64, float64, bool) {
		if next >= len(pois) {
			return 0, 0, false
		}
		p := pois[next]
		next++
		return p.X, p.Z, true
	}

	hx, hz, ok := site()
	if !ok {
		hx, hz = 0, 0
	}
	g.EnsureStartingArea(hx, hz, cfg.SafeRadius)
	w.HomeX, w.HomeZ = hx, hz
	w.PlayerX, w.PlayerZ = hx, hz
	player := w.Faction(PlayerFaction)
	player.Kind = "player"
	player.Gold, player.Wood = cfg.StartGold, cfg.StartWood
	w.Add(Entity{Type: EntityCity, Kind: "home", Name: "Home", X: hx, Z: hz, Owner: PlayerFaction})
	w.Spawns.Centers = append(w.Spawns.Centers, InfluenceCenter{
		Type: InfluencePlayerHome, X: hx, Z: hz, Radius: cfg.HomeRadius, Strength: cfg.HomeStrength,
	})
	w.log.Add(w.tick, "", PlayerFaction, "world", "home", "", 0)

	for _, s := range cfg.Sects {
		x, z, ok := site()
		if !ok {
			w.log.Add(w.tick, "", s.Name, "world", "no_site", "sect", 0)
			continue
		}
		f := w.Faction(s.Name)
		f.Kind, f.Hero = "sect", s.Hero
		w.Add(Entity{Type: EntityCity, Kind: "sect", Name: s.City, X: x, Z: z, Owner: s.Name})
		w.Add(Entity{Type: EntityAIHero, Kind: s.Hero, Name: s.Hero, X: x, Z: z, Owner: s.Name})
		w.Spawns.Centers = append(w.Spawns.Centers, InfluenceCenter{
			Type: InfluenceSect, X: x, Z: z, Radius: cfg.SectRadius, Strength: cfg.SectStrength, Hero: s.Hero,
		})
	}

	for _, name := range cfg.EvilFactions {
		x, z, ok := site()
		if !ok {
			w.log.Add(w.tick, "", name, "world", "no_site", "evil", 0)
			continue
		}
		w.Faction(name).Kind = "evil"
		w.Add(Entity{Type: EntityCity, Kind: "evil_base", Name: name, X: x, Z: z, Owner: name})
		w.Spawns.Centers = append(w.Spawns.Centers, InfluenceCenter{
			Type: InfluenceEvil, X: x, Z: z, Radius: cfg.EvilRadius, Strength: cfg.EvilStrength, Faction: name,
		})
	}

	w.scatter(cfg.Trees, 0, func(x, z float64) Entity {
		return Entity{Type: EntityTree, Kind: "tree", X: x, Z: z, Hits: max(1, cfg.TreeHits), Value: cfg.TreeWood}
	})
	w.scatter(cfg.Pickups, 0, func(x, z float64) Entity {
		kind := "gold"
		if w.rnd.Chance(0.3) {
			kind = "wood"
		}
		return Entity{Type: EntityPickup, Kind: kind, X: x, Z: z, Value: cfg.PickupValue}
	})
	w.scatter(cfg.Mines, 0, func(x, z float64) Entity {
		kind := "gold_mine"
		if w.rnd.Chance(0.5) {
			kind = "sawmill"
		}
		return Entity{Type: EntityCapturedBuilding, Kind: kind, X: x, Z: z, Value: cfg.MineYield}
	})
	w.scatter(cfg.EnemyGroups, cfg.EnemyMinDistance, func(x, z float64) Entity {
		return Entity{Type: EntityEnemyGroup, Kind: w.EnemyTypeAt(x, z), X: x, Z: z}
	})
	w.log.Add(w.tick, "", "", "world", "populated", "", float64(len(w.entities)))
}

// scatter places up to n entities on safe grass, at least minHome from the
// player's home and off occupied cells.
func (w *World) scatter(n int, minHome float64, mk func(x, z float64) Entity) {
	g := w.Grid
	lo, hi := 1, g.Size-2
	if hi <= lo {
		return
	}
	taken := make(map[[2]int]bool, len(w.entities))
	for _, e := range w.entities {
		gx, gz := g.CellOf(e.X, e.Z)
		taken[[2]int{gx, gz}] = true
	}

	for placed := 0; placed < n; placed++ {
		for attempt := 0; attempt < placementAttempts; attempt++ {
			gx, gz := w.rnd.Int(lo, hi), w.rnd.Int(lo, hi)
			if taken[[2]int{gx, gz}] || !g.IsSafeGrass(gx, gz) {
				continue
			}
			x, z := g.GridToWorld(gx, gz)
			if minHome > 0 && math.Hypot(x-w.HomeX, z-w.HomeZ) < minHome {
				continue
			}
			taken[[2]int{gx, gz}] = true
			w.Add(mk(x, z))
			break
		}
	}
}

// Generate builds a terrain grid and a populated world from r. The same seed
// and configuration always produce the same world.
func Generate(r *rng.RNG, topts terrain.Options, cfg GenConfig, spawns SpawnModel, clock *Clock, log *simlog.Log) *World {
	grid := terrain.Generate(r, topts)
	w := New(r, grid, spawns, clock, log)
	w.Populate(cfg)
	return w
}
