// Package config loads game tuning and content definitions from YAML. The
// shipped defaults are embedded; a user file is overlaid on top of them.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KesselZ/HeroHour-sub000/internal/ai"
	"github.com/KesselZ/HeroHour-sub000/internal/combat"
	"github.com/KesselZ/HeroHour-sub000/internal/nav"
	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type TerrainConfig struct {
	Size   int     `yaml:"size"`
	Border float64 `yaml:"border"`
	Scale  float64 `yaml:"scale"`
}

type ClockConfig struct {
	DayLength     float64 `yaml:"day_length"`
	DaysPerSeason int     `yaml:"days_per_season"`
}

type PathConfig struct {
	Heuristic     string  `yaml:"heuristic"` // chebyshev or octile
	MaxIterations int     `yaml:"max_iterations"`
	DirectRange   float64 `yaml:"direct_range"`
	Async         bool    `yaml:"async"` // route through a background nav.Service
	DedupRadius   float64 `yaml:"dedup_radius"`
}

type CombatConfig struct {
	Arena         float64           `yaml:"arena"`
	CellSize      float64           `yaml:"cell_size"`
	Dt            float64           `yaml:"dt"`
	MaxTicks      int               `yaml:"max_ticks"`
	Army          []world.UnitGroup `yaml:"army"`
	PlayerTalents []string          `yaml:"player_talents"`
	EnemyTalents  []string          `yaml:"enemy_talents"`
}

type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
}

// Config is the whole game configuration.
type Config struct {
	Seed         uint32                  `yaml:"seed"`
	Terrain      TerrainConfig           `yaml:"terrain"`
	Clock        ClockConfig             `yaml:"clock"`
	World        world.GenConfig         `yaml:"world"`
	Pathfinding  PathConfig              `yaml:"pathfinding"`
	Combat       CombatConfig            `yaml:"combat"`
	AI           ai.Params               `yaml:"ai"`
	Pursuit      ai.PursuitParams        `yaml:"pursuit"`
	Audio        AudioConfig             `yaml:"audio"`
	Units        []combat.UnitTemplate   `yaml:"units"`
	DefaultEnemy string                  `yaml:"default_enemy"`
	Enemies      []world.EnemyTemplate   `yaml:"enemies"`
	Skills       []combat.SkillTemplate  `yaml:"skills"`
	Talents      []combat.TalentTemplate `yaml:"talents"`
}

// Default returns the embedded configuration.
func Default() *Config {
	c, err := Parse(defaultYAML, nil)
	if err != nil {
		panic(fmt.Errorf("config: embedded default: %w", err))
	}
	return c
}

// Parse overlays data on base (or on the embedded defaults when base is nil)
// and validates the result. Lists in data replace lists in base.
func Parse(data []byte, base *Config) (*Config, error) {
	c := &Config{}
	if base != nil {
		*c = *base
	} else if err := yaml.Unmarshal(defaultYAML, c); err != nil {
		return nil, fmt.Errorf("config: decode defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads path and overlays it on the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data, nil)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks ranges and cross references between templates.
func (c *Config) Validate() error {
	if c.Terrain.Size < 16 {
		return invalid("terrain.size %d below 16", c.Terrain.Size)
	}
	if c.Terrain.Border < 0 || c.Terrain.Scale <= 0 {
		return invalid("terrain border/scale out of range")
	}
	if h := c.Pathfinding.Heuristic; h != "chebyshev" && h != "octile" {
		return invalid("unknown heuristic %q", c.Pathfinding.Heuristic)
	}
	if c.Pathfinding.MaxIterations <= 0 {
		return invalid("pathfinding.max_iterations must be positive")
	}
	if c.Combat.Dt <= 0 || c.Combat.MaxTicks <= 0 {
		return invalid("combat.dt and combat.max_ticks must be positive")
	}
	if c.AI.WanderMin > c.AI.WanderMax {
		return invalid("ai.wander_min %.1f above wander_max %.1f", c.AI.WanderMin, c.AI.WanderMax)
	}
	if c.Pursuit.Leash < c.Pursuit.Aggro {
		return invalid("pursuit.leash %.1f shorter than aggro %.1f", c.Pursuit.Leash, c.Pursuit.Aggro)
	}

	units := make(map[string]bool, len(c.Units))
	for _, u := range c.Units {
		if u.ID == "" || units[u.ID] {
			return invalid("unit template %q missing or duplicated", u.ID)
		}
		if u.Health <= 0 || u.Scale <= 0 {
			return invalid("unit %s: health and scale must be positive", u.ID)
		}
		units[u.ID] = true
	}
	skills := c.SkillMap()
	for _, s := range c.Skills {
		if err := s.Validate(); err != nil {
			return invalid("%v", err)
		}
	}
	for _, u := range c.Units {
		for _, id := range u.Skills {
			if _, ok := skills[id]; !ok {
				return invalid("unit %s: unknown skill %q", u.ID, id)
			}
		}
	}

	enemies := make(map[string]bool, len(c.Enemies))
	for _, e := range c.Enemies {
		if e.ID == "" || enemies[e.ID] {
			return invalid("enemy template %q missing or duplicated", e.ID)
		}
		if e.BaseWeight < 0 {
			return invalid("enemy %s: negative base weight", e.ID)
		}
		for _, g := range e.Units {
			if !units[g.Type] || g.Count <= 0 {
				return invalid("enemy %s: bad unit group %sx%d", e.ID, g.Type, g.Count)
			}
		}
		enemies[e.ID] = true
	}
	if !enemies[c.DefaultEnemy] {
		return invalid("default_enemy %q is not an enemy template", c.DefaultEnemy)
	}
	for _, g := range c.Combat.Army {
		if !units[g.Type] || g.Count <= 0 {
			return invalid("army: bad unit group %sx%d", g.Type, g.Count)
		}
	}

	talents := c.TalentMap()
	for _, ids := range [][]string{c.Combat.PlayerTalents, c.Combat.EnemyTalents} {
		if _, err := combat.BuildPipeline(ids, talents); err != nil {
			return invalid("%v", err)
		}
	}
	return nil
}

// UnitMap indexes unit templates by id.
func (c *Config) UnitMap() map[string]combat.UnitTemplate {
	m := make(map[string]combat.UnitTemplate, len(c.Units))
	for _, u := range c.Units {
		m[u.ID] = u
	}
	return m
}

// SkillMap indexes skills by id.
func (c *Config) SkillMap() map[string]combat.SkillTemplate {
	m := make(map[string]combat.SkillTemplate, len(c.Skills))
	for _, s := range c.Skills {
		m[s.ID] = s
	}
	return m
}

// TalentMap indexes talents by id.
func (c *Config) TalentMap() map[string]combat.TalentTemplate {
	m := make(map[string]combat.TalentTemplate, len(c.Talents))
	for _, t := range c.Talents {
		m[t.ID] = t
	}
	return m
}

// TalentPipelines builds both sides' modifier pipelines, indexed by combat.Side.
func (c *Config) TalentPipelines() ([2]combat.Pipeline, error) {
	var out [2]combat.Pipeline
	defs := c.TalentMap()
	for side, ids := range [2][]string{c.Combat.PlayerTalents, c.Combat.EnemyTalents} {
		p, err := combat.BuildPipeline(ids, defs)
		if err != nil {
			return out, err
		}
		out[side] = p
	}
	return out, nil
}

// TerrainOptions converts the terrain section.
func (c *Config) TerrainOptions() terrain.Options {
	return terrain.Options{Size: c.Terrain.Size, Border: c.Terrain.Border, Scale: c.Terrain.Scale}
}

// SpawnModel returns an influence model with no centres; world generation
// adds them.
func (c *Config) SpawnModel() world.SpawnModel {
	return world.SpawnModel{
		Templates: append([]world.EnemyTemplate(nil), c.Enemies...),
		Default:   c.DefaultEnemy,
	}
}

// PathOptions converts the pathfinding section.
func (c *Config) PathOptions() []nav.Option {
	return []nav.Option{
		nav.WithHeuristic(nav.HeuristicByName(c.Pathfinding.Heuristic)),
		nav.WithMaxIterations(c.Pathfinding.MaxIterations),
		nav.WithDirectRange(c.Pathfinding.DirectRange),
	}
}

// NewClock builds the calendar.
func (c *Config) NewClock() *world.Clock {
	return world.NewClock(c.Clock.DayLength, c.Clock.DaysPerSeason)
}
