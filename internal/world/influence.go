package world

import (
	"math"
	"strings"

	"github.com/KesselZ/HeroHour-sub000/internal/rng"
)

// InfluenceType is the source of an influence field.
type InfluenceType uint8

const (
	InfluencePlayerHome InfluenceType = iota
	InfluenceSect
	InfluenceEvil
)

func (t InfluenceType) String() string {
	switch t {
	case InfluencePlayerHome:
		return "player_home"
	case InfluenceSect:
		return "sect"
	case InfluenceEvil:
		return "evil"
	default:
		return "unknown"
	}
}

// InfluenceCenter biases enemy spawns around an anchor.
type InfluenceCenter struct {
	Type     InfluenceType `msgpack:"type"`
	X        float64       `msgpack:"x"`
	Z        float64       `msgpack:"z"`
	Radius   float64       `msgpack:"radius"`
	Strength float64       `msgpack:"strength"`
	Hero     string        `msgpack:"hero,omitempty"`    // sect centres
	Faction  string        `msgpack:"faction,omitempty"` // evil centres
}

// At returns the centre's influence at (x,z): 1 at the anchor falling to 0
// at the radius along a cosine curve.
func (c InfluenceCenter) At(x, z float64) float64 {
	if c.Radius <= 0 {
		return 0
	}
	d := math.Hypot(x-c.X, z-c.Z)
	if d >= c.Radius {
		return 0
	}
	return 0.5 * (1 + math.Cos(math.Pi*d/c.Radius))
}

// UnitGroup is a slice of an enemy template's army.
type UnitGroup struct {
	Type  string `yaml:"type" msgpack:"type"`
	Count int    `yaml:"count" msgpack:"count"`
}

// EnemyTemplate is a spawnable enemy group.
type EnemyTemplate struct {
	ID         string      `yaml:"id"`
	BaseWeight float64     `yaml:"base_weight"`
	Basic      bool        `yaml:"basic"`     // non-threatening, favoured near the player's home
	SectHero   string      `yaml:"sect_hero"` // boosted near that hero's sect
	Units      []UnitGroup `yaml:"units"`
}

// SpawnModel picks enemy templates by position.
type SpawnModel struct {
	Templates []EnemyTemplate
	Centers   []InfluenceCenter
	Default   string
}

// Weights returns each template's spawn weight at (x,z), in template order.
func (m *SpawnModel) Weights(x, z float64) []float64 {
	out := make([]float64, len(m.Templates))
	for i, t := range m.Templates {
		if t.BaseWeight <= 0 && t.SectHero == "" {
			continue
		}
		bonus, suppress := 0.0, 1.0
		for _, c := range m.Centers {
			inf := c.At(x, z)
			if inf <= 0 {
				continue
			}
			switch c.Type {
			case InfluencePlayerHome:
				if t.Basic {
					bonus += c.Strength * inf
				} else {
					suppress *= (1 - inf) * (1 - inf)
				}
			case InfluenceSect:
				if t.SectHero != "" && t.SectHero == c.Hero {
					bonus += c.Strength * inf
				}
			case InfluenceEvil:
				if c.Faction != "" && strings.HasPrefix(t.ID, c.Faction) {
					bonus += c.Strength * inf
				} else if !t.Basic {
					suppress *= 1 - inf*0.8
				}
			}
		}
		out[i] = math.Max(0, (t.BaseWeight+bonus)*suppress)
	}
	return out
}

// EnemyTypeAt draws a template id for a spawn at (x,z). With no positive
// weight anywhere it returns the default.
func (m *SpawnModel) EnemyTypeAt(r rng.Source, x, z float64) string {
	w := m.Weights(x, z)
	total := 0.0
	for _, v := range w {
		total += v
	}
	if total <= 0 {
		return m.Default
	}
	pick := r.Next() * total
	for i, v := range w {
		if v <= 0 {
			continue
		}
		if pick < v {
			return m.Templates[i].ID
		}
		pick -= v
	}
	for i := len(w) - 1; i >= 0; i-- {
		if w[i] > 0 {
			return m.Templates[i].ID
		}
	}
	return m.Default
}

// Template looks up an enemy template by id.
func (m *SpawnModel) Template(id string) (EnemyTemplate, bool) {
	for _, t := range m.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return EnemyTemplate{}, false
}
