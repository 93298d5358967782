package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KesselZ/HeroHour-sub000/internal/rng"
)

func testTemplates() []EnemyTemplate {
	return []EnemyTemplate{
		{ID: "wolves", BaseWeight: 10, Basic: true},
		{ID: "rabbits", BaseWeight: 5, Basic: true},
		{ID: "bandits", BaseWeight: 10},
		{ID: "cult_raiders", BaseWeight: 2},
		{ID: "li_disciples", SectHero: "li"},
		{ID: "unused"},
	}
}

func TestInfluenceCenter_CosineFalloff(t *testing.T) {
	c := InfluenceCenter{X: 10, Z: 0, Radius: 20}
	assert.InDelta(t, 1, c.At(10, 0), 1e-12)
	assert.InDelta(t, 0.5, c.At(20, 0), 1e-12)
	assert.Zero(t, c.At(30, 0))
	assert.Zero(t, c.At(100, 0))
}

func TestEnemyTypeAt_HomeOnlySpawnsBasic(t *testing.T) {
	m := SpawnModel{
		Templates: testTemplates(),
		Centers:   []InfluenceCenter{{Type: InfluencePlayerHome, Radius: 50, Strength: 1500}},
		Default:   "wolves",
	}
	basic := map[string]bool{"wolves": true, "rabbits": true}
	r := rng.New(1234)
	seen := map[string]int{}
	for i := 0; i < 1000; i++ {
		id := m.EnemyTypeAt(r, 0, 0)
		require.True(t, basic[id], "non-basic %q at the home anchor", id)
		seen[id]++
	}
	assert.Len(t, seen, 2, "both basic templates still get drawn")
}

func TestWeights_CentersAndSuppression(t *testing.T) {
	m := SpawnModel{
		Templates: testTemplates(),
		Centers: []InfluenceCenter{
			{Type: InfluenceSect, X: 200, Radius: 40, Strength: 600, Hero: "li"},
			{Type: InfluenceEvil, X: -200, Radius: 60, Strength: 800, Faction: "cult"},
		},
	}

	far := m.Weights(0, 500)
	assert.Equal(t, []float64{10, 5, 10, 2, 0, 0}, far)

	sect := m.Weights(200, 0)
	assert.InDelta(t, 600, sect[4], 1e-9)
	assert.Equal(t, 10.0, sect[2], "sect does not suppress")

	evil := m.Weights(-200, 0)
	assert.InDelta(t, 802, evil[3], 1e-9)
	assert.InDelta(t, 10*0.2, evil[2], 1e-9)
	assert.Equal(t, 10.0, evil[0], "basic templates are untouched")
}

func TestEnemyTypeAt_FallsBackToDefault(t *testing.T) {
	m := SpawnModel{
		Templates: []EnemyTemplate{{ID: "bandits", BaseWeight: 3}},
		Centers:   []InfluenceCenter{{Type: InfluencePlayerHome, Radius: 50, Strength: 1500}},
		Default:   "stragglers",
	}
	assert.Equal(t, "stragglers", m.EnemyTypeAt(rng.New(1), 0, 0))
	assert.Equal(t, "bandits", m.EnemyTypeAt(rng.New(1), 0, 300))

	empty := SpawnModel{Default: "stragglers"}
	assert.Equal(t, "stragglers", empty.EnemyTypeAt(rng.New(1), 0, 0))
}

func TestEnemyTypeAt_DrawFollowsWeights(t *testing.T) {
	m := SpawnModel{Templates: []EnemyTemplate{
		{ID: "common", BaseWeight: 9},
		{ID: "rare", BaseWeight: 1},
	}}
	r := rng.New(77)
	rare := 0
	for i := 0; i < 5000; i++ {
		if m.EnemyTypeAt(r, 0, 0) == "rare" {
			rare++
		}
	}
	assert.InDelta(t, 500, rare, 100)
}
