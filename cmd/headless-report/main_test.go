package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KesselZ/HeroHour-sub000/internal/config"
	"github.com/KesselZ/HeroHour-sub000/internal/game"
	"github.com/KesselZ/HeroHour-sub000/internal/nav"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Terrain.Size = 128
	cfg.Terrain.Border = 16
	return cfg
}

func TestRunScenario_SameSeedSameReport(t *testing.T) {
	cfg := smallConfig()
	a, err := runScenario(cfg, 1, 9, 300, hunt)
	require.NoError(t, err)
	b, err := runScenario(cfg, 1, 9, 300, hunt)
	require.NoError(t, err)

	var sa, sbb strings.Builder
	printRun(&sa, a)
	printRun(&sbb, b)
	assert.Equal(t, sa.String(), sbb.String())
	assert.Contains(t, sa.String(), "--- Run 1 (seed=9) ---")
	assert.Positive(t, a.entities["city"])
	assert.Equal(t, 128*128, a.grass+a.water+a.mountain)
}

func TestHunt_ClosesOnNearestGroup(t *testing.T) {
	ts := game.NewTestSim(
		game.WithFlatWorld(64),
		game.WithPlayerAt(0, 0),
		game.WithEnemyGroup("wolves", 20, 0),
	)
	hunt(ts.Sim)
	assert.Greater(t, ts.World.PlayerX, 0.0)
	assert.InDelta(t, 0.0, ts.World.PlayerZ, 1e-9)
}

func TestPrintAggregate(t *testing.T) {
	all := []runStats{
		{battles: 2, victories: 1, firstBattleTick: 100, firstHarvest: -1,
			paths:    nav.Stats{Calls: 10, Failed: 1},
			factions: []game.FactionReport{{Name: "player", Gold: 30, Wood: 4}}},
		{battles: 0, firstBattleTick: -1, firstHarvest: 50,
			paths:    nav.Stats{Calls: 10, Failed: 1},
			factions: []game.FactionReport{{Name: "player", Gold: 10}}},
	}
	var sb strings.Builder
	printAggregate(&sb, all)
	out := sb.String()
	assert.Contains(t, out, "runs=2")
	assert.Contains(t, out, "win_rate=50.0% path_failure_rate=10.0%")
	assert.Contains(t, out, "first_battle=100.0 first_harvest=50.0")
	assert.Contains(t, out, "gold=20.0 wood=2.0")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, 0.0, avg(5, 0))
	assert.Equal(t, "n/a", ratio(1, 0))
	assert.Equal(t, "n/a", avgTickString(nil))
	assert.Equal(t, "a=1 b=2", joinCounts(map[string]int{"b": 2, "a": 1}))
	assert.Equal(t, "none", joinCounts(nil))
}
