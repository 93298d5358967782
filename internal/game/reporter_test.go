package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

func TestSimReporter_WindowSummary(t *testing.T) {
	ts := NewTestSim(
		WithFlatWorld(64),
		WithHero("azure", 10, 10),
		WithEnemyGroup("wolves", 25, -25),
	)
	r := NewSimReporter(100)
	assert.Nil(t, r.WindowSummary())
	assert.Equal(t, "No data collected yet.\n", r.WindowSummary().Format())

	for i := 0; i < 300; i++ {
		ts.Step()
		if i%10 == 0 {
			r.Collect(ts.Sim)
		}
	}
	ts.World.Faction(world.PlayerFaction).Gold += 7
	r.Collect(ts.Sim)

	latest := r.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, 300, latest.Tick)
	assert.Equal(t, 1, latest.Groups)
	assert.Equal(t, 1, sumStates(latest.HeroStates))

	wr := r.WindowSummary()
	require.NotNil(t, wr)
	assert.Equal(t, 300, wr.ToTick)
	assert.GreaterOrEqual(t, wr.FromTick, 200)
	assert.Less(t, wr.SampleCount, len(r.History()))
	assert.Equal(t, 7, wr.GoldGained[world.PlayerFaction])
	assert.InDelta(t, 1.0, wr.AvgGroups, 1e-9)

	out := wr.Format()
	assert.Contains(t, out, "=== Behaviour Report")
	assert.Contains(t, out, "gold    +7")
	assert.Contains(t, r.FormatLatest(), "T=300")
}

func sumStates(m map[string]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}
