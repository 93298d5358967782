package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugReport(t *testing.T) {
	ts := NewTestSim(
		WithFlatWorld(64),
		WithHero("azure", 10, 10),
		WithTree(14, 10, 3, 5),
		WithEnemyGroup("wolves", 25, -25),
	)
	ts.RunTicks(40)

	out := ts.DebugReport(0)
	assert.Contains(t, out, "tick_range=[0..40] ticks=41")
	assert.Contains(t, out, "== heroes ==")
	assert.Contains(t, out, "azure")
	assert.Contains(t, out, "== pursuers ==")
	assert.Contains(t, out, "state=idle")

	ts.Log.Add(ts.Tick(), "marker#1", "", "world", "probe", "x", 0)
	assert.Contains(t, ts.DebugReport(1), "marker#1:")
}
