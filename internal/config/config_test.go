package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KesselZ/HeroHour-sub000/internal/combat"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 400, c.Terrain.Size)
	assert.Equal(t, 5000, c.Pathfinding.MaxIterations)
	assert.Equal(t, "wolves", c.DefaultEnemy)
	assert.Equal(t, 1.5, c.AI.InteractRange)
	assert.Contains(t, c.UnitMap(), "tiger_guard")
	assert.True(t, c.UnitMap()["tiger_guard"].ControlImmune)
	assert.Len(t, c.World.Sects, 2)

	pipes, err := c.TalentPipelines()
	require.NoError(t, err)
	assert.Len(t, pipes[combat.SidePlayer], 2)
	assert.Empty(t, pipes[combat.SideEnemy])

	m := c.SpawnModel()
	assert.Len(t, m.Templates, len(c.Enemies))
	assert.Empty(t, m.Centers)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	c, err := Parse([]byte("seed: 7\nterrain:\n  size: 128\npathfinding:\n  heuristic: octile\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), c.Seed)
	assert.Equal(t, 128, c.Terrain.Size)
	assert.Equal(t, 50.0, c.Terrain.Border, "untouched keys keep their defaults")
	assert.Equal(t, "octile", c.Pathfinding.Heuristic)
	assert.NotEmpty(t, c.Units)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"tiny terrain":      "terrain: {size: 4}",
		"heuristic":         "pathfinding: {heuristic: manhattan}",
		"leash below aggro": "pursuit: {aggro: 30, leash: 10}",
		"default enemy":     "default_enemy: dragons",
		"unknown skill": `units:
  - {id: hero, scale: 1, health: 10, skills: [fireball]}
default_enemy: wolves
enemies: [{id: wolves, units: [{type: hero, count: 1}]}]
combat: {army: []}`,
		"enemy unit group": "enemies: [{id: wolves, units: [{type: ghost, count: 2}]}]",
		"talent":           "combat: {player_talents: [nonsense]}",
		"bad action kind":  "skills: [{id: shockwave, actions: [{kind: explode}]}, {id: meteor}]",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), nil)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Parse([]byte("seed: [oops"), nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte("combat:\n  arena: 40\n"), 0o644))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40.0, c.Combat.Arena)
	assert.Equal(t, 0.05, c.Combat.Dt)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
