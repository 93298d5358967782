package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KesselZ/HeroHour-sub000/internal/rng"
	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

func smallWorld(seed uint32) *world.World {
	cfg := world.DefaultGenConfig()
	cfg.Sects = []world.SectConfig{{Name: "azure", Hero: "li", City: "Azure Peak"}}
	cfg.Trees, cfg.Pickups, cfg.Mines, cfg.EnemyGroups = 20, 5, 3, 10
	spawns := world.SpawnModel{
		Templates: []world.EnemyTemplate{{ID: "wolves", BaseWeight: 10, Basic: true}, {ID: "bandits", BaseWeight: 5}},
		Default:   "wolves",
	}
	return world.Generate(rng.New(seed), terrain.Options{Size: 96, Border: 12}, cfg, spawns, world.NewClock(60, 7), nil)
}

func TestStore_EmptySlot(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "saves"))
	require.NoError(t, err)
	slot, ok, err := s.Load("one")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, slot)
	assert.NoError(t, s.Delete("one"))
}

func TestStore_RoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	w := smallWorld(4)
	chest := w.Add(world.Entity{Type: world.EntityPickup, Kind: "gold", X: w.HomeX, Z: w.HomeZ, Value: 30})
	require.True(t, w.Interact(chest.ID, world.PlayerFaction))
	w.Advance(130)
	snap := w.SaveData()
	require.NoError(t, s.Save("auto", 812, snap))

	slot, ok, err := s.Load("auto")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "auto", slot.Name)
	assert.Equal(t, 812, slot.Tick)
	assert.Equal(t, snap, slot.World)

	restored := world.New(rng.New(1), terrain.NewGrid(2), w.Spawns, nil, nil)
	require.NoError(t, restored.LoadSaveData(slot.World))
	assert.Equal(t, w.RNG().Next(), restored.RNG().Next())
	assert.Equal(t, w.Faction(world.PlayerFaction), restored.Faction(world.PlayerFaction))
	assert.Equal(t, 2, restored.Clock.Day)
}

func TestStore_OverwriteAndList(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	a, b := smallWorld(1).SaveData(), smallWorld(2).SaveData()
	require.NoError(t, s.Save("b", 1, a))
	require.NoError(t, s.Save("a", 2, a))
	require.NoError(t, s.Save("b", 3, b))

	names, err := s.Slots()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	slot, ok, err := s.Load("b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, slot.Tick)
	assert.Equal(t, b.Seed, slot.World.Seed)

	require.NoError(t, s.Delete("a"))
	names, err = s.Slots()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestStore_Corrupt(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "bad"+slotExt), []byte("not msgpack"), 0o644))
	_, ok, err := s.Load("bad")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCorruptSlot)
}

func TestStore_RejectsSlotNames(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "../escape", "a/b", "x.y"} {
		assert.Error(t, s.Save(name, 0, &world.SaveData{}), name)
		_, _, err := s.Load(name)
		assert.Error(t, err, name)
	}
}
