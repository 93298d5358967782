package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KesselZ/HeroHour-sub000/internal/rng"
	"github.com/KesselZ/HeroHour-sub000/internal/simlog"
	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
)

func emptyWorld(t *testing.T) (*World, *simlog.Log) {
	t.Helper()
	log := simlog.New(true)
	t.Cleanup(func() {
		if t.Failed() {
			t.Log(log.Format())
		}
	})
	return New(rng.New(5), terrain.NewGrid(64), SpawnModel{Default: "wolves"}, nil, log), log
}

func TestInteract_TreeNeedsSeveralHits(t *testing.T) {
	w, log := emptyWorld(t)
	tree := w.Add(Entity{Type: EntityTree, Hits: 3, Value: 5})

	assert.False(t, w.Interact(tree.ID, "li"))
	assert.False(t, w.Interact(tree.ID, "li"))
	assert.True(t, w.Interact(tree.ID, "li"))
	assert.True(t, tree.Removed)
	assert.Equal(t, 5, w.Faction("li").Wood)
	assert.True(t, log.HasEntry("world", "harvest", "wood"))

	assert.True(t, w.Interact(tree.ID, "li"), "removed entities are done")
	assert.Equal(t, 5, w.Faction("li").Wood)
}

func TestInteract_OwnedBuildingIsIdempotent(t *testing.T) {
	w, log := emptyWorld(t)
	mine := w.Add(Entity{Type: EntityCapturedBuilding, Kind: "gold_mine", Value: 20})

	require.True(t, w.Interact(mine.ID, PlayerFaction))
	assert.Equal(t, PlayerFaction, mine.Owner)
	before := w.SaveData()
	captures := log.Count("world", "capture")

	assert.True(t, w.Interact(mine.ID, PlayerFaction))
	assert.Equal(t, before, w.SaveData())
	assert.Equal(t, captures, log.Count("world", "capture"))

	assert.True(t, w.Interact(mine.ID, "cult"))
	assert.Equal(t, "cult", mine.Owner)
}

func TestInteract_PickupAndUnknown(t *testing.T) {
	w, _ := emptyWorld(t)
	chest := w.Add(Entity{Type: EntityPickup, Kind: "gold", Value: 50})
	assert.True(t, w.Interact(chest.ID, PlayerFaction))
	assert.Equal(t, 50, w.Faction(PlayerFaction).Gold)
	assert.True(t, chest.Removed)
	assert.True(t, w.Interact(999, PlayerFaction))
}

func TestCollectIncome(t *testing.T) {
	w, _ := emptyWorld(t)
	w.Add(Entity{Type: EntityCapturedBuilding, Kind: "gold_mine", Value: 20, Owner: PlayerFaction})
	w.Add(Entity{Type: EntityCapturedBuilding, Kind: "sawmill", Value: 7, Owner: "li"})
	w.Add(Entity{Type: EntityCapturedBuilding, Kind: "gold_mine", Value: 99})
	w.Clock = NewClock(10, 2)

	assert.Equal(t, 2, w.Advance(25))
	assert.Equal(t, 40, w.Faction(PlayerFaction).Gold)
	assert.Equal(t, 14, w.Faction("li").Wood)
	assert.Equal(t, 1, w.Clock.Seasons())
}

func TestNear_FiltersAndSorts(t *testing.T) {
	w, _ := emptyWorld(t)
	a := w.Add(Entity{Type: EntityTree, X: 3, Z: 0})
	b := w.Add(Entity{Type: EntityTree, X: 1, Z: 0})
	c := w.Add(Entity{Type: EntityPickup, X: 2, Z: 0})
	w.Add(Entity{Type: EntityTree, X: 30, Z: 0})
	w.Remove(b.ID)

	trees := w.Near(0, 0, 10, func(e *Entity) bool { return e.Type == EntityTree })
	require.Len(t, trees, 1)
	assert.Equal(t, a.ID, trees[0].ID)
	assert.Equal(t, c.ID, w.Nearest(0, 0, 10, nil).ID)

	c.X = 40
	w.Moved()
	assert.Equal(t, a.ID, w.Nearest(0, 0, 10, nil).ID)
	assert.Nil(t, w.Nearest(0, 0, 0.5, nil))
}

func TestClock_Seasons(t *testing.T) {
	c := NewClock(60, 7)
	assert.Equal(t, "spring", c.Season())
	assert.Zero(t, c.Advance(59))
	assert.Equal(t, 1, c.Advance(1))
	c.Advance(60 * 13)
	assert.Equal(t, 14, c.Day)
	assert.Equal(t, 2, c.Seasons())
	assert.Equal(t, "autumn", c.Season())
	c.Advance(60 * 14)
	assert.Equal(t, "spring", c.Season())
	assert.Equal(t, 2, c.Year())
}

func genTestWorld(seed uint32) *World {
	cfg := DefaultGenConfig()
	cfg.Sects = []SectConfig{{Name: "azure", Hero: "li", City: "Azure Peak"}}
	cfg.EvilFactions = []string{"cult"}
	cfg.Trees, cfg.Pickups, cfg.Mines, cfg.EnemyGroups = 40, 10, 4, 20
	spawns := SpawnModel{Templates: testTemplates(), Default: "wolves"}
	return Generate(rng.New(seed), terrain.Options{Size: 200, Border: 25}, cfg, spawns, NewClock(60, 7), nil)
}

func TestGenerate_Deterministic(t *testing.T) {
	a, b := genTestWorld(11), genTestWorld(11)
	assert.Equal(t, a.SaveData(), b.SaveData())
}

func TestGenerate_Placement(t *testing.T) {
	w := genTestWorld(3)
	home := w.Entity(0)
	require.NotNil(t, home)
	assert.Equal(t, EntityCity, home.Type)
	assert.Equal(t, PlayerFaction, home.Owner)
	gx, gz := w.Grid.CellOf(home.X, home.Z)
	assert.True(t, w.Grid.IsSafeGrass(gx, gz))
	require.NotEmpty(t, w.Spawns.Centers)
	assert.Equal(t, InfluencePlayerHome, w.Spawns.Centers[0].Type)

	assert.Positive(t, w.Count(EntityTree))
	for _, e := range w.Entities() {
		if e.Type == EntityEnemyGroup {
			assert.GreaterOrEqual(t, math.Hypot(e.X-w.HomeX, e.Z-w.HomeZ), 15.0)
			assert.NotEmpty(t, e.Kind)
		}
		if e.Type == EntityTree || e.Type == EntityPickup || e.Type == EntityCapturedBuilding {
			cx, cz := w.Grid.CellOf(e.X, e.Z)
			assert.True(t, w.Grid.IsSafeGrass(cx, cz), "%s on unsafe ground", e.Label())
		}
	}
}

func TestSaveData_RoundTrip(t *testing.T) {
	w := genTestWorld(21)
	tree := w.Add(Entity{Type: EntityTree, X: w.HomeX + 2, Z: w.HomeZ, Hits: 1, Value: 5})
	require.True(t, w.Interact(tree.ID, PlayerFaction))
	w.Remove(w.Entities()[len(w.Entities())-1].ID)
	w.Advance(200)
	w.RNG().Next()
	snap := w.SaveData()

	restored := New(rng.New(0), terrain.NewGrid(2), SpawnModel{Templates: testTemplates(), Default: "wolves"}, nil, nil)
	require.NoError(t, restored.LoadSaveData(snap))
	assert.Equal(t, snap, restored.SaveData())
	assert.Equal(t, w.RNG().Next(), restored.RNG().Next())
	assert.Equal(t, w.Grid.Tiles, restored.Grid.Tiles)
	assert.Equal(t, w.EnemyTypeAt(10, 10), restored.EnemyTypeAt(10, 10))
	assert.True(t, restored.Entities()[len(restored.Entities())-1].Removed)
}

func TestLoadSaveData_Rejects(t *testing.T) {
	w, _ := emptyWorld(t)
	assert.Error(t, w.LoadSaveData(nil))
	good := w.SaveData()

	bad := *good
	bad.Version = 99
	assert.Error(t, w.LoadSaveData(&bad))

	bad = *good
	bad.Heights = bad.Heights[:10]
	assert.Error(t, w.LoadSaveData(&bad))
}
