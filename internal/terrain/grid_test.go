package terrain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KesselZ/HeroHour-sub000/internal/rng"
)

func TestClassify_Thresholds(t *testing.T) {
	assert.Equal(t, TileMountain, Classify(0.21))
	assert.Equal(t, TileGrass, Classify(0.20))
	assert.Equal(t, TileGrass, Classify(0))
	assert.Equal(t, TileGrass, Classify(-0.15))
	assert.Equal(t, TileWater, Classify(-0.16))
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(rng.New(77), Options{Size: 120, Border: 20})
	b := Generate(rng.New(77), Options{Size: 120, Border: 20})
	require.Equal(t, a.Offsets, b.Offsets)
	require.Equal(t, a.Heights, b.Heights)
	require.Equal(t, a.Tiles, b.Tiles)
}

func TestGenerate_ForcedOffsets(t *testing.T) {
	off := [2]float64{123.5, 987.25}
	a := Generate(rng.New(1), Options{Size: 64, Border: 10, Offsets: &off})
	assert.Equal(t, off, a.Offsets)
}

func TestGenerate_EnclosedByMountain(t *testing.T) {
	g := Generate(rng.New(5), Options{Size: 160, Border: 30})
	for i := 0; i < g.Size; i++ {
		assert.Equal(t, TileMountain, g.At(i, 0))
		assert.Equal(t, TileMountain, g.At(0, i))
		assert.Equal(t, TileMountain, g.At(i, g.Size-1))
		assert.Equal(t, TileMountain, g.At(g.Size-1, i))
	}
	for _, h := range g.Heights {
		require.GreaterOrEqual(t, h, float32(minNoise))
		require.LessOrEqual(t, h, float32(maxNoise))
	}
}

func TestGenerate_HasMixedInterior(t *testing.T) {
	g := Generate(rng.New(2024), Options{Size: 400})
	grass, water, mountain := g.Composition()
	assert.Positive(t, grass)
	assert.Positive(t, mountain)
	assert.Equal(t, g.Size*g.Size, grass+water+mountain)
}

func TestFromHeights_RederivesTiles(t *testing.T) {
	g := Generate(rng.New(9), Options{Size: 90, Border: 15})
	h := FromHeights(g.Size, g.Heights)
	assert.Equal(t, g.Tiles, h.Tiles)
}

func TestGridWorldConversion(t *testing.T) {
	g := NewGrid(10)
	wx, wz := g.GridToWorld(0, 0)
	assert.Equal(t, -5.0, wx)
	assert.Equal(t, -5.0, wz)
	gx, gz := g.CellOf(wx, wz)
	assert.Equal(t, 0, gx)
	assert.Equal(t, 0, gz)
	assert.True(t, g.Contains(4.9, 4.9))
	assert.False(t, g.Contains(5.0, 0))
	assert.False(t, g.Contains(-5.01, 0))
}

func TestTileAt_OutOfBoundsIsMountain(t *testing.T) {
	g := NewGrid(10)
	assert.Equal(t, TileGrass, g.TileAt(0, 0))
	assert.Equal(t, TileMountain, g.TileAt(-6, 0))
	assert.Equal(t, TileMountain, g.TileAt(0, 6))
}

func TestTileAt_MajorityNotNearestVertex(t *testing.T) {
	g := NewGrid(2)
	g.SetHeight(0, 0, 1.0) // one mountain vertex, three grass
	// Point right next to the mountain vertex: nearest-vertex would say
	// mountain, the lower triangle has two grass vertices.
	wx, wz := g.GridToWorld(0, 0)
	assert.Equal(t, TileGrass, g.TileAt(wx+0.05, wz+0.05))

	// Two mountain vertices on the diagonal-side triangle flip it.
	g.SetHeight(1, 0, 1.0)
	assert.Equal(t, TileMountain, g.TileAt(wx+0.05, wz+0.05))
}

func TestTileAt_DiagonalSplit(t *testing.T) {
	g := NewGrid(2)
	g.SetHeight(1, 1, 1.0)  // v11 mountain
	g.SetHeight(1, 0, -1.0) // v10 water
	wx, wz := g.GridToWorld(0, 0)
	// Lower triangle {v00 grass, v10 water, v01 grass} → grass.
	assert.Equal(t, TileGrass, g.TileAt(wx+0.2, wz+0.2))
	// Upper triangle {v10 water, v11 mountain, v01 grass} → three-way split → mountain.
	assert.Equal(t, TileMountain, g.TileAt(wx+0.8, wz+0.8))
}

func TestTileAt_AgreesWithMesh(t *testing.T) {
	g := Generate(rng.New(31), Options{Size: 80, Border: 12})
	r := rng.New(32)
	for i := 0; i < 3000; i++ {
		gx := r.Float(0, float64(g.Size-1))
		gz := r.Float(0, float64(g.Size-1))
		z0 := int(math.Floor(gz))
		found := false
		for _, tri := range g.MeshRow(z0) {
			if !tri.Contains(gx, gz) {
				continue
			}
			wx, wz := gx-float64(g.Size/2), gz-float64(g.Size/2)
			require.Equal(t, tri.Type, g.TileAt(wx, wz), "at grid (%.3f,%.3f)", gx, gz)
			found = true
			break
		}
		require.True(t, found, "no mesh triangle covers (%.3f,%.3f)", gx, gz)
	}
}

func TestMesh_CoversGrid(t *testing.T) {
	g := NewGrid(6)
	assert.Len(t, g.Mesh(), 2*5*5)
	assert.Nil(t, g.MeshRow(5))
}

func TestHeightAt_InterpolatesVertices(t *testing.T) {
	g := NewGrid(3)
	g.SetHeight(1, 1, 1.0)
	wx, wz := g.GridToWorld(1, 1)
	assert.InDelta(t, 1.0, g.HeightAt(wx, wz), 1e-6)
	assert.InDelta(t, 0.5, g.HeightAt(wx-0.5, wz), 1e-6)
}

func TestIsSafeGrass(t *testing.T) {
	g := NewGrid(10)
	assert.True(t, g.IsSafeGrass(5, 5))
	assert.False(t, g.IsSafeGrass(0, 5), "edge neighbourhood leaves the grid")
	g.SetHeight(6, 6, -1)
	assert.False(t, g.IsSafeGrass(5, 5))
	assert.True(t, g.IsSafeGrass(3, 3))
}

func TestIsPassable_Footprint(t *testing.T) {
	g := NewGrid(20)
	wx, wz := g.GridToWorld(10, 10)
	assert.True(t, g.IsPassable(wx, wz, 1))

	// Mountain band from row 12 upward.
	for x := 0; x < g.Size; x++ {
		for z := 12; z < 15; z++ {
			g.SetHeight(x, z, 1)
		}
	}
	assert.True(t, g.IsPassable(wx, wz+1, 0), "centre alone is still grass")
	assert.False(t, g.IsPassable(wx, wz+1, 1), "+z sample at 1.2r reaches the band")
	assert.True(t, g.IsPassable(wx, wz-1, 1))
}

func TestEnsureStartingArea(t *testing.T) {
	g := Generate(rng.New(12), Options{Size: 100, Border: 10})
	wx, wz := g.GridToWorld(50, 50)
	g.EnsureStartingArea(wx, wz, 6)
	for dz := -4; dz <= 4; dz++ {
		for dx := -4; dx <= 4; dx++ {
			assert.Equal(t, TileGrass, g.At(50+dx, 50+dz))
		}
	}
	assert.True(t, g.IsSafeGrass(50, 50))
	// Override keeps stored noise consistent with the classification.
	h := FromHeights(g.Size, g.Heights)
	assert.Equal(t, g.Tiles, h.Tiles)
}
