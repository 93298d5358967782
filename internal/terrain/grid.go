// Package terrain holds the overworld tile grid: layered Perlin noise
// quantised into water, grass and mountain, with point queries that follow
// the same triangle split the terrain mesh is drawn with.
package terrain

import "math"

// TileType is the logical classification of a grid vertex.
type TileType uint8

const (
	TileGrass    TileType = iota // walkable open ground
	TileWater                    // lakes and rivers
	TileMountain                 // impassable high ground, also everything out of bounds
	tileTypeCount
)

func (t TileType) String() string {
	switch t {
	case TileGrass:
		return "grass"
	case TileWater:
		return "water"
	case TileMountain:
		return "mountain"
	default:
		return "unknown"
	}
}

// Noise thresholds for quantisation.
const (
	mountainThreshold = 0.20
	waterThreshold    = -0.15
	minNoise          = -1.4
	maxNoise          = 1.4
)

// Classify maps a raw noise value to a tile type.
func Classify(n float64) TileType {
	switch {
	case n > mountainThreshold:
		return TileMountain
	case n < waterThreshold:
		return TileWater
	default:
		return TileGrass
	}
}

// Grid is the authoritative terrain representation. Vertex (x,z) sits at
// world position (x-Size/2, z-Size/2); the cell it anchors covers [x,x+1) in
// grid space.
type Grid struct {
	Size    int
	Tiles   []TileType // row-major: index = z*Size + x
	Heights []float32  // raw noise per vertex, in [-1.4, 1.4]
	Offsets [2]float64 // noise-space offsets the grid was generated with
}

// NewGrid creates a grid of the given size with every vertex grass.
func NewGrid(size int) *Grid {
	return &Grid{
		Size:    size,
		Tiles:   make([]TileType, size*size),
		Heights: make([]float32, size*size),
	}
}

// FromHeights builds a grid from stored per-vertex noise, re-deriving every
// classification. Used when restoring a saved world.
func FromHeights(size int, heights []float32) *Grid {
	g := NewGrid(size)
	copy(g.Heights, heights)
	for i, h := range g.Heights {
		g.Tiles[i] = Classify(float64(h))
	}
	return g
}

func (g *Grid) inBounds(gx, gz int) bool {
	return gx >= 0 && gz >= 0 && gx < g.Size && gz < g.Size
}

// At returns the tile type of vertex (gx,gz). Out of bounds is mountain.
func (g *Grid) At(gx, gz int) TileType {
	if !g.inBounds(gx, gz) {
		return TileMountain
	}
	return g.Tiles[gz*g.Size+gx]
}

// Height returns the stored noise at vertex (gx,gz), or maxNoise out of bounds.
func (g *Grid) Height(gx, gz int) float32 {
	if !g.inBounds(gx, gz) {
		return maxNoise
	}
	return g.Heights[gz*g.Size+gx]
}

// SetHeight overwrites a vertex and re-derives its classification.
func (g *Grid) SetHeight(gx, gz int, h float32) {
	if !g.inBounds(gx, gz) {
		return
	}
	h = float32(math.Max(minNoise, math.Min(maxNoise, float64(h))))
	i := gz*g.Size + gx
	g.Heights[i] = h
	g.Tiles[i] = Classify(float64(h))
}

// half is the grid-space coordinate of the world origin.
func (g *Grid) half() float64 {
	return float64(g.Size / 2)
}

// WorldToGrid converts world coordinates to continuous grid coordinates.
func (g *Grid) WorldToGrid(wx, wz float64) (float64, float64) {
	h := g.half()
	return wx + h, wz + h
}

// GridToWorld converts vertex coordinates to world coordinates.
func (g *Grid) GridToWorld(gx, gz int) (float64, float64) {
	h := g.half()
	return float64(gx) - h, float64(gz) - h
}

// CellOf returns the nearest vertex to a world position.
func (g *Grid) CellOf(wx, wz float64) (int, int) {
	gx, gz := g.WorldToGrid(wx, wz)
	return int(math.Round(gx)), int(math.Round(gz))
}

// Contains reports whether the world position lies on the grid.
func (g *Grid) Contains(wx, wz float64) bool {
	gx, gz := g.WorldToGrid(wx, wz)
	return gx >= 0 && gz >= 0 && gx < float64(g.Size) && gz < float64(g.Size)
}

// quadAt locates the quad containing grid point (gx,gz) and the fractional
// position inside it. The last row and column extend the final quad.
func (g *Grid) quadAt(gx, gz float64) (x0, z0 int, fx, fz float64) {
	x0 = int(math.Floor(gx))
	z0 = int(math.Floor(gz))
	if last := g.Size - 2; last >= 0 {
		x0 = min(x0, last)
		z0 = min(z0, last)
	}
	return x0, z0, gx - float64(x0), gz - float64(z0)
}

// triangleAt returns the three vertices of the mesh triangle covering
// (gx,gz). Quads split along the rising diagonal (x0,z0+1)-(x0+1,z0): the
// lower triangle holds v00, the upper one v11.
func (g *Grid) triangleAt(gx, gz float64) [3][2]int {
	x0, z0, fx, fz := g.quadAt(gx, gz)
	if fx+fz <= 1 {
		return [3][2]int{{x0, z0}, {x0 + 1, z0}, {x0, z0 + 1}}
	}
	return [3][2]int{{x0 + 1, z0}, {x0 + 1, z0 + 1}, {x0, z0 + 1}}
}

// majority classifies a triangle by its vertices. Two or more of a kind
// wins; a three-way split falls to mountain, the highest priority.
func majority(a, b, c TileType) TileType {
	var n [tileTypeCount]int
	n[a]++
	n[b]++
	n[c]++
	for _, t := range [...]TileType{TileMountain, TileWater, TileGrass} {
		if n[t] >= 2 {
			return t
		}
	}
	return TileMountain
}

// TileAt classifies an arbitrary world position using the mesh triangle
// under it, never the nearest vertex.
func (g *Grid) TileAt(wx, wz float64) TileType {
	if g.Size < 2 || !g.Contains(wx, wz) {
		return TileMountain
	}
	gx, gz := g.WorldToGrid(wx, wz)
	tri := g.triangleAt(gx, gz)
	return majority(
		g.At(tri[0][0], tri[0][1]),
		g.At(tri[1][0], tri[1][1]),
		g.At(tri[2][0], tri[2][1]),
	)
}

// HeightAt interpolates the stored noise across the covering triangle.
func (g *Grid) HeightAt(wx, wz float64) float64 {
	if g.Size < 2 || !g.Contains(wx, wz) {
		return maxNoise
	}
	gx, gz := g.WorldToGrid(wx, wz)
	x0, z0, fx, fz := g.quadAt(gx, gz)
	h00 := float64(g.Height(x0, z0))
	h10 := float64(g.Height(x0+1, z0))
	h01 := float64(g.Height(x0, z0+1))
	h11 := float64(g.Height(x0+1, z0+1))
	if fx+fz <= 1 {
		return h00 + (h10-h00)*fx + (h01-h00)*fz
	}
	return h11 + (h01-h11)*(1-fx) + (h10-h11)*(1-fz)
}

// IsSafeGrass reports whether the 3x3 neighbourhood around a vertex is
// entirely grass. Gates entity placement.
func (g *Grid) IsSafeGrass(gx, gz int) bool {
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			if g.At(gx+dx, gz+dz) != TileGrass {
				return false
			}
		}
	}
	return true
}

// IsPassable samples a 2.5D footprint of the given radius: the centre, both
// sides, a long reach toward +z and a short one toward -z. All must be grass.
func (g *Grid) IsPassable(x, z, radius float64) bool {
	samples := [5][2]float64{
		{x, z},
		{x + radius, z},
		{x - radius, z},
		{x, z + radius*1.2},
		{x, z - radius*0.4},
	}
	for _, s := range samples {
		if g.TileAt(s[0], s[1]) != TileGrass {
			return false
		}
	}
	return true
}

// EnsureStartingArea forces every vertex within radius of a world position
// to grass by rewriting its stored noise. Returns the number of vertices
// changed.
func (g *Grid) EnsureStartingArea(wx, wz, radius float64) int {
	cx, cz := g.WorldToGrid(wx, wz)
	r2 := radius * radius
	changed := 0
	for gz := int(math.Floor(cz - radius)); gz <= int(math.Ceil(cz+radius)); gz++ {
		for gx := int(math.Floor(cx - radius)); gx <= int(math.Ceil(cx+radius)); gx++ {
			if !g.inBounds(gx, gz) {
				continue
			}
			dx := float64(gx) - cx
			dz := float64(gz) - cz
			if dx*dx+dz*dz > r2 {
				continue
			}
			if g.At(gx, gz) != TileGrass {
				g.SetHeight(gx, gz, 0)
				changed++
			}
		}
	}
	return changed
}

// Composition counts vertices of each type.
func (g *Grid) Composition() (grass, water, mountain int) {
	for _, t := range g.Tiles {
		switch t {
		case TileGrass:
			grass++
		case TileWater:
			water++
		case TileMountain:
			mountain++
		}
	}
	return grass, water, mountain
}
