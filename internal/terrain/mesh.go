package terrain

// Triangle is one face of the terrain mesh, in vertex coordinates.
type Triangle struct {
	V    [3][2]int
	Type TileType
}

// MeshRow returns the two triangles of every quad in row z0, using the same
// diagonal and majority rule as TileAt. Renderers draw from this so the
// picture and the logic cannot disagree.
func (g *Grid) MeshRow(z0 int) []Triangle {
	if z0 < 0 || z0 > g.Size-2 {
		return nil
	}
	out := make([]Triangle, 0, 2*(g.Size-1))
	for x0 := 0; x0 < g.Size-1; x0++ {
		lower := [3][2]int{{x0, z0}, {x0 + 1, z0}, {x0, z0 + 1}}
		upper := [3][2]int{{x0 + 1, z0}, {x0 + 1, z0 + 1}, {x0, z0 + 1}}
		out = append(out,
			Triangle{V: lower, Type: g.classifyTriangle(lower)},
			Triangle{V: upper, Type: g.classifyTriangle(upper)},
		)
	}
	return out
}

// Mesh returns every triangle of the grid.
func (g *Grid) Mesh() []Triangle {
	out := make([]Triangle, 0, 2*(g.Size-1)*(g.Size-1))
	for z0 := 0; z0 < g.Size-1; z0++ {
		out = append(out, g.MeshRow(z0)...)
	}
	return out
}

func (g *Grid) classifyTriangle(v [3][2]int) TileType {
	return majority(g.At(v[0][0], v[0][1]), g.At(v[1][0], v[1][1]), g.At(v[2][0], v[2][1]))
}

// Contains reports whether grid point (gx,gz) lies inside the triangle,
// edges included.
func (t Triangle) Contains(gx, gz float64) bool {
	ax, az := float64(t.V[0][0]), float64(t.V[0][1])
	bx, bz := float64(t.V[1][0]), float64(t.V[1][1])
	cx, cz := float64(t.V[2][0]), float64(t.V[2][1])
	d1 := (gx-bx)*(az-bz) - (ax-bx)*(gz-bz)
	d2 := (gx-cx)*(bz-cz) - (bx-cx)*(gz-cz)
	d3 := (gx-ax)*(cz-az) - (cx-ax)*(gz-az)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
