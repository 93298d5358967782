package terrain

import (
	"math"
	"sort"
)

const (
	poiStride        = 8    // grid units between probe points
	poiGrowStep      = 2.0  // radius increment while probing
	poiMaxRadius     = 60.0 // stop growing past this
	poiArcSpacing    = 2.0  // world units between ring samples
	poiMinSamples    = 8    // ring samples at the smallest radius
	poiLocalRange    = 12.0 // local-maximum suppression distance
	poiMinSeparation = 40.0 // spacing between accepted sites
)

// POI is a candidate site for a city or faction base: the centre of a flat
// grass disc and that disc's radius.
type POI struct {
	X, Z   float64 // world coordinates
	Radius float64
}

// FindPOICandidates returns up to count well-separated open areas, largest
// first. Every accepted site is at least 40 units from the others.
func (g *Grid) FindPOICandidates(count int) []POI {
	if count <= 0 {
		return nil
	}

	var cands []POI
	for gz := poiStride; gz < g.Size-poiStride; gz += poiStride {
		for gx := poiStride; gx < g.Size-poiStride; gx += poiStride {
			wx, wz := g.GridToWorld(gx, gz)
			if g.TileAt(wx, wz) != TileGrass {
				continue
			}
			r := 0.0
			for r+poiGrowStep <= poiMaxRadius {
				next := r + poiGrowStep
				if !g.ringIsGrass(wx, wz, next) {
					break
				}
				r = next
			}
			if r == 0 {
				continue
			}
			cands = append(cands, POI{X: wx, Z: wz, Radius: r})
		}
	}

	// Keep local maxima only.
	peaks := cands[:0:0]
	for i, c := range cands {
		dominated := false
		for j, o := range cands {
			if i == j || o.Radius <= c.Radius {
				continue
			}
			if math.Hypot(o.X-c.X, o.Z-c.Z) < poiLocalRange {
				dominated = true
				break
			}
		}
		if !dominated {
			peaks = append(peaks, c)
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Radius > peaks[j].Radius
	})

	var accepted []POI
	for _, p := range peaks {
		if len(accepted) >= count {
			break
		}
		tooClose := false
		for _, a := range accepted {
			if math.Hypot(a.X-p.X, a.Z-p.Z) < poiMinSeparation {
				tooClose = true
				break
			}
		}
		if !tooClose {
			accepted = append(accepted, p)
		}
	}
	return accepted
}

// ringIsGrass samples a circle; the number of samples grows with radius so
// gaps between them stay roughly constant.
func (g *Grid) ringIsGrass(cx, cz, r float64) bool {
	n := max(poiMinSamples, int(math.Ceil(2*math.Pi*r/poiArcSpacing)))
	for k := 0; k < n; k++ {
		a := 2 * math.Pi * float64(k) / float64(n)
		if g.TileAt(cx+math.Cos(a)*r, cz+math.Sin(a)*r) != TileGrass {
			return false
		}
	}
	return true
}
