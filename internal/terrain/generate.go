package terrain

import (
	"math"

	"github.com/KesselZ/HeroHour-sub000/internal/rng"
)

const (
	defaultSize   = 400
	defaultBorder = 50.0
	defaultScale  = 0.018

	warpOffsetX  = 5.2  // offset of the second warp sample
	warpOffsetZ  = 1.3  // offset of the second warp sample
	warpStrength = 2.0  // how far q displaces the base sample
	detailFreq   = 4.0  // frequency multiplier of the detail octave
	detailWeight = 0.25 // blend weight of the detail octave
	contrast     = 1.4
	edgePush     = 2.4 // lifts the outermost ring from -1 to the noise ceiling
	edgeExponent = 1.2
)

// Options controls terrain generation.
type Options struct {
	Size    int         // vertices per side (default 400)
	Border  float64     // width of the band pushed toward mountain (default 50)
	Scale   float64     // noise units per grid unit (default 0.018)
	Offsets *[2]float64 // fixed noise offsets; drawn from the RNG when nil
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = defaultSize
	}
	if o.Border <= 0 {
		o.Border = defaultBorder
	}
	if o.Scale <= 0 {
		o.Scale = defaultScale
	}
	return o
}

// Generate builds a terrain grid. Identical RNG seeds and options produce
// identical grids. The map is always ringed by mountain.
func Generate(r *rng.RNG, opts Options) *Grid {
	opts = opts.withDefaults()
	var off [2]float64
	if opts.Offsets != nil {
		off = *opts.Offsets
	} else {
		off = [2]float64{r.Float(0, 10000), r.Float(0, 10000)}
	}

	g := NewGrid(opts.Size)
	g.Offsets = off
	for z := 0; z < opts.Size; z++ {
		for x := 0; x < opts.Size; x++ {
			n := sampleNoise(r, float64(x), float64(z), off, opts.Scale)
			n = applyEdgeBias(n, x, z, opts.Size, opts.Border)
			g.SetHeight(x, z, float32(n))
		}
	}
	return g
}

// sampleNoise evaluates the domain-warped, contrast-scaled noise at a vertex.
func sampleNoise(r *rng.RNG, x, z float64, off [2]float64, scale float64) float64 {
	nx := (x + off[0]) * scale
	nz := (z + off[1]) * scale

	qx := r.Noise2D(nx, nz)
	qz := r.Noise2D(nx+warpOffsetX, nz+warpOffsetZ)

	base := r.Noise2D(nx+warpStrength*qx, nz+warpStrength*qz)
	detail := r.Noise2D(nx*detailFreq, nz*detailFreq)
	n := base*(1-detailWeight) + detail*detailWeight

	return math.Max(-1, math.Min(1, n*contrast))
}

// applyEdgeBias pushes noise upward inside the border band so the outer
// ring is always mountain.
func applyEdgeBias(n float64, x, z, size int, border float64) float64 {
	dist := float64(min(x, z, size-1-x, size-1-z))
	if dist >= border {
		return n
	}
	push := math.Pow((border-dist)/border, edgeExponent)
	return math.Max(minNoise, math.Min(maxNoise, n+edgePush*push))
}
