// Package rng provides the seeded generator shared by terrain generation and
// gameplay: a 32-bit linear congruential generator and an improved Perlin
// noise function whose permutation table is shuffled by that same generator.
package rng

import "math"

const (
	lcgMul  = 1664525
	lcgInc  = 1013904223
	twoTo32 = 4294967296.0
)

// Source is the minimal random interface consumed by the simulation packages.
type Source interface {
	Next() float64
}

// RNG is a deterministic generator. Two instances seeded with the same value
// produce identical sequences and identical noise fields.
type RNG struct {
	seed  uint32
	state uint32
	perm  [512]uint8
}

// New returns a generator seeded with seed.
func New(seed uint32) *RNG {
	r := &RNG{}
	r.Seed(seed)
	return r
}

// Seed resets the state and rebuilds the permutation table.
func (r *RNG) Seed(seed uint32) {
	r.seed = seed
	r.state = seed

	var base [256]uint8
	for i := range base {
		base[i] = uint8(i)
	}
	// Fisher-Yates driven by the LCG itself.
	for i := 255; i > 0; i-- {
		j := int(r.Next() * float64(i+1))
		base[i], base[j] = base[j], base[i]
	}
	for i := 0; i < 256; i++ {
		r.perm[i] = base[i]
		r.perm[i+256] = base[i]
	}
}

// Next returns a float in [0,1).
func (r *RNG) Next() float64 {
	r.state = r.state*lcgMul + lcgInc // wraps mod 2^32
	return float64(r.state) / twoTo32
}

// Float returns a float in [lo,hi).
func (r *RNG) Float(lo, hi float64) float64 {
	return lo + r.Next()*(hi-lo)
}

// Int returns an integer in [lo,hi], both inclusive.
func (r *RNG) Int(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + int(r.Next()*float64(hi-lo+1))
}

// Chance returns true with probability p.
func (r *RNG) Chance(p float64) bool {
	return r.Next() < p
}

// Angle returns a random heading in [0, 2π).
func (r *RNG) Angle() float64 {
	return r.Next() * 2 * math.Pi
}

// SeedValue returns the seed the permutation table was built from.
func (r *RNG) SeedValue() uint32 { return r.seed }

// State returns the current LCG state.
func (r *RNG) State() uint32 { return r.state }

// Restore rebuilds the permutation table for seed and then resumes the
// sequence from state, so a restored generator continues exactly where the
// saved one stopped.
func (r *RNG) Restore(seed, state uint32) {
	r.Seed(seed)
	r.state = state
}

// fade applies the quintic 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad returns the dot product of a hashed corner gradient and (x,y).
func grad(hash uint8, x, y float64) float64 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}

// Noise2D samples improved Perlin noise at (x,y). The result is continuous,
// zero on integer lattice points and roughly within [-1,1].
func (r *RNG) Noise2D(x, y float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	xi := int(fx) & 255
	yi := int(fy) & 255
	xf := x - fx
	yf := y - fy

	u := fade(xf)
	v := fade(yf)

	p := &r.perm
	aa := p[int(p[xi])+yi]
	ab := p[int(p[xi])+yi+1]
	ba := p[int(p[xi+1])+yi]
	bb := p[int(p[xi+1])+yi+1]

	x1 := lerp(u, grad(aa, xf, yf), grad(ba, xf-1, yf))
	x2 := lerp(u, grad(ab, xf, yf-1), grad(bb, xf-1, yf-1))
	return lerp(v, x1, x2)
}
