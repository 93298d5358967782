// Package nav provides grid pathfinding over the overworld terrain and the
// spatial hash used as a broad phase by combat and world queries.
package nav

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/KesselZ/HeroHour-sub000/internal/simlog"
	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
)

const (
	// Clearance is the footprint radius a cell must fit to be walkable.
	Clearance = 0.3
	// MaxIterations bounds one A* search; past it the best partial path is returned.
	MaxIterations = 5000
	// DirectRange is the longest distance tried with the straight-line shortcut.
	DirectRange = 30.0
)

// Point is an integer grid coordinate.
type Point struct {
	X, Z int
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Z) }

// Heuristic estimates the remaining cost between two grid cells.
type Heuristic func(dx, dz int) float32

// Chebyshev is max(|dx|,|dz|). It underestimates diagonal runs, which keeps
// the path shapes the game has always had.
func Chebyshev(dx, dz int) float32 {
	return float32(max(abs(dx), abs(dz)))
}

// Octile is the exact cost of an unobstructed 8-way move.
func Octile(dx, dz int) float32 {
	ax, az := abs(dx), abs(dz)
	return float32(max(ax, az)) + float32(math.Sqrt2-1)*float32(min(ax, az))
}

// HeuristicByName maps a config value to a heuristic. Unknown names get Chebyshev.
func HeuristicByName(name string) Heuristic {
	if name == "octile" {
		return Octile
	}
	return Chebyshev
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

const (
	unvisited uint8 = iota
	open
	closed
)

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Stats counts pathfinder outcomes since construction.
type Stats struct {
	Calls     int
	Direct    int // answered by the straight-line shortcut
	Partial   int // iteration cap hit, best-effort path returned
	Failed    int // nil returned
	Expanded  int // nodes expanded by the most recent A* search
	TotalIter int
}

// Pathfinder runs A* over a terrain grid. Scratch buffers are allocated once
// and reset on every call, so a Pathfinder is not safe for concurrent use.
type Pathfinder struct {
	grid     *terrain.Grid
	size     int
	walkable []bool

	g       []float32
	f       []float32
	came    []int32
	heapIdx []int32
	visited []uint8
	open    openList

	heuristic     Heuristic
	maxIterations int
	directRange   float64

	stats Stats
	log   *simlog.Log
	tick  int
}

// Option configures a Pathfinder.
type Option func(*Pathfinder)

// WithHeuristic replaces the default Chebyshev heuristic.
func WithHeuristic(h Heuristic) Option {
	return func(p *Pathfinder) {
		if h != nil {
			p.heuristic = h
		}
	}
}

// WithMaxIterations overrides the expansion cap.
func WithMaxIterations(n int) Option {
	return func(p *Pathfinder) {
		if n > 0 {
			p.maxIterations = n
		}
	}
}

// WithDirectRange overrides the straight-line shortcut distance. Zero disables it.
func WithDirectRange(d float64) Option {
	return func(p *Pathfinder) { p.directRange = d }
}

// WithLog records failures and partial results.
func WithLog(l *simlog.Log) Option {
	return func(p *Pathfinder) { p.log = l }
}

// NewPathfinder builds the walkable mask for grid and allocates scratch space.
func NewPathfinder(grid *terrain.Grid, opts ...Option) *Pathfinder {
	n := grid.Size * grid.Size
	p := &Pathfinder{
		grid:          grid,
		size:          grid.Size,
		walkable:      make([]bool, n),
		g:             make([]float32, n),
		f:             make([]float32, n),
		came:          make([]int32, n),
		heapIdx:       make([]int32, n),
		visited:       make([]uint8, n),
		heuristic:     Chebyshev,
		maxIterations: MaxIterations,
		directRange:   DirectRange,
	}
	p.open.pf = p
	for _, o := range opts {
		o(p)
	}
	p.Refresh()
	return p
}

// Refresh recomputes the walkable mask. Call after terrain overrides.
func (p *Pathfinder) Refresh() {
	for gz := 0; gz < p.size; gz++ {
		for gx := 0; gx < p.size; gx++ {
			wx, wz := p.grid.GridToWorld(gx, gz)
			p.walkable[gz*p.size+gx] = p.grid.At(gx, gz) == terrain.TileGrass &&
				p.grid.IsPassable(wx, wz, Clearance)
		}
	}
}

// SetTick stamps subsequent log entries.
func (p *Pathfinder) SetTick(tick int) { p.tick = tick }

// Stats returns outcome counters.
func (p *Pathfinder) Stats() Stats { return p.stats }

// Walkable reports whether a unit can stand on cell pt.
func (p *Pathfinder) Walkable(pt Point) bool {
	if pt.X < 0 || pt.Z < 0 || pt.X >= p.size || pt.Z >= p.size {
		return false
	}
	return p.walkable[pt.Z*p.size+pt.X]
}

func (p *Pathfinder) index(pt Point) int32 { return int32(pt.Z*p.size + pt.X) }

func (p *Pathfinder) point(i int32) Point {
	return Point{X: int(i) % p.size, Z: int(i) / p.size}
}

// FindPath returns the cells from start (exclusive) to end (inclusive), or
// nil when end is not walkable or unreachable. start == end yields an empty,
// non-nil path. When the search exhausts its iteration budget the path leads
// to the explored cell closest to end instead.
func (p *Pathfinder) FindPath(start, end Point) []Point {
	p.stats.Calls++
	if !p.Walkable(end) {
		p.fail(start, end, "end blocked")
		return nil
	}
	if start == end {
		return []Point{}
	}

	dx, dz := float64(end.X-start.X), float64(end.Z-start.Z)
	if d := math.Hypot(dx, dz); d <= p.directRange {
		if path := p.directPath(start, end, d); path != nil {
			p.stats.Direct++
			return path
		}
	}
	return p.search(start, end)
}

// directPath samples the straight segment at ceil(d) points and returns them
// if all are walkable.
func (p *Pathfinder) directPath(start, end Point, d float64) []Point {
	n := int(math.Ceil(d))
	path := make([]Point, 0, n)
	prev := start
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		pt := Point{
			X: int(math.Round(float64(start.X) + float64(end.X-start.X)*t)),
			Z: int(math.Round(float64(start.Z) + float64(end.Z-start.Z)*t)),
		}
		if pt == prev {
			continue
		}
		if !p.Walkable(pt) {
			return nil
		}
		path = append(path, pt)
		prev = pt
	}
	return path
}

func (p *Pathfinder) reset() {
	inf := float32(math.Inf(1))
	for i := range p.g {
		p.g[i] = inf
		p.f[i] = inf
		p.came[i] = -1
		p.heapIdx[i] = -1
		p.visited[i] = unvisited
	}
	p.open.nodes = p.open.nodes[:0]
}

func (p *Pathfinder) search(start, end Point) []Point {
	p.reset()
	if start.X < 0 || start.Z < 0 || start.X >= p.size || start.Z >= p.size {
		p.fail(start, end, "start off grid")
		return nil
	}

	si, ei := p.index(start), p.index(end)
	h0 := p.heuristic(end.X-start.X, end.Z-start.Z)
	p.g[si] = 0
	p.f[si] = h0
	p.visited[si] = open
	heap.Push(&p.open, si)

	best, bestH := si, h0
	iter := 0
	for p.open.Len() > 0 {
		if iter >= p.maxIterations {
			p.stats.Partial++
			p.stats.Expanded = iter
			p.stats.TotalIter += iter
			p.log.AddVerbose(p.tick, "", "", "path", "partial",
				fmt.Sprintf("%v->%v best %v", start, end, p.point(best)), float64(iter))
			return p.reconstruct(best, si)
		}
		iter++

		cur := heap.Pop(&p.open).(int32)
		if cur == ei {
			p.stats.Expanded = iter
			p.stats.TotalIter += iter
			return p.reconstruct(cur, si)
		}
		p.visited[cur] = closed
		cp := p.point(cur)

		for _, d := range dirs {
			np := Point{X: cp.X + d[0], Z: cp.Z + d[1]}
			if !p.Walkable(np) {
				continue
			}
			diagonal := d[0] != 0 && d[1] != 0
			if diagonal {
				if !p.Walkable(Point{X: cp.X + d[0], Z: cp.Z}) || !p.Walkable(Point{X: cp.X, Z: cp.Z + d[1]}) {
					continue
				}
			}
			ni := p.index(np)
			if p.visited[ni] == closed {
				continue
			}
			cost := float32(1)
			if diagonal {
				cost = math.Sqrt2
			}
			ng := p.g[cur] + cost
			if ng >= p.g[ni] {
				continue
			}
			h := p.heuristic(end.X-np.X, end.Z-np.Z)
			p.came[ni] = cur
			p.g[ni] = ng
			p.f[ni] = ng + h
			if h < bestH {
				best, bestH = ni, h
			}
			if p.visited[ni] == open {
				heap.Fix(&p.open, int(p.heapIdx[ni]))
			} else {
				p.visited[ni] = open
				heap.Push(&p.open, ni)
			}
		}
	}

	p.stats.Expanded = iter
	p.stats.TotalIter += iter
	p.fail(start, end, "unreachable")
	return nil
}

func (p *Pathfinder) reconstruct(from, start int32) []Point {
	path := []Point{}
	for i := from; i != start && i >= 0; i = p.came[i] {
		path = append(path, p.point(i))
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

func (p *Pathfinder) fail(start, end Point, reason string) {
	p.stats.Failed++
	p.log.AddVerbose(p.tick, "", "", "path", "fail",
		fmt.Sprintf("%v->%v %s", start, end, reason), 0)
}

// openList is a binary min-heap of node indices ordered by f. Each node's
// position is mirrored in heapIdx so decrease-key can use heap.Fix.
type openList struct {
	pf    *Pathfinder
	nodes []int32
}

func (ol *openList) Len() int { return len(ol.nodes) }
func (ol *openList) Less(i, j int) bool {
	return ol.pf.f[ol.nodes[i]] < ol.pf.f[ol.nodes[j]]
}
func (ol *openList) Swap(i, j int) {
	ol.nodes[i], ol.nodes[j] = ol.nodes[j], ol.nodes[i]
	ol.pf.heapIdx[ol.nodes[i]] = int32(i)
	ol.pf.heapIdx[ol.nodes[j]] = int32(j)
}
func (ol *openList) Push(x any) {
	n := x.(int32)
	ol.pf.heapIdx[n] = int32(len(ol.nodes))
	ol.nodes = append(ol.nodes, n)
}
func (ol *openList) Pop() any {
	old := ol.nodes
	n := old[len(old)-1]
	ol.nodes = old[:len(old)-1]
	ol.pf.heapIdx[n] = -1
	return n
}
