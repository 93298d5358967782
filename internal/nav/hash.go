package nav

import "math"

// cellOffset keeps packed cell keys non-negative for coordinates down to
// -500 cells.
const cellOffset = 500

// Body is anything the spatial hash can bucket.
type Body interface {
	Pos() (x, z float64)
	Alive() bool
}

// Hash is a uniform-grid broad phase. It is rebuilt from scratch every tick:
// Clear, then Insert each body once.
type Hash[T Body] struct {
	cellSize float64
	cells    map[int32][]T
}

// NewHash returns an empty hash with the given cell size.
func NewHash[T Body](cellSize float64) *Hash[T] {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Hash[T]{cellSize: cellSize, cells: make(map[int32][]T)}
}

// CellSize returns the bucket width in world units.
func (h *Hash[T]) CellSize() float64 { return h.cellSize }

func cellKey(cx, cz int) int32 {
	return int32((cx+cellOffset)<<16 | (cz + cellOffset))
}

func (h *Hash[T]) cell(v float64) int {
	return int(math.Floor(v / h.cellSize))
}

// Clear empties every bucket, keeping their backing arrays for reuse.
func (h *Hash[T]) Clear() {
	for k, b := range h.cells {
		clear(b)
		h.cells[k] = b[:0]
	}
}

// Insert adds a living body to the bucket under its position.
func (h *Hash[T]) Insert(b T) {
	if !b.Alive() {
		return
	}
	x, z := b.Pos()
	k := cellKey(h.cell(x), h.cell(z))
	h.cells[k] = append(h.cells[k], b)
}

// Query returns every body in cells overlapping the square of half-width r
// around (x,z). Results are not distance filtered.
func (h *Hash[T]) Query(x, z, r float64) []T {
	return h.QueryInto(nil, x, z, r)
}

// QueryInto appends Query's results to dst.
func (h *Hash[T]) QueryInto(dst []T, x, z, r float64) []T {
	x0, x1 := h.cell(x-r), h.cell(x+r)
	z0, z1 := h.cell(z-r), h.cell(z+r)
	for cx := x0; cx <= x1; cx++ {
		for cz := z0; cz <= z1; cz++ {
			dst = append(dst, h.cells[cellKey(cx, cz)]...)
		}
	}
	return dst
}

// Len counts inserted bodies.
func (h *Hash[T]) Len() int {
	n := 0
	for _, b := range h.cells {
		n += len(b)
	}
	return n
}
