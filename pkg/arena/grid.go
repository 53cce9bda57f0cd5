package arena

import "math"

// DefaultCellSize is the grid cell edge used when none is given.
const DefaultCellSize = 64.0

// Grid is a uniform bucket grid over the arena holding item indices by the
// cell of the item's center. It is built once per snapshot and is read-only
// afterward, so concurrent queries are safe.
//
// Cells are stored flat: the members of cell c are
// order[start[c]:start[c+1]].
type Grid struct {
	cellSize  float64
	cols      int
	rows      int
	start     []int32
	order     []int32
	items     []Item
	maxRadius float64
}

// NewGrid buckets items over a width x height arena.
func NewGrid(width, height float64, items []Item, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	g := &Grid{
		cellSize: cellSize,
		cols:     max(1, int(math.Ceil(width/cellSize))),
		rows:     max(1, int(math.Ceil(height/cellSize))),
		items:    items,
	}

	cellOf := make([]int32, len(items))
	counts := make([]int32, g.cols*g.rows+1)
	for i, it := range items {
		c := g.cellIndex(g.col(it.Pos.X), g.row(it.Pos.Y))
		cellOf[i] = int32(c)
		counts[c+1]++
		if it.Radius > g.maxRadius {
			g.maxRadius = it.Radius
		}
	}
	for c := 1; c < len(counts); c++ {
		counts[c] += counts[c-1]
	}
	g.start = counts

	g.order = make([]int32, len(items))
	fill := make([]int32, g.cols*g.rows)
	copy(fill, counts[:len(fill)])
	for i, c := range cellOf {
		g.order[fill[c]] = int32(i)
		fill[c]++
	}
	return g
}

// GridFor builds a grid over the items of gs.
func GridFor(gs *GameState) *Grid {
	return NewGrid(gs.Width, gs.Height, gs.Items, DefaultCellSize)
}

// Items returns the indexed items. Callers must not modify the slice.
func (g *Grid) Items() []Item { return g.items }

// Len returns the number of indexed items.
func (g *Grid) Len() int { return len(g.items) }

// Candidates appends to dst every item index bucketed in a cell that a disk
// of the given center and radius could reach. The result is a superset of
// the intersecting items.
func (g *Grid) Candidates(pos Point, radius float64, dst []int) []int {
	g.visit(pos, radius, func(i int32) {
		dst = append(dst, int(i))
	})
	return dst
}

// Query appends to dst the index of every item whose disk intersects the disk
// of the given center and radius.
func (g *Grid) Query(pos Point, radius float64, dst []int) []int {
	g.visit(pos, radius, func(i int32) {
		if g.items[i].Intersects(pos, radius) {
			dst = append(dst, int(i))
		}
	})
	return dst
}

// QueryPlayer is Query for p's disk.
func (g *Grid) QueryPlayer(p *Player, dst []int) []int {
	return g.Query(p.Pos, p.Radius, dst)
}

func (g *Grid) visit(pos Point, radius float64, fn func(int32)) {
	if len(g.items) == 0 {
		return
	}
	reach := radius + g.maxRadius
	c0, c1 := g.col(pos.X-reach), g.col(pos.X+reach)
	r0, r1 := g.row(pos.Y-reach), g.row(pos.Y+reach)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			cell := g.cellIndex(c, r)
			for _, i := range g.order[g.start[cell]:g.start[cell+1]] {
				fn(i)
			}
		}
	}
}

func (g *Grid) col(x float64) int { return clampCell(x/g.cellSize, g.cols) }
func (g *Grid) row(y float64) int { return clampCell(y/g.cellSize, g.rows) }

func (g *Grid) cellIndex(c, r int) int { return r*g.cols + c }

// clampCell maps a fractional cell coordinate into [0, n-1]. NaN maps to 0.
func clampCell(v float64, n int) int {
	if !(v >= 0) {
		return 0
	}
	if v >= float64(n) {
		return n - 1
	}
	return int(v)
}
