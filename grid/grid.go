// Package grid implements a fixed-size, dense, two-dimensional container
// addressed by integer coordinates.
package grid

// Coord is a position on a grid. X grows to the right, Y grows downwards.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the coordinate offset by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{X: c.X + d.X, Y: c.Y + d.Y}
}

// Size is the width and height of a grid.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area is the number of cells in a grid of this size. Non-positive
// dimensions have no cells.
func (s Size) Area() int {
	if s.Width <= 0 || s.Height <= 0 {
		return 0
	}
	return s.Width * s.Height
}

// Contains reports whether c lies in [0,Width)x[0,Height).
func (s Size) Contains(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < s.Width && c.Y < s.Height
}

// Positions returns every coordinate of the size in row-major order.
func (s Size) Positions() []Coord {
	out := make([]Coord, 0, s.Area())
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

// Neighbours selects which cells count as adjacent.
type Neighbours int

const (
	// Orthogonal is the four cells sharing an edge.
	Orthogonal Neighbours = iota
	// Full is the eight cells sharing an edge or a corner.
	Full
)

var (
	orthogonalDeltas = []Coord{
		{0, -1},
		{0, 1},
		{-1, 0},
		{1, 0},
	}

	fullDeltas = []Coord{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}
)

func (n Neighbours) deltas() []Coord {
	if n == Full {
		return fullDeltas
	}
	return orthogonalDeltas
}

// NeighbourPositions returns the in-bounds neighbours of c for a grid of the
// given size. The order is fixed: for Full it's up-left, up, up-right, left,
// right, down-left, down, down-right; for Orthogonal it's up, down, left,
// right.
func (s Size) NeighbourPositions(c Coord, kind Neighbours) []Coord {
	deltas := kind.deltas()
	out := make([]Coord, 0, len(deltas))
	for _, d := range deltas {
		if p := c.Add(d); s.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Grid is a row-major store of exactly Size.Area() values. The size never
// changes; build a new Grid to resize.
type Grid[T any] struct {
	data []T
	size Size
}

// New returns a grid with every cell set to value.
func New[T any](size Size, value T) *Grid[T] {
	g := &Grid[T]{
		data: make([]T, size.Area()),
		size: size,
	}
	for i := range g.data {
		g.data[i] = value
	}
	return g
}

// NewWith returns a grid whose cells are produced by calling fn once per
// coordinate, in row-major order.
func NewWith[T any](size Size, fn func(Coord) T) *Grid[T] {
	g := &Grid[T]{
		data: make([]T, 0, size.Area()),
		size: size,
	}
	for _, pos := range size.Positions() {
		g.data = append(g.data, fn(pos))
	}
	return g
}

// FromSlice wraps a copy of data, which must hold exactly size.Area() values.
func FromSlice[T any](size Size, data []T) (*Grid[T], bool) {
	if len(data) != size.Area() {
		return nil, false
	}
	g := &Grid[T]{
		data: make([]T, len(data)),
		size: size,
	}
	copy(g.data, data)
	return g, true
}

// Size returns the dimensions the grid was built with.
func (g *Grid[T]) Size() Size {
	return g.size
}

// Len is the number of stored cells.
func (g *Grid[T]) Len() int {
	return len(g.data)
}

// InBounds reports whether c addresses a stored cell.
func (g *Grid[T]) InBounds(c Coord) bool {
	return g.size.Contains(c)
}

func (g *Grid[T]) index(c Coord) int {
	return c.X + c.Y*g.size.Width
}

// Get returns the value at c, and false if c is out of bounds.
func (g *Grid[T]) Get(c Coord) (T, bool) {
	if !g.InBounds(c) {
		var zero T
		return zero, false
	}
	return g.data[g.index(c)], true
}

// At returns a pointer to the value at c, or nil if c is out of bounds.
func (g *Grid[T]) At(c Coord) *T {
	if !g.InBounds(c) {
		return nil
	}
	return &g.data[g.index(c)]
}

// Set stores value at c. Out of bounds coordinates are ignored.
func (g *Grid[T]) Set(c Coord, value T) {
	if p := g.At(c); p != nil {
		*p = value
	}
}

// Values returns a copy of every value in row-major order.
func (g *Grid[T]) Values() []T {
	out := make([]T, len(g.data))
	copy(out, g.data)
	return out
}

// Each calls fn with every coordinate and its value, in row-major order.
func (g *Grid[T]) Each(fn func(Coord, T)) {
	for i, v := range g.data {
		fn(g.coord(i), v)
	}
}

// EachPtr is like Each, but hands out pointers so fn can update cells in
// place.
func (g *Grid[T]) EachPtr(fn func(Coord, *T)) {
	for i := range g.data {
		fn(g.coord(i), &g.data[i])
	}
}

func (g *Grid[T]) coord(i int) Coord {
	return Coord{X: i % g.size.Width, Y: i / g.size.Width}
}

// Neighbours returns the values of the in-bounds neighbours of c, in the
// order given by Size.NeighbourPositions.
func (g *Grid[T]) Neighbours(c Coord, kind Neighbours) []T {
	pos := g.size.NeighbourPositions(c, kind)
	out := make([]T, 0, len(pos))
	for _, p := range pos {
		out = append(out, g.data[g.index(p)])
	}
	return out
}

// Count returns how many cells satisfy pred.
func (g *Grid[T]) Count(pred func(T) bool) int {
	n := 0
	for _, v := range g.data {
		if pred(v) {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the grid.
func (g *Grid[T]) Clone() *Grid[T] {
	out, _ := FromSlice(g.size, g.data)
	return out
}
