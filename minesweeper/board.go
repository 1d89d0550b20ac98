package minesweeper

import (
	"fmt"

	"github.com/bcspragu/Minesweeper/grid"
)

// relocateAttempts is how many random cells MoveBomb tries before giving up
// and leaving the board one bomb short.
const relocateAttempts = 32

// CellType is what's hidden under a cell. The zero value is Empty, a Bomb is
// negative, and 1 through 8 are the number of bombs in the surrounding eight
// cells.
type CellType int

const (
	Bomb  CellType = -1
	Empty CellType = 0
)

// AdjacentCount returns the type for a cell next to n bombs. Zero bombs is
// Empty.
func AdjacentCount(n int) CellType {
	return CellType(n)
}

// IsBomb reports whether the cell is a bomb.
func (c CellType) IsBomb() bool {
	return c == Bomb
}

// Count is the number of neighbouring bombs for a counted cell, and zero for
// Empty and Bomb cells.
func (c CellType) Count() int {
	if c <= 0 {
		return 0
	}
	return int(c)
}

func (c CellType) String() string {
	switch {
	case c == Bomb:
		return "Bomb"
	case c == Empty:
		return "Empty"
	default:
		return fmt.Sprintf("AdjacentCount(%d)", int(c))
	}
}

func (c CellType) valid() bool {
	return c >= Bomb && c <= 8
}

// CellState is what the player has done to a cell.
type CellState int

const (
	Unopened CellState = iota
	Flagged
	Opened
)

func (c CellState) String() string {
	switch c {
	case Unopened:
		return "Unopened"
	case Flagged:
		return "Flagged"
	case Opened:
		return "Opened"
	}
	return fmt.Sprintf("CellState(%d)", int(c))
}

func (c CellState) valid() bool {
	return c >= Unopened && c <= Opened
}

// FlagResult is the outcome of toggling a flag.
type FlagResult int

const (
	FlagPlaced FlagResult = iota
	FlagRemoved
)

func (f FlagResult) String() string {
	if f == FlagPlaced {
		return "FlagPlaced"
	}
	return "FlagRemoved"
}

// OpenResult is the outcome of opening a cell.
type OpenResult int

const (
	BombHit OpenResult = iota
	OpenSpaceUncovered
	UnsafeSpaceUncovered
)

func (o OpenResult) String() string {
	switch o {
	case BombHit:
		return "BombHit"
	case OpenSpaceUncovered:
		return "OpenSpaceUncovered"
	case UnsafeSpaceUncovered:
		return "UnsafeSpaceUncovered"
	}
	return fmt.Sprintf("OpenResult(%d)", int(o))
}

// Board is the authoritative state of a game of Minesweeper: what's under
// every cell, and what the player has done to it. The two grids always have
// the same size, and every algorithm reads them together by position.
type Board struct {
	types  *grid.Grid[CellType]
	states *grid.Grid[CellState]

	// openedAny is set the first time any cell becomes Opened, so callers
	// can tell the first click apart without scanning the board.
	openedAny bool
}

// NewBoard returns a board with no bombs and every cell unopened.
func NewBoard(size grid.Size) *Board {
	return &Board{
		types:  grid.New(size, Empty),
		states: grid.New(size, Unopened),
	}
}

// WithBombs places count bombs at coordinates drawn from p and computes the
// adjacency counts. Draws that land on an existing bomb are not retried, so
// the board can end up with fewer than count bombs; BombCount reports how many
// were actually placed.
func WithBombs(size grid.Size, count int, p Picker) *Board {
	b := NewBoard(size)
	if size.Area() == 0 {
		return b
	}
	for i := 0; i < count; i++ {
		b.types.Set(p.Pick(size), Bomb)
	}
	b.RebuildAdjacency()
	return b
}

// FromBombs builds a board with bombs at exactly the given positions. Out of
// bounds positions are ignored.
func FromBombs(size grid.Size, bombs []grid.Coord) *Board {
	b := NewBoard(size)
	for _, pos := range bombs {
		b.types.Set(pos, Bomb)
	}
	b.RebuildAdjacency()
	return b
}

// Size returns the board dimensions.
func (b *Board) Size() grid.Size {
	b.mustMatch()
	return b.types.Size()
}

// CellType returns what's under the cell at pos, and false if pos is off the
// board.
func (b *Board) CellType(pos grid.Coord) (CellType, bool) {
	return b.types.Get(pos)
}

// CellState returns what the player has done to the cell at pos, and false if
// pos is off the board.
func (b *Board) CellState(pos grid.Coord) (CellState, bool) {
	return b.states.Get(pos)
}

// HasOpenedAny reports whether any cell has been opened on this board.
func (b *Board) HasOpenedAny() bool {
	return b.openedAny
}

// RebuildAdjacency recomputes the type of every non-bomb cell from the count
// of bombs among its eight neighbours.
func (b *Board) RebuildAdjacency() {
	b.mustMatch()
	size := b.types.Size()
	for _, pos := range size.Positions() {
		if t, _ := b.types.Get(pos); t == Bomb {
			continue
		}
		n := 0
		for _, t := range b.types.Neighbours(pos, grid.Full) {
			if t == Bomb {
				n++
			}
		}
		b.types.Set(pos, AdjacentCount(n))
	}
}

// ToggleFlag flags an unopened cell or unflags a flagged one. It has no
// effect, and returns false, if pos is off the board or the cell is open.
func (b *Board) ToggleFlag(pos grid.Coord) (FlagResult, bool) {
	state := b.states.At(pos)
	if state == nil {
		return 0, false
	}
	switch *state {
	case Unopened:
		*state = Flagged
		return FlagPlaced, true
	case Flagged:
		*state = Unopened
		return FlagRemoved, true
	}
	return 0, false
}

// Open opens an unopened cell. Opening an Empty cell flood fills the
// surrounding region. It has no effect, and returns false, if pos is off the
// board or the cell isn't Unopened.
func (b *Board) Open(pos grid.Coord) (OpenResult, bool) {
	state := b.states.At(pos)
	if state == nil || *state != Unopened {
		return 0, false
	}
	*state = Opened
	b.openedAny = true

	t, _ := b.types.Get(pos)
	switch {
	case t == Bomb:
		return BombHit, true
	case t == Empty:
		b.FloodUncoverEmpty(pos)
		return OpenSpaceUncovered, true
	default:
		return UnsafeSpaceUncovered, true
	}
}

// FloodUncoverEmpty opens the unopened, non-bomb cells reachable from start
// through orthogonal neighbours. Propagation only continues through Empty
// cells, and only if start itself is Empty; counted cells on the edge of the
// region are opened but go no further. Flagged cells are left alone.
func (b *Board) FloodUncoverEmpty(start grid.Coord) {
	startType, ok := b.types.Get(start)
	if !ok {
		return
	}
	fromBlank := startType == Empty

	size := b.types.Size()
	stack := []grid.Coord{start}
	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range size.NeighbourPositions(pos, grid.Orthogonal) {
			t, _ := b.types.Get(n)
			if t == Bomb {
				continue
			}
			state := b.states.At(n)
			if *state != Unopened {
				continue
			}
			*state = Opened
			b.openedAny = true

			if fromBlank && t == Empty {
				stack = append(stack, n)
			}
		}
	}
}

// MoveBomb moves the bomb at pos to a random empty cell chosen by p, then
// rebuilds adjacency. If no empty cell turns up within a fixed number of
// draws the bomb is dropped. If pos ends up Empty, the region around it is
// flood filled as if it had been opened normally. Nothing happens if pos
// isn't a bomb.
func (b *Board) MoveBomb(pos grid.Coord, p Picker) {
	if t, ok := b.types.Get(pos); !ok || t != Bomb {
		return
	}
	b.types.Set(pos, Empty)

	size := b.types.Size()
	for i := 0; i < relocateAttempts; i++ {
		cand := p.Pick(size)
		if cand == pos {
			continue
		}
		if t, ok := b.types.Get(cand); ok && t == Empty {
			b.types.Set(cand, Bomb)
			break
		}
	}

	b.RebuildAdjacency()

	if t, _ := b.types.Get(pos); t == Empty {
		b.FloodUncoverEmpty(pos)
	}
}

// HandleFirstClickBomb rescues a player whose very first open landed on a
// bomb, by moving the bomb somewhere else.
func (b *Board) HandleFirstClickBomb(pos grid.Coord, p Picker) {
	b.MoveBomb(pos, p)
}

// AreAllBombsFlagged reports whether the flagged cells are exactly the bomb
// cells.
func (b *Board) AreAllBombsFlagged() bool {
	b.mustMatch()
	for _, pos := range b.types.Size().Positions() {
		t, _ := b.types.Get(pos)
		s, _ := b.states.Get(pos)
		if (s == Flagged) != (t == Bomb) {
			return false
		}
	}
	return true
}

// UncoverAll opens every cell that isn't flagged, used when the game ends.
func (b *Board) UncoverAll() {
	b.states.EachPtr(func(_ grid.Coord, s *CellState) {
		if *s != Flagged {
			*s = Opened
			b.openedAny = true
		}
	})
}

// BombCount is the number of bombs on the board.
func (b *Board) BombCount() int {
	return b.types.Count(CellType.IsBomb)
}

// FlagCount is the number of flagged cells.
func (b *Board) FlagCount() int {
	return b.states.Count(func(s CellState) bool { return s == Flagged })
}

// BombsRemaining is the bomb count minus the flag count, which goes negative
// when the player over-flags.
func (b *Board) BombsRemaining() int {
	return b.BombCount() - b.FlagCount()
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	return &Board{
		types:     b.types.Clone(),
		states:    b.states.Clone(),
		openedAny: b.openedAny,
	}
}

// Equal reports whether two boards have the same size, types and states.
func (b *Board) Equal(o *Board) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Size() != o.Size() || b.openedAny != o.openedAny {
		return false
	}
	bt, ot := b.types.Values(), o.types.Values()
	bs, os := b.states.Values(), o.states.Values()
	for i := range bt {
		if bt[i] != ot[i] || bs[i] != os[i] {
			return false
		}
	}
	return true
}

func (b *Board) mustMatch() {
	if b.types.Size() != b.states.Size() {
		panic(fmt.Sprintf("minesweeper: type grid %+v and state grid %+v differ in size", b.types.Size(), b.states.Size()))
	}
}
