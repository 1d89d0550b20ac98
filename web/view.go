package web

import (
	"github.com/bcspragu/Minesweeper/grid"
	"github.com/bcspragu/Minesweeper/minesweeper"
)

// CellState is the JSON form of minesweeper.CellState.
type CellState string

const (
	Unopened = CellState("unopened")
	Flagged  = CellState("flagged")
	Opened   = CellState("opened")
)

var toCellState = map[minesweeper.CellState]CellState{
	minesweeper.Unopened: Unopened,
	minesweeper.Flagged:  Flagged,
	minesweeper.Opened:   Opened,
}

var fromCellState = map[CellState]minesweeper.CellState{
	Unopened: minesweeper.Unopened,
	Flagged:  minesweeper.Flagged,
	Opened:   minesweeper.Opened,
}

// Cell is what a player is allowed to know about a single cell. Bomb and
// Count are only ever set once the cell has been opened.
type Cell struct {
	State CellState `json:"state"`
	Bomb  bool      `json:"bomb"`
	Count int       `json:"count"`
}

// GameView is a game as seen by players and watchers. Unlike
// minesweeper.Game, it never says what's under a cell that hasn't been opened.
type GameView struct {
	ID        minesweeper.GameID     `json:"id"`
	CreatedBy minesweeper.UserID     `json:"created_by"`
	Status    minesweeper.GameStatus `json:"status"`
	Bombs     int                    `json:"bombs"`
	// BombsRemaining is the number of bombs minus the number of flags. It can
	// be negative.
	BombsRemaining int       `json:"bombs_remaining"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Cells          [][]*Cell `json:"cells"`
}

func newGameView(g *minesweeper.Game) *GameView {
	b := g.Board
	size := b.Size()

	cells := make([][]*Cell, size.Height)
	for y := range cells {
		cells[y] = make([]*Cell, size.Width)
		for x := range cells[y] {
			pos := grid.Coord{X: x, Y: y}
			st, _ := b.CellState(pos)
			c := &Cell{State: toCellState[st]}
			if st == minesweeper.Opened {
				t, _ := b.CellType(pos)
				c.Bomb = t.IsBomb()
				c.Count = t.Count()
			}
			cells[y][x] = c
		}
	}

	return &GameView{
		ID:             g.ID,
		CreatedBy:      g.CreatedBy,
		Status:         g.Status,
		Bombs:          b.BombCount(),
		BombsRemaining: b.BombsRemaining(),
		Width:          size.Width,
		Height:         size.Height,
		Cells:          cells,
	}
}

func (gv *GameView) cell(pos grid.Coord) *Cell {
	if pos.X < 0 || pos.Y < 0 || pos.Y >= len(gv.Cells) || pos.X >= len(gv.Cells[pos.Y]) {
		return nil
	}
	return gv.Cells[pos.Y][pos.X]
}

// Size, CellType and CellState let a GameView be rendered like a board.

func (gv *GameView) Size() grid.Size {
	return grid.Size{Width: gv.Width, Height: gv.Height}
}

// CellType is only meaningful for opened cells, everything else reports
// Empty.
func (gv *GameView) CellType(pos grid.Coord) (minesweeper.CellType, bool) {
	c := gv.cell(pos)
	if c == nil {
		return 0, false
	}
	if c.Bomb {
		return minesweeper.Bomb, true
	}
	return minesweeper.AdjacentCount(c.Count), true
}

func (gv *GameView) CellState(pos grid.Coord) (minesweeper.CellState, bool) {
	c := gv.cell(pos)
	if c == nil {
		return 0, false
	}
	st, ok := fromCellState[c.State]
	return st, ok
}
