package game

import (
	"errors"
	"fmt"

	"github.com/bcspragu/Minesweeper/grid"
	"github.com/bcspragu/Minesweeper/minesweeper"
)

// ErrQuit is returned by a Player that wants to stop playing.
var ErrQuit = errors.New("player quit")

// Game is a game of Minesweeper in progress. The board only knows how cells
// change; Game adds the rules around it: the first open is never a loss, a
// bomb after that is, and flagging exactly the bombs wins. Either ending opens
// the rest of the board.
type Game struct {
	b      *minesweeper.Board
	p      minesweeper.Picker
	status minesweeper.GameStatus
}

// Player picks the next move given the current board. Returning a nil move
// asks for a fresh board, and ErrQuit ends the game.
type Player interface {
	NextMove(*minesweeper.Board) (*Move, error)
}

// New starts a game on b. p is used to relocate a bomb hit on the first open.
func New(b *minesweeper.Board, p minesweeper.Picker) *Game {
	return &Game{
		b:      b,
		p:      p,
		status: minesweeper.Playing,
	}
}

// NewForMove resumes a stored game, so a single move can be applied to it.
func NewForMove(g *minesweeper.Game, p minesweeper.Picker) (*Game, error) {
	if g.Board == nil {
		return nil, fmt.Errorf("game %q has no board", g.ID)
	}
	status := g.Status
	if status == minesweeper.NoStatus {
		status = minesweeper.Playing
	}
	return &Game{
		b:      g.Board,
		p:      p,
		status: status,
	}, nil
}

func (g *Game) Board() *minesweeper.Board {
	return g.b
}

func (g *Game) Status() minesweeper.GameStatus {
	return g.status
}

type Action string

const (
	ActionOpen = Action("OPEN")
	ActionFlag = Action("FLAG")
)

type Move struct {
	Action Action
	Pos    grid.Coord
}

// Response describes what a move did to the board.
type Response string

const (
	// NoEffect means the move targeted an off-board or already opened cell.
	NoEffect             = Response("NONE")
	BombHit              = Response("BOMB_HIT")
	FlagPlaced           = Response("FLAG_PLACED")
	FlagRemoved          = Response("FLAG_REMOVED")
	OpenSpaceUncovered   = Response("OPEN_SPACE_UNCOVERED")
	UnsafeSpaceUncovered = Response("UNSAFE_SPACE_UNCOVERED")
)

var openResponses = map[minesweeper.OpenResult]Response{
	minesweeper.BombHit:              BombHit,
	minesweeper.OpenSpaceUncovered:   OpenSpaceUncovered,
	minesweeper.UnsafeSpaceUncovered: UnsafeSpaceUncovered,
}

var flagResponses = map[minesweeper.FlagResult]Response{
	minesweeper.FlagPlaced:  FlagPlaced,
	minesweeper.FlagRemoved: FlagRemoved,
}

type Result struct {
	Pos      grid.Coord
	Response Response
	Status   minesweeper.GameStatus
}

// Move applies a single move.
func (g *Game) Move(mv *Move) (*Result, error) {
	if g.status.Finished() {
		return nil, minesweeper.ErrGameOver
	}

	var resp Response
	switch mv.Action {
	case ActionOpen:
		resp = g.open(mv.Pos)
	case ActionFlag:
		resp = g.flag(mv.Pos)
	default:
		return nil, fmt.Errorf("unknown action %q", mv.Action)
	}

	return &Result{
		Pos:      mv.Pos,
		Response: resp,
		Status:   g.status,
	}, nil
}

func (g *Game) open(pos grid.Coord) Response {
	first := !g.b.HasOpenedAny()

	res, ok := g.b.Open(pos)
	if !ok {
		return NoEffect
	}

	if res != minesweeper.BombHit {
		return openResponses[res]
	}

	if first {
		g.b.HandleFirstClickBomb(pos, g.p)
		if t, _ := g.b.CellType(pos); t == minesweeper.Empty {
			return OpenSpaceUncovered
		}
		return UnsafeSpaceUncovered
	}

	g.status = minesweeper.Lost
	g.b.UncoverAll()
	return BombHit
}

func (g *Game) flag(pos grid.Coord) Response {
	res, ok := g.b.ToggleFlag(pos)
	if !ok {
		return NoEffect
	}

	if res == minesweeper.FlagPlaced && g.b.AreAllBombsFlagged() {
		g.status = minesweeper.Won
		g.b.UncoverAll()
	}
	return flagResponses[res]
}

type Outcome struct {
	Status minesweeper.GameStatus
	// Reset is true if the player asked for a new board before the game
	// ended.
	Reset bool
	Moves int
}

// Play asks pl for moves until the game is won or lost, the player resets, or
// the player quits.
func (g *Game) Play(pl Player) (*Outcome, error) {
	out := &Outcome{}
	for !g.status.Finished() {
		mv, err := pl.NextMove(g.b)
		if errors.Is(err, ErrQuit) {
			out.Status = g.status
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("NextMove: %w", err)
		}
		if mv == nil {
			out.Status = g.status
			out.Reset = true
			return out, nil
		}

		if _, err := g.Move(mv); err != nil {
			return nil, fmt.Errorf("Move(%+v): %w", mv, err)
		}
		out.Moves++
	}
	out.Status = g.status
	return out, nil
}
