package game

import (
	"errors"
	"testing"

	"github.com/bcspragu/Minesweeper/grid"
	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/google/go-cmp/cmp"
)

func at(x, y int) grid.Coord {
	return grid.Coord{X: x, Y: y}
}

func open(x, y int) *Move {
	return &Move{Action: ActionOpen, Pos: at(x, y)}
}

func flag(x, y int) *Move {
	return &Move{Action: ActionFlag, Pos: at(x, y)}
}

// fixedPicker always picks the same cell.
func fixedPicker(c grid.Coord) minesweeper.Picker {
	return minesweeper.PickerFunc(func(grid.Size) grid.Coord { return c })
}

// noPicker fails the test if a bomb ever needs relocating.
func noPicker(t *testing.T) minesweeper.Picker {
	return minesweeper.PickerFunc(func(grid.Size) grid.Coord {
		t.Fatal("unexpected bomb relocation")
		return grid.Coord{}
	})
}

func newBoard(w, h int, bombs ...grid.Coord) *minesweeper.Board {
	return minesweeper.FromBombs(grid.Size{Width: w, Height: h}, bombs)
}

func mustMove(t *testing.T, g *Game, mv *Move) *Result {
	t.Helper()
	res, err := g.Move(mv)
	if err != nil {
		t.Fatalf("Move(%+v): %v", mv, err)
	}
	return res
}

func allOpenedExceptFlags(t *testing.T, b *minesweeper.Board) {
	t.Helper()
	for _, pos := range b.Size().Positions() {
		if s, _ := b.CellState(pos); s == minesweeper.Unopened {
			t.Errorf("cell %+v is still unopened", pos)
		}
	}
}

func TestFirstClickOnBomb(t *testing.T) {
	b := newBoard(3, 3, at(0, 0))
	g := New(b, fixedPicker(at(2, 2)))

	got := mustMove(t, g, open(0, 0))
	want := &Result{
		Pos:      at(0, 0),
		Response: OpenSpaceUncovered,
		Status:   minesweeper.Playing,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected result (-want +got)\n%s", diff)
	}

	if ct, _ := b.CellType(at(0, 0)); ct.IsBomb() {
		t.Error("clicked cell is still a bomb")
	}
	if ct, _ := b.CellType(at(2, 2)); !ct.IsBomb() {
		t.Errorf("relocated cell is %v, want a bomb", ct)
	}
}

func TestFirstClickOnBomb_NextToBombs(t *testing.T) {
	// B B 1 .
	b := newBoard(4, 1, at(0, 0), at(1, 0))
	g := New(b, fixedPicker(at(3, 0)))

	got := mustMove(t, g, open(0, 0))
	if got.Response != UnsafeSpaceUncovered || got.Status != minesweeper.Playing {
		t.Errorf("got %s / %s, want UNSAFE_SPACE_UNCOVERED / PLAYING", got.Response, got.Status)
	}
}

func TestSecondClickOnBombLoses(t *testing.T) {
	// . . 1 B
	b := newBoard(4, 1, at(3, 0))
	g := New(b, noPicker(t))

	if res := mustMove(t, g, open(2, 0)); res.Response != UnsafeSpaceUncovered {
		t.Fatalf("first open = %s, want UNSAFE_SPACE_UNCOVERED", res.Response)
	}

	mustMove(t, g, flag(0, 0))

	got := mustMove(t, g, open(3, 0))
	if got.Response != BombHit || got.Status != minesweeper.Lost {
		t.Errorf("got %s / %s, want BOMB_HIT / LOST", got.Response, got.Status)
	}
	if g.Status() != minesweeper.Lost {
		t.Errorf("Status() = %s, want LOST", g.Status())
	}

	// Everything is shown except what was flagged.
	want := []minesweeper.CellState{minesweeper.Flagged, minesweeper.Opened, minesweeper.Opened, minesweeper.Opened}
	var states []minesweeper.CellState
	for x := 0; x < 4; x++ {
		s, _ := b.CellState(at(x, 0))
		states = append(states, s)
	}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Errorf("unexpected states (-want +got)\n%s", diff)
	}

	if _, err := g.Move(open(1, 0)); !errors.Is(err, minesweeper.ErrGameOver) {
		t.Errorf("Move after loss = %v, want ErrGameOver", err)
	}
}

func TestFlaggingAllBombsWins(t *testing.T) {
	b := newBoard(3, 3, at(0, 0), at(2, 2))
	g := New(b, noPicker(t))

	if res := mustMove(t, g, flag(0, 0)); res.Response != FlagPlaced || res.Status != minesweeper.Playing {
		t.Fatalf("got %s / %s, want FLAG_PLACED / PLAYING", res.Response, res.Status)
	}
	// A wrong flag holds off the win until it's removed.
	mustMove(t, g, flag(1, 1))
	if res := mustMove(t, g, flag(2, 2)); res.Status != minesweeper.Playing {
		t.Fatalf("won with a misplaced flag")
	}
	if res := mustMove(t, g, flag(1, 1)); res.Response != FlagRemoved || res.Status != minesweeper.Playing {
		t.Fatalf("got %s / %s, want FLAG_REMOVED / PLAYING", res.Response, res.Status)
	}

	// Wins are only checked when a flag is placed.
	mustMove(t, g, flag(2, 2))
	res := mustMove(t, g, flag(2, 2))
	if res.Response != FlagPlaced || res.Status != minesweeper.Won {
		t.Fatalf("got %s / %s, want FLAG_PLACED / WON", res.Response, res.Status)
	}
	allOpenedExceptFlags(t, b)
}

func TestNoEffect(t *testing.T) {
	b := newBoard(3, 3, at(0, 0))
	g := New(b, noPicker(t))

	mustMove(t, g, open(2, 2))

	for _, mv := range []*Move{open(2, 2), flag(2, 2), open(5, 5), flag(-1, 0)} {
		res := mustMove(t, g, mv)
		if res.Response != NoEffect {
			t.Errorf("Move(%+v) = %s, want NONE", mv, res.Response)
		}
	}
}

func TestUnknownAction(t *testing.T) {
	g := New(newBoard(2, 2), noPicker(t))
	if _, err := g.Move(&Move{Action: "DANCE"}); err == nil {
		t.Error("unknown action was accepted")
	}
}

func TestNewForMove(t *testing.T) {
	b := newBoard(3, 1, at(0, 0))
	b.Open(at(2, 0))

	g, err := NewForMove(&minesweeper.Game{ID: "game_0", Board: b}, noPicker(t))
	if err != nil {
		t.Fatalf("NewForMove: %v", err)
	}
	if g.Status() != minesweeper.Playing {
		t.Errorf("Status() = %s, want PLAYING", g.Status())
	}

	// A cell was already opened, so this is a loss rather than a rescue.
	if res := mustMove(t, g, open(0, 0)); res.Status != minesweeper.Lost {
		t.Errorf("Status = %s, want LOST", res.Status)
	}

	if _, err := NewForMove(&minesweeper.Game{ID: "game_1"}, noPicker(t)); err == nil {
		t.Error("NewForMove accepted a game without a board")
	}

	done, err := NewForMove(&minesweeper.Game{ID: "game_2", Status: minesweeper.Won, Board: newBoard(2, 2)}, noPicker(t))
	if err != nil {
		t.Fatalf("NewForMove: %v", err)
	}
	if _, err := done.Move(open(0, 0)); !errors.Is(err, minesweeper.ErrGameOver) {
		t.Errorf("Move on a won game = %v, want ErrGameOver", err)
	}
}

type scriptedPlayer struct {
	moves []*Move
	err   error
}

func (s *scriptedPlayer) NextMove(*minesweeper.Board) (*Move, error) {
	if len(s.moves) == 0 {
		return nil, s.err
	}
	mv := s.moves[0]
	s.moves = s.moves[1:]
	return mv, nil
}

func TestPlay(t *testing.T) {
	tests := []struct {
		desc string
		pl   *scriptedPlayer
		want *Outcome
	}{
		{
			desc: "win",
			pl:   &scriptedPlayer{moves: []*Move{open(2, 0), flag(0, 0)}},
			want: &Outcome{Status: minesweeper.Won, Moves: 2},
		},
		{
			desc: "loss",
			pl:   &scriptedPlayer{moves: []*Move{open(2, 0), open(0, 0)}},
			want: &Outcome{Status: minesweeper.Lost, Moves: 2},
		},
		{
			desc: "quit",
			pl:   &scriptedPlayer{moves: []*Move{open(2, 0)}, err: ErrQuit},
			want: &Outcome{Status: minesweeper.Playing, Moves: 1},
		},
		{
			desc: "reset",
			pl:   &scriptedPlayer{moves: []*Move{open(2, 0)}},
			want: &Outcome{Status: minesweeper.Playing, Reset: true, Moves: 1},
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			g := New(newBoard(3, 1, at(0, 0)), noPicker(t))
			got, err := g.Play(test.pl)
			if err != nil {
				t.Fatalf("Play: %v", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("unexpected outcome (-want +got)\n%s", diff)
			}
		})
	}
}

func TestPlay_PlayerError(t *testing.T) {
	g := New(newBoard(3, 1, at(0, 0)), noPicker(t))
	if _, err := g.Play(&scriptedPlayer{err: errors.New("stdin closed")}); err == nil {
		t.Error("Play swallowed a player error")
	}
}
