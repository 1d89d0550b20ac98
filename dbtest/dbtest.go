// Package dbtest holds the behaviour every minesweeper.DB implementation
// shares, so each store's tests can run the same checks.
package dbtest

import (
	"errors"
	"testing"

	"github.com/bcspragu/Minesweeper/grid"
	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/google/go-cmp/cmp"
)

// Run exercises a fresh DB returned by newDB for each subtest.
func Run(t *testing.T, newDB func(t *testing.T) minesweeper.DB) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newDB(t)) })
	t.Run("Games", func(t *testing.T) { testGames(t, newDB(t)) })
	t.Run("UpdateGame", func(t *testing.T) { testUpdateGame(t, newDB(t)) })
	t.Run("GamesForUser", func(t *testing.T) { testGamesForUser(t, newDB(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newDB(t)) })
}

func testBoard() *minesweeper.Board {
	return minesweeper.FromBombs(grid.Size{Width: 4, Height: 3}, []grid.Coord{{X: 0, Y: 0}, {X: 3, Y: 2}})
}

func testUsers(t *testing.T, db minesweeper.DB) {
	uID, err := db.NewUser(&minesweeper.User{Name: "Alice"})
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if uID == "" {
		t.Fatal("NewUser returned an empty ID")
	}

	got, err := db.User(uID)
	if err != nil {
		t.Fatalf("User(%q): %v", uID, err)
	}
	want := &minesweeper.User{ID: uID, Name: "Alice"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected user (-want +got)\n%s", diff)
	}

	other, err := db.NewUser(&minesweeper.User{Name: "Bob"})
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if other == uID {
		t.Errorf("two users got the same ID %q", uID)
	}
}

func testGames(t *testing.T, db minesweeper.DB) {
	b := testBoard()
	gID, err := db.NewGame(&minesweeper.Game{
		CreatedBy:      "user_0",
		RequestedBombs: 2,
		Board:          b,
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	// Changing the board we passed in must not reach the stored copy.
	b.ToggleFlag(grid.Coord{X: 1, Y: 1})

	got, err := db.Game(gID)
	if err != nil {
		t.Fatalf("Game(%q): %v", gID, err)
	}
	want := &minesweeper.Game{
		ID:             gID,
		CreatedBy:      "user_0",
		Status:         minesweeper.Playing,
		RequestedBombs: 2,
		Board:          testBoard(),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected game (-want +got)\n%s", diff)
	}
}

func testUpdateGame(t *testing.T, db minesweeper.DB) {
	gID, err := db.NewGame(&minesweeper.Game{CreatedBy: "user_0", RequestedBombs: 2, Board: testBoard()})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	b := testBoard()
	b.Open(grid.Coord{X: 2, Y: 0})
	b.ToggleFlag(grid.Coord{X: 0, Y: 0})
	if err := db.UpdateGame(gID, minesweeper.Lost, b); err != nil {
		t.Fatalf("UpdateGame: %v", err)
	}

	got, err := db.Game(gID)
	if err != nil {
		t.Fatalf("Game(%q): %v", gID, err)
	}
	if got.Status != minesweeper.Lost {
		t.Errorf("status = %q, want %q", got.Status, minesweeper.Lost)
	}
	if diff := cmp.Diff(b, got.Board); diff != "" {
		t.Errorf("unexpected board (-want +got)\n%s", diff)
	}
}

func testGamesForUser(t *testing.T, db minesweeper.DB) {
	var want []minesweeper.GameID
	for i := 0; i < 3; i++ {
		gID, err := db.NewGame(&minesweeper.Game{CreatedBy: "user_a", Board: testBoard()})
		if err != nil {
			t.Fatalf("NewGame: %v", err)
		}
		want = append(want, gID)
	}
	if _, err := db.NewGame(&minesweeper.Game{CreatedBy: "user_b", Board: testBoard()}); err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	got, err := db.GamesForUser("user_a")
	if err != nil {
		t.Fatalf("GamesForUser: %v", err)
	}
	sortIDs := cmp.Transformer("Sort", func(in []minesweeper.GameID) map[minesweeper.GameID]bool {
		out := make(map[minesweeper.GameID]bool)
		for _, id := range in {
			out[id] = true
		}
		return out
	})
	if diff := cmp.Diff(want, got, sortIDs); diff != "" {
		t.Errorf("unexpected games (-want +got)\n%s", diff)
	}

	none, err := db.GamesForUser("user_c")
	if err != nil {
		t.Fatalf("GamesForUser: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("got %d games for a user with none", len(none))
	}
}

func testNotFound(t *testing.T, db minesweeper.DB) {
	if _, err := db.User("nobody"); !errors.Is(err, minesweeper.ErrUserNotFound) {
		t.Errorf("User(nobody) = %v, want ErrUserNotFound", err)
	}
	if _, err := db.Game("nothing"); !errors.Is(err, minesweeper.ErrGameNotFound) {
		t.Errorf("Game(nothing) = %v, want ErrGameNotFound", err)
	}
	if err := db.UpdateGame("nothing", minesweeper.Won, testBoard()); !errors.Is(err, minesweeper.ErrGameNotFound) {
		t.Errorf("UpdateGame(nothing) = %v, want ErrGameNotFound", err)
	}
}
