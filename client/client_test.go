package client

import (
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bcspragu/Minesweeper/boardgen"
	"github.com/bcspragu/Minesweeper/game"
	"github.com/bcspragu/Minesweeper/grid"
	"github.com/bcspragu/Minesweeper/memdb"
	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/bcspragu/Minesweeper/web"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/websocket"
)

func setup(t *testing.T) (*memdb.DB, string) {
	db := memdb.New()
	sc := securecookie.New(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32))
	srv := httptest.NewServer(web.New(db, rand.New(rand.NewSource(0)), sc))
	t.Cleanup(srv.Close)
	return db, strings.TrimPrefix(srv.URL, "http://")
}

func newClient(t *testing.T, addr, name string) *Client {
	c, err := New("http", addr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.CreateUser(name); err != nil {
		t.Fatalf("CreateUser(%q): %v", name, err)
	}
	return c
}

// newGame creates a 3x3 game with a single bomb in the bottom right corner.
func newGame(t *testing.T, db *memdb.DB, c *Client) minesweeper.GameID {
	gID, err := c.CreateGame(boardgen.Params{Width: 3, Height: 3, Bombs: 1})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	b := minesweeper.FromBombs(grid.Size{Width: 3, Height: 3}, []grid.Coord{{X: 2, Y: 2}})
	if err := db.UpdateGame(gID, minesweeper.Playing, b); err != nil {
		t.Fatalf("UpdateGame: %v", err)
	}
	return gID
}

func TestClient(t *testing.T) {
	db, addr := setup(t)
	c := newClient(t, addr, "Alice")

	u, err := c.User()
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if diff := cmp.Diff(&minesweeper.User{ID: "user_0", Name: "Alice"}, u); diff != "" {
		t.Errorf("unexpected user (-want +got)\n%s", diff)
	}

	gID := newGame(t, db, c)

	gIDs, err := c.Games()
	if err != nil {
		t.Fatalf("Games: %v", err)
	}
	if diff := cmp.Diff([]minesweeper.GameID{gID}, gIDs); diff != "" {
		t.Errorf("unexpected games (-want +got)\n%s", diff)
	}

	resp, err := c.Open(gID, grid.Coord{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if resp.Response != game.OpenSpaceUncovered {
		t.Errorf("open response = %s, want %s", resp.Response, game.OpenSpaceUncovered)
	}

	gv, err := c.Game(gID)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if diff := cmp.Diff(resp.Game, gv); diff != "" {
		t.Errorf("game doesn't match the last move's view (-want +got)\n%s", diff)
	}
	// The corner bomb stays hidden, everything else got flooded.
	if st, _ := gv.CellState(grid.Coord{X: 2, Y: 2}); st != minesweeper.Unopened {
		t.Errorf("bomb cell state = %s, want %s", st, minesweeper.Unopened)
	}
	if ty, _ := gv.CellType(grid.Coord{X: 1, Y: 1}); ty != minesweeper.AdjacentCount(1) {
		t.Errorf("center cell = %s, want %s", ty, minesweeper.AdjacentCount(1))
	}

	resp, err = c.Flag(gID, grid.Coord{X: 2, Y: 2})
	if err != nil {
		t.Fatalf("Flag: %v", err)
	}
	if resp.Status != minesweeper.Won {
		t.Errorf("status = %s, want %s", resp.Status, minesweeper.Won)
	}

	_, err = c.Open(gID, grid.Coord{X: 2, Y: 2})
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusConflict {
		t.Errorf("Open after the game ended = %v, want a %d", err, http.StatusConflict)
	}
}

func TestOtherUsersGame(t *testing.T) {
	db, addr := setup(t)
	alice := newClient(t, addr, "Alice")
	bob := newClient(t, addr, "Bob")

	gID := newGame(t, db, alice)

	_, err := bob.Open(gID, grid.Coord{X: 0, Y: 0})
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusForbidden {
		t.Errorf("Open by another user = %v, want a %d", err, http.StatusForbidden)
	}

	// Anyone can look though.
	if _, err := bob.Game(gID); err != nil {
		t.Errorf("Game: %v", err)
	}
}

func TestNotLoggedIn(t *testing.T) {
	_, addr := setup(t)
	c, err := New("http", addr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.CreatePresetGame(boardgen.Beginner)
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusUnauthorized {
		t.Errorf("CreatePresetGame = %v, want a %d", err, http.StatusUnauthorized)
	}
}

func TestListenForUpdates(t *testing.T) {
	db, addr := setup(t)
	c := newClient(t, addr, "Alice")
	gID := newGame(t, db, c)

	updates := make(chan *web.GameUpdate, 10)
	ends := make(chan *web.GameEnd, 1)
	go c.ListenForUpdates(gID, WSHooks{
		OnUpdate: func(gu *web.GameUpdate) { updates <- gu },
		OnEnd:    func(ge *web.GameEnd) { ends <- ge },
	})

	// Wait for the update sent on connect, so the moves below are seen.
	select {
	case gu := <-updates:
		if gu.Move != nil {
			t.Errorf("first update has move %+v, want none", gu.Move)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the initial update")
	}

	if _, err := c.Open(gID, grid.Coord{X: 1, Y: 1}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := c.Open(gID, grid.Coord{X: 2, Y: 2}); err != nil {
		t.Fatalf("Open: %v", err)
	}

	var got []game.Response
	for i := 0; i < 2; i++ {
		select {
		case gu := <-updates:
			got = append(got, gu.Move.Response)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for update %d", i)
		}
	}
	want := []game.Response{game.UnsafeSpaceUncovered, game.BombHit}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected updates (-want +got)\n%s", diff)
	}

	select {
	case ge := <-ends:
		if ge.Status != minesweeper.Lost {
			t.Errorf("end status = %s, want %s", ge.Status, minesweeper.Lost)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the game to end")
	}
}

func TestListenForUpdatesBadMessage(t *testing.T) {
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade: %v", err)
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		conn.WriteJSON(&web.GameUpdate{})
		conn.WriteJSON(&web.GameEnd{Status: minesweeper.Lost})
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

		// Wait for the client to answer the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c, err := New("http", strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var updates, ends int
	var status minesweeper.GameStatus
	err = c.ListenForUpdates("game_0", WSHooks{
		OnUpdate: func(*web.GameUpdate) { updates++ },
		OnEnd: func(ge *web.GameEnd) {
			ends++
			status = ge.Status
		},
	})
	if err != nil {
		t.Fatalf("ListenForUpdates: %v", err)
	}

	// Everything sent before the close is handled, bad message or not.
	if updates != 1 {
		t.Errorf("got %d updates, want 1", updates)
	}
	if ends != 1 || status != minesweeper.Lost {
		t.Errorf("got %d ends with status %q, want 1 with %q", ends, status, minesweeper.Lost)
	}
}
