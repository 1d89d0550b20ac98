package memdb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bcspragu/Minesweeper/minesweeper"
)

type idNamespace string

const (
	gameID = idNamespace("game")
	userID = idNamespace("user")
)

// DB is an in-memory minesweeper.DB. Everything handed in or out is copied,
// so callers can't mutate stored games behind its back.
type DB struct {
	mu    sync.Mutex
	ids   map[idNamespace]int
	games map[minesweeper.GameID]*minesweeper.Game
	users map[minesweeper.UserID]*minesweeper.User
}

func New() *DB {
	return &DB{
		ids:   make(map[idNamespace]int),
		games: make(map[minesweeper.GameID]*minesweeper.Game),
		users: make(map[minesweeper.UserID]*minesweeper.User),
	}
}

func (db *DB) NewGame(g *minesweeper.Game) (minesweeper.GameID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if g.Board == nil {
		return "", fmt.Errorf("game has no board")
	}

	gID := minesweeper.GameID(db.newID(gameID))

	gc := g.Clone()
	gc.ID = gID
	gc.Status = minesweeper.Playing
	db.games[gID] = gc

	return gID, nil
}

func (db *DB) Game(gID minesweeper.GameID) (*minesweeper.Game, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, ok := db.games[gID]
	if !ok {
		return nil, minesweeper.ErrGameNotFound
	}

	return g.Clone(), nil
}

func (db *DB) NewUser(u *minesweeper.User) (minesweeper.UserID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	uID := minesweeper.UserID(db.newID(userID))

	uc := u.Clone()
	uc.ID = uID
	db.users[uID] = uc

	return uID, nil
}

func (db *DB) User(uID minesweeper.UserID) (*minesweeper.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[uID]
	if !ok {
		return nil, minesweeper.ErrUserNotFound
	}

	return u.Clone(), nil
}

func (db *DB) GamesForUser(uID minesweeper.UserID) ([]minesweeper.GameID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var gIDs []minesweeper.GameID
	for _, g := range db.games {
		if g.CreatedBy == uID {
			gIDs = append(gIDs, g.ID)
		}
	}
	sort.Slice(gIDs, func(i, j int) bool { return gIDs[i] < gIDs[j] })
	return gIDs, nil
}

func (db *DB) UpdateGame(gID minesweeper.GameID, status minesweeper.GameStatus, b *minesweeper.Board) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, ok := db.games[gID]
	if !ok {
		return minesweeper.ErrGameNotFound
	}
	g.Status = status
	g.Board = b.Clone()
	return nil
}

func (db *DB) newID(ns idNamespace) string {
	idx := db.ids[ns]
	id := fmt.Sprintf("%s_%d", ns, idx)
	db.ids[ns]++
	return id
}
