package minesweeper

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
)

var (
	ErrUserNotFound = errors.New("minesweeper: user not found")
	ErrGameNotFound = errors.New("minesweeper: game not found")
	ErrGameOver     = errors.New("minesweeper: game is already over")
)

type UserID string
type GameID string

type GameStatus string

const (
	// NoStatus is an error case.
	NoStatus = GameStatus("")
	// Playing means the game is still going.
	Playing = GameStatus("PLAYING")
	// Won means every bomb was flagged, and nothing else was.
	Won = GameStatus("WON")
	// Lost means a bomb was opened.
	Lost = GameStatus("LOST")
)

// Finished reports whether the game has ended, one way or the other.
func (g GameStatus) Finished() bool {
	return g == Won || g == Lost
}

type User struct {
	ID UserID `json:"id"`
	// Name is the name that gets displayed.
	Name string `json:"name"`
}

func (u *User) Clone() *User {
	uc := *u
	return &uc
}

// Game is a stored game of Minesweeper.
type Game struct {
	ID        GameID     `json:"id"`
	CreatedBy UserID     `json:"created_by"`
	Status    GameStatus `json:"status"`
	// RequestedBombs is how many bombs the game was created with. The board
	// may hold fewer, see WithBombs.
	RequestedBombs int    `json:"requested_bombs"`
	Board          *Board `json:"board"`
}

func (g *Game) Clone() *Game {
	gc := *g
	if g.Board != nil {
		gc.Board = g.Board.Clone()
	}
	return &gc
}

type DB interface {
	NewUser(*User) (UserID, error)
	User(UserID) (*User, error)

	NewGame(*Game) (GameID, error)
	Game(GameID) (*Game, error)
	// GamesForUser returns the IDs of every game created by the given user.
	GamesForUser(UserID) ([]GameID, error)
	UpdateGame(GameID, GameStatus, *Board) error
}

var words = []string{
	"anchor", "beacon", "cinder", "dagger", "ember", "falcon", "glacier",
	"harbor", "island", "jungle", "kettle", "lantern", "meadow", "nebula",
	"orchard", "pepper", "quarry", "raven", "saddle", "thunder", "umber",
	"valley", "walnut", "yonder", "zephyr", "copper", "marble", "pebble",
	"flint", "sapper", "trench", "fuse",
}

func RandomGameID(r *rand.Rand) GameID {
	var buf bytes.Buffer
	for i := 0; i < 3; i++ {
		buf.WriteString(randomWord(r))
	}
	return GameID(buf.String())
}

var letters = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func RandomUserID(r *rand.Rand) UserID {
	b := make([]byte, 64)
	for i := range b {
		b[i] = letters[r.Intn(len(letters))]
	}
	return UserID(b)
}

func randomWord(r *rand.Rand) string {
	w := words[r.Intn(len(words))]
	return strings.ToUpper(w[:1]) + w[1:]
}
