package sqldb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/bcspragu/Minesweeper/minesweeper"

	_ "github.com/mattn/go-sqlite3"
)

var errClosed = errors.New("sqldb: database is closed")

// maxIDAttempts bounds how many random IDs we'll try before giving up on a
// collision-free one.
const maxIDAttempts = 10

const schema = `
CREATE TABLE IF NOT EXISTS Users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Games (
	id TEXT PRIMARY KEY,
	created_by TEXT NOT NULL,
	status TEXT NOT NULL,
	requested_bombs INTEGER NOT NULL,
	board BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS games_by_creator ON Games (created_by);
`

// DB implements the Minesweeper database API, backed by a SQLite database.
// NOTE: Since the database doesn't support concurrent writers, we don't
// actually hold the *sql.DB in this struct, we force all callers to get a
// handle via channels.
type DB struct {
	dbChan   chan func(*sql.DB)
	doneChan chan struct{}
	closed   chan struct{}
	r        *rand.Rand
}

// New creates a new *DB that is stored on disk at the given filename. r is
// only ever used from the database goroutine.
func New(fn string, r *rand.Rand) (*DB, error) {
	sdb, err := sql.Open("sqlite3", fn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := sdb.Exec(schema); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	db := &DB{
		dbChan:   make(chan func(*sql.DB)),
		doneChan: make(chan struct{}),
		closed:   make(chan struct{}),
		r:        r,
	}
	go db.run(sdb)
	return db, nil
}

// run handles all database calls, and ensures that only one thing is happening
// against the database at a time.
func (s *DB) run(sdb *sql.DB) {
	defer close(s.closed)
	for {
		select {
		case dbFn := <-s.dbChan:
			dbFn(sdb)
		case <-s.doneChan:
			sdb.Close()
			return
		}
	}
}

func (s *DB) Close() error {
	close(s.doneChan)
	<-s.closed
	return nil
}

func (s *DB) do(fn func(*sql.DB) error) error {
	errC := make(chan error, 1)
	select {
	case s.dbChan <- func(sdb *sql.DB) { errC <- fn(sdb) }:
	case <-s.doneChan:
		return errClosed
	}
	return <-errC
}

func (s *DB) NewUser(u *minesweeper.User) (minesweeper.UserID, error) {
	var uID minesweeper.UserID
	err := s.do(func(sdb *sql.DB) error {
		id, err := s.unusedID(sdb, "Users", func() string { return string(minesweeper.RandomUserID(s.r)) })
		if err != nil {
			return err
		}
		if _, err := sdb.Exec(`INSERT INTO Users (id, name) VALUES (?, ?)`, id, u.Name); err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		uID = minesweeper.UserID(id)
		return nil
	})
	if err != nil {
		return "", err
	}
	return uID, nil
}

func (s *DB) User(uID minesweeper.UserID) (*minesweeper.User, error) {
	var u *minesweeper.User
	err := s.do(func(sdb *sql.DB) error {
		var name string
		err := sdb.QueryRow(`SELECT name FROM Users WHERE id = ?`, string(uID)).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return minesweeper.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		u = &minesweeper.User{ID: uID, Name: name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *DB) NewGame(g *minesweeper.Game) (minesweeper.GameID, error) {
	if g.Board == nil {
		return "", errors.New("game has no board")
	}
	dat, err := json.Marshal(g.Board)
	if err != nil {
		return "", fmt.Errorf("failed to encode board: %w", err)
	}

	var gID minesweeper.GameID
	err = s.do(func(sdb *sql.DB) error {
		id, err := s.unusedID(sdb, "Games", func() string { return string(minesweeper.RandomGameID(s.r)) })
		if err != nil {
			return err
		}
		_, err = sdb.Exec(`INSERT INTO Games (id, created_by, status, requested_bombs, board) VALUES (?, ?, ?, ?, ?)`,
			id, string(g.CreatedBy), string(minesweeper.Playing), g.RequestedBombs, dat)
		if err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}
		gID = minesweeper.GameID(id)
		return nil
	})
	if err != nil {
		return "", err
	}
	return gID, nil
}

func (s *DB) Game(gID minesweeper.GameID) (*minesweeper.Game, error) {
	var g *minesweeper.Game
	err := s.do(func(sdb *sql.DB) error {
		var (
			createdBy, status string
			bombs             int
			dat               []byte
		)
		err := sdb.QueryRow(`SELECT created_by, status, requested_bombs, board FROM Games WHERE id = ?`, string(gID)).
			Scan(&createdBy, &status, &bombs, &dat)
		if errors.Is(err, sql.ErrNoRows) {
			return minesweeper.ErrGameNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load game: %w", err)
		}

		var b minesweeper.Board
		if err := json.Unmarshal(dat, &b); err != nil {
			return fmt.Errorf("failed to decode board for game %q: %w", gID, err)
		}

		g = &minesweeper.Game{
			ID:             gID,
			CreatedBy:      minesweeper.UserID(createdBy),
			Status:         minesweeper.GameStatus(status),
			RequestedBombs: bombs,
			Board:          &b,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *DB) GamesForUser(uID minesweeper.UserID) ([]minesweeper.GameID, error) {
	var gIDs []minesweeper.GameID
	err := s.do(func(sdb *sql.DB) error {
		rows, err := sdb.Query(`SELECT id FROM Games WHERE created_by = ? ORDER BY id`, string(uID))
		if err != nil {
			return fmt.Errorf("failed to query games: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("failed to scan game ID: %w", err)
			}
			gIDs = append(gIDs, minesweeper.GameID(id))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return gIDs, nil
}

func (s *DB) UpdateGame(gID minesweeper.GameID, status minesweeper.GameStatus, b *minesweeper.Board) error {
	dat, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}

	return s.do(func(sdb *sql.DB) error {
		res, err := sdb.Exec(`UPDATE Games SET status = ?, board = ? WHERE id = ?`, string(status), dat, string(gID))
		if err != nil {
			return fmt.Errorf("failed to update game: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update: %w", err)
		}
		if n == 0 {
			return minesweeper.ErrGameNotFound
		}
		return nil
	})
}

// unusedID draws IDs from gen until one isn't already in table. Must be
// called from the database goroutine.
func (s *DB) unusedID(sdb *sql.DB, table string, gen func() string) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := gen()
		var n int
		if err := sdb.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id).Scan(&n); err != nil {
			return "", fmt.Errorf("failed to check ID: %w", err)
		}
		if n == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("no unused ID in %s after %d attempts", table, maxIDAttempts)
}
