// Package boltdb implements minesweeper.DB on top of a BoltDB file. Records
// are stored as JSON, one bucket per record type.
package boltdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bcspragu/Minesweeper/minesweeper"
	"go.etcd.io/bbolt"
)

const (
	usersBucket = "users"
	gamesBucket = "games"
)

const maxIDAttempts = 10

// DB provides a BoltDB-backed store.
type DB struct {
	db *bbolt.DB

	// mu guards r, which isn't safe for concurrent use.
	mu sync.Mutex
	r  *rand.Rand
}

// Open opens, creating if needed, a BoltDB-backed store at the provided path.
func Open(path string, r *rand.Rand) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	bdb, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{usersBucket, gamesBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}

	return &DB{db: bdb, r: r}, nil
}

// Close closes the underlying BoltDB database.
func (s *DB) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *DB) randomID(gen func(*rand.Rand) string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen(s.r)
}

// putNew stores v under a fresh random key in bucket and returns the key.
func (s *DB) putNew(bucket string, gen func(*rand.Rand) string, v func(id string) interface{}) (string, error) {
	var id string
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("%s bucket is missing", bucket)
		}

		for i := 0; i < maxIDAttempts && id == ""; i++ {
			if cand := s.randomID(gen); b.Get([]byte(cand)) == nil {
				id = cand
			}
		}
		if id == "" {
			return fmt.Errorf("no unused ID in %s after %d attempts", bucket, maxIDAttempts)
		}

		dat, err := json.Marshal(v(id))
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		return b.Put([]byte(id), dat)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// get loads the record at key in bucket into v, returning notFound if there
// isn't one.
func (s *DB) get(bucket, key string, v interface{}, notFound error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("%s bucket is missing", bucket)
		}
		dat := b.Get([]byte(key))
		if dat == nil {
			return notFound
		}
		if err := json.Unmarshal(dat, v); err != nil {
			return fmt.Errorf("unmarshal %s record %q: %w", bucket, key, err)
		}
		return nil
	})
}

func (s *DB) NewUser(u *minesweeper.User) (minesweeper.UserID, error) {
	id, err := s.putNew(usersBucket,
		func(r *rand.Rand) string { return string(minesweeper.RandomUserID(r)) },
		func(id string) interface{} {
			uc := u.Clone()
			uc.ID = minesweeper.UserID(id)
			return uc
		})
	if err != nil {
		return "", fmt.Errorf("put user: %w", err)
	}
	return minesweeper.UserID(id), nil
}

func (s *DB) User(uID minesweeper.UserID) (*minesweeper.User, error) {
	var u minesweeper.User
	if err := s.get(usersBucket, string(uID), &u, minesweeper.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *DB) NewGame(g *minesweeper.Game) (minesweeper.GameID, error) {
	if g.Board == nil {
		return "", errors.New("game has no board")
	}
	id, err := s.putNew(gamesBucket,
		func(r *rand.Rand) string { return string(minesweeper.RandomGameID(r)) },
		func(id string) interface{} {
			gc := g.Clone()
			gc.ID = minesweeper.GameID(id)
			gc.Status = minesweeper.Playing
			return gc
		})
	if err != nil {
		return "", fmt.Errorf("put game: %w", err)
	}
	return minesweeper.GameID(id), nil
}

func (s *DB) Game(gID minesweeper.GameID) (*minesweeper.Game, error) {
	var g minesweeper.Game
	if err := s.get(gamesBucket, string(gID), &g, minesweeper.ErrGameNotFound); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *DB) GamesForUser(uID minesweeper.UserID) ([]minesweeper.GameID, error) {
	var gIDs []minesweeper.GameID
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(gamesBucket))
		if b == nil {
			return fmt.Errorf("%s bucket is missing", gamesBucket)
		}
		return b.ForEach(func(k, v []byte) error {
			// Only the creator is needed, so skip decoding the board.
			var g struct {
				CreatedBy minesweeper.UserID `json:"created_by"`
			}
			if err := json.Unmarshal(v, &g); err != nil {
				return fmt.Errorf("unmarshal game %q: %w", k, err)
			}
			if g.CreatedBy == uID {
				gIDs = append(gIDs, minesweeper.GameID(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(gIDs, func(i, j int) bool { return gIDs[i] < gIDs[j] })
	return gIDs, nil
}

func (s *DB) UpdateGame(gID minesweeper.GameID, status minesweeper.GameStatus, board *minesweeper.Board) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(gamesBucket))
		if b == nil {
			return fmt.Errorf("%s bucket is missing", gamesBucket)
		}
		dat := b.Get([]byte(gID))
		if dat == nil {
			return minesweeper.ErrGameNotFound
		}

		var g minesweeper.Game
		if err := json.Unmarshal(dat, &g); err != nil {
			return fmt.Errorf("unmarshal game %q: %w", gID, err)
		}
		g.Status = status
		g.Board = board

		out, err := json.Marshal(&g)
		if err != nil {
			return fmt.Errorf("marshal game: %w", err)
		}
		return b.Put([]byte(gID), out)
	})
}
