package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"

	"github.com/bcspragu/Minesweeper/boardgen"
	"github.com/bcspragu/Minesweeper/game"
	"github.com/bcspragu/Minesweeper/grid"
	"github.com/bcspragu/Minesweeper/hub"
	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type Srv struct {
	sc  *securecookie.SecureCookie
	h   *hub.Hub
	mux *mux.Router
	db  minesweeper.DB

	// mu guards r, and makes moves load-apply-store atomically.
	mu sync.Mutex
	r  *rand.Rand

	upgrader websocket.Upgrader
}

// New returns an initialized server.
func New(db minesweeper.DB, r *rand.Rand, sc *securecookie.SecureCookie) *Srv {
	s := &Srv{
		sc: sc,
		h:  hub.New(),
		db: db,
		r:  r,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	s.mux = s.initMux()

	return s
}

func (s *Srv) initMux() *mux.Router {
	m := mux.NewRouter()
	// New user.
	m.HandleFunc("/api/user", s.handle(s.serveCreateUser)).Methods("POST")
	// Load user.
	m.HandleFunc("/api/user", s.handle(s.serveUser)).Methods("GET")
	// New game.
	m.HandleFunc("/api/game", s.handle(s.serveCreateGame)).Methods("POST")
	// Games created by the user.
	m.HandleFunc("/api/games", s.handle(s.serveGames)).Methods("GET")
	// Get game.
	m.HandleFunc("/api/game/{id}", s.handle(s.serveGame)).Methods("GET")
	// Open a cell.
	m.HandleFunc("/api/game/{id}/open", s.handle(s.requireGameAuth(s.serveMove(game.ActionOpen), isGameCreator(), isGamePlaying()))).Methods("POST")
	// Flag or unflag a cell.
	m.HandleFunc("/api/game/{id}/flag", s.handle(s.requireGameAuth(s.serveMove(game.ActionFlag), isGameCreator(), isGamePlaying()))).Methods("POST")

	// WebSocket handler for games.
	m.HandleFunc("/api/game/{id}/ws", s.handle(s.serveData)).Methods("GET")

	return m
}

func (s *Srv) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handle turns an error returned from a handler into an HTTP response.
func (s *Srv) handle(fn func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		code, msg := errorResponse(err)
		entry := log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": code,
		})
		if code >= http.StatusInternalServerError {
			entry.WithError(err).Error("request failed")
		} else {
			entry.WithError(err).Debug("request rejected")
		}
		http.Error(w, msg, code)
	}
}

func (s *Srv) serveCreateUser(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return badRequest("malformed request body: %v", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest("no name given")
	}

	id, err := s.db.NewUser(&minesweeper.User{Name: name})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	encoded, err := s.sc.Encode("auth", id)
	if err != nil {
		return fmt.Errorf("failed to encode auth cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Authorization",
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
	})

	return jsonResp(w, struct {
		Success bool `json:"success"`
	}{true})
}

func (s *Srv) serveUser(w http.ResponseWriter, r *http.Request) error {
	u, err := s.requireUser(r)
	if err != nil {
		return err
	}

	return jsonResp(w, u)
}

func (s *Srv) serveCreateGame(w http.ResponseWriter, r *http.Request) error {
	u, err := s.requireUser(r)
	if err != nil {
		return err
	}

	var req struct {
		Difficulty boardgen.Difficulty `json:"difficulty"`
		boardgen.Params
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return badRequest("malformed request body: %v", err)
	}

	p := req.Params
	if req.Difficulty != "" {
		if p, err = boardgen.Preset(req.Difficulty); err != nil {
			return badRequest("%v", err)
		}
	}
	if err := p.Validate(); err != nil {
		return badRequest("%v", err)
	}

	s.mu.Lock()
	b, err := boardgen.New(p, s.r)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to generate board: %w", err)
	}

	id, err := s.db.NewGame(&minesweeper.Game{
		CreatedBy:      u.ID,
		RequestedBombs: p.Bombs,
		Board:          b,
	})
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	log.WithFields(log.Fields{
		"game_id": id,
		"user_id": u.ID,
		"width":   p.Width,
		"height":  p.Height,
		"bombs":   p.Bombs,
	}).Info("created game")

	return jsonResp(w, struct {
		ID string `json:"id"`
	}{string(id)})
}

func (s *Srv) serveGames(w http.ResponseWriter, r *http.Request) error {
	u, err := s.requireUser(r)
	if err != nil {
		return err
	}

	gIDs, err := s.db.GamesForUser(u.ID)
	if err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}
	if gIDs == nil {
		gIDs = []minesweeper.GameID{}
	}

	return jsonResp(w, gIDs)
}

func (s *Srv) serveGame(w http.ResponseWriter, r *http.Request) error {
	g, err := s.loadGame(r)
	if err != nil {
		return err
	}

	return jsonResp(w, newGameView(g))
}

func (s *Srv) serveMove(action game.Action) gameHandler {
	return func(w http.ResponseWriter, r *http.Request, u *minesweeper.User, g *minesweeper.Game) error {
		var pos grid.Coord
		if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
			return badRequest("malformed request body: %v", err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		// Another move may have landed since the game was loaded.
		g, err := s.db.Game(g.ID)
		if err != nil {
			return fmt.Errorf("failed to reload game: %w", err)
		}

		gm, err := game.NewForMove(g, minesweeper.NewRandPicker(s.r))
		if err != nil {
			return fmt.Errorf("failed to resume game: %w", err)
		}

		res, err := gm.Move(&game.Move{Action: action, Pos: pos})
		if err != nil {
			return fmt.Errorf("failed to make move: %w", err)
		}

		if err := s.db.UpdateGame(g.ID, res.Status, gm.Board()); err != nil {
			return fmt.Errorf("failed to update game: %w", err)
		}
		g.Status = res.Status

		log.WithFields(log.Fields{
			"game_id":  g.ID,
			"user_id":  u.ID,
			"action":   action,
			"x":        pos.X,
			"y":        pos.Y,
			"response": res.Response,
			"status":   res.Status,
		}).Debug("applied move")

		view := newGameView(g)
		s.broadcast(g.ID, &GameUpdate{
			Game: view,
			Move: &Move{Action: action, Pos: pos, Response: res.Response},
		})
		if res.Status.Finished() {
			s.broadcast(g.ID, &GameEnd{Status: res.Status, Game: view})
		}

		return jsonResp(w, &MoveResponse{
			Response: res.Response,
			Status:   res.Status,
			Game:     view,
		})
	}
}

func (s *Srv) broadcast(gID minesweeper.GameID, msg interface{}) {
	if err := s.h.ToGame(gID, msg); err != nil {
		log.WithField("game_id", gID).WithError(err).Error("failed to broadcast")
	}
}

// serveData lets anyone watch a game as it's played.
func (s *Srv) serveData(w http.ResponseWriter, r *http.Request) error {
	g, err := s.loadGame(r)
	if err != nil {
		return err
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.WithField("game_id", g.ID).WithError(err).Warn("failed to upgrade connection")
		return nil
	}

	if err := s.h.Register(ws, g.ID, &GameUpdate{Game: newGameView(g)}); err != nil {
		log.WithField("game_id", g.ID).WithError(err).Error("failed to register watcher")
		ws.Close()
	}
	return nil
}

func (s *Srv) loadGame(r *http.Request) (*minesweeper.Game, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, badRequest("no game ID was provided")
	}

	g, err := s.db.Game(minesweeper.GameID(id))
	if errors.Is(err, minesweeper.ErrGameNotFound) {
		return nil, notFound("game %q not found", id)
	} else if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	return g, nil
}

func jsonResp(w http.ResponseWriter, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}

// loadUser returns the logged in user, or nil if there isn't one.
func (s *Srv) loadUser(r *http.Request) (*minesweeper.User, error) {
	c, err := r.Cookie("Authorization")
	if errors.Is(err, http.ErrNoCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var uID minesweeper.UserID
	if err := s.sc.Decode("auth", c.Value, &uID); err != nil {
		// If we can't parse it, assume it's an old auth cookie and treat them as
		// not logged in.
		return nil, nil
	}

	u, err := s.db.User(uID)
	if errors.Is(err, minesweeper.ErrUserNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Srv) requireUser(r *http.Request) (*minesweeper.User, error) {
	u, err := s.loadUser(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, &httpError{code: http.StatusUnauthorized, msg: "not logged in"}
	}
	return u, nil
}
