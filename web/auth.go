package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bcspragu/Minesweeper/minesweeper"
)

type httpError struct {
	code int
	msg  string
}

func (h *httpError) Error() string {
	return fmt.Sprintf("[%d] %s", h.code, h.msg)
}

func badRequest(format string, args ...interface{}) error {
	return &httpError{code: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) error {
	return &httpError{code: http.StatusNotFound, msg: fmt.Sprintf(format, args...)}
}

// errorResponse picks the status code and body to reply with for err. Errors
// that aren't the client's fault don't get their details sent back.
func errorResponse(err error) (int, string) {
	var herr *httpError
	switch {
	case errors.As(err, &herr):
		return herr.code, herr.msg
	case errors.Is(err, minesweeper.ErrGameNotFound):
		return http.StatusNotFound, "game not found"
	case errors.Is(err, minesweeper.ErrGameOver):
		return http.StatusConflict, "game is already over"
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

// gameHandler handles a request for a game, on behalf of a logged in user.
type gameHandler func(w http.ResponseWriter, r *http.Request, u *minesweeper.User, g *minesweeper.Game) error

type gameAuthCheck func(u *minesweeper.User, g *minesweeper.Game) error

func isGameCreator() gameAuthCheck {
	return func(u *minesweeper.User, g *minesweeper.Game) error {
		if g.CreatedBy != u.ID {
			return &httpError{code: http.StatusForbidden, msg: "only the game's creator can do that"}
		}
		return nil
	}
}

func isGamePlaying() gameAuthCheck {
	return func(_ *minesweeper.User, g *minesweeper.Game) error {
		if g.Status.Finished() {
			return &httpError{code: http.StatusConflict, msg: fmt.Sprintf("game is over, it was %s", g.Status)}
		}
		return nil
	}
}

// requireGameAuth loads the user and the game for a request, and runs each
// check against them before calling fn.
func (s *Srv) requireGameAuth(fn gameHandler, checks ...gameAuthCheck) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		u, err := s.requireUser(r)
		if err != nil {
			return err
		}

		g, err := s.loadGame(r)
		if err != nil {
			return err
		}

		for _, check := range checks {
			if err := check(u, g); err != nil {
				return err
			}
		}

		return fn(w, r, u, g)
	}
}
