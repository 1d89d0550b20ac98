package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/bcspragu/Minesweeper/boardgen"
	"github.com/bcspragu/Minesweeper/grid"
	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/bcspragu/Minesweeper/web"
)

type Client struct {
	scheme string
	addr   string
	http   *http.Client
}

func New(scheme, addr string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %v", err)
	}

	return &Client{
		scheme: scheme,
		addr:   addr,
		http:   &http.Client{Jar: jar},
	}, nil
}

func (c *Client) url(path string) string {
	return c.scheme + "://" + c.addr + path
}

// CreateUser creates a user and logs the client in as them.
func (c *Client) CreateUser(name string) error {
	body := struct {
		Name string `json:"name"`
	}{name}

	req, err := http.NewRequest(http.MethodPost, c.url("/api/user"), toBody(body))
	if err != nil {
		return fmt.Errorf("failed to form request: %w", err)
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (c *Client) User() (*minesweeper.User, error) {
	req, err := http.NewRequest(http.MethodGet, c.url("/api/user"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var u minesweeper.User
	if err := c.do(req, &u); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

// CreateGame creates a game with the given parameters.
func (c *Client) CreateGame(p boardgen.Params) (minesweeper.GameID, error) {
	return c.createGame(p)
}

// CreatePresetGame creates a game with one of the standard difficulties.
func (c *Client) CreatePresetGame(d boardgen.Difficulty) (minesweeper.GameID, error) {
	return c.createGame(struct {
		Difficulty boardgen.Difficulty `json:"difficulty"`
	}{d})
}

func (c *Client) createGame(body interface{}) (minesweeper.GameID, error) {
	req, err := http.NewRequest(http.MethodPost, c.url("/api/game"), toBody(body))
	if err != nil {
		return "", fmt.Errorf("failed to form request: %w", err)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	return minesweeper.GameID(resp.ID), nil
}

// Games lists the games created by the logged in user.
func (c *Client) Games() ([]minesweeper.GameID, error) {
	req, err := http.NewRequest(http.MethodGet, c.url("/api/games"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var resp []minesweeper.GameID
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	return resp, nil
}

func (c *Client) Game(gID minesweeper.GameID) (*web.GameView, error) {
	req, err := http.NewRequest(http.MethodGet, c.url("/api/game/"+string(gID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var gv web.GameView
	if err := c.do(req, &gv); err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return &gv, nil
}

func (c *Client) Open(gID minesweeper.GameID, pos grid.Coord) (*web.MoveResponse, error) {
	return c.move(gID, "open", pos)
}

func (c *Client) Flag(gID minesweeper.GameID, pos grid.Coord) (*web.MoveResponse, error) {
	return c.move(gID, "flag", pos)
}

func (c *Client) move(gID minesweeper.GameID, action string, pos grid.Coord) (*web.MoveResponse, error) {
	req, err := http.NewRequest(http.MethodPost, c.url("/api/game/"+string(gID)+"/"+action), toBody(pos))
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var resp web.MoveResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to %s %d,%d: %w", action, pos.X, pos.Y, err)
	}
	return &resp, nil
}

func (c *Client) do(req *http.Request, resp interface{}) error {
	httpResp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return handleError(httpResp)
	}

	if resp != nil {
		if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}

	return nil
}

// HTTPError is returned when the server replies with anything but a 200.
type HTTPError struct {
	StatusCode int
	Body       string
	err        error
}

func (h *HTTPError) Error() string {
	if h.err != nil {
		return fmt.Sprintf("[%d] failed to handle error: %v", h.StatusCode, h.err)
	}
	return fmt.Sprintf("[%d] error from server: %s", h.StatusCode, h.Body)
}

func (h *HTTPError) Unwrap() error {
	return h.err
}

func handleError(resp *http.Response) error {
	dat, err := io.ReadAll(resp.Body)
	if err != nil {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			err:        fmt.Errorf("failed to read error response body: %w", err),
		}
	}

	return &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(dat)),
	}
}

func toBody(req interface{}) io.Reader {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return &errReader{err: err}
	}
	return &buf
}

type errReader struct {
	err error
}

func (e *errReader) Read(_ []byte) (int, error) {
	return 0, e.err
}
