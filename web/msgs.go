package web

import (
	"encoding/json"
	"fmt"

	"github.com/bcspragu/Minesweeper/game"
	"github.com/bcspragu/Minesweeper/grid"
	"github.com/bcspragu/Minesweeper/minesweeper"
)

// MoveResponse is returned from the open and flag endpoints.
type MoveResponse struct {
	Response game.Response         `json:"response"`
	Status   minesweeper.GameStatus `json:"status"`
	Game     *GameView              `json:"game"`
}

// Move is a move that was made in a game.
type Move struct {
	Action   game.Action   `json:"action"`
	Pos      grid.Coord    `json:"pos"`
	Response game.Response `json:"response"`
}

// GameUpdate is sent to watchers when they first connect, and after every
// move.
type GameUpdate struct {
	Game *GameView `json:"game"`
	// Move is nil for the update sent on connect.
	Move *Move `json:"move,omitempty"`
}

func (gu *GameUpdate) MarshalJSON() ([]byte, error) {
	type plain GameUpdate
	return withAction("GAME_UPDATE", (*plain)(gu))
}

// GameEnd is sent to watchers once a game is won or lost.
type GameEnd struct {
	Status minesweeper.GameStatus `json:"status"`
	Game   *GameView              `json:"game"`
}

func (ge *GameEnd) MarshalJSON() ([]byte, error) {
	type plain GameEnd
	return withAction("GAME_END", (*plain)(ge))
}

// withAction marshals msg, which must encode to a JSON object, with an extra
// "action" field.
func withAction(action string, msg interface{}) ([]byte, error) {
	dat, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(dat, &fields); err != nil {
		return nil, fmt.Errorf("message for %q isn't an object: %w", action, err)
	}

	if fields["action"], err = json.Marshal(action); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}
