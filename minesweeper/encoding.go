package minesweeper

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bcspragu/Minesweeper/grid"
)

// Snapshot is the flattened, row-major form of a Board, used to store and
// transmit it.
type Snapshot struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Types     []CellType  `json:"types"`
	States    []CellState `json:"states"`
	OpenedAny bool        `json:"opened_any"`
}

// Snapshot returns a copy of the board's contents.
func (b *Board) Snapshot() *Snapshot {
	size := b.Size()
	return &Snapshot{
		Width:     size.Width,
		Height:    size.Height,
		Types:     b.types.Values(),
		States:    b.states.Values(),
		OpenedAny: b.openedAny,
	}
}

// FromSnapshot rebuilds a board, validating that the snapshot is internally
// consistent.
func FromSnapshot(s *Snapshot) (*Board, error) {
	if s == nil {
		return nil, errors.New("no snapshot given")
	}
	if s.Width < 0 || s.Height < 0 {
		return nil, fmt.Errorf("invalid board size %dx%d", s.Width, s.Height)
	}
	size := grid.Size{Width: s.Width, Height: s.Height}

	for i, t := range s.Types {
		if !t.valid() {
			return nil, fmt.Errorf("invalid cell type %d at index %d", int(t), i)
		}
	}
	for i, st := range s.States {
		if !st.valid() {
			return nil, fmt.Errorf("invalid cell state %d at index %d", int(st), i)
		}
	}

	types, ok := grid.FromSlice(size, s.Types)
	if !ok {
		return nil, fmt.Errorf("board is %dx%d but has %d cell types", s.Width, s.Height, len(s.Types))
	}
	states, ok := grid.FromSlice(size, s.States)
	if !ok {
		return nil, fmt.Errorf("board is %dx%d but has %d cell states", s.Width, s.Height, len(s.States))
	}

	return &Board{
		types:     types,
		states:    states,
		openedAny: s.OpenedAny,
	}, nil
}

func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Snapshot())
}

func (b *Board) UnmarshalJSON(dat []byte) error {
	var s Snapshot
	if err := json.Unmarshal(dat, &s); err != nil {
		return err
	}
	nb, err := FromSnapshot(&s)
	if err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}
	*b = *nb
	return nil
}
