package boardgen

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/bcspragu/Minesweeper/grid"
	"github.com/bcspragu/Minesweeper/minesweeper"
)

const (
	MinSide  = 2
	MaxSide  = 30
	MinBombs = 1
	MaxBombs = 100
)

// Params describe a board to generate.
type Params struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Bombs  int `json:"bombs"`
}

func (p Params) Size() grid.Size {
	return grid.Size{Width: p.Width, Height: p.Height}
}

type Difficulty string

const (
	Beginner     = Difficulty("BEGINNER")
	Intermediate = Difficulty("INTERMEDIATE")
	Expert       = Difficulty("EXPERT")
)

var presets = map[Difficulty]Params{
	Beginner:     {Width: 9, Height: 9, Bombs: 10},
	Intermediate: {Width: 16, Height: 16, Bombs: 40},
	Expert:       {Width: 30, Height: 16, Bombs: 99},
}

// Preset returns the parameters for a named difficulty, case-insensitively.
func Preset(d Difficulty) (Params, error) {
	p, ok := presets[Difficulty(strings.ToUpper(string(d)))]
	if !ok {
		return Params{}, fmt.Errorf("unknown difficulty %q", d)
	}
	return p, nil
}

// Validate checks that the board is between 2x2 and 30x30, and has between 1
// and 100 bombs, but fewer bombs than cells.
func (p Params) Validate() error {
	if p.Width < MinSide || p.Width > MaxSide {
		return fmt.Errorf("width must be between %d and %d, got %d", MinSide, MaxSide, p.Width)
	}
	if p.Height < MinSide || p.Height > MaxSide {
		return fmt.Errorf("height must be between %d and %d, got %d", MinSide, MaxSide, p.Height)
	}
	if p.Bombs < MinBombs || p.Bombs > MaxBombs {
		return fmt.Errorf("bombs must be between %d and %d, got %d", MinBombs, MaxBombs, p.Bombs)
	}
	if area := p.Width * p.Height; p.Bombs >= area {
		return fmt.Errorf("%d bombs don't fit on a %dx%d board, need at least one safe cell", p.Bombs, p.Width, p.Height)
	}
	return nil
}

// New generates a board for the given parameters, drawing bomb positions from
// r.
func New(p Params, r *rand.Rand) (*minesweeper.Board, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board parameters: %w", err)
	}
	return minesweeper.WithBombs(p.Size(), p.Bombs, minesweeper.NewRandPicker(r)), nil
}

// NewPreset generates a board for a named difficulty.
func NewPreset(d Difficulty, r *rand.Rand) (*minesweeper.Board, error) {
	p, err := Preset(d)
	if err != nil {
		return nil, err
	}
	return New(p, r)
}
