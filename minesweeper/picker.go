package minesweeper

import (
	"math/rand"

	"github.com/bcspragu/Minesweeper/grid"
)

// Picker chooses cells for bomb placement and relocation. Production code
// uses a RandPicker, tests can script the exact sequence of cells.
type Picker interface {
	// Pick returns a coordinate inside size.
	Pick(size grid.Size) grid.Coord
}

// RandPicker picks cells uniformly at random.
type RandPicker struct {
	r *rand.Rand
}

// NewRandPicker returns a Picker that draws from r.
func NewRandPicker(r *rand.Rand) *RandPicker {
	return &RandPicker{r: r}
}

func (p *RandPicker) Pick(size grid.Size) grid.Coord {
	return grid.Coord{
		X: p.r.Intn(size.Width),
		Y: p.r.Intn(size.Height),
	}
}

// PickerFunc adapts a function to a Picker.
type PickerFunc func(grid.Size) grid.Coord

func (f PickerFunc) Pick(size grid.Size) grid.Coord {
	return f(size)
}
