package main

import (
	"math/rand"

	"github.com/bcspragu/Minesweeper/boardgen"
	"github.com/bcspragu/Minesweeper/cryptorand"
	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/spf13/cobra"
)

// boardFlags are the flags shared by every command that makes a board.
type boardFlags struct {
	width, height, bombs int
	difficulty           string
	seed                 int64
}

func (f *boardFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.width, "width", "W", defaults.Width, "Board width")
	cmd.Flags().IntVarP(&f.height, "height", "H", defaults.Height, "Board height")
	cmd.Flags().IntVarP(&f.bombs, "bombs", "b", defaults.Bombs, "Number of bombs")
	cmd.Flags().StringVarP(&f.difficulty, "difficulty", "d", "", "One of beginner, intermediate or expert, overrides the size flags")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Seed for a reproducible board, random if zero")
}

func (f *boardFlags) params() (boardgen.Params, error) {
	if f.difficulty != "" {
		return boardgen.Preset(boardgen.Difficulty(f.difficulty))
	}
	p := boardgen.Params{Width: f.width, Height: f.height, Bombs: f.bombs}
	return p, p.Validate()
}

func (f *boardFlags) rand() *rand.Rand {
	if f.seed == 0 {
		return cryptorand.New()
	}
	return rand.New(rand.NewSource(f.seed))
}

func (f *boardFlags) newBoard(r *rand.Rand) (*minesweeper.Board, error) {
	p, err := f.params()
	if err != nil {
		return nil, err
	}
	return boardgen.New(p, r)
}
