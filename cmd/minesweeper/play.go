package main

import (
	"fmt"
	"os"

	"github.com/bcspragu/Minesweeper/game"
	"github.com/bcspragu/Minesweeper/io"
	"github.com/bcspragu/Minesweeper/minesweeper"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	playBoard boardFlags
	playColor bool
)

func init() {
	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game on the terminal",
		Long: `Play a game of Minesweeper on the terminal.

Moves are entered as 'o X Y' to open a cell and 'f X Y' to flag or unflag
one. 'r' starts over on a new board and 'q' quits.

Examples:
  minesweeper play
  minesweeper play -d expert
  minesweeper play -W 10 -H 6 -b 8 --seed 42`,
		RunE: runPlay,
	}

	playBoard.register(playCmd)
	playCmd.Flags().BoolVar(&playColor, "color", defaults.Color, "Color the board")

	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	r := playBoard.rand()
	p := &io.Player{In: os.Stdin, Out: os.Stdout, Color: playColor}

	for round := 1; ; round++ {
		b, err := playBoard.newBoard(r)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"round": round, "bombs": b.BombCount()}).Debug("new board")

		g := game.New(b, minesweeper.NewRandPicker(r))
		out, err := g.Play(p)
		if err != nil {
			return err
		}
		if out.Reset {
			fmt.Println("Starting over on a new board.")
			continue
		}

		if out.Status.Finished() {
			(&io.Printer{Out: os.Stdout, Color: playColor}).Print(g.Board())
			fmt.Printf("You %s after %d moves!\n", out.Status, out.Moves)
		}
		return nil
	}
}
