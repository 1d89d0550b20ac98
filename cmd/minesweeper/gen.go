package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bcspragu/Minesweeper/io"
	"github.com/spf13/cobra"
)

var (
	genBoard boardFlags
	genJSON  bool
	genCount int
)

func init() {
	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate Minesweeper boards",
		Long: `Generate one or more boards and print them fully uncovered.

Examples:
  minesweeper gen -d beginner
  minesweeper gen -n 3 -W 5 -H 5 -b 4 --seed 7
  minesweeper gen --json`,
		RunE: runGen,
	}

	genBoard.register(genCmd)
	genCmd.Flags().BoolVar(&genJSON, "json", false, "Print boards as JSON instead of a table")
	genCmd.Flags().IntVarP(&genCount, "number", "n", 1, "Number of boards to generate")

	rootCmd.AddCommand(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	if genCount < 1 {
		return fmt.Errorf("number of boards must be at least 1, got %d", genCount)
	}

	r := genBoard.rand()
	enc := json.NewEncoder(os.Stdout)
	pr := &io.Printer{Out: os.Stdout}
	for i := 0; i < genCount; i++ {
		b, err := genBoard.newBoard(r)
		if err != nil {
			return err
		}

		if genJSON {
			if err := enc.Encode(b); err != nil {
				return fmt.Errorf("failed to encode board: %w", err)
			}
			continue
		}

		b.UncoverAll()
		fmt.Printf("Board %d (%d bombs):\n", i+1, b.BombCount())
		pr.Print(b)
	}
	return nil
}
