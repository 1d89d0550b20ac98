package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bcspragu/Minesweeper/game"
	"github.com/bcspragu/Minesweeper/grid"
	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/olekukonko/tablewriter"
)

// View is anything that can be drawn as a board. Both *minesweeper.Board and
// *web.GameView are Views.
type View interface {
	Size() grid.Size
	CellType(grid.Coord) (minesweeper.CellType, bool)
	CellState(grid.Coord) (minesweeper.CellState, bool)
}

// Printer draws boards as a table.
type Printer struct {
	Out io.Writer
	// Color turns on terminal colors.
	Color bool
}

func cellText(v View, pos grid.Coord) (string, tablewriter.Colors) {
	st, _ := v.CellState(pos)
	if st == minesweeper.Flagged {
		return "F", tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiRedColor}
	}
	if st != minesweeper.Opened {
		return "#", nil
	}

	t, _ := v.CellType(pos)
	switch {
	case t.IsBomb():
		return "*", tablewriter.Colors{tablewriter.BgHiRedColor}
	case t == minesweeper.Empty:
		return ".", nil
	case t.Count() == 1:
		return "1", tablewriter.Colors{tablewriter.FgBlueColor}
	case t.Count() == 2:
		return "2", tablewriter.Colors{tablewriter.FgGreenColor}
	default:
		return strconv.Itoa(t.Count()), tablewriter.Colors{tablewriter.FgRedColor}
	}
}

// Print draws v, with column and row numbers so players can pick cells.
func (p *Printer) Print(v View) {
	table := tablewriter.NewWriter(p.Out)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)

	size := v.Size()
	header := []string{""}
	for x := 0; x < size.Width; x++ {
		header = append(header, strconv.Itoa(x))
	}
	table.SetHeader(header)

	for y := 0; y < size.Height; y++ {
		row := []string{strconv.Itoa(y)}
		colors := []tablewriter.Colors{nil}
		for x := 0; x < size.Width; x++ {
			txt, c := cellText(v, grid.Coord{X: x, Y: y})
			row = append(row, txt)
			colors = append(colors, c)
		}
		if p.Color {
			table.Rich(row, colors)
		} else {
			table.Append(row)
		}
	}

	table.Render()
}

// ParseMove parses a line like "o 3 4" (open x=3, y=4) or "f 3 4" (flag). It
// returns a nil move for "r", which asks for a new board, and game.ErrQuit for
// "q".
func ParseMove(line string) (*game.Move, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, errors.New("no move given")
	}

	var action game.Action
	switch fields[0] {
	case "q", "quit":
		return nil, game.ErrQuit
	case "r", "reset":
		return nil, nil
	case "o", "open":
		action = game.ActionOpen
	case "f", "flag":
		action = game.ActionFlag
	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}

	if len(fields) != 3 {
		return nil, fmt.Errorf("%s needs an x and a y, like '%s 3 4'", action, fields[0])
	}
	x, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("bad x %q: %w", fields[1], err)
	}
	y, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("bad y %q: %w", fields[2], err)
	}

	return &game.Move{Action: action, Pos: grid.Coord{X: x, Y: y}}, nil
}

// Player asks the user on the terminal for moves. Running out of input is the
// same as quitting.
type Player struct {
	// In is a reader where the user's moves are read from.
	In io.Reader
	// Out is where the board and prompts are written out to.
	Out io.Writer
	// Color turns on terminal colors for the board.
	Color bool

	sc *bufio.Scanner
}

func (p *Player) NextMove(b *minesweeper.Board) (*game.Move, error) {
	return p.Prompt(b)
}

// Prompt shows v and reads moves until a valid one is entered.
func (p *Player) Prompt(v View) (*game.Move, error) {
	if p.sc == nil {
		p.sc = bufio.NewScanner(p.In)
	}

	pr := &Printer{Out: p.Out, Color: p.Color}
	pr.Print(v)
	for {
		fmt.Fprint(p.Out, "Enter a move [ex. 'o 3 4' to open, 'f 3 4' to flag, 'r' to reset, 'q' to quit]: ")
		if !p.sc.Scan() {
			if err := p.sc.Err(); err != nil {
				return nil, fmt.Errorf("scanner error: %w", err)
			}
			return nil, game.ErrQuit
		}

		mv, err := ParseMove(p.sc.Text())
		if errors.Is(err, game.ErrQuit) {
			return nil, err
		}
		if err != nil {
			fmt.Fprintf(p.Out, "Invalid move: %v\n", err)
			continue
		}
		return mv, nil
	}
}
