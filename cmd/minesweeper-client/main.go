package main

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/bcspragu/Minesweeper/boardgen"
	"github.com/bcspragu/Minesweeper/client"
	"github.com/bcspragu/Minesweeper/game"
	"github.com/bcspragu/Minesweeper/io"
	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/bcspragu/Minesweeper/web"
	"github.com/namsral/flag"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		serverScheme = flag.String("server_scheme", "http", "The scheme of the server to connect to to play the game.")
		serverAddr   = flag.String("server_addr", "localhost:8080", "The address of the server to connect to to play the game.")
		name         = flag.String("name", "", "The name to play as.")
		difficulty   = flag.String("difficulty", "beginner", "One of 'beginner', 'intermediate' or 'expert'. Ignored if -bombs is set.")
		width        = flag.Int("width", 8, "Width of a custom board.")
		height       = flag.Int("height", 8, "Height of a custom board.")
		bombs        = flag.Int("bombs", 0, "Number of bombs on a custom board.")
		watch        = flag.String("watch", "", "The ID of a game to watch instead of playing.")
		color        = flag.Bool("color", true, "Whether to color the board.")
	)
	flag.Parse()

	c, err := client.New(*serverScheme, *serverAddr)
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}

	if *watch != "" {
		if err := watchGame(c, minesweeper.GameID(*watch), *color); err != nil {
			log.Fatal(err)
		}
		return
	}

	if *name == "" {
		log.Fatal("--name must be specified")
	}
	if err := c.CreateUser(*name); err != nil {
		log.Fatalf("failed to create user: %v", err)
	}

	newGame := func() (minesweeper.GameID, error) {
		if *bombs > 0 {
			return c.CreateGame(boardgen.Params{Width: *width, Height: *height, Bombs: *bombs})
		}
		return c.CreatePresetGame(boardgen.Difficulty(*difficulty))
	}

	p := &io.Player{In: os.Stdin, Out: os.Stdout, Color: *color}
	for {
		gID, err := newGame()
		if err != nil {
			log.Fatalf("failed to create game: %v", err)
		}
		fmt.Printf("Playing game %q, others can watch with -watch=%s\n", gID, gID)

		again, err := play(c, p, gID)
		if err != nil {
			log.Fatal(err)
		}
		if !again {
			return
		}
	}
}

// play runs a game until it ends, returning true if the player asked for a new
// board.
func play(c *client.Client, p *io.Player, gID minesweeper.GameID) (bool, error) {
	gv, err := c.Game(gID)
	if err != nil {
		return false, err
	}

	for !gv.Status.Finished() {
		mv, err := p.Prompt(gv)
		if errors.Is(err, game.ErrQuit) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if mv == nil {
			return true, nil
		}

		var resp *web.MoveResponse
		switch mv.Action {
		case game.ActionOpen:
			resp, err = c.Open(gID, mv.Pos)
		case game.ActionFlag:
			resp, err = c.Flag(gID, mv.Pos)
		}
		if err != nil {
			fmt.Printf("Move failed: %v\n", err)
			continue
		}
		gv = resp.Game
	}

	(&io.Printer{Out: os.Stdout, Color: p.Color}).Print(gv)
	fmt.Printf("Game over, you %s\n", gv.Status)
	return false, nil
}

func watchGame(c *client.Client, gID minesweeper.GameID, color bool) error {
	pr := &io.Printer{Out: os.Stdout, Color: color}
	var (
		done = make(chan struct{})
		once sync.Once
	)
	finish := func() { once.Do(func() { close(done) }) }
	go func() {
		err := c.ListenForUpdates(gID, client.WSHooks{
			OnConnect: func() { fmt.Printf("Watching game %q\n", gID) },
			OnUpdate: func(gu *web.GameUpdate) {
				if gu.Move != nil {
					fmt.Printf("%s %d,%d: %s\n", gu.Move.Action, gu.Move.Pos.X, gu.Move.Pos.Y, gu.Move.Response)
				}
				pr.Print(gu.Game)
			},
			OnEnd: func(ge *web.GameEnd) {
				fmt.Printf("Game over, the player %s\n", ge.Status)
				finish()
			},
		})
		if err != nil {
			log.Errorf("stopped watching: %v", err)
		}
		finish()
	}()
	<-done
	return nil
}
