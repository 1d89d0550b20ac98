package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bcspragu/Minesweeper/boltdb"
	"github.com/bcspragu/Minesweeper/config"
	"github.com/bcspragu/Minesweeper/cryptorand"
	"github.com/bcspragu/Minesweeper/memdb"
	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/bcspragu/Minesweeper/sqldb"
	"github.com/bcspragu/Minesweeper/web"
	"github.com/namsral/flag"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		addr     = flag.String("addr", ":8080", "HTTP service address")
		dbType   = flag.String("db_type", "sqlite", "Where to store games, one of 'mem', 'sqlite' or 'bolt'")
		dbPath   = flag.String("db_path", "minesweeper.db", "Path to the database file, unused for 'mem'")
		keyDir   = flag.String("key_dir", ".", "Directory holding the cookie keys, created if they don't exist")
		logLevel = flag.String("log_level", "info", "Log level, e.g. 'debug' or 'warn'")
	)
	flag.Parse()

	if err := config.SetupLogging(*logLevel); err != nil {
		log.Fatal(err)
	}

	r := cryptorand.New()
	db, closer, err := openDB(*dbType, *dbPath, r)
	if err != nil {
		log.Fatalf("failed to initialize datastore: %v", err)
	}
	defer closer.Close()

	sc, err := web.LoadKeys(*keyDir)
	if err != nil {
		log.Fatalf("failed to load cookie keys: %v", err)
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: web.New(db, r, sc),
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf("failed to shut down cleanly: %v", err)
		}
	}()

	log.WithFields(log.Fields{"addr": *addr, "db_type": *dbType}).Info("server is running")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("ListenAndServe: %v", err)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openDB(dbType, path string, r *rand.Rand) (minesweeper.DB, io.Closer, error) {
	switch dbType {
	case "mem":
		return memdb.New(), nopCloser{}, nil
	case "sqlite":
		db, err := sqldb.New(path, r)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case "bolt":
		db, err := boltdb.Open(path, r)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown db_type %q", dbType)
	}
}
