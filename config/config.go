// Package config loads settings shared by the minesweeper binaries from the
// environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	log "github.com/sirupsen/logrus"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Defaults are the settings used when a flag isn't given.
type Defaults struct {
	Width    int    `env:"MINESWEEPER_WIDTH" envDefault:"8"`
	Height   int    `env:"MINESWEEPER_HEIGHT" envDefault:"8"`
	Bombs    int    `env:"MINESWEEPER_BOMBS" envDefault:"5"`
	Color    bool   `env:"MINESWEEPER_COLOR" envDefault:"true"`
	LogLevel string `env:"MINESWEEPER_LOG_LEVEL" envDefault:"info"`
}

func LoadDefaults() (*Defaults, error) {
	var d Defaults
	if err := ParseEnv(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SetupLogging sets the global logrus level, e.g. "debug" or "warn".
func SetupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("bad log level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}
