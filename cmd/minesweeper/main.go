package main

import (
	"os"

	"github.com/bcspragu/Minesweeper/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var defaults = loadDefaults()

var rootCmd = &cobra.Command{
	Use:   "minesweeper",
	Short: "Play Minesweeper in the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.SetupLogging(defaults.LogLevel)
	},
	SilenceUsage: true,
}

func loadDefaults() *config.Defaults {
	d, err := config.LoadDefaults()
	if err != nil {
		log.Fatalf("failed to load defaults: %v", err)
	}
	return d
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
