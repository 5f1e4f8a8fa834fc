// Package main provides the teamverse CLI for generating social images,
// newsletters and content bundles.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/teamverse/internal/config"
	"github.com/jonathan/teamverse/internal/observability"
)

var (
	configPath string
	verbose    bool

	// cfg is loaded before any subcommand runs.
	cfg = config.Default()
)

// errSilentExit signals a non-zero exit whose reason was already printed.
var errSilentExit = errors.New("silent exit")

var rootCmd = &cobra.Command{
	Use:           "teamverse",
	Short:         "Content generation for PolicyEngine",
	Long:          "Teamverse renders social images and newsletters, validates rendered images and builds content bundles from web pages, Google Docs and feeds.",
	Version:       "0.1.0",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		observability.SetupLogger(verbose || cfg.Verbose, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilentExit) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
