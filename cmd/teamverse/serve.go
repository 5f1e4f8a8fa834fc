package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/teamverse/internal/fetch"
	"github.com/jonathan/teamverse/internal/observability"
	"github.com/jonathan/teamverse/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server exposing social image rendering, image validation and source parsing.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	srv, err := server.New(server.Config{
		Port:          port,
		OutputDir:     cfg.OutputDir,
		Browser:       cfg.Render.Browser,
		Width:         cfg.Render.Width,
		Height:        cfg.Render.Height,
		RenderTimeout: cfg.Render.Timeout,
		Fetch:         &fetch.Options{Timeout: cfg.Fetch.Timeout, UserAgent: cfg.Fetch.UserAgent},
	}, observability.NewMetrics())
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
