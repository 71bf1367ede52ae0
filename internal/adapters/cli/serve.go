package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devbush/paralyze/internal/adapters/server"
)

var serveAddrFlag string

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the analyze pipeline over HTTP.

  POST /api/analyze   multipart form: video (file), url, words, model
  GET  /api/models    model tiers and their local state
  GET  /healthz       liveness probe`,
		RunE: runServe,
	}
	cmd.Flags().StringVar(&serveAddrFlag, "addr", "", "Listen address (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	serving = true
	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	addr := firstNonEmpty(serveAddrFlag, app.Config.Server.Addr)
	srv := server.New(app.Analyzer, app.FS, server.Options{
		BodyLimit: app.Config.Server.BodyLimitMB << 20,
		TempDir:   app.Config.Paths.TempDir,
		Models:    app.Models(),
		Loaded:    app.Registry.Loaded,
	}, app.Logger)

	app.Logger.Info("starting server",
		slog.String("addr", addr),
		slog.String("backend", app.Engine.Name()),
		slog.String("fetcher", app.Fetcher.Name()),
	)
	return srv.Run(cmd.Context(), addr)
}
