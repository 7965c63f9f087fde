package cli

import (
	"context"
	"os"
	"time"

	"github.com/fmueller/vidscribe/internal/platform"
	"github.com/fmueller/vidscribe/internal/server"
	"github.com/fmueller/vidscribe/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const shutdownGrace = 15 * time.Second

func newServeCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transcription HTTP API",
		Long: `Starts an HTTP server with:

  GET  /health           liveness check
  POST /api/transcribe   multipart upload: media (required), vocab (optional)
  GET  /metrics          Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runServe(cmd)
		},
	}

	cmd.Flags().IntVar(&app.settings.Port, "port", app.settings.Port, "Port to listen on (env PORT)")
	return cmd
}

func (a *appState) runServe(cmd *cobra.Command) error {
	if err := a.settings.Validate(); err != nil {
		return err
	}

	tempDir, err := platform.ResolveTempDir(a.settings.TempDir)
	if err != nil {
		return err
	}
	a.settings.TempDir = tempDir

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Fail before listening when the model or engine cannot be prepared.
	p, err := a.newPipeline(ctx)
	if err != nil {
		return err
	}
	p.Progress = nil

	server.PrintBanner(cmd.OutOrStdout(), isTerminal(os.Stdout), version.Resolve(), a.settings.Addr())

	doneCh, err := server.StartWebServer(&server.Data{
		Settings:    a.settings,
		Transcriber: p,
		Logger:      a.log(),
	})
	if err != nil {
		return err
	}

	select {
	case <-doneCh:
		a.log().Info("service exit")
		return nil
	case <-ctx.Done():
		a.log().Info("got exit signal")
	}

	select {
	case <-doneCh:
		a.log().Info("all requests finished")
	case <-time.After(shutdownGrace):
		a.log().Warn("timeout waiting for graceful shutdown", zap.Duration("grace", shutdownGrace))
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
