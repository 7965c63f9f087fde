package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fmueller/vidscribe/internal/download"
	"github.com/fmueller/vidscribe/internal/whisper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSetupCmd(app *appState) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Download and verify speech model assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runSetup(cmd.Context(), cmd.OutOrStdout(), checkOnly)
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only verify the model; fail instead of downloading")
	return cmd
}

func (a *appState) runSetup(ctx context.Context, out io.Writer, checkOnly bool) error {
	if a.settings.Engine == whisper.EnginePython {
		fmt.Fprintf(out, "Engine %s downloads model %s on first use; nothing to do\n", whisper.EnginePython, a.settings.Model)
		return nil
	}

	modelDir, err := a.modelStorageDir()
	if err != nil {
		return err
	}

	resolved, err := whisper.ResolveModel(a.settings.Model, modelDir)
	if err != nil {
		return err
	}
	if resolved.IsCustomPath {
		return fmt.Errorf("setup expects a named model; got custom path %s", resolved.Path)
	}

	checksum := resolved.SHA256
	if !resolved.NeedsDownload && checksum != "" {
		if err := download.VerifyFileChecksum(resolved.Path, checksum); err != nil {
			if checkOnly {
				return fmt.Errorf("model %s at %s is corrupt: %w", resolved.Name, resolved.Path, err)
			}
			a.log().Warn("model checksum verification failed; downloading fresh copy", zap.String("model", resolved.Name), zap.Error(err))
			resolved.NeedsDownload = true
		}
	}

	if !resolved.NeedsDownload {
		a.log().Info("model already present", zap.String("model", resolved.Name), zap.String("path", resolved.Path))
		fmt.Fprintf(out, "Model %s already present at %s\n", resolved.Name, resolved.Path)
		return nil
	}
	if checkOnly {
		return fmt.Errorf("model %s is missing at %s; run `transcribe setup --model %s`", resolved.Name, resolved.Path, resolved.Name)
	}

	a.log().Info("downloading model", zap.String("model", resolved.Name), zap.String("path", resolved.Path))
	if err := download.DownloadFile(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: checksum,
		NoProgress:     a.noProgress,
		Label:          "downloading model " + resolved.Name,
		Logger:         a.log(),
	}); err != nil {
		return fmt.Errorf("download model %s: %w", resolved.Name, err)
	}

	fmt.Fprintf(out, "Model %s installed at %s\n", resolved.Name, resolved.Path)
	return nil
}
