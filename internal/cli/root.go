package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/fmueller/vidscribe/internal/audio"
	"github.com/fmueller/vidscribe/internal/config"
	"github.com/fmueller/vidscribe/internal/logging"
	"github.com/fmueller/vidscribe/internal/version"
	"github.com/fmueller/vidscribe/internal/whisper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

type appState struct {
	settings config.Settings
	envErr   error

	verbose      bool
	jsonLogs     bool
	noProgress   bool
	autoDownload bool
	vocabPath    string
	formatSpec   string
	srt          bool
	text         bool
	silenceGate  bool
	silenceDBFS  float64

	logger *zap.Logger
	stdin  io.Reader

	modelFn     func(ctx context.Context) (whisper.ResolvedModel, error)
	converterFn func() (audio.Converter, error)
	engineFn    func() (whisper.Engine, error)
}

func NewRootCmd() *cobra.Command {
	settings, err := config.FromEnv(os.Getenv)
	if err != nil {
		settings = config.Defaults()
	}

	app := newAppState(settings)
	app.envErr = err
	return newRootCmd(app)
}

func newAppState(settings config.Settings) *appState {
	app := &appState{
		settings:     settings,
		autoDownload: true,
		formatSpec:   "json",
		silenceDBFS:  -65,
		stdin:        os.Stdin,
	}
	app.modelFn = app.ensureModelAvailable
	app.converterFn = app.newConverter
	app.engineFn = app.newEngine
	return app
}

func newRootCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <video_path|-> <output_path>",
		Short: "Transcribe the speech in a video or audio file",
		Long: `Extracts the audio track with ffmpeg, runs a Whisper speech model on it and
writes the transcript as JSON, SRT subtitles and/or plain text.

Use "-" as video_path to read the media from stdin. output_path may be a
directory, or a file name whose stem names the artifacts; a path ending in
.json receives the JSON transcript directly.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if app.envErr != nil {
				return app.envErr
			}
			app.settings.Language = sanitizeLanguage(app.settings.Language)
			app.logger = logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs, Service: serviceName(cmd)})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTranscribe(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindModelFlags(cmd, app)
	bindSilenceFlags(cmd, app)
	bindOutputFlags(cmd, app)

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	flags := cmd.PersistentFlags()
	flags.BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	flags.BoolVar(&app.jsonLogs, "log-json", app.jsonLogs, "Enable JSON logging")
	flags.BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&app.settings.Model, "model", app.settings.Model, "Model name or model file path")
	flags.StringVar(&app.settings.ModelDir, "model-dir", app.settings.ModelDir, "Directory where models are stored")
	flags.StringVar(&app.settings.Engine, "engine", app.settings.Engine, "Speech engine: "+strings.Join(whisper.EngineNames(), "|"))
	flags.StringVar(&app.settings.Language, "language", app.settings.Language, "Language code (auto|en|de|...) for transcription")
	flags.BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
}

func bindSilenceFlags(cmd *cobra.Command, app *appState) {
	flags := cmd.PersistentFlags()
	flags.BoolVar(&app.silenceGate, "silence-gate", app.silenceGate, "Skip transcription when the extracted audio is near-silent")
	flags.Float64Var(&app.silenceDBFS, "silence-threshold-dbfs", app.silenceDBFS, "Silence gate threshold in dBFS")
}

func bindOutputFlags(cmd *cobra.Command, app *appState) {
	flags := cmd.Flags()
	flags.StringVarP(&app.vocabPath, "vocab", "v", app.vocabPath, "File with words likely to appear in the audio, one per line")
	flags.StringVar(&app.formatSpec, "format", app.formatSpec, "Comma-separated output formats: all|json|srt|text")
	flags.BoolVar(&app.srt, "srt", app.srt, "Also write SRT subtitles")
	flags.BoolVar(&app.text, "text", app.text, "Also write a plain text transcript")
	_ = flags.MarkDeprecated("srt", "use --format srt (or add srt to the --format list)")
	_ = flags.MarkDeprecated("text", "use --format text (or add text to the --format list)")
}

func serviceName(cmd *cobra.Command) string {
	if cmd.Name() == "serve" {
		return "vidscribe-api"
	}
	return ""
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) stdinReader() io.Reader {
	if a.stdin == nil {
		return os.Stdin
	}
	return a.stdin
}

func sanitizeLanguage(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return config.DefaultLanguage
	}
	return trimmed
}
