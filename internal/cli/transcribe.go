package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fmueller/vidscribe/internal/apperr"
	"github.com/fmueller/vidscribe/internal/audio"
	"github.com/fmueller/vidscribe/internal/download"
	"github.com/fmueller/vidscribe/internal/output"
	"github.com/fmueller/vidscribe/internal/pipeline"
	"github.com/fmueller/vidscribe/internal/platform"
	"github.com/fmueller/vidscribe/internal/transcript"
	"github.com/fmueller/vidscribe/internal/vocab"
	"github.com/fmueller/vidscribe/internal/whisper"
	"go.uber.org/zap"
)

const stdinArg = "-"

func (a *appState) runTranscribe(ctx context.Context, out io.Writer, inputArg, outputArg string) error {
	formats, err := a.selectedFormats()
	if err != nil {
		return err
	}
	if err := a.settings.Validate(); err != nil {
		return err
	}

	tempDir, err := platform.ResolveTempDir(a.settings.TempDir)
	if err != nil {
		return err
	}
	a.settings.TempDir = tempDir

	fromStdin := inputArg == stdinArg
	inputPath := filepath.Clean(inputArg)
	if fromStdin {
		spooled, cleanup, err := pipeline.SpoolMedia(tempDir, "vidscribe-stdin-", "", a.stdinReader())
		if err != nil {
			return fmt.Errorf("read media from stdin: %w", err)
		}
		defer cleanup()
		inputPath = spooled
	} else if _, err := os.Stat(inputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.InputNotFound(inputArg)
		}
		return fmt.Errorf("stat input: %w", err)
	}

	info, err := output.Stat(outputArg)
	if err != nil {
		return err
	}
	target, err := output.ResolveTarget(outputArg, inputArg, fromStdin, info, formats)
	if err != nil {
		return err
	}
	if err := output.EnsureWritable(target.Dir); err != nil {
		return err
	}

	words := a.loadVocabulary()

	p, err := a.newPipeline(ctx)
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, pipeline.Job{MediaPath: inputPath, Vocabulary: words})
	if err != nil {
		return err
	}

	doc := transcript.Format(res)
	written, err := output.Write(target, doc, formats)
	if err != nil {
		return err
	}

	printSummary(out, doc, written)
	if isBlankTranscript(doc.Text) {
		a.log().Warn(noSpeechHint())
	}
	return nil
}

func (a *appState) selectedFormats() (transcript.FormatSet, error) {
	formats, err := transcript.ParseFormats(a.formatSpec)
	if err != nil {
		return nil, err
	}
	if a.srt {
		formats = formats.Union(transcript.FormatSRT)
	}
	if a.text {
		formats = formats.Union(transcript.FormatText)
	}
	if formats.Empty() {
		return nil, apperr.Validationf("no output formats selected")
	}
	return formats, nil
}

// loadVocabulary never fails the run: an unreadable file only loses the hint.
func (a *appState) loadVocabulary() []string {
	if a.vocabPath == "" {
		return nil
	}

	words, err := vocab.Load(a.vocabPath)
	if err != nil {
		a.log().Warn("vocabulary file could not be read; continuing without it", zap.String("path", a.vocabPath), zap.Error(err))
		return nil
	}
	a.log().Debug("vocabulary loaded", zap.String("path", a.vocabPath), zap.Int("terms", len(words)))
	return words
}

func (a *appState) newPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	model, err := a.modelFn(ctx)
	if err != nil {
		return nil, err
	}
	converter, err := a.converterFn()
	if err != nil {
		return nil, err
	}
	engine, err := a.engineFn()
	if err != nil {
		return nil, err
	}

	return &pipeline.Pipeline{
		Converter:   converter,
		Engine:      engine,
		Model:       model.EngineModelRef(a.settings.Engine),
		Language:    a.settings.Language,
		TempDir:     a.settings.TempDir,
		SilenceGate: a.silenceGate,
		SilenceDBFS: a.silenceDBFS,
		Logger:      a.log(),
		Progress: func(description string) func() {
			return startSpinner(a.progressEnabled(), description)
		},
	}, nil
}

func (a *appState) newConverter() (audio.Converter, error) {
	ffmpeg := audio.NewFFmpeg(a.settings.FFmpeg, a.log())
	if !ffmpeg.Available() {
		return nil, fmt.Errorf("ffmpeg not found (%s); install ffmpeg or set VIDSCRIBE_FFMPEG", ffmpeg.Path)
	}
	return ffmpeg, nil
}

func (a *appState) newEngine() (whisper.Engine, error) {
	switch a.settings.Engine {
	case whisper.EnginePython:
		return whisper.NewPythonEngine(a.settings.Python, a.settings.TempDir, a.log()), nil
	default:
		return whisper.NewBundledEngine(a.settings.WhisperPath, a.settings.TempDir, a.log())
	}
}

// ensureModelAvailable resolves the configured model, downloading a missing
// ggml file when allowed. openai-whisper manages its own model cache.
func (a *appState) ensureModelAvailable(ctx context.Context) (whisper.ResolvedModel, error) {
	if a.settings.Engine == whisper.EnginePython {
		return whisper.ResolvedModel{Name: a.settings.Model}, nil
	}

	modelDir, err := a.modelStorageDir()
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	resolved, err := whisper.ResolveModel(a.settings.Model, modelDir)
	if err != nil {
		return whisper.ResolvedModel{}, apperr.Validation("model unavailable", err)
	}

	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !a.autoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf("model %q is missing at %s; run `transcribe setup --model %s` or use --auto-download=true", resolved.Name, resolved.Path, resolved.Name)
	}

	a.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
	if err := download.DownloadFile(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		NoProgress:     a.noProgress,
		Label:          "downloading model " + resolved.Name,
		Logger:         a.log(),
	}); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("download model %q: %w", resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.settings.ModelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}
