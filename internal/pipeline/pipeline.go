// Package pipeline runs one transcription job: extract audio, check it, and
// hand it to a speech engine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fmueller/vidscribe/internal/apperr"
	"github.com/fmueller/vidscribe/internal/audio"
	"github.com/fmueller/vidscribe/internal/transcript"
	"github.com/fmueller/vidscribe/internal/whisper"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type Pipeline struct {
	Converter audio.Converter
	Engine    whisper.Engine
	Model     string
	Language  string
	TempDir   string

	// SilenceGate skips the engine when the extracted audio is near-silent.
	SilenceGate bool
	SilenceDBFS float64

	Logger   *zap.Logger
	Progress func(description string) (stop func())
}

type Job struct {
	MediaPath  string
	Vocabulary []string
}

func (p *Pipeline) Run(ctx context.Context, job Job) (transcript.Result, error) {
	if p.Converter == nil || p.Engine == nil {
		return transcript.Result{}, errors.New("pipeline is missing a converter or engine")
	}

	if _, err := os.Stat(job.MediaPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return transcript.Result{}, apperr.InputNotFound(job.MediaPath)
		}
		return transcript.Result{}, fmt.Errorf("stat input: %w", err)
	}

	audioPath := filepath.Join(p.tempDir(), "vidscribe-audio-"+ulid.Make().String()+".wav")
	defer removeQuietly(audioPath)

	log := p.log().With(zap.String("input", job.MediaPath))
	log.Info("extracting audio", zap.String("audio", audioPath))
	if err := p.Converter.ExtractAudio(ctx, job.MediaPath, audioPath); err != nil {
		return transcript.Result{}, apperr.Extraction(err)
	}

	info, err := audio.Inspect(audioPath)
	if err != nil {
		return transcript.Result{}, apperr.Extraction(err)
	}
	if err := info.Validate(); err != nil {
		return transcript.Result{}, apperr.Extraction(err)
	}

	if p.SilenceGate {
		silent, err := p.silent(audioPath)
		if err != nil {
			log.Warn("silence gate analysis failed; continuing transcription", zap.Error(err))
		} else if silent {
			log.Info("audio considered silent; skipping transcription", zap.Float64("threshold_dbfs", p.SilenceDBFS))
			return transcript.Result{Segments: []transcript.Segment{}}, nil
		}
	}

	prompt, dropped := whisper.BuildPrompt(job.Vocabulary)
	if dropped > 0 {
		log.Warn("vocabulary truncated for the model prompt",
			zap.Int("used", whisper.MaxPromptTerms),
			zap.Int("dropped", dropped),
			zap.String("first_dropped", job.Vocabulary[whisper.MaxPromptTerms]),
		)
	}

	log.Info("transcribing...", zap.String("model", p.Model), zap.String("language", p.Language), zap.Int("vocabulary", len(job.Vocabulary)))
	stop := p.startProgress("Transcribing")
	started := time.Now()
	res, err := p.Engine.Transcribe(ctx, whisper.TranscriptionRequest{
		AudioPath: audioPath,
		Model:     p.Model,
		Language:  p.Language,
		Prompt:    prompt,
	})
	stop()
	if err != nil {
		log.Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return transcript.Result{}, apperr.Transcription(err)
	}
	log.Info("transcription finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.String("language", res.Language),
		zap.Int("segments", len(res.Segments)),
	)

	return res, nil
}

func (p *Pipeline) silent(audioPath string) (bool, error) {
	levels, err := audio.Analyze(audioPath)
	if err != nil {
		return false, err
	}
	p.log().Debug("audio levels",
		zap.Float64("rms_dbfs", levels.RMSdBFS),
		zap.Float64("peak_dbfs", levels.PeakdBFS),
		zap.Duration("duration", levels.Duration),
	)
	return audio.IsSilent(levels, p.SilenceDBFS), nil
}

func (p *Pipeline) startProgress(description string) func() {
	if p.Progress == nil {
		return func() {}
	}
	return p.Progress(description)
}

func (p *Pipeline) tempDir() string {
	if p.TempDir == "" {
		return os.TempDir()
	}
	return p.TempDir
}

func (p *Pipeline) log() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// removeQuietly deletes a temporary file; failures are ignored so they never
// mask the error being returned.
func removeQuietly(path string) {
	_ = os.Remove(path)
}
