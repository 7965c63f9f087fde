// Package whisper runs Whisper speech models and decodes their time-aligned output.
package whisper

import (
	"context"

	"github.com/fmueller/vidscribe/internal/transcript"
)

const (
	EngineBundled = "whisper-cli"
	EnginePython  = "openai-whisper"
)

// TranscriptionRequest describes one transcription. Word timestamps are always
// requested and engine output is kept quiet.
type TranscriptionRequest struct {
	AudioPath string
	// Model is a ggml model path for whisper-cli or a model name for openai-whisper.
	Model    string
	Language string
	// Prompt biases recognition toward expected terms; empty means no hint.
	Prompt string
}

type Engine interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (transcript.Result, error)
}

func EngineNames() []string {
	return []string{EngineBundled, EnginePython}
}

func languageArg(language string) string {
	if language == "" || language == "auto" {
		return ""
	}
	return language
}
