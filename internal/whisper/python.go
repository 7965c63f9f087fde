package whisper

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fmueller/vidscribe/internal/transcript"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

//go:embed assets/openai_whisper.py
var pythonHelper []byte

// PythonEngine runs the reference openai-whisper package through an embedded
// helper script. The helper process owns the model, so it is released when
// the process exits.
type PythonEngine struct {
	Python  string
	TempDir string
	Logger  *zap.Logger
}

func NewPythonEngine(python, tempDir string, logger *zap.Logger) *PythonEngine {
	if strings.TrimSpace(python) == "" {
		python = "python3"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PythonEngine{Python: python, TempDir: tempDir, Logger: logger}
}

func (p *PythonEngine) Transcribe(ctx context.Context, req TranscriptionRequest) (transcript.Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return transcript.Result{}, errors.New("audio path is required")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultModel
	}

	id := ulid.Make().String()
	scriptPath := filepath.Join(p.TempDir, "vidscribe-whisper-"+id+".py")
	outPath := filepath.Join(p.TempDir, "vidscribe-whisper-"+id+".json")
	if err := os.WriteFile(scriptPath, pythonHelper, 0o600); err != nil {
		return transcript.Result{}, fmt.Errorf("write helper script: %w", err)
	}
	defer os.Remove(scriptPath)
	defer os.Remove(outPath)

	args := pythonArgs(scriptPath, outPath, model, req)
	cmd := exec.CommandContext(ctx, p.Python, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	p.Logger.Debug("running openai-whisper helper", zap.String("python", p.Python), zap.String("model", model))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if strings.Contains(errText, "No module named 'whisper'") {
			return transcript.Result{}, fmt.Errorf("openai-whisper is not installed for %s; run `%s -m pip install openai-whisper`", p.Python, p.Python)
		}
		return transcript.Result{}, fmt.Errorf("openai-whisper failed: %w (%s)", err, lastLine(errText))
	}

	content, err := os.ReadFile(outPath)
	if err != nil {
		return transcript.Result{}, fmt.Errorf("read helper output: %w", err)
	}

	var res transcript.Result
	if err := json.Unmarshal(content, &res); err != nil {
		return transcript.Result{}, fmt.Errorf("decode helper output: %w", err)
	}
	return res, nil
}

func pythonArgs(scriptPath, outPath, model string, req TranscriptionRequest) []string {
	args := []string{scriptPath, "--audio", req.AudioPath, "--model", model, "--output", outPath}
	if lang := languageArg(strings.TrimSpace(req.Language)); lang != "" {
		args = append(args, "--language", lang)
	}
	if req.Prompt != "" {
		args = append(args, "--prompt", req.Prompt)
	}
	return args
}

// lastLine keeps the final line of a Python traceback, which names the exception.
func lastLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}
