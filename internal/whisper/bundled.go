package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fmueller/vidscribe/internal/platform"
	"github.com/fmueller/vidscribe/internal/transcript"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// BundledEngine runs the whisper-cli binary shipped next to the vidscribe executable.
type BundledEngine struct {
	Executable string
	TempDir    string
	Logger     *zap.Logger
}

// NewBundledEngine locates whisper-cli. A non-empty override wins over the
// bundled locations.
func NewBundledEngine(override, tempDir string, logger *zap.Logger) (*BundledEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	if override = strings.TrimSpace(override); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("whisper-cli override is not executable: %w", err)
		}
		return &BundledEngine{Executable: override, TempDir: tempDir, Logger: logger}, nil
	}

	selfExe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve vidscribe executable path: %w", err)
	}

	whisperExe, err := ResolveBundledEnginePath(selfExe)
	if err != nil {
		return nil, err
	}

	return &BundledEngine{Executable: whisperExe, TempDir: tempDir, Logger: logger}, nil
}

func ResolveBundledEnginePath(selfExecutable string) (string, error) {
	for _, candidate := range EnginePathCandidates(selfExecutable) {
		if err := ensureExecutable(candidate); err == nil {
			return candidate, nil
		}
	}

	if onPath, err := exec.LookPath(engineBinaryName()); err == nil {
		return onPath, nil
	}

	return "", fmt.Errorf("whisper engine not found near %s or on PATH; expected at ../libexec/whisper/%s or set VIDSCRIBE_WHISPER_PATH", selfExecutable, engineBinaryName())
}

func EnginePathCandidates(selfExecutable string) []string {
	binDir := filepath.Dir(selfExecutable)
	engineName := engineBinaryName()
	hostTarget := platform.CurrentRuntime().Target()

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, "packaging", "whisper", hostTarget, engineName),
		filepath.Join(binDir, engineName),
	}
}

func (b *BundledEngine) Transcribe(ctx context.Context, req TranscriptionRequest) (transcript.Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return transcript.Result{}, errors.New("audio path is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return transcript.Result{}, errors.New("model path is required")
	}

	if err := ensureExecutable(b.Executable); err != nil {
		return transcript.Result{}, fmt.Errorf("whisper engine missing or not executable: %w", err)
	}

	outBase := filepath.Join(b.tempDir(), "whisper-"+ulid.Make().String())
	jsonOut := outBase + ".json"
	defer os.Remove(jsonOut)

	args := cliArgs(req, outBase)
	cmd := exec.CommandContext(ctx, b.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	b.log().Debug("running whisper engine", zap.String("engine", b.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingSharedLibraryError(errText) {
			return transcript.Result{}, fmt.Errorf("whisper engine at %s is missing required shared libraries (%s); reinstall vidscribe or rebuild whisper-cli with BUILD_SHARED_LIBS=OFF", b.Executable, errText)
		}
		if isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()) {
			return transcript.Result{}, fmt.Errorf("whisper engine crashed with an illegal CPU instruction; " +
				"your CPU may lack required instruction set extensions; " +
				"set VIDSCRIBE_WHISPER_PATH to a whisper-cli binary built for your CPU")
		}
		return transcript.Result{}, fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
	}

	content, err := os.ReadFile(jsonOut)
	if err != nil {
		return transcript.Result{}, fmt.Errorf("read whisper output: %w", err)
	}

	return decodeCLIOutput(content)
}

func cliArgs(req TranscriptionRequest, outBase string) []string {
	// -ojf includes per-token offsets and probabilities; -np keeps the engine quiet.
	args := []string{"-m", req.Model, "-f", req.AudioPath, "-np", "-ojf", "-of", outBase}

	lang := languageArg(strings.TrimSpace(req.Language))
	if lang == "" {
		lang = "auto"
	}
	args = append(args, "-l", lang)

	if req.Prompt != "" {
		args = append(args, "--prompt", req.Prompt)
	}
	return args
}

func (b *BundledEngine) tempDir() string {
	if b.TempDir == "" {
		return os.TempDir()
	}
	return b.TempDir
}

func (b *BundledEngine) log() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	patterns := []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	}

	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}
