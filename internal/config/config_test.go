package config

import (
	"testing"

	"github.com/fmueller/vidscribe/internal/apperr"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Parallel()

	s, err := FromEnv(envMap(nil))
	require.NoError(t, err)
	require.Equal(t, Defaults(), s)
	require.Equal(t, "whisper-cli", s.Engine)
	require.Equal(t, "large-v3", s.Model)
	require.Equal(t, 8000, s.Port)
	require.Equal(t, ":8000", s.Addr())
	require.NoError(t, s.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Parallel()

	s, err := FromEnv(envMap(map[string]string{
		"VIDSCRIBE_ENGINE":       "openai-whisper",
		"VIDSCRIBE_WHISPER_PATH": "/opt/whisper-cli",
		"VIDSCRIBE_PYTHON":       "/venv/bin/python",
		"VIDSCRIBE_FFMPEG":       "/usr/local/bin/ffmpeg",
		"VIDSCRIBE_MODEL":        "base",
		"VIDSCRIBE_MODEL_DIR":    "/models",
		"VIDSCRIBE_LANGUAGE":     "de",
		"VIDSCRIBE_TMPDIR":       "/scratch",
		"VIDSCRIBE_MAX_UPLOAD":   "512M",
		"PORT":                   " 9090 ",
	}))
	require.NoError(t, err)
	require.Equal(t, Settings{
		Engine:      "openai-whisper",
		WhisperPath: "/opt/whisper-cli",
		Python:      "/venv/bin/python",
		FFmpeg:      "/usr/local/bin/ffmpeg",
		Model:       "base",
		ModelDir:    "/models",
		Language:    "de",
		TempDir:     "/scratch",
		MaxUpload:   "512M",
		Port:        9090,
	}, s)
	require.NoError(t, s.Validate())
	require.Greater(t, s.MaxUploadBytes(), int64(500_000_000))
	require.Less(t, s.MaxUploadBytes(), Defaults().MaxUploadBytes())
}

func TestFromEnvRejectsNonNumericPort(t *testing.T) {
	t.Parallel()

	_, err := FromEnv(envMap(map[string]string{"PORT": "http"}))
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestValidateReportsEveryProblem(t *testing.T) {
	t.Parallel()

	s := Defaults()
	s.Engine = "vosk"
	s.Port = 70000
	s.MaxUpload = "lots"
	s.FFmpeg = ""

	err := s.Validate()
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.KindValidation))

	msg := err.Error()
	require.Contains(t, msg, `VIDSCRIBE_ENGINE must be one of whisper-cli, openai-whisper (got "vosk")`)
	require.Contains(t, msg, "PORT must be between 1 and 65535")
	require.Contains(t, msg, "VIDSCRIBE_MAX_UPLOAD must be a size")
	require.Contains(t, msg, "VIDSCRIBE_FFMPEG must not be empty")
}

func TestDefaultMaxUploadBytes(t *testing.T) {
	t.Parallel()

	require.GreaterOrEqual(t, Defaults().MaxUploadBytes(), int64(2_000_000_000))
}
