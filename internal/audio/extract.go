// Package audio converts media into speech-engine input and inspects the result.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Converter turns an arbitrary audio or video file into a mono 16 kHz 16-bit PCM WAV.
type Converter interface {
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
}

type FFmpeg struct {
	Path   string
	Logger *zap.Logger
}

func NewFFmpeg(path string, logger *zap.Logger) *FFmpeg {
	if strings.TrimSpace(path) == "" {
		path = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpeg{Path: path, Logger: logger}
}

func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath(f.Path)
	return err == nil
}

func (f *FFmpeg) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	if strings.TrimSpace(inputPath) == "" {
		return errors.New("input path is required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path is required")
	}

	args := extractArgs(inputPath, outputPath)
	cmd := exec.CommandContext(ctx, f.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	f.Logger.Debug("running ffmpeg", zap.String("ffmpeg", f.Path), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			return fmt.Errorf("ffmpeg: %w", err)
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, diag)
	}

	return nil
}

func extractArgs(inputPath, outputPath string) []string {
	return []string{
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(Channels),
		"-ar", strconv.Itoa(SampleRate),
		"-f", "wav",
		outputPath,
	}
}
