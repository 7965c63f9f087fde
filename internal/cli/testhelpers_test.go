package cli

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fmueller/vidscribe/internal/audio"
	"github.com/fmueller/vidscribe/internal/config"
	"github.com/fmueller/vidscribe/internal/transcript"
	"github.com/fmueller/vidscribe/internal/whisper"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args []string) (stdout string, stderr string, err error) {
	t.Helper()

	return executeCommand(t, NewRootCmd(), args)
}

func executeCommand(t *testing.T, cmd *cobra.Command, args []string) (string, string, error) {
	t.Helper()

	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

type fakeConverter struct {
	inputs   []string
	contents []string
	err      error
}

func (f *fakeConverter) ExtractAudio(_ context.Context, inputPath, outputPath string) error {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	f.inputs = append(f.inputs, inputPath)
	f.contents = append(f.contents, string(content))
	if f.err != nil {
		return f.err
	}
	return writeSpeechWAV(outputPath)
}

type fakeEngine struct {
	result   transcript.Result
	err      error
	requests []whisper.TranscriptionRequest
}

func (f *fakeEngine) Transcribe(_ context.Context, req whisper.TranscriptionRequest) (transcript.Result, error) {
	f.requests = append(f.requests, req)
	return f.result, f.err
}

// testApp wires an appState to fakes so no ffmpeg, engine binary or model
// download is needed.
type testApp struct {
	app       *appState
	converter *fakeConverter
	engine    *fakeEngine
	tempDir   string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	settings := config.Defaults()
	settings.TempDir = t.TempDir()

	ta := &testApp{
		app:       newAppState(settings),
		converter: &fakeConverter{},
		engine: &fakeEngine{result: transcript.Result{
			Text:     " Hello world. ",
			Language: "en",
			Segments: []transcript.Segment{
				{ID: 0, Start: 0, End: 1.5, Text: " Hello world. ", Words: []transcript.Word{
					{Word: " Hello", Start: 0, End: 0.7, Probability: 0.9},
					{Word: " world.", Start: 0.7, End: 1.5, Probability: 0.8},
				}},
			},
		}},
		tempDir: settings.TempDir,
	}
	ta.app.modelFn = func(context.Context) (whisper.ResolvedModel, error) {
		return whisper.ResolvedModel{Path: "/models/ggml-test.bin", IsCustomPath: true}, nil
	}
	ta.app.converterFn = func() (audio.Converter, error) { return ta.converter, nil }
	ta.app.engineFn = func() (whisper.Engine, error) { return ta.engine, nil }
	return ta
}

func (ta *testApp) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	return executeCommand(t, newRootCmd(ta.app), append(args, "--no-progress"))
}

func writeSpeechWAV(path string) error {
	samples := make([]int, 1600)
	for i := range samples {
		samples[i] = int(0.3 * 32767 * math.Sin(2*math.Pi*440*float64(i)/16000.0))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 16000, 16, 1, 1)
	if err := enc.Write(&goaudio.IntBuffer{
		Data:           samples,
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 16000},
		SourceBitDepth: 16,
	}); err != nil {
		return err
	}
	return enc.Close()
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
