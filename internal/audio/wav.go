package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	SampleRate = 16000
	Channels   = 1
	BitDepth   = 16

	wavFormatPCM = 1
)

var (
	ErrInvalidWAV       = errors.New("invalid wav file")
	ErrUnexpectedFormat = errors.New("unexpected wav format")
)

type Info struct {
	Channels   int
	SampleRate int
	BitDepth   int
	Format     int
}

// Validate reports whether the file matches what speech engines expect:
// 16-bit PCM, mono, 16 kHz.
func (i Info) Validate() error {
	if i.Format != wavFormatPCM || i.Channels != Channels || i.SampleRate != SampleRate || i.BitDepth != BitDepth {
		return fmt.Errorf("%w: got %d ch, %d Hz, %d bit (format %d), want %d ch, %d Hz, %d bit PCM",
			ErrUnexpectedFormat, i.Channels, i.SampleRate, i.BitDepth, i.Format, Channels, SampleRate, BitDepth)
	}
	return nil
}

type Levels struct {
	RMSdBFS  float64
	PeakdBFS float64
	Samples  int64
	Duration time.Duration
}

func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Info{}, invalidWAV(dec.Err())
	}

	return infoOf(dec), nil
}

// Analyze streams the PCM data of a WAV file and measures its loudness.
func Analyze(path string) (Levels, error) {
	f, err := os.Open(path)
	if err != nil {
		return Levels{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Levels{}, invalidWAV(dec.Err())
	}

	info := infoOf(dec)
	if info.Format != wavFormatPCM || info.BitDepth <= 0 || info.Channels <= 0 {
		return Levels{}, fmt.Errorf("%w: format %d, %d bit", ErrUnexpectedFormat, info.Format, info.BitDepth)
	}

	fullScale := float64(int64(1) << (info.BitDepth - 1))
	buf := &goaudio.IntBuffer{
		Data:   make([]int, 4096),
		Format: &goaudio.Format{NumChannels: info.Channels, SampleRate: info.SampleRate},
	}

	var (
		peak       float64
		sumSquares float64
		samples    int64
	)

	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return Levels{}, fmt.Errorf("read wav samples: %w", err)
		}
		if n == 0 {
			break
		}

		for _, raw := range buf.Data[:n] {
			value := float64(raw) / fullScale
			abs := math.Abs(value)
			if abs > peak {
				peak = abs
			}
			sumSquares += value * value
		}
		samples += int64(n)
	}

	levels := Levels{Samples: samples}
	if info.SampleRate > 0 {
		frames := samples / int64(info.Channels)
		levels.Duration = time.Duration(frames) * time.Second / time.Duration(info.SampleRate)
	}

	if samples == 0 {
		levels.RMSdBFS = math.Inf(-1)
		levels.PeakdBFS = math.Inf(-1)
		return levels, nil
	}

	levels.RMSdBFS = amplitudeToDBFS(math.Sqrt(sumSquares / float64(samples)))
	levels.PeakdBFS = amplitudeToDBFS(peak)
	return levels, nil
}

// IsSilent applies the silence gate: RMS at or below the threshold and peak
// no more than 6 dB above it.
func IsSilent(levels Levels, thresholdDBFS float64) bool {
	if levels.Samples == 0 {
		return true
	}
	if math.IsInf(levels.RMSdBFS, -1) && math.IsInf(levels.PeakdBFS, -1) {
		return true
	}

	peakGate := thresholdDBFS + 6
	return levels.RMSdBFS <= thresholdDBFS && levels.PeakdBFS <= peakGate
}

func infoOf(dec *wav.Decoder) Info {
	return Info{
		Channels:   int(dec.NumChans),
		SampleRate: int(dec.SampleRate),
		BitDepth:   int(dec.BitDepth),
		Format:     int(dec.WavAudioFormat),
	}
}

func invalidWAV(cause error) error {
	if cause == nil {
		return ErrInvalidWAV
	}
	return fmt.Errorf("%w: %v", ErrInvalidWAV, cause)
}

func amplitudeToDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}
	return 20.0 * math.Log10(amplitude)
}
