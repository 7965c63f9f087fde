package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fmueller/vidscribe/internal/transcript"
)

const blankAudioToken = "[BLANK_AUDIO]"

func isBlankTranscript(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}

	return strings.EqualFold(trimmed, blankAudioToken)
}

func noSpeechHint() string {
	return "No speech detected. Check that the input has an audio track with audible speech."
}

func printSummary(w io.Writer, doc transcript.Document, written []string) {
	for _, path := range written {
		fmt.Fprintf(w, "Wrote %s\n", path)
	}

	language := doc.Language
	if language == "" {
		language = "unknown"
	}
	fmt.Fprintf(w, "Language: %s\n", language)
	fmt.Fprintf(w, "Segments: %d\n", len(doc.Segments))
}
