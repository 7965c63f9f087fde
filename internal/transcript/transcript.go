// Package transcript holds the time-aligned transcription model and renders it as
// JSON, SRT subtitles and plain text.
package transcript

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Result is the raw output of a speech engine.
type Result struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words"`
}

type Word struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

// Document is the normalized view every output encoding is rendered from.
type Document struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Format normalizes a Result: top-level and segment text are trimmed, word
// text is kept as the engine produced it, and words is never nil.
func Format(res Result) Document {
	doc := Document{
		Text:     strings.TrimSpace(res.Text),
		Language: res.Language,
		Segments: make([]Segment, 0, len(res.Segments)),
	}

	for _, seg := range res.Segments {
		words := make([]Word, len(seg.Words))
		copy(words, seg.Words)
		doc.Segments = append(doc.Segments, Segment{
			ID:    seg.ID,
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
			Words: words,
		})
	}

	return doc
}

// JSON renders the document with two-space indentation. HTML characters and
// non-ASCII text are left unescaped.
func (d Document) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PlainText renders the plain transcript followed by one newline, or "" when empty.
func (d Document) PlainText() string {
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return ""
	}
	return text + "\n"
}
