package transcript

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleResult() Result {
	return Result{
		Text:     "  Grüße <world> & more  ",
		Language: "de",
		Segments: []Segment{
			{
				ID:    0,
				Start: 0.1234567890123,
				End:   1.5,
				Text:  " Grüße <world> ",
				Words: []Word{
					{Word: " Grüße", Start: 0.1234567890123, End: 0.75, Probability: 0.987654321},
					{Word: " <world>", Start: 0.75, End: 1.5},
				},
			},
			{ID: 1, Start: 1.5, End: 2.25, Text: "& more"},
		},
	}
}

func TestFormatTrimsTextAndKeepsWords(t *testing.T) {
	t.Parallel()

	doc := Format(sampleResult())
	require.Equal(t, "Grüße <world> & more", doc.Text)
	require.Equal(t, "Grüße <world>", doc.Segments[0].Text)
	require.Equal(t, " Grüße", doc.Segments[0].Words[0].Word)
	require.NotNil(t, doc.Segments[1].Words)
	require.Empty(t, doc.Segments[1].Words)
}

func TestJSONRoundTripKeepsPrecision(t *testing.T) {
	t.Parallel()

	doc := Format(sampleResult())
	raw, err := doc.JSON()
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, doc, decoded)
	require.Equal(t, 0.1234567890123, decoded.Segments[0].Start)
	require.Equal(t, 0.987654321, decoded.Segments[0].Words[0].Probability)
}

func TestJSONLayout(t *testing.T) {
	t.Parallel()

	raw, err := Format(sampleResult()).JSON()
	require.NoError(t, err)

	out := string(raw)
	require.Contains(t, out, "\n  \"text\": \"Grüße <world> & more\",\n")
	require.Contains(t, out, `"words": []`)
	require.Contains(t, out, `"probability": 0`)
	require.NotContains(t, out, `\u003c`)
}

func TestTextView(t *testing.T) {
	t.Parallel()

	require.Equal(t, "hello world\n", Document{Text: "  hello world  "}.PlainText())
	require.Equal(t, "", Document{Text: " \n\t "}.PlainText())
}
