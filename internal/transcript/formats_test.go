package transcript

import (
	"testing"

	"github.com/fmueller/vidscribe/internal/apperr"
	"github.com/stretchr/testify/require"
)

func TestParseFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		list string
		want FormatSet
	}{
		{name: "all upper", list: "ALL", want: FormatSet{FormatJSON, FormatSRT, FormatText}},
		{name: "mixed case with spaces", list: "json, SRT", want: FormatSet{FormatJSON, FormatSRT}},
		{name: "canonical order", list: "text,json", want: FormatSet{FormatJSON, FormatText}},
		{name: "duplicates", list: "srt,SRT,srt", want: FormatSet{FormatSRT}},
		{name: "all with extra", list: "json,all", want: FormatSet{FormatJSON, FormatSRT, FormatText}},
		{name: "empty tokens", list: "json,,", want: FormatSet{FormatJSON}},
		{name: "blank", list: "   ", want: FormatSet{}},
		{name: "empty", list: "", want: FormatSet{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormats(tt.list)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormatsUnknownToken(t *testing.T) {
	t.Parallel()

	_, err := ParseFormats("xyz")
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.KindValidation))
	require.Contains(t, err.Error(), "xyz")

	_, err = ParseFormats("json,vtt,Docx")
	require.Error(t, err)
	require.Contains(t, err.Error(), "vtt, Docx")
}

func TestFormatSetUnion(t *testing.T) {
	t.Parallel()

	set := FormatSet{}.Union(FormatText)
	require.Equal(t, FormatSet{FormatText}, set)
	require.Equal(t, FormatSet{FormatJSON, FormatSRT, FormatText}, FormatSet{FormatJSON}.Union(FormatText, FormatSRT))
	require.True(t, FormatSet{}.Empty())
	require.Equal(t, "json,text", FormatSet{FormatJSON, FormatText}.String())
	require.Equal(t, ".txt", FormatText.Extension())
	require.Equal(t, ".srt", FormatSRT.Extension())
}
