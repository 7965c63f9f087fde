package transcript

import (
	"strings"

	"github.com/fmueller/vidscribe/internal/apperr"
)

type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatSRT  OutputFormat = "srt"
	FormatText OutputFormat = "text"
)

var allFormats = []OutputFormat{FormatJSON, FormatSRT, FormatText}

// Extension returns the artifact file extension, including the dot.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatText:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// FormatSet is a set of output formats kept in canonical json, srt, text order.
type FormatSet []OutputFormat

func AllFormats() FormatSet {
	return append(FormatSet(nil), allFormats...)
}

func NewFormatSet(formats ...OutputFormat) FormatSet {
	seen := make(map[OutputFormat]bool, len(formats))
	for _, f := range formats {
		seen[f] = true
	}

	set := FormatSet{}
	for _, f := range allFormats {
		if seen[f] {
			set = append(set, f)
		}
	}
	return set
}

func (s FormatSet) Has(f OutputFormat) bool {
	for _, candidate := range s {
		if candidate == f {
			return true
		}
	}
	return false
}

func (s FormatSet) Union(other ...OutputFormat) FormatSet {
	return NewFormatSet(append(append([]OutputFormat(nil), s...), other...)...)
}

func (s FormatSet) Empty() bool {
	return len(s) == 0
}

func (s FormatSet) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = string(f)
	}
	return strings.Join(parts, ",")
}

// ParseFormats parses a comma separated, case-insensitive list of formats.
// "all" selects every format and blank input yields an empty set.
func ParseFormats(list string) (FormatSet, error) {
	var (
		selected []OutputFormat
		unknown  []string
	)

	for _, raw := range strings.Split(list, ",") {
		token := strings.ToLower(strings.TrimSpace(raw))
		switch token {
		case "":
			continue
		case "all":
			selected = append(selected, allFormats...)
		case string(FormatJSON), string(FormatSRT), string(FormatText):
			selected = append(selected, OutputFormat(token))
		default:
			unknown = append(unknown, strings.TrimSpace(raw))
		}
	}

	if len(unknown) > 0 {
		return nil, apperr.Validationf("unknown output format(s): %s (expected all, json, srt, text)", strings.Join(unknown, ", "))
	}

	return NewFormatSet(selected...), nil
}
