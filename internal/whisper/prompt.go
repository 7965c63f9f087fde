package whisper

import "strings"

const (
	MaxPromptTerms = 50
	promptPrefix   = "The following words may appear in the audio: "
)

// BuildPrompt turns a vocabulary into an initial prompt. Only the first
// MaxPromptTerms entries are used, in their given order; dropped reports how
// many were left out.
func BuildPrompt(vocabulary []string) (prompt string, dropped int) {
	if len(vocabulary) == 0 {
		return "", 0
	}

	terms := vocabulary
	if len(terms) > MaxPromptTerms {
		dropped = len(terms) - MaxPromptTerms
		terms = terms[:MaxPromptTerms]
	}

	return promptPrefix + strings.Join(terms, ", "), dropped
}
