package whisper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPromptEmpty(t *testing.T) {
	t.Parallel()

	prompt, dropped := BuildPrompt(nil)
	require.Empty(t, prompt)
	require.Zero(t, dropped)
}

func TestBuildPromptKeepsOrderAndCase(t *testing.T) {
	t.Parallel()

	prompt, dropped := BuildPrompt([]string{"Zigbee", "gRPC", "zigbee"})
	require.Equal(t, "The following words may appear in the audio: Zigbee, gRPC, zigbee", prompt)
	require.Zero(t, dropped)
}

func TestBuildPromptCapsTerms(t *testing.T) {
	t.Parallel()

	vocabulary := make([]string, 60)
	for i := range vocabulary {
		vocabulary[i] = fmt.Sprintf("term%02d", i)
	}

	prompt, dropped := BuildPrompt(vocabulary)
	require.Equal(t, 10, dropped)
	require.True(t, strings.HasSuffix(prompt, "term48, term49"))
	require.NotContains(t, prompt, "term50")
	require.Len(t, strings.Split(strings.TrimPrefix(prompt, promptPrefix), ", "), MaxPromptTerms)
}
