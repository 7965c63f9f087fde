package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/fmueller/vidscribe/internal/whisper"
	"github.com/stretchr/testify/require"
)

func TestServePreflightFailsBeforeListening(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.app.modelFn = func(context.Context) (whisper.ResolvedModel, error) {
		return whisper.ResolvedModel{}, errors.New("model \"large-v3\" is missing")
	}

	stdout, _, err := ta.run(t, "serve")
	require.ErrorContains(t, err, "is missing")
	require.NotContains(t, stdout, "VIDSCRIBE")
}

func TestServeEngineFailureFailsBeforeListening(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.app.engineFn = func() (whisper.Engine, error) {
		return nil, errors.New("whisper engine not found")
	}

	_, _, err := ta.run(t, "serve", "--port", "18080")
	require.ErrorContains(t, err, "whisper engine not found")
}
