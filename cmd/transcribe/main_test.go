package main

import (
	"errors"
	"testing"

	"github.com/fmueller/vidscribe/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestShouldPrintUsageHint(t *testing.T) {
	t.Parallel()

	require.True(t, shouldPrintUsageHint(errors.New("unknown command \"bad\" for \"transcribe serve\"")))
	require.True(t, shouldPrintUsageHint(errors.New("unknown flag: --oops")))
	require.True(t, shouldPrintUsageHint(errors.New("accepts 2 arg(s), received 1")))
	require.True(t, shouldPrintUsageHint(errors.New("unknown output format(s): vtt (expected all, json, srt, text)")))
	require.True(t, shouldPrintUsageHint(errors.New("no output formats selected")))
	require.False(t, shouldPrintUsageHint(errors.New("download model \"large-v3\": context deadline exceeded")))
	require.False(t, shouldPrintUsageHint(errors.New(`video file "talk.mp4" not found`)))
	require.False(t, shouldPrintUsageHint(nil))
}

func TestHelpHintTarget(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCmd()
	require.Equal(t, "transcribe", helpHintTarget(root, []string{"--badflag"}))
	require.Equal(t, "transcribe", helpHintTarget(root, []string{"talk.mp4"}))
	require.Equal(t, "transcribe", helpHintTarget(root, nil))
	require.Equal(t, "transcribe serve", helpHintTarget(root, []string{"serve", "extra"}))
	require.Equal(t, "transcribe setup", helpHintTarget(root, []string{"setup", "--check"}))
	require.Equal(t, "transcribe", helpHintTarget(nil, nil))
}
