package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTextSkipsBlankLines(t *testing.T) {
	t.Parallel()

	terms := ParseText("Kubernetes\n\n  gRPC  \r\n\t\nZigbee\n")
	require.Equal(t, []string{"Kubernetes", "gRPC", "Zigbee"}, terms)
}

func TestParseTextEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, ParseText(""))
	require.Empty(t, ParseText("\n \n"))
}

func TestLoadKeepsOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vocab.txt")
	require.NoError(t, os.WriteFile(path, []byte("beta\nalpha\nbeta\n"), 0o644))

	terms, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"beta", "alpha", "beta"}, terms)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
