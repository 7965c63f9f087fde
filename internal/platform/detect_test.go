package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultModelDirFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		goos    string
		home    string
		xdgData string
		want    string
	}{
		{name: "linux with xdg", goos: "linux", home: "/home/dev", xdgData: "/tmp/xdg-data", want: "/tmp/xdg-data/vidscribe/models"},
		{name: "linux without xdg", goos: "linux", home: "/home/dev", want: "/home/dev/.local/share/vidscribe/models"},
		{name: "freebsd", goos: "freebsd", home: "/home/dev", want: "/home/dev/.local/share/vidscribe/models"},
		{name: "macos", goos: "darwin", home: "/Users/dev", want: "/Users/dev/Library/Application Support/vidscribe/models"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir, err := DefaultModelDirFor(tt.goos, tt.home, tt.xdgData)
			require.NoError(t, err)
			require.Equal(t, tt.want, dir)
		})
	}
}

func TestDefaultModelDirForUnsupportedOS(t *testing.T) {
	t.Parallel()

	_, err := DefaultModelDirFor("windows", "/Users/dev", "")
	require.Error(t, err)
}

func TestDefaultModelDirForEmptyHome(t *testing.T) {
	t.Parallel()

	_, err := DefaultModelDirFor("linux", "", "")
	require.Error(t, err)
}

func TestResolveModelDirOverride(t *testing.T) {
	t.Parallel()

	dir, err := ResolveModelDir("/srv/models/../models/")
	require.NoError(t, err)
	require.Equal(t, "/srv/models", dir)
}

func TestResolveTempDir(t *testing.T) {
	t.Parallel()

	dir, err := ResolveTempDir("")
	require.NoError(t, err)
	require.Equal(t, os.TempDir(), dir)

	override := filepath.Join(t.TempDir(), "scratch", "uploads")
	dir, err = ResolveTempDir(override)
	require.NoError(t, err)
	require.Equal(t, override, dir)
	require.DirExists(t, override)
}

func TestRuntimeTarget(t *testing.T) {
	t.Parallel()

	require.Equal(t, "linux_arm64", Runtime{OS: "linux", Arch: NormalizeArch("aarch64")}.Target())
	require.Equal(t, "darwin_amd64", Runtime{OS: "darwin", Arch: NormalizeArch("x86_64")}.Target())
	require.Equal(t, "linux_riscv64", Runtime{OS: "linux", Arch: NormalizeArch("riscv64")}.Target())
}
