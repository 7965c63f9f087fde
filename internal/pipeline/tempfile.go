package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// SpoolMedia copies r into a uniquely named file under dir and returns its
// path and a cleanup func. The suffix keeps the original container extension
// so ffmpeg can probe it.
func SpoolMedia(dir, prefix, suffix string, r io.Reader) (string, func(), error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}

	path := filepath.Join(dir, prefix+ulid.Make().String()+suffix)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp media file: %w", err)
	}
	cleanup := func() { removeQuietly(path) }

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write temp media file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close temp media file: %w", err)
	}

	return path, cleanup, nil
}
