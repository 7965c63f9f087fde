// Package output decides where transcript artifacts go and writes them.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmueller/vidscribe/internal/apperr"
	"github.com/fmueller/vidscribe/internal/transcript"
)

const stdinBase = "transcript"

type PathInfo struct {
	Exists bool
	IsDir  bool
}

// Target is a resolved output location. JSONPath, when set, overrides the
// derived JSON artifact path.
type Target struct {
	Dir      string
	Base     string
	JSONPath string
}

func (t Target) PathFor(format transcript.OutputFormat) string {
	if format == transcript.FormatJSON && t.JSONPath != "" {
		return t.JSONPath
	}
	return filepath.Join(t.Dir, t.Base+format.Extension())
}

func (t Target) Paths(formats transcript.FormatSet) []string {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		paths = append(paths, t.PathFor(format))
	}
	return paths
}

// ResolveTarget maps the output argument onto a directory and file base name.
// info describes outputArg on disk and is passed in so resolution stays pure.
func ResolveTarget(outputArg, inputPath string, fromStdin bool, info PathInfo, formats transcript.FormatSet) (Target, error) {
	if strings.TrimSpace(outputArg) == "" {
		return Target{}, apperr.Validationf("output path is required")
	}

	inputBase := stdinBase
	if !fromStdin {
		inputBase = stem(inputPath)
	}

	ext := fileExt(outputArg)
	switch {
	case info.Exists && info.IsDir:
		return Target{Dir: outputArg, Base: inputBase}, nil
	case info.Exists || ext != "":
		target := Target{Dir: filepath.Dir(outputArg), Base: stem(outputArg)}
		if ext == transcript.FormatJSON.Extension() && formats.Has(transcript.FormatJSON) {
			target.JSONPath = outputArg
		}
		return target, nil
	default:
		return Target{Dir: outputArg, Base: inputBase}, nil
	}
}

func Stat(path string) (PathInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return PathInfo{}, nil
		}
		return PathInfo{}, fmt.Errorf("stat output path: %w", err)
	}
	return PathInfo{Exists: true, IsDir: fi.IsDir()}, nil
}

// EnsureWritable creates dir when needed and proves it accepts new files.
func EnsureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Validation(fmt.Sprintf("cannot create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".vidscribe-write-test-*")
	if err != nil {
		return apperr.Validation(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, fileExt(base))
}

// fileExt is like filepath.Ext, except that a leading dot (".transcripts")
// or a trailing one ("notes.") does not start an extension.
func fileExt(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || i == len(base)-1 {
		return ""
	}
	return base[i:]
}
