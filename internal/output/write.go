package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fmueller/vidscribe/internal/transcript"
)

type artifact struct {
	path    string
	content []byte
}

// Write renders every selected encoding first and then writes each artifact
// through a temporary file and rename. When a write fails, artifacts already
// written in this call are removed again. It returns the written paths in
// canonical format order.
func Write(target Target, doc transcript.Document, formats transcript.FormatSet) ([]string, error) {
	artifacts := make([]artifact, 0, len(formats))
	for _, format := range formats {
		content, err := Render(doc, format)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact{path: target.PathFor(format), content: content})
	}

	written := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		if err := writeFileAtomic(a.path, a.content); err != nil {
			for _, path := range written {
				_ = os.Remove(path)
			}
			return nil, err
		}
		written = append(written, a.path)
	}

	return written, nil
}

func Render(doc transcript.Document, format transcript.OutputFormat) ([]byte, error) {
	switch format {
	case transcript.FormatJSON:
		content, err := doc.JSON()
		if err != nil {
			return nil, fmt.Errorf("encode json transcript: %w", err)
		}
		return content, nil
	case transcript.FormatSRT:
		return []byte(doc.SRT()), nil
	case transcript.FormatText:
		return []byte(doc.PlainText()), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tempPath := tmp.Name()

	success := false
	defer func() {
		_ = tmp.Close()
		if !success {
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("move temp file into %s: %w", path, err)
	}

	success = true
	return nil
}
