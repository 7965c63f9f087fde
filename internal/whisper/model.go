package whisper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultModel is the large multilingual model; accuracy matters more than
// speed for offline transcripts.
const DefaultModel = "large-v3"

const modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// Model is a ggml model published by whisper.cpp, pinned to its sha256.
type Model struct {
	Name   string
	SHA256 string
}

func (m Model) FileName() string {
	return "ggml-" + m.Name + ".bin"
}

func (m Model) URL() string {
	return modelBaseURL + m.FileName()
}

// ResolvedModel is where a model lives on disk and, for named models, where
// it comes from.
type ResolvedModel struct {
	Name          string
	Path          string
	URL           string
	SHA256        string
	NeedsDownload bool
	IsCustomPath  bool
}

var registry = []Model{
	{Name: "tiny", SHA256: "be07e048e1e599ad46341c8d2a135645097a538221678b7acdd1b1919c6e1b21"},
	{Name: "base", SHA256: "60ed5bc3dd14eea856493d334349b405782ddcaf0028d4b5df4088345fba2efe"},
	{Name: "small", SHA256: "1be3a9b2063867b937e64e2ec7483364a79917e157fa98c5d94b5c1fffea987b"},
	{Name: "medium", SHA256: "6c14d5adee5f86394037b4e4e8b59f1673b6cee10e3cf0b11bbdbee79c156208"},
	{Name: "large-v3", SHA256: "64d182b440b98d5203c4f9bd541544d84c605196c4f7b845dfa11fb23594d1e2"},
}

// ModelNames lists the registry in ascending model size.
func ModelNames() []string {
	names := make([]string, len(registry))
	for i, m := range registry {
		names[i] = m.Name
	}
	return names
}

func LookupModel(name string) (Model, bool) {
	i := slices.IndexFunc(registry, func(m Model) bool { return m.Name == name })
	if i < 0 {
		return Model{}, false
	}
	return registry[i], true
}

// ResolveModel accepts a registry name, stored under modelDir, or a path to a
// ggml file.
func ResolveModel(modelRef, modelDir string) (ResolvedModel, error) {
	modelRef = strings.TrimSpace(modelRef)
	if modelRef == "" {
		modelRef = DefaultModel
	}

	if model, ok := LookupModel(modelRef); ok {
		return resolveNamed(model, modelDir)
	}
	if !looksLikePath(modelRef) {
		return ResolvedModel{}, fmt.Errorf("unknown model %q (known models: %s)", modelRef, strings.Join(ModelNames(), ", "))
	}
	return resolveCustom(modelRef)
}

func resolveNamed(model Model, modelDir string) (ResolvedModel, error) {
	if strings.TrimSpace(modelDir) == "" {
		return ResolvedModel{}, errors.New("model directory must not be empty for named model")
	}

	resolved := ResolvedModel{
		Name:   model.Name,
		Path:   filepath.Join(modelDir, model.FileName()),
		URL:    model.URL(),
		SHA256: model.SHA256,
	}

	_, err := os.Stat(resolved.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		resolved.NeedsDownload = true
	case err != nil:
		return ResolvedModel{}, fmt.Errorf("stat model path: %w", err)
	}
	return resolved, nil
}

func resolveCustom(ref string) (ResolvedModel, error) {
	path := filepath.Clean(ref)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ResolvedModel{}, fmt.Errorf("custom model path does not exist: %s", path)
		}
		return ResolvedModel{}, fmt.Errorf("stat custom model path: %w", err)
	}
	return ResolvedModel{Path: path, IsCustomPath: true}, nil
}

// EngineModelRef returns what an engine expects as its model argument: the
// ggml file for whisper-cli, the model name for openai-whisper.
func (r ResolvedModel) EngineModelRef(engine string) string {
	if engine == EnginePython && !r.IsCustomPath && r.Name != "" {
		return r.Name
	}
	return r.Path
}

func looksLikePath(input string) bool {
	return strings.ContainsRune(input, os.PathSeparator) || strings.HasSuffix(strings.ToLower(input), ".bin")
}
