// Package extract defines the document-extraction collaborator contract and
// a file-backed implementation reading the upstream extractor's output.
package extract

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Source yields extracted document fields for a provider. An empty map is a
// normal outcome: absence of extracted data is not an error.
type Source interface {
	Fields(ctx context.Context, providerID string) (map[string]any, error)
}

// FileSource reads extractor output from a JSON or YAML file. The file holds
// either a single field map, or a mapping of provider_id to field map.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for the given path. An empty path is a
// valid null source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fields(_ context.Context, providerID string) (map[string]any, error) {
	if s.path == "" {
		return map[string]any{}, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, eris.Wrapf(err, "extract: read %s", s.path)
	}

	unmarshal := json.Unmarshal
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	}

	// A file whose every value is itself an object is a per-provider
	// mapping; anything else is one provider's flat field map.
	var multi map[string]map[string]any
	if err := unmarshal(data, &multi); err == nil {
		fields := multi[providerID]
		if fields == nil {
			fields = map[string]any{}
		}
		return fields, nil
	}

	var flat map[string]any
	if err := unmarshal(data, &flat); err != nil {
		return nil, eris.Wrapf(err, "extract: parse %s", s.path)
	}
	if flat == nil {
		flat = map[string]any{}
	}
	return flat, nil
}

// StaticSource serves a fixed field map, mainly for tests and single-shot
// CLI invocations where the fields were already loaded.
type StaticSource map[string]any

func (s StaticSource) Fields(context.Context, string) (map[string]any, error) {
	return s, nil
}
