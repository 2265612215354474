package schema

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader supplies the field schema of a content type.
type Loader interface {
	LoadFieldSchema(ctx context.Context, ctype string) (ContentTypeSchema, error)
}

// MemoryLoader keeps schemas registered at startup.
type MemoryLoader struct {
	mu      sync.RWMutex
	schemas map[string]ContentTypeSchema
}

// NewMemoryLoader registers the supplied schemas. Invalid schemas are reported.
func NewMemoryLoader(schemas ...ContentTypeSchema) (*MemoryLoader, error) {
	loader := &MemoryLoader{schemas: make(map[string]ContentTypeSchema, len(schemas))}
	for _, s := range schemas {
		if err := loader.Register(s); err != nil {
			return nil, err
		}
	}
	return loader, nil
}

// Register validates and stores a schema, replacing any earlier one with the
// same name.
func (l *MemoryLoader) Register(s ContentTypeSchema) error {
	if err := s.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.schemas == nil {
		l.schemas = make(map[string]ContentTypeSchema)
	}
	l.schemas[canonical(s.Name)] = cloneSchema(s)
	return nil
}

// LoadFieldSchema implements Loader.
func (l *MemoryLoader) LoadFieldSchema(_ context.Context, ctype string) (ContentTypeSchema, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.schemas[canonical(ctype)]
	if !ok {
		return ContentTypeSchema{}, fmt.Errorf("%w: %s", ErrSchemaNotFound, ctype)
	}
	return cloneSchema(s), nil
}

// Names lists the registered content types.
func (l *MemoryLoader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.schemas))
	for name := range l.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type schemaFile struct {
	ContentTypeSchema `yaml:",inline"`
	Types             []ContentTypeSchema `yaml:"types,omitempty"`
}

// ParseSchemas decodes YAML or JSON schema definitions. A document may hold
// a single content type or a `types` list.
func ParseSchemas(raw []byte) ([]ContentTypeSchema, error) {
	var file schemaFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	out := append([]ContentTypeSchema(nil), file.Types...)
	if strings.TrimSpace(file.Name) != "" {
		out = append(out, file.ContentTypeSchema)
	}
	for i := range out {
		normalizeSchema(&out[i])
	}
	return out, nil
}

// LoadFiles reads every .yaml, .yml and .json file under the given paths
// (files or directories, not recursive) into a MemoryLoader.
func LoadFiles(paths ...string) (*MemoryLoader, error) {
	loader := &MemoryLoader{schemas: map[string]ContentTypeSchema{}}
	for _, path := range paths {
		files, err := schemaFiles(path)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			raw, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("schema: read %s: %w", file, err)
			}
			schemas, err := ParseSchemas(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			for _, s := range schemas {
				if err := loader.Register(s); err != nil {
					return nil, fmt.Errorf("%s: %w", file, err)
				}
			}
		}
	}
	return loader, nil
}

func schemaFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
			out = append(out, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// normalizeSchema converts YAML decoded nested maps so config values only
// hold map[string]any and []any.
func normalizeSchema(s *ContentTypeSchema) {
	for i := range s.Fields {
		field := &s.Fields[i]
		field.Default = normalizeValue(field.Default)
		if field.Config.Filter != nil {
			field.Config.Filter = normalizeValue(field.Config.Filter).(map[string]any)
		}
		if field.Config.Schema != nil {
			field.Config.Schema = normalizeValue(field.Config.Schema).(map[string]any)
		}
		if field.Config.Extra != nil {
			field.Config.Extra = normalizeValue(field.Config.Extra).(map[string]any)
		}
		for j := range field.Rules {
			field.Rules[j].Value = normalizeValue(field.Rules[j].Value)
		}
	}
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case int:
		return float64(v)
	default:
		return v
	}
}

func cloneSchema(s ContentTypeSchema) ContentTypeSchema {
	out := s
	out.Fields = append([]FieldDefinition(nil), s.Fields...)
	return out
}
