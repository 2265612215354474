package transformers

import (
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
)

const NameSelect = "select"

type selectTransformer struct {
	options map[string]string
}

func newSelect(field schema.FieldDefinition, _ Settings) (Transformer, error) {
	options := make(map[string]string, len(field.Config.Options))
	for key, label := range field.Config.Options {
		options[key] = label
	}
	return &selectTransformer{options: options}, nil
}

func (s *selectTransformer) Name() string { return NameSelect }

// Transform maps the stored key to its option label. Keys missing from the
// option table keep their raw value.
func (s *selectTransformer) Transform(value any) (any, error) {
	if label, ok := s.options[document.String(value)]; ok {
		return label, nil
	}
	return value, nil
}
