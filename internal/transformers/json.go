package transformers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/schema"
)

const NameJSON = "json"

type jsonTransformer struct{}

func newJSON(schema.FieldDefinition, Settings) (Transformer, error) {
	return jsonTransformer{}, nil
}

func (jsonTransformer) Name() string { return NameJSON }

// BeforeSave encodes any JSON representable value.
func (jsonTransformer) BeforeSave(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStrictTransform, err)
	}
	return string(encoded), nil
}

// AfterFind decodes a stored JSON string. Empty input decodes to nil and
// malformed input is an error. Already decoded values pass through.
func (jsonTransformer) AfterFind(value any) (any, error) {
	var raw string
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return value, nil
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStrictTransform, err)
	}
	return out, nil
}
