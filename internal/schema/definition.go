package schema

import (
	"strings"

	"github.com/goliatone/go-fieldkit/internal/document"
)

// Rule is a declarative validation rule attached to a field. Value carries the
// rule argument (length bounds, pattern, allowed values).
type Rule struct {
	Name    string `json:"name" yaml:"name"`
	Value   any    `json:"value,omitempty" yaml:"value,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// FieldConfig holds the type specific settings of a field. Only the keys
// meaningful for the field type are read.
type FieldConfig struct {
	CType      string            `json:"ctype,omitempty" yaml:"ctype,omitempty"`
	Multiple   bool              `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Columns    []string          `json:"columns,omitempty" yaml:"columns,omitempty"`
	Source     string            `json:"source,omitempty" yaml:"source,omitempty"`
	Filter     map[string]any    `json:"filter,omitempty" yaml:"filter,omitempty"`
	Sort       []string          `json:"sort,omitempty" yaml:"sort,omitempty"`
	Limit      any               `json:"limit,omitempty" yaml:"limit,omitempty"`
	Options    map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
	Autocreate bool              `json:"autocreate,omitempty" yaml:"autocreate,omitempty"`
	Backref    string            `json:"backref,omitempty" yaml:"backref,omitempty"`
	Zones      []string          `json:"zones,omitempty" yaml:"zones,omitempty"`
	Schema     map[string]any    `json:"schema,omitempty" yaml:"schema,omitempty"`
	Format     string            `json:"format,omitempty" yaml:"format,omitempty"`
	Present    bool              `json:"present,omitempty" yaml:"present,omitempty"`
	Extra      map[string]any    `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// FieldDefinition describes one field of a content type. Definitions are read
// only once loaded.
type FieldDefinition struct {
	Key          string      `json:"key" yaml:"key"`
	Type         string      `json:"type" yaml:"type"`
	Label        string      `json:"label,omitempty" yaml:"label,omitempty"`
	Rules        []Rule      `json:"rules,omitempty" yaml:"rules,omitempty"`
	Translatable bool        `json:"translatable,omitempty" yaml:"translatable,omitempty"`
	Transform    string      `json:"transform,omitempty" yaml:"transform,omitempty"`
	Widget       string      `json:"widget,omitempty" yaml:"widget,omitempty"`
	Default      any         `json:"default,omitempty" yaml:"default,omitempty"`
	Config       FieldConfig `json:"config,omitempty" yaml:"config,omitempty"`
}

// TypeName returns the canonical field type.
func (f FieldDefinition) TypeName() string {
	return canonical(f.Type)
}

// TransformName returns the transformer bound to the field, "" for none.
func (f FieldDefinition) TransformName() string {
	return canonical(f.Transform)
}

// WidgetName returns the widget bound to the field, falling back to the type.
func (f FieldDefinition) WidgetName() string {
	if name := canonical(f.Widget); name != "" {
		return name
	}
	return f.TypeName()
}

// DisplayLabel returns Label or the key when no label is set.
func (f FieldDefinition) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Key
}

// Option returns the labelled value for key in Config.Options.
func (f FieldDefinition) Option(key string) (string, bool) {
	if len(f.Config.Options) == 0 {
		return "", false
	}
	label, ok := f.Config.Options[key]
	return label, ok
}

// ContentTypeSchema is the ordered field list of one content type.
type ContentTypeSchema struct {
	Name   string            `json:"name" yaml:"name"`
	Label  string            `json:"label,omitempty" yaml:"label,omitempty"`
	Fields []FieldDefinition `json:"fields" yaml:"fields"`
}

// Field looks up a field by key.
func (s ContentTypeSchema) Field(key string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// TranslatableFields lists the translatable fields in schema order.
func (s ContentTypeSchema) TranslatableFields() []document.TranslatableField {
	var out []document.TranslatableField
	for _, field := range s.Fields {
		if !field.Translatable {
			continue
		}
		out = append(out, document.TranslatableField{Key: field.Key, Default: field.Default})
	}
	return out
}

// Keys returns the field keys in schema order.
func (s ContentTypeSchema) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		keys = append(keys, field.Key)
	}
	return keys
}

func canonical(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
