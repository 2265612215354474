package widgets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-slug"
)

// Widget is the input control bound to one field. A widget instance serves
// one render: the strategy feeds it the presented value through ProcessData
// and SetValue, then asks for markup and an optional init script.
type Widget interface {
	Class() string
	FieldDefinition() schema.FieldDefinition
	// ProcessData converts the presented field value into the value the
	// widget edits.
	ProcessData(raw any) any
	Value() any
	SetValue(value any)
	ElementID() string
	SetElementID(id string)
	RegisterAssets(bundle *AssetBundle)
	RenderWidget(ctx context.Context) (string, error)
	// InitializationScript returns the script that activates the rendered
	// element, "" when the widget needs none.
	InitializationScript() string
	SupportsAjaxRendering() bool
	ClientConfig() map[string]any
}

// Base carries the state every built-in widget shares. Widgets embed it and
// provide RenderWidget plus whatever capability they change.
type Base struct {
	class     string
	field     schema.FieldDefinition
	value     any
	elementID string
}

// NewBase binds class to field.
func NewBase(class string, field schema.FieldDefinition) Base {
	return Base{class: class, field: field}
}

func (b *Base) Class() string { return b.class }

func (b *Base) FieldDefinition() schema.FieldDefinition { return b.field }

func (b *Base) ProcessData(raw any) any { return document.String(raw) }

func (b *Base) Value() any { return b.value }

func (b *Base) SetValue(value any) { b.value = value }

// ElementID defaults to a slug of the field key.
func (b *Base) ElementID() string {
	if b.elementID != "" {
		return b.elementID
	}
	return DefaultElementID(b.field.Key)
}

func (b *Base) SetElementID(id string) { b.elementID = strings.TrimSpace(id) }

func (b *Base) RegisterAssets(*AssetBundle) {}

func (b *Base) InitializationScript() string { return "" }

func (b *Base) SupportsAjaxRendering() bool { return false }

// ClientConfig returns the settings shared by every widget; widgets extend
// the map with their own keys.
func (b *Base) ClientConfig() map[string]any {
	return map[string]any{
		"widget":   b.class,
		"fieldKey": b.field.Key,
		"label":    b.field.DisplayLabel(),
		"required": b.Required(),
	}
}

// Required reports whether the field carries a required rule.
func (b *Base) Required() bool {
	for _, rule := range b.field.Rules {
		if strings.EqualFold(strings.TrimSpace(rule.Name), "required") {
			return true
		}
	}
	return false
}

func (b *Base) execute(tpl *pongo2.Template, extra pongo2.Context) (string, error) {
	data := pongo2.Context{
		"id":       b.ElementID(),
		"name":     b.field.Key,
		"label":    b.field.DisplayLabel(),
		"value":    b.value,
		"required": b.Required(),
		"widget":   b.class,
	}
	for key, value := range extra {
		data[key] = value
	}
	out, err := tpl.Execute(data)
	if err != nil {
		return "", fmt.Errorf("widgets: render %s for %q: %w", b.class, b.field.Key, err)
	}
	return out, nil
}

// DefaultElementID derives a DOM id from a field key.
func DefaultElementID(key string) string {
	normalized, err := slug.Normalize(key)
	if err != nil || normalized == "" {
		normalized = strings.ToLower(strings.TrimSpace(key))
	}
	return "fk-" + normalized
}

// initCall builds the call activating a widget element through the client
// runtime.
func initCall(function, elementID string, config map[string]any) string {
	id, _ := json.Marshal(elementID)
	encoded, err := json.Marshal(config)
	if err != nil {
		encoded = []byte("{}")
	}
	return fmt.Sprintf("fieldkit.widgets.%s(document.getElementById(%s), %s);", function, id, encoded)
}
