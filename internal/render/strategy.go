package render

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/identity"
	"github.com/goliatone/go-fieldkit/internal/widgets"
	"github.com/goliatone/go-slug"
)

// DefaultContextPrefix is used when neither the strategy nor the render
// context names a prefix.
const DefaultContextPrefix = "fk"

// ScopedScript is an initialization script bound to one element.
type ScopedScript struct {
	ElementID string
	Source    string
}

// HTML wraps the script in a script element.
func (s ScopedScript) HTML() string {
	return "<script>" + s.Source + "</script>"
}

// Strategy places a widget into the output.
type Strategy interface {
	Render(ctx context.Context, widget widgets.Widget, rc domain.RenderContext) (string, error)
	// InitScript returns nil when the widget needs no script.
	InitScript(widget widgets.Widget, rc domain.RenderContext) (*ScopedScript, error)
}

// StandardStrategy renders widgets inline, verbatim. It is used for top
// level form fields.
type StandardStrategy struct{}

func (StandardStrategy) Render(ctx context.Context, widget widgets.Widget, _ domain.RenderContext) (string, error) {
	if widget == nil {
		return "", fmt.Errorf("render: widget is required")
	}
	return widget.RenderWidget(ctx)
}

func (StandardStrategy) InitScript(widget widgets.Widget, _ domain.RenderContext) (*ScopedScript, error) {
	if widget == nil {
		return nil, fmt.Errorf("render: widget is required")
	}
	source := widget.InitializationScript()
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}
	return &ScopedScript{ElementID: widget.ElementID(), Source: source}, nil
}

var (
	placeholderTemplate = pongo2.Must(pongo2.FromString(
		`<div id="{{ id }}" class="fieldkit-placeholder" data-unique-id="{{ id }}" data-field-key="{{ field_key }}" data-path="{{ path }}" data-value="{{ value }}" data-config="{{ config }}" data-widget-class="{{ widget_class }}"></div>`))

	containerTemplate = pongo2.Must(pongo2.FromString(
		`<div id="{{ id }}" class="fieldkit-widget" data-unique-id="{{ id }}" data-field-key="{{ field_key }}" data-path="{{ path }}" data-value="{{ value }}" data-config="{{ config }}" data-widget-class="{{ widget_class }}">{{ markup|safe }}</div>`))
)

// JSONStructureStrategy renders widgets nested inside a structured JSON
// value. Widgets that support deferred rendering become placeholders the
// client hydrates; the others render inline in a container whose init script
// is scoped to the container element.
//
// A strategy value is bound to a path; At derives strategies for nested
// paths that share the unique id sequence and state table.
type JSONStructureStrategy struct {
	prefix string
	path   []string
	shared *structureShared
}

type structureShared struct {
	seq    atomic.Uint64
	mu     sync.Mutex
	states map[widgets.Widget]WidgetState
	order  []widgets.Widget
}

// NewJSONStructureStrategy returns a strategy rooted at path. An empty
// prefix falls back to the render context prefix.
func NewJSONStructureStrategy(prefix string, path ...string) *JSONStructureStrategy {
	return &JSONStructureStrategy{
		prefix: strings.TrimSpace(prefix),
		path:   append([]string(nil), path...),
		shared: &structureShared{states: make(map[widgets.Widget]WidgetState)},
	}
}

// At returns a strategy for a nested path.
func (s *JSONStructureStrategy) At(path ...string) *JSONStructureStrategy {
	return &JSONStructureStrategy{prefix: s.prefix, path: append([]string(nil), path...), shared: s.shared}
}

// Path returns the bound path.
func (s *JSONStructureStrategy) Path() []string {
	return append([]string(nil), s.path...)
}

// States returns the states of every widget placed so far, in placement
// order.
func (s *JSONStructureStrategy) States() []WidgetState {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	out := make([]WidgetState, 0, len(s.shared.order))
	for _, widget := range s.shared.order {
		out = append(out, s.shared.states[widget])
	}
	return out
}

// State returns the state assigned to widget, assigning one on first use.
func (s *JSONStructureStrategy) State(widget widgets.Widget, rc domain.RenderContext) WidgetState {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	if state, ok := s.shared.states[widget]; ok {
		return state
	}
	field := widget.FieldDefinition()
	prefix := s.contextPrefix(rc)
	token := identity.WidgetToken(prefix, s.path, field.Key, s.shared.seq.Add(1))
	state := WidgetState{
		UniqueID:    uniqueID(prefix, s.path, field.Key, token),
		FieldKey:    field.Key,
		Path:        append([]string(nil), s.path...),
		Value:       widget.Value(),
		Config:      widget.ClientConfig(),
		WidgetClass: widget.Class(),
	}
	s.shared.states[widget] = state
	s.shared.order = append(s.shared.order, widget)
	return state
}

func (s *JSONStructureStrategy) Render(ctx context.Context, widget widgets.Widget, rc domain.RenderContext) (string, error) {
	if widget == nil {
		return "", fmt.Errorf("render: widget is required")
	}
	state := s.State(widget, rc)
	data, err := stateContext(state)
	if err != nil {
		return "", err
	}
	if widget.SupportsAjaxRendering() {
		return executeTemplate(placeholderTemplate, data)
	}
	widget.SetElementID(inputID(state.UniqueID))
	markup, err := widget.RenderWidget(ctx)
	if err != nil {
		return "", err
	}
	data["markup"] = markup
	return executeTemplate(containerTemplate, data)
}

// InitScript returns the hydration trigger for placeholders and the widget
// script wrapped in a function bound to the container for inline widgets.
func (s *JSONStructureStrategy) InitScript(widget widgets.Widget, rc domain.RenderContext) (*ScopedScript, error) {
	if widget == nil {
		return nil, fmt.Errorf("render: widget is required")
	}
	state := s.State(widget, rc)
	target, _ := json.Marshal(state.UniqueID)
	if widget.SupportsAjaxRendering() {
		return &ScopedScript{
			ElementID: state.UniqueID,
			Source:    fmt.Sprintf("fieldkit.hydrate(document.getElementById(%s));", target),
		}, nil
	}
	widget.SetElementID(inputID(state.UniqueID))
	source := widget.InitializationScript()
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}
	return &ScopedScript{
		ElementID: state.UniqueID,
		Source:    fmt.Sprintf("(function(container){if(!container){return;}%s})(document.getElementById(%s));", source, target),
	}, nil
}

// uniqueID joins prefix, path, field key and token with dashes. Segments
// are slugged so the result is a valid element id; the token keeps ids
// distinct when slugging folds two segments together.
func uniqueID(prefix string, path []string, fieldKey, token string) string {
	parts := make([]string, 0, len(path)+3)
	parts = append(parts, prefix)
	for _, segment := range append(append([]string(nil), path...), fieldKey) {
		if normalized, err := slug.Normalize(segment); err == nil && normalized != "" {
			parts = append(parts, normalized)
		}
	}
	return strings.Join(append(parts, token), "-")
}

func (s *JSONStructureStrategy) contextPrefix(rc domain.RenderContext) string {
	prefix := s.prefix
	if prefix == "" {
		prefix = strings.TrimSpace(rc.ContextPrefix)
	}
	if prefix == "" {
		return DefaultContextPrefix
	}
	if normalized, err := slug.Normalize(prefix); err == nil && normalized != "" {
		return normalized
	}
	return DefaultContextPrefix
}

func stateContext(state WidgetState) (pongo2.Context, error) {
	value, err := json.Marshal(state.Value)
	if err != nil {
		return nil, fmt.Errorf("render: encode value of %q: %w", state.FieldKey, err)
	}
	config, err := json.Marshal(state.Config)
	if err != nil {
		return nil, fmt.Errorf("render: encode config of %q: %w", state.FieldKey, err)
	}
	return pongo2.Context{
		"id":           state.UniqueID,
		"field_key":    state.FieldKey,
		"path":         strings.Join(state.Path, "."),
		"value":        string(value),
		"config":       string(config),
		"widget_class": state.WidgetClass,
	}, nil
}

func executeTemplate(tpl *pongo2.Template, data pongo2.Context) (string, error) {
	out, err := tpl.Execute(data)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return out, nil
}
