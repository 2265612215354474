package widgets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-fieldkit/internal/schema"
)

// ErrUnknownWidget is returned when a field resolves to no registered widget.
var ErrUnknownWidget = errors.New("widgets: unknown widget")

// Factory builds a widget instance for field.
type Factory func(field schema.FieldDefinition) (Widget, error)

// Definition describes a registered widget class.
type Definition struct {
	Name        string
	Description string
}

// Registration bundles a widget factory with its description.
type Registration struct {
	Definition Definition
	Factory    Factory
}

// Registry stores built-in and host-defined widget registrations. Field
// types without a widget of the same name resolve through aliases.
type Registry struct {
	mu            sync.RWMutex
	registrations map[string]Registration
	aliases       map[string]string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		registrations: make(map[string]Registration),
		aliases:       make(map[string]string),
	}
}

// NewDefaultRegistry returns a registry holding the built-in widgets.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// RegisterBuiltins adds the built-in widgets and type aliases to r.
func RegisterBuiltins(r *Registry) {
	r.Register(ClassText, "single line text", NewText)
	r.Register(ClassTextarea, "multi line text", NewTextarea)
	r.Register(ClassCheckbox, "boolean toggle", NewCheckbox)
	r.Register(ClassDate, "date picker", NewDate)
	r.Register(ClassSelect, "option select", NewSelect)
	r.Register(ClassRelation, "document reference select", NewRelation)
	r.Register(ClassMatrix, "zoned document references", NewMatrix)
	r.Register(ClassJSONStructure, "nested structure editor", NewJSONStructure)
	r.Register(ClassConnector, "connector reference", NewConnector)
	r.Register(ClassReadonly, "computed value display", NewReadonly)
	r.Register(ClassHidden, "hidden value", NewHidden)

	r.Alias("string", ClassText)
	r.Alias("number", ClassText)
	r.Alias("email", ClassText)
	r.Alias("password", ClassText)
	r.Alias("markdown", ClassTextarea)
	r.Alias("datetime", ClassDate)
	r.Alias("include", ClassRelation)
	r.Alias("list", ClassReadonly)
	r.Alias("boolean", ClassCheckbox)
}

// Register adds a widget factory under name.
func (r *Registry) Register(name, description string, factory Factory) {
	r.RegisterFactory(name, Registration{
		Definition: Definition{Name: name, Description: description},
		Factory:    factory,
	})
}

// RegisterFactory adds a registration. An empty key falls back to the
// definition name.
func (r *Registry) RegisterFactory(key string, registration Registration) {
	if registration.Factory == nil {
		return
	}
	name := canonicalKey(key)
	if name == "" {
		name = canonicalKey(registration.Definition.Name)
	}
	if name == "" {
		return
	}
	if registration.Definition.Name == "" {
		registration.Definition.Name = name
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.registrations == nil {
		r.registrations = make(map[string]Registration)
	}
	r.registrations[name] = registration
}

// Alias resolves fieldType to the widget registered as target.
func (r *Registry) Alias(fieldType, target string) {
	from, to := canonicalKey(fieldType), canonicalKey(target)
	if from == "" || to == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.aliases == nil {
		r.aliases = make(map[string]string)
	}
	r.aliases[from] = to
}

// List returns the registered definitions sorted by name.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.registrations))
	for _, registration := range r.registrations {
		out = append(out, registration.Definition)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve returns the widget class serving field: the explicit widget when
// set, otherwise the field type or its alias.
func (r *Registry) Resolve(field schema.FieldDefinition) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name := field.TypeName()
	if explicit := canonicalKey(field.Widget); explicit != "" {
		name = explicit
	}
	if _, ok := r.registrations[name]; ok {
		return name, true
	}
	if target, ok := r.aliases[name]; ok {
		_, registered := r.registrations[target]
		return target, registered
	}
	return name, false
}

// Has reports whether field resolves to a registered widget.
func (r *Registry) Has(field schema.FieldDefinition) bool {
	_, ok := r.Resolve(field)
	return ok
}

// Build constructs the widget serving field.
func (r *Registry) Build(field schema.FieldDefinition) (Widget, error) {
	return r.BuildClass(field, "")
}

// BuildClass constructs a widget of class for field; an empty class resolves
// through the field.
func (r *Registry) BuildClass(field schema.FieldDefinition, class string) (Widget, error) {
	name := canonicalKey(class)
	if name == "" {
		resolved, ok := r.Resolve(field)
		if !ok {
			return nil, fmt.Errorf("%w %q for field %q", ErrUnknownWidget, resolved, field.Key)
		}
		name = resolved
	}
	r.mu.RLock()
	registration, ok := r.registrations[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q for field %q", ErrUnknownWidget, name, field.Key)
	}
	widget, err := registration.Factory(field)
	if err != nil {
		return nil, fmt.Errorf("widgets: build %q for field %q: %w", name, field.Key, err)
	}
	return widget, nil
}

func canonicalKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
