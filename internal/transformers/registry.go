package transformers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-fieldkit/internal/schema"
)

// ErrUnknownTransformer is returned when a field names an unregistered
// transformer.
var ErrUnknownTransformer = fmt.Errorf("transformers: unknown transformer")

// Registry maps transformer names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry returns a registry with the built-in transformers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// RegisterBuiltins adds the built-in transformers to r.
func RegisterBuiltins(r *Registry) {
	r.Register(NameDate, newDate)
	r.Register(NameDatetime, newDatetime)
	r.Register(NameHash, newHash)
	r.Register(NameAuthToken, newAuthToken)
	r.Register(NameMD5, newMD5)
	r.Register(NameJSON, newJSON)
	r.Register(NameSelect, newSelect)
	r.Register(NameState, newState)
	r.Register(NameMarkdown, newMarkdown)
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, factory Factory) {
	key := canonicalKey(name)
	if key == "" || factory == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[string]Factory)
	}
	r.factories[key] = factory
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[canonicalKey(name)]
	return ok
}

// Names lists registered transformer names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Build returns the transformer bound to field, nil when the field has no
// transform.
func (r *Registry) Build(field schema.FieldDefinition, settings Settings) (Transformer, error) {
	name := field.TransformName()
	if name == "" {
		return nil, nil
	}
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q on field %q", ErrUnknownTransformer, name, field.Key)
	}
	return factory(field, settings)
}

func canonicalKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
