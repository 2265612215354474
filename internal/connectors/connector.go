package connectors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-fieldkit/internal/domain"
)

// ErrUnknownConnector is returned when a stored reference names a connector
// that was never registered.
var ErrUnknownConnector = errors.New("connectors: unknown connector")

// ErrEmptyReference is returned for blank connector references.
var ErrEmptyReference = errors.New("connectors: empty reference")

// Invocation is the parsed form of a stored "name[:action]" reference.
type Invocation struct {
	Name      string
	Action    string
	HasAction bool
	Context   domain.RenderContext
}

// Connector renders an external unit into markup.
type Connector interface {
	Render(ctx context.Context, inv Invocation) (string, error)
}

// Func adapts a function to Connector.
type Func func(ctx context.Context, inv Invocation) (string, error)

func (f Func) Render(ctx context.Context, inv Invocation) (string, error) {
	return f(ctx, inv)
}

// Factory constructs a connector on first use.
type Factory func() (Connector, error)

// ParseReference splits "name[:action]". Only the first colon separates the
// action so actions may contain colons.
func ParseReference(ref string) (Invocation, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return Invocation{}, ErrEmptyReference
	}
	name, action, hasAction := strings.Cut(trimmed, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return Invocation{}, ErrEmptyReference
	}
	return Invocation{
		Name:      name,
		Action:    strings.TrimSpace(action),
		HasAction: hasAction,
	}, nil
}

// Registry maps logical connector names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	instances map[string]Connector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]Connector),
	}
}

// Register adds a connector factory.
func (r *Registry) Register(name string, factory Factory) {
	key := canonicalKey(name)
	if key == "" || factory == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[string]Factory)
		r.instances = make(map[string]Connector)
	}
	r.factories[key] = factory
	delete(r.instances, key)
}

// RegisterConnector adds an already constructed connector.
func (r *Registry) RegisterConnector(name string, connector Connector) {
	if connector == nil {
		return
	}
	r.Register(name, func() (Connector, error) { return connector, nil })
}

// Names lists the registered connector names.
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

// Lookup returns the connector for name, constructing it once.
func (r *Registry) Lookup(name string) (Connector, error) {
	key := canonicalKey(name)
	r.mu.RLock()
	instance, ok := r.instances[key]
	factory, registered := r.factories[key]
	r.mu.RUnlock()
	if ok {
		return instance, nil
	}
	if !registered {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConnector, name)
	}
	built, err := factory()
	if err != nil {
		return nil, fmt.Errorf("connectors: build %q: %w", name, err)
	}
	r.mu.Lock()
	r.instances[key] = built
	r.mu.Unlock()
	return built, nil
}

// Invoke parses ref, resolves the connector and renders it.
func (r *Registry) Invoke(ctx context.Context, ref string, rc domain.RenderContext) (string, error) {
	inv, err := ParseReference(ref)
	if err != nil {
		return "", err
	}
	inv.Context = rc
	connector, err := r.Lookup(inv.Name)
	if err != nil {
		return "", err
	}
	return connector.Render(ctx, inv)
}

func canonicalKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
