package processors

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-fieldkit/internal/connectors"
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/logging"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/internal/validation"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

// Patch is the contribution of one processor call to the output document.
// The orchestrator merges patches in schema order.
type Patch struct {
	Set   map[string]any
	Unset []string
}

// SetPatch returns a patch assigning value to key.
func SetPatch(key string, value any) Patch {
	return Patch{Set: map[string]any{key: value}}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.Set) == 0 && len(p.Unset) == 0
}

// ApplyTo merges the patch into target.
func (p Patch) ApplyTo(target map[string]any) {
	for _, key := range p.Unset {
		delete(target, key)
	}
	for key, value := range p.Set {
		target[key] = value
	}
}

// Processor is the marker implemented by every content processor. The
// direction capabilities below are optional.
type Processor interface {
	Name() string
}

// DataProcessor converts a stored value into its presented form.
type DataProcessor interface {
	ProcessData(ctx context.Context, env *Env, field schema.FieldDefinition, stored any) (Patch, error)
}

// PreSaveProcessor converts a presented value into its stored form. It may
// create other documents through env.Resolver.
type PreSaveProcessor interface {
	ProcessDataPreSave(ctx context.Context, env *Env, field schema.FieldDefinition, present any) (Patch, error)
}

// PostSaveProcessor runs side effects once the parent document is stored.
type PostSaveProcessor interface {
	ProcessDataPostSave(ctx context.Context, env *Env, field schema.FieldDefinition, stored any, doc document.Document) (Patch, error)
}

// JSONProcessor handles the legacy layout where a stored JSON reference is
// embedded under the target content type name.
type JSONProcessor interface {
	ProcessJSON(ctx context.Context, env *Env, ctype, key string, stored any) (Patch, error)
}

// Unbound is implemented by processors that produce a value even when the
// document carries none for their field, such as query-backed lists.
type Unbound interface {
	Unbound() bool
}

// Applies reports whether p should run for a field whose key is present or
// absent in the document being processed.
func Applies(p Processor, present bool) bool {
	if present {
		return true
	}
	u, ok := p.(Unbound)
	return ok && u.Unbound()
}

// PresentFunc runs the present pass of a child document.
type PresentFunc func(ctx context.Context, ctype string, doc document.Document) (document.Document, error)

// Settings are the runtime switches processors read.
type Settings struct {
	UnlimitedLimit int
	Autocreate     bool
	Backrefs       bool
}

// Env is everything a processor call may touch. One Env serves one pass.
type Env struct {
	Context    domain.RenderContext
	Resolver   *Resolver
	Settings   Settings
	Connectors *connectors.Registry
	Fragments  interfaces.FragmentRenderer
	Structures *validation.Compiler
	Present    PresentFunc
	Logger     interfaces.Logger
}

// WithContext returns a shallow copy bound to rc.
func (e *Env) WithContext(rc domain.RenderContext) *Env {
	copied := *e
	copied.Context = rc
	return &copied
}

func (e *Env) unlimited() int {
	if e == nil || e.Settings.UnlimitedLimit <= 0 {
		return 99999
	}
	return e.Settings.UnlimitedLimit
}

func (e *Env) logger() interfaces.Logger {
	if e == nil || e.Logger == nil {
		return logging.NoOp()
	}
	return e.Logger
}

func (e *Env) presentChild(ctx context.Context, ctype string, doc document.Document) (document.Document, error) {
	if e.Present == nil {
		return doc, nil
	}
	return e.Present(ctx, ctype, doc)
}

// ErrUnknownProcessor is returned when no processor is registered for a name.
var ErrUnknownProcessor = fmt.Errorf("processors: unknown processor")

// Registry maps field types to processors. Processors are stateless and
// shared by every pass.
type Registry struct {
	mu         sync.RWMutex
	processors map[string]Processor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{processors: make(map[string]Processor)}
}

// NewDefaultRegistry registers the built-in processors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// RegisterBuiltins adds the built-in processors to r.
func RegisterBuiltins(r *Registry) {
	r.Register(TypeInclude, Include{})
	r.Register(TypeList, List{})
	r.Register(TypeRelation, Relation{})
	r.Register(TypeMatrix, Matrix{})
	r.Register(TypeConnector, Connector{})
	r.Register(TypeJSONStructure, JSONStructure{})
}

// Register binds processor to a field type.
func (r *Registry) Register(fieldType string, processor Processor) {
	key := canonicalKey(fieldType)
	if key == "" || processor == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.processors == nil {
		r.processors = make(map[string]Processor)
	}
	r.processors[key] = processor
}

// Lookup returns the processor for fieldType.
func (r *Registry) Lookup(fieldType string) (Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.processors[canonicalKey(fieldType)]
	return p, ok
}

// Types lists the registered field types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.processors))
	for name := range r.processors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func canonicalKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
