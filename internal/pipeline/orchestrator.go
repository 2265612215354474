package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-fieldkit/internal/connectors"
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/logging"
	"github.com/goliatone/go-fieldkit/internal/processors"
	"github.com/goliatone/go-fieldkit/internal/render"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/internal/transformers"
	"github.com/goliatone/go-fieldkit/internal/validation"
	"github.com/goliatone/go-fieldkit/internal/widgets"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

// Result is the output of a pass. FieldErrors holds the per field failures
// of a present pass; the affected fields carry their degraded value.
type Result struct {
	Document    document.Document
	FieldErrors map[string]error
	Created     []document.Reference
}

func (r *Result) addFieldError(key string, err error) {
	if err == nil {
		return
	}
	if r.FieldErrors == nil {
		r.FieldErrors = make(map[string]error)
	}
	if _, exists := r.FieldErrors[key]; !exists {
		r.FieldErrors[key] = err
	}
}

// Orchestrator runs the field pipeline of content types: it compiles each
// schema once into a plan and applies transformers and processors in schema
// order for one direction per pass.
type Orchestrator struct {
	loader schema.Loader
	store  interfaces.DocumentStore

	transformers        *transformers.Registry
	transformerSettings transformers.Settings
	processors          *processors.Registry
	settings            processors.Settings
	widgets             *widgets.Registry
	connectors          *connectors.Registry
	fragments           interfaces.FragmentRenderer
	forms               *render.FormRenderer
	structures          *validation.Compiler

	languages       []string
	defaultLanguage string
	maxDepth        int
	logger          interfaces.Logger

	mu    sync.RWMutex
	plans map[string]*Plan
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTransformers replaces the transformer registry.
func WithTransformers(registry *transformers.Registry) Option {
	return func(o *Orchestrator) {
		if registry != nil {
			o.transformers = registry
		}
	}
}

// WithTransformerSettings sets the ambient transformer options.
func WithTransformerSettings(settings transformers.Settings) Option {
	return func(o *Orchestrator) {
		o.transformerSettings = settings
	}
}

// WithProcessors replaces the processor registry.
func WithProcessors(registry *processors.Registry) Option {
	return func(o *Orchestrator) {
		if registry != nil {
			o.processors = registry
		}
	}
}

// WithProcessorSettings sets the relation settings.
func WithProcessorSettings(settings processors.Settings) Option {
	return func(o *Orchestrator) {
		o.settings = settings
	}
}

// WithWidgets replaces the widget registry.
func WithWidgets(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		if registry != nil {
			o.widgets = registry
		}
	}
}

// WithConnectors sets the connector registry.
func WithConnectors(registry *connectors.Registry) Option {
	return func(o *Orchestrator) {
		if registry != nil {
			o.connectors = registry
		}
	}
}

// WithFragmentRenderer sets the renderer used for matrix zone children.
func WithFragmentRenderer(renderer interfaces.FragmentRenderer) Option {
	return func(o *Orchestrator) {
		o.fragments = renderer
	}
}

// WithFormRenderer sets the form renderer.
func WithFormRenderer(renderer *render.FormRenderer) Option {
	return func(o *Orchestrator) {
		if renderer != nil {
			o.forms = renderer
		}
	}
}

// WithStructureCompiler shares a JSON schema compiler.
func WithStructureCompiler(compiler *validation.Compiler) Option {
	return func(o *Orchestrator) {
		if compiler != nil {
			o.structures = compiler
		}
	}
}

// WithLanguages sets the configured languages and the default language.
func WithLanguages(defaultLanguage string, languages ...string) Option {
	return func(o *Orchestrator) {
		if len(languages) > 0 {
			o.languages = append([]string(nil), languages...)
		}
		if strings.TrimSpace(defaultLanguage) != "" {
			o.defaultLanguage = strings.TrimSpace(defaultLanguage)
		}
	}
}

// WithMaxDepth bounds nested presentation.
func WithMaxDepth(depth int) Option {
	return func(o *Orchestrator) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator binds a pipeline to a schema loader and a document store.
// Registries default to the built-in sets.
func NewOrchestrator(loader schema.Loader, store interfaces.DocumentStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		loader:              loader,
		store:               store,
		transformers:        transformers.NewDefaultRegistry(),
		transformerSettings: transformers.DefaultSettings(),
		processors:          processors.NewDefaultRegistry(),
		settings:            processors.Settings{UnlimitedLimit: 99999, Autocreate: true, Backrefs: true},
		widgets:             widgets.NewDefaultRegistry(),
		connectors:          connectors.NewRegistry(),
		structures:          &validation.Compiler{},
		languages:           []string{"en"},
		defaultLanguage:     "en",
		maxDepth:            processors.DefaultMaxDepth,
		logger:              logging.NoOp(),
		plans:               make(map[string]*Plan),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.forms == nil {
		o.forms = render.NewFormRenderer(o.widgets, render.WithLogger(o.logger))
	}
	return o
}

// DocumentStore returns the document store passes read from and write to.
func (o *Orchestrator) DocumentStore() interfaces.DocumentStore {
	return o.store
}

// Widgets returns the widget registry.
func (o *Orchestrator) Widgets() *widgets.Registry {
	return o.widgets
}

// DefaultContext returns a render context for ctype with the configured
// languages.
func (o *Orchestrator) DefaultContext(ctype string, mode domain.Mode) domain.RenderContext {
	return domain.RenderContext{
		Language:  o.defaultLanguage,
		Languages: append([]string(nil), o.languages...),
		CType:     ctype,
		Mode:      mode,
	}
}

func (o *Orchestrator) newEnv(store interfaces.DocumentStore, rc domain.RenderContext) *processors.Env {
	env := &processors.Env{
		Context:    o.normalizeContext(rc),
		Resolver:   processors.NewResolver(store, o.maxDepth),
		Settings:   o.settings,
		Connectors: o.connectors,
		Fragments:  o.fragments,
		Structures: o.structures,
		Logger:     o.logger,
	}
	env.Present = func(ctx context.Context, ctype string, doc document.Document) (document.Document, error) {
		return o.presentChild(ctx, env, ctype, doc)
	}
	return env
}

func (o *Orchestrator) normalizeContext(rc domain.RenderContext) domain.RenderContext {
	if rc.Language == "" {
		rc.Language = o.defaultLanguage
	}
	if len(rc.Languages) == 0 {
		rc.Languages = append([]string(nil), o.languages...)
	}
	if rc.Mode == "" {
		rc.Mode = domain.ModeEdit
	}
	return rc
}

func (o *Orchestrator) fieldLogger(ctype, key string, direction domain.Direction) interfaces.Logger {
	return logging.WithFieldContext(o.logger, ctype, key, string(direction))
}

func canonicalKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
