package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-fieldkit/internal/connectors"
	"github.com/goliatone/go-fieldkit/internal/logging"
	"github.com/goliatone/go-fieldkit/internal/logging/console"
	"github.com/goliatone/go-fieldkit/internal/logging/gologger"
	"github.com/goliatone/go-fieldkit/internal/pipeline"
	"github.com/goliatone/go-fieldkit/internal/processors"
	"github.com/goliatone/go-fieldkit/internal/render"
	"github.com/goliatone/go-fieldkit/internal/runtimeconfig"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/internal/storage"
	"github.com/goliatone/go-fieldkit/internal/transformers"
	"github.com/goliatone/go-fieldkit/internal/validation"
	"github.com/goliatone/go-fieldkit/internal/widgets"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Container wires the pipeline dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	loader schema.Loader
	store  interfaces.DocumentStore

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	transformers *transformers.Registry
	processors   *processors.Registry
	widgets      *widgets.Registry
	connectors   *connectors.Registry
	structures   *validation.Compiler

	fragments *render.FragmentRenderer
	forms     *render.FormRenderer

	orchestrator *pipeline.Orchestrator
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithSchemaLoader sets the content type schema source.
func WithSchemaLoader(loader schema.Loader) Option {
	return func(c *Container) {
		c.loader = loader
	}
}

// WithStore overrides the document store selected from configuration.
func WithStore(store interfaces.DocumentStore) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithBunDB provides the database used by the bun storage provider.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default repository cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithTransformerRegistry replaces the built-in transformer set.
func WithTransformerRegistry(registry *transformers.Registry) Option {
	return func(c *Container) {
		if registry != nil {
			c.transformers = registry
		}
	}
}

// WithProcessorRegistry replaces the built-in processor set.
func WithProcessorRegistry(registry *processors.Registry) Option {
	return func(c *Container) {
		if registry != nil {
			c.processors = registry
		}
	}
}

// WithWidgetRegistry replaces the built-in widget set.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(c *Container) {
		if registry != nil {
			c.widgets = registry
		}
	}
}

// WithConnector registers a connector factory under name.
func WithConnector(name string, factory connectors.Factory) Option {
	return func(c *Container) {
		c.connectors.Register(name, factory)
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:       cfg,
		cacheTTL:     cacheTTL,
		transformers: transformers.NewDefaultRegistry(),
		processors:   processors.NewDefaultRegistry(),
		widgets:      widgets.NewDefaultRegistry(),
		connectors:   connectors.NewRegistry(),
		structures:   &validation.Compiler{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "fieldkit.di")

	if c.loader == nil {
		loader, err := schema.NewMemoryLoader()
		if err != nil {
			return nil, err
		}
		c.loader = loader
	}

	c.configureCacheDefaults()
	if err := c.configureStore(); err != nil {
		return nil, err
	}
	if err := c.configureRenderers(); err != nil {
		return nil, err
	}

	settings, err := c.transformerSettings()
	if err != nil {
		return nil, err
	}

	c.orchestrator = pipeline.NewOrchestrator(c.loader, c.store,
		pipeline.WithTransformers(c.transformers),
		pipeline.WithTransformerSettings(settings),
		pipeline.WithProcessors(c.processors),
		pipeline.WithProcessorSettings(processors.Settings{
			UnlimitedLimit: cfg.Relations.UnlimitedLimit,
			Autocreate:     cfg.Features.Autocreate,
			Backrefs:       cfg.Features.Backrefs,
		}),
		pipeline.WithWidgets(c.widgets),
		pipeline.WithConnectors(c.connectors),
		pipeline.WithFragmentRenderer(c.fragments),
		pipeline.WithFormRenderer(c.forms),
		pipeline.WithStructureCompiler(c.structures),
		pipeline.WithLanguages(cfg.DefaultLanguage, cfg.Languages...),
		pipeline.WithMaxDepth(cfg.Relations.MaxDepth),
		pipeline.WithLogger(logging.PipelineLogger(c.loggerProvider)),
	)

	c.logger.Debug("container.configured",
		"storage", c.storageName(),
		"cache", c.cacheService != nil,
		"languages", strings.Join(cfg.Languages, ","),
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level := console.ParseLevel(logCfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger.Warn("cache.disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureStore() error {
	if c.store != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider)) {
	case "bun":
		if c.bunDB == nil {
			return fmt.Errorf("di: bun storage requires a database: %w", storage.ErrDatabaseRequired)
		}
		store := storage.NewBunStoreWithCache(c.bunDB, c.cacheService, c.keySerializer)
		if err := store.EnsureSchema(context.Background()); err != nil {
			return err
		}
		c.store = store
	default:
		c.store = storage.NewMemoryStore()
	}
	return nil
}

func (c *Container) configureRenderers() error {
	fragments, err := render.NewFragmentRenderer(c.Config.Render.FragmentTemplates, c.Config.Render.SanitizeFragments)
	if err != nil {
		return err
	}
	c.fragments = fragments
	c.forms = render.NewFormRenderer(c.widgets,
		render.WithContextPrefix(c.Config.Render.ContextPrefix),
		render.WithLogger(logging.RenderLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) transformerSettings() (transformers.Settings, error) {
	settings := transformers.DefaultSettings()
	tc := c.Config.Transformers
	if tc.DateFormat != "" {
		settings.DateFormat = tc.DateFormat
	}
	if tc.Timezone != "" {
		location, err := time.LoadLocation(tc.Timezone)
		if err != nil {
			return settings, fmt.Errorf("di: transformer timezone: %w", err)
		}
		settings.Location = location
	}
	if tc.HashCost > 0 {
		settings.HashCost = tc.HashCost
	}
	if tc.TokenBytes > 0 {
		settings.TokenBytes = tc.TokenBytes
	}
	return settings, nil
}

func (c *Container) storageName() string {
	switch c.store.(type) {
	case *storage.BunStore:
		return "bun"
	case *storage.MemoryStore:
		return "memory"
	default:
		return fmt.Sprintf("%T", c.store)
	}
}

// Orchestrator returns the configured field pipeline.
func (c *Container) Orchestrator() *pipeline.Orchestrator {
	return c.orchestrator
}

// Store exposes the configured document store.
func (c *Container) Store() interfaces.DocumentStore {
	return c.store
}

// SchemaLoader exposes the configured schema loader.
func (c *Container) SchemaLoader() schema.Loader {
	return c.loader
}

// LoggerProvider exposes the logger provider, nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Widgets exposes the widget registry.
func (c *Container) Widgets() *widgets.Registry {
	return c.widgets
}

// Connectors exposes the connector registry.
func (c *Container) Connectors() *connectors.Registry {
	return c.connectors
}

// FragmentRenderer exposes the fragment renderer.
func (c *Container) FragmentRenderer() *render.FragmentRenderer {
	return c.fragments
}

// FormRenderer exposes the form renderer.
func (c *Container) FormRenderer() *render.FormRenderer {
	return c.forms
}
