package fieldkit

import (
	"context"

	documentscmd "github.com/goliatone/go-fieldkit/internal/commands/documents"
	"github.com/goliatone/go-fieldkit/internal/connectors"
	"github.com/goliatone/go-fieldkit/internal/di"
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/pipeline"
	"github.com/goliatone/go-fieldkit/internal/render"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

// Document is a content document in stored or presented form.
type Document = document.Document

// Reference points at a document of a content type.
type Reference = document.Reference

// ContentTypeSchema is the ordered field list of a content type.
type ContentTypeSchema = schema.ContentTypeSchema

// FieldDefinition describes one schema field.
type FieldDefinition = schema.FieldDefinition

// FieldConfig holds the type specific settings of a field.
type FieldConfig = schema.FieldConfig

// SchemaLoader resolves content type schemas by name.
type SchemaLoader = schema.Loader

// RenderContext carries language, mode and request filters through a pass.
type RenderContext = domain.RenderContext

// Mode selects edit or view presentation.
type Mode = domain.Mode

const (
	ModeEdit = domain.ModeEdit
	ModeView = domain.ModeView
)

// Result is the outcome of a pipeline pass.
type Result = pipeline.Result

// FormOutput is a rendered edit form with its scripts and assets.
type FormOutput = render.Output

// Error types reported by the pipeline.
type (
	TransformError     = pipeline.TransformError
	ResolutionError    = pipeline.ResolutionError
	ConfigurationError = pipeline.ConfigurationError
	SideEffectError    = pipeline.SideEffectError
	ValidationError    = pipeline.ValidationError
)

// Option customises the module wiring.
type Option = di.Option

var (
	WithLoggerProvider = di.WithLoggerProvider
	WithSchemaLoader   = di.WithSchemaLoader
	WithStore          = di.WithStore
	WithBunDB          = di.WithBunDB
	WithCache          = di.WithCache
	WithConnector      = di.WithConnector
)

// TemplateConnector returns a connector factory rendering a pongo2 template.
func TemplateConnector(source string) connectors.Factory {
	return connectors.Template(source)
}

// LoadSchemas reads content type schemas from YAML or JSON files and
// directories.
func LoadSchemas(paths ...string) (*schema.MemoryLoader, error) {
	return schema.LoadFiles(paths...)
}

// Document command messages, for callers dispatching through go-command.
type (
	PresentDocumentCommand = documentscmd.PresentDocumentCommand
	StoreDocumentCommand   = documentscmd.StoreDocumentCommand
	SaveDocumentCommand    = documentscmd.SaveDocumentCommand
	RenderFormCommand      = documentscmd.RenderFormCommand
)

// Module is the top level field pipeline runtime.
type Module struct {
	container *di.Container
	handlers  *documentscmd.HandlerSet
}

// New constructs a module using the provided configuration and optional DI
// overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	handlers, err := documentscmd.RegisterDocumentCommands(nil, container.Orchestrator(), container.LoggerProvider())
	if err != nil {
		return nil, err
	}
	return &Module{container: container, handlers: handlers}, nil
}

// Subscribe registers the document handlers with the go-command dispatcher.
// Call the returned function to remove them.
func (m *Module) Subscribe() func() {
	return m.handlers.Subscribe()
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Pipeline returns the field pipeline orchestrator.
func (m *Module) Pipeline() *pipeline.Orchestrator {
	return m.container.Orchestrator()
}

// DocumentStore returns the document store.
func (m *Module) DocumentStore() interfaces.DocumentStore {
	return m.container.Store()
}

// Compile builds the plans of ctypes so schema errors surface early.
func (m *Module) Compile(ctx context.Context, ctypes ...string) error {
	return m.container.Orchestrator().Compile(ctx, ctypes...)
}

// Present converts a stored document into its presented form.
func (m *Module) Present(ctx context.Context, ctype string, stored map[string]any, mode Mode, language string) (Result, error) {
	var result Result
	err := m.handlers.Present.Execute(ctx, documentscmd.PresentDocumentCommand{
		CType:    ctype,
		Document: stored,
		Mode:     string(mode),
		Language: language,
		Result:   &result,
	})
	return result, err
}

// PresentByID loads a document by uuid and presents it.
func (m *Module) PresentByID(ctx context.Context, ctype, id string, mode Mode, language string) (Result, error) {
	var result Result
	err := m.handlers.Present.Execute(ctx, documentscmd.PresentDocumentCommand{
		CType:    ctype,
		UUID:     id,
		Mode:     string(mode),
		Language: language,
		Result:   &result,
	})
	return result, err
}

// StoreDocument converts a presented document into its stored form without
// persisting it.
func (m *Module) StoreDocument(ctx context.Context, ctype string, presented map[string]any, language string) (Result, error) {
	var result Result
	err := m.handlers.Store.Execute(ctx, documentscmd.StoreDocumentCommand{
		CType:    ctype,
		Document: presented,
		Language: language,
		Result:   &result,
	})
	return result, err
}

// Save stores and persists a presented document.
func (m *Module) Save(ctx context.Context, ctype string, presented map[string]any, language string) (Result, error) {
	var result Result
	err := m.handlers.Save.Execute(ctx, documentscmd.SaveDocumentCommand{
		CType:    ctype,
		Document: presented,
		Language: language,
		Result:   &result,
	})
	return result, err
}

// RenderForm renders the edit form of a stored document.
func (m *Module) RenderForm(ctx context.Context, ctype string, stored map[string]any, language string) (FormOutput, error) {
	var out FormOutput
	err := m.handlers.Form.Execute(ctx, documentscmd.RenderFormCommand{
		CType:    ctype,
		Document: stored,
		Language: language,
		Output:   &out,
	})
	return out, err
}
