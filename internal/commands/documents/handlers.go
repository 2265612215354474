package documentscmd

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fieldkit/internal/commands"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/pipeline"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

const (
	documentValidationCode = "DOCUMENT_VALIDATION_FAILED"
	schemaInvalidCode      = "SCHEMA_CONFIGURATION_INVALID"
	sideEffectFailedCode   = "DOCUMENT_SIDE_EFFECT_FAILED"
)

// PresentDocumentHandler runs the present pass through the shared command
// handler.
type PresentDocumentHandler struct {
	inner *commands.Handler[PresentDocumentCommand]
}

// NewPresentDocumentHandler constructs a handler bound to o.
func NewPresentDocumentHandler(o *pipeline.Orchestrator, logger interfaces.Logger, opts ...commands.HandlerOption[PresentDocumentCommand]) *PresentDocumentHandler {
	exec := func(ctx context.Context, msg PresentDocumentCommand) error {
		rc := renderContext(o, msg.CType, domain.Mode(msg.Mode), msg.Language)
		rc.RequestFilters = msg.RequestFilters

		var (
			result pipeline.Result
			err    error
		)
		if msg.Document != nil {
			result, err = o.Present(ctx, msg.CType, msg.Document, rc)
		} else {
			result, err = o.PresentByID(ctx, msg.CType, msg.UUID, rc)
		}
		if err != nil {
			return classify(err)
		}
		if msg.Result != nil {
			*msg.Result = result
		}
		return nil
	}
	return &PresentDocumentHandler{inner: newHandler(exec, "documents.present", logger, opts)}
}

// Execute satisfies command.Commander[PresentDocumentCommand].Execute.
func (h *PresentDocumentHandler) Execute(ctx context.Context, msg PresentDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// StoreDocumentHandler runs the store pass without persisting the parent.
type StoreDocumentHandler struct {
	inner *commands.Handler[StoreDocumentCommand]
}

// NewStoreDocumentHandler constructs a handler bound to o.
func NewStoreDocumentHandler(o *pipeline.Orchestrator, logger interfaces.Logger, opts ...commands.HandlerOption[StoreDocumentCommand]) *StoreDocumentHandler {
	exec := func(ctx context.Context, msg StoreDocumentCommand) error {
		result, err := o.Store(ctx, msg.CType, msg.Document, renderContext(o, msg.CType, domain.ModeEdit, msg.Language))
		if msg.Result != nil {
			*msg.Result = result
		}
		return classify(err)
	}
	return &StoreDocumentHandler{inner: newHandler(exec, "documents.store", logger, opts)}
}

// Execute satisfies command.Commander[StoreDocumentCommand].Execute.
func (h *StoreDocumentHandler) Execute(ctx context.Context, msg StoreDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SaveDocumentHandler stores and persists documents.
type SaveDocumentHandler struct {
	inner *commands.Handler[SaveDocumentCommand]
}

// NewSaveDocumentHandler constructs a handler bound to o.
func NewSaveDocumentHandler(o *pipeline.Orchestrator, logger interfaces.Logger, opts ...commands.HandlerOption[SaveDocumentCommand]) *SaveDocumentHandler {
	exec := func(ctx context.Context, msg SaveDocumentCommand) error {
		result, err := o.Save(ctx, msg.CType, msg.Document, renderContext(o, msg.CType, domain.ModeEdit, msg.Language))
		if msg.Result != nil {
			*msg.Result = result
		}
		return classify(err)
	}
	return &SaveDocumentHandler{inner: newHandler(exec, "documents.save", logger, opts)}
}

// Execute satisfies command.Commander[SaveDocumentCommand].Execute.
func (h *SaveDocumentHandler) Execute(ctx context.Context, msg SaveDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderFormHandler renders edit forms.
type RenderFormHandler struct {
	inner *commands.Handler[RenderFormCommand]
}

// NewRenderFormHandler constructs a handler bound to o.
func NewRenderFormHandler(o *pipeline.Orchestrator, logger interfaces.Logger, opts ...commands.HandlerOption[RenderFormCommand]) *RenderFormHandler {
	exec := func(ctx context.Context, msg RenderFormCommand) error {
		out, _, err := o.RenderForm(ctx, msg.CType, msg.Document, renderContext(o, msg.CType, domain.ModeEdit, msg.Language))
		if err != nil {
			return classify(err)
		}
		if msg.Output != nil {
			*msg.Output = out
		}
		return nil
	}
	return &RenderFormHandler{inner: newHandler(exec, "documents.form", logger, opts)}
}

// Execute satisfies command.Commander[RenderFormCommand].Execute.
func (h *RenderFormHandler) Execute(ctx context.Context, msg RenderFormCommand) error {
	return h.inner.Execute(ctx, msg)
}

func newHandler[T command.Message](exec func(context.Context, T) error, operation string, logger interfaces.Logger, opts []commands.HandlerOption[T]) *commands.Handler[T] {
	handlerOpts := []commands.HandlerOption[T]{
		commands.WithLogger[T](logger),
		commands.WithOperation[T](operation),
	}
	handlerOpts = append(handlerOpts, opts...)
	return commands.NewHandler[T](exec, handlerOpts...)
}

func renderContext(o *pipeline.Orchestrator, ctype string, mode domain.Mode, language string) domain.RenderContext {
	if mode == "" {
		mode = domain.ModeEdit
	}
	rc := o.DefaultContext(ctype, mode)
	if language = strings.TrimSpace(language); language != "" {
		rc.Language = language
	}
	return rc
}

// classify tags pipeline failures with a go-errors category so callers can
// tell bad input from broken configuration.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		validationErr *pipeline.ValidationError
		configErr     *pipeline.ConfigurationError
		sideEffectErr *pipeline.SideEffectError
	)
	switch {
	case errors.As(err, &validationErr):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "document validation failed").
			WithTextCode(documentValidationCode)
	case errors.As(err, &configErr):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "content type schema is invalid").
			WithTextCode(schemaInvalidCode)
	case errors.As(err, &sideEffectErr):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "nested document write failed").
			WithTextCode(sideEffectFailedCode)
	default:
		return err
	}
}
