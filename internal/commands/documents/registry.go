package documentscmd

import (
	"errors"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-fieldkit/internal/commands"
	"github.com/goliatone/go-fieldkit/internal/pipeline"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

// CommandRegistry receives every document handler built by
// RegisterDocumentCommands.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the document command handlers.
type HandlerSet struct {
	Present *PresentDocumentHandler
	Store   *StoreDocumentHandler
	Save    *SaveDocumentHandler
	Form    *RenderFormHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	present []commands.HandlerOption[PresentDocumentCommand]
	store   []commands.HandlerOption[StoreDocumentCommand]
	save    []commands.HandlerOption[SaveDocumentCommand]
	form    []commands.HandlerOption[RenderFormCommand]
}

// WithPresentOptions forwards options to the present handler.
func WithPresentOptions(opts ...commands.HandlerOption[PresentDocumentCommand]) Option {
	return func(o *options) { o.present = append(o.present, opts...) }
}

// WithStoreOptions forwards options to the store handler.
func WithStoreOptions(opts ...commands.HandlerOption[StoreDocumentCommand]) Option {
	return func(o *options) { o.store = append(o.store, opts...) }
}

// WithSaveOptions forwards options to the save handler.
func WithSaveOptions(opts ...commands.HandlerOption[SaveDocumentCommand]) Option {
	return func(o *options) { o.save = append(o.save, opts...) }
}

// WithFormOptions forwards options to the form handler.
func WithFormOptions(opts ...commands.HandlerOption[RenderFormCommand]) Option {
	return func(o *options) { o.form = append(o.form, opts...) }
}

// RegisterDocumentCommands builds the document handlers around o and hands
// them to reg when it is not nil.
func RegisterDocumentCommands(reg CommandRegistry, o *pipeline.Orchestrator, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if o == nil {
		return nil, errors.New("document command registration: orchestrator is nil")
	}
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "documents")
	set := &HandlerSet{
		Present: NewPresentDocumentHandler(o, logger, cfg.present...),
		Store:   NewStoreDocumentHandler(o, logger, cfg.store...),
		Save:    NewSaveDocumentHandler(o, logger, cfg.save...),
		Form:    NewRenderFormHandler(o, logger, cfg.form...),
	}
	if reg != nil {
		for _, handler := range []any{set.Present, set.Store, set.Save, set.Form} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// Subscribe registers the handlers with the go-command dispatcher so
// document messages can be sent with dispatcher.Dispatch. The returned
// function removes the subscriptions.
func (s *HandlerSet) Subscribe() func() {
	subs := []interface{ Unsubscribe() }{
		dispatcher.SubscribeCommand(s.Present),
		dispatcher.SubscribeCommand(s.Store),
		dispatcher.SubscribeCommand(s.Save),
		dispatcher.SubscribeCommand(s.Form),
	}
	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}
