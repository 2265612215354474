package documentscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/pipeline"
	"github.com/goliatone/go-fieldkit/internal/render"
)

const (
	presentDocumentMessageType = "fieldkit.documents.present"
	storeDocumentMessageType   = "fieldkit.documents.store"
	saveDocumentMessageType    = "fieldkit.documents.save"
	renderFormMessageType      = "fieldkit.documents.form"
)

// PresentDocumentCommand presents a stored document, either given inline or
// loaded by UUID. The pass result is written to Result when set.
type PresentDocumentCommand struct {
	CType          string           `json:"ctype"`
	UUID           string           `json:"uuid,omitempty"`
	Document       map[string]any   `json:"document,omitempty"`
	Mode           string           `json:"mode,omitempty"`
	Language       string           `json:"language,omitempty"`
	RequestFilters map[string]any   `json:"request_filters,omitempty"`
	Result         *pipeline.Result `json:"-"`
}

// Scope reports the content type and language the command acts on.
func (m PresentDocumentCommand) Scope() (string, string) { return m.CType, m.Language }

// Type implements command.Message.
func (PresentDocumentCommand) Type() string { return presentDocumentMessageType }

// Validate ensures the message names a content type, a source document and a
// known mode.
func (m PresentDocumentCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.CType) == "" {
		errs["ctype"] = validation.NewError("fieldkit.documents.present.ctype_required", "ctype is required")
	}
	if strings.TrimSpace(m.UUID) == "" && m.Document == nil {
		errs["document"] = validation.NewError("fieldkit.documents.present.source_required", "uuid or document is required")
	}
	if err := validation.Validate(m.Mode, validation.In(string(domain.ModeEdit), string(domain.ModeView))); err != nil {
		errs["mode"] = err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StoreDocumentCommand converts a presented document into its stored form
// without persisting it.
type StoreDocumentCommand struct {
	CType    string           `json:"ctype"`
	Document map[string]any   `json:"document"`
	Language string           `json:"language,omitempty"`
	Result   *pipeline.Result `json:"-"`
}

// Scope reports the content type and language the command acts on.
func (m StoreDocumentCommand) Scope() (string, string) { return m.CType, m.Language }

// Type implements command.Message.
func (StoreDocumentCommand) Type() string { return storeDocumentMessageType }

// Validate ensures the message carries a content type and a document.
func (m StoreDocumentCommand) Validate() error {
	return validateWrite("store", m.CType, m.Document)
}

// SaveDocumentCommand runs the store pass, persists the document and its
// post-save side effects.
type SaveDocumentCommand struct {
	CType    string           `json:"ctype"`
	Document map[string]any   `json:"document"`
	Language string           `json:"language,omitempty"`
	Result   *pipeline.Result `json:"-"`
}

// Scope reports the content type and language the command acts on.
func (m SaveDocumentCommand) Scope() (string, string) { return m.CType, m.Language }

// Type implements command.Message.
func (SaveDocumentCommand) Type() string { return saveDocumentMessageType }

// Validate ensures the message carries a content type and a document.
func (m SaveDocumentCommand) Validate() error {
	return validateWrite("save", m.CType, m.Document)
}

// RenderFormCommand renders the edit form of a stored document.
type RenderFormCommand struct {
	CType    string         `json:"ctype"`
	Document map[string]any `json:"document"`
	Language string         `json:"language,omitempty"`
	Output   *render.Output `json:"-"`
}

// Scope reports the content type and language the command acts on.
func (m RenderFormCommand) Scope() (string, string) { return m.CType, m.Language }

// Type implements command.Message.
func (RenderFormCommand) Type() string { return renderFormMessageType }

// Validate ensures the message carries a content type.
func (m RenderFormCommand) Validate() error {
	if strings.TrimSpace(m.CType) == "" {
		return validation.Errors{
			"ctype": validation.NewError("fieldkit.documents.form.ctype_required", "ctype is required"),
		}
	}
	return nil
}

func validateWrite(operation, ctype string, doc map[string]any) error {
	errs := validation.Errors{}
	if strings.TrimSpace(ctype) == "" {
		errs["ctype"] = validation.NewError("fieldkit.documents."+operation+".ctype_required", "ctype is required")
	}
	if doc == nil {
		errs["document"] = validation.NewError("fieldkit.documents."+operation+".document_required", "document is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
