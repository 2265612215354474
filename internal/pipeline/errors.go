package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/processors"
	"github.com/goliatone/go-fieldkit/internal/transformers"
)

var (
	// ErrStoreRequired is returned by operations that need a document store.
	ErrStoreRequired = errors.New("pipeline: document store is required")
	// ErrLoaderRequired is returned when no schema loader is configured.
	ErrLoaderRequired = errors.New("pipeline: schema loader is required")
)

// TransformError is a strict transformer failure on one field. It never
// affects sibling fields.
type TransformError = transformers.Error

// ResolutionError is a store failure while resolving a reference. Missing
// targets are not errors; resolution errors degrade the field to empty.
type ResolutionError = processors.ResolutionError

// ConfigurationError reports a schema that cannot be compiled into a plan:
// an unknown transformer, processor, widget or field type, or an invalid
// rule or structure schema. It is raised at plan compile time.
type ConfigurationError struct {
	CType string
	Field string
	Kind  string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("pipeline: %s: invalid %s: %v", e.CType, e.Kind, e.Err)
	}
	return fmt.Sprintf("pipeline: %s.%s: invalid %s: %v", e.CType, e.Field, e.Kind, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// SideEffectError reports a failed nested write (autocreate, backrefs). The
// parent save is aborted. Created lists the documents written before the
// failure; they were rolled back when the store is transactional.
type SideEffectError struct {
	CType      string
	Field      string
	Created    []document.Reference
	RolledBack bool
	Err        error
}

func (e *SideEffectError) Error() string {
	msg := fmt.Sprintf("pipeline: %s.%s: side effect failed: %v", e.CType, e.Field, e.Err)
	if len(e.Created) > 0 && !e.RolledBack {
		ids := make([]string, 0, len(e.Created))
		for _, ref := range e.Created {
			ids = append(ids, ref.CType+"/"+ref.UUID)
		}
		msg += " (created: " + strings.Join(ids, ", ") + ")"
	}
	return msg
}

func (e *SideEffectError) Unwrap() error {
	return e.Err
}

// ValidationError lists the fields that failed a store pass.
type ValidationError struct {
	CType  string
	Fields map[string]error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", key, e.Fields[key]))
	}
	return fmt.Sprintf("pipeline: %s: invalid fields: %s", e.CType, strings.Join(parts, "; "))
}

// Unwrap exposes the field errors to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]error, 0, len(keys))
	for _, key := range keys {
		out = append(out, e.Fields[key])
	}
	return out
}
