package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/internal/widgets"
)

// ErrHydration is returned when a hydration payload cannot rebuild a widget.
var ErrHydration = errors.New("render: hydration failed")

// WidgetState is the per placement data of a widget rendered by the JSON
// structure strategy. It lives for one render and is never persisted.
type WidgetState struct {
	UniqueID    string
	FieldKey    string
	Path        []string
	Value       any
	Config      map[string]any
	WidgetClass string
}

// Payload returns the hydration contract for the state.
func (s WidgetState) Payload() HydrationPayload {
	return HydrationPayload{
		UniqueID:    s.UniqueID,
		FieldKey:    s.FieldKey,
		Path:        append([]string(nil), s.Path...),
		Value:       document.CloneValue(s.Value),
		Config:      document.CloneMap(s.Config),
		WidgetClass: s.WidgetClass,
	}
}

// HydrationPayload is what the client sends back to turn a placeholder into
// a constructed widget.
type HydrationPayload struct {
	UniqueID    string         `json:"uniqueId"`
	FieldKey    string         `json:"fieldKey"`
	Path        []string       `json:"path"`
	Value       any            `json:"value"`
	Config      map[string]any `json:"config,omitempty"`
	WidgetClass string         `json:"widgetClass"`
}

// Validate checks the identifying members of the payload.
func (p HydrationPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.UniqueID, validation.Required),
		validation.Field(&p.FieldKey, validation.Required),
		validation.Field(&p.WidgetClass, validation.Required),
	)
}

// Hydrate rebuilds the widget a placeholder stands for. field is the
// definition found at payload.Path; the rebuilt widget keeps the placeholder
// unique id so client bindings stay valid.
func Hydrate(ctx context.Context, registry *widgets.Registry, field schema.FieldDefinition, payload HydrationPayload) (widgets.Widget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHydration, err)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: no widget registry", ErrHydration)
	}
	if !strings.EqualFold(strings.TrimSpace(field.Key), strings.TrimSpace(payload.FieldKey)) {
		return nil, fmt.Errorf("%w: payload field %q does not match %q", ErrHydration, payload.FieldKey, field.Key)
	}
	widget, err := registry.BuildClass(field, payload.WidgetClass)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHydration, err)
	}
	widget.SetElementID(inputID(payload.UniqueID))
	widget.SetValue(widget.ProcessData(payload.Value))
	return widget, nil
}

func inputID(uniqueID string) string {
	return uniqueID + "-input"
}
