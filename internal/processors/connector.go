package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/connectors"
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
)

const TypeConnector = "connector"

// Connector resolves a stored "name[:action]" reference through the
// connector registry. View mode renders the connector; edit mode keeps the
// reference after checking the name is known.
type Connector struct{}

func (Connector) Name() string { return TypeConnector }

func (Connector) ProcessData(ctx context.Context, env *Env, field schema.FieldDefinition, stored any) (Patch, error) {
	ref := strings.TrimSpace(document.String(stored))
	if ref == "" {
		return SetPatch(field.Key, ""), nil
	}
	if env.Connectors == nil {
		return SetPatch(field.Key, ""), fmt.Errorf("field %q: %w: no connector registry", field.Key, connectors.ErrUnknownConnector)
	}
	if !env.Context.IsView() {
		inv, err := connectors.ParseReference(ref)
		if err != nil {
			return SetPatch(field.Key, ref), err
		}
		if _, err := env.Connectors.Lookup(inv.Name); err != nil {
			return SetPatch(field.Key, ref), fmt.Errorf("field %q: %w", field.Key, err)
		}
		return SetPatch(field.Key, ref), nil
	}
	markup, err := env.Connectors.Invoke(ctx, ref, env.Context)
	if err != nil {
		return SetPatch(field.Key, ""), fmt.Errorf("field %q: %w", field.Key, err)
	}
	return SetPatch(field.Key, markup), nil
}

// ProcessDataPreSave normalizes the reference and rejects unknown connectors.
func (Connector) ProcessDataPreSave(_ context.Context, env *Env, field schema.FieldDefinition, present any) (Patch, error) {
	ref := strings.TrimSpace(document.String(present))
	if ref == "" {
		return SetPatch(field.Key, ""), nil
	}
	inv, err := connectors.ParseReference(ref)
	if err != nil {
		return Patch{}, fmt.Errorf("field %q: %w", field.Key, err)
	}
	if env.Connectors != nil {
		if _, err := env.Connectors.Lookup(inv.Name); err != nil {
			return Patch{}, fmt.Errorf("field %q: %w", field.Key, err)
		}
	}
	normalized := inv.Name
	if inv.HasAction {
		normalized += ":" + inv.Action
	}
	return SetPatch(field.Key, normalized), nil
}
