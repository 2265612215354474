package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const TypeRelation = "relation"

// Relation backs relation select fields: presented values are summaries of
// the referenced documents and, with Config.Autocreate, labels typed by the
// editor become new documents on save.
type Relation struct{}

func (Relation) Name() string { return TypeRelation }

func (Relation) ProcessData(ctx context.Context, env *Env, field schema.FieldDefinition, stored any) (Patch, error) {
	refs := document.ParseReferences(stored, field.Config.CType)
	summaries := make([]any, 0, len(refs))
	for _, ref := range refs {
		doc, err := env.Resolver.Find(ctx, ref.CType, ref.UUID)
		if err != nil {
			return SetPatch(field.Key, emptyRelation(field)), &ResolutionError{CType: ref.CType, UUID: ref.UUID, Err: err}
		}
		if doc == nil {
			env.logger().Warn("relation target missing", "ctype", ref.CType, "uuid", ref.UUID, "field", field.Key)
			continue
		}
		summaries = append(summaries, Summary(ref.CType, doc))
	}
	if field.Config.Multiple {
		return SetPatch(field.Key, summaries), nil
	}
	if len(summaries) == 0 {
		return SetPatch(field.Key, nil), nil
	}
	return SetPatch(field.Key, summaries[0]), nil
}

// ProcessDataPreSave stores uuids. Values that are not UUID v4 are labels:
// with autocreate enabled each label becomes a new published document of the
// target type; otherwise the label is stored unchanged.
func (Relation) ProcessDataPreSave(ctx context.Context, env *Env, field schema.FieldDefinition, present any) (Patch, error) {
	items := relationItems(present)
	ids := make([]any, 0, len(items))
	for _, item := range items {
		id, err := resolveRelationItem(ctx, env, field, item)
		if err != nil {
			return Patch{}, err
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	if field.Config.Multiple {
		return SetPatch(field.Key, ids), nil
	}
	if len(ids) == 0 {
		return SetPatch(field.Key, ""), nil
	}
	return SetPatch(field.Key, ids[0]), nil
}

func (Relation) ProcessDataPostSave(ctx context.Context, env *Env, field schema.FieldDefinition, stored any, doc document.Document) (Patch, error) {
	return Patch{}, maintainBackrefs(ctx, env, field, stored, doc)
}

// Summary is the compact presented form of a referenced document.
func Summary(ctype string, doc document.Document) map[string]any {
	if c := doc.CType(); c != "" {
		ctype = c
	}
	return map[string]any{
		domain.KeyUUID:  doc.UUID(),
		domain.KeyCType: ctype,
		domain.KeyTitle: doc.Title(),
	}
}

// AutocreateError reports a failed nested create; the parent save must fail.
type AutocreateError struct {
	CType string
	Label string
	Err   error
}

func (e *AutocreateError) Error() string {
	return fmt.Sprintf("autocreate %s %q: %v", e.CType, e.Label, e.Err)
}

func (e *AutocreateError) Unwrap() error {
	return e.Err
}

func resolveRelationItem(ctx context.Context, env *Env, field schema.FieldDefinition, item any) (string, error) {
	if m, ok := document.AsMap(item); ok {
		if id := strings.TrimSpace(document.String(m[domain.KeyUUID])); id != "" {
			return id, nil
		}
		item = m[domain.KeyTitle]
	}
	value := strings.TrimSpace(document.String(item))
	if value == "" || document.IsUUIDv4(value) {
		return value, nil
	}
	if !field.Config.Autocreate || !env.Settings.Autocreate {
		return value, nil
	}
	return autocreate(ctx, env, field.Config.CType, value)
}

func autocreate(ctx context.Context, env *Env, ctype, label string) (string, error) {
	slugValue, err := slug.Normalize(label)
	if err != nil {
		return "", &AutocreateError{CType: ctype, Label: label, Err: err}
	}
	doc := document.Document{
		domain.KeyUUID:  uuid.NewString(),
		domain.KeyCType: ctype,
		domain.KeyTitle: label,
		domain.KeyState: int(domain.StatePublished),
		domain.KeySlug:  slugValue,
	}
	id, err := env.Resolver.Save(ctx, ctype, doc)
	if err != nil {
		return "", &AutocreateError{CType: ctype, Label: label, Err: err}
	}
	env.logger().Info("relation target created", "ctype", ctype, "uuid", id, "label", label)
	return id, nil
}

func relationItems(value any) []any {
	if raw, ok := value.(string); ok && document.LooksLikeJSON(raw) {
		value = document.DecodeJSON(raw)
	}
	if items, ok := document.AsSlice(value); ok {
		return items
	}
	if value == nil {
		return nil
	}
	return []any{value}
}

func emptyRelation(field schema.FieldDefinition) any {
	if field.Config.Multiple {
		return []any{}
	}
	return nil
}
