package processors

import (
	"context"
	"fmt"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
)

const TypeInclude = "include"

// Include embeds the referenced documents under the field key. A single
// reference yields a document (nil when missing); Multiple yields a list that
// skips missing targets.
type Include struct{}

func (Include) Name() string { return TypeInclude }

func (Include) ProcessData(ctx context.Context, env *Env, field schema.FieldDefinition, stored any) (Patch, error) {
	refs := document.ParseReferences(stored, field.Config.CType)
	if !field.Config.Multiple {
		if len(refs) == 0 {
			return SetPatch(field.Key, nil), nil
		}
		doc, err := includeOne(ctx, env, field, refs[0])
		if err != nil {
			return SetPatch(field.Key, nil), err
		}
		if doc == nil {
			return SetPatch(field.Key, nil), nil
		}
		return SetPatch(field.Key, map[string]any(doc)), nil
	}
	out := make([]any, 0, len(refs))
	for _, ref := range refs {
		doc, err := includeOne(ctx, env, field, ref)
		if err != nil {
			return SetPatch(field.Key, out), err
		}
		if doc != nil {
			out = append(out, map[string]any(doc))
		}
	}
	return SetPatch(field.Key, out), nil
}

// ProcessDataPreSave stores references only: a uuid string for single fields
// and a list of uuids for multiple ones.
func (Include) ProcessDataPreSave(_ context.Context, _ *Env, field schema.FieldDefinition, present any) (Patch, error) {
	refs := document.ParseReferences(present, field.Config.CType)
	if !field.Config.Multiple {
		if len(refs) == 0 {
			return SetPatch(field.Key, ""), nil
		}
		return SetPatch(field.Key, refs[0].UUID), nil
	}
	out := make([]any, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.UUID)
	}
	return SetPatch(field.Key, out), nil
}

// ProcessDataPostSave maintains Config.Backref on every referenced document.
func (Include) ProcessDataPostSave(ctx context.Context, env *Env, field schema.FieldDefinition, stored any, doc document.Document) (Patch, error) {
	return Patch{}, maintainBackrefs(ctx, env, field, stored, doc)
}

// ProcessJSON resolves a legacy embedded reference and stores it under the
// target content type: present[key] = {ctype: document}.
func (Include) ProcessJSON(ctx context.Context, env *Env, ctype, key string, stored any) (Patch, error) {
	ref, ok := document.ParseReference(stored, ctype)
	if !ok {
		return SetPatch(key, nil), nil
	}
	doc, err := env.Resolver.Find(ctx, ref.CType, ref.UUID)
	if err != nil {
		return SetPatch(key, nil), &ResolutionError{CType: ref.CType, UUID: ref.UUID, Err: err}
	}
	if doc == nil {
		env.logger().Warn("legacy reference target missing", "ctype", ref.CType, "uuid", ref.UUID, "field", key)
		return SetPatch(key, nil), nil
	}
	return SetPatch(key, map[string]any{ref.CType: map[string]any(doc)}), nil
}

func includeOne(ctx context.Context, env *Env, field schema.FieldDefinition, ref document.Reference) (document.Document, error) {
	doc, err := env.Resolver.Find(ctx, ref.CType, ref.UUID)
	if err != nil {
		return nil, &ResolutionError{CType: ref.CType, UUID: ref.UUID, Err: err}
	}
	if doc == nil {
		env.logger().Warn("relation target missing", "ctype", ref.CType, "uuid", ref.UUID, "field", field.Key)
		return nil, nil
	}
	if field.Config.Present {
		leave, ok := env.Resolver.Enter(ref.CType, ref.UUID)
		if !ok {
			env.logger().Warn("relation cycle skipped", "ctype", ref.CType, "uuid", ref.UUID, "field", field.Key)
			return document.Document(document.Project(doc, field.Config.Columns)), nil
		}
		presented, err := env.presentChild(ctx, ref.CType, doc)
		leave()
		if err != nil {
			return nil, &ResolutionError{CType: ref.CType, UUID: ref.UUID, Err: err}
		}
		doc = presented
	}
	return document.Document(document.Project(doc, field.Config.Columns)), nil
}

// ResolutionError reports a store failure while resolving a reference.
// Missing targets are not errors.
type ResolutionError struct {
	CType string
	UUID  string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s/%s: %v", e.CType, e.UUID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
