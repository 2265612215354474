package processors

import (
	"context"
	"sort"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
)

const TypeMatrix = "matrix"

// Matrix stores zone name -> ordered references. In view mode every zone is
// rendered into one concatenated fragment; in edit mode zones hold
// summaries. Configured zones are always present.
type Matrix struct{}

func (Matrix) Name() string { return TypeMatrix }

func (Matrix) ProcessData(ctx context.Context, env *Env, field schema.FieldDefinition, stored any) (Patch, error) {
	zones := matrixZones(stored)
	out := make(map[string]any, len(zones)+len(field.Config.Zones))
	for _, zone := range zoneNames(field, zones) {
		refs := document.ParseReferences(zones[zone], field.Config.CType)
		if env.Context.IsView() {
			fragment, err := renderZone(ctx, env, field, zone, refs)
			if err != nil {
				return SetPatch(field.Key, out), err
			}
			out[zone] = fragment
			continue
		}
		summaries := make([]any, 0, len(refs))
		for _, ref := range refs {
			doc, err := env.Resolver.Find(ctx, ref.CType, ref.UUID)
			if err != nil {
				return SetPatch(field.Key, out), &ResolutionError{CType: ref.CType, UUID: ref.UUID, Err: err}
			}
			if doc == nil {
				env.logger().Warn("matrix child missing", "zone", zone, "ctype", ref.CType, "uuid", ref.UUID, "field", field.Key)
				continue
			}
			summaries = append(summaries, Summary(ref.CType, doc))
		}
		out[zone] = summaries
	}
	return SetPatch(field.Key, out), nil
}

// ProcessDataPreSave reduces every zone entry to a {uuid, ctype} reference.
func (Matrix) ProcessDataPreSave(_ context.Context, _ *Env, field schema.FieldDefinition, present any) (Patch, error) {
	zones := matrixZones(present)
	out := make(map[string]any, len(zones))
	for _, zone := range zoneNames(field, zones) {
		refs := document.ParseReferences(zones[zone], field.Config.CType)
		items := make([]any, 0, len(refs))
		for _, ref := range refs {
			items = append(items, ref.Map())
		}
		out[zone] = items
	}
	return SetPatch(field.Key, out), nil
}

func renderZone(ctx context.Context, env *Env, field schema.FieldDefinition, zone string, refs []document.Reference) (string, error) {
	var b strings.Builder
	for _, ref := range refs {
		leave, ok := env.Resolver.Enter(ref.CType, ref.UUID)
		if !ok {
			env.logger().Warn("matrix cycle skipped", "zone", zone, "ctype", ref.CType, "uuid", ref.UUID, "field", field.Key)
			continue
		}
		fragment, found, err := renderChild(ctx, env, ref)
		leave()
		if err != nil {
			return b.String(), err
		}
		if !found {
			env.logger().Warn("matrix child missing", "zone", zone, "ctype", ref.CType, "uuid", ref.UUID, "field", field.Key)
			continue
		}
		b.WriteString(fragment)
	}
	return b.String(), nil
}

func renderChild(ctx context.Context, env *Env, ref document.Reference) (string, bool, error) {
	doc, err := env.Resolver.Find(ctx, ref.CType, ref.UUID)
	if err != nil {
		return "", false, &ResolutionError{CType: ref.CType, UUID: ref.UUID, Err: err}
	}
	if doc == nil {
		return "", false, nil
	}
	presented, err := env.presentChild(ctx, ref.CType, doc)
	if err != nil {
		return "", true, &ResolutionError{CType: ref.CType, UUID: ref.UUID, Err: err}
	}
	if env.Fragments == nil {
		return presented.Title(), true, nil
	}
	fragment, err := env.Fragments.RenderFragment(ctx, ref.CType, presented)
	if err != nil {
		return "", true, &ResolutionError{CType: ref.CType, UUID: ref.UUID, Err: err}
	}
	return fragment, true, nil
}

func matrixZones(value any) map[string]any {
	if raw, ok := value.(string); ok {
		value = document.DecodeJSON(raw)
	}
	m, ok := document.AsMap(value)
	if !ok {
		return map[string]any{}
	}
	return m
}

// zoneNames returns configured zones first, in configuration order, then any
// other stored zones sorted by name.
func zoneNames(field schema.FieldDefinition, zones map[string]any) []string {
	out := make([]string, 0, len(zones)+len(field.Config.Zones))
	seen := make(map[string]struct{}, len(out))
	for _, zone := range field.Config.Zones {
		if _, ok := seen[zone]; ok || zone == "" {
			continue
		}
		seen[zone] = struct{}{}
		out = append(out, zone)
	}
	extra := make([]string, 0, len(zones))
	for zone := range zones {
		if _, ok := seen[zone]; !ok {
			extra = append(extra, zone)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
