package processors

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

const (
	TypeList = "list"

	// requestFilterPrefix marks filter values read from the render context.
	requestFilterPrefix = "$request."

	// SourceStored merges the stored field value into the configured filter.
	SourceStored = "stored"
)

// List queries Config.CType with Config.Filter, Config.Sort and Config.Limit
// and embeds the matching documents.
type List struct{}

func (List) Name() string { return TypeList }

func (List) Unbound() bool { return true }

func (List) ProcessData(ctx context.Context, env *Env, field schema.FieldDefinition, stored any) (Patch, error) {
	query := BuildQuery(env, field, stored)
	rows, err := env.Resolver.Query(ctx, field.Config.CType, query)
	if err != nil {
		return SetPatch(field.Key, []any{}), &ResolutionError{CType: field.Config.CType, Err: err}
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		doc := row
		if field.Config.Present {
			leave, ok := env.Resolver.Enter(field.Config.CType, row.UUID())
			if ok {
				presented, err := env.presentChild(ctx, field.Config.CType, row)
				leave()
				if err != nil {
					return SetPatch(field.Key, out), &ResolutionError{CType: field.Config.CType, UUID: row.UUID(), Err: err}
				}
				doc = presented
			}
		}
		out = append(out, document.Project(doc, field.Config.Columns))
	}
	return SetPatch(field.Key, out), nil
}

// ProcessDataPreSave keeps only what the list needs to be rebuilt: the
// stored filter override when Source is "stored", nothing otherwise.
func (List) ProcessDataPreSave(_ context.Context, _ *Env, field schema.FieldDefinition, present any) (Patch, error) {
	if strings.EqualFold(field.Config.Source, SourceStored) {
		if m, ok := document.AsMap(present); ok {
			return SetPatch(field.Key, document.CloneMap(m)), nil
		}
	}
	return Patch{Unset: []string{field.Key}}, nil
}

// BuildQuery assembles the store query for a list field.
func BuildQuery(env *Env, field schema.FieldDefinition, stored any) interfaces.Query {
	filter := make(map[string]any, len(field.Config.Filter))
	for key, value := range field.Config.Filter {
		filter[key] = value
	}
	if strings.EqualFold(field.Config.Source, SourceStored) {
		if m, ok := document.AsMap(stored); ok {
			for key, value := range m {
				filter[key] = value
			}
		}
	}
	for key, value := range filter {
		name, ok := requestFilterName(value)
		if !ok {
			continue
		}
		if env != nil {
			if substituted, ok := env.Context.RequestFilter(name); ok {
				filter[key] = substituted
				continue
			}
		}
		delete(filter, key)
	}

	sortKeys := document.ParseSort(field.Config.Sort)
	sortFields := make([]interfaces.SortField, 0, len(sortKeys))
	for _, key := range sortKeys {
		sortFields = append(sortFields, interfaces.SortField{Key: key.Key, Descending: key.Descending})
	}
	return interfaces.Query{
		Filter: filter,
		Sort:   sortFields,
		Limit:  EffectiveLimit(field.Config.Limit, env.unlimited()),
	}
}

// EffectiveLimit maps a configured limit to the query limit. false, "false",
// absent, non numeric and non positive limits all mean "unlimited" and map to
// the cap.
func EffectiveLimit(limit any, unlimited int) int {
	if unlimited <= 0 {
		unlimited = 99999
	}
	var n float64
	switch v := limit.(type) {
	case nil, bool:
		return unlimited
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case float64:
		n = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return unlimited
		}
		n = parsed
	default:
		return unlimited
	}
	if n <= 0 || math.IsNaN(n) {
		return unlimited
	}
	if n > float64(unlimited) {
		return unlimited
	}
	return int(n)
}

func requestFilterName(value any) (string, bool) {
	raw, ok := value.(string)
	if !ok || !strings.HasPrefix(raw, requestFilterPrefix) {
		return "", false
	}
	name := strings.TrimSpace(strings.TrimPrefix(raw, requestFilterPrefix))
	return name, name != ""
}
