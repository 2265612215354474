package pipeline

import (
	"context"
	"errors"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/processors"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/internal/transformers"
)

// Present converts a stored document into its presented form for rc.Mode.
// The input is not modified. Per field failures are collected in
// Result.FieldErrors and never abort the pass.
func (o *Orchestrator) Present(ctx context.Context, ctype string, stored map[string]any, rc domain.RenderContext) (Result, error) {
	if o.store == nil {
		return Result{}, ErrStoreRequired
	}
	plan, err := o.Plan(ctx, ctype)
	if err != nil {
		return Result{}, err
	}
	env := o.newEnv(o.store, rc.WithCType(canonicalKey(plan.CType())))
	doc := document.Document(stored).Clone()
	if id := doc.UUID(); id != "" {
		if leave, ok := env.Resolver.Enter(plan.CType(), id); ok {
			defer leave()
		}
	}

	var result Result
	presented, err := o.present(ctx, env, plan, doc, &result)
	result.Document = presented
	return result, err
}

// PresentByID loads a document from the store and presents it. A missing
// document yields a nil Result.Document.
func (o *Orchestrator) PresentByID(ctx context.Context, ctype, id string, rc domain.RenderContext) (Result, error) {
	if o.store == nil {
		return Result{}, ErrStoreRequired
	}
	stored, err := o.store.Find(ctx, canonicalKey(ctype), id)
	if err != nil {
		return Result{}, &ResolutionError{CType: ctype, UUID: id, Err: err}
	}
	if stored == nil {
		return Result{}, nil
	}
	return o.Present(ctx, ctype, stored, rc)
}

func (o *Orchestrator) present(ctx context.Context, env *processors.Env, plan *Plan, doc document.Document, result *Result) (document.Document, error) {
	out := doc.Clone()
	if out == nil {
		out = document.Document{}
	}
	if len(plan.translatable) > 0 {
		document.PrepareI18nStructure(out, env.Context.Languages, o.defaultLanguage, plan.translatable)
	}
	for _, fp := range plan.Fields {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		for _, target := range fieldTargets(out, fp.Field, env.Context.Languages) {
			o.presentField(ctx, env, plan, fp, target, result)
		}
	}
	return out, nil
}

func (o *Orchestrator) presentField(ctx context.Context, env *processors.Env, plan *Plan, fp FieldPlan, target map[string]any, result *Result) {
	key := fp.Field.Key
	logger := o.fieldLogger(plan.CType(), key, domain.DirectionPresent)

	if value, ok := target[key]; ok && fp.Transformer != nil {
		found, err := transformers.Apply(fp.Transformer, domain.DirectionPresent, domain.ModeEdit, value)
		if err != nil {
			logger.Warn("transform failed", "error", err)
			result.addFieldError(key, err)
		}
		target[key] = found
	}

	if _, present := target[key]; fp.Processor != nil && processors.Applies(fp.Processor, present) {
		patch, err := processField(ctx, env, fp, target[key])
		patch.ApplyTo(target)
		if err != nil {
			logger.Warn("field processing failed", "error", err)
			result.addFieldError(key, err)
		}
	}

	if !env.Context.IsView() || fp.Transformer == nil {
		return
	}
	presenter, ok := fp.Transformer.(transformers.Presenter)
	if !ok {
		return
	}
	value, ok := target[key]
	if !ok {
		return
	}
	shown, err := presenter.Transform(value)
	if err != nil {
		err = &TransformError{Transformer: fp.Transformer.Name(), Direction: domain.DirectionPresent, Err: err}
		logger.Warn("display transform failed", "error", err)
		result.addFieldError(key, err)
		return
	}
	target[key] = shown
}

// processField runs the present capability of the field processor. Fields
// configured with format "json" hold the legacy embedded layout and go
// through ProcessJSON when the processor supports it.
func processField(ctx context.Context, env *processors.Env, fp FieldPlan, value any) (processors.Patch, error) {
	if fp.Field.Config.Format == "json" {
		if jp, ok := fp.Processor.(processors.JSONProcessor); ok {
			return jp.ProcessJSON(ctx, env, fp.Field.Config.CType, fp.Field.Key, value)
		}
	}
	if dp, ok := fp.Processor.(processors.DataProcessor); ok {
		return dp.ProcessData(ctx, env, fp.Field, value)
	}
	return processors.Patch{}, nil
}

// presentChild presents a referenced document through its own plan. Types
// without a schema are returned as stored.
func (o *Orchestrator) presentChild(ctx context.Context, env *processors.Env, ctype string, doc document.Document) (document.Document, error) {
	plan, err := o.Plan(ctx, ctype)
	if err != nil {
		if errors.Is(err, schema.ErrSchemaNotFound) {
			return doc, nil
		}
		return nil, err
	}
	child := env.WithContext(env.Context.WithCType(canonicalKey(plan.CType())))
	var result Result
	presented, err := o.present(ctx, child, plan, doc, &result)
	for key, fieldErr := range result.FieldErrors {
		o.fieldLogger(plan.CType(), key, domain.DirectionPresent).Warn("nested field failed", "uuid", doc.UUID(), "error", fieldErr)
	}
	return presented, err
}

// fieldTargets returns the maps a field value lives in: the document itself
// or, for translatable fields, one i18n bucket per language.
func fieldTargets(doc document.Document, field schema.FieldDefinition, languages []string) []map[string]any {
	if !field.Translatable {
		return []map[string]any{doc}
	}
	out := make([]map[string]any, 0, len(languages))
	for _, language := range languages {
		out = append(out, document.I18nBucket(doc, language, true))
	}
	return out
}
