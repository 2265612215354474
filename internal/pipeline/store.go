package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/processors"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/internal/transformers"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

// Store converts a presented (edited) document into its stored form without
// persisting the parent. Rules are checked first, then pre-save processors
// and BeforeSave transforms run in schema order. Any field failure fails the
// pass with a ValidationError. Documents autocreated by relation fields are
// written to the store immediately; use Save for an atomic write.
func (o *Orchestrator) Store(ctx context.Context, ctype string, presented map[string]any, rc domain.RenderContext) (Result, error) {
	if o.store == nil {
		return Result{}, ErrStoreRequired
	}
	plan, err := o.Plan(ctx, ctype)
	if err != nil {
		return Result{}, err
	}
	env := o.newEnv(o.store, rc.WithCType(canonicalKey(plan.CType())))
	result, err := o.storePass(ctx, env, plan, document.Document(presented))
	result.Created = env.Resolver.Created()
	return result, err
}

// Save runs the store pass, persists the parent and runs post-save
// processors. With a transactional store every write, nested creates
// included, happens in one transaction.
func (o *Orchestrator) Save(ctx context.Context, ctype string, presented map[string]any, rc domain.RenderContext) (Result, error) {
	if o.store == nil {
		return Result{}, ErrStoreRequired
	}
	plan, err := o.Plan(ctx, ctype)
	if err != nil {
		return Result{}, err
	}
	rc = rc.WithCType(canonicalKey(plan.CType()))

	var (
		result Result
		env    *processors.Env
	)
	run := func(ctx context.Context, store interfaces.DocumentStore) error {
		env = o.newEnv(store, rc)
		stored, err := o.storePass(ctx, env, plan, document.Document(presented))
		if err != nil {
			return err
		}
		id, err := store.Save(ctx, canonicalKey(plan.CType()), stored.Document.Clone())
		if err != nil {
			return fmt.Errorf("pipeline: save %s: %w", plan.CType(), err)
		}
		saved := stored.Document.Clone()
		saved[domain.KeyUUID] = id
		saved[domain.KeyCType] = canonicalKey(plan.CType())
		if err := o.postSave(ctx, env, plan, saved); err != nil {
			return err
		}
		result = Result{Document: saved}
		return nil
	}

	tx, transactional := o.store.(interfaces.TransactionalStore)
	if transactional {
		err = tx.RunInTx(ctx, run)
	} else {
		err = run(ctx, o.store)
	}
	if env != nil {
		result.Created = env.Resolver.Created()
	}
	if err != nil {
		var sideEffect *SideEffectError
		if errors.As(err, &sideEffect) {
			sideEffect.Created = result.Created
			sideEffect.RolledBack = transactional
		}
		o.logger.Error("save failed", "ctype", plan.CType(), "transactional", transactional, "created", len(result.Created), "error", err)
		return result, err
	}
	o.logger.Info("document saved", "ctype", plan.CType(), "uuid", result.Document.UUID(), "created", len(result.Created))
	return result, nil
}

// PostSave runs the post-save processors for a stored document.
func (o *Orchestrator) PostSave(ctx context.Context, ctype string, stored map[string]any, rc domain.RenderContext) error {
	if o.store == nil {
		return ErrStoreRequired
	}
	plan, err := o.Plan(ctx, ctype)
	if err != nil {
		return err
	}
	env := o.newEnv(o.store, rc.WithCType(canonicalKey(plan.CType())))
	return o.postSave(ctx, env, plan, document.Document(stored))
}

// PrepareQuery applies BeforeFind transforms to a lookup filter so it can be
// compared with stored values. Keys without a field pass through.
func (o *Orchestrator) PrepareQuery(ctx context.Context, ctype string, filter map[string]any) (map[string]any, error) {
	plan, err := o.Plan(ctx, ctype)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(filter))
	for key, value := range filter {
		out[key] = value
	}
	for _, fp := range plan.Fields {
		value, ok := out[fp.Field.Key]
		if !ok || fp.Transformer == nil {
			continue
		}
		found, err := transformers.Apply(fp.Transformer, domain.DirectionFind, domain.ModeEdit, value)
		if err != nil {
			return nil, &ValidationError{CType: plan.CType(), Fields: map[string]error{fp.Field.Key: err}}
		}
		out[fp.Field.Key] = found
	}
	return out, nil
}

func (o *Orchestrator) storePass(ctx context.Context, env *processors.Env, plan *Plan, presented document.Document) (Result, error) {
	out := presented.Clone()
	if out == nil {
		out = document.Document{}
	}
	if len(plan.translatable) > 0 {
		document.PrepareI18nStructure(out, env.Context.Languages, o.defaultLanguage, plan.translatable)
	}
	fieldErrors := make(map[string]error)
	for _, fp := range plan.Fields {
		if err := ctx.Err(); err != nil {
			return Result{Document: out}, err
		}
		for idx, target := range fieldTargets(out, fp.Field, env.Context.Languages) {
			checkRules := !fp.Field.Translatable || env.Context.Languages[idx] == o.defaultLanguage
			if err := o.storeField(ctx, env, plan, fp, target, checkRules); err != nil {
				var autocreate *processors.AutocreateError
				if errors.As(err, &autocreate) {
					return Result{Document: out}, &SideEffectError{CType: plan.CType(), Field: fp.Field.Key, Err: err}
				}
				if _, exists := fieldErrors[fp.Field.Key]; !exists {
					fieldErrors[fp.Field.Key] = err
				}
			}
		}
	}
	if len(fieldErrors) > 0 {
		return Result{Document: out}, &ValidationError{CType: plan.CType(), Fields: fieldErrors}
	}
	return Result{Document: out}, nil
}

func (o *Orchestrator) storeField(ctx context.Context, env *processors.Env, plan *Plan, fp FieldPlan, target map[string]any, checkRules bool) error {
	key := fp.Field.Key
	if checkRules {
		if err := schema.ValidateValue(fp.Rules, target[key]); err != nil {
			return err
		}
	}
	_, present := target[key]
	if saver, ok := fp.Processor.(processors.PreSaveProcessor); ok && processors.Applies(fp.Processor, present) {
		patch, err := saver.ProcessDataPreSave(ctx, env, fp.Field, target[key])
		if err != nil {
			return err
		}
		patch.ApplyTo(target)
	}
	value, ok := target[key]
	if !ok || fp.Transformer == nil {
		return nil
	}
	stored, err := transformers.Apply(fp.Transformer, domain.DirectionStore, domain.ModeEdit, value)
	if err != nil {
		o.fieldLogger(plan.CType(), key, domain.DirectionStore).Warn("transform failed", "error", err)
		return err
	}
	target[key] = stored
	return nil
}

func (o *Orchestrator) postSave(ctx context.Context, env *processors.Env, plan *Plan, doc document.Document) error {
	for _, fp := range plan.Fields {
		saver, ok := fp.Processor.(processors.PostSaveProcessor)
		if !ok {
			continue
		}
		for _, target := range fieldTargets(doc, fp.Field, env.Context.Languages) {
			patch, err := saver.ProcessDataPostSave(ctx, env, fp.Field, target[fp.Field.Key], doc)
			if err != nil {
				return &SideEffectError{CType: plan.CType(), Field: fp.Field.Key, Err: err}
			}
			patch.ApplyTo(target)
		}
	}
	return nil
}
