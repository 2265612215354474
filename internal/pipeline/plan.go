package pipeline

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/processors"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/internal/transformers"
)

// Plan is the compiled form of a content type schema: every field bound to
// its transformer, processor and rules. Plans are immutable once built.
type Plan struct {
	Schema       schema.ContentTypeSchema
	Fields       []FieldPlan
	translatable []document.TranslatableField
}

// FieldPlan binds one field to its collaborators. Transformer and Processor
// are nil when the field has none.
type FieldPlan struct {
	Field       schema.FieldDefinition
	Transformer transformers.Transformer
	Processor   processors.Processor
	WidgetClass string
	Rules       []validation.Rule
}

// CType returns the content type name.
func (p *Plan) CType() string {
	return p.Schema.Name
}

// Plan returns the compiled plan for ctype, compiling it on first use.
func (o *Orchestrator) Plan(ctx context.Context, ctype string) (*Plan, error) {
	key := canonicalKey(ctype)
	o.mu.RLock()
	plan, ok := o.plans[key]
	o.mu.RUnlock()
	if ok {
		return plan, nil
	}
	if o.loader == nil {
		return nil, ErrLoaderRequired
	}
	ct, err := o.loader.LoadFieldSchema(ctx, key)
	if err != nil {
		return nil, err
	}
	plan, err = o.compile(ct)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	if existing, ok := o.plans[key]; ok {
		plan = existing
	} else {
		o.plans[key] = plan
	}
	o.mu.Unlock()
	o.logger.Debug("plan compiled", "ctype", key, "fields", len(plan.Fields))
	return plan, nil
}

// Compile builds the plans of every ctype up front so configuration errors
// surface at load time.
func (o *Orchestrator) Compile(ctx context.Context, ctypes ...string) error {
	for _, ctype := range ctypes {
		if _, err := o.Plan(ctx, ctype); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate drops the cached plan of ctype, or every plan when ctype is "".
func (o *Orchestrator) Invalidate(ctype string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ctype == "" {
		o.plans = make(map[string]*Plan)
		return
	}
	delete(o.plans, canonicalKey(ctype))
}

func (o *Orchestrator) compile(ct schema.ContentTypeSchema) (*Plan, error) {
	if err := ct.Validate(); err != nil {
		return nil, &ConfigurationError{CType: ct.Name, Kind: "schema", Err: err}
	}
	plan := &Plan{
		Schema:       ct,
		Fields:       make([]FieldPlan, 0, len(ct.Fields)),
		translatable: ct.TranslatableFields(),
	}
	for _, field := range ct.Fields {
		fp := FieldPlan{Field: field}

		transformer, err := o.transformers.Build(field, o.transformerSettings)
		if err != nil {
			return nil, &ConfigurationError{CType: ct.Name, Field: field.Key, Kind: "transformer", Err: err}
		}
		fp.Transformer = transformer

		if processor, ok := o.processors.Lookup(field.TypeName()); ok {
			fp.Processor = processor
		}

		class, hasWidget := o.widgets.Resolve(field)
		if field.Widget != "" && !hasWidget {
			return nil, &ConfigurationError{CType: ct.Name, Field: field.Key, Kind: "widget", Err: fmt.Errorf("widget %q is not registered", field.Widget)}
		}
		if fp.Processor == nil && !hasWidget {
			return nil, &ConfigurationError{CType: ct.Name, Field: field.Key, Kind: "type", Err: fmt.Errorf("field type %q has no processor or widget", field.Type)}
		}
		if hasWidget {
			fp.WidgetClass = class
		}

		rules, err := schema.CompileRules(field)
		if err != nil {
			return nil, &ConfigurationError{CType: ct.Name, Field: field.Key, Kind: "rule", Err: err}
		}
		fp.Rules = rules

		if len(field.Config.Schema) > 0 {
			if _, err := o.structures.Compile(field.Config.Schema); err != nil {
				return nil, &ConfigurationError{CType: ct.Name, Field: field.Key, Kind: "structure schema", Err: err}
			}
		}
		plan.Fields = append(plan.Fields, fp)
	}
	return plan, nil
}
