package pipeline

import (
	"context"

	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/render"
)

// RenderForm presents a stored document in edit mode and renders the edit
// form of its content type.
func (o *Orchestrator) RenderForm(ctx context.Context, ctype string, stored map[string]any, rc domain.RenderContext) (render.Output, Result, error) {
	plan, err := o.Plan(ctx, ctype)
	if err != nil {
		return render.Output{}, Result{}, err
	}
	rc = o.normalizeContext(rc.WithMode(domain.ModeEdit))
	result, err := o.Present(ctx, ctype, stored, rc)
	if err != nil {
		return render.Output{}, result, err
	}
	out, err := o.forms.RenderForm(ctx, plan.Schema, result.Document, rc.WithCType(canonicalKey(plan.CType())))
	if err != nil {
		o.logger.Error("form render failed", "ctype", plan.CType(), "error", err)
		return render.Output{}, result, err
	}
	return out, result, nil
}
