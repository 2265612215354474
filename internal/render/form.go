package render

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/logging"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/internal/widgets"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

// Output is the result of a form or structure render.
type Output struct {
	Markup  string
	Scripts []ScopedScript
	Assets  *widgets.AssetBundle
	// States lists the placements of nested widgets, in render order.
	States []WidgetState
}

// ScriptsHTML renders every script element.
func (o Output) ScriptsHTML() string {
	var b strings.Builder
	for _, script := range o.Scripts {
		b.WriteString(script.HTML())
	}
	return b.String()
}

// FormRenderer renders edit forms for presented documents.
type FormRenderer struct {
	widgets *widgets.Registry
	prefix  string
	logger  interfaces.Logger
}

// FormOption configures a FormRenderer.
type FormOption func(*FormRenderer)

// WithContextPrefix sets the prefix of nested widget unique ids.
func WithContextPrefix(prefix string) FormOption {
	return func(r *FormRenderer) {
		r.prefix = strings.TrimSpace(prefix)
	}
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) FormOption {
	return func(r *FormRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewFormRenderer binds a renderer to a widget registry.
func NewFormRenderer(registry *widgets.Registry, opts ...FormOption) *FormRenderer {
	if registry == nil {
		registry = widgets.NewDefaultRegistry()
	}
	r := &FormRenderer{widgets: registry, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Widgets returns the widget registry.
func (r *FormRenderer) Widgets() *widgets.Registry {
	return r.widgets
}

// RenderForm renders every field of ct with the standard strategy. doc is
// the presented document in edit mode; translatable values are read from
// the i18n bucket of rc.Language.
func (r *FormRenderer) RenderForm(ctx context.Context, ct schema.ContentTypeSchema, doc map[string]any, rc domain.RenderContext) (Output, error) {
	out := Output{Assets: widgets.NewAssetBundle()}
	strategy := StandardStrategy{}
	var b strings.Builder
	for _, field := range ct.Fields {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		widget, err := r.widgets.Build(field)
		if err != nil {
			return out, err
		}
		widget.SetValue(widget.ProcessData(fieldValue(doc, field, rc.Language)))
		widget.RegisterAssets(out.Assets)

		if container, ok := widget.(widgets.Container); ok && len(field.Config.Schema) > 0 {
			nested, err := r.RenderStructure(ctx, field, widget.Value(), rc)
			if err != nil {
				return out, err
			}
			container.SetChildren(nested.Markup)
			out.Scripts = append(out.Scripts, nested.Scripts...)
			out.States = append(out.States, nested.States...)
			out.Assets.Merge(nested.Assets)
		}

		markup, err := strategy.Render(ctx, widget, rc)
		if err != nil {
			return out, err
		}
		b.WriteString(`<div class="fieldkit-field" data-field="`)
		b.WriteString(escapeAttr(field.Key))
		b.WriteString(`">`)
		b.WriteString(markup)
		b.WriteString(`</div>`)

		script, err := strategy.InitScript(widget, rc)
		if err != nil {
			return out, err
		}
		if script != nil {
			out.Scripts = append(out.Scripts, *script)
		}
	}
	out.Markup = b.String()
	r.logger.Debug("form rendered", "ctype", ct.Name, "fields", len(ct.Fields), "scripts", len(out.Scripts))
	return out, nil
}

// RenderStructure walks a structured JSON value and renders a widget per
// leaf with the JSON structure strategy. Nested objects and lists become
// groups; leaf widgets come from the "widget" keyword of the node schema or
// from its type.
func (r *FormRenderer) RenderStructure(ctx context.Context, field schema.FieldDefinition, value any, rc domain.RenderContext) (Output, error) {
	out := Output{Assets: widgets.NewAssetBundle()}
	strategy := NewJSONStructureStrategy(r.prefix, field.Key)
	if raw, ok := value.(string); ok {
		value = document.DecodeJSON(raw)
	}
	w := &structureWalker{renderer: r, strategy: strategy, rc: rc, out: &out}
	markup, err := w.walk(ctx, field.Config.Schema, value, []string{field.Key})
	if err != nil {
		return out, err
	}
	out.Markup = markup
	out.States = strategy.States()
	return out, nil
}

type structureWalker struct {
	renderer *FormRenderer
	strategy *JSONStructureStrategy
	rc       domain.RenderContext
	out      *Output
}

func (w *structureWalker) walk(ctx context.Context, node map[string]any, value any, path []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	if items, ok := document.AsSlice(value); ok {
		itemSchema, _ := document.AsMap(node["items"])
		for idx, item := range items {
			markup, err := w.child(ctx, strconv.Itoa(idx), itemSchema, item, path)
			if err != nil {
				return "", err
			}
			b.WriteString(markup)
		}
		return b.String(), nil
	}
	m, _ := document.AsMap(value)
	properties, _ := document.AsMap(node["properties"])
	for _, key := range structureKeys(properties, m) {
		childSchema, _ := document.AsMap(properties[key])
		markup, err := w.child(ctx, key, childSchema, m[key], path)
		if err != nil {
			return "", err
		}
		b.WriteString(markup)
	}
	return b.String(), nil
}

func (w *structureWalker) child(ctx context.Context, key string, node map[string]any, value any, path []string) (string, error) {
	field := fieldFromSchema(key, node, value)
	childPath := append(append([]string(nil), path...), key)
	if field.Type == "group" {
		inner, err := w.walk(ctx, node, value, childPath)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`<div class="fieldkit-structure-group" data-path="%s">%s</div>`, escapeAttr(strings.Join(childPath, ".")), inner), nil
	}
	widget, err := w.renderer.widgets.Build(field)
	if err != nil {
		return "", err
	}
	widget.SetValue(widget.ProcessData(value))
	widget.RegisterAssets(w.out.Assets)
	strategy := w.strategy.At(path...)
	markup, err := strategy.Render(ctx, widget, w.rc)
	if err != nil {
		return "", err
	}
	script, err := strategy.InitScript(widget, w.rc)
	if err != nil {
		return "", err
	}
	if script != nil {
		w.out.Scripts = append(w.out.Scripts, *script)
	}
	return markup, nil
}

// fieldFromSchema derives a field definition for a structure node. The
// "widget" keyword is either a widget name or a map with name, ctype,
// multiple and options.
func fieldFromSchema(key string, node map[string]any, value any) schema.FieldDefinition {
	field := schema.FieldDefinition{Key: key, Label: document.String(node["title"])}
	switch hint := node["widget"].(type) {
	case string:
		field.Widget = hint
	case map[string]any:
		field.Widget = document.String(hint["name"])
		field.Config.CType = document.String(hint["ctype"])
		field.Config.Multiple, _ = hint["multiple"].(bool)
		if options, ok := document.AsMap(hint["options"]); ok {
			field.Config.Options = make(map[string]string, len(options))
			for k, v := range options {
				field.Config.Options[k] = document.String(v)
			}
		}
	}
	if format := document.String(node["format"]); format != "" {
		field.Config.Format = format
	}
	if enum, ok := document.AsSlice(node["enum"]); ok && len(field.Config.Options) == 0 {
		field.Config.Options = make(map[string]string, len(enum))
		for _, item := range enum {
			s := document.String(item)
			field.Config.Options[s] = s
		}
	}
	if field.Widget != "" {
		field.Type = field.Widget
		return field
	}
	field.Type = typeFromSchema(node, value)
	return field
}

func typeFromSchema(node map[string]any, value any) string {
	switch document.String(node["type"]) {
	case "object", "array":
		return "group"
	case "boolean":
		return widgets.ClassCheckbox
	case "integer", "number":
		return "number"
	case "string":
		if _, ok := node["enum"]; ok {
			return widgets.ClassSelect
		}
		if format := document.String(node["format"]); format == "date" || format == "date-time" {
			return widgets.ClassDate
		}
		return widgets.ClassText
	}
	if _, ok := node["properties"]; ok {
		return "group"
	}
	switch value.(type) {
	case map[string]any, []any:
		return "group"
	case bool:
		return widgets.ClassCheckbox
	}
	return widgets.ClassText
}

// structureKeys lists schema properties first, sorted, then value keys the
// schema does not declare, sorted.
func structureKeys(properties, value map[string]any) []string {
	declared := make([]string, 0, len(properties))
	for key := range properties {
		declared = append(declared, key)
	}
	sort.Strings(declared)
	var extra []string
	for key := range value {
		if _, ok := properties[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(declared, extra...)
}

func fieldValue(doc map[string]any, field schema.FieldDefinition, language string) any {
	if field.Translatable && language != "" {
		if bucket := document.I18nBucket(doc, language, false); bucket != nil {
			if value, ok := bucket[field.Key]; ok {
				return value
			}
		}
	}
	return doc[field.Key]
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;", `'`, "&#39;")

func escapeAttr(value string) string {
	return attrEscaper.Replace(value)
}
