package widgets

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/schema"
)

// Built-in widget classes.
const (
	ClassText          = "text"
	ClassTextarea      = "textarea"
	ClassCheckbox      = "checkbox"
	ClassDate          = "date"
	ClassSelect        = "select"
	ClassRelation      = "relation"
	ClassMatrix        = "matrix"
	ClassJSONStructure = "jsonstructure"
	ClassConnector     = "connector"
	ClassReadonly      = "readonly"
	ClassHidden        = "hidden"
)

// Text is a single line input. Config.Extra["input_type"] selects the HTML
// input type (email, number, password...).
type Text struct{ Base }

func NewText(field schema.FieldDefinition) (Widget, error) {
	return &Text{Base: NewBase(ClassText, field)}, nil
}

func (w *Text) RenderWidget(context.Context) (string, error) {
	inputType := extraString(w.field, "input_type")
	if inputType == "" {
		inputType = "text"
	}
	return w.execute(textTemplate, pongo2.Context{
		"input_type":  inputType,
		"placeholder": extraString(w.field, "placeholder"),
	})
}

// Textarea is a multi line input.
type Textarea struct{ Base }

func NewTextarea(field schema.FieldDefinition) (Widget, error) {
	return &Textarea{Base: NewBase(ClassTextarea, field)}, nil
}

func (w *Textarea) RenderWidget(context.Context) (string, error) {
	rows := 5
	if n, err := strconv.Atoi(extraString(w.field, "rows")); err == nil && n > 0 {
		rows = n
	}
	return w.execute(textareaTemplate, pongo2.Context{"rows": rows})
}

// Checkbox edits a boolean.
type Checkbox struct{ Base }

func NewCheckbox(field schema.FieldDefinition) (Widget, error) {
	return &Checkbox{Base: NewBase(ClassCheckbox, field)}, nil
}

func (w *Checkbox) ProcessData(raw any) any { return truthy(raw) }

func (w *Checkbox) RenderWidget(context.Context) (string, error) {
	return w.execute(checkboxTemplate, pongo2.Context{"value": truthy(w.value)})
}

// Date edits a presented date string and attaches the client date picker.
type Date struct{ Base }

func NewDate(field schema.FieldDefinition) (Widget, error) {
	return &Date{Base: NewBase(ClassDate, field)}, nil
}

func (w *Date) format() string {
	if format := strings.TrimSpace(w.field.Config.Format); format != "" {
		return format
	}
	return "dd.mm.yyyy"
}

func (w *Date) RenderWidget(context.Context) (string, error) {
	return w.execute(dateTemplate, pongo2.Context{"format": w.format()})
}

func (w *Date) RegisterAssets(bundle *AssetBundle) {
	bundle.AddStylesheet(widgetsStylesheet)
	bundle.AddScript(Script{Src: assetPrefix + "date.js", Defer: true})
}

func (w *Date) InitializationScript() string {
	return initCall("date", w.ElementID(), w.ClientConfig())
}

func (w *Date) ClientConfig() map[string]any {
	config := w.Base.ClientConfig()
	config["format"] = w.format()
	return config
}

// Select picks one key of Config.Options.
type Select struct{ Base }

func NewSelect(field schema.FieldDefinition) (Widget, error) {
	return &Select{Base: NewBase(ClassSelect, field)}, nil
}

func (w *Select) RenderWidget(context.Context) (string, error) {
	current := document.String(w.value)
	options := optionList(w.field.Config.Options)
	for _, option := range options {
		option["selected"] = option["key"] == current
	}
	return w.execute(selectTemplate, pongo2.Context{"options": options})
}

func (w *Select) ClientConfig() map[string]any {
	config := w.Base.ClientConfig()
	config["options"] = optionList(w.field.Config.Options)
	return config
}

// Relation edits references to documents of Config.CType. The option list
// is loaded by the client, so the widget supports deferred rendering.
type Relation struct{ Base }

func NewRelation(field schema.FieldDefinition) (Widget, error) {
	return &Relation{Base: NewBase(ClassRelation, field)}, nil
}

// ProcessData normalizes uuids, references and summaries into a list of
// {uuid, ctype, systitle} items.
func (w *Relation) ProcessData(raw any) any {
	return summaryItems(raw, w.field.Config.CType)
}

func (w *Relation) RenderWidget(context.Context) (string, error) {
	items := make([]map[string]any, 0)
	for _, item := range summaryItems(w.value, w.field.Config.CType) {
		m, _ := item.(map[string]any)
		items = append(items, map[string]any{"uuid": m[domain.KeyUUID], "title": itemTitle(m)})
	}
	return w.execute(relationTemplate, pongo2.Context{
		"items":      items,
		"ctype":      w.field.Config.CType,
		"multiple":   w.field.Config.Multiple,
		"autocreate": w.field.Config.Autocreate,
	})
}

func (w *Relation) RegisterAssets(bundle *AssetBundle) {
	bundle.AddStylesheet(widgetsStylesheet)
	bundle.AddScript(Script{Src: assetPrefix + "relation.js", Defer: true})
}

func (w *Relation) InitializationScript() string {
	return initCall("relation", w.ElementID(), w.ClientConfig())
}

func (w *Relation) SupportsAjaxRendering() bool { return true }

func (w *Relation) ClientConfig() map[string]any {
	config := w.Base.ClientConfig()
	config["ctype"] = w.field.Config.CType
	config["multiple"] = w.field.Config.Multiple
	config["autocreate"] = w.field.Config.Autocreate
	return config
}

// Matrix edits zone -> ordered document references.
type Matrix struct{ Base }

func NewMatrix(field schema.FieldDefinition) (Widget, error) {
	return &Matrix{Base: NewBase(ClassMatrix, field)}, nil
}

func (w *Matrix) ProcessData(raw any) any {
	if encoded, ok := raw.(string); ok {
		raw = document.DecodeJSON(encoded)
	}
	zones, _ := document.AsMap(raw)
	out := make(map[string]any, len(zones)+len(w.field.Config.Zones))
	for _, zone := range w.field.Config.Zones {
		out[zone] = []any{}
	}
	for zone, items := range zones {
		out[zone] = summaryItems(items, w.field.Config.CType)
	}
	return out
}

func (w *Matrix) RenderWidget(context.Context) (string, error) {
	zones, _ := document.AsMap(w.ProcessData(w.value))
	names := make([]string, 0, len(zones))
	seen := make(map[string]struct{}, len(zones))
	for _, zone := range w.field.Config.Zones {
		if _, ok := seen[zone]; !ok {
			seen[zone] = struct{}{}
			names = append(names, zone)
		}
	}
	var extra []string
	for zone := range zones {
		if _, ok := seen[zone]; !ok {
			extra = append(extra, zone)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	rendered := make([]map[string]any, 0, len(names))
	for _, zone := range names {
		items, _ := document.AsSlice(zones[zone])
		refs := make([]any, 0, len(items))
		view := make([]map[string]any, 0, len(items))
		for _, item := range items {
			m, _ := item.(map[string]any)
			refs = append(refs, map[string]any{domain.KeyUUID: m[domain.KeyUUID], domain.KeyCType: m[domain.KeyCType]})
			view = append(view, map[string]any{"uuid": m[domain.KeyUUID], "ctype": m[domain.KeyCType], "title": itemTitle(m)})
		}
		encoded, _ := json.Marshal(refs)
		rendered = append(rendered, map[string]any{"name": zone, "items": view, "json": string(encoded)})
	}
	return w.execute(matrixTemplate, pongo2.Context{"zones": rendered})
}

func (w *Matrix) RegisterAssets(bundle *AssetBundle) {
	bundle.AddStylesheet(widgetsStylesheet)
	bundle.AddScript(Script{Src: assetPrefix + "matrix.js", Defer: true})
}

func (w *Matrix) InitializationScript() string {
	return initCall("matrix", w.ElementID(), w.ClientConfig())
}

func (w *Matrix) SupportsAjaxRendering() bool { return true }

func (w *Matrix) ClientConfig() map[string]any {
	config := w.Base.ClientConfig()
	config["zones"] = append([]string{}, w.field.Config.Zones...)
	config["ctype"] = w.field.Config.CType
	return config
}

// Container is implemented by widgets that wrap nested widget markup.
type Container interface {
	SetChildren(markup string)
}

// JSONStructure edits a recursively nested JSON value. Nested widgets are
// rendered by the structure renderer and injected through SetChildren.
type JSONStructure struct {
	Base
	children string
}

func NewJSONStructure(field schema.FieldDefinition) (Widget, error) {
	return &JSONStructure{Base: NewBase(ClassJSONStructure, field)}, nil
}

func (w *JSONStructure) ProcessData(raw any) any {
	if encoded, ok := raw.(string); ok {
		return document.DecodeJSON(encoded)
	}
	return document.CloneValue(raw)
}

func (w *JSONStructure) SetChildren(markup string) { w.children = markup }

func (w *JSONStructure) RenderWidget(context.Context) (string, error) {
	encoded := ""
	if w.value != nil {
		raw, err := json.Marshal(w.value)
		if err == nil {
			encoded = string(raw)
		}
	}
	return w.execute(structureTemplate, pongo2.Context{
		"encoded":  encoded,
		"children": w.children,
	})
}

func (w *JSONStructure) RegisterAssets(bundle *AssetBundle) {
	bundle.AddStylesheet(widgetsStylesheet)
	bundle.AddScript(Script{Src: assetPrefix + "structure.js", Defer: true})
}

func (w *JSONStructure) InitializationScript() string {
	return initCall("structure", w.ElementID(), w.ClientConfig())
}

func (w *JSONStructure) ClientConfig() map[string]any {
	config := w.Base.ClientConfig()
	if len(w.field.Config.Schema) > 0 {
		config["schema"] = document.CloneMap(w.field.Config.Schema)
	}
	return config
}

// Connector edits a "name[:action]" connector reference. Config.Options
// lists the selectable connectors.
type Connector struct{ Base }

func NewConnector(field schema.FieldDefinition) (Widget, error) {
	return &Connector{Base: NewBase(ClassConnector, field)}, nil
}

func (w *Connector) RenderWidget(context.Context) (string, error) {
	return w.execute(connectorTemplate, pongo2.Context{"options": optionList(w.field.Config.Options)})
}

// Readonly displays computed values such as list fields.
type Readonly struct{ Base }

func NewReadonly(field schema.FieldDefinition) (Widget, error) {
	return &Readonly{Base: NewBase(ClassReadonly, field)}, nil
}

func (w *Readonly) ProcessData(raw any) any {
	if items, ok := document.AsSlice(raw); ok {
		out := make([]any, 0, len(items))
		for _, item := range items {
			if m, ok := document.AsMap(item); ok {
				out = append(out, itemTitle(m))
				continue
			}
			out = append(out, document.String(item))
		}
		return out
	}
	if m, ok := document.AsMap(raw); ok {
		return []any{itemTitle(m)}
	}
	if document.IsEmpty(raw) {
		return []any{}
	}
	return []any{document.String(raw)}
}

func (w *Readonly) RenderWidget(context.Context) (string, error) {
	items, _ := document.AsSlice(w.ProcessData(w.value))
	return w.execute(readonlyTemplate, pongo2.Context{"items": items})
}

// Hidden carries a value without an editable control.
type Hidden struct{ Base }

func NewHidden(field schema.FieldDefinition) (Widget, error) {
	return &Hidden{Base: NewBase(ClassHidden, field)}, nil
}

func (w *Hidden) RenderWidget(context.Context) (string, error) {
	return w.execute(hiddenTemplate, nil)
}

func summaryItems(raw any, defaultCType string) []any {
	if encoded, ok := raw.(string); ok && document.LooksLikeJSON(encoded) {
		raw = document.DecodeJSON(encoded)
	}
	var items []any
	if list, ok := document.AsSlice(raw); ok {
		items = list
	} else if raw != nil {
		items = []any{raw}
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		ref, ok := document.ParseReference(item, defaultCType)
		if !ok {
			continue
		}
		summary := map[string]any{domain.KeyUUID: ref.UUID, domain.KeyCType: ref.CType}
		if m, ok := document.AsMap(item); ok {
			if title := document.String(m[domain.KeyTitle]); title != "" {
				summary[domain.KeyTitle] = title
			}
		}
		out = append(out, summary)
	}
	return out
}

func itemTitle(m map[string]any) string {
	if title := document.String(m[domain.KeyTitle]); title != "" {
		return title
	}
	return document.String(m[domain.KeyUUID])
}

func optionList(options map[string]string) []map[string]any {
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		out = append(out, map[string]any{"key": key, "label": options[key]})
	}
	return out
}

func extraString(field schema.FieldDefinition, key string) string {
	if field.Config.Extra == nil {
		return ""
	}
	return strings.TrimSpace(document.String(field.Config.Extra[key]))
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case nil:
		return false
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "on", "yes":
			return true
		}
		return false
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}
