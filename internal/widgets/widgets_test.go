package widgets

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/google/go-cmp/cmp"
)

func TestRegistryRegisterFactoryCanonicalKey(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.RegisterFactory(" Newsletter ", Registration{
		Definition: Definition{Name: "Newsletter"},
		Factory:    NewText,
	})

	defs := registry.List()
	if len(defs) != 1 || defs[0].Name != "Newsletter" {
		t.Fatalf("unexpected definitions %#v", defs)
	}
	widget, err := registry.Build(schema.FieldDefinition{Key: "signup", Type: "text", Widget: " newsletter "})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if widget.Class() != ClassText {
		t.Fatalf("expected factory widget, got %s", widget.Class())
	}
}

func TestRegistryIgnoresEmptyRegistration(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.RegisterFactory("ignored", Registration{})
	registry.RegisterFactory("  ", Registration{Factory: NewText})

	if len(registry.List()) != 0 {
		t.Fatalf("expected registry to ignore invalid registrations")
	}
}

func TestRegistryResolvesTypesAndAliases(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry()
	cases := []struct {
		field schema.FieldDefinition
		want  string
	}{
		{field: schema.FieldDefinition{Key: "title", Type: "text"}, want: ClassText},
		{field: schema.FieldDefinition{Key: "logo", Type: "include"}, want: ClassRelation},
		{field: schema.FieldDefinition{Key: "events", Type: "list"}, want: ClassReadonly},
		{field: schema.FieldDefinition{Key: "body", Type: "text", Widget: "Textarea"}, want: ClassTextarea},
	}
	for _, tc := range cases {
		got, ok := registry.Resolve(tc.field)
		if !ok || got != tc.want {
			t.Fatalf("field %s: expected %s, got %s (%v)", tc.field.Key, tc.want, got, ok)
		}
	}

	_, err := registry.Build(schema.FieldDefinition{Key: "x", Type: "text", Widget: "wysiwyg"})
	if !errors.Is(err, ErrUnknownWidget) {
		t.Fatalf("expected ErrUnknownWidget, got %v", err)
	}
	if registry.Has(schema.FieldDefinition{Key: "x", Type: "geo"}) {
		t.Fatalf("expected unknown type to be unresolved")
	}
}

func TestTextWidgetEscapesValue(t *testing.T) {
	t.Parallel()

	widget, _ := NewText(schema.FieldDefinition{Key: "systitle", Type: "text", Label: "Title", Rules: []schema.Rule{{Name: "required"}}})
	widget.SetValue(widget.ProcessData(`<b>"Jane"</b>`))

	markup, err := widget.RenderWidget(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(markup, "<b>") || !strings.Contains(markup, "&lt;b&gt;") {
		t.Fatalf("expected escaped value, got %s", markup)
	}
	if !strings.Contains(markup, `id="fk-systitle"`) || !strings.Contains(markup, " required") {
		t.Fatalf("unexpected markup %s", markup)
	}
	if widget.InitializationScript() != "" || widget.SupportsAjaxRendering() {
		t.Fatalf("text widget should need no script and render inline")
	}
}

func TestCheckboxProcessData(t *testing.T) {
	t.Parallel()

	widget, _ := NewCheckbox(schema.FieldDefinition{Key: "featured", Type: "checkbox"})
	for raw, want := range map[any]bool{"1": true, "on": true, true: true, 0.0: false, "": false, "no": false} {
		if got := widget.ProcessData(raw); got != want {
			t.Fatalf("raw %#v: expected %v, got %v", raw, want, got)
		}
	}
}

func TestSelectMarksCurrentOption(t *testing.T) {
	t.Parallel()

	widget, _ := NewSelect(schema.FieldDefinition{Key: "color", Type: "select", Config: schema.FieldConfig{Options: map[string]string{"r": "Red", "g": "Green"}}})
	widget.SetValue(widget.ProcessData("r"))

	markup, err := widget.RenderWidget(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(markup, `<option value="r" selected>Red</option>`) {
		t.Fatalf("expected selected option, got %s", markup)
	}
	if strings.Index(markup, `value="g"`) > strings.Index(markup, `value="r"`) {
		t.Fatalf("expected options sorted by key, got %s", markup)
	}
}

func TestRelationWidgetNormalizesValues(t *testing.T) {
	t.Parallel()

	field := schema.FieldDefinition{Key: "category", Type: "relation", Config: schema.FieldConfig{CType: "category", Autocreate: true}}
	widget, _ := NewRelation(field)
	got := widget.ProcessData([]any{"C1", map[string]any{"uuid": "C2", "ctype": "category", "systitle": "News"}})
	want := []any{
		map[string]any{"uuid": "C1", "ctype": "category"},
		map[string]any{"uuid": "C2", "ctype": "category", "systitle": "News"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("relation value mismatch (-want +got):\n%s", diff)
	}

	widget.SetValue(got)
	widget.SetElementID("rel-1")
	markup, err := widget.RenderWidget(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(markup, `<option value="C2" selected>News</option>`) || !strings.Contains(markup, `data-autocreate="true"`) {
		t.Fatalf("unexpected relation markup %s", markup)
	}
	if !widget.SupportsAjaxRendering() {
		t.Fatalf("relation widget should support deferred rendering")
	}
	if script := widget.InitializationScript(); !strings.Contains(script, `document.getElementById("rel-1")`) {
		t.Fatalf("expected init script bound to element, got %s", script)
	}
	if widget.ClientConfig()["ctype"] != "category" {
		t.Fatalf("expected client config to carry the target type")
	}
}

func TestMatrixWidgetRendersConfiguredZonesFirst(t *testing.T) {
	t.Parallel()

	widget, _ := NewMatrix(schema.FieldDefinition{Key: "blocks", Type: "matrix", Config: schema.FieldConfig{Zones: []string{"hero", "footer"}}})
	widget.SetValue(widget.ProcessData(`{"aside":[],"hero":[{"ctype":"teaser","uuid":"T1","systitle":"Welcome"}]}`))

	markup, err := widget.RenderWidget(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	hero := strings.Index(markup, `data-zone="hero"`)
	footer := strings.Index(markup, `data-zone="footer"`)
	aside := strings.Index(markup, `data-zone="aside"`)
	if hero < 0 || footer < hero || aside < footer {
		t.Fatalf("unexpected zone order in %s", markup)
	}
	if !strings.Contains(markup, `data-uuid="T1"`) || !strings.Contains(markup, ">Welcome<") {
		t.Fatalf("expected zone item, got %s", markup)
	}
}

func TestJSONStructureWidgetWrapsChildren(t *testing.T) {
	t.Parallel()

	widget, _ := NewJSONStructure(schema.FieldDefinition{Key: "meta", Type: "jsonstructure"})
	widget.SetValue(widget.ProcessData(`{"alt":"Logo"}`))
	widget.(Container).SetChildren(`<div data-unique-id="x"></div>`)

	markup, err := widget.RenderWidget(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(markup, `<div data-unique-id="x"></div>`) {
		t.Fatalf("expected nested markup to be kept verbatim, got %s", markup)
	}
	if !strings.Contains(markup, "&quot;alt&quot;") {
		t.Fatalf("expected encoded value, got %s", markup)
	}
}

func TestReadonlyWidgetShowsTitles(t *testing.T) {
	t.Parallel()

	widget, _ := NewReadonly(schema.FieldDefinition{Key: "events", Type: "list"})
	widget.SetValue([]any{map[string]any{"uuid": "E1", "systitle": "Launch"}, map[string]any{"uuid": "E2"}})
	markup, err := widget.RenderWidget(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(markup, ">Launch, E2</output>") {
		t.Fatalf("unexpected readonly markup %s", markup)
	}
}

func TestAssetBundleDeduplicates(t *testing.T) {
	t.Parallel()

	bundle := NewAssetBundle()
	for _, field := range []schema.FieldDefinition{
		{Key: "a", Type: "relation", Config: schema.FieldConfig{CType: "x"}},
		{Key: "b", Type: "relation", Config: schema.FieldConfig{CType: "y"}},
	} {
		widget, _ := NewRelation(field)
		widget.RegisterAssets(bundle)
	}
	date, _ := NewDate(schema.FieldDefinition{Key: "d", Type: "date"})
	date.RegisterAssets(bundle)

	if diff := cmp.Diff([]string{widgetsStylesheet}, bundle.Stylesheets()); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
	scripts := bundle.Scripts()
	if len(scripts) != 2 || scripts[0].Src != assetPrefix+"relation.js" || scripts[1].Src != assetPrefix+"date.js" {
		t.Fatalf("unexpected scripts %#v", scripts)
	}
}
