package schema

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func articleSchema() ContentTypeSchema {
	return ContentTypeSchema{
		Name:  "article",
		Label: "Article",
		Fields: []FieldDefinition{
			{Key: "systitle", Type: "text", Rules: []Rule{{Name: "required"}, {Name: "max_length", Value: 12}}},
			{Key: "teaser", Type: "textarea", Translatable: true, Default: "tbd"},
			{Key: "kind", Type: "select", Transform: "select", Config: FieldConfig{Options: map[string]string{"1": "News", "2": "Feature"}}, Rules: []Rule{{Name: "in"}}},
			{Key: "category", Type: "relation", Config: FieldConfig{CType: "category", Autocreate: true}},
		},
	}
}

func TestContentTypeSchemaValidateAcceptsWellFormedSchema(t *testing.T) {
	if err := articleSchema().Validate(); err != nil {
		t.Fatalf("expected valid schema, got %v", err)
	}
}

func TestContentTypeSchemaValidateRejectsDuplicates(t *testing.T) {
	s := articleSchema()
	s.Fields = append(s.Fields, FieldDefinition{Key: "teaser", Type: "text"})
	if err := s.Validate(); !errors.Is(err, ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
}

func TestContentTypeSchemaValidateRejectsRelationWithoutTarget(t *testing.T) {
	s := ContentTypeSchema{Name: "page", Fields: []FieldDefinition{{Key: "hero", Type: "relation"}}}
	if err := s.Validate(); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestContentTypeSchemaValidateRejectsUnknownRule(t *testing.T) {
	s := ContentTypeSchema{Name: "page", Fields: []FieldDefinition{{Key: "title", Type: "text", Rules: []Rule{{Name: "shiny"}}}}}
	if err := s.Validate(); !errors.Is(err, ErrUnknownRule) {
		t.Fatalf("expected ErrUnknownRule, got %v", err)
	}
}

func TestTranslatableFieldsKeepOrderAndDefaults(t *testing.T) {
	got := articleSchema().TranslatableFields()
	if len(got) != 1 || got[0].Key != "teaser" || got[0].Default != "tbd" {
		t.Fatalf("unexpected translatable fields %#v", got)
	}
}

func TestFieldDefinitionWidgetNameFallsBackToType(t *testing.T) {
	field := FieldDefinition{Key: "body", Type: " TextArea "}
	if field.WidgetName() != "textarea" {
		t.Fatalf("expected textarea, got %q", field.WidgetName())
	}
	field.Widget = "Markdown"
	if field.WidgetName() != "markdown" {
		t.Fatalf("expected explicit widget, got %q", field.WidgetName())
	}
}

func TestCompiledRulesValidateValues(t *testing.T) {
	s := articleSchema()
	title, _ := s.Field("systitle")
	rules, err := CompileRules(title)
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	if err := ValidateValue(rules, "Short"); err != nil {
		t.Fatalf("expected valid title, got %v", err)
	}
	if err := ValidateValue(rules, ""); err == nil {
		t.Fatalf("expected required error for empty title")
	}
	if err := ValidateValue(rules, "Far too long for the rule"); err == nil {
		t.Fatalf("expected length error")
	}

	kind, _ := s.Field("kind")
	rules, err = CompileRules(kind)
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	if err := ValidateValue(rules, float64(2)); err != nil {
		t.Fatalf("expected numeric option key to validate, got %v", err)
	}
	if err := ValidateValue(rules, "9"); err == nil {
		t.Fatalf("expected in error for unknown option")
	}
}

func TestCompiledRulesUseCustomMessage(t *testing.T) {
	field := FieldDefinition{Key: "code", Type: "text", Rules: []Rule{{Name: "pattern", Value: "^[A-Z]+$", Message: "upper case only"}}}
	rules, err := CompileRules(field)
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}
	err = ValidateValue(rules, "abc")
	if err == nil || err.Error() != "upper case only" {
		t.Fatalf("expected custom message, got %v", err)
	}
}

func TestMemoryLoaderReturnsCopies(t *testing.T) {
	loader, err := NewMemoryLoader(articleSchema())
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	got, err := loader.LoadFieldSchema(context.Background(), "Article")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got.Fields[0].Key = "mutated"
	again, _ := loader.LoadFieldSchema(context.Background(), "article")
	if again.Fields[0].Key != "systitle" {
		t.Fatalf("loader leaked internal state")
	}
	if _, err := loader.LoadFieldSchema(context.Background(), "missing"); !errors.Is(err, ErrSchemaNotFound) {
		t.Fatalf("expected ErrSchemaNotFound, got %v", err)
	}
}

func TestLoadFilesReadsYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	yamlDoc := `
types:
  - name: category
    fields:
      - key: systitle
        type: text
        rules:
          - name: length
            value: [1, 40]
  - name: page
    fields:
      - key: blocks
        type: matrix
        config:
          zones: [hero, footer]
      - key: intro
        type: textarea
        translatable: true
        default: ""
`
	jsonDoc := `{"name":"asset","fields":[{"key":"systitle","type":"text"},{"key":"meta","type":"jsonstructure","config":{"schema":{"type":"object","properties":{"alt":{"type":"string"}}}}}]}`
	if err := os.WriteFile(filepath.Join(dir, "types.yaml"), []byte(yamlDoc), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "asset.json"), []byte(jsonDoc), 0o600); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatalf("write txt: %v", err)
	}

	loader, err := LoadFiles(dir)
	if err != nil {
		t.Fatalf("load files: %v", err)
	}
	if diff := cmp.Diff([]string{"asset", "category", "page"}, loader.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	page, err := loader.LoadFieldSchema(context.Background(), "page")
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	blocks, _ := page.Field("blocks")
	if diff := cmp.Diff([]string{"hero", "footer"}, blocks.Config.Zones); diff != "" {
		t.Fatalf("zones mismatch (-want +got):\n%s", diff)
	}
	asset, _ := loader.LoadFieldSchema(context.Background(), "asset")
	meta, _ := asset.Field("meta")
	props, ok := meta.Config.Schema["properties"].(map[string]any)
	if !ok || props["alt"] == nil {
		t.Fatalf("expected nested schema maps, got %#v", meta.Config.Schema)
	}
}

func TestLoadFilesRejectsUnsupportedStructureKeyword(t *testing.T) {
	dir := t.TempDir()
	doc := `{"name":"asset","fields":[{"key":"meta","type":"jsonstructure","config":{"schema":{"type":"object","patternProperties":{}}}}]}`
	if err := os.WriteFile(filepath.Join(dir, "asset.json"), []byte(doc), 0o600); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if _, err := LoadFiles(dir); !errors.Is(err, ErrUnsupportedKeyword) {
		t.Fatalf("expected ErrUnsupportedKeyword, got %v", err)
	}
}
