package documentscmd

import (
	"context"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fieldkit/internal/commands"
	"github.com/goliatone/go-fieldkit/internal/pipeline"
	"github.com/goliatone/go-fieldkit/internal/render"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/internal/storage"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

func newOrchestrator(t *testing.T, store interfaces.DocumentStore) *pipeline.Orchestrator {
	t.Helper()
	loader, err := schema.NewMemoryLoader(
		schema.ContentTypeSchema{
			Name: "post",
			Fields: []schema.FieldDefinition{
				{Key: "systitle", Type: "text", Rules: []schema.Rule{{Name: schema.RuleRequired}}},
				{Key: "state", Type: "text", Transform: "state"},
				{Key: "category", Type: "relation", Config: schema.FieldConfig{CType: "category", Autocreate: true}},
			},
		},
		schema.ContentTypeSchema{
			Name:   "broken",
			Fields: []schema.FieldDefinition{{Key: "a", Type: "text", Transform: "rot13"}},
		},
	)
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	return pipeline.NewOrchestrator(loader, store)
}

func TestPresentDocumentHandlerWritesResult(t *testing.T) {
	store := storage.NewMemoryStore()
	if err := store.Seed("post", map[string]any{"uuid": "P1", "systitle": "Hello", "state": 2}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	handler := NewPresentDocumentHandler(newOrchestrator(t, store), commands.CommandLogger(nil, "documents"))

	var result pipeline.Result
	if err := handler.Execute(context.Background(), PresentDocumentCommand{CType: "post", UUID: "P1", Mode: "view", Result: &result}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Document["state"] != "Online" || result.Document["systitle"] != "Hello" {
		t.Fatalf("unexpected presented document: %#v", result.Document)
	}
}

func TestPresentDocumentCommandValidation(t *testing.T) {
	handler := NewPresentDocumentHandler(newOrchestrator(t, storage.NewMemoryStore()), nil)

	cases := []PresentDocumentCommand{
		{UUID: "P1"},
		{CType: "post"},
		{CType: "post", UUID: "P1", Mode: "preview"},
	}
	for _, msg := range cases {
		err := handler.Execute(context.Background(), msg)
		if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("expected validation error for %#v, got %v", msg, err)
		}
	}
}

func TestSaveDocumentHandlerPersists(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := NewSaveDocumentHandler(newOrchestrator(t, store), nil)

	var result pipeline.Result
	msg := SaveDocumentCommand{CType: "post", Document: map[string]any{"systitle": "Hello", "category": "News"}, Result: &result}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Document.UUID() == "" || store.Count("post") != 1 || store.Count("category") != 1 {
		t.Fatalf("expected persisted post and category, got %#v", result.Document)
	}
}

func TestStoreDocumentHandlerTagsValidationFailures(t *testing.T) {
	handler := NewStoreDocumentHandler(newOrchestrator(t, storage.NewMemoryStore()), nil)

	err := handler.Execute(context.Background(), StoreDocumentCommand{CType: "post", Document: map[string]any{"systitle": ""}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestRenderFormHandlerTagsConfigurationErrors(t *testing.T) {
	o := newOrchestrator(t, storage.NewMemoryStore())
	handler := NewRenderFormHandler(o, nil)

	err := handler.Execute(context.Background(), RenderFormCommand{CType: "broken", Document: map[string]any{}})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}

	var out render.Output
	if err := handler.Execute(context.Background(), RenderFormCommand{CType: "post", Document: map[string]any{"systitle": "Hi"}, Output: &out}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.Markup, `data-field="systitle"`) {
		t.Fatalf("unexpected markup: %s", out.Markup)
	}
}
