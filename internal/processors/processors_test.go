package processors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-fieldkit/internal/connectors"
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/internal/storage"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
	"github.com/google/go-cmp/cmp"
)

type titleFragments struct{}

func (titleFragments) RenderFragment(_ context.Context, ctype string, doc map[string]any) (string, error) {
	return fmt.Sprintf("<article class=%q>%s</article>", ctype, document.String(doc["systitle"])), nil
}

func newEnv(t *testing.T, store interfaces.DocumentStore, mode domain.Mode) *Env {
	t.Helper()
	registry := connectors.NewRegistry()
	registry.RegisterConnector("newsletter", connectors.Func(func(_ context.Context, inv connectors.Invocation) (string, error) {
		if inv.HasAction {
			return "<form data-list=\"" + inv.Action + "\"></form>", nil
		}
		return "<form></form>", nil
	}))
	return &Env{
		Context:    domain.RenderContext{Language: "en", Languages: []string{"en"}, Mode: mode, CType: "page"},
		Resolver:   NewResolver(store, 4),
		Settings:   Settings{UnlimitedLimit: 99999, Autocreate: true, Backrefs: true},
		Connectors: registry,
		Fragments:  titleFragments{},
	}
}

func seeded(t *testing.T, ctype string, docs ...map[string]any) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore()
	if err := store.Seed(ctype, docs...); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func TestIncludeResolvesSingleReference(t *testing.T) {
	store := seeded(t, "asset", map[string]any{"uuid": "U1", "systitle": "Logo", "path": "/logo.png"})
	env := newEnv(t, store, domain.ModeView)
	field := schema.FieldDefinition{Key: "logo", Type: TypeInclude, Config: schema.FieldConfig{CType: "asset"}}

	patch, err := Include{}.ProcessData(context.Background(), env, field, map[string]any{"uuid": "U1"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	got, ok := patch.Set["logo"].(map[string]any)
	if !ok || got["systitle"] != "Logo" || got["uuid"] != "U1" {
		t.Fatalf("expected resolved document, got %#v", patch.Set["logo"])
	}

	patch, err = Include{}.ProcessData(context.Background(), env, field, map[string]any{"uuid": "missing"})
	if err != nil {
		t.Fatalf("missing target must not fail: %v", err)
	}
	if value, ok := patch.Set["logo"]; !ok || value != nil {
		t.Fatalf("expected empty value for missing target, got %#v", value)
	}
}

func TestIncludeMultipleWithColumnsSkipsMissing(t *testing.T) {
	store := seeded(t, "asset",
		map[string]any{"uuid": "U1", "systitle": "Logo", "path": "/logo.png"},
		map[string]any{"uuid": "U2", "systitle": "Banner", "path": "/banner.png"},
	)
	env := newEnv(t, store, domain.ModeEdit)
	field := schema.FieldDefinition{Key: "assets", Type: TypeInclude, Config: schema.FieldConfig{CType: "asset", Multiple: true, Columns: []string{"path"}}}

	patch, err := Include{}.ProcessData(context.Background(), env, field, `["U2","gone","U1"]`)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := []any{
		map[string]any{"uuid": "U2", "ctype": "asset", "path": "/banner.png"},
		map[string]any{"uuid": "U1", "ctype": "asset", "path": "/logo.png"},
	}
	if diff := cmp.Diff(want, patch.Set["assets"]); diff != "" {
		t.Fatalf("include mismatch (-want +got):\n%s", diff)
	}

	stored, err := Include{}.ProcessDataPreSave(context.Background(), env, field, patch.Set["assets"])
	if err != nil {
		t.Fatalf("pre save: %v", err)
	}
	if diff := cmp.Diff([]any{"U2", "U1"}, stored.Set["assets"]); diff != "" {
		t.Fatalf("stored references mismatch (-want +got):\n%s", diff)
	}
}

func TestIncludeProcessDataIsIdempotent(t *testing.T) {
	store := seeded(t, "asset", map[string]any{"uuid": "U1", "systitle": "Logo"})
	field := schema.FieldDefinition{Key: "logo", Type: TypeInclude, Config: schema.FieldConfig{CType: "asset"}}

	first, _ := Include{}.ProcessData(context.Background(), newEnv(t, store, domain.ModeEdit), field, "U1")
	second, _ := Include{}.ProcessData(context.Background(), newEnv(t, store, domain.ModeEdit), field, "U1")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second pass differs (-first +second):\n%s", diff)
	}
}

func TestIncludeProcessJSONLegacyLayout(t *testing.T) {
	store := seeded(t, "asset", map[string]any{"uuid": "U1", "systitle": "Logo"})
	env := newEnv(t, store, domain.ModeEdit)

	patch, err := Include{}.ProcessJSON(context.Background(), env, "asset", "logo", `{"uuid":"U1"}`)
	if err != nil {
		t.Fatalf("process json: %v", err)
	}
	nested, ok := patch.Set["logo"].(map[string]any)["asset"].(map[string]any)
	if !ok || nested["systitle"] != "Logo" {
		t.Fatalf("expected document keyed by ctype, got %#v", patch.Set["logo"])
	}

	patch, err = Include{}.ProcessJSON(context.Background(), env, "asset", "logo", `{"uuid":`)
	if err != nil || patch.Set["logo"] != nil {
		t.Fatalf("expected malformed json to present as nil, got %#v (%v)", patch.Set["logo"], err)
	}
}

func TestIncludeBackrefsOnPostSave(t *testing.T) {
	store := seeded(t, "asset", map[string]any{"uuid": "U1", "systitle": "Logo"})
	env := newEnv(t, store, domain.ModeEdit)
	field := schema.FieldDefinition{Key: "logo", Type: TypeInclude, Config: schema.FieldConfig{CType: "asset", Backref: "used_by"}}
	parent := document.Document{"uuid": "P1", "ctype": "page", "logo": "U1"}

	for i := 0; i < 2; i++ {
		if _, err := (Include{}).ProcessDataPostSave(context.Background(), env, field, "U1", parent); err != nil {
			t.Fatalf("post save: %v", err)
		}
	}
	asset, _ := store.Find(context.Background(), "asset", "U1")
	if diff := cmp.Diff([]any{"P1"}, asset["used_by"]); diff != "" {
		t.Fatalf("backref mismatch (-want +got):\n%s", diff)
	}
}

func TestEffectiveLimit(t *testing.T) {
	cases := []struct {
		limit any
		want  int
	}{
		{limit: false, want: 99999},
		{limit: "false", want: 99999},
		{limit: nil, want: 99999},
		{limit: 0, want: 99999},
		{limit: -3.0, want: 99999},
		{limit: 5, want: 5},
		{limit: 5.0, want: 5},
		{limit: "12", want: 12},
		{limit: 250000, want: 99999},
	}
	for _, tc := range cases {
		if got := EffectiveLimit(tc.limit, 99999); got != tc.want {
			t.Fatalf("limit %#v: expected %d, got %d", tc.limit, tc.want, got)
		}
	}
}

func TestListQueriesWithRequestFiltersAndSentinel(t *testing.T) {
	store := seeded(t, "event",
		map[string]any{"uuid": "E1", "systitle": "B", "city": "berlin", "state": 2},
		map[string]any{"uuid": "E2", "systitle": "A", "city": "berlin", "state": 2},
		map[string]any{"uuid": "E3", "systitle": "C", "city": "paris", "state": 2},
		map[string]any{"uuid": "E4", "systitle": "D", "city": "berlin", "state": 0},
	)
	env := newEnv(t, store, domain.ModeEdit)
	env.Context.RequestFilters = map[string]any{"city": "berlin"}
	field := schema.FieldDefinition{Key: "events", Type: TypeList, Config: schema.FieldConfig{
		CType:   "event",
		Filter:  map[string]any{"state": 2, "city": "$request.city"},
		Sort:    []string{"systitle"},
		Limit:   false,
		Columns: []string{"systitle"},
	}}

	query := BuildQuery(env, field, nil)
	if query.Limit != 99999 {
		t.Fatalf("expected sentinel limit, got %d", query.Limit)
	}
	if query.Filter["city"] != "berlin" {
		t.Fatalf("expected request filter substitution, got %#v", query.Filter)
	}

	patch, err := List{}.ProcessData(context.Background(), env, field, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := []any{
		map[string]any{"uuid": "E2", "ctype": "event", "systitle": "A"},
		map[string]any{"uuid": "E1", "ctype": "event", "systitle": "B"},
	}
	if diff := cmp.Diff(want, patch.Set["events"]); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	env.Context.RequestFilters = nil
	query = BuildQuery(env, field, nil)
	if _, ok := query.Filter["city"]; ok {
		t.Fatalf("expected unresolved request filter to be dropped, got %#v", query.Filter)
	}
}

func TestResolverQuerySeesDocumentsWrittenInPass(t *testing.T) {
	store := seeded(t, "category", map[string]any{"uuid": "C1", "systitle": "Old", "state": 2})
	resolver := NewResolver(store, 4)
	ctx := context.Background()

	rows, _ := resolver.Query(ctx, "category", interfaces.Query{Filter: map[string]any{"state": 2}})
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	id, err := resolver.Save(ctx, "category", document.Document{"systitle": "New", "state": 2})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	found, _ := resolver.Find(ctx, "category", id)
	if found == nil || found.Title() != "New" {
		t.Fatalf("expected created document to be readable, got %#v", found)
	}
	rows, _ = resolver.Query(ctx, "category", interfaces.Query{Filter: map[string]any{"state": 2}, Sort: []interfaces.SortField{{Key: "systitle"}}, Limit: 5})
	if len(rows) != 2 || rows[0].Title() != "New" {
		t.Fatalf("expected created document in query, got %#v", rows)
	}
	if created := resolver.Created(); len(created) != 1 || created[0].UUID != id {
		t.Fatalf("unexpected created list %#v", created)
	}
}

func TestResolverEnterGuardsCyclesAndDepth(t *testing.T) {
	resolver := NewResolver(storage.NewMemoryStore(), 2)
	leaveA, ok := resolver.Enter("page", "A")
	if !ok {
		t.Fatalf("expected first enter to succeed")
	}
	if _, ok := resolver.Enter("page", "A"); ok {
		t.Fatalf("expected cycle to be rejected")
	}
	leaveB, ok := resolver.Enter("page", "B")
	if !ok {
		t.Fatalf("expected second level to succeed")
	}
	if _, ok := resolver.Enter("page", "C"); ok {
		t.Fatalf("expected depth limit to be enforced")
	}
	leaveB()
	leaveB()
	leaveA()
	if _, ok := resolver.Enter("page", "A"); !ok {
		t.Fatalf("expected enter after leave to succeed")
	}
}

func TestRelationSummaries(t *testing.T) {
	store := seeded(t, "category", map[string]any{"uuid": "C1", "systitle": "News", "body": "long"})
	env := newEnv(t, store, domain.ModeEdit)
	field := schema.FieldDefinition{Key: "category", Type: TypeRelation, Config: schema.FieldConfig{CType: "category"}}

	patch, err := Relation{}.ProcessData(context.Background(), env, field, "C1")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := map[string]any{"uuid": "C1", "ctype": "category", "systitle": "News"}
	if diff := cmp.Diff(want, patch.Set["category"]); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestRelationAutocreateCreatesPublishedDocument(t *testing.T) {
	store := storage.NewMemoryStore()
	env := newEnv(t, store, domain.ModeEdit)
	field := schema.FieldDefinition{Key: "category", Type: TypeRelation, Config: schema.FieldConfig{CType: "category", Autocreate: true}}

	patch, err := Relation{}.ProcessDataPreSave(context.Background(), env, field, "New Category")
	if err != nil {
		t.Fatalf("pre save: %v", err)
	}
	id, _ := patch.Set["category"].(string)
	if !document.IsUUIDv4(id) {
		t.Fatalf("expected generated uuid, got %#v", patch.Set["category"])
	}
	created, _ := store.Find(context.Background(), "category", id)
	if created == nil {
		t.Fatalf("expected created category")
	}
	if created["systitle"] != "New Category" || created["state"] != 2 || created["slug"] != "new-category" {
		t.Fatalf("unexpected created document %#v", created)
	}
}

func TestRelationAutocreateIsReportedAsCreated(t *testing.T) {
	env := newEnv(t, storage.NewMemoryStore(), domain.ModeEdit)
	field := schema.FieldDefinition{Key: "category", Type: TypeRelation, Config: schema.FieldConfig{CType: "category", Autocreate: true}}

	patch, err := Relation{}.ProcessDataPreSave(context.Background(), env, field, "New Category")
	if err != nil {
		t.Fatalf("pre save: %v", err)
	}
	id, _ := patch.Set["category"].(string)
	want := []document.Reference{{UUID: id, CType: "category"}}
	if diff := cmp.Diff(want, env.Resolver.Created()); diff != "" {
		t.Fatalf("unexpected created list (-want +got):\n%s", diff)
	}
}

func TestRelationPreSaveTreatsTruncatedJSONAsEmpty(t *testing.T) {
	store := storage.NewMemoryStore()
	env := newEnv(t, store, domain.ModeEdit)
	field := schema.FieldDefinition{Key: "category", Type: TypeRelation, Config: schema.FieldConfig{CType: "category", Autocreate: true}}

	patch, err := Relation{}.ProcessDataPreSave(context.Background(), env, field, `{"uuid":`)
	if err != nil {
		t.Fatalf("pre save: %v", err)
	}
	if patch.Set["category"] != "" {
		t.Fatalf("expected empty relation, got %#v", patch.Set["category"])
	}
	if store.Count("category") != 0 || len(env.Resolver.Created()) != 0 {
		t.Fatalf("truncated json must not autocreate a document")
	}
}

func TestResolverSaveOfExistingDocumentIsNotCreated(t *testing.T) {
	store := seeded(t, "category", map[string]any{"uuid": "C1", "systitle": "Old"})
	resolver := NewResolver(store, 4)
	ctx := context.Background()

	if _, err := resolver.Save(ctx, "category", document.Document{"uuid": "C1", "systitle": "Renamed"}); err != nil {
		t.Fatalf("save existing: %v", err)
	}
	id, err := resolver.Save(ctx, "category", document.Document{"uuid": "C2", "systitle": "Fresh"})
	if err != nil {
		t.Fatalf("save new: %v", err)
	}
	if _, err := resolver.Save(ctx, "category", document.Document{"uuid": id, "systitle": "Fresh again"}); err != nil {
		t.Fatalf("save again: %v", err)
	}
	want := []document.Reference{{UUID: "C2", CType: "category"}}
	if diff := cmp.Diff(want, resolver.Created()); diff != "" {
		t.Fatalf("unexpected created list (-want +got):\n%s", diff)
	}
}

func TestRelationPreSaveKeepsUUIDsAndLabelsWithoutAutocreate(t *testing.T) {
	store := storage.NewMemoryStore()
	env := newEnv(t, store, domain.ModeEdit)
	existing := "9b2f5c1e-3d4a-4b6c-8d7e-1f2a3b4c5d6e"
	field := schema.FieldDefinition{Key: "tags", Type: TypeRelation, Config: schema.FieldConfig{CType: "tag", Multiple: true}}

	patch, err := Relation{}.ProcessDataPreSave(context.Background(), env, field, []any{existing, map[string]any{"uuid": "T9"}, "Loose"})
	if err != nil {
		t.Fatalf("pre save: %v", err)
	}
	if diff := cmp.Diff([]any{existing, "T9", "Loose"}, patch.Set["tags"]); diff != "" {
		t.Fatalf("stored values mismatch (-want +got):\n%s", diff)
	}
	if store.Count("tag") != 0 {
		t.Fatalf("expected no documents to be created")
	}
}

type failingStore struct {
	*storage.MemoryStore
}

func (failingStore) Save(context.Context, string, map[string]any) (string, error) {
	return "", errors.New("disk full")
}

func TestRelationAutocreateFailureIsReported(t *testing.T) {
	env := newEnv(t, failingStore{storage.NewMemoryStore()}, domain.ModeEdit)
	field := schema.FieldDefinition{Key: "category", Type: TypeRelation, Config: schema.FieldConfig{CType: "category", Autocreate: true}}

	_, err := Relation{}.ProcessDataPreSave(context.Background(), env, field, "Broken")
	var createErr *AutocreateError
	if !errors.As(err, &createErr) || createErr.Label != "Broken" {
		t.Fatalf("expected AutocreateError, got %v", err)
	}
}

func TestMatrixViewRendersZones(t *testing.T) {
	store := seeded(t, "teaser", map[string]any{"uuid": "T1", "systitle": "Welcome"})
	env := newEnv(t, store, domain.ModeView)
	field := schema.FieldDefinition{Key: "blocks", Type: TypeMatrix, Config: schema.FieldConfig{Zones: []string{"hero", "sidebar"}}}

	stored := map[string]any{"hero": []any{map[string]any{"ctype": "teaser", "uuid": "T1"}}, "footer": []any{}}
	patch, err := Matrix{}.ProcessData(context.Background(), env, field, stored)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	zones := patch.Set["blocks"].(map[string]any)
	if zones["hero"] != `<article class="teaser">Welcome</article>` {
		t.Fatalf("unexpected hero fragment %#v", zones["hero"])
	}
	if zones["footer"] != "" || zones["sidebar"] != "" {
		t.Fatalf("expected empty zones to render empty strings, got %#v", zones)
	}
}

func TestMatrixSkipsCyclesAndMissingChildren(t *testing.T) {
	store := seeded(t, "teaser", map[string]any{"uuid": "T1", "systitle": "Loop"})
	env := newEnv(t, store, domain.ModeView)
	field := schema.FieldDefinition{Key: "blocks", Type: TypeMatrix}
	calls := 0
	env.Present = func(ctx context.Context, ctype string, doc document.Document) (document.Document, error) {
		calls++
		nested, err := Matrix{}.ProcessData(ctx, env, field, map[string]any{"inner": []any{map[string]any{"ctype": "teaser", "uuid": "T1"}}})
		if err != nil {
			return nil, err
		}
		doc["blocks"] = nested.Set["blocks"]
		return doc, nil
	}

	stored := `{"hero":[{"ctype":"teaser","uuid":"T1"},{"ctype":"teaser","uuid":"T404"}]}`
	patch, err := Matrix{}.ProcessData(context.Background(), env, field, stored)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the cycle to stop after one present call, got %d", calls)
	}
	if !strings.Contains(patch.Set["blocks"].(map[string]any)["hero"].(string), "Loop") {
		t.Fatalf("expected rendered child, got %#v", patch.Set["blocks"])
	}
}

func TestMatrixEditModeAndPreSave(t *testing.T) {
	store := seeded(t, "teaser", map[string]any{"uuid": "T1", "systitle": "Welcome"})
	env := newEnv(t, store, domain.ModeEdit)
	field := schema.FieldDefinition{Key: "blocks", Type: TypeMatrix, Config: schema.FieldConfig{Zones: []string{"hero"}}}

	patch, err := Matrix{}.ProcessData(context.Background(), env, field, map[string]any{"hero": []any{map[string]any{"ctype": "teaser", "uuid": "T1"}}})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := map[string]any{"hero": []any{map[string]any{"uuid": "T1", "ctype": "teaser", "systitle": "Welcome"}}}
	if diff := cmp.Diff(want, patch.Set["blocks"]); diff != "" {
		t.Fatalf("edit zones mismatch (-want +got):\n%s", diff)
	}

	stored, err := Matrix{}.ProcessDataPreSave(context.Background(), env, field, patch.Set["blocks"])
	if err != nil {
		t.Fatalf("pre save: %v", err)
	}
	wantStored := map[string]any{"hero": []any{map[string]any{"uuid": "T1", "ctype": "teaser"}}}
	if diff := cmp.Diff(wantStored, stored.Set["blocks"]); diff != "" {
		t.Fatalf("stored zones mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectorProcessor(t *testing.T) {
	env := newEnv(t, storage.NewMemoryStore(), domain.ModeView)
	field := schema.FieldDefinition{Key: "signup", Type: TypeConnector}

	patch, err := Connector{}.ProcessData(context.Background(), env, field, "newsletter:weekly")
	if err != nil || patch.Set["signup"] != `<form data-list="weekly"></form>` {
		t.Fatalf("unexpected connector output %#v (%v)", patch.Set["signup"], err)
	}
	patch, err = Connector{}.ProcessData(context.Background(), env, field, "newsletter")
	if err != nil || patch.Set["signup"] != "<form></form>" {
		t.Fatalf("unexpected connector output without action %#v (%v)", patch.Set["signup"], err)
	}
	if _, err := (Connector{}).ProcessData(context.Background(), env, field, "ghost:x"); !errors.Is(err, connectors.ErrUnknownConnector) {
		t.Fatalf("expected ErrUnknownConnector, got %v", err)
	}

	edit := env.WithContext(env.Context.WithMode(domain.ModeEdit))
	patch, err = Connector{}.ProcessData(context.Background(), edit, field, "newsletter:weekly")
	if err != nil || patch.Set["signup"] != "newsletter:weekly" {
		t.Fatalf("expected edit mode to keep the reference, got %#v (%v)", patch.Set["signup"], err)
	}
	if _, err := (Connector{}).ProcessDataPreSave(context.Background(), edit, field, "ghost"); !errors.Is(err, connectors.ErrUnknownConnector) {
		t.Fatalf("expected pre save to reject unknown connector, got %v", err)
	}
}

func TestJSONStructureProcessor(t *testing.T) {
	env := newEnv(t, storage.NewMemoryStore(), domain.ModeEdit)
	field := schema.FieldDefinition{Key: "meta", Type: TypeJSONStructure, Config: schema.FieldConfig{Schema: map[string]any{
		"type":       "object",
		"required":   []any{"alt"},
		"properties": map[string]any{"alt": map[string]any{"type": "string"}},
	}}}

	patch, err := JSONStructure{}.ProcessData(context.Background(), env, field, `{"alt":`)
	if err != nil || patch.Set["meta"] != nil {
		t.Fatalf("expected malformed stored json to present as nil, got %#v (%v)", patch.Set["meta"], err)
	}
	patch, err = JSONStructure{}.ProcessData(context.Background(), env, field, `{"alt":"Logo"}`)
	if err != nil || patch.Set["meta"].(map[string]any)["alt"] != "Logo" {
		t.Fatalf("expected decoded structure, got %#v (%v)", patch.Set["meta"], err)
	}

	if _, err := (JSONStructure{}).ProcessDataPreSave(context.Background(), env, field, map[string]any{"alt": 3.0}); err == nil {
		t.Fatalf("expected schema violation to fail pre save")
	}
	if _, err := (JSONStructure{}).ProcessDataPreSave(context.Background(), env, field, `{"alt":`); err == nil {
		t.Fatalf("expected malformed json to fail pre save")
	}
	stored, err := JSONStructure{}.ProcessDataPreSave(context.Background(), env, field, map[string]any{"alt": "Logo"})
	if err != nil || stored.Set["meta"] != `{"alt":"Logo"}` {
		t.Fatalf("expected encoded structure, got %#v (%v)", stored.Set["meta"], err)
	}
}

func TestPatchApplyTo(t *testing.T) {
	target := map[string]any{"a": 1, "b": 2}
	Patch{Set: map[string]any{"c": 3}, Unset: []string{"a"}}.ApplyTo(target)
	if diff := cmp.Diff(map[string]any{"b": 2, "c": 3}, target); diff != "" {
		t.Fatalf("patch mismatch (-want +got):\n%s", diff)
	}
}
