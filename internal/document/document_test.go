package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCloneIsDeep(t *testing.T) {
	doc := Document{
		"systitle": "Jane",
		"tags":     []any{"a", map[string]any{"k": "v"}},
		"i18n":     map[string]any{"en": map[string]any{"teaser": "hi"}},
	}
	clone := doc.Clone()
	clone["tags"].([]any)[1].(map[string]any)["k"] = "changed"
	clone["i18n"].(map[string]any)["en"].(map[string]any)["teaser"] = "changed"

	if doc["tags"].([]any)[1].(map[string]any)["k"] != "v" {
		t.Fatalf("clone shared nested slice map")
	}
	if doc["i18n"].(map[string]any)["en"].(map[string]any)["teaser"] != "hi" {
		t.Fatalf("clone shared nested i18n map")
	}
}

func TestParseReferenceAcceptsEveryStoredShape(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  Reference
		ok    bool
	}{
		{name: "uuid string", value: "U1", want: Reference{UUID: "U1", CType: "asset"}, ok: true},
		{name: "map", value: map[string]any{"uuid": "U2", "ctype": "teaser"}, want: Reference{UUID: "U2", CType: "teaser"}, ok: true},
		{name: "map without ctype", value: map[string]any{"uuid": "U3"}, want: Reference{UUID: "U3", CType: "asset"}, ok: true},
		{name: "json string", value: `{"uuid":"U4","ctype":"teaser"}`, want: Reference{UUID: "U4", CType: "teaser"}, ok: true},
		{name: "blank", value: "  ", ok: false},
		{name: "malformed json", value: `{"uuid":`, ok: false},
		{name: "number", value: 4.0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseReference(tc.value, "asset")
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v (%#v)", tc.ok, ok, got)
			}
			if tc.ok && got != tc.want {
				t.Fatalf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestParseReferencesSkipsInvalidItems(t *testing.T) {
	got := ParseReferences(`[{"uuid":"T1","ctype":"teaser"},"",{"title":"x"},"T2"]`, "teaser")
	want := []Reference{{UUID: "T1", CType: "teaser"}, {UUID: "T2", CType: "teaser"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}
}

func TestIsUUIDv4(t *testing.T) {
	if !IsUUIDv4("9b2f5c1e-3d4a-4b6c-8d7e-1f2a3b4c5d6e") {
		t.Fatalf("expected v4 uuid to match")
	}
	if IsUUIDv4("New Category") || IsUUIDv4("9b2f5c1e-3d4a-1b6c-8d7e-1f2a3b4c5d6e") {
		t.Fatalf("expected labels and non v4 uuids to be rejected")
	}
}

func TestPrepareI18nStructureFillsEveryLanguage(t *testing.T) {
	doc := Document{
		"teaser": "Hello",
		"i18n":   map[string]any{"de": map[string]any{"teaser": "Hallo"}},
	}
	fields := []TranslatableField{{Key: "teaser"}, {Key: "body", Default: "tbd"}}

	got := PrepareI18nStructure(doc, []string{"en", "de", "fr"}, "en", fields)

	want := Document{
		"i18n": map[string]any{
			"en": map[string]any{"teaser": "Hello", "body": "tbd"},
			"de": map[string]any{"teaser": "Hallo", "body": "tbd"},
			"fr": map[string]any{"teaser": "", "body": "tbd"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("i18n mismatch (-want +got):\n%s", diff)
	}
}

func TestPrepareI18nStructureIsIdempotent(t *testing.T) {
	fields := []TranslatableField{{Key: "teaser", Default: "x"}}
	once := PrepareI18nStructure(Document{"teaser": "a"}, []string{"en", "de"}, "en", fields)
	twice := PrepareI18nStructure(once.Clone(), []string{"en", "de"}, "en", fields)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second preparation changed document (-once +twice):\n%s", diff)
	}
}

func TestLooksLikeJSONSniffsLeadingCharacter(t *testing.T) {
	cases := map[string]bool{
		`{"uuid":"U1"}`: true,
		`{"uuid":`:      true,
		` [1, 2`:        true,
		"News":          false,
		"":              false,
	}
	for raw, want := range cases {
		if got := LooksLikeJSON(raw); got != want {
			t.Fatalf("LooksLikeJSON(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestDecodeJSONIsDefensive(t *testing.T) {
	if DecodeJSON("{broken") != nil {
		t.Fatalf("expected malformed json to decode to nil")
	}
	if DecodeJSON("") != nil {
		t.Fatalf("expected empty input to decode to nil")
	}
	got, ok := DecodeJSON(`{"a":[1,true]}`).(map[string]any)
	if !ok || len(got["a"].([]any)) != 2 {
		t.Fatalf("unexpected decode result %#v", got)
	}
}
