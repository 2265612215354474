package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatchesComparesByStringForm(t *testing.T) {
	doc := map[string]any{"state": "2", "tags": []any{"a", "b"}, "i18n": map[string]any{"en": map[string]any{"title": "Hi"}}}
	cases := []struct {
		filter map[string]any
		want   bool
	}{
		{filter: map[string]any{"state": 2.0}, want: true},
		{filter: map[string]any{"state": []any{1.0, 2.0}}, want: true},
		{filter: map[string]any{"tags": "b"}, want: true},
		{filter: map[string]any{"i18n.en.title": "Hi"}, want: true},
		{filter: map[string]any{"state": 3.0}, want: false},
		{filter: map[string]any{"missing": "x"}, want: false},
		{filter: map[string]any{"missing": nil}, want: true},
	}
	for _, tc := range cases {
		if got := Matches(doc, tc.filter); got != tc.want {
			t.Fatalf("filter %#v: expected %v, got %v", tc.filter, tc.want, got)
		}
	}
}

func TestSortAndWindow(t *testing.T) {
	docs := []map[string]any{
		{"uuid": "a", "rank": "10", "systitle": "b"},
		{"uuid": "b", "rank": "9", "systitle": "a"},
		{"uuid": "c", "rank": "10", "systitle": "a"},
	}
	Sort(docs, ParseSort([]string{"-rank", "systitle asc"}))
	got := []string{}
	for _, doc := range Window(docs, 1, 1) {
		got = append(got, doc["uuid"].(string))
	}
	if diff := cmp.Diff([]string{"a"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if docs[0]["uuid"] != "c" || docs[2]["uuid"] != "b" {
		t.Fatalf("unexpected order %v", docs)
	}
}

func TestProjectKeepsIdentity(t *testing.T) {
	doc := map[string]any{"uuid": "U1", "ctype": "asset", "systitle": "Logo", "path": "/logo.png"}
	got := Project(doc, []string{"path"})
	want := map[string]any{"uuid": "U1", "ctype": "asset", "path": "/logo.png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}
}
