package connectors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-fieldkit/internal/domain"
)

func TestParseReference(t *testing.T) {
	cases := []struct {
		ref       string
		name      string
		action    string
		hasAction bool
	}{
		{ref: "newsletter", name: "newsletter"},
		{ref: "newsletter:signup", name: "newsletter", action: "signup", hasAction: true},
		{ref: " gallery:tag:summer ", name: "gallery", action: "tag:summer", hasAction: true},
		{ref: "gallery:", name: "gallery", hasAction: true},
	}
	for _, tc := range cases {
		inv, err := ParseReference(tc.ref)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.ref, err)
		}
		if inv.Name != tc.name || inv.Action != tc.action || inv.HasAction != tc.hasAction {
			t.Fatalf("parse %q: unexpected %#v", tc.ref, inv)
		}
	}
	if _, err := ParseReference(" "); !errors.Is(err, ErrEmptyReference) {
		t.Fatalf("expected ErrEmptyReference, got %v", err)
	}
}

func TestRegistryInvokeWithAndWithoutAction(t *testing.T) {
	registry := NewRegistry()
	var seen []Invocation
	registry.RegisterConnector("Newsletter", Func(func(_ context.Context, inv Invocation) (string, error) {
		seen = append(seen, inv)
		return "<form>" + inv.Action + "</form>", nil
	}))

	rc := domain.RenderContext{Language: "de", CType: "page"}
	out, err := registry.Invoke(context.Background(), "newsletter:signup", rc)
	if err != nil || out != "<form>signup</form>" {
		t.Fatalf("unexpected invoke result %q (%v)", out, err)
	}
	if _, err := registry.Invoke(context.Background(), "newsletter", rc); err != nil {
		t.Fatalf("invoke without action: %v", err)
	}
	if len(seen) != 2 || !seen[0].HasAction || seen[1].HasAction || seen[1].Context.Language != "de" {
		t.Fatalf("unexpected invocations %#v", seen)
	}
}

func TestRegistryUnknownConnector(t *testing.T) {
	_, err := NewRegistry().Invoke(context.Background(), "missing:x", domain.RenderContext{})
	if !errors.Is(err, ErrUnknownConnector) {
		t.Fatalf("expected ErrUnknownConnector, got %v", err)
	}
}

func TestRegistryBuildsFactoryOnce(t *testing.T) {
	registry := NewRegistry()
	builds := 0
	registry.Register("counter", func() (Connector, error) {
		builds++
		return Func(func(context.Context, Invocation) (string, error) { return "ok", nil }), nil
	})
	for i := 0; i < 3; i++ {
		if _, err := registry.Invoke(context.Background(), "counter", domain.RenderContext{}); err != nil {
			t.Fatalf("invoke: %v", err)
		}
	}
	if builds != 1 {
		t.Fatalf("expected one build, got %d", builds)
	}
}

func TestTemplateConnectorEscapesAndSanitizes(t *testing.T) {
	registry := NewRegistry()
	registry.Register("banner", Template(`<div class="banner" data-action="{{ action }}">{% if has_action %}{{ action }}{% else %}default{% endif %}</div><script>x()</script>`))

	out, err := registry.Invoke(context.Background(), "banner:<b>sale</b>", domain.RenderContext{})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if strings.Contains(out, "<script") || strings.Contains(out, "<b>") {
		t.Fatalf("expected escaped and sanitized output, got %q", out)
	}
	if !strings.Contains(out, "sale") {
		t.Fatalf("expected action text, got %q", out)
	}
	out, _ = registry.Invoke(context.Background(), "banner", domain.RenderContext{})
	if !strings.Contains(out, "default") {
		t.Fatalf("expected default branch, got %q", out)
	}
}
