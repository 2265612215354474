package render

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
	"github.com/microcosm-cc/bluemonday"
)

const defaultFragmentSource = `<div class="fieldkit-fragment" data-ctype="{{ ctype }}" data-uuid="{{ doc.uuid }}">{{ doc.systitle }}</div>`

// FragmentRenderer renders presented documents with pongo2 templates keyed
// by content type. Output is sanitized unless sanitizing is disabled.
type FragmentRenderer struct {
	mu       sync.RWMutex
	byCType  map[string]*pongo2.Template
	fallback *pongo2.Template
	adhoc    map[string]*pongo2.Template
	policy   *bluemonday.Policy
}

var (
	_ interfaces.FragmentRenderer = (*FragmentRenderer)(nil)
	_ interfaces.TemplateRenderer = (*FragmentRenderer)(nil)
)

// NewFragmentRenderer compiles templates (ctype -> pongo2 source). A "*" key
// replaces the fallback template.
func NewFragmentRenderer(templates map[string]string, sanitize bool) (*FragmentRenderer, error) {
	r := &FragmentRenderer{
		byCType: make(map[string]*pongo2.Template, len(templates)),
		adhoc:   make(map[string]*pongo2.Template),
	}
	fallback, err := pongo2.FromString(defaultFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("render: default fragment template: %w", err)
	}
	r.fallback = fallback
	for ctype, source := range templates {
		tpl, err := pongo2.FromString(source)
		if err != nil {
			return nil, fmt.Errorf("render: fragment template %q: %w", ctype, err)
		}
		key := strings.ToLower(strings.TrimSpace(ctype))
		if key == "*" {
			r.fallback = tpl
			continue
		}
		r.byCType[key] = tpl
	}
	if sanitize {
		policy := bluemonday.UGCPolicy()
		policy.AllowDataAttributes()
		policy.AllowAttrs("class").Globally()
		r.policy = policy
	}
	return r, nil
}

// RenderFragment implements interfaces.FragmentRenderer.
func (r *FragmentRenderer) RenderFragment(ctx context.Context, ctype string, doc map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := strings.ToLower(strings.TrimSpace(ctype))
	r.mu.RLock()
	tpl, ok := r.byCType[key]
	r.mu.RUnlock()
	if !ok {
		tpl = r.fallback
	}
	return r.execute(tpl, pongo2.Context{"ctype": key, "doc": doc})
}

// RenderTemplate renders the template registered for name (a content type).
func (r *FragmentRenderer) RenderTemplate(name string, data any) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	tpl, ok := r.byCType[key]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("render: no fragment template for %q", name)
	}
	return r.execute(tpl, templateContext(data))
}

// RenderString compiles content once and renders it.
func (r *FragmentRenderer) RenderString(content string, data any) (string, error) {
	r.mu.RLock()
	tpl, ok := r.adhoc[content]
	r.mu.RUnlock()
	if !ok {
		compiled, err := pongo2.FromString(content)
		if err != nil {
			return "", fmt.Errorf("render: compile template: %w", err)
		}
		r.mu.Lock()
		r.adhoc[content] = compiled
		r.mu.Unlock()
		tpl = compiled
	}
	return r.execute(tpl, templateContext(data))
}

func (r *FragmentRenderer) execute(tpl *pongo2.Template, data pongo2.Context) (string, error) {
	out, err := tpl.Execute(data)
	if err != nil {
		return "", fmt.Errorf("render: fragment: %w", err)
	}
	if r.policy != nil {
		out = r.policy.Sanitize(out)
	}
	return out, nil
}

func templateContext(data any) pongo2.Context {
	switch v := data.(type) {
	case pongo2.Context:
		return v
	case map[string]any:
		return pongo2.Context(v)
	default:
		return pongo2.Context{"data": data}
	}
}
