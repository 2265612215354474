package transformers

import (
	"bytes"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

const NameMarkdown = "markdown"

var markdownExtensions = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

type markdownTransformer struct {
	engine goldmark.Markdown
	policy *bluemonday.Policy
}

// newMarkdown reads config.extra: `extensions` (list of names), `hard_wraps`
// and `unsafe`. Unless unsafe is set raw HTML is dropped by goldmark and the
// output is scrubbed with a UGC policy.
func newMarkdown(field schema.FieldDefinition, _ Settings) (Transformer, error) {
	extra := field.Config.Extra
	unsafe, _ := extra["unsafe"].(bool)
	hardWraps, _ := extra["hard_wraps"].(bool)

	rendererOptions := []renderer.Option{}
	if hardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}
	engine := goldmark.New(
		goldmark.WithExtensions(markdownExtenders(extra["extensions"])...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)

	t := &markdownTransformer{engine: engine}
	if !unsafe {
		t.policy = bluemonday.UGCPolicy()
	}
	return t, nil
}

func markdownExtenders(raw any) []goldmark.Extender {
	names, ok := document.AsSlice(raw)
	if !ok || len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Linkify}
	}
	var out []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(document.String(name)))
		ext, ok := markdownExtensions[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func (m *markdownTransformer) Name() string { return NameMarkdown }

// Transform renders the stored Markdown source to HTML in view mode.
func (m *markdownTransformer) Transform(value any) (any, error) {
	source := document.String(value)
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := m.engine.Convert([]byte(source), &buf); err != nil {
		return value, err
	}
	if m.policy != nil {
		return m.policy.Sanitize(buf.String()), nil
	}
	return buf.String(), nil
}
