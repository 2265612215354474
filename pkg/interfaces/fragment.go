package interfaces

import "context"

// FragmentRenderer is the rendering host used when a presented document has
// to be turned into markup, e.g. a matrix zone child.
type FragmentRenderer interface {
	RenderFragment(ctx context.Context, ctype string, doc map[string]any) (string, error)
}

// TemplateRenderer mirrors the go-template style renderer contract so hosts
// can plug their engine into the fragment renderer.
type TemplateRenderer interface {
	RenderTemplate(name string, data any) (string, error)
	RenderString(templateContent string, data any) (string, error)
}
