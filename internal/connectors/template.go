package connectors

import (
	"context"
	"fmt"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

// Template returns a connector rendering a pongo2 template. The template sees
// `name`, `action`, `has_action`, `language` and `ctype`; output is
// sanitized with a UGC policy.
func Template(source string) Factory {
	return func() (Connector, error) {
		tpl, err := pongo2.FromString(source)
		if err != nil {
			return nil, fmt.Errorf("connectors: parse template: %w", err)
		}
		policy := bluemonday.UGCPolicy()
		return Func(func(_ context.Context, inv Invocation) (string, error) {
			out, err := tpl.Execute(pongo2.Context{
				"name":       inv.Name,
				"action":     inv.Action,
				"has_action": inv.HasAction,
				"language":   inv.Context.Language,
				"ctype":      inv.Context.CType,
			})
			if err != nil {
				return "", fmt.Errorf("connectors: render %s: %w", inv.Name, err)
			}
			return policy.Sanitize(out), nil
		}), nil
	}
}
