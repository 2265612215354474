package domain

// RenderContext carries the request scoped values a pass reads. It is passed
// explicitly through every call; nothing is read from ambient state.
type RenderContext struct {
	Language       string
	Languages      []string
	CType          string
	Mode           Mode
	RequestFilters map[string]any
	ContextPrefix  string
}

// WithCType returns a copy bound to another content type, used when a pass
// descends into a referenced document.
func (rc RenderContext) WithCType(ctype string) RenderContext {
	rc.CType = ctype
	return rc
}

// WithMode returns a copy using mode.
func (rc RenderContext) WithMode(mode Mode) RenderContext {
	rc.Mode = mode
	return rc
}

// IsView reports whether display transforms apply.
func (rc RenderContext) IsView() bool {
	return rc.Mode == ModeView
}

// RequestFilter returns the request filter named name.
func (rc RenderContext) RequestFilter(name string) (any, bool) {
	if rc.RequestFilters == nil {
		return nil, false
	}
	value, ok := rc.RequestFilters[name]
	return value, ok
}
