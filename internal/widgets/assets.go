package widgets

import (
	"slices"
	"sync"
)

// Script describes a script dependency of a widget.
type Script struct {
	Src    string
	Inline string
	Defer  bool
	Module bool
}

func (s Script) key() string {
	if s.Src != "" {
		return "src:" + s.Src
	}
	return "inline:" + s.Inline
}

// AssetBundle collects the stylesheets and scripts of every widget rendered
// into one form. Entries are deduplicated and keep first-registration order.
type AssetBundle struct {
	mu          sync.Mutex
	stylesheets []string
	scripts     []Script
	seen        map[string]struct{}
}

// NewAssetBundle returns an empty bundle.
func NewAssetBundle() *AssetBundle {
	return &AssetBundle{seen: make(map[string]struct{})}
}

// AddStylesheet registers href once.
func (b *AssetBundle) AddStylesheet(href string) {
	if b == nil || href == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mark("css:" + href) {
		b.stylesheets = append(b.stylesheets, href)
	}
}

// AddScript registers script once.
func (b *AssetBundle) AddScript(script Script) {
	if b == nil || (script.Src == "" && script.Inline == "") {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mark(script.key()) {
		b.scripts = append(b.scripts, script)
	}
}

// Merge adds every entry of other.
func (b *AssetBundle) Merge(other *AssetBundle) {
	if b == nil || other == nil || b == other {
		return
	}
	for _, href := range other.Stylesheets() {
		b.AddStylesheet(href)
	}
	for _, script := range other.Scripts() {
		b.AddScript(script)
	}
}

// Stylesheets returns the registered stylesheets.
func (b *AssetBundle) Stylesheets() []string {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.stylesheets)
}

// Scripts returns the registered scripts.
func (b *AssetBundle) Scripts() []Script {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.scripts)
}

func (b *AssetBundle) mark(key string) bool {
	if b.seen == nil {
		b.seen = make(map[string]struct{})
	}
	if _, ok := b.seen[key]; ok {
		return false
	}
	b.seen[key] = struct{}{}
	return true
}
