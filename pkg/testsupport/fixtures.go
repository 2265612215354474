package testsupport

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/goliatone/go-fieldkit/pkg/interfaces"
	"gopkg.in/yaml.v3"
)

// Documents groups fixture documents in stored form by content type.
type Documents map[string][]map[string]any

// CTypes returns the fixture content types in a stable order.
func (d Documents) CTypes() []string {
	out := make([]string, 0, len(d))
	for ctype := range d {
		out = append(out, ctype)
	}
	sort.Strings(out)
	return out
}

// Seed saves every fixture document into store, content types in CTypes
// order. Documents carrying a uuid keep it.
func (d Documents) Seed(ctx context.Context, store interfaces.DocumentStore) error {
	for _, ctype := range d.CTypes() {
		for i, doc := range d[ctype] {
			if _, err := store.Save(ctx, ctype, doc); err != nil {
				return fmt.Errorf("testsupport: seed %s[%d]: %w", ctype, i, err)
			}
		}
	}
	return nil
}

// LoadDocuments reads a YAML or JSON object mapping content types to
// document lists.
func LoadDocuments(path string) (Documents, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocuments(data)
}

// ParseDocuments decodes fixture documents from raw YAML or JSON.
func ParseDocuments(data []byte) (Documents, error) {
	var docs Documents
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("testsupport: decode documents: %w", err)
	}
	return docs, nil
}
