package storage

import (
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

// applyQuery sorts and windows already filtered documents. Without an
// explicit sort documents are ordered by creation time, then uuid, so results
// are stable across calls.
func applyQuery(docs []map[string]any, query interfaces.Query) []map[string]any {
	keys := make([]document.SortKey, 0, len(query.Sort)+2)
	for _, field := range query.Sort {
		keys = append(keys, document.SortKey{Key: field.Key, Descending: field.Descending})
	}
	keys = append(keys,
		document.SortKey{Key: domain.KeyCreated},
		document.SortKey{Key: domain.KeyUUID},
	)
	document.Sort(docs, keys)
	return document.Window(docs, query.Offset, query.Limit)
}
