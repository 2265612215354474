package processors

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

// DefaultMaxDepth bounds nested presentation when no depth is configured.
const DefaultMaxDepth = 8

// Resolver reads and writes documents for a single pass. Reads are memoized
// for the pass and every write is visible to later reads and queries of the
// same pass.
type Resolver struct {
	store    interfaces.DocumentStore
	maxDepth int

	mu      sync.Mutex
	found   map[string]document.Document
	written map[string]map[string]document.Document
	created []document.Reference
	active  map[string]struct{}
	depth   int
}

// NewResolver binds a resolver to store.
func NewResolver(store interfaces.DocumentStore, maxDepth int) *Resolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Resolver{
		store:    store,
		maxDepth: maxDepth,
		found:    make(map[string]document.Document),
		written:  make(map[string]map[string]document.Document),
		active:   make(map[string]struct{}),
	}
}

// Store returns the underlying store.
func (r *Resolver) Store() interfaces.DocumentStore {
	return r.store
}

// Find returns a copy of the document or nil when it does not exist.
func (r *Resolver) Find(ctx context.Context, ctype, id string) (document.Document, error) {
	ctype = canonicalKey(ctype)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	key := cacheKey(ctype, id)

	r.mu.Lock()
	if doc, ok := r.found[key]; ok {
		r.mu.Unlock()
		return doc.Clone(), nil
	}
	r.mu.Unlock()

	if r.store == nil {
		return nil, fmt.Errorf("processors: resolver has no store")
	}
	raw, err := r.store.Find(ctx, ctype, id)
	if err != nil {
		return nil, err
	}
	var doc document.Document
	if raw != nil {
		doc = document.Document(raw)
	}

	r.mu.Lock()
	r.found[key] = doc
	r.mu.Unlock()
	return doc.Clone(), nil
}

// Query runs query against the store and merges documents written earlier
// in the pass that match the filter but are not yet visible to the store.
func (r *Resolver) Query(ctx context.Context, ctype string, query interfaces.Query) ([]document.Document, error) {
	ctype = canonicalKey(ctype)
	if r.store == nil {
		return nil, fmt.Errorf("processors: resolver has no store")
	}

	r.mu.Lock()
	pending := make([]document.Document, 0, len(r.written[ctype]))
	for _, doc := range r.written[ctype] {
		if document.Matches(doc, query.Filter) {
			pending = append(pending, doc.Clone())
		}
	}
	r.mu.Unlock()

	if len(pending) == 0 {
		rows, err := r.store.Query(ctx, ctype, query)
		if err != nil {
			return nil, err
		}
		out := make([]document.Document, len(rows))
		for i, row := range rows {
			out[i] = document.Document(row)
		}
		return out, nil
	}

	unbounded := query
	unbounded.Limit = 0
	unbounded.Offset = 0
	rows, err := r.store.Query(ctx, ctype, unbounded)
	if err != nil {
		return nil, err
	}
	merged := make([]map[string]any, 0, len(rows)+len(pending))
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		seen[document.String(row[domain.KeyUUID])] = len(merged)
		merged = append(merged, row)
	}
	for _, doc := range pending {
		id := doc.UUID()
		if idx, ok := seen[id]; ok {
			merged[idx] = doc
			continue
		}
		merged = append(merged, doc)
	}
	keys := make([]document.SortKey, 0, len(query.Sort))
	for _, field := range query.Sort {
		keys = append(keys, document.SortKey{Key: field.Key, Descending: field.Descending})
	}
	document.Sort(merged, keys)
	merged = document.Window(merged, query.Offset, query.Limit)

	out := make([]document.Document, len(merged))
	for i, row := range merged {
		out[i] = document.Document(row)
	}
	return out, nil
}

// Save writes doc and records it for read-after-write.
func (r *Resolver) Save(ctx context.Context, ctype string, doc document.Document) (string, error) {
	ctype = canonicalKey(ctype)
	if r.store == nil {
		return "", fmt.Errorf("processors: resolver has no store")
	}
	isNew, err := r.isNew(ctx, ctype, doc.UUID())
	if err != nil {
		return "", err
	}
	id, err := r.store.Save(ctx, ctype, doc.Clone())
	if err != nil {
		return "", err
	}
	stored := doc.Clone()
	if stored == nil {
		stored = document.Document{}
	}
	stored[domain.KeyUUID] = id
	stored[domain.KeyCType] = ctype

	r.mu.Lock()
	defer r.mu.Unlock()
	r.found[cacheKey(ctype, id)] = stored
	if r.written[ctype] == nil {
		r.written[ctype] = make(map[string]document.Document)
	}
	r.written[ctype][id] = stored
	if isNew {
		r.created = append(r.created, document.Reference{UUID: id, CType: ctype})
	}
	return id, nil
}

// isNew reports whether saving a document with id creates it. Documents
// written earlier in the pass were already counted by their first write.
func (r *Resolver) isNew(ctx context.Context, ctype, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return true, nil
	}
	r.mu.Lock()
	_, written := r.written[ctype][id]
	r.mu.Unlock()
	if written {
		return false, nil
	}
	existing, err := r.Find(ctx, ctype, id)
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

// Created lists documents created through this resolver, in creation order.
func (r *Resolver) Created() []document.Reference {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]document.Reference(nil), r.created...)
}

// Enter marks a document as being presented. ok is false when the document
// is already on the presentation path (a cycle) or the depth limit is
// reached; leave must be called when ok is true.
func (r *Resolver) Enter(ctype, id string) (leave func(), ok bool) {
	key := cacheKey(canonicalKey(ctype), strings.TrimSpace(id))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, cycle := r.active[key]; cycle {
		return func() {}, false
	}
	if r.depth >= r.maxDepth {
		return func() {}, false
	}
	r.active[key] = struct{}{}
	r.depth++
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.active, key)
			r.depth--
			r.mu.Unlock()
		})
	}, true
}

func cacheKey(ctype, id string) string {
	return ctype + "/" + id
}
