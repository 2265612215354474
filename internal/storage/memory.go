package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
	"github.com/google/uuid"
)

// MemoryStore keeps documents in process. It is the default store and the
// one used by tests; RunInTx restores a snapshot when fn fails.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	docs map[string]map[string]map[string]any
	now  func() time.Time
}

var (
	_ interfaces.DocumentStore      = (*MemoryStore)(nil)
	_ interfaces.TransactionalStore = (*MemoryStore)(nil)
)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		docs: make(map[string]map[string]map[string]any),
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Find implements interfaces.DocumentStore.
func (s *MemoryStore) Find(_ context.Context, ctype, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.docs[canonicalCType(ctype)]
	if bucket == nil {
		return nil, nil
	}
	doc, ok := bucket[strings.TrimSpace(id)]
	if !ok {
		return nil, nil
	}
	return document.CloneMap(doc), nil
}

// Query implements interfaces.DocumentStore. Results are ordered by
// creation when no sort is given.
func (s *MemoryStore) Query(_ context.Context, ctype string, query interfaces.Query) ([]map[string]any, error) {
	s.mu.RLock()
	bucket := s.docs[canonicalCType(ctype)]
	matched := make([]map[string]any, 0, len(bucket))
	for _, doc := range bucket {
		if document.Matches(doc, query.Filter) {
			matched = append(matched, document.CloneMap(doc))
		}
	}
	s.mu.RUnlock()
	return applyQuery(matched, query), nil
}

// Save implements interfaces.DocumentStore.
func (s *MemoryStore) Save(_ context.Context, ctype string, doc map[string]any) (string, error) {
	key := canonicalCType(ctype)
	if key == "" {
		return "", ErrCTypeRequired
	}
	record := document.CloneMap(doc)
	if record == nil {
		record = map[string]any{}
	}
	id := strings.TrimSpace(document.String(record[domain.KeyUUID]))
	if id == "" {
		id = uuid.NewString()
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.docs[key]
	if bucket == nil {
		bucket = make(map[string]map[string]any)
		s.docs[key] = bucket
	}
	created := now
	if existing, ok := bucket[id]; ok {
		if ts, ok := existing[domain.KeyCreated].(time.Time); ok {
			created = ts
		}
	}
	record[domain.KeyUUID] = id
	record[domain.KeyCType] = key
	record[domain.KeyCreated] = created
	record[domain.KeyModified] = now
	bucket[id] = record
	return id, nil
}

// RunInTx runs fn against the store and rolls every write back when fn
// returns an error. Transactions are serialized.
func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.DocumentStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.docs = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Seed stores fixture documents as given, keeping their uuids.
func (s *MemoryStore) Seed(ctype string, docs ...map[string]any) error {
	for _, doc := range docs {
		if _, err := s.Save(context.Background(), ctype, doc); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of documents stored for ctype.
func (s *MemoryStore) Count(ctype string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[canonicalCType(ctype)])
}

func (s *MemoryStore) snapshot() map[string]map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]map[string]any, len(s.docs))
	for ctype, bucket := range s.docs {
		copied := make(map[string]map[string]any, len(bucket))
		for id, doc := range bucket {
			copied[id] = document.CloneMap(doc)
		}
		out[ctype] = copied
	}
	return out
}

func canonicalCType(ctype string) string {
	return strings.ToLower(strings.TrimSpace(ctype))
}
