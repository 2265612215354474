package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const documentNamespace = "fieldkit_documents"

// Record is the row layout of a stored document. The full document lives in
// Data; ctype, title, slug and state are copied into columns for indexing.
type Record struct {
	bun.BaseModel `bun:"table:fieldkit_documents,alias:d"`

	ID        uuid.UUID      `bun:"id,pk,type:uuid"`
	CType     string         `bun:"ctype,notnull"`
	Title     string         `bun:"systitle"`
	Slug      string         `bun:"slug"`
	State     int            `bun:"state"`
	Data      map[string]any `bun:"data,type:jsonb"`
	CreatedAt time.Time      `bun:"created_at,notnull"`
	UpdatedAt time.Time      `bun:"updated_at,notnull"`
}

// NewRecordRepository builds the go-repository-bun repository for records.
func NewRecordRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord: func() *Record { return &Record{} },
		GetID: func(r *Record) uuid.UUID {
			return r.ID
		},
		SetID: func(r *Record, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *Record) string {
			return r.ID.String()
		},
	})
}

// BunStore persists documents through go-repository-bun, optionally behind
// the repository cache.
type BunStore struct {
	db           *bun.DB
	repo         repository.Repository[*Record]
	cacheService cache.CacheService
	cachePrefix  string
	now          func() time.Time
}

var (
	_ interfaces.DocumentStore      = (*BunStore)(nil)
	_ interfaces.TransactionalStore = (*BunStore)(nil)
)

// NewBunStore creates a store without caching.
func NewBunStore(db *bun.DB) *BunStore {
	return NewBunStoreWithCache(db, nil, nil)
}

// NewBunStoreWithCache creates a store whose reads go through the repository
// cache. Writes drop the cached entries.
func NewBunStoreWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunStore {
	store := &BunStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if db == nil {
		return store
	}
	base := NewRecordRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		store.cacheService = cacheService
		store.cachePrefix = documentNamespace + cache.KeySeparator
	}
	store.repo = base
	return store
}

// EnsureSchema creates the documents table when missing.
func (s *BunStore) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return ErrDatabaseRequired
	}
	if _, err := s.db.NewCreateTable().Model((*Record)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("storage: create documents table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*Record)(nil)).
		Index("fieldkit_documents_ctype_idx").
		IfNotExists().
		Column("ctype").
		Exec(ctx); err != nil {
		return fmt.Errorf("storage: create ctype index: %w", err)
	}
	return nil
}

// Find implements interfaces.DocumentStore.
func (s *BunStore) Find(ctx context.Context, ctype, id string) (map[string]any, error) {
	if s.repo == nil {
		return nil, ErrDatabaseRequired
	}
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, nil
	}
	record, err := s.repo.GetByID(ctx, parsed.String())
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: find %s/%s: %w", ctype, id, err)
	}
	if record == nil || !strings.EqualFold(record.CType, canonicalCType(ctype)) {
		return nil, nil
	}
	return recordToDocument(record), nil
}

// Query implements interfaces.DocumentStore. Rows are narrowed by ctype in
// SQL; filter, sort and window are applied to the decoded documents so the
// same semantics hold on every dialect.
func (s *BunStore) Query(ctx context.Context, ctype string, query interfaces.Query) ([]map[string]any, error) {
	if s.repo == nil {
		return nil, ErrDatabaseRequired
	}
	key := canonicalCType(ctype)
	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.ctype = ?", key).Order("created_at ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: query %s: %w", ctype, err)
	}
	return filterRecords(records, query), nil
}

// Save implements interfaces.DocumentStore.
func (s *BunStore) Save(ctx context.Context, ctype string, doc map[string]any) (string, error) {
	if s.repo == nil {
		return "", ErrDatabaseRequired
	}
	record, err := s.recordFromDocument(ctype, doc)
	if err != nil {
		return "", err
	}
	existing, err := s.repo.GetByID(ctx, record.ID.String())
	switch {
	case err == nil && existing != nil:
		record.CreatedAt = existing.CreatedAt
		record.Data[domain.KeyCreated] = existing.CreatedAt
		if _, err := s.repo.Update(ctx, record); err != nil {
			return "", fmt.Errorf("storage: update %s: %w", record.ID, err)
		}
	case err == nil || goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows):
		if _, err := s.repo.Create(ctx, record); err != nil {
			return "", fmt.Errorf("storage: create %s: %w", record.ID, err)
		}
	default:
		return "", fmt.Errorf("storage: load %s: %w", record.ID, err)
	}
	if err := s.InvalidateCache(ctx); err != nil {
		return "", err
	}
	return record.ID.String(), nil
}

// RunInTx runs fn inside a database transaction. The store handed to fn
// bypasses the cache; the cache is dropped once the transaction commits.
func (s *BunStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.DocumentStore) error) error {
	if s.db == nil {
		return ErrDatabaseRequired
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &txStore{db: tx, now: s.now})
	})
	if err != nil {
		return err
	}
	return s.InvalidateCache(ctx)
}

// InvalidateCache drops cached document reads.
func (s *BunStore) InvalidateCache(ctx context.Context) error {
	if s.cacheService == nil || s.cachePrefix == "" {
		return nil
	}
	return s.cacheService.DeleteByPrefix(ctx, s.cachePrefix)
}

func (s *BunStore) recordFromDocument(ctype string, doc map[string]any) (*Record, error) {
	return buildRecord(ctype, doc, s.now())
}

// txStore serves a transaction with raw bun queries.
type txStore struct {
	db  bun.IDB
	now func() time.Time
}

func (t *txStore) Find(ctx context.Context, ctype, id string) (map[string]any, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, nil
	}
	var record Record
	err = t.db.NewSelect().
		Model(&record).
		Where("?TableAlias.id = ?", parsed).
		Where("?TableAlias.ctype = ?", canonicalCType(ctype)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: find %s/%s: %w", ctype, id, err)
	}
	return recordToDocument(&record), nil
}

func (t *txStore) Query(ctx context.Context, ctype string, query interfaces.Query) ([]map[string]any, error) {
	var records []*Record
	if err := t.db.NewSelect().
		Model(&records).
		Where("?TableAlias.ctype = ?", canonicalCType(ctype)).
		Order("created_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("storage: query %s: %w", ctype, err)
	}
	return filterRecords(records, query), nil
}

func (t *txStore) Save(ctx context.Context, ctype string, doc map[string]any) (string, error) {
	record, err := buildRecord(ctype, doc, t.now())
	if err != nil {
		return "", err
	}
	var existing Record
	err = t.db.NewSelect().Model(&existing).Where("?TableAlias.id = ?", record.ID).Scan(ctx)
	switch {
	case err == nil:
		record.CreatedAt = existing.CreatedAt
		record.Data[domain.KeyCreated] = existing.CreatedAt
		if _, err := t.db.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
			return "", fmt.Errorf("storage: update %s: %w", record.ID, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		if _, err := t.db.NewInsert().Model(record).Exec(ctx); err != nil {
			return "", fmt.Errorf("storage: create %s: %w", record.ID, err)
		}
	default:
		return "", fmt.Errorf("storage: load %s: %w", record.ID, err)
	}
	return record.ID.String(), nil
}

func buildRecord(ctype string, doc map[string]any, now time.Time) (*Record, error) {
	key := canonicalCType(ctype)
	if key == "" {
		return nil, ErrCTypeRequired
	}
	data := document.CloneMap(doc)
	if data == nil {
		data = map[string]any{}
	}
	id := uuid.New()
	if raw := strings.TrimSpace(document.String(data[domain.KeyUUID])); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidUUID, raw)
		}
		id = parsed
	}
	state, _ := domain.ParseState(data[domain.KeyState])
	data[domain.KeyUUID] = id.String()
	data[domain.KeyCType] = key
	data[domain.KeyCreated] = now
	data[domain.KeyModified] = now
	return &Record{
		ID:        id,
		CType:     key,
		Title:     document.String(data[domain.KeyTitle]),
		Slug:      document.String(data[domain.KeySlug]),
		State:     int(state),
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func recordToDocument(record *Record) map[string]any {
	if record == nil {
		return nil
	}
	out := document.CloneMap(record.Data)
	if out == nil {
		out = map[string]any{}
	}
	out[domain.KeyUUID] = record.ID.String()
	out[domain.KeyCType] = record.CType
	out[domain.KeyCreated] = record.CreatedAt.UTC().Format(time.RFC3339Nano)
	out[domain.KeyModified] = record.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return out
}

func filterRecords(records []*Record, query interfaces.Query) []map[string]any {
	docs := make([]map[string]any, 0, len(records))
	for _, record := range records {
		doc := recordToDocument(record)
		if document.Matches(doc, query.Filter) {
			docs = append(docs, doc)
		}
	}
	return applyQuery(docs, query)
}
