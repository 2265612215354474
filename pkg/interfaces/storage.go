package interfaces

import "context"

// SortField orders query results by a document key.
type SortField struct {
	Key        string `json:"key" yaml:"key"`
	Descending bool   `json:"desc,omitempty" yaml:"desc,omitempty"`
}

// Query narrows a content type listing.
type Query struct {
	Filter map[string]any
	Sort   []SortField
	Limit  int
	Offset int
}

// DocumentStore is the storage collaborator the pipeline reads stored-form
// documents from and writes them back to. Find returns (nil, nil) when the
// document does not exist.
type DocumentStore interface {
	Find(ctx context.Context, ctype, uuid string) (map[string]any, error)
	Query(ctx context.Context, ctype string, query Query) ([]map[string]any, error)
	Save(ctx context.Context, ctype string, doc map[string]any) (string, error)
}

// TransactionalStore is implemented by stores that can run several writes as
// one atomic unit. The store passed to fn must be used for every operation
// inside the transaction.
type TransactionalStore interface {
	DocumentStore
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx DocumentStore) error) error
}
