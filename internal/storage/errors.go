package storage

import "errors"

var (
	ErrCTypeRequired    = errors.New("storage: content type is required")
	ErrDatabaseRequired = errors.New("storage: bun store requires a database")
	ErrInvalidUUID      = errors.New("storage: invalid document uuid")
)
