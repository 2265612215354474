package schema

import "errors"

var (
	ErrUnsupportedKeyword = errors.New("schema: unsupported keyword")
	ErrSchemaNotFound     = errors.New("schema: content type not found")
	ErrInvalidField       = errors.New("schema: invalid field definition")
	ErrDuplicateField     = errors.New("schema: duplicate field key")
	ErrUnknownRule        = errors.New("schema: unknown rule")
)
