package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// Dialect names accepted by NewBunDB.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// NewBunDB wraps sqlDB with the bun dialect named by dialect.
func NewBunDB(sqlDB *sql.DB, dialect string) (*bun.DB, error) {
	if sqlDB == nil {
		return nil, ErrDatabaseRequired
	}
	d, err := resolveDialect(dialect)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqlDB, d), nil
}

func resolveDialect(name string) (schema.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DialectSQLite, "sqlite3":
		return sqlitedialect.New(), nil
	case DialectPostgres, "postgresql", "pg":
		return pgdialect.New(), nil
	default:
		return nil, fmt.Errorf("storage: unsupported dialect %q", name)
	}
}
