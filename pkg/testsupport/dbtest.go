package testsupport

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// NewNamedSQLiteMemoryDB opens an in-memory database private to name, so
// tests in one package do not see each other's tables. A single connection
// is kept so transactions and reads share the same view.
func NewNamedSQLiteMemoryDB(name string) (*sql.DB, error) {
	cleaned := strings.NewReplacer("/", "_", " ", "_").Replace(strings.TrimSpace(name))
	if cleaned == "" {
		cleaned = "fieldkit"
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared", cleaned))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
