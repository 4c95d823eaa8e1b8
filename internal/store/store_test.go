package store

import (
	"database/sql"
	"testing"

	"github.com/transitlk/notifier/internal/database"
)

// setupTestDB opens an in-memory database. The pool is pinned to a single
// connection because each sqlite :memory: connection is its own database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
