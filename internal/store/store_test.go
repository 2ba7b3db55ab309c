package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/dayboard/internal/database"
	"github.com/dukerupert/dayboard/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(email, "", "", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
