package handler

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/dukerupert/dayboard/internal/auth"
	"github.com/dukerupert/dayboard/internal/database"
	"github.com/dukerupert/dayboard/internal/model"
	"github.com/dukerupert/dayboard/internal/store"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u, err := store.NewUserStore(db).Create(email, "", "", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// asUser attaches an authenticated identity the way RequireAuth does.
func asUser(r *http.Request, userID int64) *http.Request {
	ctx := auth.WithAuth(r.Context(), auth.AuthContext{UserID: userID, Role: model.RoleUser})
	return r.WithContext(ctx)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

