package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spitzerl/workshop-b3-api/internal/models"
)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// testUser inserts a user and returns its id.
func testUser(t *testing.T, st *Store, email string) int64 {
	t.Helper()
	user := &models.User{Name: "Test", Email: email, PasswordHash: "hash"}
	if err := st.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSQLiteDSNCarriesPragmas(t *testing.T) {
	dsn, err := sqliteDSN("/tmp/x.db")
	if err != nil {
		t.Fatalf("dsn: %v", err)
	}
	if !strings.HasPrefix(dsn, "file:///tmp/x.db?") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if !strings.Contains(dsn, "foreign_keys%281%29") {
		t.Fatalf("expected foreign_keys pragma in %q", dsn)
	}
}

func TestStorePing(t *testing.T) {
	st := testStore(t)
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := st.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error after close")
	}
}
