package store

import (
	"context"
	"os"
	"testing"

	"obrolin/server/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
)

// testPool connects to the database named by DATABASE_URL and ensures the
// schema exists. Tests that need it are integration tests and skip when the
// variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("pgxpool.New failed: %v", err)
	}
	t.Cleanup(pool.Close)

	database.Pool = pool
	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	return pool
}

// seedUser inserts a user row directly and returns its id.
func seedUser(t *testing.T, pool *pgxpool.Pool, token, name string) string {
	t.Helper()

	users := NewUserStore(pool)
	user, err := users.UpsertByToken(context.Background(), token, token+"@example.com", name, "")
	if err != nil {
		t.Fatalf("seed user %s failed: %v", name, err)
	}
	return user.ID
}
