// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"blogpress/internal/database"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser inserts a user for article tests. Removed in t.Cleanup().
func testUser(t *testing.T, db *sql.DB, username string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO users (username, email, full_name, password_hash)
		VALUES ($1, $1 || '@test.local', 'Test User', 'x')
		RETURNING id
	`, username).Scan(&id)
	if err != nil {
		t.Fatalf("insert test user: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM articles WHERE author_id = $1", id)
		db.Exec("DELETE FROM users WHERE id = $1", id)
	})
	return id
}

// testCategory inserts a category for article tests. Removed in t.Cleanup().
func testCategory(t *testing.T, db *sql.DB, name string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		t.Fatalf("insert test category: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM categories WHERE id = $1", id)
	})
	return id
}

// cleanTags removes the named tag rows. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM tags WHERE name = $1", name)
	}
}
