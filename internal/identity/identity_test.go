package identity

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"blogpress/internal/database"
	"blogpress/internal/models"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens the integration database, skipping when unreachable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser inserts a user and removes it (with role memberships) on cleanup.
func testUser(t *testing.T, db *sql.DB, username string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO users (username, email, full_name, password_hash)
		VALUES ($1, $1 || '@test.local', 'Identity Test', 'x')
		RETURNING id
	`, username).Scan(&id)
	if err != nil {
		t.Fatalf("insert test user: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM users WHERE id = $1", id)
	})
	return id
}

func TestStore_ListRoles(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	roles, err := s.ListRoles(context.Background())
	if err != nil {
		t.Fatalf("ListRoles: %v", err)
	}

	// The migration seeds Admin and User; more may exist.
	seen := make(map[string]bool, len(roles))
	for _, r := range roles {
		seen[r] = true
	}
	if !seen[models.RoleAdmin] || !seen["User"] {
		t.Errorf("ListRoles = %v, want it to include Admin and User", roles)
	}

	for i := 1; i < len(roles); i++ {
		if roles[i-1] > roles[i] {
			t.Errorf("roles not sorted ascending: %v", roles)
			break
		}
	}
}

func TestStore_RoleMembership(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	ctx := context.Background()

	userID := testUser(t, db, "identity-membership")

	isAdmin, err := s.IsInRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("IsInRole: %v", err)
	}
	if isAdmin {
		t.Fatal("fresh user should not be an admin")
	}

	if err := s.AddToRole(ctx, userID, models.RoleAdmin); err != nil {
		t.Fatalf("AddToRole: %v", err)
	}
	// Granting an already-held role is a no-op, not an error.
	if err := s.AddToRole(ctx, userID, models.RoleAdmin); err != nil {
		t.Fatalf("AddToRole repeat: %v", err)
	}

	isAdmin, err = s.IsInRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("IsInRole after add: %v", err)
	}
	if !isAdmin {
		t.Fatal("user should hold the Admin role after AddToRole")
	}

	if err := s.RemoveFromRole(ctx, userID, models.RoleAdmin); err != nil {
		t.Fatalf("RemoveFromRole: %v", err)
	}
	// Revoking an absent role is also a no-op.
	if err := s.RemoveFromRole(ctx, userID, models.RoleAdmin); err != nil {
		t.Fatalf("RemoveFromRole repeat: %v", err)
	}

	isAdmin, err = s.IsInRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("IsInRole after remove: %v", err)
	}
	if isAdmin {
		t.Fatal("user should not hold the Admin role after RemoveFromRole")
	}
}

func TestStore_AddToRole_UnknownRole(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	userID := testUser(t, db, "identity-unknown-role")

	if err := s.AddToRole(context.Background(), userID, "NoSuchRole"); err == nil {
		t.Error("expected an error for an unknown role name")
	}
}

func TestStore_PasswordHashing(t *testing.T) {
	s := &Store{}

	hash, err := s.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !s.CheckPassword(hash, "s3cret-pass") {
		t.Error("CheckPassword rejected the correct password")
	}
	if s.CheckPassword(hash, "wrong-pass") {
		t.Error("CheckPassword accepted a wrong password")
	}
}
