// Package identity provides role membership and password hashing, the
// capabilities an identity framework would normally own. Handlers depend on
// the Manager interface so tests can substitute a double.
package identity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Manager is the identity capability the handlers depend on.
type Manager interface {
	// ListRoles returns all role names sorted ascending.
	ListRoles(ctx context.Context) ([]string, error)
	// IsInRole reports whether the user holds the named role.
	IsInRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
	// AddToRole grants the named role. Granting an already-held role is a no-op.
	AddToRole(ctx context.Context, userID uuid.UUID, role string) error
	// RemoveFromRole revokes the named role. Revoking an absent role is a no-op.
	RemoveFromRole(ctx context.Context, userID uuid.UUID, role string) error
	// HashPassword returns a bcrypt hash of the password.
	HashPassword(password string) (string, error)
	// CheckPassword verifies a plaintext password against a stored hash.
	CheckPassword(hash, password string) bool
}

// Store implements Manager against the roles and user_roles tables.
type Store struct {
	db *sql.DB
}

// NewStore creates an identity Store with the given database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListRoles returns all role names sorted ascending.
func (s *Store) ListRoles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM roles ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// IsInRole reports whether the user holds the named role.
func (s *Store) IsInRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	var inRole bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1 AND r.name = $2
		)
	`, userID, role).Scan(&inRole)
	if err != nil {
		return false, fmt.Errorf("is in role: %w", err)
	}
	return inRole, nil
}

// AddToRole grants the named role. ON CONFLICT makes repeated grants no-ops.
func (s *Store) AddToRole(ctx context.Context, userID uuid.UUID, role string) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, userID, role)
	if err != nil {
		return fmt.Errorf("add to role: %w", err)
	}
	// A zero-row insert without conflict means the role itself is unknown.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if known, kerr := s.roleExists(ctx, role); kerr == nil && !known {
			return fmt.Errorf("add to role: unknown role %q", role)
		}
	}
	return nil
}

// RemoveFromRole revokes the named role. Removing an absent membership is a no-op.
func (s *Store) RemoveFromRole(ctx context.Context, userID uuid.UUID, role string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM user_roles ur
		USING roles r
		WHERE r.id = ur.role_id AND ur.user_id = $1 AND r.name = $2
	`, userID, role)
	if err != nil {
		return fmt.Errorf("remove from role: %w", err)
	}
	return nil
}

// HashPassword returns a bcrypt hash of the password.
func (s *Store) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a stored bcrypt hash.
func (s *Store) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *Store) roleExists(ctx context.Context, role string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`, role).Scan(&exists)
	return exists, err
}
