package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates a default admin user (with the Admin role) and a couple of
// starter categories if the database is empty. The admin is prompted to
// set up 2FA on first login (totp_enabled = false).
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	// Insert default admin user. 2FA is not enabled, they must set it up
	// on first login.
	var adminID string
	err = tx.QueryRow(`
		INSERT INTO users (username, email, full_name, password_hash, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "admin", "admin@blogpress.local", "Administrator", string(hash), false).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = 'Admin'
	`, adminID)
	if err != nil {
		return fmt.Errorf("seed admin role: %w", err)
	}

	// Starter categories so the article form has something to offer.
	for _, name := range []string{"General", "Announcements"} {
		if _, err := tx.Exec(`INSERT INTO categories (name) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"username", "admin",
		"password", "admin",
	)

	return nil
}
