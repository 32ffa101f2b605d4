package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent so the
// whole list is replayed on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Each user's whole tree is one JSON document. notes_id_counter is the
// next id to hand out; ids 0 and 1 belong to the default tree.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id          TEXT PRIMARY KEY NOT NULL,
		email            TEXT NOT NULL DEFAULT '',
		notes_id_counter INTEGER NOT NULL DEFAULT 2,
		notes            TEXT NOT NULL,
		created_at       TEXT NOT NULL
	)`,
	`ALTER TABLE users ADD COLUMN updated_at TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
}
