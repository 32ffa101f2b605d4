package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(Memory)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Run migrations a second time; should succeed without error.
	err := Migrate(db)
	require.NoError(t, err)

	// Third time for good measure.
	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesUsersTable(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.Query(`SELECT name FROM pragma_table_info('users') ORDER BY cid`)
	require.NoError(t, err)
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"user_id", "email", "notes_id_counter", "notes", "created_at", "updated_at"}, cols)
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, "idx_users_email").Scan(&name)
	require.NoError(t, err)
}

func TestMigrate_CounterDefaultsToTwo(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO users (user_id, notes, created_at) VALUES ('u', '{}', 'now')`)
	require.NoError(t, err)

	var counter int
	require.NoError(t, db.QueryRow(`SELECT notes_id_counter FROM users WHERE user_id = 'u'`).Scan(&counter))
	assert.Equal(t, 2, counter)
}

func TestOpenDB_File(t *testing.T) {
	path := t.TempDir() + "/nested/freenote.db"

	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}
