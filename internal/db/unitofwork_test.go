package db_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/freenote/freenote/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openUoW(t *testing.T) (*db.SQLiteUnitOfWork, *sql.DB) {
	t.Helper()
	database, err := db.OpenDB(db.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database), database
}

func insertUser(ctx context.Context, tx db.DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO users (user_id, notes, created_at) VALUES (?, '{}', 'now')`, id)
	return err
}

func userExists(t *testing.T, database *sql.DB, id string) bool {
	t.Helper()
	var got string
	err := database.QueryRow(`SELECT user_id FROM users WHERE user_id = ?`, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow, database := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertUser(ctx, tx, "u1")
	})
	require.NoError(t, err)

	assert.True(t, userExists(t, database, "u1"), "row should exist after commit")
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow, database := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertUser(ctx, tx, "u2"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")

	assert.False(t, userExists(t, database, "u2"), "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow, database := openUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertUser(ctx, tx, "u3")
			panic("boom")
		})
	})

	assert.False(t, userExists(t, database, "u3"), "row should not exist after panic rollback")
}
