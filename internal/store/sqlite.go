package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/freenote/freenote/internal/db"
	"github.com/freenote/freenote/internal/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore keeps documents in the users table created by db.Migrate.
type SQLiteStore struct {
	db  *sql.DB
	uow db.UnitOfWork
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:  database,
		uow: db.NewSQLiteUnitOfWork(database),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	database, err := db.OpenDB(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(database), nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) AddUser(ctx context.Context, userID, email string) error {
	notes, err := json.Marshal(DefaultTree())
	if err != nil {
		return fmt.Errorf("encoding default tree: %w", err)
	}
	now := s.now().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, email, notes_id_counter, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, email, FirstFreeID, string(notes), now, now)
	if err != nil {
		if isKeyViolation(err) {
			return fmt.Errorf("user %s: %w", userID, ErrUserExists)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// isKeyViolation reports a duplicate user_id. The column is the primary
// key, so SQLite reports it with the primary-key extended code.
func isKeyViolation(err error) bool {
	var sqErr *sqlite.Error
	if !errors.As(err, &sqErr) {
		return false
	}
	switch sqErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

func (s *SQLiteStore) UserExists(ctx context.Context, userID string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return false, fmt.Errorf("checking user: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Tree(ctx context.Context, userID string) (*domain.NoteObject, error) {
	doc, err := s.load(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return doc.root, nil
}

func (s *SQLiteStore) Note(ctx context.Context, userID string, id int) (*domain.NoteObject, error) {
	doc, err := s.load(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return doc.note(id)
}

func (s *SQLiteStore) Modify(ctx context.Context, userID string, id int, patch Patch) error {
	return s.edit(ctx, userID, func(doc *document) error {
		return doc.modify(id, patch)
	})
}

func (s *SQLiteStore) Create(ctx context.Context, userID string, parent int, kind domain.Kind) (int, error) {
	var id int
	err := s.edit(ctx, userID, func(doc *document) error {
		var err error
		id, err = doc.create(parent, kind)
		return err
	})
	return id, err
}

func (s *SQLiteStore) Delete(ctx context.Context, userID string, id int) error {
	return s.edit(ctx, userID, func(doc *document) error {
		return doc.delete(id)
	})
}

func (s *SQLiteStore) edit(ctx context.Context, userID string, fn func(*document) error) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		doc, err := s.load(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		return s.save(ctx, tx, userID, doc)
	})
}

func (s *SQLiteStore) load(ctx context.Context, q db.DBTX, userID string) (*document, error) {
	var (
		raw     string
		counter int
	)
	err := q.QueryRowContext(ctx,
		`SELECT notes, notes_id_counter FROM users WHERE user_id = ?`, userID,
	).Scan(&raw, &counter)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}
	var root *domain.NoteObject
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return nil, fmt.Errorf("decoding notes: %w", err)
	}
	return &document{root: root, counter: counter}, nil
}

func (s *SQLiteStore) save(ctx context.Context, q db.DBTX, userID string, doc *document) error {
	raw, err := json.Marshal(doc.root)
	if err != nil {
		return fmt.Errorf("encoding notes: %w", err)
	}
	_, err = q.ExecContext(ctx,
		`UPDATE users SET notes = ?, notes_id_counter = ?, updated_at = ? WHERE user_id = ?`,
		string(raw), doc.counter, s.now().Format(time.RFC3339), userID)
	if err != nil {
		return fmt.Errorf("saving notes: %w", err)
	}
	return nil
}
