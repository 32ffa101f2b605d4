package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/freenote/freenote/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS users (
	user_id          TEXT PRIMARY KEY NOT NULL,
	email            TEXT NOT NULL DEFAULT '',
	notes_id_counter INT NOT NULL DEFAULT 2,
	notes            JSONB NOT NULL
)`

// PostgresStore keeps documents in a JSONB column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to dsn and creates the users table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating users table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) AddUser(ctx context.Context, userID, email string) error {
	notes, err := json.Marshal(DefaultTree())
	if err != nil {
		return fmt.Errorf("encoding default tree: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (user_id, email, notes_id_counter, notes) VALUES ($1, $2, $3, $4)`,
		userID, email, FirstFreeID, string(notes))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("user %s: %w", userID, ErrUserExists)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Tree(ctx context.Context, userID string) (*domain.NoteObject, error) {
	doc, err := s.load(ctx, s.pool, userID, false)
	if err != nil {
		return nil, err
	}
	return doc.root, nil
}

func (s *PostgresStore) Note(ctx context.Context, userID string, id int) (*domain.NoteObject, error) {
	doc, err := s.load(ctx, s.pool, userID, false)
	if err != nil {
		return nil, err
	}
	return doc.note(id)
}

func (s *PostgresStore) Modify(ctx context.Context, userID string, id int, patch Patch) error {
	return s.edit(ctx, userID, func(doc *document) error {
		return doc.modify(id, patch)
	})
}

func (s *PostgresStore) Create(ctx context.Context, userID string, parent int, kind domain.Kind) (int, error) {
	var id int
	err := s.edit(ctx, userID, func(doc *document) error {
		var err error
		id, err = doc.create(parent, kind)
		return err
	})
	return id, err
}

func (s *PostgresStore) Delete(ctx context.Context, userID string, id int) error {
	return s.edit(ctx, userID, func(doc *document) error {
		return doc.delete(id)
	})
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) edit(ctx context.Context, userID string, fn func(*document) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		doc, err := s.load(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		raw, err := json.Marshal(doc.root)
		if err != nil {
			return fmt.Errorf("encoding notes: %w", err)
		}
		_, err = tx.Exec(ctx,
			`UPDATE users SET notes = $1, notes_id_counter = $2 WHERE user_id = $3`,
			string(raw), doc.counter, userID)
		if err != nil {
			return fmt.Errorf("saving notes: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) load(ctx context.Context, q querier, userID string, lock bool) (*document, error) {
	query := `SELECT notes, notes_id_counter FROM users WHERE user_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var (
		raw     []byte
		counter int
	)
	err := q.QueryRow(ctx, query, userID).Scan(&raw, &counter)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}
	var root *domain.NoteObject
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("decoding notes: %w", err)
	}
	return &document{root: root, counter: counter}, nil
}
