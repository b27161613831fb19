// Package sqlitestore provides a SQLite-backed repository.Store for local
// development and tests.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/infinai/infinai/internal/model"
	"github.com/infinai/infinai/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS subscribers (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    subscribed_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    clerk_id   TEXT PRIMARY KEY,
    email      TEXT NOT NULL DEFAULT '',
    first_name TEXT NOT NULL DEFAULT '',
    last_name  TEXT NOT NULL DEFAULT '',
    username   TEXT NOT NULL DEFAULT '',
    image_url  TEXT NOT NULL DEFAULT '',
    updated_at INTEGER NOT NULL
);
`

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store persists subscribers and users in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ repository.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// PathFromURL extracts the file path from a sqlite:// or file: URL.
func PathFromURL(databaseURL string) string {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return strings.TrimPrefix(databaseURL, "sqlite://")
	case strings.HasPrefix(databaseURL, "file:"):
		return strings.TrimPrefix(databaseURL, "file:")
	default:
		return databaseURL
	}
}

// Open opens a SQLite store at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := MemoryPath
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a distinct database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Ping checks the handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetSubscriberByEmail retrieves a subscriber by email address.
func (s *Store) GetSubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	var (
		sub model.Subscriber
		at  int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, email, subscribed_at FROM subscribers WHERE email = ?`, email,
	).Scan(&sub.ID, &sub.Email, &at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("get subscriber by email: %w", err)
	}
	sub.SubscribedAt = fromMillis(at)
	return &sub, nil
}

// CreateSubscriber inserts a new subscriber.
func (s *Store) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO subscribers (id, email, subscribed_at) VALUES (?, ?, ?)`,
		sub.ID, sub.Email, toMillis(sub.SubscribedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrSubscriberExists
		}
		return fmt.Errorf("create subscriber: %w", err)
	}
	return nil
}

// CountSubscribers returns the number of subscribers.
func (s *Store) CountSubscribers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT count(*) FROM subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}

// UpsertUser inserts or replaces the profile fields of a synced user.
func (s *Store) UpsertUser(ctx context.Context, user *model.SyncedUser) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (clerk_id, email, first_name, last_name, username, image_url, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(clerk_id) DO UPDATE SET
		   email = excluded.email,
		   first_name = excluded.first_name,
		   last_name = excluded.last_name,
		   username = excluded.username,
		   image_url = excluded.image_url,
		   updated_at = excluded.updated_at`,
		user.ExternalID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Username,
		user.ImageURL,
		toMillis(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUserByExternalID retrieves a synced user by identity provider id.
func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (*model.SyncedUser, error) {
	var (
		u  model.SyncedUser
		at int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT clerk_id, email, first_name, last_name, username, image_url, updated_at
		 FROM users WHERE clerk_id = ?`, externalID,
	).Scan(&u.ExternalID, &u.Email, &u.FirstName, &u.LastName, &u.Username, &u.ImageURL, &at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by external id: %w", err)
	}
	u.UpdatedAt = fromMillis(at)
	return &u, nil
}

// CountUsers returns the number of synced users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
