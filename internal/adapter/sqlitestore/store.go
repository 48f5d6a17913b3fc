// Package sqlitestore keeps posts in an SQLite database, as an alternative
// to the CSV file for deployments that share the store between processes.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/allin/internal/domain"
	"github.com/pscheid92/allin/internal/platform/retry"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	pseudonym TEXT NOT NULL,
	story     TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	sentiment REAL NOT NULL,
	tone      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_timestamp ON posts(timestamp);
`

var busyPolicy = retry.Policy{
	MaxAttempts:    5,
	InitialBackoff: 20 * time.Millisecond,
	MaxBackoff:     500 * time.Millisecond,
}

// Store implements domain.PostStore on SQLite.
type Store struct {
	db    *sql.DB
	clock clockwork.Clock
}

// New opens (or creates) the database at path and applies the schema.
// The caller should call Close when the store is no longer needed.
func New(ctx context.Context, path string, clock clockwork.Clock) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, clock: clock}, nil
}

// OpenExisting is New for a database that must already exist. A missing
// file yields an error wrapping os.ErrNotExist and nothing is created.
func OpenExisting(ctx context.Context, path string, clock clockwork.Clock) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return New(ctx, path, clock)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts one post, retrying while another process holds the write lock.
func (s *Store) Append(ctx context.Context, post domain.Post) error {
	policy := busyPolicy
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.WarnContext(ctx, "Store busy, retrying append", "attempt", attempt, "backoff", backoff, "error", err)
	}

	err := retry.DoVoid(ctx, s.clock, policy, isBusy, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO posts (pseudonym, story, timestamp, sentiment, tone)
			VALUES (?, ?, ?, ?, ?)`,
			post.Author,
			post.Text,
			domain.FormatTimestamp(post.Timestamp),
			post.Sentiment,
			string(post.Tone),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// List returns all posts in insertion order.
func (s *Store) List(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pseudonym, story, timestamp, sentiment, tone
		FROM posts
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var (
			p    domain.Post
			ts   string
			tone string
		)
		if err := rows.Scan(&p.Author, &p.Text, &ts, &p.Sentiment, &tone); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		if p.Timestamp, err = domain.ParseTimestamp(ts); err != nil {
			return nil, err
		}
		p.Tone = domain.Tone(tone)
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isBusy(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	default:
		return false
	}
}

var _ domain.PostStore = (*Store)(nil)
