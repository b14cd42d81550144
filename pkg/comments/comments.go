// Package comments is the persistent comment thread attached to
// generated clips. The store is Postgres via pgx; when no database is
// configured the package degrades gracefully: reads come back empty and
// writes fail with ErrNotConfigured.
package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotConfigured is returned by writes when no database is configured.
var ErrNotConfigured = errors.New("comments: store is not configured (set DATABASE_URL)")

// DefaultAuthor is used when the author name is blank.
const DefaultAuthor = "Anonymous"

// Comment is one entry in a clip's thread. Append-only from this
// system's point of view.
type Comment struct {
	ID         string    `json:"id"`
	ClipID     string    `json:"clip_id"`
	Content    string    `json:"content"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store reads and appends comments. A nil Store is valid and means
// "unconfigured".
type Store struct {
	db *pgxpool.Pool
}

// Open connects to the database. An empty URL yields a nil store, which
// every method tolerates.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("comments: connect: %w", err)
	}
	return &Store{db: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s != nil && s.db != nil {
		s.db.Close()
	}
}

// Configured reports whether a database is available.
func (s *Store) Configured() bool {
	return s != nil && s.db != nil
}

// EnsureSchema creates the comments table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS comments (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			clip_id     TEXT NOT NULL,
			content     TEXT NOT NULL,
			author_name TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS comments_clip_id_idx ON comments (clip_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("comments: create schema: %w", err)
	}
	return nil
}

// List returns a clip's comments ordered by creation time ascending.
// Unconfigured stores return an empty list, not an error, so the thread
// widget can render as simply empty.
func (s *Store) List(ctx context.Context, clipID string) ([]Comment, error) {
	if !s.Configured() {
		return []Comment{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, clip_id, content, COALESCE(author_name, $2), created_at
		FROM comments
		WHERE clip_id = $1
		ORDER BY created_at ASC`,
		clipID, DefaultAuthor,
	)
	if err != nil {
		return nil, fmt.Errorf("comments: list: %w", err)
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ClipID, &c.Content, &c.AuthorName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("comments: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("comments: list: %w", err)
	}
	return out, nil
}

// Add appends a comment to a clip's thread and returns the stored row.
// Content is trimmed and must be non-empty; a blank author becomes
// DefaultAuthor.
func (s *Store) Add(ctx context.Context, clipID, content, authorName string) (Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, errors.New("comments: content is empty")
	}
	author := strings.TrimSpace(authorName)
	if author == "" {
		author = DefaultAuthor
	}
	if !s.Configured() {
		return Comment{}, ErrNotConfigured
	}

	var c Comment
	err := s.db.QueryRow(ctx, `
		INSERT INTO comments (clip_id, content, author_name)
		VALUES ($1, $2, $3)
		RETURNING id, clip_id, content, author_name, created_at`,
		clipID, content, author,
	).Scan(&c.ID, &c.ClipID, &c.Content, &c.AuthorName, &c.CreatedAt)
	if err != nil {
		return Comment{}, fmt.Errorf("comments: add: %w", err)
	}
	return c, nil
}
