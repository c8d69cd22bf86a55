package blob

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLite keeps photos in the photos table of the main database. It suits
// single-node deployments; the API serves them under baseURL.
type SQLite struct {
	db      *sql.DB
	baseURL string
}

// NewSQLite returns a Storage backed by the photos table.
func NewSQLite(db *sql.DB, baseURL string) *SQLite {
	return &SQLite{db: db, baseURL: baseURL}
}

// Put stores a photo, replacing any previous object under the same key.
func (s *SQLite) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if !ValidKey(key) {
		return "", fmt.Errorf("storing photo: invalid key %q", key)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO photos (key, data, content_type) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, content_type = excluded.content_type`,
		key, data, contentType,
	)
	if err != nil {
		return "", fmt.Errorf("storing photo: %w", err)
	}
	return joinURL(s.baseURL, key), nil
}

// Get returns a stored photo and its content type.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, string, error) {
	var data []byte
	var contentType string
	err := s.db.QueryRowContext(ctx,
		`SELECT data, content_type FROM photos WHERE key = ?`, key,
	).Scan(&data, &contentType)
	if err == sql.ErrNoRows {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting photo: %w", err)
	}
	return data, contentType, nil
}

// Delete removes a photo.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	return nil
}
