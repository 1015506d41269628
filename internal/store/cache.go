package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CachedDocument is a published document as last fetched by the storefront.
type CachedDocument struct {
	Name      string
	Body      []byte
	FetchedAt time.Time
}

// PutDocument stores or replaces a cached document.
func PutDocument(ctx context.Context, db *sql.DB, name string, body []byte, fetchedAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO document_cache (name, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		name, body, fetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("caching %s: %w", name, err)
	}
	return nil
}

// GetDocument returns a cached document, or nil if none was stored.
func GetDocument(ctx context.Context, db *sql.DB, name string) (*CachedDocument, error) {
	doc := &CachedDocument{Name: name}
	err := db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM document_cache WHERE name = ?`, name,
	).Scan(&doc.Body, &doc.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached %s: %w", name, err)
	}
	return doc, nil
}
