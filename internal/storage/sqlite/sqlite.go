package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atone/alfred-youdao/internal/storage"
	_ "modernc.org/sqlite"
)

var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS lookups (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	language TEXT NOT NULL,
	url TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	items INTEGER NOT NULL,
	top_title TEXT,
	fallback BOOLEAN NOT NULL,
	blocked_by TEXT,
	proxy TEXT,
	duration_ms INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	error TEXT
);
CREATE INDEX IF NOT EXISTS lookups_created_at ON lookups (created_at);
`

// New opens (creating if needed) an SQLite history database.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, l *storage.Lookup) error {
	const query = `
	INSERT INTO lookups (
		id, query, language, url, status_code, items, top_title, fallback, blocked_by, proxy, duration_ms, created_at, error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := b.db.ExecContext(ctx, query,
		l.ID, l.Query, l.Language, l.URL, l.StatusCode, l.Items, l.TopTitle,
		l.Fallback, l.BlockedBy, l.Proxy, l.Duration.Milliseconds(), l.CreatedAt, l.Error,
	)
	if err != nil {
		return fmt.Errorf("sqlite: save lookup %s: %w", l.ID, err)
	}
	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Lookup, error) {
	query := `SELECT id, query, language, url, status_code, items, top_title, fallback, blocked_by, proxy, duration_ms, created_at, error FROM lookups WHERE 1=1`
	args := []any{}

	if filter.Query != "" {
		query += ` AND query = ?`
		args = append(args, filter.Query)
	}
	if filter.FallbackOnly {
		query += ` AND fallback = ?`
		args = append(args, true)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY created_at DESC`

	// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query lookups: %w", err)
	}
	defer rows.Close()

	var results []*storage.Lookup
	for rows.Next() {
		var l storage.Lookup
		var topTitle, blockedBy, proxyURL, lookupErr sql.NullString
		var durationMs int64

		err := rows.Scan(
			&l.ID, &l.Query, &l.Language, &l.URL, &l.StatusCode, &l.Items, &topTitle,
			&l.Fallback, &blockedBy, &proxyURL, &durationMs, &l.CreatedAt, &lookupErr,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan lookup: %w", err)
		}

		l.TopTitle = topTitle.String
		l.BlockedBy = blockedBy.String
		l.Proxy = proxyURL.String
		l.Error = lookupErr.String
		l.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate lookups: %w", err)
	}

	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
