package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/atone/alfred-youdao/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS lookups (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	language TEXT NOT NULL,
	url TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	items INTEGER NOT NULL,
	top_title TEXT NOT NULL DEFAULT '',
	fallback BOOLEAN NOT NULL,
	blocked_by TEXT NOT NULL DEFAULT '',
	proxy TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS lookups_created_at ON lookups (created_at);
`

// New connects to Postgres and ensures the history table exists.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, l *storage.Lookup) error {
	const query = `
	INSERT INTO lookups (
		id, query, language, url, status_code, items, top_title, fallback, blocked_by, proxy, duration_ms, created_at, error
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := b.pool.Exec(ctx, query,
		l.ID, l.Query, l.Language, l.URL, l.StatusCode, l.Items, l.TopTitle,
		l.Fallback, l.BlockedBy, l.Proxy, l.Duration.Milliseconds(), l.CreatedAt, l.Error,
	)
	if err != nil {
		return fmt.Errorf("postgres: save lookup %s: %w", l.ID, err)
	}
	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Lookup, error) {
	query := `SELECT id, query, language, url, status_code, items, top_title, fallback, blocked_by, proxy, duration_ms, created_at, error FROM lookups WHERE 1=1`
	args := []any{}
	param := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != "" {
		query += ` AND query = ` + param(filter.Query)
	}
	if filter.FallbackOnly {
		query += ` AND fallback = ` + param(true)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ` + param(*filter.Since)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ` + param(filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ` + param(filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query lookups: %w", err)
	}
	defer rows.Close()

	var results []*storage.Lookup
	for rows.Next() {
		var l storage.Lookup
		var durationMs int64

		err := rows.Scan(
			&l.ID, &l.Query, &l.Language, &l.URL, &l.StatusCode, &l.Items, &l.TopTitle,
			&l.Fallback, &l.BlockedBy, &l.Proxy, &durationMs, &l.CreatedAt, &l.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan lookup: %w", err)
		}

		l.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate lookups: %w", err)
	}

	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
