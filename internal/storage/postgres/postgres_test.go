package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/atone/alfred-youdao/internal/storage"
	"github.com/google/uuid"
)

func TestPostgresBackend(t *testing.T) {
	dsn := os.Getenv("YOUDAO_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("Skipping Postgres backend test: YOUDAO_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	b, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create Postgres backend: %v", err)
	}
	defer b.Close()

	now := time.Now().UTC()
	query := "pg-" + uuid.NewString()

	l := &storage.Lookup{
		ID:         uuid.NewString(),
		Query:      query,
		Language:   "eng",
		URL:        "https://mobile.youdao.com/dict?le=eng&q=" + query,
		StatusCode: 200,
		Items:      3,
		TopTitle:   "测试",
		Proxy:      "http://127.0.0.1:3128",
		Duration:   50 * time.Millisecond,
		CreatedAt:  now,
	}

	if err := b.Save(ctx, l); err != nil {
		t.Fatalf("Failed to save lookup: %v", err)
	}

	results, err := b.Query(ctx, storage.Filter{Query: query})
	if err != nil {
		t.Fatalf("Failed to query lookups: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 lookup, got %d", len(results))
	}

	got := results[0]
	if got.ID != l.ID || got.TopTitle != l.TopTitle || got.Items != l.Items || got.Proxy != l.Proxy {
		t.Errorf("Expected %+v, got %+v", l, got)
	}
	if got.Duration.Milliseconds() != l.Duration.Milliseconds() {
		t.Errorf("Expected Duration %v, got %v", l.Duration, got.Duration)
	}
	if got.CreatedAt.Unix() != l.CreatedAt.Unix() {
		t.Errorf("Expected CreatedAt %v, got %v", l.CreatedAt, got.CreatedAt)
	}

	past := now.Add(-1 * time.Hour)
	recent, err := b.Query(ctx, storage.Filter{Query: query, Since: &past, Limit: 5})
	if err != nil {
		t.Fatalf("Failed to query with Since: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Expected 1 recent lookup, got %d", len(recent))
	}
}
