package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atone/alfred-youdao/internal/history"
	"github.com/atone/alfred-youdao/internal/storage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("YOUDAO_CONFIG", "")
	t.Setenv("YOUDAO_HISTORY_DSN", "")
	t.Setenv("YOUDAO_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// seed writes three lookups, one per hour, oldest first.
func seed(t *testing.T) string {
	t.Helper()
	dsn := "json://" + filepath.Join(t.TempDir(), "history.jsonl")
	store, err := history.Open(context.Background(), dsn)
	require.NoError(t, err)
	defer store.Close()

	now := time.Now()
	for i, l := range []*storage.Lookup{
		{ID: "a", Query: "hello", Language: "eng", StatusCode: 200, Items: 3, TopTitle: "你好"},
		{ID: "b", Query: "xyzzy", Language: "eng", StatusCode: 200, Fallback: true},
		{ID: "c", Query: "hello", Language: "eng", StatusCode: 200, Items: 3, TopTitle: "你好"},
	} {
		l.CreatedAt = now.Add(time.Duration(i-2) * time.Hour)
		require.NoError(t, store.Save(context.Background(), l))
	}
	return dsn
}

func ids(t *testing.T, out string) []string {
	t.Helper()
	var lookups []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &lookups), out)
	got := make([]string, 0, len(lookups))
	for _, l := range lookups {
		got = append(got, l["id"].(string))
	}
	return got
}

func TestHistory_JSON(t *testing.T) {
	dsn := seed(t)

	out, err := execute(t, "--history", dsn, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(t, out))
}

func TestHistory_LimitAndOffset(t *testing.T) {
	dsn := seed(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"limit", []string{"--limit", "2"}, []string{"c", "b"}},
		{"offset", []string{"--offset", "1"}, []string{"b", "a"}},
		{"page", []string{"--limit", "1", "--offset", "1"}, []string{"b"}},
		{"past end", []string{"--offset", "5"}, []string{}},
		{"unbounded", []string{"--limit", "0", "--offset", "2"}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--history", dsn, "--format", "json"}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(t, out))
		})
	}
}

func TestHistory_Filters(t *testing.T) {
	dsn := seed(t)

	out, err := execute(t, "--history", dsn, "--failed")
	require.NoError(t, err)
	assert.Contains(t, out, "xyzzy")
	assert.NotContains(t, out, "hello")

	out, err = execute(t, "--history", dsn, "--format", "json", "--query", "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(t, out))

	out, err = execute(t, "--history", dsn, "--format", "json", "--since", "90m")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, ids(t, out))
}

func TestHistory_Summary(t *testing.T) {
	dsn := seed(t)

	out, err := execute(t, "--history", dsn, "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Lookups:     3")
	assert.Contains(t, out, "Fallbacks:   1")
	assert.Contains(t, out, "hello: 2")

	out, err = execute(t, "--history", dsn, "--summary", "--format", "json")
	require.NoError(t, err)
	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.EqualValues(t, 3, summary["total_lookups"])
}

func TestHistory_StoreFromEnvironment(t *testing.T) {
	dsn := seed(t)

	var out bytes.Buffer
	t.Setenv("YOUDAO_CONFIG", "")
	t.Setenv("YOUDAO_LOG_LEVEL", "error")
	t.Setenv("YOUDAO_HISTORY_DSN", dsn)
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--format", "json"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"c", "b", "a"}, ids(t, out.String()))
}

func TestHistory_Errors(t *testing.T) {
	dsn := "json://" + filepath.Join(t.TempDir(), "h.jsonl")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no store", nil, "no store configured"},
		{"unknown format", []string{"--history", dsn, "--format", "xml"}, "unknown format"},
		{"negative offset", []string{"--history", dsn, "--offset=-1"}, "must not be negative"},
		{"bad log level", []string{"--history", dsn, "--log-level", "loud"}, "log"},
		{"positional args", []string{"hello"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
