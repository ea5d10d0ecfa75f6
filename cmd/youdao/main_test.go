package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div id="fanyi_contentWrp"><p>hello</p><p>你好</p></div>
<div id="ec_contentWrp"><span class="ph"><span class="phonetic">[həˈləʊ]</span></span>
<ul><li>int. 喂；哈罗</li></ul></div>
</body></html>`

// dictServer serves the full entry for "hello", an empty page for "xyzzy"
// and a bare translation echoing the query for anything else.
func dictServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		switch q {
		case "hello":
			_, _ = w.Write([]byte(page))
		case "xyzzy":
			_, _ = w.Write([]byte("<html><body></body></html>"))
		default:
			_, _ = fmt.Fprintf(w, `<html><body><div id="fanyi_contentWrp"><p>%[1]s</p><p>译 %[1]s</p></div></body></html>`,
				html.EscapeString(q))
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("YOUDAO_CONFIG", "")
	t.Setenv("YOUDAO_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

type document struct {
	Items []map[string]any `json:"items"`
}

func decode(t *testing.T, out string) document {
	t.Helper()
	var doc document
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	return doc
}

func TestRoot_NoQuery(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"items\": []\n}\n", out)
}

func TestRoot_Lookup(t *testing.T) {
	ts := dictServer(t)
	t.Setenv("YOUDAO_ENDPOINTS_DICT", ts.URL+"/dict")

	out, err := execute(t, "Hello")
	require.NoError(t, err)

	doc := decode(t, out)
	require.Len(t, doc.Items, 3)
	assert.Equal(t, "你好", doc.Items[0]["title"])
	assert.Equal(t, "hello", doc.Items[0]["subtitle"])
	assert.Equal(t, "[həˈləʊ]", doc.Items[1]["title"])
	assert.Equal(t, "int. 喂；哈罗", doc.Items[2]["title"])
	assert.Equal(t, "https://www.youdao.com/w/hello", doc.Items[0]["quicklookurl"])
}

func TestRoot_EveryArgumentIsQueryText(t *testing.T) {
	ts := dictServer(t)
	t.Setenv("YOUDAO_ENDPOINTS_DICT", ts.URL+"/dict")

	tests := []struct {
		name  string
		args  []string
		query string
	}{
		{"history", []string{"history"}, "history"},
		{"help", []string{"help"}, "help"},
		{"completion", []string{"completion"}, "completion"},
		{"suffix", []string{"-ing"}, "-ing"},
		{"long help flag", []string{"--help"}, "--help"},
		{"short help flag", []string{"-h"}, "-h"},
		{"flag-like setting", []string{"--timeout=1s"}, "--timeout=1s"},
		{"words", []string{"help", "me"}, "help me"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)

			doc := decode(t, out)
			require.Len(t, doc.Items, 1, out)
			assert.Equal(t, "译 "+tt.query, doc.Items[0]["title"])
			assert.Equal(t, tt.query, doc.Items[0]["subtitle"])
			assert.Equal(t, true, doc.Items[0]["valid"])
		})
	}
}

func TestRoot_UnreachableServiceStillSucceeds(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()
	t.Setenv("YOUDAO_ENDPOINTS_DICT", ts.URL+"/dict")
	t.Setenv("YOUDAO_TIMEOUT", "2s")

	out, err := execute(t, "hello")
	require.NoError(t, err)

	doc := decode(t, out)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "有道也翻译不出来了", doc.Items[0]["title"])
	assert.Equal(t, false, doc.Items[0]["valid"])
}

func TestRoot_InvalidConfig(t *testing.T) {
	t.Setenv("YOUDAO_FINGERPRINT", "netscape")
	_, err := execute(t, "hello")
	assert.ErrorContains(t, err, "unknown profile")
}

func TestRoot_ConfigFile(t *testing.T) {
	ts := dictServer(t)
	path := filepath.Join(t.TempDir(), "youdao.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoints:\n  dict: "+ts.URL+"/dict\n"), 0o644))

	var out bytes.Buffer
	t.Setenv("YOUDAO_CONFIG", path)
	t.Setenv("YOUDAO_LOG_LEVEL", "error")
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"hello"})
	require.NoError(t, cmd.Execute())

	doc := decode(t, out.String())
	require.Len(t, doc.Items, 3)
	assert.Equal(t, "你好", doc.Items[0]["title"])
}

func TestRoot_HistoryAndMetrics(t *testing.T) {
	ts := dictServer(t)
	t.Setenv("YOUDAO_ENDPOINTS_DICT", ts.URL+"/dict")

	dir := t.TempDir()
	path := filepath.Join(dir, "history.jsonl")
	metricsFile := filepath.Join(dir, "youdao.prom")
	t.Setenv("YOUDAO_HISTORY_DSN", "json://"+path)
	t.Setenv("YOUDAO_METRICS_FILE", metricsFile)

	_, err := execute(t, "hello")
	require.NoError(t, err)
	_, err = execute(t, "xyzzy")
	require.NoError(t, err)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `youdao_lookups_total{language="eng",outcome="empty"} 1`)

	history, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(history), `"query":"hello"`)
	assert.Contains(t, string(history), `"query":"xyzzy"`)
}
