package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/atone/alfred-youdao/internal/fingerprint"
	"github.com/atone/alfred-youdao/pkg/httpclient"
	"github.com/atone/alfred-youdao/pkg/proxy"
	"github.com/atone/alfred-youdao/pkg/useragent"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// maxBodySize caps how much of a dictionary page is read.
const maxBodySize = 4 << 20

// FetchConfig configures the dictionary fetcher.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	Proxies      *proxy.Pool
	UserAgents   *useragent.Pool
	Fingerprint  fingerprint.Profile
}

// Page is the outcome of a single GET.
type Page struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	Proxy      string
	// Error is non-empty when the request failed before a full response was read.
	Error string
}

// OK reports whether the page was read completely with a 2xx status.
func (p *Page) OK() bool {
	return p.Error == "" && p.StatusCode >= 200 && p.StatusCode < 300
}

// Fetcher performs GET requests with the configured TLS profile, user agent
// and optional proxy.
type Fetcher struct {
	config    FetchConfig
	client    *httpclient.Client
	transport *http.Transport
}

// NewFetcher initializes a Fetcher.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgents == nil {
		cfg.UserAgents = useragent.NewPool(nil)
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileGo
	}

	// The proxy chosen for a request travels in its context so one transport
	// serves every proxy.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if u, ok := req.Context().Value(proxyKey).(*url.URL); ok && u != nil {
			return u, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("scraper: setup transport: %w", err)
	}

	client := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		Transport:    transport,
	})

	return &Fetcher{config: cfg, client: client, transport: transport}, nil
}

// Fetch GETs targetURL. Transport failures are reported in Page.Error rather
// than as an error so callers can record them alongside successful fetches.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) *Page {
	start := time.Now()
	page := &Page{URL: targetURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		page.Error = fmt.Sprintf("failed to create request: %v", err)
		page.Duration = time.Since(start)
		return page
	}

	if f.config.Proxies != nil {
		if u := f.config.Proxies.Pick(); u != nil {
			page.Proxy = u.Redacted()
			req = req.WithContext(context.WithValue(req.Context(), proxyKey, u))
		}
	}

	req.Header.Set("User-Agent", f.config.UserAgents.Pick())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		page.Error = fmt.Sprintf("request failed: %v", err)
		page.Duration = time.Since(start)
		return page
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		page.Error = fmt.Sprintf("failed to read body: %v", err)
	}

	page.StatusCode = resp.StatusCode
	page.Headers = resp.Header
	page.Body = body
	page.Duration = time.Since(start)
	return page
}

// Close releases idle connections held by the transport.
func (f *Fetcher) Close() {
	f.transport.CloseIdleConnections()
}
