package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRedirects = 10
)

// Config defines the setup for the HTTP Client.
type Config struct {
	// Timeout bounds the whole exchange. Zero selects 30s.
	Timeout time.Duration
	// MaxRedirects caps followed redirects. Zero selects 10; a negative
	// value returns the first 3xx response as is.
	MaxRedirects int
	// Transport overrides http.DefaultTransport, e.g. for proxies or uTLS.
	Transport http.RoundTripper
}

// Client wraps http.Client with a timeout and a redirect policy.
type Client struct {
	*http.Client
}

// New creates a client from cfg.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = defaultMaxRedirects
	}

	c := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: cfg.Transport,
	}

	if cfg.MaxRedirects > 0 {
		limit := cfg.MaxRedirects
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= limit {
				return fmt.Errorf("httpclient: stopped after %d redirects", limit)
			}
			return nil
		}
	} else {
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &Client{Client: c}
}

// Do executes req under ctx, which may cancel the request independently of
// the client timeout.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if ctx == nil {
		return nil, errors.New("httpclient: context cannot be nil")
	}

	resp, err := c.Client.Do(req.Clone(ctx))
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	return resp, nil
}
