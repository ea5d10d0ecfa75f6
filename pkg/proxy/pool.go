package proxy

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"os"
	"strings"
)

// Pool holds the proxy endpoints a lookup may be routed through.
type Pool struct {
	urls []*url.URL
}

// NewPool creates a pool from raw proxy URLs. Entries without a scheme are
// treated as http.
func NewPool(rawURLs ...string) (*Pool, error) {
	p := &Pool{}
	if err := p.Add(rawURLs...); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFile reads one proxy URL per line. Blank lines and lines starting
// with '#' are ignored.
func (p *Pool) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("proxy: open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var raw []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw = append(raw, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("proxy: read %s: %w", path, err)
	}

	return p.Add(raw...)
}

// Add parses and appends proxy URLs.
func (p *Pool) Add(rawURLs ...string) error {
	for _, raw := range rawURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("proxy: parse %q: %w", raw, err)
		}
		if u.Host == "" {
			return fmt.Errorf("proxy: %q has no host", raw)
		}
		p.urls = append(p.urls, u)
	}
	return nil
}

// Len returns the number of proxies in the pool.
func (p *Pool) Len() int {
	return len(p.urls)
}

// Pick returns a uniformly chosen proxy, or nil for an empty pool.
func (p *Pool) Pick() *url.URL {
	switch len(p.urls) {
	case 0:
		return nil
	case 1:
		return p.urls[0]
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(p.urls))))
	if err != nil {
		return p.urls[0]
	}
	return p.urls[n.Int64()]
}
