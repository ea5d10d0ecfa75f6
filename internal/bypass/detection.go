// Package bypass recognizes bot-protection pages served in place of the
// dictionary content.
package bypass

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/atone/alfred-youdao/internal/scraper"
)

// Detection names the protection that challenged a request.
type Detection struct {
	Source string
}

// Detector inspects a fetched page.
type Detector func(page *scraper.Page) (Detection, bool)

// signature describes one vendor. Server and header markers only count on
// blocking statuses because those headers also appear on normal responses;
// body markers count on any status.
type signature struct {
	source  string
	server  []string
	headers []string
	body    [][]byte
}

var signatures = []signature{
	{
		source: "Cloudflare",
		server: []string{"cloudflare"},
		body: [][]byte{
			[]byte("cf-browser-verification"),
			[]byte("cf-turnstile"),
			[]byte("Attention Required! | Cloudflare"),
		},
	},
	{
		source:  "Akamai",
		server:  []string{"akamai"},
		headers: []string{"X-Akamai-Edgescape"},
	},
	{
		source:  "DataDome",
		server:  []string{"datadome"},
		headers: []string{"X-DataDome", "X-DataDome-Response"},
		body:    [][]byte{[]byte("geo.captcha-delivery.com")},
	},
	{
		source:  "PerimeterX",
		headers: []string{"X-Px-Captcha"},
		body: [][]byte{
			[]byte("client.perimeterx.net"),
			[]byte("px-captcha"),
			[]byte("_pxBlock"),
		},
	},
}

// DefaultDetectors returns one detector per known vendor.
func DefaultDetectors() []Detector {
	detectors := make([]Detector, 0, len(signatures))
	for _, sig := range signatures {
		detectors = append(detectors, sig.detect)
	}
	return detectors
}

// Analyze returns the first detection reported by detectors.
func Analyze(page *scraper.Page, detectors []Detector) (Detection, bool) {
	if page == nil {
		return Detection{}, false
	}
	for _, d := range detectors {
		if det, ok := d(page); ok {
			return det, true
		}
	}
	return Detection{}, false
}

func blocking(status int) bool {
	return status == http.StatusForbidden ||
		status == http.StatusTooManyRequests ||
		status == http.StatusServiceUnavailable
}

func (s signature) detect(page *scraper.Page) (Detection, bool) {
	if blocking(page.StatusCode) {
		server := strings.ToLower(page.Headers.Get("Server"))
		for _, marker := range s.server {
			if server != "" && strings.Contains(server, marker) {
				return Detection{Source: s.source}, true
			}
		}
		for _, h := range s.headers {
			if page.Headers.Get(h) != "" {
				return Detection{Source: s.source}, true
			}
		}
	}
	for _, marker := range s.body {
		if bytes.Contains(page.Body, marker) {
			return Detection{Source: s.source}, true
		}
	}
	return Detection{}, false
}
