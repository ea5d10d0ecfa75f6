// Package youdao looks a query up on the Youdao dictionary and turns the
// page into launcher results.
package youdao

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/atone/alfred-youdao/internal/bypass"
	"github.com/atone/alfred-youdao/internal/metrics"
	"github.com/atone/alfred-youdao/internal/scraper"
	"github.com/atone/alfred-youdao/internal/storage"
	"github.com/atone/alfred-youdao/internal/workflow"
)

// PageFetcher retrieves a dictionary page. *scraper.Fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) *scraper.Page
}

var _ PageFetcher = (*scraper.Fetcher)(nil)

// Config holds the optional collaborators of a Pipeline.
type Config struct {
	Endpoints Endpoints
	// History receives one record per lookup when set.
	History storage.Backend
	// Metrics records lookup outcomes when set.
	Metrics *metrics.Recorder
	// Detectors recognize challenge pages. Nil means bypass.DefaultDetectors.
	Detectors []bypass.Detector
}

// Pipeline runs one lookup per call.
type Pipeline struct {
	config  Config
	fetcher PageFetcher
	logger  *slog.Logger
}

// New creates a Pipeline.
func New(cfg Config, fetcher PageFetcher, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Detectors == nil {
		cfg.Detectors = bypass.DefaultDetectors()
	}
	cfg.Endpoints = cfg.Endpoints.withDefaults()
	return &Pipeline{config: cfg, fetcher: fetcher, logger: logger}
}

// Run looks raw up and returns the populated builder. It never fails: an
// empty query yields no items, and any fetch, parse or extraction failure
// yields a single invalid fallback item.
func (p *Pipeline) Run(ctx context.Context, raw string) *workflow.Builder {
	b := workflow.NewBuilder()

	query := NormalizeQuery(raw)
	if query == "" {
		return b
	}

	lang := ClassifyLanguage(query)
	reqURL := p.config.Endpoints.RequestURL(query, lang)
	preview := p.config.Endpoints.PreviewURL(query)
	p.logger.Debug("requesting dictionary page", "url", reqURL, "language", lang)

	page := p.fetcher.Fetch(ctx, reqURL)
	rec := &storage.Lookup{
		ID:         uuid.NewString(),
		Query:      query,
		Language:   string(lang),
		URL:        reqURL,
		StatusCode: page.StatusCode,
		Proxy:      page.Proxy,
		Duration:   page.Duration,
		Error:      page.Error,
	}

	fragments, outcome := p.extract(page, query, rec)
	for _, f := range fragments {
		opts := []workflow.ItemOption{workflow.WithQuickLook(preview)}
		if f.Phonetic {
			opts = append(opts, workflow.WithIcon(workflow.IconPhonetic))
		}
		if f.Autocomplete != "" {
			opts = append(opts, workflow.WithAutocomplete(f.Autocomplete))
		}
		b.Add(f.Title, f.Subtitle, f.Payload, opts...)
	}

	if b.Len() == 0 {
		b.Add(fallbackTitle, fallbackDetail, workflow.NewPayload(query, query),
			workflow.WithQuickLook(preview), workflow.Invalid())
		rec.Fallback = true
	} else {
		rec.TopTitle = fragments[0].Title
	}
	rec.Items = len(fragments)

	p.logger.Info("lookup finished",
		"query", query,
		"outcome", outcome,
		"items", len(fragments),
		"status", page.StatusCode,
		"proxy", page.Proxy,
		"duration", page.Duration,
	)

	p.config.Metrics.RecordLookup(string(lang), outcome, len(fragments), page.Duration, len(page.Body))
	p.save(ctx, rec)
	return b
}

// extract classifies the fetched page and pulls fragments out of it when it
// holds dictionary content. Challenge markers only decide the outcome of a
// page that yields nothing: a real entry may quote them, for example when
// the query is the marker itself.
func (p *Pipeline) extract(page *scraper.Page, query string, rec *storage.Lookup) ([]Fragment, metrics.Outcome) {
	if page.Error != "" {
		p.logger.Warn("dictionary fetch failed", "url", page.URL, "error", page.Error)
		return nil, metrics.OutcomeFetchError
	}
	if !page.OK() {
		if p.blocked(page, rec) {
			return nil, metrics.OutcomeBlocked
		}
		rec.Error = fmt.Sprintf("unexpected status %d", page.StatusCode)
		p.logger.Warn("dictionary returned error status", "url", page.URL, "status", page.StatusCode)
		return nil, metrics.OutcomeHTTPError
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		rec.Error = fmt.Sprintf("parse page: %v", err)
		p.logger.Warn("failed to parse dictionary page", "url", page.URL, "error", err)
		return nil, metrics.OutcomeParseError
	}

	fragments := Extract(doc, query)
	if len(fragments) == 0 {
		if p.blocked(page, rec) {
			return nil, metrics.OutcomeBlocked
		}
		p.logger.Debug("no content extracted", "url", page.URL)
		return nil, metrics.OutcomeEmpty
	}
	for _, f := range fragments {
		p.logger.Debug("extracted fragment", "section", f.Section, "title", f.Title)
	}
	return fragments, metrics.OutcomeOK
}

func (p *Pipeline) blocked(page *scraper.Page, rec *storage.Lookup) bool {
	det, ok := bypass.Analyze(page, p.config.Detectors)
	if !ok {
		return false
	}
	rec.BlockedBy = det.Source
	p.logger.Warn("dictionary page is a bot challenge", "url", page.URL, "source", det.Source)
	return true
}

// save appends rec to the history store. Failures are logged only.
func (p *Pipeline) save(ctx context.Context, rec *storage.Lookup) {
	if p.config.History == nil {
		return
	}
	rec.CreatedAt = time.Now().UTC()
	if err := p.config.History.Save(ctx, rec); err != nil {
		p.logger.Warn("failed to save lookup history", "id", rec.ID, "error", err)
	}
}
