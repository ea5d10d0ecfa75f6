package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atone/alfred-youdao/internal/config"
	"github.com/atone/alfred-youdao/internal/fingerprint"
	"github.com/atone/alfred-youdao/internal/history"
	"github.com/atone/alfred-youdao/internal/metrics"
	"github.com/atone/alfred-youdao/internal/scraper"
	"github.com/atone/alfred-youdao/internal/youdao"
	"github.com/atone/alfred-youdao/pkg/proxy"
	"github.com/atone/alfred-youdao/pkg/useragent"
)

func (a *app) runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := a.cfg
	logger := slog.Default()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	pcfg := youdao.Config{
		Endpoints: youdao.Endpoints{Dict: cfg.Endpoints.Dict, Preview: cfg.Endpoints.Preview},
	}

	if cfg.History.DSN != "" {
		store, err := history.Open(ctx, cfg.History.DSN)
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			defer store.Close()
			pcfg.History = store
		}
	}
	if cfg.Metrics.File != "" {
		pcfg.Metrics = metrics.NewRecorder()
	}

	builder := youdao.New(pcfg, fetcher, logger).Run(ctx, strings.Join(args, " "))

	if pcfg.Metrics != nil {
		if err := pcfg.Metrics.WriteFile(cfg.Metrics.File); err != nil {
			logger.Warn("failed to write metrics", "error", err)
		}
	}

	return builder.Encode(cmd.OutOrStdout())
}

func newFetcher(cfg *config.Config) (*scraper.Fetcher, error) {
	profile, err := fingerprint.ParseProfile(cfg.Fingerprint)
	if err != nil {
		return nil, err
	}

	proxies, err := proxy.NewPool(cfg.Proxies...)
	if err != nil {
		return nil, fmt.Errorf("proxy: %w", err)
	}
	if cfg.ProxyFile != "" {
		if err := proxies.LoadFile(cfg.ProxyFile); err != nil {
			return nil, fmt.Errorf("proxy: %w", err)
		}
	}

	return scraper.NewFetcher(scraper.FetchConfig{
		Timeout:     cfg.Timeout,
		Proxies:     proxies,
		UserAgents:  useragent.NewPool([]string{cfg.UserAgent}),
		Fingerprint: profile,
	})
}
