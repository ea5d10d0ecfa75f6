package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/atone/alfred-youdao/internal/config"
	"github.com/atone/alfred-youdao/internal/history"
	"github.com/atone/alfred-youdao/internal/report"
	"github.com/atone/alfred-youdao/internal/storage"
)

func runHistory(cmd *cobra.Command, cfg *config.Config, opts historyOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("history: unknown format %q", opts.format)
	}
	if opts.limit < 0 || opts.offset < 0 {
		return errors.New("history: --limit and --offset must not be negative")
	}
	if cfg.History.DSN == "" {
		return errors.New("history: no store configured, set --history or history.dsn")
	}

	ctx := cmd.Context()
	store, err := history.Open(ctx, cfg.History.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	filter := storage.Filter{
		Query:        opts.query,
		FallbackOnly: opts.failed,
		Limit:        opts.limit,
		Offset:       opts.offset,
	}
	if opts.since > 0 {
		since := time.Now().Add(-opts.since)
		filter.Since = &since
	}

	lookups, err := store.Query(ctx, filter)
	if err != nil {
		return fmt.Errorf("history: query: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.summary && opts.format == "json":
		return report.WriteJSON(out, report.GenerateSummary(lookups))
	case opts.summary:
		return report.WriteText(out, report.GenerateSummary(lookups))
	case opts.format == "json":
		if lookups == nil {
			lookups = []*storage.Lookup{}
		}
		return report.WriteJSON(out, lookups)
	default:
		return report.WriteLookups(out, lookups)
	}
}
