// Command youdao-history prints the lookups recorded by youdao when a
// history store is configured.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atone/alfred-youdao/internal/config"
	"github.com/atone/alfred-youdao/internal/logging"
)

type historyOptions struct {
	configPath string
	limit      int
	offset     int
	failed     bool
	summary    bool
	format     string
	query      string
	since      time.Duration
}

// flagKeys maps the flags that override configuration to their viper keys.
var flagKeys = map[string]string{
	"history":    "history.dsn",
	"log-level":  "log.level",
	"log-format": "log.format",
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var (
		opts historyOptions
		cfg  *config.Config
	)

	cmd := &cobra.Command{
		Use:   "youdao-history",
		Short: "Show recent lookups from the history store",
		Long: `Reads the lookup history configured with --history, history.dsn or
YOUDAO_HISTORY_DSN and prints the most recent lookups, or an aggregate
summary with --summary.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for flag, key := range flagKeys {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return fmt.Errorf("bind --%s: %w", flag, err)
				}
			}
			loaded, err := config.Load(v, opts.configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			logging.New(cfg.Log)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML config file (default $YOUDAO_CONFIG)")
	f.String("history", "", "history store DSN (sqlite://, postgres://, json://)")
	f.String("log-level", "", "debug, info, warn or error")
	f.String("log-format", "", "text or json")
	f.IntVar(&opts.limit, "limit", 20, "maximum number of lookups to read, 0 for all")
	f.IntVar(&opts.offset, "offset", 0, "skip this many of the newest lookups")
	f.BoolVar(&opts.failed, "failed", false, "only lookups that fell back to the placeholder")
	f.BoolVar(&opts.summary, "summary", false, "print an aggregate summary instead of a list")
	f.StringVar(&opts.format, "format", "text", "output format: text or json")
	f.StringVar(&opts.query, "query", "", "only lookups of this exact query")
	f.DurationVar(&opts.since, "since", 0, "only lookups newer than this age, e.g. 24h")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
