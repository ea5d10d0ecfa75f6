// Command youdao looks a word up on the Youdao dictionary and prints the
// results as an Alfred script filter document.
//
// Every argument is query text: the command has no flags and no
// subcommands, so words such as "help" or "-ing" are looked up like any
// other. Settings come from YOUDAO_* environment variables and the YAML
// file named by YOUDAO_CONFIG.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atone/alfred-youdao/internal/config"
	"github.com/atone/alfred-youdao/internal/logging"
)

type app struct {
	v   *viper.Viper
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "youdao [query...]",
		Short: "Look a word up on the Youdao dictionary",
		Long: `Looks the query up on the Youdao mobile dictionary and prints translation,
pronunciation and definitions as an Alfred script filter JSON document.

Multiple arguments are joined with a space. Without a query an empty result
list is printed. Lookup failures never fail the command: they produce a
single placeholder item instead.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, "")
			if err != nil {
				return err
			}
			a.cfg = cfg
			logging.New(cfg.Log)
			return nil
		},
		RunE: a.runLookup,
	}
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
