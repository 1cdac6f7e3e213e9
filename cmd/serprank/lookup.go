package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/use-agent/serprank/config"
	"github.com/use-agent/serprank/logging"
	"github.com/use-agent/serprank/models"
)

type lookupFlags struct {
	keywords   string
	url        string
	provider   string
	maxResults int
	verbose    bool
}

func newLookupCmd() *cobra.Command {
	var f lookupFlags

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve the rank positions of a URL once and print them",
		Example: `  serprank lookup --keywords "e-settlements" --url www.example.com
  serprank lookup -k "seo tools" -u example.com -p bing -n 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return lookup(cmd, cfg, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.keywords, "keywords", "k", "", "search phrase (required)")
	flags.StringVarP(&f.url, "url", "u", "", "URL to locate in the results (required)")
	flags.StringVarP(&f.provider, "provider", "p", "google", "search provider: google|bing or 0|1")
	flags.IntVarP(&f.maxResults, "max-results", "n", models.DefaultMaxResults, "maximum positions to report")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "log search events to stderr")
	_ = cmd.MarkFlagRequired("keywords")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func lookup(cmd *cobra.Command, cfg *config.Config, f lookupFlags) error {
	p, err := models.ParseProvider(f.provider)
	if err != nil {
		return err
	}
	q := models.SearchQuery{
		Keywords:   f.keywords,
		TargetURL:  f.url,
		Provider:   p,
		MaxResults: f.maxResults,
	}
	if err := q.Validate(); err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if f.verbose {
		logOut = cmd.ErrOrStderr()
	}
	cfg.Log.Format = "text"
	logger := slog.New(logging.NewHandler(logOut, cfg.Log))

	c := buildComponents(cfg, logger)
	defer c.cache.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Search.Timeout)
		defer cancel()
	}

	positions, err := c.service.ResolvePositions(ctx, q)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), positions)
	return nil
}
