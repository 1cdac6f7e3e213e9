package main

import (
	"log/slog"

	"github.com/use-agent/serprank/cache"
	"github.com/use-agent/serprank/config"
	"github.com/use-agent/serprank/engine"
	"github.com/use-agent/serprank/provider"
	"github.com/use-agent/serprank/rank"
)

// components is the wired rank-resolution stack shared by serve and lookup.
type components struct {
	cache   *cache.Cache
	service *rank.Service
}

func buildComponents(cfg *config.Config, logger *slog.Logger) *components {
	fetcher := engine.NewHTTPEngine(engine.Options{
		Timeout:           cfg.Fetch.Timeout,
		UserAgent:         cfg.Fetch.UserAgent,
		Proxy:             cfg.Fetch.Proxy,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
	})

	dispatcher := provider.Default(fetcher, provider.Endpoints{
		GoogleBaseURL: cfg.Fetch.GoogleBaseURL,
		BingBaseURL:   cfg.Fetch.BingBaseURL,
	})

	cc := cache.New(cache.Options{
		MaxEntries:      cfg.Cache.MaxEntries,
		DefaultTTL:      cfg.Cache.TTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
	})

	svc := rank.NewService(dispatcher, cc, rank.Options{
		TTL:      cfg.Cache.TTL,
		Coalesce: cfg.Search.Coalesce,
		Timeout:  cfg.Search.Timeout,
		Logger:   logger,
	})

	return &components{cache: cc, service: svc}
}
