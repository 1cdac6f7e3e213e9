package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/serprank/api/handler"
	"github.com/use-agent/serprank/api/middleware"
	"github.com/use-agent/serprank/cache"
	"github.com/use-agent/serprank/config"
	"github.com/use-agent/serprank/rank"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
// ctx bounds the background work started by middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestID → Logger → CORS (if origins configured)
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is outside auth so monitoring probes always work.
func NewRouter(ctx context.Context, svc *rank.Service, cfg *config.Config, cc *cache.Cache, logger *slog.Logger, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	if cors := middleware.CORS(cfg.CORS); cors != nil {
		r.Use(cors)
	}

	v1 := r.Group("/api/v1")

	// Health: no auth required.
	v1.GET("/health", handler.Health(cc, startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	protected.GET("/providers", handler.Providers(svc))
	protected.GET("/search", handler.Search(svc, cfg.Search.Timeout))
	protected.DELETE("/search/cache", handler.InvalidateSearch(svc))

	return r
}
