package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/serprank/cache"
	"github.com/use-agent/serprank/models"
)

// Version is reported by the health endpoint and the CLI.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
func Health(cc *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status: "healthy",
			Uptime: time.Since(startTime).Round(time.Second).String(),
			CacheStats: models.CacheStats{
				Entries:    cc.Len(),
				MaxEntries: cc.MaxEntries(),
			},
			Version: Version,
		})
	}
}
