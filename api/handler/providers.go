package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/serprank/models"
	"github.com/use-agent/serprank/rank"
)

// Providers returns a handler for GET /api/v1/providers.
func Providers(svc *rank.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := svc.Providers()
		out := make([]models.ProviderInfo, 0, len(list))
		for _, p := range list {
			out = append(out, models.ProviderInfo{ID: int(p), Name: p.String()})
		}
		c.JSON(http.StatusOK, models.ProvidersResponse{Providers: out})
	}
}
