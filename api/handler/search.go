package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/serprank/models"
	"github.com/use-agent/serprank/rank"
)

// Search returns a handler for GET /api/v1/search.
//
// Flow:
//  1. Bind & validate the query string, apply defaults.
//  2. rank.Service.Resolve under the search timeout.
//  3. Report positions, cache status and timing.
func Search(svc *rank.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		q, ok := bindQuery(c, func(err error) {
			respondError(c, err, models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()})
		})
		if !ok {
			return
		}

		ctx := c.Request.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		res, err := svc.Resolve(ctx, q)
		if err != nil {
			_ = c.Error(err)
			respondError(c, err, models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()})
			return
		}

		cacheStatus := "miss"
		if res.CacheHit {
			cacheStatus = "hit"
		}
		c.JSON(http.StatusOK, models.SearchResponse{
			Success:      true,
			Provider:     q.Provider.String(),
			Positions:    res.Positions,
			CacheStatus:  cacheStatus,
			PagesFetched: res.PagesFetched,
			Timing:       models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
		})
	}
}

// InvalidateSearch returns a handler for DELETE /api/v1/search/cache. It
// takes the same query parameters as Search.
func InvalidateSearch(svc *rank.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindQuery(c, func(err error) {
			c.JSON(mapErrorToStatus(models.CodeOf(err)), models.InvalidateResponse{
				Success: false,
				Error:   toRankError(err).ToDetail(),
			})
		})
		if !ok {
			return
		}

		svc.Invalidate(q)
		c.JSON(http.StatusOK, models.InvalidateResponse{Success: true})
	}
}

// bindQuery parses the search parameters. On failure it calls fail and
// returns false.
func bindQuery(c *gin.Context, fail func(error)) (models.SearchQuery, bool) {
	var req models.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(models.NewRankError(models.ErrCodeInvalidInput, err.Error(), err))
		return models.SearchQuery{}, false
	}
	req.Defaults()

	q, err := req.ToQuery()
	if err != nil {
		fail(err)
		return models.SearchQuery{}, false
	}
	return q, true
}

// respondError maps a RankError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	rankErr := toRankError(err)
	c.JSON(mapErrorToStatus(rankErr.Code), models.SearchResponse{
		Success: false,
		Error:   rankErr.ToDetail(),
		Timing:  timing,
	})
}

func toRankError(err error) *models.RankError {
	var rankErr *models.RankError
	if !errors.As(err, &rankErr) {
		rankErr = models.NewRankError(models.ErrCodeInternal, err.Error(), err)
	}
	return rankErr
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(code string) int {
	switch code {
	case models.ErrCodeInvalidInput, models.ErrCodeUnsupportedProvider:
		return http.StatusBadRequest // 400
	case models.ErrCodeFetch, models.ErrCodeExtraction:
		return http.StatusBadGateway // 502
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeCanceled:
		return http.StatusRequestTimeout // 408
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
