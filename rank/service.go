// Package rank resolves the rank positions of a URL for a keyword search.
// It drives the fetch, extract and match loop for one provider and memoizes
// the formatted answer.
package rank

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/use-agent/serprank/cache"
	"github.com/use-agent/serprank/matcher"
	"github.com/use-agent/serprank/models"
	"github.com/use-agent/serprank/provider"
)

// NotRanked is the answer when the URL is absent from the fetched results.
const NotRanked = "0"

// DefaultTimeout bounds a shared resolution when Options.Timeout is unset.
const DefaultTimeout = 60 * time.Second

// Cache is the store used to memoize answers.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Remove(key string)
}

// Options configures a Service.
type Options struct {
	// TTL of cached answers. Zero uses the cache's default.
	TTL time.Duration

	// Coalesce lets identical in-flight queries share one resolution.
	Coalesce bool

	// Timeout bounds a shared resolution, which no single caller's context
	// can cancel. Default: DefaultTimeout.
	Timeout time.Duration

	// Logger receives search events. Default: slog.Default().
	Logger *slog.Logger
}

// Result is a resolved answer.
type Result struct {
	Positions    string
	CacheHit     bool
	PagesFetched int
}

// Service resolves rank positions. It is safe for concurrent use.
type Service struct {
	dispatcher *provider.Dispatcher
	cache      Cache
	opts       Options
	logger     *slog.Logger
	group      singleflight.Group
}

// NewService creates a Service over the given dispatcher and cache.
func NewService(d *provider.Dispatcher, c Cache, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Service{
		dispatcher: d,
		cache:      c,
		opts:       opts,
		logger:     logger,
	}
}

// ResolvePositions returns the formatted positions for q.
func (s *Service) ResolvePositions(ctx context.Context, q models.SearchQuery) (string, error) {
	res, err := s.Resolve(ctx, q)
	if err != nil {
		return "", err
	}
	return res.Positions, nil
}

// Resolve returns the answer for q, from cache when possible. Errors are
// never cached and never turned into NotRanked.
func (s *Service) Resolve(ctx context.Context, q models.SearchQuery) (*Result, error) {
	q.Defaults()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	log := s.logger.With(
		"provider", q.Provider.String(),
		"keywords", q.Keywords,
		"url", q.TargetURL,
	)
	log.Info("search started", "max_results", q.MaxResults)

	key := CacheKey(q)
	if v, ok := s.cache.Get(key); ok {
		log.Info("search cache hit", "positions", v)
		return &Result{Positions: v, CacheHit: true}, nil
	}

	var (
		res *Result
		err error
	)
	if s.opts.Coalesce {
		res, err = s.resolveShared(ctx, log, q, key)
	} else {
		res, err = s.resolve(ctx, log, q, key)
	}
	if err != nil {
		log.Error("search failed", "code", models.CodeOf(err), "error", err)
		return nil, err
	}
	return res, nil
}

// resolveShared joins or starts the in-flight resolution for key. The shared
// work runs detached from every caller and bounded by Options.Timeout; each
// caller waits on it only until its own context is done.
func (s *Service) resolveShared(ctx context.Context, log *slog.Logger, q models.SearchQuery, key string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}

	ch := s.group.DoChan(key, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.Timeout)
		defer cancel()
		return s.resolve(sctx, log, q, key)
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res := *r.Val.(*Result)
		return &res, nil
	case <-ctx.Done():
		return nil, contextError(ctx.Err())
	}
}

func (s *Service) resolve(ctx context.Context, log *slog.Logger, q models.SearchQuery, key string) (*Result, error) {
	strategy, err := s.dispatcher.Resolve(q.Provider)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pages := strategy.PagesToFetch(q.MaxResults)
	var positions []int
	fetched := 0

	for pageIndex := 1; pageIndex <= pages && len(positions) < q.MaxResults; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, contextError(err)
		}

		log.Info("fetching result page", "page", pageIndex, "of", pages)
		markup, err := strategy.Fetch(ctx, provider.PageRequest{
			Keywords:   q.Keywords,
			PageIndex:  pageIndex,
			MaxResults: q.MaxResults,
		})
		fetched++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, contextError(ctxErr)
			}
			return nil, err
		}

		page := models.ResultPage{Markup: markup, PageIndex: pageIndex}
		entries, err := strategy.Extract(page.Markup)
		if err != nil {
			return nil, err
		}
		found := matcher.Match(entries, q.TargetURL, page.PageIndex-1, strategy.PageSize, q.MaxResults-len(positions))
		positions = append(positions, found...)
	}

	answer := Format(positions)
	s.cache.Set(key, answer, s.opts.TTL)
	log.Info("search resolved",
		"positions", answer,
		"pages", fetched,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{Positions: answer, PagesFetched: fetched}, nil
}

// Invalidate drops the cached answer for q.
func (s *Service) Invalidate(q models.SearchQuery) {
	q.Defaults()
	s.cache.Remove(CacheKey(q))
}

// Providers lists the providers the service can query.
func (s *Service) Providers() []models.Provider {
	return s.dispatcher.Providers()
}

// CacheKey derives the memoization key for q from the provider, the
// normalized keywords and target URL, and the result cap.
func CacheKey(q models.SearchQuery) string {
	keywords := strings.Join(strings.Fields(strings.ToLower(q.Keywords)), " ")
	return cache.Key(
		strconv.Itoa(int(q.Provider)),
		keywords,
		matcher.Normalize(q.TargetURL),
		strconv.Itoa(q.MaxResults),
	)
}

// Format joins ascending positions with ", ", or returns NotRanked when
// there are none.
func Format(positions []int) string {
	if len(positions) == 0 {
		return NotRanked
	}
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewRankError(models.ErrCodeTimeout, "search deadline exceeded", err)
	}
	return models.NewRankError(models.ErrCodeCanceled, "search canceled", err)
}
