// Package provider holds the per-search-engine strategies: how to request a
// result page and how to pull organic result links out of it.
package provider

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/use-agent/serprank/engine"
	"github.com/use-agent/serprank/models"
)

// Pagination constants shared by the built-in providers.
const (
	PageSize  = 10
	PageLimit = 10
)

// PageRequest identifies one result page to fetch.
type PageRequest struct {
	Keywords   string
	PageIndex  int // 1-based
	MaxResults int
}

// FetchFunc retrieves the raw markup for one result page.
type FetchFunc func(ctx context.Context, req PageRequest) (string, error)

// ExtractFunc turns page markup into organic result entries in document
// order. Finding nothing is an empty sequence, not an error.
type ExtractFunc func(markup string) (iter.Seq[models.ResultEntry], error)

// Strategy pairs a provider's fetch and extract steps with its pagination.
type Strategy struct {
	Provider models.Provider

	// PageSize converts in-page ordinals to absolute positions.
	PageSize int

	// PageLimit caps how many pages are ever requested.
	PageLimit int

	// SingleRequest is set when one request returns the whole listing
	// (sized by PageRequest.MaxResults) instead of one page per request.
	SingleRequest bool

	Fetch   FetchFunc
	Extract ExtractFunc
}

// PagesToFetch is min(PageLimit, ceil(maxResults/PageSize)), or 1 for
// single-request providers.
func (s Strategy) PagesToFetch(maxResults int) int {
	if maxResults < 1 {
		return 0
	}
	if s.SingleRequest {
		return 1
	}
	pages := (maxResults + s.PageSize - 1) / s.PageSize
	return min(pages, s.PageLimit)
}

// Dispatcher maps provider identifiers to their strategies.
type Dispatcher struct {
	table map[models.Provider]Strategy
}

// NewDispatcher builds a dispatcher from strategies. A later strategy for the
// same provider replaces an earlier one.
func NewDispatcher(strategies ...Strategy) *Dispatcher {
	d := &Dispatcher{table: make(map[models.Provider]Strategy, len(strategies))}
	for _, s := range strategies {
		if s.PageSize <= 0 {
			s.PageSize = PageSize
		}
		if s.PageLimit <= 0 {
			s.PageLimit = PageLimit
		}
		d.table[s.Provider] = s
	}
	return d
}

// Endpoints holds the provider base URLs.
type Endpoints struct {
	GoogleBaseURL string
	BingBaseURL   string
}

// DefaultEndpoints are the public search front-ends.
var DefaultEndpoints = Endpoints{
	GoogleBaseURL: "https://www.google.com",
	BingBaseURL:   "https://www.bing.com",
}

// Default returns a dispatcher with the Google and Bing strategies wired to f.
func Default(f engine.Fetcher, ep Endpoints) *Dispatcher {
	if ep.GoogleBaseURL == "" {
		ep.GoogleBaseURL = DefaultEndpoints.GoogleBaseURL
	}
	if ep.BingBaseURL == "" {
		ep.BingBaseURL = DefaultEndpoints.BingBaseURL
	}
	return NewDispatcher(Google(f, ep.GoogleBaseURL), Bing(f, ep.BingBaseURL))
}

// Resolve returns the strategy for p, or UNSUPPORTED_PROVIDER.
func (d *Dispatcher) Resolve(p models.Provider) (Strategy, error) {
	s, ok := d.table[p]
	if !ok {
		return Strategy{}, models.NewRankError(
			models.ErrCodeUnsupportedProvider,
			fmt.Sprintf("unsupported search provider: %s", p),
			nil,
		)
	}
	return s, nil
}

// Providers lists the supported providers in ascending identifier order.
func (d *Dispatcher) Providers() []models.Provider {
	out := make([]models.Provider, 0, len(d.table))
	for p := range d.table {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// fetchVia adapts an engine.Fetcher and a URL builder into a FetchFunc.
func fetchVia(f engine.Fetcher, buildURL func(PageRequest) string) FetchFunc {
	return func(ctx context.Context, req PageRequest) (string, error) {
		res, err := f.Fetch(ctx, &engine.FetchRequest{URL: buildURL(req)})
		if err != nil {
			return "", err
		}
		return res.HTML, nil
	}
}
