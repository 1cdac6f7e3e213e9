package engine

import (
	"context"
)

// Fetcher is the transport used by providers to retrieve a result page.
type Fetcher interface {
	// Fetch performs a single GET for the request. It never retries.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
}

// FetchResult is the output of a successful fetch.
type FetchResult struct {
	HTML       string
	StatusCode int
	FinalURL   string
}
