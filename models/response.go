package models

// SearchResponse is the response for GET /api/v1/search.
type SearchResponse struct {
	// Success indicates whether the lookup completed without errors.
	Success bool `json:"success"`

	// Provider is the display name of the search engine queried.
	Provider string `json:"provider,omitempty"`

	// Positions is the ascending ", "-joined list of 1-based rank positions,
	// or "0" when the URL does not appear in the fetched results.
	Positions string `json:"positions,omitempty"`

	// CacheStatus is "hit" when the answer was served from cache, else "miss".
	CacheStatus string `json:"cache_status,omitempty"`

	// PagesFetched is the number of provider pages requested for this answer.
	PagesFetched int `json:"pages_fetched"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent handling a request.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`
}

// InvalidateResponse is the response for DELETE /api/v1/search/cache.
type InvalidateResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ProviderInfo describes one supported search provider.
type ProviderInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProvidersResponse is the response for GET /api/v1/providers.
type ProvidersResponse struct {
	Providers []ProviderInfo `json:"providers"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status     string     `json:"status"` // "healthy"
	Uptime     string     `json:"uptime"`
	CacheStats CacheStats `json:"cache_stats"`
	Version    string     `json:"version"`
}

// CacheStats reports the state of the result cache.
type CacheStats struct {
	Entries    int `json:"entries"`
	MaxEntries int `json:"max_entries"`
}

// ErrorResponse is the body of middleware rejections (auth, rate limit).
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
