package models

// SearchRequest is the query string for GET /api/v1/search and
// DELETE /api/v1/search/cache.
type SearchRequest struct {
	// Keywords is the search phrase sent to the provider. Required.
	Keywords string `form:"keywords" binding:"required,max=200"`

	// URL is the site whose rank positions are wanted. Required.
	// Matching is loose, so a bare host such as "example.com" is accepted.
	URL string `form:"url" binding:"required,max=2000"`

	// Provider selects the search engine: "0"/"google" or "1"/"bing".
	// Default: "google".
	Provider string `form:"provider"`

	// MaxResults caps how many positions are reported.
	// Default: 100.
	MaxResults int `form:"max_results" binding:"omitempty,min=1,max=1000"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults() {
	if r.Provider == "" {
		r.Provider = "google"
	}
	if r.MaxResults == 0 {
		r.MaxResults = DefaultMaxResults
	}
}

// ToQuery converts the request into a validated SearchQuery.
func (r *SearchRequest) ToQuery() (SearchQuery, error) {
	p, err := ParseProvider(r.Provider)
	if err != nil {
		return SearchQuery{}, err
	}
	q := SearchQuery{
		Keywords:   r.Keywords,
		TargetURL:  r.URL,
		Provider:   p,
		MaxResults: r.MaxResults,
	}
	q.Defaults()
	if err := q.Validate(); err != nil {
		return SearchQuery{}, err
	}
	return q, nil
}
