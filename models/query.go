package models

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Provider identifies a search engine. The numeric values are part of the
// inbound contract (Google=0, Bing=1).
type Provider int

const (
	ProviderGoogle Provider = iota
	ProviderBing
)

// Input limits for a SearchQuery.
const (
	DefaultMaxResults = 100
	MaxKeywordsLength = 200
	MaxURLLength      = 2000
)

func (p Provider) String() string {
	switch p {
	case ProviderGoogle:
		return "Google"
	case ProviderBing:
		return "Bing"
	default:
		return "Provider(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParseProvider accepts a numeric identifier ("0", "1") or a case-insensitive
// name ("google", "bing"). Unknown numeric values are returned as-is so the
// dispatcher can reject them; unknown names are an input error.
func ParseProvider(s string) (Provider, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Provider(n), nil
	}
	switch strings.ToLower(s) {
	case "google":
		return ProviderGoogle, nil
	case "bing":
		return ProviderBing, nil
	}
	return 0, NewRankError(ErrCodeInvalidInput, fmt.Sprintf("invalid search provider %q", s), nil)
}

// SearchQuery is one rank lookup. It is created per request and not mutated
// once Defaults has been applied.
type SearchQuery struct {
	Keywords   string
	TargetURL  string
	Provider   Provider
	MaxResults int
}

// Defaults applies default values to unset fields.
func (q *SearchQuery) Defaults() {
	if q.MaxResults == 0 {
		q.MaxResults = DefaultMaxResults
	}
}

// Validate checks the query bounds. The provider is not checked here; an
// unknown provider is reported by the dispatcher as UNSUPPORTED_PROVIDER.
func (q SearchQuery) Validate() error {
	switch {
	case strings.TrimSpace(q.Keywords) == "":
		return NewRankError(ErrCodeInvalidInput, "keywords are required", nil)
	case utf8.RuneCountInString(q.Keywords) > MaxKeywordsLength:
		return NewRankError(ErrCodeInvalidInput, fmt.Sprintf("keywords cannot exceed %d characters", MaxKeywordsLength), nil)
	case strings.TrimSpace(q.TargetURL) == "":
		return NewRankError(ErrCodeInvalidInput, "url is required", nil)
	case utf8.RuneCountInString(q.TargetURL) > MaxURLLength:
		return NewRankError(ErrCodeInvalidInput, fmt.Sprintf("url cannot exceed %d characters", MaxURLLength), nil)
	case q.MaxResults < 1:
		return NewRankError(ErrCodeInvalidInput, "max_results must be at least 1", nil)
	}
	return nil
}

// ResultPage is one fetched result page. It is discarded after extraction.
type ResultPage struct {
	Markup    string
	PageIndex int // 1-based
}

// ResultEntry is one organic result extracted from a page.
type ResultEntry struct {
	Href    string
	Ordinal int // 1-based, document order within the page
}
