package provider

import (
	"iter"
	"net/url"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/serprank/engine"
	"github.com/use-agent/serprank/models"
)

// googleAnchor matches organic result links: Google tags them with a
// framework-generated jsname attribute alongside the href.
var googleAnchor = cascadia.MustCompile(`a[jsname][href]:not([jsname=""]):not([href=""])`)

// Google returns the Google strategy. One request returns up to
// PageSize*PageLimit results, so the listing is never paginated.
func Google(f engine.Fetcher, baseURL string) Strategy {
	return Strategy{
		Provider:      models.ProviderGoogle,
		PageSize:      PageSize,
		PageLimit:     PageLimit,
		SingleRequest: true,
		Fetch: fetchVia(f, func(req PageRequest) string {
			return GoogleSearchURL(baseURL, req.Keywords, req.MaxResults)
		}),
		Extract: ExtractGoogle,
	}
}

// GoogleSearchURL builds the search URL for a single request sized to
// maxResults, capped at PageSize*PageLimit.
func GoogleSearchURL(baseURL, keywords string, maxResults int) string {
	num := min(maxResults, PageSize*PageLimit)
	return strings.TrimRight(baseURL, "/") + "/search?q=" + escapeQuery(keywords) + "&num=" + strconv.Itoa(num)
}

// ExtractGoogle returns the result links inside the #rso container in
// document order. Markup without the container yields no entries.
func ExtractGoogle(markup string) (iter.Seq[models.ResultEntry], error) {
	region, err := containerMarkup(markup, "div", "rso")
	if err != nil {
		return nil, err
	}
	if region == "" {
		return emptySeq, nil
	}

	doc, err := html.Parse(strings.NewReader(region))
	if err != nil {
		return nil, models.NewRankError(models.ErrCodeExtraction, "parse results container", err)
	}
	anchors := cascadia.QueryAll(doc, googleAnchor)

	return func(yield func(models.ResultEntry) bool) {
		for i, a := range anchors {
			entry := models.ResultEntry{
				Href:    unwrapGoogleHref(attr(a, "href")),
				Ordinal: i + 1,
			}
			if !yield(entry) {
				return
			}
		}
	}, nil
}

// unwrapGoogleHref resolves Google's "/url?q=<target>" redirect links to
// their destination. Other hrefs are returned unchanged.
func unwrapGoogleHref(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.Path != "/url" {
		return href
	}
	if u.Host != "" && !strings.Contains(u.Host, "google.") {
		return href
	}
	q := u.Query()
	for _, key := range []string{"q", "url"} {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// escapeQuery percent-encodes keywords for a query value, spaces as %20.
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func emptySeq(func(models.ResultEntry) bool) {}
