package provider

import (
	"encoding/base64"
	"iter"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/serprank/engine"
	"github.com/use-agent/serprank/models"
)

// Bing returns the Bing strategy: one request per page of PageSize results.
func Bing(f engine.Fetcher, baseURL string) Strategy {
	return Strategy{
		Provider:  models.ProviderBing,
		PageSize:  PageSize,
		PageLimit: PageLimit,
		Fetch: fetchVia(f, func(req PageRequest) string {
			return BingSearchURL(baseURL, req.Keywords, req.PageIndex)
		}),
		Extract: ExtractBing,
	}
}

// BingSearchURL builds the search URL for a 1-based page. Bing's "first"
// parameter is the 1-based offset of the first result on the page.
func BingSearchURL(baseURL, keywords string, pageIndex int) string {
	first := (pageIndex-1)*PageSize + 1
	return strings.TrimRight(baseURL, "/") + "/search?q=" + escapeQuery(keywords) + "&first=" + strconv.Itoa(first)
}

// ExtractBing returns one entry per organic item (li.b_algo) carrying the
// item's first link. An item without a link produces no entry but still
// occupies its ordinal.
func ExtractBing(markup string) (iter.Seq[models.ResultEntry], error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, models.NewRankError(models.ErrCodeExtraction, "parse result page", err)
	}
	items := doc.Find("li.b_algo")

	return func(yield func(models.ResultEntry) bool) {
		items.EachWithBreak(func(i int, item *goquery.Selection) bool {
			href, ok := item.Find("a[href]").First().Attr("href")
			if !ok {
				return true
			}
			return yield(models.ResultEntry{
				Href:    unwrapBingHref(href),
				Ordinal: i + 1,
			})
		})
	}, nil
}

// unwrapBingHref decodes Bing click-tracking links ("/ck/a?...&u=a1<base64>")
// to their destination. Other hrefs, and undecodable ones, are returned
// unchanged.
func unwrapBingHref(href string) string {
	u, err := url.Parse(href)
	if err != nil || !strings.HasPrefix(u.Path, "/ck/") {
		return href
	}
	enc, ok := strings.CutPrefix(u.Query().Get("u"), "a1")
	if !ok || enc == "" {
		return href
	}
	dec, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(enc, "="))
	if err != nil {
		return href
	}
	return string(dec)
}
