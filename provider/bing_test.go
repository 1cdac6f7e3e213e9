package provider

import (
	"encoding/base64"
	"slices"
	"testing"

	"github.com/use-agent/serprank/models"
)

func TestExtractBing(t *testing.T) {
	markup := `
		<html>
		<body>
			<li class="b_algo">
				<a href="http://example.com/page1">Example Page 1</a>
			</li>
			<li class="b_algo">
				<a href="http://othersite.com/page2">Other Site</a>
			</li>
			<div>Next page</div>
		</body>
		</html>`

	got := collect(t, ExtractBing, markup)
	want := []models.ResultEntry{
		{Href: "http://example.com/page1", Ordinal: 1},
		{Href: "http://othersite.com/page2", Ordinal: 2},
	}
	if !slices.Equal(got, want) {
		t.Errorf("ExtractBing = %v, want %v", got, want)
	}
}

func TestExtractBing_ItemWithoutLinkKeepsOrdinal(t *testing.T) {
	markup := `
		<ol id="b_results">
			<li class="b_algo"><h2><a href="https://first.com">1</a></h2><a href="https://first.com/cache">cached</a></li>
			<li class="b_algo"><p>text only</p></li>
			<li class="b_ad"><a href="https://sponsored.com">ad</a></li>
			<li class="b_algo b_vtl"><div><a href="https://example.com/x">3</a></div></li>
			<li class="b_pag"><a href="/search?first=11">next</a></li>
		</ol>`

	got := collect(t, ExtractBing, markup)
	want := []models.ResultEntry{
		{Href: "https://first.com", Ordinal: 1},
		{Href: "https://example.com/x", Ordinal: 3},
	}
	if !slices.Equal(got, want) {
		t.Errorf("ExtractBing = %v, want %v", got, want)
	}
}

func TestExtractBing_NoItems(t *testing.T) {
	got := collect(t, ExtractBing, `<html><body><h1>Verify you are human</h1></body></html>`)
	if len(got) != 0 {
		t.Errorf("expected no entries, got %v", got)
	}
}

func TestUnwrapBingHref(t *testing.T) {
	target := "https://example.com/landing?id=7"
	enc := "a1" + base64.RawURLEncoding.EncodeToString([]byte(target))

	tests := []struct {
		name, in, want string
	}{
		{"click tracking", "https://www.bing.com/ck/a?!&&p=abc&u=" + enc + "&ntb=1", target},
		{"relative click tracking", "/ck/a?u=" + enc, target},
		{"direct link", "https://example.com/", "https://example.com/"},
		{"missing prefix", "https://www.bing.com/ck/a?u=zz", "https://www.bing.com/ck/a?u=zz"},
		{"bad base64", "https://www.bing.com/ck/a?u=a1***", "https://www.bing.com/ck/a?u=a1***"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unwrapBingHref(tt.in); got != tt.want {
				t.Errorf("unwrapBingHref(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBingSearchURL(t *testing.T) {
	tests := []struct {
		page int
		want string
	}{
		{1, "https://www.bing.com/search?q=seo%20tools&first=1"},
		{2, "https://www.bing.com/search?q=seo%20tools&first=11"},
		{10, "https://www.bing.com/search?q=seo%20tools&first=91"},
	}
	for _, tt := range tests {
		if got := BingSearchURL("https://www.bing.com", "seo tools", tt.page); got != tt.want {
			t.Errorf("BingSearchURL(page %d) = %q, want %q", tt.page, got, tt.want)
		}
	}
}
