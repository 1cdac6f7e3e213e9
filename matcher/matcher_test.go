package matcher

import (
	"slices"
	"testing"

	"github.com/use-agent/serprank/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://WWW.Example.com/path/", "example.com/path"},
		{"example.com/path", "example.com/path"},
		{"http://example.com", "example.com"},
		{"https://sub.example.com///", "sub.example.com"},
		{"  www.Example.COM  ", "example.com"},
		{"ftp://example.com", "ftp://example.com"},
		{"https://example.com/www.page", "example.com/www.page"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_EquivalentForms(t *testing.T) {
	if Normalize("https://WWW.Example.com/path/") != Normalize("example.com/path") {
		t.Error("scheme, www and trailing slash variants should normalize equally")
	}
}

func TestEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "example.com", "example.com", true},
		{"href longer", "example.com/page1", "example.com", true},
		{"target longer", "example.com", "example.com/page1", true},
		{"unrelated", "othersite.com/page2", "example.com", false},
		{"empty href", "", "example.com", false},
		{"empty target", "example.com", "", false},
		{"loose substring", "notexample.com", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equivalent(tt.a, tt.b); got != tt.want {
				t.Errorf("Equivalent(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestAbsolutePosition(t *testing.T) {
	for page := 1; page <= 10; page++ {
		for ordinal := 1; ordinal <= 10; ordinal++ {
			want := (page-1)*10 + ordinal
			if got := AbsolutePosition(page, ordinal, 10); got != want {
				t.Fatalf("AbsolutePosition(%d, %d, 10) = %d, want %d", page, ordinal, got, want)
			}
		}
	}
}

func entries(hrefs ...string) []models.ResultEntry {
	out := make([]models.ResultEntry, len(hrefs))
	for i, h := range hrefs {
		out[i] = models.ResultEntry{Href: h, Ordinal: i + 1}
	}
	return out
}

func TestMatch(t *testing.T) {
	page := entries(
		"https://example.com/a",
		"https://other.org/",
		"http://www.example.com/b",
		"https://third.net",
		"",
	)

	tests := []struct {
		name       string
		target     string
		pageOffset int
		limit      int
		want       []int
	}{
		{"first page", "example.com", 0, 100, []int{1, 3}},
		{"second page offset", "example.com", 1, 100, []int{11, 13}},
		{"limit truncates", "https://www.example.com/", 0, 1, []int{1}},
		{"no match", "missing.io", 0, 100, nil},
		{"zero limit", "example.com", 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(slices.Values(page), tt.target, tt.pageOffset, 10, tt.limit)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatch_RootHrefNeverMatches(t *testing.T) {
	page := []models.ResultEntry{
		{Href: "/", Ordinal: 1},
		{Href: "https://", Ordinal: 2},
		{Href: "https://example.com/page", Ordinal: 3},
	}
	if Normalize("/") != "" {
		t.Fatalf("Normalize(%q) = %q, want empty", "/", Normalize("/"))
	}

	got := Match(slices.Values(page), "example.com", 0, 10, 10)
	if want := []int{3}; !slices.Equal(got, want) {
		t.Errorf("Match = %v, want %v", got, want)
	}
}

func TestMatch_KeepsSourceOrdinals(t *testing.T) {
	// Ordinals need not be contiguous: an item without a link still counts.
	page := []models.ResultEntry{
		{Href: "https://a.com", Ordinal: 1},
		{Href: "https://example.com", Ordinal: 3},
	}

	got := Match(slices.Values(page), "example.com", 0, 10, 10)
	if !slices.Equal(got, []int{3}) {
		t.Errorf("Match = %v, want [3]", got)
	}
}

func TestMatch_StopsConsumingAtLimit(t *testing.T) {
	consumed := 0
	seq := func(yield func(models.ResultEntry) bool) {
		for i := 1; i <= 10; i++ {
			consumed++
			if !yield(models.ResultEntry{Href: "example.com", Ordinal: i}) {
				return
			}
		}
	}

	got := Match(seq, "example.com", 0, 10, 2)
	if !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Match = %v, want [1 2]", got)
	}
	if consumed != 2 {
		t.Errorf("consumed %d entries, want 2", consumed)
	}
}
