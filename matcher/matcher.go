// Package matcher decides whether a scraped result link points at the
// tracked URL and converts in-page ordinals into absolute rank positions.
package matcher

import (
	"iter"
	"strings"

	"github.com/use-agent/serprank/models"
)

// Normalize returns the canonical comparison form of a URL: lowercase, with
// the leading scheme, a leading "www." and any trailing slashes removed.
func Normalize(rawURL string) string {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	if rest, ok := strings.CutPrefix(s, "https://"); ok {
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "http://"); ok {
		s = rest
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimRight(s, "/")
}

// Equivalent reports whether two normalized URLs refer to the same target.
// The rule is deliberately loose: either string containing the other is a
// match, which tolerates path, query and fragment differences between a
// scraped link and the tracked URL.
//
// An empty form never matches. Plain containment would let an empty form
// (a bare "/" href, or "https://") match every target, since "" is a
// substring of any string; this is the one departure from containment.
//
// TODO: tighten to a host/path-boundary comparison; "example.com" currently
// matches "notexample.com" and "other.org/?ref=example.com".
func Equivalent(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// AbsolutePosition converts a 1-based ordinal on a 1-based page into the
// 1-based position within the full listing.
func AbsolutePosition(pageIndex, ordinal, pageSize int) int {
	return (pageIndex-1)*pageSize + ordinal
}

// Match walks entries in document order and returns the absolute positions
// of those equivalent to target. pageOffset is the 0-based page number.
// Collection stops once limit positions have been gathered; a limit <= 0
// collects nothing.
func Match(entries iter.Seq[models.ResultEntry], target string, pageOffset, pageSize, limit int) []int {
	if limit <= 0 {
		return nil
	}
	want := Normalize(target)

	var positions []int
	for e := range entries {
		if !Equivalent(Normalize(e.Href), want) {
			continue
		}
		positions = append(positions, AbsolutePosition(pageOffset+1, e.Ordinal, pageSize))
		if len(positions) >= limit {
			break
		}
	}
	return positions
}
