// Package match selects the best-matching blog page for a free-text query.
//
// Matching runs in two passes over a frozen candidate set: URL slugs first,
// then resolved titles. Both passes use the same sequence-similarity ratio
// with pass-specific acceptance cutoffs. Matching is pure and deterministic;
// when several candidates tie at the top score, the first in input order wins.
package match

import (
	"net/url"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Method records which pass produced a match.
type Method int

const (
	// ViaSlug means the query's slugified form matched a URL slug.
	ViaSlug Method = iota
	// ViaTitle means the raw query matched a resolved page title.
	ViaTitle
)

// Candidate is one sitemap-derived page under consideration. Title may be
// empty when resolution failed; such candidates only participate in the
// slug pass.
type Candidate struct {
	URL   string
	Slug  string
	Title string
}

// Match is the chosen candidate. Title is set only for title matches; slug
// matches leave it empty so the caller can resolve a display title.
type Match struct {
	URL    string
	Slug   string
	Title  string
	Method Method
}

// Matcher holds the similarity acceptance cutoffs.
type Matcher struct {
	slugCutoff  float64
	titleCutoff float64
}

// New builds a Matcher with the given slug and title cutoffs.
func New(slugCutoff, titleCutoff float64) *Matcher {
	return &Matcher{slugCutoff: slugCutoff, titleCutoff: titleCutoff}
}

// Match returns the best candidate for query, or ok=false when neither pass
// clears its cutoff. A missed match is a valid outcome, not an error.
func (m *Matcher) Match(query string, candidates []Candidate) (Match, bool) {
	querySlug := Slugify(query)

	slugKeys, slugURLs := slugMap(candidates)
	if best, ok := closest(querySlug, slugKeys, m.slugCutoff); ok {
		return Match{URL: slugURLs[best], Slug: best, Method: ViaSlug}, true
	}

	titleKeys, titleURLs := titleMap(candidates)
	if best, ok := closest(query, titleKeys, m.titleCutoff); ok {
		return Match{URL: titleURLs[best], Title: best, Method: ViaTitle}, true
	}

	return Match{}, false
}

// slugMap builds slug -> URL over slugs containing a hyphen, which filters
// out single-word and non-descriptive path segments. First candidate wins on
// duplicate slugs.
func slugMap(candidates []Candidate) ([]string, map[string]string) {
	var keys []string
	urls := make(map[string]string, len(candidates))
	for _, c := range candidates {
		if !strings.Contains(c.Slug, "-") {
			continue
		}
		if _, seen := urls[c.Slug]; seen {
			continue
		}
		keys = append(keys, c.Slug)
		urls[c.Slug] = c.URL
	}
	return keys, urls
}

// titleMap builds title -> URL over resolved titles, first candidate wins.
func titleMap(candidates []Candidate) ([]string, map[string]string) {
	var keys []string
	urls := make(map[string]string, len(candidates))
	for _, c := range candidates {
		if c.Title == "" {
			continue
		}
		if _, seen := urls[c.Title]; seen {
			continue
		}
		keys = append(keys, c.Title)
		urls[c.Title] = c.URL
	}
	return keys, urls
}

// closest scans keys in order and returns the one most similar to target,
// requiring the score to reach cutoff. Strict comparison keeps the earliest
// key on ties.
func closest(target string, keys []string, cutoff float64) (string, bool) {
	best := ""
	bestScore := -1.0
	for _, key := range keys {
		if score := Similarity(target, key); score > bestScore {
			best = key
			bestScore = score
		}
	}
	if bestScore < cutoff || best == "" {
		return "", false
	}
	return best, true
}

// Similarity computes a normalized [0,1] sequence-similarity ratio, where 1.0
// means identical strings. The underlying matcher uses the longest-matching-
// blocks algorithm over runes.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// Slugify normalizes a query into slug form: lowercase with spaces as hyphens.
func Slugify(text string) string {
	return strings.ReplaceAll(strings.ToLower(text), " ", "-")
}

// SlugFromURL extracts the last non-empty path segment of a URL, handling
// trailing slashes. It returns "" for unparseable URLs or bare hosts.
func SlugFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}
