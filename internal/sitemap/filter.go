package sitemap

import "strings"

// FilterURLs keeps URLs containing at least one keyword, case-insensitive.
// It is pure and preserves input order.
func FilterURLs(urls []string, keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	var kept []string
	for _, u := range urls {
		lower := strings.ToLower(u)
		for _, kw := range keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				kept = append(kept, u)
				break
			}
		}
	}
	return kept
}
