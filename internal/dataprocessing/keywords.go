package dataprocessing

import (
	"sort"

	"trendpulse/pkg/contracts/domain"
)

// KnownKeywords returns the distinct keywords of the trend table, sorted.
// When the trend table is empty the blog table is used instead.
func KnownKeywords(ds *domain.Dataset) []string {
	var keywords []string
	switch {
	case !ds.Trend.IsEmpty():
		keywords = ds.Trend.Keywords()
	case !ds.Blog.IsEmpty():
		keywords = ds.Blog.Keywords()
	default:
		return []string{}
	}
	sort.Strings(keywords)
	return keywords
}

// DefaultSelection returns the first n keywords, the dashboard's initial selection.
func DefaultSelection(keywords []string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	if n > len(keywords) {
		n = len(keywords)
	}
	out := make([]string, n)
	copy(out, keywords[:n])
	return out
}
