package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Category identifies one of the three source datasets. Each category has its
// own file naming convention, directory and record schema.
type Category string

const (
	// CategoryTrend holds search-trend ratio exports (data/datalab).
	CategoryTrend Category = "trend"

	// CategoryBlog holds blog review search results (data/blog).
	CategoryBlog Category = "blog"

	// CategoryNews holds news article search results (data/news).
	CategoryNews Category = "news"
)

// ErrUnknownCategory is returned by ParseCategory for names outside the known set.
var ErrUnknownCategory = errors.New("unknown category")

// Categories lists every category in ingestion order.
func Categories() []Category {
	return []Category{CategoryTrend, CategoryBlog, CategoryNews}
}

// ParseCategory converts a user supplied name into a Category.
func ParseCategory(name string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(name))); c {
	case CategoryTrend, CategoryBlog, CategoryNews:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// DateColumn is the source column the canonical date is derived from.
func (c Category) DateColumn() string {
	switch c {
	case CategoryTrend:
		return "period"
	case CategoryBlog:
		return "postdate"
	case CategoryNews:
		return "pubDate"
	}
	return ""
}

// KeywordToken is the index of the keyword in the underscore-delimited file name.
//
//	trend_<keyword>_<date>.csv          -> 1
//	blog_review_<keyword>_<date>.csv    -> 2
//	news_issue_<keyword>_<date>.csv     -> 2
func (c Category) KeywordToken() int {
	if c == CategoryTrend {
		return 1
	}
	return 2
}
