package domain

import (
	"time"
)

// Table is the merged set of records of one category.
//
// HasDate reports whether the category's date column existed in the source
// schema. When it is false the table cannot be filtered by date and only
// keyword filtering applies.
type Table[R Record] struct {
	Rows    []R  `json:"rows"`
	HasDate bool `json:"has_date"`
}

// Len returns the number of rows.
func (t Table[R]) Len() int {
	return len(t.Rows)
}

// IsEmpty reports whether the table has no rows.
func (t Table[R]) IsEmpty() bool {
	return len(t.Rows) == 0
}

// Keywords returns the distinct keywords in first-seen order.
func (t Table[R]) Keywords() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.Rows {
		kw := r.GetKeyword()
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// SourceFile describes one located input file.
type SourceFile struct {
	Category Category  `json:"category"`
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
	Rows     int       `json:"rows"`
	Skipped  bool      `json:"skipped"`
}

// Diagnostic records a file or row that ingestion skipped. Row is the 1-based
// data row number, or 0 when the whole file was skipped.
type Diagnostic struct {
	Category Category `json:"category"`
	File     string   `json:"file"`
	Row      int      `json:"row,omitempty"`
	Reason   string   `json:"reason"`
}

// Dataset is the result of one full ingestion pass over every category.
// It is immutable once built; filtering produces independent copies.
type Dataset struct {
	Trend Table[TrendRecord] `json:"trend"`
	Blog  Table[BlogRecord]  `json:"blog"`
	News  Table[NewsRecord]  `json:"news"`

	LoadedAt    time.Time    `json:"loaded_at"`
	Fingerprint string       `json:"fingerprint"`
	Files       []SourceFile `json:"files"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// RowCount returns the number of rows of a category.
func (d *Dataset) RowCount(c Category) int {
	switch c {
	case CategoryTrend:
		return d.Trend.Len()
	case CategoryBlog:
		return d.Blog.Len()
	case CategoryNews:
		return d.News.Len()
	}
	return 0
}
