package domain

import (
	"maps"
	"strconv"
)

// Record is implemented by every category record type.
type Record interface {
	TrendRecord | BlogRecord | NewsRecord

	// GetKeyword returns the keyword derived from the source file name.
	GetKeyword() string
	// GetDate returns the canonical date, which may be invalid.
	GetDate() NullDate
	// Columns returns the typed column names in export order.
	Columns() []string
	// Values returns the typed column values aligned with Columns.
	Values() []string
	// ExtraColumns returns source columns outside the typed schema.
	ExtraColumns() map[string]string
}

// TrendRecord is one row of a search-trend export.
//
// Source columns: period, ratio. Ratio is on the 0-100 relative interest scale
// and is present for every record; rows whose ratio does not parse never
// become records.
type TrendRecord struct {
	Keyword string            `json:"keyword" csv:"keyword"`
	Period  string            `json:"period" csv:"period"`
	Ratio   float64           `json:"ratio" csv:"ratio"`
	Date    NullDate          `json:"date" csv:"date"`
	Extra   map[string]string `json:"extra,omitempty" csv:"-"`
}

// BlogRecord is one blog review search hit.
//
// PostDate is the raw YYYYMMDD string; Date is invalid when it does not match.
type BlogRecord struct {
	Keyword     string            `json:"keyword" csv:"keyword"`
	PostDate    string            `json:"postdate" csv:"postdate"`
	Title       string            `json:"title" csv:"title"`
	BloggerName string            `json:"bloggername" csv:"bloggername"`
	BloggerLink string            `json:"bloggerlink,omitempty" csv:"bloggerlink"`
	Link        string            `json:"link" csv:"link"`
	Description string            `json:"description,omitempty" csv:"description"`
	Date        NullDate          `json:"date" csv:"date"`
	Extra       map[string]string `json:"extra,omitempty" csv:"-"`
}

// NewsRecord is one news article search hit. PubDate is kept verbatim
// (typically RFC 1123 with a numeric zone); Date is its zone-less calendar day.
type NewsRecord struct {
	Keyword      string            `json:"keyword" csv:"keyword"`
	PubDate      string            `json:"pubDate" csv:"pubDate"`
	Title        string            `json:"title" csv:"title"`
	OriginalLink string            `json:"originallink,omitempty" csv:"originallink"`
	Link         string            `json:"link" csv:"link"`
	Description  string            `json:"description,omitempty" csv:"description"`
	Date         NullDate          `json:"date" csv:"date"`
	Extra        map[string]string `json:"extra,omitempty" csv:"-"`
}

func (r TrendRecord) GetKeyword() string              { return r.Keyword }
func (r TrendRecord) GetDate() NullDate               { return r.Date }
func (r TrendRecord) ExtraColumns() map[string]string { return r.Extra }

func (TrendRecord) Columns() []string {
	return []string{"keyword", "period", "ratio", "date"}
}

func (r TrendRecord) Values() []string {
	return []string{r.Keyword, r.Period, strconv.FormatFloat(r.Ratio, 'f', -1, 64), r.Date.String()}
}

func (r BlogRecord) GetKeyword() string              { return r.Keyword }
func (r BlogRecord) GetDate() NullDate               { return r.Date }
func (r BlogRecord) ExtraColumns() map[string]string { return r.Extra }

func (BlogRecord) Columns() []string {
	return []string{"keyword", "postdate", "title", "bloggername", "bloggerlink", "link", "description", "date"}
}

func (r BlogRecord) Values() []string {
	return []string{r.Keyword, r.PostDate, r.Title, r.BloggerName, r.BloggerLink, r.Link, r.Description, r.Date.String()}
}

func (r NewsRecord) GetKeyword() string              { return r.Keyword }
func (r NewsRecord) GetDate() NullDate               { return r.Date }
func (r NewsRecord) ExtraColumns() map[string]string { return r.Extra }

func (NewsRecord) Columns() []string {
	return []string{"keyword", "pubDate", "title", "originallink", "link", "description", "date"}
}

func (r NewsRecord) Values() []string {
	return []string{r.Keyword, r.PubDate, r.Title, r.OriginalLink, r.Link, r.Description, r.Date.String()}
}

// CloneRecord returns r with its own copy of the extra columns map.
func CloneRecord[R Record](r R) R {
	switch v := any(r).(type) {
	case TrendRecord:
		v.Extra = maps.Clone(v.Extra)
		return any(v).(R)
	case BlogRecord:
		v.Extra = maps.Clone(v.Extra)
		return any(v).(R)
	case NewsRecord:
		v.Extra = maps.Clone(v.Extra)
		return any(v).(R)
	}
	return r
}
