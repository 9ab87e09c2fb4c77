package dataprocessing

import (
	"time"

	"trendpulse/pkg/contracts/domain"
)

// Criteria is one dashboard selection.
//
// An empty Keywords slice selects every keyword. Start and End bound the
// date inclusively and are compared by calendar day only.
type Criteria struct {
	Keywords []string
	Start    time.Time
	End      time.Time
}

// KeywordSet returns the selected keywords as a set, or nil when none are selected.
func (c Criteria) KeywordSet() map[string]struct{} {
	if len(c.Keywords) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(c.Keywords))
	for _, kw := range c.Keywords {
		set[kw] = struct{}{}
	}
	return set
}

// Filter returns the rows of table matching c. The input is never modified;
// the returned rows are independent copies, extra columns included.
//
// Date bounds apply only when the table has a date column, in which case rows
// without a valid date are dropped.
func Filter[R domain.Record](table domain.Table[R], c Criteria) domain.Table[R] {
	out := domain.Table[R]{HasDate: table.HasDate, Rows: []R{}}
	if table.IsEmpty() {
		return out
	}

	keywords := c.KeywordSet()
	for _, row := range table.Rows {
		if keywords != nil {
			if _, ok := keywords[row.GetKeyword()]; !ok {
				continue
			}
		}
		if table.HasDate && !row.GetDate().Between(c.Start, c.End) {
			continue
		}
		out.Rows = append(out.Rows, domain.CloneRecord(row))
	}
	return out
}

// FilteredTables are the three category tables narrowed to one selection.
type FilteredTables struct {
	Trend domain.Table[domain.TrendRecord] `json:"trend"`
	Blog  domain.Table[domain.BlogRecord]  `json:"blog"`
	News  domain.Table[domain.NewsRecord]  `json:"news"`
}

// FilterDataset applies c to every category of ds.
func FilterDataset(ds *domain.Dataset, c Criteria) FilteredTables {
	return FilteredTables{
		Trend: Filter(ds.Trend, c),
		Blog:  Filter(ds.Blog, c),
		News:  Filter(ds.News, c),
	}
}

// RawTables returns copies of the unfiltered tables of ds.
func RawTables(ds *domain.Dataset) FilteredTables {
	return FilteredTables{
		Trend: copyTable(ds.Trend),
		Blog:  copyTable(ds.Blog),
		News:  copyTable(ds.News),
	}
}

func copyTable[R domain.Record](table domain.Table[R]) domain.Table[R] {
	out := domain.Table[R]{HasDate: table.HasDate, Rows: make([]R, 0, len(table.Rows))}
	for _, row := range table.Rows {
		out.Rows = append(out.Rows, domain.CloneRecord(row))
	}
	return out
}
