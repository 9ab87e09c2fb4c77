package dataprocessing

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"trendpulse/pkg/contracts/domain"
)

// minCorrelationPoints is the fewest joined points a keyword needs before a
// Pearson coefficient is reported.
const minCorrelationPoints = 3

// weekdayOrder is the Monday-first order the weekday pivot is reported in.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// ratiosByKeyword groups trend ratios per keyword, keyword order sorted.
func ratiosByKeyword(trend domain.Table[domain.TrendRecord]) ([]string, map[string][]float64) {
	groups := make(map[string][]float64)
	for _, r := range trend.Rows {
		groups[r.Keyword] = append(groups[r.Keyword], r.Ratio)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, groups
}

// TrendStatistics returns mean, max, min and sample standard deviation of the
// ratio per keyword.
func TrendStatistics(trend domain.Table[domain.TrendRecord]) []domain.KeywordStats {
	keys, groups := ratiosByKeyword(trend)

	out := make([]domain.KeywordStats, 0, len(keys))
	for _, kw := range keys {
		xs := groups[kw]
		s := domain.KeywordStats{
			Keyword: kw,
			Count:   len(xs),
			Mean:    stat.Mean(xs, nil),
			Max:     floats.Max(xs),
			Min:     floats.Min(xs),
		}
		if len(xs) > 1 {
			sd := stat.StdDev(xs, nil)
			s.StdDev = &sd
		}
		out = append(out, s)
	}
	return out
}

// MonthlyAverages returns the mean ratio per calendar month and keyword.
// Rows without a valid date are ignored.
func MonthlyAverages(trend domain.Table[domain.TrendRecord]) []domain.MonthlyAverage {
	type key struct{ month, keyword string }
	groups := make(map[key][]float64)
	for _, r := range trend.Rows {
		if !r.Date.Valid {
			continue
		}
		k := key{month: r.Date.Time.Format("2006-01"), keyword: r.Keyword}
		groups[k] = append(groups[k], r.Ratio)
	}

	out := make([]domain.MonthlyAverage, 0, len(groups))
	for k, xs := range groups {
		out = append(out, domain.MonthlyAverage{Month: k.month, Keyword: k.keyword, Ratio: stat.Mean(xs, nil)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

// TopSpikes returns the n highest-ratio rows of each keyword, ordered by
// keyword then descending ratio. Ties keep the earlier date first.
func TopSpikes(trend domain.Table[domain.TrendRecord], n int) []domain.Spike {
	if n <= 0 {
		return []domain.Spike{}
	}

	byKeyword := make(map[string][]domain.Spike)
	for _, r := range trend.Rows {
		byKeyword[r.Keyword] = append(byKeyword[r.Keyword], domain.Spike{Keyword: r.Keyword, Date: r.Date, Ratio: r.Ratio})
	}

	keys := make([]string, 0, len(byKeyword))
	for k := range byKeyword {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.Spike, 0, len(keys)*n)
	for _, kw := range keys {
		spikes := byKeyword[kw]
		sort.SliceStable(spikes, func(i, j int) bool {
			if spikes[i].Ratio != spikes[j].Ratio {
				return spikes[i].Ratio > spikes[j].Ratio
			}
			return spikes[i].Date.Before(spikes[j].Date)
		})
		if len(spikes) > n {
			spikes = spikes[:n]
		}
		out = append(out, spikes...)
	}
	return out
}

// WeekdayAverages pivots the mean ratio by weekday (Monday first) and keyword.
// Weekdays without any dated row are omitted.
func WeekdayAverages(trend domain.Table[domain.TrendRecord]) []domain.WeekdayAverage {
	groups := make(map[time.Weekday]map[string][]float64)
	for _, r := range trend.Rows {
		if !r.Date.Valid {
			continue
		}
		wd := r.Date.Time.Weekday()
		if groups[wd] == nil {
			groups[wd] = make(map[string][]float64)
		}
		groups[wd][r.Keyword] = append(groups[wd][r.Keyword], r.Ratio)
	}

	out := make([]domain.WeekdayAverage, 0, len(groups))
	for _, wd := range weekdayOrder {
		byKeyword, ok := groups[wd]
		if !ok {
			continue
		}
		row := domain.WeekdayAverage{Weekday: wd, Day: wd.String(), Keywords: make(map[string]float64, len(byKeyword))}
		for kw, xs := range byKeyword {
			row.Keywords[kw] = stat.Mean(xs, nil)
		}
		out = append(out, row)
	}
	return out
}

// SourceDistribution counts blog and news items.
func SourceDistribution(blog domain.Table[domain.BlogRecord], news domain.Table[domain.NewsRecord]) []domain.SourceCount {
	return []domain.SourceCount{
		{Source: domain.SourceBlog, Count: blog.Len()},
		{Source: domain.SourceNews, Count: news.Len()},
	}
}

type contentItem struct {
	date    domain.NullDate
	source  string
	keyword string
}

func contentItems(blog domain.Table[domain.BlogRecord], news domain.Table[domain.NewsRecord]) []contentItem {
	items := make([]contentItem, 0, blog.Len()+news.Len())
	for _, r := range blog.Rows {
		items = append(items, contentItem{date: r.Date, source: domain.SourceBlog, keyword: r.Keyword})
	}
	for _, r := range news.Rows {
		items = append(items, contentItem{date: r.Date, source: domain.SourceNews, keyword: r.Keyword})
	}
	return items
}

// DailyContentVolume counts items per day and source, ordered by date then
// source. Undated items are not counted.
func DailyContentVolume(blog domain.Table[domain.BlogRecord], news domain.Table[domain.NewsRecord]) []domain.VolumePoint {
	type key struct {
		day    time.Time
		source string
	}
	counts := make(map[key]int)
	for _, item := range contentItems(blog, news) {
		if !item.date.Valid {
			continue
		}
		counts[key{day: item.date.Time, source: item.source}]++
	}

	out := make([]domain.VolumePoint, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.VolumePoint{Date: domain.NewDate(k.day), Source: k.source, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Time.Equal(out[j].Date.Time) {
			return out[i].Date.Time.Before(out[j].Date.Time)
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// TrendVolumeCorrelation joins trend rows with the number of blog and news
// items of the same day and keyword. Trend rows without matching content are
// dropped (inner join). A Pearson coefficient is reported per keyword when it
// has enough points and both series vary.
func TrendVolumeCorrelation(trend domain.Table[domain.TrendRecord], blog domain.Table[domain.BlogRecord], news domain.Table[domain.NewsRecord]) domain.Correlation {
	type key struct {
		day     time.Time
		keyword string
	}
	volume := make(map[key]int)
	for _, item := range contentItems(blog, news) {
		if !item.date.Valid {
			continue
		}
		volume[key{day: item.date.Time, keyword: item.keyword}]++
	}

	result := domain.Correlation{
		Points:       []domain.CorrelationPoint{},
		Coefficients: map[string]float64{},
	}
	if len(volume) == 0 {
		return result
	}

	ratios := make(map[string][]float64)
	volumes := make(map[string][]float64)
	for _, r := range trend.Rows {
		if !r.Date.Valid {
			continue
		}
		v, ok := volume[key{day: r.Date.Time, keyword: r.Keyword}]
		if !ok {
			continue
		}
		result.Points = append(result.Points, domain.CorrelationPoint{Date: r.Date, Keyword: r.Keyword, Ratio: r.Ratio, Volume: v})
		ratios[r.Keyword] = append(ratios[r.Keyword], r.Ratio)
		volumes[r.Keyword] = append(volumes[r.Keyword], float64(v))
	}

	for kw, xs := range ratios {
		ys := volumes[kw]
		if len(xs) < minCorrelationPoints || stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
			continue
		}
		if c := stat.Correlation(xs, ys, nil); !math.IsNaN(c) {
			result.Coefficients[kw] = c
		}
	}
	return result
}

// LatestBlogs returns up to n blog items, newest first; undated items last.
func LatestBlogs(blog domain.Table[domain.BlogRecord], n int) []domain.BlogRecord {
	return latest(blog.Rows, n)
}

// LatestNews returns up to n news items, newest first; undated items last.
func LatestNews(news domain.Table[domain.NewsRecord], n int) []domain.NewsRecord {
	return latest(news.Rows, n)
}

func latest[R domain.Record](rows []R, n int) []R {
	if n <= 0 || len(rows) == 0 {
		return []R{}
	}
	sorted := make([]R, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i].GetDate(), sorted[j].GetDate()
		if di.Valid != dj.Valid {
			return di.Valid
		}
		return dj.Time.Before(di.Time)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// BuildDashboard computes every dashboard aggregate over already filtered tables.
func BuildDashboard(tables FilteredTables, c Criteria, topSpikes, latestItems int) domain.DashboardView {
	return domain.DashboardView{
		Keywords:      append([]string{}, c.Keywords...),
		Start:         domain.NewDate(c.Start),
		End:           domain.NewDate(c.End),
		GeneratedAt:   time.Now().UTC(),
		HasTrend:      !tables.Trend.IsEmpty(),
		HasContent:    !tables.Blog.IsEmpty() || !tables.News.IsEmpty(),
		TrendStats:    TrendStatistics(tables.Trend),
		Monthly:       MonthlyAverages(tables.Trend),
		Spikes:        TopSpikes(tables.Trend, topSpikes),
		Weekdays:      WeekdayAverages(tables.Trend),
		Sources:       SourceDistribution(tables.Blog, tables.News),
		DailyVolume:   DailyContentVolume(tables.Blog, tables.News),
		Correlation:   TrendVolumeCorrelation(tables.Trend, tables.Blog, tables.News),
		LatestBlogs:   LatestBlogs(tables.Blog, latestItems),
		LatestNews:    LatestNews(tables.News, latestItems),
		TrendRowCount: tables.Trend.Len(),
		BlogRowCount:  tables.Blog.Len(),
		NewsRowCount:  tables.News.Len(),
	}
}
