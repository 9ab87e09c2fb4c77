package domain

import (
	"time"
)

// KeywordStats summarizes the trend ratio of one keyword.
// StdDev is the sample standard deviation; nil when fewer than two rows exist.
type KeywordStats struct {
	Keyword string   `json:"keyword"`
	Count   int      `json:"count"`
	Mean    float64  `json:"mean"`
	Max     float64  `json:"max"`
	Min     float64  `json:"min"`
	StdDev  *float64 `json:"std"`
}

// MonthlyAverage is the mean ratio of a keyword within a calendar month ("2006-01").
type MonthlyAverage struct {
	Month   string  `json:"month"`
	Keyword string  `json:"keyword"`
	Ratio   float64 `json:"ratio"`
}

// Spike is one of the highest-ratio days of a keyword.
type Spike struct {
	Keyword string   `json:"keyword"`
	Date    NullDate `json:"date"`
	Ratio   float64  `json:"ratio"`
}

// WeekdayAverage is one row of the weekday x keyword pivot.
type WeekdayAverage struct {
	Weekday  time.Weekday       `json:"-"`
	Day      string             `json:"day"`
	Keywords map[string]float64 `json:"keywords"`
}

// Content sources.
const (
	SourceBlog = "Blog"
	SourceNews = "News"
)

// SourceCount is the number of content items from one source.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// VolumePoint is the number of items published on a day by one source.
type VolumePoint struct {
	Date   NullDate `json:"date"`
	Source string   `json:"source"`
	Count  int      `json:"count"`
}

// CorrelationPoint joins a trend row with the content volume of the same day and keyword.
type CorrelationPoint struct {
	Date    NullDate `json:"date"`
	Keyword string   `json:"keyword"`
	Ratio   float64  `json:"ratio"`
	Volume  int      `json:"volume"`
}

// Correlation is the trend ratio vs content volume relationship.
// Coefficients holds the Pearson coefficient per keyword where it is defined.
type Correlation struct {
	Points       []CorrelationPoint `json:"points"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// DashboardView bundles every aggregate the dashboard renders for one selection.
type DashboardView struct {
	Keywords    []string  `json:"keywords"`
	Start       NullDate  `json:"start"`
	End         NullDate  `json:"end"`
	GeneratedAt time.Time `json:"generated_at"`
	Fingerprint string    `json:"fingerprint"`

	HasTrend   bool `json:"has_trend"`
	HasContent bool `json:"has_content"`

	TrendStats     []KeywordStats   `json:"trend_stats"`
	Monthly        []MonthlyAverage `json:"monthly"`
	Spikes         []Spike          `json:"spikes"`
	Weekdays       []WeekdayAverage `json:"weekdays"`
	Sources        []SourceCount    `json:"sources"`
	DailyVolume    []VolumePoint    `json:"daily_volume"`
	Correlation    Correlation      `json:"correlation"`
	LatestBlogs    []BlogRecord     `json:"latest_blogs"`
	LatestNews     []NewsRecord     `json:"latest_news"`
	TrendRowCount  int              `json:"trend_rows"`
	BlogRowCount   int              `json:"blog_rows"`
	NewsRowCount   int              `json:"news_rows"`
}
