package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/pkg/contracts/domain"
)

func analyticsFixture() FilteredTables {
	return FilteredTables{
		Trend: domain.Table[domain.TrendRecord]{HasDate: true, Rows: []domain.TrendRecord{
			trendRow("netflix", day(2024, time.January, 1), 10), // Monday
			trendRow("netflix", day(2024, time.January, 2), 20), // Tuesday
			trendRow("netflix", day(2024, time.January, 8), 30), // Monday
			trendRow("tving", day(2024, time.February, 1), 50),  // Thursday
		}},
		Blog: domain.Table[domain.BlogRecord]{HasDate: true, Rows: []domain.BlogRecord{
			blogRow("netflix", "b1", day(2024, time.January, 1)),
			blogRow("netflix", "b2", day(2024, time.January, 3)),
			blogRow("netflix", "b3", domain.NullDate{}),
		}},
		News: domain.Table[domain.NewsRecord]{HasDate: true, Rows: []domain.NewsRecord{
			newsRow("netflix", "n1", day(2024, time.January, 1)),
			newsRow("netflix", "n2", day(2024, time.January, 2)),
			newsRow("tving", "n3", day(2024, time.February, 1)),
		}},
	}
}

func TestTrendStatistics(t *testing.T) {
	stats := TrendStatistics(analyticsFixture().Trend)
	require.Len(t, stats, 2)

	netflix := stats[0]
	assert.Equal(t, "netflix", netflix.Keyword)
	assert.Equal(t, 3, netflix.Count)
	assert.InDelta(t, 20.0, netflix.Mean, 1e-9)
	assert.Equal(t, 30.0, netflix.Max)
	assert.Equal(t, 10.0, netflix.Min)
	require.NotNil(t, netflix.StdDev)
	assert.InDelta(t, 10.0, *netflix.StdDev, 1e-9)

	tving := stats[1]
	assert.Equal(t, "tving", tving.Keyword)
	assert.Equal(t, 1, tving.Count)
	assert.Nil(t, tving.StdDev)

	assert.Empty(t, TrendStatistics(domain.Table[domain.TrendRecord]{}))
}

func TestMonthlyAverages(t *testing.T) {
	trend := analyticsFixture().Trend
	trend.Rows = append(trend.Rows, trendRow("netflix", domain.NullDate{}, 1000))

	assert.Equal(t, []domain.MonthlyAverage{
		{Month: "2024-01", Keyword: "netflix", Ratio: 20},
		{Month: "2024-02", Keyword: "tving", Ratio: 50},
	}, MonthlyAverages(trend))
}

func TestTopSpikes(t *testing.T) {
	trend := analyticsFixture().Trend

	assert.Equal(t, []domain.Spike{
		{Keyword: "netflix", Date: day(2024, time.January, 8), Ratio: 30},
		{Keyword: "netflix", Date: day(2024, time.January, 2), Ratio: 20},
		{Keyword: "tving", Date: day(2024, time.February, 1), Ratio: 50},
	}, TopSpikes(trend, 2))

	assert.Len(t, TopSpikes(trend, 10), 4)
	assert.Empty(t, TopSpikes(trend, 0))

	t.Run("ties keep the earlier day first", func(t *testing.T) {
		tied := domain.Table[domain.TrendRecord]{Rows: []domain.TrendRecord{
			trendRow("wavve", day(2024, time.March, 2), 100),
			trendRow("wavve", day(2024, time.March, 1), 100),
		}}
		spikes := TopSpikes(tied, 1)
		require.Len(t, spikes, 1)
		assert.Equal(t, day(2024, time.March, 1), spikes[0].Date)
	})
}

func TestWeekdayAverages(t *testing.T) {
	got := WeekdayAverages(analyticsFixture().Trend)
	require.Len(t, got, 3)

	assert.Equal(t, "Monday", got[0].Day)
	assert.Equal(t, time.Monday, got[0].Weekday)
	assert.InDelta(t, 20.0, got[0].Keywords["netflix"], 1e-9)

	assert.Equal(t, "Tuesday", got[1].Day)
	assert.Equal(t, map[string]float64{"netflix": 20}, got[1].Keywords)

	assert.Equal(t, "Thursday", got[2].Day)
	assert.Equal(t, map[string]float64{"tving": 50}, got[2].Keywords)
}

func TestSourceDistribution(t *testing.T) {
	tables := analyticsFixture()
	assert.Equal(t, []domain.SourceCount{
		{Source: "Blog", Count: 3},
		{Source: "News", Count: 3},
	}, SourceDistribution(tables.Blog, tables.News))
}

func TestDailyContentVolume(t *testing.T) {
	tables := analyticsFixture()
	assert.Equal(t, []domain.VolumePoint{
		{Date: day(2024, time.January, 1), Source: "Blog", Count: 1},
		{Date: day(2024, time.January, 1), Source: "News", Count: 1},
		{Date: day(2024, time.January, 2), Source: "News", Count: 1},
		{Date: day(2024, time.January, 3), Source: "Blog", Count: 1},
		{Date: day(2024, time.February, 1), Source: "News", Count: 1},
	}, DailyContentVolume(tables.Blog, tables.News))
}

func TestTrendVolumeCorrelation(t *testing.T) {
	t.Run("joins on day and keyword", func(t *testing.T) {
		tables := analyticsFixture()
		got := TrendVolumeCorrelation(tables.Trend, tables.Blog, tables.News)

		assert.Equal(t, []domain.CorrelationPoint{
			{Date: day(2024, time.January, 1), Keyword: "netflix", Ratio: 10, Volume: 2},
			{Date: day(2024, time.January, 2), Keyword: "netflix", Ratio: 20, Volume: 1},
			{Date: day(2024, time.February, 1), Keyword: "tving", Ratio: 50, Volume: 1},
		}, got.Points)
		assert.Empty(t, got.Coefficients)
	})

	t.Run("coefficient with enough varying points", func(t *testing.T) {
		trend := domain.Table[domain.TrendRecord]{Rows: []domain.TrendRecord{
			trendRow("netflix", day(2024, time.January, 1), 10),
			trendRow("netflix", day(2024, time.January, 2), 20),
			trendRow("netflix", day(2024, time.January, 3), 30),
		}}
		news := domain.Table[domain.NewsRecord]{Rows: []domain.NewsRecord{
			newsRow("netflix", "a", day(2024, time.January, 1)),
			newsRow("netflix", "b", day(2024, time.January, 2)),
			newsRow("netflix", "c", day(2024, time.January, 2)),
			newsRow("netflix", "d", day(2024, time.January, 3)),
			newsRow("netflix", "e", day(2024, time.January, 3)),
			newsRow("netflix", "f", day(2024, time.January, 3)),
		}}

		got := TrendVolumeCorrelation(trend, domain.Table[domain.BlogRecord]{}, news)
		require.Len(t, got.Points, 3)
		require.Contains(t, got.Coefficients, "netflix")
		assert.InDelta(t, 1.0, got.Coefficients["netflix"], 1e-9)
	})

	t.Run("constant volume has no coefficient", func(t *testing.T) {
		trend := domain.Table[domain.TrendRecord]{Rows: []domain.TrendRecord{
			trendRow("netflix", day(2024, time.January, 1), 10),
			trendRow("netflix", day(2024, time.January, 2), 20),
			trendRow("netflix", day(2024, time.January, 3), 30),
		}}
		news := domain.Table[domain.NewsRecord]{Rows: []domain.NewsRecord{
			newsRow("netflix", "a", day(2024, time.January, 1)),
			newsRow("netflix", "b", day(2024, time.January, 2)),
			newsRow("netflix", "c", day(2024, time.January, 3)),
		}}

		got := TrendVolumeCorrelation(trend, domain.Table[domain.BlogRecord]{}, news)
		assert.Len(t, got.Points, 3)
		assert.Empty(t, got.Coefficients)
	})

	t.Run("no content", func(t *testing.T) {
		got := TrendVolumeCorrelation(analyticsFixture().Trend, domain.Table[domain.BlogRecord]{}, domain.Table[domain.NewsRecord]{})
		assert.NotNil(t, got.Points)
		assert.Empty(t, got.Points)
	})
}

func TestLatest(t *testing.T) {
	tables := analyticsFixture()

	blogs := LatestBlogs(tables.Blog, 2)
	require.Len(t, blogs, 2)
	assert.Equal(t, "b2", blogs[0].Title)
	assert.Equal(t, "b1", blogs[1].Title)

	all := LatestBlogs(tables.Blog, 10)
	require.Len(t, all, 3)
	assert.Equal(t, "b3", all[2].Title)

	news := LatestNews(tables.News, 1)
	require.Len(t, news, 1)
	assert.Equal(t, "n3", news[0].Title)

	assert.Empty(t, LatestNews(tables.News, 0))
	assert.Equal(t, "b1", tables.Blog.Rows[0].Title)
}

func TestBuildDashboard(t *testing.T) {
	tables := analyticsFixture()
	c := Criteria{Keywords: []string{"netflix", "tving"}, Start: at(2024, time.January, 1), End: at(2024, time.December, 31)}

	view := BuildDashboard(tables, c, 5, 10)

	assert.Equal(t, []string{"netflix", "tving"}, view.Keywords)
	assert.Equal(t, day(2024, time.January, 1), view.Start)
	assert.Equal(t, day(2024, time.December, 31), view.End)
	assert.True(t, view.HasTrend)
	assert.True(t, view.HasContent)
	assert.Len(t, view.TrendStats, 2)
	assert.Len(t, view.Spikes, 4)
	assert.Len(t, view.LatestBlogs, 3)
	assert.Equal(t, 4, view.TrendRowCount)
	assert.Equal(t, 3, view.BlogRowCount)
	assert.Equal(t, 3, view.NewsRowCount)

	empty := BuildDashboard(FilteredTables{}, c, 5, 10)
	assert.False(t, empty.HasTrend)
	assert.False(t, empty.HasContent)
	assert.Empty(t, empty.TrendStats)
}
