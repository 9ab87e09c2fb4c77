package dataprocessing

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"trendpulse/internal/infrastructure"
	"trendpulse/internal/shared/testutil"
	"trendpulse/pkg/contracts/domain"
)

func populatedDirs(t *testing.T) testutil.DataDirs {
	t.Helper()
	dirs := testutil.NewDataDirs(t)
	testutil.WriteCSV(t, dirs.Trend, "trend_netflix_20240101.csv", testutil.SampleTrendCSV...)
	testutil.WriteCSV(t, dirs.Trend, "trend_tving_20240101.csv", "period,ratio", "2024-01-02,80")
	testutil.WriteCSV(t, dirs.Trend, "trend_bad.csv", testutil.SampleTrendCSV...)
	testutil.WriteCSV(t, dirs.Trend, "notes.txt", "ignored")
	testutil.WriteCSV(t, dirs.Blog, "blog_review_netflix_20240101.csv", testutil.SampleBlogCSV...)
	testutil.WriteCSV(t, dirs.News, "news_issue_tving_20240101.csv", testutil.SampleNewsCSV...)
	return dirs
}

func loaderFor(dirs testutil.DataDirs, logger *slog.Logger, opts ...LoaderOption) *Loader {
	return NewLoader(Directories{Trend: dirs.Trend, Blog: dirs.Blog, News: dirs.News}, logger, opts...)
}

func TestLoaderLoad(t *testing.T) {
	dirs := populatedDirs(t)
	logger, handler := testutil.NewTestLogger(t)
	loadedAt := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	ds, err := loaderFor(dirs, logger, WithClock(func() time.Time { return loadedAt })).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, loadedAt, ds.LoadedAt)
	assert.True(t, ds.Trend.HasDate)
	assert.Equal(t, 4, ds.Trend.Len())
	assert.Equal(t, []string{"netflix", "tving"}, ds.Trend.Keywords())
	assert.Equal(t, 3, ds.Blog.Len())
	assert.Equal(t, 2, ds.News.Len())

	require.Len(t, ds.Files, 5)
	assert.Equal(t, "trend_bad.csv", ds.Files[0].Name)
	assert.True(t, ds.Files[0].Skipped)
	assert.Equal(t, "trend_netflix_20240101.csv", ds.Files[1].Name)
	assert.Equal(t, 3, ds.Files[1].Rows)
	assert.Equal(t, domain.CategoryNews, ds.Files[4].Category)

	require.Len(t, ds.Diagnostics, 1)
	assert.Equal(t, filepath.Join(dirs.Trend, "trend_bad.csv"), ds.Diagnostics[0].File)
	assert.Len(t, ds.Fingerprint, 64)

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "skipping file")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "dataset loaded")
	testutil.AssertNoErrors(t, handler)
}

func TestLoaderSkipsNonFiniteRatios(t *testing.T) {
	dirs := testutil.NewDataDirs(t)
	testutil.WriteCSV(t, dirs.Trend, "trend_netflix_20240101.csv",
		"period,ratio",
		"2024-01-01,10",
		"2024-01-02,NaN",
		"2024-01-03,20",
		"2024-01-04,+Inf",
	)
	logger, _ := testutil.NewTestLogger(t)

	ds, err := loaderFor(dirs, logger).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Trend.Len())
	assert.Len(t, ds.Diagnostics, 2)

	c := Criteria{
		Keywords: []string{"netflix"},
		Start:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
	}
	view := BuildDashboard(FilterDataset(ds, c), c, 5, 10)
	require.Len(t, view.TrendStats, 1)
	assert.Equal(t, 15.0, view.TrendStats[0].Mean)

	_, err = json.Marshal(view)
	assert.NoError(t, err)
}

func TestLoaderMissingDirectories(t *testing.T) {
	root := t.TempDir()
	dirs := testutil.DataDirs{
		Trend: filepath.Join(root, "nope", "datalab"),
		Blog:  filepath.Join(root, "nope", "blog"),
		News:  filepath.Join(root, "nope", "news"),
	}

	ds, err := loaderFor(dirs, nil).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ds.Trend.IsEmpty())
	assert.True(t, ds.Blog.IsEmpty())
	assert.True(t, ds.News.IsEmpty())
	assert.Empty(t, ds.Files)
	assert.Empty(t, KnownKeywords(ds))
}

func TestLoaderFingerprint(t *testing.T) {
	dirs := populatedDirs(t)
	loader := loaderFor(dirs, nil)
	ctx := context.Background()

	first, err := loader.Load(ctx)
	require.NoError(t, err)
	second, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)

	testutil.WriteCSV(t, dirs.News, "news_issue_wavve_20240102.csv", testutil.SampleNewsCSV...)
	third, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, third.Fingerprint)
	assert.Equal(t, 4, third.News.Len())

	require.NoError(t, os.Remove(filepath.Join(dirs.News, "news_issue_wavve_20240102.csv")))
	fourth, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint, fourth.Fingerprint)
}

func TestLoaderCancelledContext(t *testing.T) {
	dirs := populatedDirs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ds, err := loaderFor(dirs, nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, ds)
}

func TestLoaderRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := infrastructure.CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	dirs := populatedDirs(t)
	testutil.WriteCSV(t, dirs.Trend, "trend_wavve_20240101.csv", "period,ratio", "2024-01-01,x", "2024-01-02,1")

	ctx := context.Background()
	_, err = loaderFor(dirs, nil, WithMetrics(metrics)).Load(ctx)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(6), sums["ingest_files_total"])
	assert.Equal(t, int64(10), sums["ingest_rows_total"])
	assert.Equal(t, int64(1), sums["ingest_skipped_rows_total"])
}
