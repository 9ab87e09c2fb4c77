package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"trendpulse/internal/config"
	"trendpulse/internal/dataprocessing"
	"trendpulse/internal/exporter"
	"trendpulse/pkg/contracts/domain"
	"trendpulse/pkg/contracts/events"
)

// Broadcaster pushes a message to every connected dashboard.
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
}

// Query is one dashboard selection. Raw skips filtering altogether.
type Query struct {
	Keywords []string
	Start    time.Time
	End      time.Time
	Raw      bool
}

// Validate rejects a range whose start lies after its end.
func (q Query) Validate() error {
	if !q.Raw && domain.NewDate(q.Start).Time.After(domain.NewDate(q.End).Time) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, q.Start.Format(domain.DateLayout), q.End.Format(domain.DateLayout))
	}
	return nil
}

func (q Query) criteria() dataprocessing.Criteria {
	return dataprocessing.Criteria{Keywords: q.Keywords, Start: q.Start, End: q.End}
}

// KeywordList is the keyword picker content.
type KeywordList struct {
	Keywords    []string `json:"keywords"`
	Defaults    []string `json:"defaults"`
	Fingerprint string   `json:"fingerprint"`
}

// TableView is one filtered category table.
type TableView struct {
	Category    domain.Category `json:"category"`
	Fingerprint string          `json:"fingerprint"`
	HasDate     bool            `json:"has_date"`
	Count       int             `json:"count"`
	Rows        interface{}     `json:"rows"`
}

// DiagnosticsReport lists what the current dataset was built from and what was skipped.
type DiagnosticsReport struct {
	LoadedAt    time.Time           `json:"loaded_at"`
	Fingerprint string              `json:"fingerprint"`
	Files       []domain.SourceFile `json:"files"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
	Cache       CacheStats          `json:"cache"`
}

// DataService answers every read of the dashboard from the dataset cache.
type DataService struct {
	cache       *DatasetCache
	dashboard   config.DashboardConfig
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewDataService creates a data service. broadcaster may be nil.
func NewDataService(cache *DatasetCache, dashboard config.DashboardConfig, broadcaster Broadcaster, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		cache:       cache,
		dashboard:   dashboard,
		broadcaster: broadcaster,
		logger:      logger.With(slog.String("component", "data_service")),
	}
}

// DefaultQuery returns the configured default date range with every keyword selected.
func (s *DataService) DefaultQuery() (Query, error) {
	start, end, err := s.dashboard.DateRange()
	if err != nil {
		return Query{}, err
	}
	return Query{Start: start, End: end}, nil
}

// Fingerprint returns the fingerprint of the current dataset, loading it if needed.
func (s *DataService) Fingerprint(ctx context.Context) (string, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return "", err
	}
	return ds.Fingerprint, nil
}

// Keywords returns the known keywords and the default pre-selection.
func (s *DataService) Keywords(ctx context.Context) (*KeywordList, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	keywords := dataprocessing.KnownKeywords(ds)
	return &KeywordList{
		Keywords:    keywords,
		Defaults:    dataprocessing.DefaultSelection(keywords, s.dashboard.DefaultKeywordCount),
		Fingerprint: ds.Fingerprint,
	}, nil
}

// Tables returns all three tables narrowed to q.
func (s *DataService) Tables(ctx context.Context, q Query) (dataprocessing.FilteredTables, *domain.Dataset, error) {
	if err := q.Validate(); err != nil {
		return dataprocessing.FilteredTables{}, nil, err
	}
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return dataprocessing.FilteredTables{}, nil, err
	}
	if q.Raw {
		return dataprocessing.RawTables(ds), ds, nil
	}
	return dataprocessing.FilterDataset(ds, q.criteria()), ds, nil
}

// Table returns one category table narrowed to q.
func (s *DataService) Table(ctx context.Context, category domain.Category, q Query) (*TableView, error) {
	tables, ds, err := s.Tables(ctx, q)
	if err != nil {
		return nil, err
	}

	view := &TableView{Category: category, Fingerprint: ds.Fingerprint}
	switch category {
	case domain.CategoryTrend:
		view.Rows, view.HasDate, view.Count = tables.Trend.Rows, tables.Trend.HasDate, tables.Trend.Len()
	case domain.CategoryBlog:
		view.Rows, view.HasDate, view.Count = tables.Blog.Rows, tables.Blog.HasDate, tables.Blog.Len()
	case domain.CategoryNews:
		view.Rows, view.HasDate, view.Count = tables.News.Rows, tables.News.HasDate, tables.News.Len()
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	return view, nil
}

// Dashboard computes every dashboard aggregate for q.
func (s *DataService) Dashboard(ctx context.Context, q Query) (*domain.DashboardView, error) {
	tables, ds, err := s.Tables(ctx, q)
	if err != nil {
		return nil, err
	}

	view := dataprocessing.BuildDashboard(tables, q.criteria(), s.dashboard.TopSpikes, s.dashboard.LatestItems)
	view.Fingerprint = ds.Fingerprint
	s.logger.DebugContext(ctx, "dashboard computed",
		slog.Int("keywords", len(q.Keywords)),
		slog.Int("trend_rows", view.TrendRowCount),
		slog.Int("blog_rows", view.BlogRowCount),
		slog.Int("news_rows", view.NewsRowCount))
	return &view, nil
}

// Diagnostics reports the files and skips of the current dataset.
func (s *DataService) Diagnostics(ctx context.Context) (*DiagnosticsReport, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	report := &DiagnosticsReport{
		LoadedAt:    ds.LoadedAt,
		Fingerprint: ds.Fingerprint,
		Files:       ds.Files,
		Diagnostics: ds.Diagnostics,
		Cache:       s.cache.Stats(),
	}
	if report.Files == nil {
		report.Files = []domain.SourceFile{}
	}
	if report.Diagnostics == nil {
		report.Diagnostics = []domain.Diagnostic{}
	}
	return report, nil
}

// Reload rebuilds the dataset from disk and notifies connected dashboards.
func (s *DataService) Reload(ctx context.Context) (*events.DatasetReloaded, error) {
	ds, err := s.cache.Reload(ctx)
	if err != nil {
		return nil, err
	}

	result := &events.DatasetReloaded{
		Fingerprint: ds.Fingerprint,
		LoadedAt:    ds.LoadedAt,
		Rows: map[string]int{
			domain.CategoryTrend.String(): ds.Trend.Len(),
			domain.CategoryBlog.String():  ds.Blog.Len(),
			domain.CategoryNews.String():  ds.News.Len(),
		},
		Skipped: len(ds.Diagnostics),
	}

	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.String("fingerprint", ds.Fingerprint),
		slog.Int("skipped", result.Skipped))

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(string(events.MessageTypeDatasetReloaded), result)
	}
	return result, nil
}

// Sheet returns one category table narrowed to q, flattened for export.
func (s *DataService) Sheet(ctx context.Context, category domain.Category, q Query) (exporter.Sheet, error) {
	tables, _, err := s.Tables(ctx, q)
	if err != nil {
		return exporter.Sheet{}, err
	}

	name := category.String()
	switch category {
	case domain.CategoryTrend:
		return exporter.SheetOf(name, tables.Trend), nil
	case domain.CategoryBlog:
		return exporter.SheetOf(name, tables.Blog), nil
	case domain.CategoryNews:
		return exporter.SheetOf(name, tables.News), nil
	}
	return exporter.Sheet{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
}

// Export writes one category table narrowed to q to w in format.
func (s *DataService) Export(ctx context.Context, category domain.Category, format exporter.Format, q Query, w io.Writer) error {
	sheet, err := s.Sheet(ctx, category, q)
	if err != nil {
		return err
	}
	if err := exporter.Write(w, format, sheet); err != nil {
		return fmt.Errorf("export %s: %w", category, err)
	}

	s.logger.InfoContext(ctx, "table exported",
		slog.String("category", category.String()),
		slog.String("format", string(format)),
		slog.Int("rows", len(sheet.Rows)))
	return nil
}
