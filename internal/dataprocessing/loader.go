package dataprocessing

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"

	"trendpulse/internal/files"
	"trendpulse/internal/infrastructure"
	"trendpulse/pkg/contracts/domain"
)

// Directories are the input directories of the three categories.
type Directories struct {
	Trend string
	Blog  string
	News  string
}

func (d Directories) of(c domain.Category) string {
	switch c {
	case domain.CategoryTrend:
		return d.Trend
	case domain.CategoryBlog:
		return d.Blog
	default:
		return d.News
	}
}

// Loader runs one full ingestion pass: locate, parse and merge every category.
type Loader struct {
	dirs      Directories
	discovery *files.Discovery
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics
	now       func() time.Time
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithMetrics records ingestion counters on m.
func WithMetrics(m *infrastructure.BusinessMetrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// WithTracer sets the tracer used for the load span.
func WithTracer(t trace.Tracer) LoaderOption {
	return func(l *Loader) { l.tracer = t }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// NewLoader creates a loader reading from dirs.
func NewLoader(dirs Directories, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		dirs:      dirs,
		discovery: files.NewDiscoveryWithLogger("", logger),
		logger:    logger.With(slog.String("component", "loader")),
		tracer:    otel.Tracer("trendpulse/dataprocessing"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load ingests every category from scratch. Per-file and per-row problems
// never fail the load; they are logged and listed in Dataset.Diagnostics.
// The only error returned is the context's.
func (l *Loader) Load(ctx context.Context) (_ *domain.Dataset, err error) {
	start := l.now()
	ctx, span := l.tracer.Start(ctx, "dataset.load")
	defer func() {
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		span.End()
		infrastructure.RecordIngestDuration(ctx, l.metrics, time.Since(start), err)
	}()

	sink := NewLogSink(l.logger)
	parser := NewParser(sink)
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("init fingerprint: %w", err)
	}

	ds := &domain.Dataset{LoadedAt: start}

	var sources []domain.SourceFile
	if ds.Trend, sources, err = loadCategory(ctx, l, hasher, domain.CategoryTrend, parser.ParseTrend); err != nil {
		return nil, err
	}
	ds.Files = append(ds.Files, sources...)

	if ds.Blog, sources, err = loadCategory(ctx, l, hasher, domain.CategoryBlog, parser.ParseBlog); err != nil {
		return nil, err
	}
	ds.Files = append(ds.Files, sources...)

	if ds.News, sources, err = loadCategory(ctx, l, hasher, domain.CategoryNews, parser.ParseNews); err != nil {
		return nil, err
	}
	ds.Files = append(ds.Files, sources...)

	ds.Diagnostics = sink.Diagnostics()
	ds.Fingerprint = hex.EncodeToString(hasher.Sum(nil))

	rowSkips := make(map[domain.Category]int)
	for _, d := range ds.Diagnostics {
		if d.Row > 0 {
			rowSkips[d.Category]++
		}
	}
	for c, n := range rowSkips {
		infrastructure.RecordIngestSkippedRows(ctx, l.metrics, c.String(), n)
	}

	span.SetAttributes(
		attribute.Int("dataset.files", len(ds.Files)),
		attribute.Int("dataset.trend_rows", ds.Trend.Len()),
		attribute.Int("dataset.blog_rows", ds.Blog.Len()),
		attribute.Int("dataset.news_rows", ds.News.Len()),
		attribute.Int("dataset.diagnostics", len(ds.Diagnostics)),
	)

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("files", len(ds.Files)),
		slog.Int("trend_rows", ds.Trend.Len()),
		slog.Int("blog_rows", ds.Blog.Len()),
		slog.Int("news_rows", ds.News.Len()),
		slog.Int("skipped", len(ds.Diagnostics)),
		slog.Duration("duration", time.Since(start)),
	)

	return ds, nil
}

func loadCategory[R domain.Record](
	ctx context.Context,
	l *Loader,
	hasher hash.Hash,
	category domain.Category,
	parse func(context.Context, string) (domain.Table[R], bool),
) (domain.Table[R], []domain.SourceFile, error) {
	dir := l.dirs.of(category)
	located := l.discovery.Locate(dir)

	infrastructure.AddSpanEvent(ctx, "category.located", map[string]interface{}{
		"category": category.String(),
		"dir":      dir,
		"files":    len(located),
	})

	fragments := make([]domain.Table[R], 0, len(located))
	sources := make([]domain.SourceFile, 0, len(located))
	for _, f := range located {
		if err := ctx.Err(); err != nil {
			return domain.Table[R]{}, nil, err
		}

		fmt.Fprintf(hasher, "%s|%s|%d|%d\n", category, f.Path, f.Size, f.ModTime.UnixNano())

		fragment, ok := parse(ctx, f.Path)
		source := domain.SourceFile{
			Category: category,
			Path:     f.Path,
			Name:     f.Name,
			Size:     f.Size,
			ModTime:  f.ModTime,
			Rows:     fragment.Len(),
			Skipped:  !ok,
		}
		sources = append(sources, source)

		if !ok {
			infrastructure.RecordIngestFile(ctx, l.metrics, category.String(), "skipped", 0)
			continue
		}
		infrastructure.RecordIngestFile(ctx, l.metrics, category.String(), "loaded", fragment.Len())
		fragments = append(fragments, fragment)

		l.logger.DebugContext(ctx, "file parsed",
			slog.String("category", category.String()),
			slog.String("file", f.Name),
			slog.Int("rows", fragment.Len()),
		)
	}

	return Merge(fragments...), sources, nil
}
