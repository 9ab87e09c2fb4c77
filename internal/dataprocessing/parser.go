package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"trendpulse/pkg/contracts/domain"
)

// Parse errors. They never leave the parser; they end up as diagnostic reasons.
var (
	ErrMalformedFilename = errors.New("file name does not follow the naming convention")
	ErrMissingColumn     = errors.New("missing expected column")
	ErrEmptyFile         = errors.New("file has no header row")
	ErrInvalidRatio      = errors.New("invalid ratio")
	ErrTooManyFields     = errors.New("row has more fields than the header")
)

// minFilenameTokens is the token count below which a file name is rejected.
const minFilenameTokens = 3

// requiredColumns must be present for a file to contribute rows.
var requiredColumns = map[domain.Category][]string{
	domain.CategoryTrend: {"ratio"},
	domain.CategoryBlog:  {"title"},
	domain.CategoryNews:  {"title"},
}

// typedColumns are mapped onto record fields; every other source column goes to Extra.
var typedColumns = map[domain.Category][]string{
	domain.CategoryTrend: {"period", "ratio"},
	domain.CategoryBlog:  {"postdate", "title", "bloggername", "bloggerlink", "link", "description"},
	domain.CategoryNews:  {"pubDate", "title", "originallink", "link", "description"},
}

// reservedColumns are derived by the parser and replace same-named source columns.
var reservedColumns = []string{"keyword", "date"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// KeywordFromFilename extracts the keyword token from a file name such as
// trend_netflix_20240101.csv or blog_review_netflix_20240101.csv.
func KeywordFromFilename(category domain.Category, name string) (string, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.Split(base, "_")
	if len(parts) < minFilenameTokens {
		return "", fmt.Errorf("%w: %q has %d token(s)", ErrMalformedFilename, filepath.Base(name), len(parts))
	}

	keyword := strings.TrimSpace(parts[category.KeywordToken()])
	if keyword == "" {
		return "", fmt.Errorf("%w: %q has an empty keyword", ErrMalformedFilename, filepath.Base(name))
	}
	return keyword, nil
}

// Parser turns one CSV export into a table fragment. It never returns an
// error: failures are reported to the sink and the file or row is dropped.
type Parser struct {
	sink DiagnosticSink
}

// NewParser creates a parser reporting to sink.
func NewParser(sink DiagnosticSink) *Parser {
	return &Parser{sink: sink}
}

// ParseTrend parses a trend_<keyword>_<date>.csv export.
func (p *Parser) ParseTrend(ctx context.Context, path string) (domain.Table[domain.TrendRecord], bool) {
	return parseFile[domain.TrendRecord](ctx, p, domain.CategoryTrend, path, buildTrendRecord)
}

// ParseBlog parses a blog_review_<keyword>_<date>.csv export.
func (p *Parser) ParseBlog(ctx context.Context, path string) (domain.Table[domain.BlogRecord], bool) {
	return parseFile[domain.BlogRecord](ctx, p, domain.CategoryBlog, path, buildBlogRecord)
}

// ParseNews parses a news_issue_<keyword>_<date>.csv export.
func (p *Parser) ParseNews(ctx context.Context, path string) (domain.Table[domain.NewsRecord], bool) {
	return parseFile[domain.NewsRecord](ctx, p, domain.CategoryNews, path, buildNewsRecord)
}

func (p *Parser) skipFile(ctx context.Context, category domain.Category, path string, err error) {
	p.sink.Skip(ctx, domain.Diagnostic{
		Category: category,
		File:     path,
		Reason:   err.Error(),
	})
}

func (p *Parser) skipRow(ctx context.Context, category domain.Category, path string, row int, err error) {
	p.sink.Skip(ctx, domain.Diagnostic{
		Category: category,
		File:     path,
		Row:      row,
		Reason:   err.Error(),
	})
}

// sourceRow gives column lookup by name over one CSV record.
type sourceRow struct {
	file   *csvFile
	values []string
}

func (r sourceRow) get(column string) string {
	idx, ok := r.file.index[column]
	if !ok || idx >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[idx])
}

func (r sourceRow) has(column string) bool {
	_, ok := r.file.index[column]
	return ok
}

// extra collects the non-typed columns of the row.
func (r sourceRow) extra() map[string]string {
	if len(r.file.extraColumns) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.file.extraColumns))
	for _, column := range r.file.extraColumns {
		out[column] = r.get(column)
	}
	return out
}

func parseFile[R domain.Record](ctx context.Context, p *Parser, category domain.Category, path string, build func(row sourceRow, keyword string) (R, error)) (domain.Table[R], bool) {
	keyword, err := KeywordFromFilename(category, path)
	if err != nil {
		p.skipFile(ctx, category, path, err)
		return domain.Table[R]{}, false
	}

	file, err := readCSVFile(path, category)
	if err != nil {
		p.skipFile(ctx, category, path, err)
		return domain.Table[R]{}, false
	}

	for _, column := range requiredColumns[category] {
		if _, ok := file.index[column]; !ok {
			p.skipFile(ctx, category, path, fmt.Errorf("%w: %s", ErrMissingColumn, column))
			return domain.Table[R]{}, false
		}
	}

	table := domain.Table[R]{
		Rows:    make([]R, 0, len(file.rows)),
		HasDate: file.has(category.DateColumn()),
	}

	for i, values := range file.rows {
		rowNum := i + 1
		if len(values) > len(file.header) {
			p.skipRow(ctx, category, path, rowNum, fmt.Errorf("%w: %d > %d", ErrTooManyFields, len(values), len(file.header)))
			continue
		}

		record, err := build(sourceRow{file: file, values: values}, keyword)
		if err != nil {
			p.skipRow(ctx, category, path, rowNum, err)
			continue
		}
		table.Rows = append(table.Rows, record)
	}

	return table, true
}

func buildTrendRecord(row sourceRow, keyword string) (domain.TrendRecord, error) {
	raw := row.get("ratio")
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return domain.TrendRecord{}, fmt.Errorf("%w: %q", ErrInvalidRatio, raw)
	}

	rec := domain.TrendRecord{
		Keyword: keyword,
		Period:  row.get("period"),
		Ratio:   ratio,
		Extra:   row.extra(),
	}
	if row.has("period") {
		rec.Date = ParseFlexibleDate(rec.Period)
	}
	return rec, nil
}

func buildBlogRecord(row sourceRow, keyword string) (domain.BlogRecord, error) {
	rec := domain.BlogRecord{
		Keyword:     keyword,
		PostDate:    row.get("postdate"),
		Title:       row.get("title"),
		BloggerName: row.get("bloggername"),
		BloggerLink: row.get("bloggerlink"),
		Link:        row.get("link"),
		Description: row.get("description"),
		Extra:       row.extra(),
	}
	if row.has("postdate") {
		rec.Date = ParseCompactDate(rec.PostDate)
	}
	return rec, nil
}

func buildNewsRecord(row sourceRow, keyword string) (domain.NewsRecord, error) {
	rec := domain.NewsRecord{
		Keyword:      keyword,
		PubDate:      row.get("pubDate"),
		Title:        row.get("title"),
		OriginalLink: row.get("originallink"),
		Link:         row.get("link"),
		Description:  row.get("description"),
		Extra:        row.extra(),
	}
	if row.has("pubDate") {
		rec.Date = ParseFlexibleDate(rec.PubDate)
	}
	return rec, nil
}

// csvFile is a fully read CSV export with a name -> index header map.
type csvFile struct {
	header       []string
	index        map[string]int
	extraColumns []string
	rows         [][]string
}

func (f *csvFile) has(column string) bool {
	_, ok := f.index[column]
	return ok
}

func readCSVFile(path string, category domain.Category) (*csvFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	file := &csvFile{
		header: make([]string, len(header)),
		index:  make(map[string]int, len(header)),
	}

	typed := make(map[string]bool)
	for _, c := range typedColumns[category] {
		typed[c] = true
	}
	for _, c := range reservedColumns {
		typed[c] = true
	}

	for i, name := range header {
		name = strings.TrimSpace(name)
		file.header[i] = name
		if _, dup := file.index[name]; dup || name == "" {
			continue
		}
		file.index[name] = i
		if !typed[name] {
			file.extraColumns = append(file.extraColumns, name)
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV records: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		file.rows = append(file.rows, record)
	}

	return file, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
