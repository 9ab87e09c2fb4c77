package exporter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"trendpulse/pkg/contracts/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for any format other than csv or xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat parses a case-insensitive format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Sheet is a table flattened to strings: typed columns first, then the
// sorted union of every extra column seen in any row.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// SheetOf flattens table. Rows missing an extra column get an empty cell.
func SheetOf[R domain.Record](name string, table domain.Table[R]) Sheet {
	var zero R
	columns := zero.Columns()

	extraSet := make(map[string]struct{})
	for _, r := range table.Rows {
		for k := range r.ExtraColumns() {
			extraSet[k] = struct{}{}
		}
	}
	extras := make([]string, 0, len(extraSet))
	for k := range extraSet {
		extras = append(extras, k)
	}
	sort.Strings(extras)

	sheet := Sheet{
		Name:    name,
		Headers: append(append([]string{}, columns...), extras...),
		Rows:    make([][]string, 0, len(table.Rows)),
	}
	for _, r := range table.Rows {
		row := append(make([]string, 0, len(sheet.Headers)), r.Values()...)
		extra := r.ExtraColumns()
		for _, k := range extras {
			row = append(row, extra[k])
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

// FileName returns the default export file name for a category.
func FileName(category domain.Category, format Format) string {
	return "trendpulse_" + category.String() + format.Extension()
}
