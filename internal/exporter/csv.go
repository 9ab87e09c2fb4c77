package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"trendpulse/internal/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes sheet as CSV to w.
func WriteCSV(w io.Writer, sheet Sheet, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(sheet.Headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range sheet.Rows {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Write encodes sheet in format to w. CSV output carries a BOM so Excel
// detects UTF-8.
func Write(w io.Writer, format Format, sheet Sheet) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, sheet, WriteOptions{BOMPrefix: true})
	case FormatXLSX:
		return WriteXLSX(w, sheet)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// FileWriter writes exports to disk, by default under the export directory.
type FileWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewFileWriter creates a file writer resolving relative names against paths.ExportDir.
func NewFileWriter(paths *config.Paths, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWriter{paths: paths, logger: logger.With(slog.String("component", "exporter"))}
}

// WriteFile writes sheet to filePath and returns the resolved path.
func (fw *FileWriter) WriteFile(filePath string, format Format, sheet Sheet) (string, error) {
	fullPath := fw.resolvePath(filePath)

	fw.logger.Info("writing export",
		slog.String("file_path", fullPath),
		slog.String("format", string(format)),
		slog.Int("record_count", len(sheet.Rows)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, format, sheet); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return fullPath, nil
}

func (fw *FileWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || fw.paths == nil {
		return filePath
	}
	return fw.paths.GetExportPath(filePath)
}
