package config

import (
	"fmt"
	"os"
	"path/filepath"

	"trendpulse/pkg/contracts/domain"
)

// Paths contains the resolved, absolute application paths
type Paths struct {
	BaseDir   string
	DataDir   string
	TrendDir  string
	BlogDir   string
	NewsDir   string
	LogsDir   string
	ExportDir string
}

// ResolvePaths turns the configured paths into absolute ones. Relative
// entries resolve against BaseDir (the working directory when empty);
// category directories resolve against DataDir.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	dataDir := under(base, cfg.DataDir)
	return &Paths{
		BaseDir:   base,
		DataDir:   dataDir,
		TrendDir:  under(dataDir, cfg.TrendDir),
		BlogDir:   under(dataDir, cfg.BlogDir),
		NewsDir:   under(dataDir, cfg.NewsDir),
		LogsDir:   under(base, cfg.LogsDir),
		ExportDir: under(base, cfg.ExportDir),
	}, nil
}

func under(parent, p string) string {
	if p == "" {
		return parent
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(parent, p)
}

// CategoryDir returns the input directory of a category.
func (p *Paths) CategoryDir(c domain.Category) string {
	switch c {
	case domain.CategoryTrend:
		return p.TrendDir
	case domain.CategoryBlog:
		return p.BlogDir
	case domain.CategoryNews:
		return p.NewsDir
	}
	return ""
}

// EnsureDirectories creates the directories the application writes to.
// Input directories are never created; a missing one just means no data.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.LogsDir, p.ExportDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetExportPath returns the full path for an export file
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
