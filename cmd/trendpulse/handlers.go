package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"trendpulse/internal/app"
	"trendpulse/internal/config"
	"trendpulse/internal/exporter"
	"trendpulse/internal/infrastructure"
	"trendpulse/internal/services"
	"trendpulse/pkg/contracts/domain"
)

// filterFlags are the selection flags shared by summary and export.
type filterFlags struct {
	keywords []string
	start    string
	end      string
	raw      bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.keywords, "keywords", nil, "keywords to include (default: the dashboard default selection)")
	cmd.Flags().StringVar(&f.start, "start", "", "first day, YYYY-MM-DD (default: from config)")
	cmd.Flags().StringVar(&f.end, "end", "", "last day, YYYY-MM-DD (default: from config)")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "skip filtering")
}

// query resolves the flags against the configured defaults.
func (f filterFlags) query(ctx context.Context, svc *services.DataService) (services.Query, error) {
	q, err := svc.DefaultQuery()
	if err != nil {
		return services.Query{}, err
	}
	q.Raw = f.raw

	if f.start != "" {
		if q.Start, err = time.Parse(domain.DateLayout, f.start); err != nil {
			return services.Query{}, fmt.Errorf("invalid --start %q: expected YYYY-MM-DD", f.start)
		}
	}
	if f.end != "" {
		if q.End, err = time.Parse(domain.DateLayout, f.end); err != nil {
			return services.Query{}, fmt.Errorf("invalid --end %q: expected YYYY-MM-DD", f.end)
		}
	}

	for _, kw := range f.keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			q.Keywords = append(q.Keywords, kw)
		}
	}
	if len(q.Keywords) == 0 && !q.Raw {
		list, err := svc.Keywords(ctx)
		if err != nil {
			return services.Query{}, err
		}
		q.Keywords = list.Defaults
	}

	return q, q.Validate()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.Paths.DataDir = dataDir
	}
	return cfg, nil
}

// newOfflineApp wires the services for one-shot commands: warnings go to
// stderr and no metrics exporter is started.
func newOfflineApp() (*app.Application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Telemetry.EnableMetrics = false
	cfg.Telemetry.EnableTracing = false

	logger, err := infrastructure.NewLogger(config.LoggingConfig{
		Level:  "warn",
		Format: "text",
		Output: "stderr",
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return app.NewApplication(cfg, app.WithLogger(logger))
}

func runServe(ctx context.Context, port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	a, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("init application: %w", err)
	}
	return a.Run(ctx)
}

func runKeywords(ctx context.Context, out io.Writer, jsonOutput bool) error {
	a, err := newOfflineApp()
	if err != nil {
		return err
	}

	list, err := a.Services.Data.Keywords(ctx)
	if err != nil {
		return fmt.Errorf("load keywords: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list.Keywords) == 0 {
		fmt.Fprintf(out, "no keywords found (is %s populated?)\n", a.Paths.TrendDir)
		return nil
	}

	defaults := make(map[string]bool, len(list.Defaults))
	for _, kw := range list.Defaults {
		defaults[kw] = true
	}
	for _, kw := range list.Keywords {
		marker := " "
		if defaults[kw] {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, kw)
	}
	return nil
}

func runSummary(ctx context.Context, out io.Writer, filter filterFlags, jsonOutput bool) error {
	a, err := newOfflineApp()
	if err != nil {
		return err
	}

	q, err := filter.query(ctx, a.Services.Data)
	if err != nil {
		return err
	}
	view, err := a.Services.Data.Dashboard(ctx, q)
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	fmt.Fprintf(out, "keywords: %s\n", strings.Join(view.Keywords, ", "))
	fmt.Fprintf(out, "range:    %s .. %s\n", q.Start.Format(domain.DateLayout), q.End.Format(domain.DateLayout))
	fmt.Fprintf(out, "rows:     %d trend, %d blog, %d news\n\n", view.TrendRowCount, view.BlogRowCount, view.NewsRowCount)

	if !view.HasTrend {
		fmt.Fprintln(out, "no trend data for this selection")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEYWORD\tDAYS\tMEAN\tMAX\tMIN\tSTD")
		for _, s := range view.TrendStats {
			std := "-"
			if s.StdDev != nil {
				std = fmt.Sprintf("%.2f", *s.StdDev)
			}
			fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%s\n", s.Keyword, s.Count, s.Mean, s.Max, s.Min, std)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(view.Spikes) > 0 {
		fmt.Fprintln(out, "\ntop spikes:")
		for _, s := range view.Spikes {
			fmt.Fprintf(out, "  %s  %-12s %.2f\n", s.Date, s.Keyword, s.Ratio)
		}
	}

	if view.HasContent {
		fmt.Fprintln(out, "\ncontent:")
		for _, s := range view.Sources {
			fmt.Fprintf(out, "  %-5s %d\n", s.Source, s.Count)
		}
	}
	return nil
}

func runExport(ctx context.Context, out io.Writer, filter filterFlags, categoryName, formatName, outPath string) error {
	category, err := domain.ParseCategory(categoryName)
	if err != nil {
		return err
	}
	format, err := exporter.ParseFormat(formatName)
	if err != nil {
		return err
	}

	a, err := newOfflineApp()
	if err != nil {
		return err
	}

	q, err := filter.query(ctx, a.Services.Data)
	if err != nil {
		return err
	}
	sheet, err := a.Services.Data.Sheet(ctx, category, q)
	if err != nil {
		return fmt.Errorf("build %s table: %w", category, err)
	}

	if outPath == "" {
		outPath = exporter.FileName(category, format)
	} else if outPath, err = filepath.Abs(outPath); err != nil {
		return fmt.Errorf("resolve --out: %w", err)
	}

	written, err := exporter.NewFileWriter(a.Paths, a.Logger).WriteFile(outPath, format, sheet)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d %s rows to %s\n", len(sheet.Rows), category, written)
	return nil
}
